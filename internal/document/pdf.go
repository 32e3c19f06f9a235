package document

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// PDF is a Source backed by a PDF on disk. Page count comes from pdfcpu;
// per-page text comes from the pdftotext CLI (poppler-utils) which handles
// layout-preserving extraction far better than pure-Go readers; page images
// come from pdftoppm.
type PDF struct {
	path          string
	pdfToTextPath string
	pageCount     int
}

// OpenPDF validates the file and reads its page count.
func OpenPDF(path, pdfToTextPath string) (*PDF, error) {
	if pdfToTextPath == "" {
		pdfToTextPath = "pdftotext"
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "document: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	count, err := api.PageCount(f, nil)
	if err != nil {
		return nil, eris.Wrapf(err, "document: page count for %s", path)
	}
	if count < 1 {
		return nil, eris.Errorf("document: %s has no pages", path)
	}

	zap.L().Debug("document: opened PDF",
		zap.String("path", path),
		zap.Int("pages", count),
	)

	return &PDF{path: path, pdfToTextPath: pdfToTextPath, pageCount: count}, nil
}

func (p *PDF) PageCount() int { return p.pageCount }

// PageText runs pdftotext -layout on a single page and returns stdout.
func (p *PDF) PageText(ctx context.Context, page int) (string, error) {
	if page < 1 || page > p.pageCount {
		return "", eris.Errorf("document: page %d out of range [1,%d]", page, p.pageCount)
	}

	pageStr := strconv.Itoa(page)
	cmd := exec.CommandContext(ctx, p.pdfToTextPath,
		"-layout", "-f", pageStr, "-l", pageStr, p.path, "-")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", eris.Wrapf(err, "document: pdftotext page %d of %s: %s", page, p.path, stderr.String())
	}

	return stdout.String(), nil
}

// RenderPageImage rasterizes one page to PNG via pdftoppm.
func (p *PDF) RenderPageImage(ctx context.Context, page int, dpi int) ([]byte, error) {
	if page < 1 || page > p.pageCount {
		return nil, eris.Errorf("document: page %d out of range [1,%d]", page, p.pageCount)
	}
	if dpi <= 0 {
		dpi = 200
	}

	tmpDir, err := os.MkdirTemp("", "countylens-page-*")
	if err != nil {
		return nil, eris.Wrap(err, "document: create temp dir")
	}
	defer os.RemoveAll(tmpDir) //nolint:errcheck

	prefix := filepath.Join(tmpDir, "page")
	pageStr := strconv.Itoa(page)
	cmd := exec.CommandContext(ctx, "pdftoppm",
		"-png",
		"-f", pageStr,
		"-l", pageStr,
		"-r", strconv.Itoa(dpi),
		"-singlefile",
		p.path,
		prefix,
	)

	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, eris.Wrapf(err, "document: pdftoppm page %d: %s", page, string(out))
	}

	data, err := os.ReadFile(prefix + ".png")
	if err != nil {
		return nil, eris.Wrapf(err, "document: read rendered page %d", page)
	}

	return data, nil
}

// String implements fmt.Stringer for log fields.
func (p *PDF) String() string {
	return fmt.Sprintf("pdf(%s, %d pages)", filepath.Base(p.path), p.pageCount)
}
