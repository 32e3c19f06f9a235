package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fiscalwatch/countylens/internal/pipeline"
	"github.com/fiscalwatch/countylens/pkg/insight"
	"github.com/fiscalwatch/countylens/pkg/ocrflux"
)

var (
	extractPDFPath string
	extractJSON    bool
	extractNoOCR   bool
)

var extractCmd = &cobra.Command{
	Use:   "extract <county>",
	Short: "Extract a county's fiscal metrics from the report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		src, err := openSource(extractPDFPath)
		if err != nil {
			return err
		}

		var ocr ocrflux.Client
		if cfg.OCRFlux.URL != "" && !extractNoOCR {
			ocr = ocrflux.NewClient(
				cfg.OCRFlux.URL, cfg.OCRFlux.Key, cfg.OCRFlux.Model,
				ocrflux.WithRateLimit(cfg.OCRFlux.RatePerSec),
				ocrflux.WithMaxAttempts(cfg.OCRFlux.MaxAttempts),
			)
		} else {
			zap.L().Info("extract: remote OCR not configured, running local-only")
		}

		var analyzer pipeline.Analyzer
		if cfg.Insight.Enabled() {
			analyzer = insight.NewAnalyzer(
				insight.NewMessenger(cfg.Insight.Key),
				cfg.Insight.Model,
				cfg.Insight.MaxTokens,
			)
		}

		p := pipeline.New(cfg, src, ocr, analyzer)
		record, err := p.ExtractEntity(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		if extractJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(record)
		}
		fmt.Println(record.Narrative)
		return nil
	},
}

func init() {
	extractCmd.Flags().StringVar(&extractPDFPath, "pdf", "", "path to the report PDF (defaults to document.path from config)")
	extractCmd.Flags().BoolVar(&extractJSON, "json", false, "emit the full result record as JSON")
	extractCmd.Flags().BoolVar(&extractNoOCR, "no-remote", false, "skip the remote OCR tier even when configured")
	rootCmd.AddCommand(extractCmd)
}
