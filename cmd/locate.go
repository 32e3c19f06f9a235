package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/fiscalwatch/countylens/internal/document"
	"github.com/fiscalwatch/countylens/internal/pipeline"
)

var locatePDFPath string

var locateCmd = &cobra.Command{
	Use:   "locate <county>",
	Short: "Resolve a county's physical page range in the report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		src, err := openSource(locatePDFPath)
		if err != nil {
			return err
		}

		p := pipeline.New(cfg, src, nil, nil)
		pages, err := p.LocateSection(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		fmt.Printf("%s: pages %d-%d (%d pages)\n",
			args[0], pages[0], pages[len(pages)-1], len(pages))
		return nil
	},
}

func init() {
	locateCmd.Flags().StringVar(&locatePDFPath, "pdf", "", "path to the report PDF (defaults to document.path from config)")
	rootCmd.AddCommand(locateCmd)
}

// openSource opens the report PDF, preferring the flag over config.
func openSource(flagPath string) (document.Source, error) {
	path := flagPath
	if path == "" {
		path = cfg.Document.Path
	}
	if path == "" {
		return nil, eris.New("no report PDF given: set --pdf or document.path")
	}
	return document.OpenPDF(path, cfg.Document.PdfToTextPath)
}
