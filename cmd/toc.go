package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fiscalwatch/countylens/internal/locator"
)

var tocPDFPath string

var tocCmd = &cobra.Command{
	Use:   "toc",
	Short: "Print the parsed county index from the report's front matter",
	RunE: func(cmd *cobra.Command, args []string) error {
		src, err := openSource(tocPDFPath)
		if err != nil {
			return err
		}

		loc := locator.New(src, cfg.TOC, cfg.Locator)
		entries := loc.Index(cmd.Context())
		if len(entries) == 0 {
			fmt.Println("no county entries found in front matter")
			return nil
		}

		for _, e := range entries {
			fmt.Printf("%-8s %-30s p.%d\n", e.SectionLabel, e.EntityName, e.DeclaredPage)
		}
		fmt.Printf("%d counties indexed\n", len(entries))
		return nil
	},
}

func init() {
	tocCmd.Flags().StringVar(&tocPDFPath, "pdf", "", "path to the report PDF (defaults to document.path from config)")
	rootCmd.AddCommand(tocCmd)
}
