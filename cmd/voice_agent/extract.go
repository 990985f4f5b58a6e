package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/voice-fingerprint/internal/ingestion"
	"github.com/jonathan/voice-fingerprint/internal/observability"
	"github.com/jonathan/voice-fingerprint/internal/types"
)

// extractResult is one extracted file.
type extractResult struct {
	File        string            `json:"file"`
	DocumentID  string            `json:"document_id"`
	Fingerprint types.Fingerprint `json:"fingerprint"`
}

func newExtractCmd(root *rootOptions) *cobra.Command {
	var (
		outDir   string
		parallel int
	)
	cmd := &cobra.Command{
		Use:   "extract FILE...",
		Short: "Compute the voice fingerprint of documents without learning them",
		Long:  "Reads .txt, .md, .pdf or .docx files and prints their fingerprints. Nothing is stored.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), root, cmd.ErrOrStderr(), false)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			results := make([]extractResult, len(args))
			g := new(errgroup.Group)
			g.SetLimit(max(parallel, 1))
			for i, path := range args {
				g.Go(func() error {
					text, meta, err := ingestion.IngestFromFile(path)
					if err != nil {
						return fmt.Errorf("%s: %w", path, err)
					}
					fp, err := a.voice.Extract(text)
					if err != nil {
						return fmt.Errorf("%s: %w", path, err)
					}
					results[i] = extractResult{File: path, DocumentID: meta.DocumentID(), Fingerprint: fp}
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			if outDir != "" {
				if err := writeFingerprints(outDir, results); err != nil {
					return err
				}
			}

			if root.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), results)
			}
			printer := observability.NewPrinter(cmd.OutOrStdout())
			for i := range results {
				printer.PrintFingerprint(filepath.Base(results[i].File), &results[i].Fingerprint)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Directory to write <name>.fingerprint.json files to")
	cmd.Flags().IntVarP(&parallel, "parallel", "p", 4, "Files extracted concurrently")
	return cmd
}

func writeFingerprints(dir string, results []extractResult) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	for _, r := range results {
		base := strings.TrimSuffix(filepath.Base(r.File), filepath.Ext(r.File))
		f, err := os.Create(filepath.Join(dir, base+".fingerprint.json"))
		if err != nil {
			return fmt.Errorf("failed to create fingerprint file: %w", err)
		}
		werr := writeJSON(f, r.Fingerprint)
		cerr := f.Close()
		if werr != nil {
			return werr
		}
		if cerr != nil {
			return fmt.Errorf("failed to close fingerprint file: %w", cerr)
		}
	}
	return nil
}
