package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jonathan/voice-fingerprint/internal/fingerprint"
	"github.com/jonathan/voice-fingerprint/internal/ingestion"
	"github.com/jonathan/voice-fingerprint/internal/observability"
	"github.com/jonathan/voice-fingerprint/internal/types"
)

func newLearnCmd(root *rootOptions) *cobra.Command {
	var (
		userID          string
		documentID      string
		writingType     string
		fingerprintFile string
	)
	cmd := &cobra.Command{
		Use:   "learn --user USER [FILE...]",
		Short: "Learn documents into a user's voice profile",
		Long: "Extracts each file and folds it into the user's profile. With --fingerprint, a previously " +
			"extracted fingerprint JSON file is learned instead.",
		RunE: func(cmd *cobra.Command, args []string) error {
			switch {
			case fingerprintFile == "" && len(args) == 0:
				return fmt.Errorf("at least one file or --fingerprint is required")
			case fingerprintFile != "" && len(args) > 0:
				return fmt.Errorf("files and --fingerprint are mutually exclusive")
			case documentID != "" && len(args) > 1:
				return fmt.Errorf("--document-id applies to a single document")
			}

			a, err := openApp(cmd.Context(), root, cmd.ErrOrStderr(), true)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			var profile types.VoiceProfile
			if fingerprintFile != "" {
				data, err := os.ReadFile(fingerprintFile)
				if err != nil {
					return fmt.Errorf("failed to read fingerprint file: %w", err)
				}
				fp, err := fingerprint.Decode(data, a.cfg.MinWords)
				if err != nil {
					return err
				}
				profile, err = a.voice.Learn(cmd.Context(), userID, fp, types.DocumentMeta{
					DocumentID:  documentID,
					FileName:    filepath.Base(fingerprintFile),
					WritingType: writingType,
				})
				if err != nil {
					return err
				}
			}

			for _, path := range args {
				text, meta, err := ingestion.IngestFromFile(path)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				id := documentID
				if id == "" {
					id = meta.DocumentID()
				}
				profile, err = a.voice.LearnText(cmd.Context(), userID, text, types.DocumentMeta{
					DocumentID:  id,
					FileName:    meta.FileName,
					WritingType: writingType,
					WordCount:   meta.WordCount,
				})
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
			}

			if root.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), profile)
			}
			observability.NewPrinter(cmd.OutOrStdout()).PrintProfile(&profile)
			return nil
		},
	}

	cmd.Flags().StringVarP(&userID, "user", "u", "", "User whose profile is trained (required)")
	cmd.Flags().StringVar(&documentID, "document-id", "", "Document id (defaults to a hash of the content)")
	cmd.Flags().StringVarP(&writingType, "writing-type", "t", "", "Kind of writing, e.g. blog, email, essay")
	cmd.Flags().StringVar(&fingerprintFile, "fingerprint", "", "Learn a fingerprint JSON file produced by extract --out")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
