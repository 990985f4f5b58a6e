package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/voice-fingerprint/internal/llm"
	"github.com/jonathan/voice-fingerprint/internal/logging"
	"github.com/jonathan/voice-fingerprint/internal/observability"
	"github.com/jonathan/voice-fingerprint/internal/rewriting"
)

func newRewriteCmd(root *rootOptions) *cobra.Command {
	var (
		userID   string
		studio   string
		text     string
		textFile string
		avoid    []string
		apiKey   string
	)
	cmd := &cobra.Command{
		Use:   "rewrite --user USER (--text TEXT | --file FILE)",
		Short: "Rewrite text in a user's voice with Gemini",
		Long: "Builds the generation context for the studio and asks Gemini to restyle the text. " +
			"Declines without calling the API when the profile is not ready for the studio.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if (text == "") == (textFile == "") {
				return fmt.Errorf("exactly one of --text or --file is required")
			}
			if textFile != "" {
				data, err := os.ReadFile(textFile)
				if err != nil {
					return fmt.Errorf("failed to read input file: %w", err)
				}
				text = string(data)
			}

			a, err := openApp(cmd.Context(), root, cmd.ErrOrStderr(), true)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			if apiKey == "" {
				apiKey = a.cfg.GeminiAPIKey
			}
			if apiKey == "" {
				return fmt.Errorf("a Gemini API key is required (--api-key or GEMINI_API_KEY)")
			}

			gc, err := a.voice.GetGenerationContext(cmd.Context(), userID, studio)
			if err != nil {
				return err
			}

			client, err := llm.NewGeminiClient(cmd.Context(), llm.DefaultConfig(), apiKey)
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()

			rewriter := rewriting.NewRewriter(client, a.cfg.RewriteTolerance, 0, logging.Component(a.logger, "rewriting"))
			res, err := rewriter.Rewrite(cmd.Context(), gc, rewriting.Request{Text: text, AvoidPhrases: avoid})
			if err != nil {
				return err
			}

			if root.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			observability.NewPrinter(cmd.OutOrStdout()).PrintRewrite(res)
			return nil
		},
	}
	cmd.Flags().StringVarP(&userID, "user", "u", "", "User whose voice is used (required)")
	cmd.Flags().StringVarP(&studio, "studio", "s", "career", "Studio type the text is written for")
	cmd.Flags().StringVar(&text, "text", "", "Text to rewrite")
	cmd.Flags().StringVarP(&textFile, "file", "f", "", "File holding the text to rewrite")
	cmd.Flags().StringSliceVar(&avoid, "avoid", nil, "Phrases the rewrite must not introduce")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "Gemini API key (overrides GEMINI_API_KEY)")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
