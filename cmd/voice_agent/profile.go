package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/voice-fingerprint/internal/observability"
)

func newForgetCmd(root *rootOptions) *cobra.Command {
	var userID string
	cmd := &cobra.Command{
		Use:   "forget --user USER DOCUMENT_ID",
		Short: "Remove one document from a user's voice profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), root, cmd.ErrOrStderr(), true)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			profile, err := a.voice.Forget(cmd.Context(), userID, args[0])
			if err != nil {
				return err
			}
			if root.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), profile)
			}
			observability.NewPrinter(cmd.OutOrStdout()).PrintProfile(&profile)
			return nil
		},
	}
	cmd.Flags().StringVarP(&userID, "user", "u", "", "User whose profile is changed (required)")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func newResetCmd(root *rootOptions) *cobra.Command {
	var userID string
	cmd := &cobra.Command{
		Use:   "reset --user USER",
		Short: "Return a user's voice profile to its empty state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd.Context(), root, cmd.ErrOrStderr(), true)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			profile, err := a.voice.Reset(cmd.Context(), userID)
			if err != nil {
				return err
			}
			if root.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), profile)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Voice profile of %s reset\n", userID)
			return err
		},
	}
	cmd.Flags().StringVarP(&userID, "user", "u", "", "User whose profile is reset (required)")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func newProfileCmd(root *rootOptions) *cobra.Command {
	var (
		userID      string
		showHistory bool
	)
	cmd := &cobra.Command{
		Use:   "profile --user USER",
		Short: "Show a user's voice profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd.Context(), root, cmd.ErrOrStderr(), true)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			profile, err := a.voice.Profile(cmd.Context(), userID)
			if err != nil {
				return err
			}
			if root.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), profile)
			}
			printer := observability.NewPrinter(cmd.OutOrStdout())
			printer.PrintProfile(&profile)
			if showHistory {
				printer.PrintHistory(profile.EvolutionHistory)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&userID, "user", "u", "", "User whose profile is shown (required)")
	cmd.Flags().BoolVar(&showHistory, "history", false, "Also print the evolution history")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func newContextCmd(root *rootOptions) *cobra.Command {
	var (
		userID string
		studio string
	)
	cmd := &cobra.Command{
		Use:   "context --user USER --studio STUDIO",
		Short: "Show what a generator for a studio type may use of a user's voice",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd.Context(), root, cmd.ErrOrStderr(), true)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			gc, err := a.voice.GetGenerationContext(cmd.Context(), userID, studio)
			if err != nil {
				return err
			}
			if root.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), gc)
			}
			observability.NewPrinter(cmd.OutOrStdout()).PrintGenerationContext(&gc)
			return nil
		},
	}
	cmd.Flags().StringVarP(&userID, "user", "u", "", "User whose profile is evaluated (required)")
	cmd.Flags().StringVarP(&studio, "studio", "s", "career", "Studio type, e.g. career, social, creative, business, academic")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
