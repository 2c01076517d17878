package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLoginCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Log in by scanning a QR code and store the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, closeLog, err := newLogger(cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer func() { _ = closeLog() }()

			out := cmd.OutOrStdout()
			session, err := interactiveLogin(cmd.Context(), cfg, out, logger)
			if err != nil {
				return err
			}
			client, err := newPlatformClient(cfg, session, logger)
			if err != nil {
				return err
			}
			user, err := client.VerifySession(cmd.Context())
			if err != nil {
				return explainAuthError(err)
			}
			if user != "" {
				fmt.Fprintf(out, "Logged in as %s\n", user)
			} else {
				fmt.Fprintln(out, "Logged in")
			}
			fmt.Fprintf(out, "Session saved to %s\n", cfg.Paths.SessionFile)
			return nil
		},
	}
}
