package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"lessonvault/internal/deps"
	"lessonvault/internal/logging"
	"lessonvault/internal/preflight"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check external tools, directories, and the platform session",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			statuses := preflight.CheckSystemDeps(cmd.Context(), cfg)
			lines := renderSectionHeader("Dependencies", colorize)
			lines = append(lines, dependencyLines(statuses, colorize)...)

			var verifier preflight.SessionVerifier
			session, err := authenticate(cmd.Context(), cfg, out, logging.NewNop(), false)
			if err == nil {
				if client, err := newPlatformClient(cfg, session, logging.NewNop()); err == nil {
					verifier = client
				}
			}
			results := preflight.RunAll(cmd.Context(), cfg, verifier)
			lines = append(lines, "")
			lines = append(lines, renderSectionHeader("Environment", colorize)...)
			lines = append(lines, preflightLines(results, colorize)...)

			fmt.Fprintln(out, strings.Join(lines, "\n"))

			failed := preflight.Failed(results)
			missing := deps.MissingRequired(statuses)
			if len(failed) > 0 || len(missing) > 0 {
				return fmt.Errorf("%d check(s) failed", len(failed)+len(missing))
			}
			return nil
		},
	}
}
