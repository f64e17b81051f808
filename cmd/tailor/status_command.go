package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tailor/internal/preflight"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var checkAPI bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show host readiness and daemon health",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			for _, line := range renderSectionHeader("Host checks", colorize) {
				fmt.Fprintln(out, line)
			}
			results := preflight.RunAll(cmd.Context(), cfg)
			if checkAPI {
				results = append(results, preflight.CheckLLM(cmd.Context(), cfg.LLM))
			}
			for _, result := range results {
				kind := statusOK
				if !result.Passed {
					kind = statusError
				}
				fmt.Fprintln(out, renderStatusLine(result.Name, kind, result.Detail, colorize))
			}

			for _, line := range renderSectionHeader("Daemon", colorize) {
				fmt.Fprintln(out, line)
			}
			client, err := ctx.client()
			if err != nil {
				fmt.Fprintln(out, renderStatusLine("Daemon", statusWarn, err.Error(), colorize))
				return nil
			}
			health, err := client.Health(cmd.Context())
			if err != nil {
				fmt.Fprintln(out, renderStatusLine("Daemon", statusError, "not reachable", colorize))
				return nil
			}
			fmt.Fprintln(out, renderStatusLine("Daemon", statusOK, health.Message, colorize))
			compilerKind := statusOK
			compilerMsg := "available"
			if !health.PdflatexAvailable {
				compilerKind = statusError
				compilerMsg = "missing"
			}
			fmt.Fprintln(out, renderStatusLine("Daemon compiler", compilerKind, compilerMsg, colorize))
			return nil
		},
	}

	cmd.Flags().BoolVar(&checkAPI, "check-api", false, "Also ping the generative API (one billable request)")
	return cmd
}
