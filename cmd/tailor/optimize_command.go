package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"tailor/internal/api"
	"tailor/internal/config"
)

func newOptimizeCommand(ctx *commandContext) *cobra.Command {
	var resumePath string
	var jobPath string
	var jobText string
	var outPath string

	cmd := &cobra.Command{
		Use:   "optimize",
		Short: "Optimize a LaTeX resume for a job description",
		Long: `Optimize sends a LaTeX resume and a job description to the daemon,
which rewrites the resume via the generative service and verifies the result
compiles to a single page. The optimized LaTeX is written to --out (or stdout).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			resume, err := readInputFile(resumePath, "resume")
			if err != nil {
				return err
			}
			job := strings.TrimSpace(jobText)
			if job == "" {
				job, err = readInputFile(jobPath, "job description")
				if err != nil {
					return err
				}
			}

			client, err := ctx.client()
			if err != nil {
				return err
			}
			resp, err := client.Optimize(cmd.Context(), api.OptimizeRequest{
				Latex:          resume,
				JobDescription: job,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if outPath != "" {
				expanded, err := config.ExpandPath(outPath)
				if err != nil {
					return err
				}
				if err := os.WriteFile(expanded, []byte(resp.OptimizedLatex), 0o644); err != nil {
					return fmt.Errorf("write optimized resume: %w", err)
				}
				fmt.Fprintf(out, "Optimized resume written to %s\n", expanded)
			} else {
				fmt.Fprintln(out, resp.OptimizedLatex)
			}

			fmt.Fprintf(out, "Summary: %s\n", resp.OptimizationSummary)
			if resp.FixAttempts > 0 || resp.ShrinkAttempts > 0 {
				fmt.Fprintf(out, "Attempts: %d fix, %d shrink\n", resp.FixAttempts, resp.ShrinkAttempts)
			}
			if !resp.Success {
				return fmt.Errorf("optimization finished degraded: %s", resp.OptimizationSummary)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&resumePath, "resume", "r", "", "Path to the LaTeX resume (required)")
	cmd.Flags().StringVarP(&jobPath, "job", "j", "", "Path to a file holding the job description")
	cmd.Flags().StringVar(&jobText, "job-text", "", "Job description given inline")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Destination for the optimized LaTeX (default: stdout)")
	_ = cmd.MarkFlagRequired("resume")
	return cmd
}

func readInputFile(path, label string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("%s is required", label)
	}
	expanded, err := config.ExpandPath(trimmed)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(expanded)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", label, err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return "", fmt.Errorf("%s file %s is empty", label, expanded)
	}
	return string(data), nil
}
