package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"tailor/internal/api"
	"tailor/internal/config"
)

func newCompileCommand(ctx *commandContext) *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "compile <resume.tex>",
		Short: "Compile a LaTeX document to PDF via the daemon",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			document, err := readInputFile(args[0], "document")
			if err != nil {
				return err
			}

			client, err := ctx.client()
			if err != nil {
				return err
			}
			pdf, err := client.Compile(cmd.Context(), api.CompileRequest{Latex: document})
			if err != nil {
				return err
			}

			target := strings.TrimSpace(outPath)
			if target == "" {
				target = replaceExtension(args[0], ".pdf")
			}
			expanded, err := config.ExpandPath(target)
			if err != nil {
				return err
			}
			if err := os.WriteFile(expanded, pdf, 0o644); err != nil {
				return fmt.Errorf("write pdf: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Compiled PDF written to %s (%.1f KB)\n",
				expanded, float64(len(pdf))/1024)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Destination for the PDF (default: input name with .pdf)")
	return cmd
}

func replaceExtension(path, ext string) string {
	if idx := strings.LastIndex(path, "."); idx > 0 {
		return path[:idx] + ext
	}
	return path + ext
}
