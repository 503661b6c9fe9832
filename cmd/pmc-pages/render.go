// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pmc-pages/internal/pipeline"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render every downloaded PDF to one JPEG per page",
	Long: `Render converts each PDF in the PDF directory to sRGB JPEG pages in the
image directory. PDFs whose pages already exist are skipped. The images keep
the converter's names until "pmc-pages normalize" renames them.`,
	Args: cobra.NoArgs,
	RunE: runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	env, err := newEnvironment()
	if err != nil {
		return err
	}
	defer env.close()

	result, err := pipeline.Render(cmd.Context(), env.cfg, env.deps, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d PDF(s): rendered %d, skipped %d, failed %d, incomplete %d.\n",
		result.Total(), result.Rendered, result.Skipped, result.Failed, result.Incomplete)
	return nil
}
