// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pmc-pages/internal/pipeline"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download the PDF of every listed article",
	Long: `Fetch downloads <id>.pdf for each identifier into the PDF directory,
waiting between downloads. PDFs already on disk are kept and only
re-inspected with pdfinfo.`,
	Args: cobra.NoArgs,
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	env, err := newEnvironment()
	if err != nil {
		return err
	}
	defer env.close()

	result, err := pipeline.Fetch(cmd.Context(), env.cfg, env.deps, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d article(s): fetched %d, skipped %d, failed %d, broken %d.\n",
		result.Total(), result.Downloaded, result.Skipped, result.Failed, result.Broken)
	return nil
}
