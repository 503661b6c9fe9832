// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pmc-pages/internal/pipeline"
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize",
	Short: "Rename page images to <id>-<pages>-<page>.jpg",
	Long: `Normalize scans the image directory, groups the converter's output by
article, and renames each page to <id>-<NN>-<kk>.jpg where NN is the page
count and kk the page index. Images that already have final names are left
alone, so running it twice changes nothing. No tools are required.`,
	Args: cobra.NoArgs,
	RunE: runNormalize,
}

func init() {
	rootCmd.AddCommand(normalizeCmd)
}

func runNormalize(cmd *cobra.Command, args []string) error {
	env, err := newEnvironment()
	if err != nil {
		return err
	}
	defer env.close()

	result, err := pipeline.NormalizeDir(cmd.Context(), env.cfg, env.deps, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d article(s): normalized %d, unchanged %d, failed %d.\n",
		result.Total(), result.Normalized, result.Unchanged, result.Failed)
	return nil
}
