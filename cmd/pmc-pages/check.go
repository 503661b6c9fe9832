// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/cobra"

	"github.com/pdiddy/pmc-pages/internal/pipeline"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check for the external tools and the ImageMagick PDF policy",
	Long: `Check looks up curl, pdfinfo and convert on PATH and reads the
ImageMagick policy file. It reports every missing tool with the packages to
install, and the line to change when the policy forbids reading PDFs.
Nothing is downloaded or written.`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	env, err := newEnvironment()
	if err != nil {
		return err
	}
	defer env.close()

	return pipeline.Check(env.cfg, env.deps, cmd.OutOrStdout())
}
