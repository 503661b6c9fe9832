// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pmc-pages/internal/pipeline"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run every stage: fetch PDFs, render pages, normalize filenames",
	Long: `Run reads the identifier list, picks the first reachable PubMed Central
server, checks that curl, pdfinfo and convert are installed and that
ImageMagick may read PDFs, then downloads, renders and renames.

A missing tool, a forbidding policy, or no reachable server stops the run
before anything is written. Failures on individual articles are printed
and the run continues; they do not change the exit status.`,
	Args: cobra.NoArgs,
	RunE: runPipeline,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runPipeline(cmd *cobra.Command, args []string) error {
	env, err := newEnvironment()
	if err != nil {
		return err
	}
	defer env.close()

	report, err := pipeline.Run(cmd.Context(), env.cfg, env.deps, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	writeFailureSummary(cmd.OutOrStdout(), report)
	return nil
}

// writeFailureSummary prints one line counting per-article problems by
// stage, and nothing when the run was clean.
func writeFailureSummary(w io.Writer, r pipeline.Report) {
	if !r.HasFailures() {
		return
	}
	fmt.Fprintf(w, "Problems: fetch %d of %d, render %d of %d, normalize %d of %d. See \"pmc-pages status\".\n",
		r.Fetch.Failed+r.Fetch.Broken, r.Fetch.Total(),
		r.Render.Failed+r.Render.Incomplete, r.Render.Total(),
		r.Normalize.Failed, r.Normalize.Total())
}
