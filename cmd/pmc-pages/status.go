// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/pmc-pages/internal/ledger"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Summarize the most recent run from the run ledger",
	Long: `Status reads the run ledger kept in the state directory and prints the
latest run's outcome counts per stage, followed by every article that failed
or whose PDF looked broken.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	path := cfg.LedgerPath()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(out, "No runs recorded in %s.\n", path)
		return nil
	}

	store, err := ledger.Open(path, zap.NewNop())
	if err != nil {
		return err
	}
	defer store.Close()

	sum, err := store.Latest(cmd.Context())
	if errors.Is(err, ledger.ErrNoRuns) {
		fmt.Fprintf(out, "No runs recorded in %s.\n", path)
		return nil
	}
	if err != nil {
		return err
	}
	writeSummary(out, sum)
	return nil
}

var (
	summaryStages   = []ledger.Stage{ledger.StageFetch, ledger.StageRender, ledger.StageNormalize}
	summaryStatuses = []ledger.Status{ledger.StatusDone, ledger.StatusSkipped, ledger.StatusFailed, ledger.StatusBroken}
)

func writeSummary(w io.Writer, sum ledger.Summary) {
	fmt.Fprintf(w, "Run %s\n", sum.RunID)
	fmt.Fprintf(w, "Started:  %s\n", sum.StartedAt.Local().Format(time.DateTime))
	if sum.Finished() {
		fmt.Fprintf(w, "Finished: %s (%s)\n", sum.FinishedAt.Local().Format(time.DateTime),
			sum.FinishedAt.Sub(sum.StartedAt).Round(time.Second))
	} else {
		fmt.Fprintln(w, "Finished: no (interrupted or still running)")
	}
	if sum.Endpoint != "" {
		fmt.Fprintf(w, "Server:   %s\n", sum.Endpoint)
	}

	headers := []string{"Stage"}
	for _, st := range summaryStatuses {
		headers = append(headers, string(st))
	}
	rows := make([][]string, 0, len(summaryStages))
	for _, stage := range summaryStages {
		row := []string{string(stage)}
		for _, st := range summaryStatuses {
			row = append(row, strconv.Itoa(sum.Counts[stage][st]))
		}
		rows = append(rows, row)
	}
	fmt.Fprintln(w, renderTable(headers, rows, 2, 3, 4, 5))

	if len(sum.Problems) == 0 {
		return
	}
	problems := make([][]string, 0, len(sum.Problems))
	for _, ev := range sum.Problems {
		problems = append(problems, []string{string(ev.Stage), ev.Item, string(ev.Status), oneLine(ev.Detail)})
	}
	fmt.Fprintln(w, renderTable([]string{"Stage", "Item", "Status", "Detail"}, problems))
}

// oneLine keeps multi-line tool output from breaking the table layout.
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
