// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fetch downloads article PDFs from the selected endpoint.
package fetch

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pdiddy/pmc-pages/internal/ledger"
	"github.com/pdiddy/pmc-pages/internal/throttle"
	"github.com/pdiddy/pmc-pages/internal/toolchain"
	"github.com/pdiddy/pmc-pages/pkg/types"
)

// BatchResult holds the outcome of a fetch run.
type BatchResult struct {
	Downloaded int
	Skipped    int
	Failed     int
	// Broken counts files that failed the PDF sanity check, whether they
	// were just downloaded or already present.
	Broken int
}

// Total returns the number of identifiers processed.
func (r BatchResult) Total() int {
	return r.Downloaded + r.Skipped + r.Failed
}

// HasFailures reports whether any download failed or any PDF is broken.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0 || r.Broken > 0
}

// Fetcher downloads <id>.pdf files into Dir.
type Fetcher struct {
	Tools  toolchain.Toolchain
	Gate   throttle.Gate
	Dir    string
	Ledger ledger.Recorder
}

// Path returns the destination of id's PDF.
func (f *Fetcher) Path(id string) string {
	return filepath.Join(f.Dir, id+".pdf")
}

// Run downloads each identifier that is not already on disk, then checks
// every PDF with the inspector. Per-item failures are printed and counted;
// only a cancelled context or an uncreatable directory stops the loop.
func (f *Fetcher) Run(ctx context.Context, ids []string, ep types.Endpoint, w io.Writer) (BatchResult, error) {
	var result BatchResult
	if err := os.MkdirAll(f.Dir, 0o755); err != nil {
		return result, fmt.Errorf("creating %s: %w", f.Dir, err)
	}
	rec := f.Ledger
	if rec == nil {
		rec = ledger.Discard
	}

	for _, id := range ids {
		dest := f.Path(id)

		// Presence alone means downloaded; a broken file is never refetched.
		if _, err := os.Stat(dest); err == nil {
			result.Skipped++
			rec.Record(ctx, ledger.StageFetch, id, ledger.StatusSkipped, dest)
		} else {
			if f.Gate != nil {
				if err := f.Gate.Wait(ctx); err != nil {
					return result, err
				}
			}
			url := ep.URL(id)
			fmt.Fprintf(w, "Downloading %s ... ", url)
			r := f.Tools.Download(ctx, url, dest)
			if ctx.Err() != nil {
				fmt.Fprintln(w, "CANCELLED")
				return result, ctx.Err()
			}
			if !r.OK {
				fmt.Fprintln(w, "FAILED")
				result.Failed++
				rec.Record(ctx, ledger.StageFetch, id, ledger.StatusFailed, r.Detail())
			} else {
				fmt.Fprintf(w, "%dKB\n", r.Bytes/1024)
				result.Downloaded++
				rec.Record(ctx, ledger.StageFetch, id, ledger.StatusDone, fmt.Sprintf("%dKB", r.Bytes/1024))
			}
		}

		if !f.Tools.Inspect(ctx, dest).OK {
			fmt.Fprintf(w, "ERROR: PDF file %s appears to be broken.\n", dest)
			result.Broken++
			rec.Record(ctx, ledger.StageFetch, id, ledger.StatusBroken, dest)
		}
	}
	return result, nil
}

