// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package normalize renames rendered page images to carry the article's
// page count: <id>-<total>-<page>.jpg, both fields zero-padded to two
// digits. The page field is the converter's 0-based index, not re-based.
// A one-page article is always named <id>-01-00.jpg.
package normalize

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pdiddy/pmc-pages/internal/ledger"
	"github.com/pdiddy/pmc-pages/internal/manifest"
	"github.com/pdiddy/pmc-pages/pkg/types"
)

const imageExt = ".jpg"

// BatchResult holds the outcome of a normalize run.
type BatchResult struct {
	Normalized int
	Unchanged  int
	Failed     int
}

// Total returns the number of articles processed.
func (r BatchResult) Total() int {
	return r.Normalized + r.Unchanged + r.Failed
}

// HasFailures reports whether any article could not be renamed.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// Normalizer renames page images in Dir.
type Normalizer struct {
	Dir    string
	Ledger ledger.Recorder
}

// FinalName returns the normalized filename of the page with raw index
// token in an article of total pages.
func FinalName(id string, total, token int) string {
	if total == 1 {
		return id + "-01-00" + imageExt
	}
	return fmt.Sprintf("%s-%02d-%02d%s", id, total, token, imageExt)
}

// Apply renames every page of a to its final name, records the result in
// a's manifest, and returns the updated record. An article already marked
// normalized is returned unchanged. No file is renamed when any target name
// is taken by a different file.
func (n *Normalizer) Apply(a types.Article) (types.Article, error) {
	if a.Normalized || len(a.Pages) == 0 {
		return a, nil
	}

	total := len(a.Pages)
	targets := make([]string, total)
	seen := make(map[string]bool, total)
	for i, p := range a.Pages {
		target := filepath.Join(n.Dir, FinalName(a.ID, total, p.RawToken))
		if seen[target] {
			return a, fmt.Errorf("%s: two pages map to %s", a.ID, filepath.Base(target))
		}
		seen[target] = true
		if target != p.Path {
			if _, err := os.Stat(target); err == nil {
				return a, fmt.Errorf("%s: refusing to overwrite %s", a.ID, target)
			}
		}
		targets[i] = target
	}

	out := a
	out.Pages = make([]types.PageImage, total)
	for i, p := range a.Pages {
		if err := os.Rename(p.Path, targets[i]); err != nil {
			return a, fmt.Errorf("renaming %s: %w", p.Path, err)
		}
		out.Pages[i] = types.PageImage{Path: targets[i], RawToken: p.RawToken}
	}
	out.Normalized = true

	if err := manifest.Write(n.Dir, out); err != nil {
		return out, err
	}
	return out, nil
}

// Run applies each article in order, printing one line per article.
// Failures are printed and counted; the loop continues.
func (n *Normalizer) Run(ctx context.Context, articles []types.Article, w io.Writer) (BatchResult, error) {
	var result BatchResult
	rec := n.Ledger
	if rec == nil {
		rec = ledger.Discard
	}

	for _, a := range articles {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		fmt.Fprintf(w, "Renaming image files for %s ... ", a.ID)
		if a.Normalized {
			fmt.Fprintf(w, "already normalized (%d pages)\n", a.PageCount())
			result.Unchanged++
			rec.Record(ctx, ledger.StageNormalize, a.ID, ledger.StatusSkipped, "already normalized")
			continue
		}
		done, err := n.Apply(a)
		if err != nil {
			fmt.Fprintf(w, "FAILED (%v)\n", err)
			result.Failed++
			rec.Record(ctx, ledger.StageNormalize, a.ID, ledger.StatusFailed, err.Error())
			continue
		}
		fmt.Fprintf(w, "(%d pages)\n", done.PageCount())
		result.Normalized++
		rec.Record(ctx, ledger.StageNormalize, a.ID, ledger.StatusDone, fmt.Sprintf("%d pages", done.PageCount()))
	}
	return result, nil
}
