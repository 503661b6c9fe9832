// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"fmt"
	"io"

	"github.com/pdiddy/pmc-pages/internal/fetch"
	"github.com/pdiddy/pmc-pages/internal/ledger"
	"github.com/pdiddy/pmc-pages/internal/normalize"
	"github.com/pdiddy/pmc-pages/internal/render"
	"github.com/pdiddy/pmc-pages/pkg/types"
)

// Check runs only the environment validator.
func Check(cfg types.PipelineConfig, d Deps, w io.Writer) error {
	return newSession(cfg, d, w).validate()
}

// Fetch runs the stages up to and including the download.
func Fetch(ctx context.Context, cfg types.PipelineConfig, d Deps, w io.Writer) (fetch.BatchResult, error) {
	s := newSession(cfg, d, w)
	ids, err := s.readIDs()
	if err != nil {
		return fetch.BatchResult{}, err
	}
	ep, err := s.selectEndpoint(ctx, ids[0])
	if err != nil {
		return fetch.BatchResult{}, err
	}
	if err := s.validate(); err != nil {
		return fetch.BatchResult{}, err
	}
	if err := s.begin(ctx); err != nil {
		return fetch.BatchResult{}, err
	}
	defer s.end(ctx)
	if s.run != nil {
		s.run.SetEndpoint(ctx, ep.Name)
	}
	return s.fetcher().Run(ctx, ids, ep, w)
}

// Render rasterizes the PDFs already on disk without normalizing them.
func Render(ctx context.Context, cfg types.PipelineConfig, d Deps, w io.Writer) (render.BatchResult, error) {
	s := newSession(cfg, d, w)
	if err := s.validate(); err != nil {
		return render.BatchResult{}, err
	}
	if err := s.begin(ctx); err != nil {
		return render.BatchResult{}, err
	}
	defer s.end(ctx)
	_, result, err := s.renderer().Run(ctx, w)
	return result, err
}

// NormalizeDir normalizes the image directory from filenames alone, for
// images rendered outside the pipeline or by an interrupted run. Files that
// already carry final names are left alone; unparseable names are listed.
func NormalizeDir(ctx context.Context, cfg types.PipelineConfig, d Deps, w io.Writer) (normalize.BatchResult, error) {
	s := newSession(cfg, d, w)
	if err := s.begin(ctx); err != nil {
		return normalize.BatchResult{}, err
	}
	defer s.end(ctx)

	plan, err := normalize.Scan(cfg.ImageDir)
	if err != nil {
		return normalize.BatchResult{}, fatal(err)
	}
	if n := len(plan.AlreadyNormalized); n > 0 {
		fmt.Fprintf(w, "%d image file(s) already normalized, left unchanged.\n", n)
	}
	for _, pe := range plan.Errors {
		fmt.Fprintf(w, "ERROR: %v\n", pe)
		s.rec.Record(ctx, ledger.StageNormalize, pe.Name, ledger.StatusFailed, pe.Reason)
	}

	result, err := s.normalizer().Run(ctx, plan.Articles, w)
	result.Failed += len(plan.Errors)
	return result, err
}
