// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs the stages in order: read identifiers, select an
// endpoint, validate the environment, fetch PDFs, render pages, and
// normalize filenames. Fatal preconditions stop the run with an error
// wrapping ErrFatal; per-item failures are printed and the run continues.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/pdiddy/pmc-pages/internal/endpoint"
	"github.com/pdiddy/pmc-pages/internal/fetch"
	"github.com/pdiddy/pmc-pages/internal/idlist"
	"github.com/pdiddy/pmc-pages/internal/ledger"
	"github.com/pdiddy/pmc-pages/internal/normalize"
	"github.com/pdiddy/pmc-pages/internal/preflight"
	"github.com/pdiddy/pmc-pages/internal/render"
	"github.com/pdiddy/pmc-pages/internal/throttle"
	"github.com/pdiddy/pmc-pages/internal/toolchain"
	"github.com/pdiddy/pmc-pages/internal/workspace"
	"github.com/pdiddy/pmc-pages/pkg/types"
)

// ErrFatal marks errors that abort the whole run before or between stages.
var ErrFatal = errors.New("fatal")

// Deps holds the collaborators a run talks to. Tests substitute fakes.
type Deps struct {
	Prober endpoint.Prober
	Tools  toolchain.Toolchain
	Lookup preflight.Lookup
	Gate   throttle.Gate
	// Ledger is optional; without it outcomes are only printed.
	Ledger *ledger.Store
	// LedgerPath, when Ledger is nil, names a ledger opened once the
	// workspace lock is held and closed when the run ends.
	LedgerPath string
	Log        *zap.Logger
}

// Report collects the stage results of one run.
type Report struct {
	RunID     string
	Endpoint  types.Endpoint
	Fetch     fetch.BatchResult
	Render    render.BatchResult
	Normalize normalize.BatchResult
}

// HasFailures reports whether any stage had a per-item failure.
func (r Report) HasFailures() bool {
	return r.Fetch.HasFailures() || r.Render.HasFailures() || r.Normalize.HasFailures()
}

func fatal(err error) error {
	return fmt.Errorf("%w: %w", ErrFatal, err)
}

// session carries one invocation's state across stages.
type session struct {
	cfg  types.PipelineConfig
	deps Deps
	w    io.Writer
	log  *zap.Logger
	rec  ledger.Recorder
	run  *ledger.Run
	lock *workspace.Lock
	// owned is a ledger this session opened and must close.
	owned *ledger.Store
}

func newSession(cfg types.PipelineConfig, d Deps, w io.Writer) *session {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &session{cfg: cfg, deps: d, w: w, log: log, rec: ledger.Discard}
}

// readIDs loads the identifier list. An unreadable or empty list is fatal.
func (s *session) readIDs() ([]string, error) {
	ids, err := idlist.Read(s.cfg.IDsFile)
	if err != nil {
		return nil, fatal(err)
	}
	fmt.Fprintf(s.w, "%d article IDs in %s\n", len(ids), s.cfg.IDsFile)
	if len(ids) == 0 {
		return nil, fatal(fmt.Errorf("no identifiers in %s", s.cfg.IDsFile))
	}
	return ids, nil
}

func (s *session) selectEndpoint(ctx context.Context, firstID string) (types.Endpoint, error) {
	ep, err := endpoint.Select(ctx, s.deps.Prober, s.cfg.Endpoints, firstID, s.w)
	if err != nil {
		return types.Endpoint{}, fatal(err)
	}
	return ep, nil
}

func (s *session) validate() error {
	if err := preflight.Validate(s.deps.Lookup, s.cfg, s.w); err != nil {
		return fatal(err)
	}
	return nil
}

// begin takes the workspace lock and opens a ledger run. Ledger trouble is
// logged and the run proceeds without it.
func (s *session) begin(ctx context.Context) error {
	lock, err := workspace.Acquire(s.cfg.LockPath())
	if err != nil {
		return fatal(err)
	}
	s.lock = lock

	store := s.deps.Ledger
	if store == nil && s.deps.LedgerPath != "" {
		store, err = ledger.Open(s.deps.LedgerPath, s.log)
		if err != nil {
			s.log.Warn("ledger unavailable, continuing without it", zap.Error(err))
		}
		s.owned = store
	}
	if store != nil {
		run, err := store.Begin(ctx)
		if err != nil {
			s.log.Warn("ledger unavailable, continuing without it", zap.Error(err))
		} else {
			s.run, s.rec = run, run
		}
	}
	return nil
}

func (s *session) end(ctx context.Context) {
	if s.run != nil {
		s.run.Finish(context.WithoutCancel(ctx))
	}
	if s.owned != nil {
		if err := s.owned.Close(); err != nil {
			s.log.Warn("closing ledger", zap.Error(err))
		}
	}
	if err := s.lock.Release(); err != nil {
		s.log.Warn("releasing workspace lock", zap.Error(err))
	}
}

func (s *session) fetcher() *fetch.Fetcher {
	return &fetch.Fetcher{Tools: s.deps.Tools, Gate: s.deps.Gate, Dir: s.cfg.PDFDir, Ledger: s.rec}
}

func (s *session) renderer() *render.Renderer {
	return &render.Renderer{Tools: s.deps.Tools, PDFDir: s.cfg.PDFDir, ImageDir: s.cfg.ImageDir, Ledger: s.rec}
}

func (s *session) normalizer() *normalize.Normalizer {
	return &normalize.Normalizer{Dir: s.cfg.ImageDir, Ledger: s.rec}
}

func (s *session) runID() string {
	if s.run == nil {
		return ""
	}
	return s.run.ID
}

// Run executes the full pipeline once.
func Run(ctx context.Context, cfg types.PipelineConfig, d Deps, w io.Writer) (Report, error) {
	s := newSession(cfg, d, w)
	var report Report

	ids, err := s.readIDs()
	if err != nil {
		return report, err
	}
	ep, err := s.selectEndpoint(ctx, ids[0])
	if err != nil {
		return report, err
	}
	report.Endpoint = ep
	if err := s.validate(); err != nil {
		return report, err
	}
	if err := s.begin(ctx); err != nil {
		return report, err
	}
	defer s.end(ctx)
	report.RunID = s.runID()
	if s.run != nil {
		s.run.SetEndpoint(ctx, ep.Name)
	}

	report.Fetch, err = s.fetcher().Run(ctx, ids, ep, w)
	if err != nil {
		return report, err
	}

	articles, renderResult, err := s.renderer().Run(ctx, w)
	report.Render = renderResult
	if err != nil {
		return report, err
	}

	report.Normalize, err = s.normalizer().Run(ctx, articles, w)
	if err != nil {
		return report, err
	}

	fmt.Fprintln(w, "Done processing articles.")
	return report, nil
}
