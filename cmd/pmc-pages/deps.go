// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"go.uber.org/zap"

	"github.com/pdiddy/pmc-pages/internal/config"
	"github.com/pdiddy/pmc-pages/internal/endpoint"
	"github.com/pdiddy/pmc-pages/internal/logging"
	"github.com/pdiddy/pmc-pages/internal/pipeline"
	"github.com/pdiddy/pmc-pages/internal/secrets"
	"github.com/pdiddy/pmc-pages/internal/throttle"
	"github.com/pdiddy/pmc-pages/internal/toolchain"
	"github.com/pdiddy/pmc-pages/pkg/types"
)

// loadConfig decodes the merged configuration and adds the contact e-mail
// from .secrets/ to the User-Agent.
func loadConfig() (types.PipelineConfig, error) {
	cfg, err := config.Load(v)
	if err != nil {
		return types.PipelineConfig{}, err
	}
	cfg.UserAgent = secrets.UserAgent(cfg.UserAgent, loadedSecrets)
	return cfg, nil
}

// environment is everything a subcommand needs to drive the pipeline.
type environment struct {
	cfg  types.PipelineConfig
	deps pipeline.Deps
	log  *zap.Logger
}

func (e *environment) close() {
	_ = e.log.Sync()
}

// newEnvironment wires the production collaborators: curl, pdfinfo and
// convert on PATH, an HTTP prober and a download gate. The run ledger is
// opened by the pipeline once the workspace lock is held.
func newEnvironment() (*environment, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	log, err := logging.New(v.GetBool("verbose"))
	if err != nil {
		return nil, err
	}

	tools := toolchain.NewLocal(cfg.UserAgent, log)
	deps := pipeline.Deps{
		Prober:     endpoint.NewHTTPProber(cfg.HTTPConfig),
		Tools:      tools,
		Lookup:     tools.LookPath,
		Gate:       throttle.NewInterval(cfg.DownloadDelay),
		LedgerPath: cfg.LedgerPath(),
		Log:        log,
	}
	return &environment{cfg: cfg, deps: deps, log: log}, nil
}
