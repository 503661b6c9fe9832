// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pmc-pages/pkg/types"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(New())
	require.NoError(t, err)

	assert.Equal(t, "pmc_ids.txt", cfg.IDsFile)
	assert.Equal(t, "pdfs", cfg.PDFDir)
	assert.Equal(t, "imgs", cfg.ImageDir)
	assert.Equal(t, 3*time.Second, cfg.DownloadDelay)
	assert.Equal(t, "/etc/ImageMagick-6/policy.xml", cfg.PolicyPath)
	assert.Equal(t, DefaultUserAgent, cfg.UserAgent)
	assert.Equal(t, filepath.Join(".pmc-pages", "ledger.db"), cfg.LedgerPath())

	require.Len(t, cfg.Endpoints, 2)
	assert.Equal(t, "https://www.ncbi.nlm.nih.gov/pmc/articles/PMC1/pdf", cfg.Endpoints[0].URL("PMC1"))
	assert.Equal(t, "https://europepmc.org/articles/PMC1?pdf=render", cfg.Endpoints[1].URL("PMC1"))
	assert.Equal(t, "https://europepmc.org/articles/PMC1", cfg.Endpoints[1].ProbeURL("PMC1"))

	assert.Equal(t, []types.ToolRequirement{
		{Command: "curl", Package: "curl"},
		{Command: "pdfinfo", Package: "poppler-utils"},
		{Command: "convert", Package: "imagemagick"},
	}, cfg.Tools)
}

func TestLoad_FileOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pmc-pages.yaml")
	content := `
ids_file: lists/ids.txt
pdf_dir: out/pdf
image_dir: out/img
download_delay: 500ms
policy_path: /etc/ImageMagick-7/policy.xml
timeout: 20s
endpoints:
  - name: mirror
    base: https://mirror.example/pmc/
    suffix: .pdf
tools:
  - command: magick
    package: imagemagick
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	v := New()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "lists/ids.txt", cfg.IDsFile)
	assert.Equal(t, "out/pdf", cfg.PDFDir)
	assert.Equal(t, 500*time.Millisecond, cfg.DownloadDelay)
	assert.Equal(t, 20*time.Second, cfg.Timeout)
	assert.Equal(t, []types.Endpoint{{Name: "mirror", Base: "https://mirror.example/pmc/", Suffix: ".pdf"}}, cfg.Endpoints)
	assert.Equal(t, "magick", cfg.Tools[0].Command)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("PMC_PAGES_PDF_DIR", "env-pdfs")
	cfg, err := Load(New())
	require.NoError(t, err)
	assert.Equal(t, "env-pdfs", cfg.PDFDir)
}

func TestValidate(t *testing.T) {
	base := func() types.PipelineConfig {
		cfg, err := Load(New())
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*types.PipelineConfig)
		wantErr string
	}{
		{"valid", func(*types.PipelineConfig) {}, ""},
		{"same directories", func(c *types.PipelineConfig) { c.ImageDir = c.PDFDir }, "must differ"},
		{"no endpoints", func(c *types.PipelineConfig) { c.Endpoints = nil }, "at least one endpoint"},
		{"endpoint without base", func(c *types.PipelineConfig) { c.Endpoints[1].Base = "" }, "endpoints[1]"},
		{"negative delay", func(c *types.PipelineConfig) { c.DownloadDelay = -time.Second }, "download_delay"},
		{"bad pattern", func(c *types.PipelineConfig) { c.PolicyPattern = "(" }, "policy_pattern"},
		{"empty ids file", func(c *types.PipelineConfig) { c.IDsFile = " " }, "ids_file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)
			err := Validate(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
