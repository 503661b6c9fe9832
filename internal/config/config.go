// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package config loads pipeline configuration via Viper. Defaults describe
// the standard layout (pmc_ids.txt, pdfs/, imgs/) and the two PubMed Central
// mirrors; a config file, PMC_PAGES_* environment variables, or flags may
// override any of them.
package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/pdiddy/pmc-pages/pkg/types"
)

// Keys shared by the CLI flag bindings and the config file.
const (
	KeyIDsFile        = "ids_file"
	KeyPDFDir         = "pdf_dir"
	KeyImageDir       = "image_dir"
	KeyDownloadDelay  = "download_delay"
	KeyPolicyPath     = "policy_path"
	KeyPolicyPattern  = "policy_pattern"
	KeyInstallCommand = "install_command"
	KeyStateDir       = "state_dir"
	KeyTimeout        = "timeout"
	KeyUserAgent      = "user_agent"
	KeyEndpoints      = "endpoints"
	KeyTools          = "tools"
)

// DefaultUserAgent identifies the tool to the remote repositories.
const DefaultUserAgent = "pmc-pages/0.1"

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyIDsFile, "pmc_ids.txt")
	v.SetDefault(KeyPDFDir, "pdfs")
	v.SetDefault(KeyImageDir, "imgs")
	v.SetDefault(KeyDownloadDelay, 3*time.Second)
	v.SetDefault(KeyPolicyPath, "/etc/ImageMagick-6/policy.xml")
	v.SetDefault(KeyPolicyPattern, `rights=".*read.*" pattern="PDF"`)
	v.SetDefault(KeyInstallCommand, "sudo apt install")
	v.SetDefault(KeyStateDir, ".pmc-pages")
	v.SetDefault(KeyTimeout, time.Duration(0))
	v.SetDefault(KeyUserAgent, DefaultUserAgent)
	v.SetDefault(KeyEndpoints, []map[string]any{
		{"name": "US NIH", "base": "https://www.ncbi.nlm.nih.gov/pmc/articles/", "suffix": "/pdf"},
		{"name": "European", "base": "https://europepmc.org/articles/", "suffix": "?pdf=render"},
	})
	v.SetDefault(KeyTools, []map[string]any{
		{"command": "curl", "package": "curl"},
		{"command": "pdfinfo", "package": "poppler-utils"},
		{"command": "convert", "package": "imagemagick"},
	})
}

// Load decodes v into a PipelineConfig and validates it. Defaults must
// already be registered with SetDefaults.
func Load(v *viper.Viper) (types.PipelineConfig, error) {
	var cfg types.PipelineConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return types.PipelineConfig{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return types.PipelineConfig{}, err
	}
	return cfg, nil
}

// New returns a Viper instance with defaults and the PMC_PAGES_ environment
// prefix configured.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("PMC_PAGES")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	SetDefaults(v)
	return v
}

// Validate reports every unusable setting in cfg.
func Validate(cfg types.PipelineConfig) error {
	var errs []error
	if strings.TrimSpace(cfg.IDsFile) == "" {
		errs = append(errs, errors.New("ids_file must be set"))
	}
	if strings.TrimSpace(cfg.PDFDir) == "" {
		errs = append(errs, errors.New("pdf_dir must be set"))
	}
	if strings.TrimSpace(cfg.ImageDir) == "" {
		errs = append(errs, errors.New("image_dir must be set"))
	}
	if cfg.PDFDir != "" && cfg.PDFDir == cfg.ImageDir {
		errs = append(errs, errors.New("pdf_dir and image_dir must differ"))
	}
	if cfg.DownloadDelay < 0 {
		errs = append(errs, errors.New("download_delay must not be negative"))
	}
	if len(cfg.Endpoints) == 0 {
		errs = append(errs, errors.New("at least one endpoint is required"))
	}
	for i, ep := range cfg.Endpoints {
		if ep.Base == "" {
			errs = append(errs, fmt.Errorf("endpoints[%d] has no base URL", i))
		}
	}
	for i, tool := range cfg.Tools {
		if tool.Command == "" {
			errs = append(errs, fmt.Errorf("tools[%d] has no command", i))
		}
	}
	if _, err := regexp.Compile(cfg.PolicyPattern); err != nil {
		errs = append(errs, fmt.Errorf("policy_pattern: %w", err))
	}
	if strings.TrimSpace(cfg.StateDir) == "" {
		errs = append(errs, errors.New("state_dir must be set"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}
