package types

import (
	"path/filepath"
	"time"
)

// HTTPConfig holds HTTP settings shared by the endpoint probe and the
// download tool.
type HTTPConfig struct {
	// Timeout bounds a single reachability probe. Zero leaves the client default.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is sent with probes and passed to curl (e.g. "pmc-pages/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// Endpoint is one remote source of article PDFs. The download URL for an
// identifier is Base + id + Suffix; reachability is probed at Base + id.
type Endpoint struct {
	// Name is shown to the operator (e.g. "US NIH").
	Name string `json:"name" yaml:"name" mapstructure:"name"`

	// Base is the URL prefix the identifier is appended to.
	Base string `json:"base" yaml:"base" mapstructure:"base"`

	// Suffix is appended after the identifier to reach the PDF rendition.
	Suffix string `json:"suffix" yaml:"suffix" mapstructure:"suffix"`
}

// URL returns the PDF download URL for id.
func (e Endpoint) URL(id string) string {
	return e.Base + id + e.Suffix
}

// ProbeURL returns the article landing URL used for the reachability probe.
func (e Endpoint) ProbeURL(id string) string {
	return e.Base + id
}

// ToolRequirement names an external binary and the package that provides it.
type ToolRequirement struct {
	Command string `json:"command" yaml:"command" mapstructure:"command"`
	Package string `json:"package" yaml:"package" mapstructure:"package"`
}

// PipelineConfig holds every path, URL template, and tool name the pipeline
// uses. Stages receive the fields they need instead of reading globals.
type PipelineConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// IDsFile is the newline-delimited identifier list.
	IDsFile string `json:"ids_file" yaml:"ids_file" mapstructure:"ids_file"`

	// PDFDir receives <id>.pdf downloads.
	PDFDir string `json:"pdf_dir" yaml:"pdf_dir" mapstructure:"pdf_dir"`

	// ImageDir receives rendered and normalized page images.
	ImageDir string `json:"image_dir" yaml:"image_dir" mapstructure:"image_dir"`

	// Endpoints are probed in order; the first reachable one is used for the run.
	Endpoints []Endpoint `json:"endpoints" yaml:"endpoints" mapstructure:"endpoints"`

	// DownloadDelay is the minimum interval between fresh downloads.
	DownloadDelay time.Duration `json:"download_delay" yaml:"download_delay" mapstructure:"download_delay"`

	// Tools lists the binaries the pipeline shells out to.
	Tools []ToolRequirement `json:"tools" yaml:"tools" mapstructure:"tools"`

	// InstallCommand prefixes the package list in the remediation hint.
	InstallCommand string `json:"install_command" yaml:"install_command" mapstructure:"install_command"`

	// PolicyPath is the ImageMagick policy file consulted for PDF read rights.
	PolicyPath string `json:"policy_path" yaml:"policy_path" mapstructure:"policy_path"`

	// PolicyPattern is the regular expression that must match PolicyPath.
	PolicyPattern string `json:"policy_pattern" yaml:"policy_pattern" mapstructure:"policy_pattern"`

	// StateDir holds the run ledger and the workspace lock.
	StateDir string `json:"state_dir" yaml:"state_dir" mapstructure:"state_dir"`
}

// LedgerPath returns the run ledger database location.
func (c PipelineConfig) LedgerPath() string {
	return filepath.Join(c.StateDir, "ledger.db")
}

// LockPath returns the workspace lock file location.
func (c PipelineConfig) LockPath() string {
	return filepath.Join(c.StateDir, "lock")
}
