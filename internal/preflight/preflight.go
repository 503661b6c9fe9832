// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package preflight confirms the machine can run the pipeline before any
// per-article work starts: the external tools are installed and
// ImageMagick's policy lets it read PDFs.
package preflight

import (
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/pdiddy/pmc-pages/pkg/types"
)

// Lookup finds an executable on PATH, like exec.LookPath.
type Lookup func(file string) (string, error)

// ToolReport lists every required tool that could not be found.
type ToolReport struct {
	Missing  []string
	Packages []string
}

// OK reports whether all tools were found.
func (r ToolReport) OK() bool {
	return len(r.Missing) == 0
}

// MissingToolsError is returned when one or more tools are absent.
type MissingToolsError struct {
	Missing        []string
	Packages       []string
	InstallCommand string
}

func (e *MissingToolsError) Error() string {
	return "missing tools: " + strings.Join(e.Missing, ", ")
}

// Remediation returns the single command that installs every missing package.
func (e *MissingToolsError) Remediation() string {
	return strings.TrimSpace(e.InstallCommand + " " + strings.Join(e.Packages, " "))
}

// PolicyError is returned when the ImageMagick policy does not grant PDF
// read rights or cannot be read at all.
type PolicyError struct {
	Path string
	Err  error
}

func (e *PolicyError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("reading ImageMagick policy %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("ImageMagick policy %s does not allow reading PDF files", e.Path)
}

func (e *PolicyError) Unwrap() error { return e.Err }

// Remediation returns the edit that grants PDF read rights.
func (e *PolicyError) Remediation() string {
	return fmt.Sprintf("To fix, open the file %s and replace the line\n"+
		"\t<policy domain=\"coder\" rights=\"none\" pattern=\"PDF\" />\nwith\n"+
		"\t<policy domain=\"coder\" rights=\"read|write\" pattern=\"PDF\" />", e.Path)
}

// CheckTools looks up every requirement and collects all that are missing,
// not just the first.
func CheckTools(lookup Lookup, reqs []types.ToolRequirement) ToolReport {
	var r ToolReport
	for _, req := range reqs {
		if _, err := lookup(req.Command); err != nil {
			r.Missing = append(r.Missing, req.Command)
			r.Packages = append(r.Packages, req.Package)
		}
	}
	return r
}

// CheckPolicy reports whether the policy file at path matches pattern.
func CheckPolicy(path, pattern string) error {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return fmt.Errorf("compiling policy pattern %q: %w", pattern, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return &PolicyError{Path: path, Err: err}
	}
	if !re.Match(data) {
		return &PolicyError{Path: path}
	}
	return nil
}

// Validate runs the tool check and then the policy check, printing progress
// and remediation hints to w. The first failing check's error is returned;
// the policy is not inspected when tools are missing.
func Validate(lookup Lookup, cfg types.PipelineConfig, w io.Writer) error {
	fmt.Fprintln(w, "Checking installed tools...")
	report := CheckTools(lookup, cfg.Tools)
	if !report.OK() {
		err := &MissingToolsError{
			Missing:        report.Missing,
			Packages:       report.Packages,
			InstallCommand: cfg.InstallCommand,
		}
		fmt.Fprintf(w, "Cannot proceed, missing tools: %s\n", strings.Join(report.Missing, ", "))
		fmt.Fprintf(w, "To install, run: %s\n", err.Remediation())
		return err
	}
	fmt.Fprintln(w, "...tools ok.")

	fmt.Fprintln(w, "Checking PDF permissions for ImageMagick...")
	if err := CheckPolicy(cfg.PolicyPath, cfg.PolicyPattern); err != nil {
		var pe *PolicyError
		if errors.As(err, &pe) {
			fmt.Fprintln(w, "Cannot proceed, ImageMagick policy does not allow reading PDF files...")
			fmt.Fprintln(w, pe.Remediation())
		}
		return err
	}
	fmt.Fprintln(w, "...permissions ok.")
	return nil
}
