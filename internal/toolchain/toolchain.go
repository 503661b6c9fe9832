// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package toolchain runs the external programs the pipeline depends on:
// curl for downloads, pdfinfo for PDF sanity checks, and ImageMagick's
// convert for rasterizing. Each capability is one method returning a
// Result, so stages can be tested against fakes.
package toolchain

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

const (
	binCurl    = "curl"
	binPdfinfo = "pdfinfo"
	binConvert = "convert"

	// partialSuffix marks an in-flight download next to its destination.
	partialSuffix = ".part"
)

// Result is the outcome of one tool invocation.
type Result struct {
	// OK is true when the tool exited with status 0.
	OK bool

	// Bytes is the size of the downloaded file (Download only).
	Bytes int64

	// Pages is the page count reported by pdfinfo (Inspect only).
	Pages int

	// Output holds the combined stdout and stderr of the tool.
	Output string

	// Err describes the failure when OK is false.
	Err error
}

// Detail describes a failed invocation for the run ledger: the error
// followed by the tool's own message, flattened to one line.
func (r Result) Detail() string {
	msg := "unknown failure"
	if r.Err != nil {
		msg = r.Err.Error()
	}
	if out := strings.Join(strings.Fields(r.Output), " "); out != "" {
		msg += ": " + out
	}
	return msg
}

// Toolchain is the set of external capabilities the stages use.
type Toolchain interface {
	// Download fetches url into dest, following redirects.
	Download(ctx context.Context, url, dest string) Result

	// Inspect checks that the PDF at path is structurally readable.
	Inspect(ctx context.Context, path string) Result

	// Rasterize renders every page of pdfPath to images named after
	// outPattern, one per page, in the sRGB color space.
	Rasterize(ctx context.Context, pdfPath, outPattern string) Result
}

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (o *osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (o *osExecutor) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &out
	cmd.Stderr = &out
	err := cmd.Run()
	return out.Bytes(), err
}

// Local runs the tools installed on this machine.
type Local struct {
	userAgent string
	exec      executor
	log       *zap.Logger
}

// NewLocal returns a Toolchain that shells out to curl, pdfinfo, and
// convert. userAgent, when set, is passed to curl. A nil logger disables
// diagnostics.
func NewLocal(userAgent string, log *zap.Logger) *Local {
	return newLocal(&osExecutor{}, userAgent, log)
}

func newLocal(exec executor, userAgent string, log *zap.Logger) *Local {
	if log == nil {
		log = zap.NewNop()
	}
	return &Local{userAgent: userAgent, exec: exec, log: log}
}

// LookPath reports where file is installed, like the shell's which.
func (l *Local) LookPath(file string) (string, error) {
	return l.exec.LookPath(file)
}

func (l *Local) run(ctx context.Context, name string, args ...string) Result {
	out, err := l.exec.Run(ctx, name, args...)
	l.log.Debug("tool invocation",
		zap.String("tool", name),
		zap.Strings("args", args),
		zap.Bool("ok", err == nil),
		zap.Error(err),
	)
	r := Result{OK: err == nil, Output: string(out)}
	if err != nil {
		r.Err = fmt.Errorf("%s: %w", name, err)
	}
	return r
}

// Download implements Toolchain. curl writes to a partial file that is
// renamed into place only on success, so a failed transfer never leaves a
// file at dest that later runs would mistake for a finished download.
func (l *Local) Download(ctx context.Context, url, dest string) Result {
	part := dest + partialSuffix
	args := []string{"--silent", "--show-error", "--fail", "--location", "--output", part}
	if l.userAgent != "" {
		args = append(args, "--user-agent", l.userAgent)
	}
	args = append(args, url)

	r := l.run(ctx, binCurl, args...)
	if !r.OK {
		os.Remove(part)
		return r
	}

	info, err := os.Stat(part)
	if err != nil {
		return Result{Output: r.Output, Err: fmt.Errorf("curl reported success but %s is missing: %w", part, err)}
	}
	if err := os.Rename(part, dest); err != nil {
		os.Remove(part)
		return Result{Output: r.Output, Err: fmt.Errorf("moving download into place: %w", err)}
	}
	r.Bytes = info.Size()
	return r
}

// Inspect implements Toolchain using pdfinfo.
func (l *Local) Inspect(ctx context.Context, path string) Result {
	r := l.run(ctx, binPdfinfo, path)
	if r.OK {
		r.Pages = parsePages(r.Output)
	}
	return r
}

// Rasterize implements Toolchain using ImageMagick's convert at its default
// density.
func (l *Local) Rasterize(ctx context.Context, pdfPath, outPattern string) Result {
	return l.run(ctx, binConvert, pdfPath, "-colorspace", "sRGB", outPattern)
}

// parsePages extracts the "Pages:" field from pdfinfo output. It returns 0
// when the field is absent or malformed.
func parsePages(output string) int {
	sc := bufio.NewScanner(strings.NewReader(output))
	for sc.Scan() {
		key, value, ok := strings.Cut(sc.Text(), ":")
		if !ok || strings.TrimSpace(key) != "Pages" {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return 0
		}
		return n
	}
	return 0
}
