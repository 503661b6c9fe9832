// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package tooltest provides an in-process Toolchain for tests. It writes
// the files the real tools would write without running any binaries.
package tooltest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pdiddy/pmc-pages/internal/toolchain"
)

// Fake implements toolchain.Toolchain. Zero value is usable: downloads
// succeed with 2048-byte files, every existing file inspects as valid, and
// every PDF renders to a single page.
type Fake struct {
	// DownloadSize is the size of files written by Download (default 2048).
	DownloadSize int
	// FailDownload lists URLs whose download fails.
	FailDownload map[string]bool
	// Broken lists PDF paths that fail inspection even when present.
	Broken map[string]bool
	// Pages maps an article stem (e.g. "PMC001") to its page count.
	Pages map[string]int
	// FailRender lists PDF paths whose rasterization fails.
	FailRender map[string]bool
	// PartialRender maps PDF paths to the number of pages written before
	// rasterization fails, as when convert is killed mid-document.
	PartialRender map[string]int

	mu         sync.Mutex
	Downloads  []string
	Inspects   []string
	Rasterized []string
}

var _ toolchain.Toolchain = (*Fake)(nil)

// Download implements toolchain.Toolchain.
func (f *Fake) Download(_ context.Context, url, dest string) toolchain.Result {
	f.mu.Lock()
	f.Downloads = append(f.Downloads, url)
	f.mu.Unlock()

	if f.FailDownload[url] {
		return toolchain.Result{
			Output: "curl: (22) The requested URL returned error: 404\n",
			Err:    errors.New("curl: exit status 22"),
		}
	}
	size := f.DownloadSize
	if size == 0 {
		size = 2048
	}
	if err := os.WriteFile(dest, make([]byte, size), 0o644); err != nil {
		return toolchain.Result{Err: err}
	}
	return toolchain.Result{OK: true, Bytes: int64(size)}
}

// Inspect implements toolchain.Toolchain.
func (f *Fake) Inspect(_ context.Context, path string) toolchain.Result {
	f.mu.Lock()
	f.Inspects = append(f.Inspects, path)
	f.mu.Unlock()

	if _, err := os.Stat(path); err != nil {
		return toolchain.Result{Err: err}
	}
	if f.Broken[path] {
		return toolchain.Result{Err: errors.New("pdfinfo: exit status 1")}
	}
	return toolchain.Result{OK: true, Pages: f.pages(stem(path))}
}

// Rasterize implements toolchain.Toolchain. Like ImageMagick, a one-page
// document is written to outPattern itself and longer documents to
// <stem>-<k>.jpg for k from 0.
func (f *Fake) Rasterize(_ context.Context, pdfPath, outPattern string) toolchain.Result {
	f.mu.Lock()
	f.Rasterized = append(f.Rasterized, pdfPath)
	f.mu.Unlock()

	if f.FailRender[pdfPath] {
		return toolchain.Result{Err: errors.New("convert: exit status 1")}
	}
	n := f.pages(stem(pdfPath))
	written, partial := f.PartialRender[pdfPath]
	if partial {
		n = written
	}
	if n == 1 && !partial {
		if err := os.WriteFile(outPattern, []byte("jpeg"), 0o644); err != nil {
			return toolchain.Result{Err: err}
		}
		return toolchain.Result{OK: true}
	}

	dir, base := filepath.Split(outPattern)
	ext := filepath.Ext(base)
	prefix := strings.TrimSuffix(base, ext)
	for k := 0; k < n; k++ {
		p := filepath.Join(dir, fmt.Sprintf("%s-%d%s", prefix, k, ext))
		if err := os.WriteFile(p, []byte("jpeg"), 0o644); err != nil {
			return toolchain.Result{Err: err}
		}
	}
	if partial {
		return toolchain.Result{Err: errors.New("convert: signal: killed")}
	}
	return toolchain.Result{OK: true}
}

func (f *Fake) pages(stem string) int {
	if n, ok := f.Pages[stem]; ok && n > 0 {
		return n
	}
	return 1
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
