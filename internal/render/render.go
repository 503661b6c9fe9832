// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package render rasterizes downloaded PDFs into one JPEG per page.
package render

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/pdiddy/pmc-pages/internal/ledger"
	"github.com/pdiddy/pmc-pages/internal/manifest"
	"github.com/pdiddy/pmc-pages/internal/toolchain"
	"github.com/pdiddy/pmc-pages/pkg/types"
)

const (
	pdfExt   = ".pdf"
	imageExt = ".jpg"
)

// BatchResult holds the outcome of a render run.
type BatchResult struct {
	Rendered int
	Skipped  int
	Failed   int
	// Incomplete counts articles whose page images on disk do not match
	// the page count pdfinfo reports. They are withheld from normalizing.
	Incomplete int
}

// Total returns the number of PDFs processed.
func (r BatchResult) Total() int {
	return r.Rendered + r.Skipped + r.Failed
}

// HasFailures reports whether any PDF failed to render or left an
// incomplete set of pages.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0 || r.Incomplete > 0
}

// Renderer converts every PDF in PDFDir into page images in ImageDir.
type Renderer struct {
	Tools    toolchain.Toolchain
	PDFDir   string
	ImageDir string
	Ledger   ledger.Recorder
}

// Run renders each PDF in filename order and returns a record for every
// article that has page images, whether rendered now or on an earlier run.
// A PDF is skipped when its first raw page image or its manifest already
// exists. Articles whose pages on disk disagree with the PDF's page count
// are reported and left out. Failures are printed and counted; processing
// continues.
func (r *Renderer) Run(ctx context.Context, w io.Writer) ([]types.Article, BatchResult, error) {
	var result BatchResult
	if err := os.MkdirAll(r.ImageDir, 0o755); err != nil {
		return nil, result, fmt.Errorf("creating %s: %w", r.ImageDir, err)
	}
	rec := r.Ledger
	if rec == nil {
		rec = ledger.Discard
	}

	pdfs, err := listPDFs(r.PDFDir)
	if err != nil {
		return nil, result, err
	}

	var articles []types.Article
	for _, name := range pdfs {
		if err := ctx.Err(); err != nil {
			return articles, result, err
		}
		id := strings.TrimSuffix(name, pdfExt)
		pdfPath := filepath.Join(r.PDFDir, name)
		fmt.Fprintf(w, "Rendering %s ... ", name)

		if manifest.Exists(r.ImageDir, id) {
			a, err := manifest.Read(r.ImageDir, id)
			if err != nil {
				fmt.Fprintf(w, "FAILED (%v)\n", err)
				result.Failed++
				rec.Record(ctx, ledger.StageRender, name, ledger.StatusFailed, err.Error())
				continue
			}
			fmt.Fprintln(w, "skipped (already normalized)")
			result.Skipped++
			rec.Record(ctx, ledger.StageRender, name, ledger.StatusSkipped, "normalized")
			articles = append(articles, a)
			continue
		}

		if r.firstPageExists(id) {
			fmt.Fprintln(w, "skipped (already rendered)")
			result.Skipped++
			rec.Record(ctx, ledger.StageRender, name, ledger.StatusSkipped, "rendered")
		} else {
			res := r.Tools.Rasterize(ctx, pdfPath, filepath.Join(r.ImageDir, id+imageExt))
			if !res.OK {
				fmt.Fprintln(w, "FAILED")
				result.Failed++
				rec.Record(ctx, ledger.StageRender, name, ledger.StatusFailed, res.Detail())
				continue
			}
			fmt.Fprintln(w, "done")
			result.Rendered++
			rec.Record(ctx, ledger.StageRender, name, ledger.StatusDone, "")
		}

		pages, err := CollectPages(r.ImageDir, id)
		if err != nil {
			return articles, result, err
		}
		if want := r.pageCount(ctx, pdfPath); want > 0 && len(pages) > 0 && want != len(pages) {
			fmt.Fprintf(w, "WARNING: %s has %d of %d page images; delete them to render again.\n",
				id, len(pages), want)
			result.Incomplete++
			rec.Record(ctx, ledger.StageRender, name, ledger.StatusBroken,
				fmt.Sprintf("%d of %d page images", len(pages), want))
			continue
		}
		if len(pages) > 0 {
			articles = append(articles, types.Article{ID: id, PDFPath: pdfPath, Pages: pages})
		}
	}
	return articles, result, nil
}

// pageCount returns the page count pdfinfo reports for pdfPath, or 0 when
// it cannot tell.
func (r *Renderer) pageCount(ctx context.Context, pdfPath string) int {
	res := r.Tools.Inspect(ctx, pdfPath)
	if !res.OK {
		return 0
	}
	return res.Pages
}

// firstPageExists reports whether the converter's first output for id is
// on disk: <id>-0.jpg for multi-page documents, <id>.jpg for one page.
func (r *Renderer) firstPageExists(id string) bool {
	for _, name := range []string{id + "-0" + imageExt, id + imageExt} {
		if _, err := os.Stat(filepath.Join(r.ImageDir, name)); err == nil {
			return true
		}
	}
	return false
}

// CollectPages finds the raw page images the converter wrote for id in dir,
// ordered by page index. <id>.jpg counts as page 0.
func CollectPages(dir, id string) ([]types.PageImage, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}
	re := regexp.MustCompile(`^` + regexp.QuoteMeta(id) + `(?:-(\d+))?` + regexp.QuoteMeta(imageExt) + `$`)

	var pages []types.PageImage
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := re.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		token := 0
		if m[1] != "" {
			token, _ = strconv.Atoi(m[1])
		}
		pages = append(pages, types.PageImage{Path: filepath.Join(dir, e.Name()), RawToken: token})
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].RawToken < pages[j].RawToken })
	return pages, nil
}

func listPDFs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), pdfExt) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

