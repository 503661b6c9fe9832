// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// PageImage is one rendered page of an article.
type PageImage struct {
	// Path is the current location of the image file.
	Path string `json:"path" yaml:"path"`

	// RawToken is the 0-based page index the converter embedded in the
	// intermediate filename. Single-page output carries no index and is
	// recorded as 0.
	RawToken int `json:"raw_token" yaml:"raw_token"`
}

// Article links an identifier to its PDF and its ordered page images. The
// renderer builds it; the normalizer consumes it and records the outcome in
// a sidecar file so later runs do not reparse filenames.
type Article struct {
	// ID is the identifier read from the input list (e.g. "PMC3539452").
	ID string `json:"id" yaml:"id"`

	// PDFPath is the local path of <id>.pdf.
	PDFPath string `json:"pdf_path" yaml:"pdf_path"`

	// Pages lists page images ordered by RawToken.
	Pages []PageImage `json:"pages" yaml:"pages"`

	// Normalized reports whether Pages already carry final filenames.
	Normalized bool `json:"normalized" yaml:"normalized"`
}

// PageCount returns the number of rendered pages.
func (a Article) PageCount() int {
	return len(a.Pages)
}
