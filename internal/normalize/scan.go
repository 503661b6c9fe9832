// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/pdiddy/pmc-pages/pkg/types"
)

// normalizedName matches a stem already in <id>-NN-kk shape.
var normalizedName = regexp.MustCompile(`^(.+)-(\d{2,})-(\d{2,})$`)

// ParseError reports an image filename that is neither raw converter output
// nor already normalized.
type ParseError struct {
	Name   string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse %s: %s", e.Name, e.Reason)
}

// Plan is the result of scanning an image directory without manifests.
type Plan struct {
	// Articles holds raw page groups, sorted by identifier.
	Articles []types.Article
	// AlreadyNormalized lists filenames in final shape, left untouched.
	AlreadyNormalized []string
	// Errors lists filenames that could not be parsed.
	Errors []*ParseError
}

// SplitName splits a raw image stem on its last hyphen into identifier and
// page index. A stem without a hyphen is the converter's single-page output
// and has index 0.
func SplitName(stem string) (id string, token int, err error) {
	i := strings.LastIndex(stem, "-")
	if i < 0 {
		return stem, 0, nil
	}
	id, raw := stem[:i], stem[i+1:]
	if id == "" {
		return "", 0, &ParseError{Name: stem, Reason: "empty identifier"}
	}
	token, convErr := strconv.Atoi(raw)
	if convErr != nil || token < 0 {
		return "", 0, &ParseError{Name: stem, Reason: fmt.Sprintf("page token %q is not a page index", raw)}
	}
	return id, token, nil
}

// Scan reads dir and groups raw page images by identifier. Files already in
// <id>-NN-kk.jpg shape are reported and excluded, so scanning a directory
// that was normalized before yields nothing to rename.
func Scan(dir string) (Plan, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return Plan{}, fmt.Errorf("reading %s: %w", dir, err)
	}

	var plan Plan
	groups := make(map[string][]types.PageImage)
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, imageExt) {
			continue
		}
		stem := strings.TrimSuffix(name, imageExt)
		if normalizedName.MatchString(stem) {
			plan.AlreadyNormalized = append(plan.AlreadyNormalized, name)
			continue
		}
		id, token, err := SplitName(stem)
		if err != nil {
			var pe *ParseError
			if errors.As(err, &pe) {
				pe.Name = name
			}
			plan.Errors = append(plan.Errors, pe)
			continue
		}
		groups[id] = append(groups[id], types.PageImage{Path: filepath.Join(dir, name), RawToken: token})
	}

	ids := make([]string, 0, len(groups))
	for id := range groups {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		pages := groups[id]
		sort.Slice(pages, func(i, j int) bool { return pages[i].RawToken < pages[j].RawToken })
		plan.Articles = append(plan.Articles, types.Article{ID: id, Pages: pages})
	}
	sort.Strings(plan.AlreadyNormalized)
	return plan, nil
}
