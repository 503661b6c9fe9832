// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package idlist reads the article identifier list that drives a run.
package idlist

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Read returns the identifiers in path, one per line, in file order.
// Duplicates are kept. Surrounding whitespace is trimmed and blank lines
// are dropped so that no identifier maps to an empty filename.
func Read(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening identifier list: %w", err)
	}
	defer f.Close()

	var ids []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		id := strings.TrimSpace(sc.Text())
		if id == "" {
			continue
		}
		ids = append(ids, id)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading identifier list %s: %w", path, err)
	}
	return ids, nil
}
