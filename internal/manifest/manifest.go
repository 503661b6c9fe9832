// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package manifest stores the per-article page record next to the images,
// so a later run knows an article's pages without reparsing filenames.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/pmc-pages/pkg/types"
)

// Ext is the sidecar filename suffix, e.g. PMC001.pages.yaml.
const Ext = ".pages.yaml"

// Path returns the sidecar location for id in dir.
func Path(dir, id string) string {
	return filepath.Join(dir, id+Ext)
}

// Exists reports whether id already has a sidecar in dir.
func Exists(dir, id string) bool {
	_, err := os.Stat(Path(dir, id))
	return err == nil
}

// Write stores a in dir, replacing any earlier record.
func Write(dir string, a types.Article) error {
	data, err := yaml.Marshal(&a)
	if err != nil {
		return fmt.Errorf("marshaling manifest for %s: %w", a.ID, err)
	}
	path := Path(dir, a.ID)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing manifest for %s: %w", a.ID, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("writing manifest for %s: %w", a.ID, err)
	}
	return nil
}

// Read loads the sidecar for id from dir.
func Read(dir, id string) (types.Article, error) {
	data, err := os.ReadFile(Path(dir, id))
	if err != nil {
		return types.Article{}, fmt.Errorf("reading manifest for %s: %w", id, err)
	}
	var a types.Article
	if err := yaml.Unmarshal(data, &a); err != nil {
		return types.Article{}, fmt.Errorf("parsing manifest for %s: %w", id, err)
	}
	if a.ID != id {
		return types.Article{}, fmt.Errorf("manifest %s names article %q", Path(dir, id), a.ID)
	}
	return a, nil
}
