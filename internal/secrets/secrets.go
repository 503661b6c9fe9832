// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets reads operator-private values kept out of the config
// file, one per file under .secrets/. The only value pmc-pages uses is the
// contact e-mail it adds to the User-Agent of every request to PubMed
// Central; other files are loaded but ignored.
package secrets

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// KeyContactEmail names the file holding the operator's e-mail address.
// PubMed Central asks automated clients to identify a contact.
const KeyContactEmail = "contact-email"

// Load returns the non-empty values in dir keyed by filename. Dotfiles and
// subdirectories are ignored. A missing dir yields an empty map; a file
// that cannot be read is reported on warn and left out.
func Load(dir string, warn io.Writer) (map[string]string, error) {
	values := make(map[string]string)
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return values, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		value, err := readValue(filepath.Join(dir, entry.Name()))
		if err != nil {
			fmt.Fprintf(warn, "warning: skipping secret %s: %v\n", entry.Name(), err)
			continue
		}
		if value != "" {
			values[entry.Name()] = value
		}
	}
	return values, nil
}

func readValue(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// UserAgent appends the contact e-mail from secrets, if any, to base in the
// conventional "(mailto:...)" form.
func UserAgent(base string, secrets map[string]string) string {
	email := secrets[KeyContactEmail]
	if email == "" {
		return base
	}
	return fmt.Sprintf("%s (mailto:%s)", base, email)
}
