// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package preflight

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pmc-pages/pkg/types"
)

const pdfPattern = `rights=".*read.*" pattern="PDF"`

var requirements = []types.ToolRequirement{
	{Command: "curl", Package: "curl"},
	{Command: "pdfinfo", Package: "poppler-utils"},
	{Command: "convert", Package: "imagemagick"},
}

func lookupOnly(bins ...string) Lookup {
	have := make(map[string]bool, len(bins))
	for _, b := range bins {
		have[b] = true
	}
	return func(file string) (string, error) {
		if have[file] {
			return "/usr/bin/" + file, nil
		}
		return "", errors.New("not found")
	}
}

func writePolicy(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "policy.xml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestCheckTools(t *testing.T) {
	tests := []struct {
		name         string
		lookup       Lookup
		wantMissing  []string
		wantPackages []string
	}{
		{"all present", lookupOnly("curl", "pdfinfo", "convert"), nil, nil},
		{"converter missing", lookupOnly("curl", "pdfinfo"), []string{"convert"}, []string{"imagemagick"}},
		{
			name:         "collects every missing tool",
			lookup:       lookupOnly("curl"),
			wantMissing:  []string{"pdfinfo", "convert"},
			wantPackages: []string{"poppler-utils", "imagemagick"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := CheckTools(tt.lookup, requirements)
			assert.Equal(t, tt.wantMissing, r.Missing)
			assert.Equal(t, tt.wantPackages, r.Packages)
			assert.Equal(t, len(tt.wantMissing) == 0, r.OK())
		})
	}
}

func TestCheckPolicy(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr bool
	}{
		{"read write granted", `<policy domain="coder" rights="read|write" pattern="PDF" />`, false},
		{"read only granted", `<policy domain="coder" rights="read" pattern="PDF" />`, false},
		{"none", `<policy domain="coder" rights="none" pattern="PDF" />`, true},
		{"pdf rule absent", `<policy domain="coder" rights="read" pattern="PS" />`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckPolicy(writePolicy(t, "<policymap>\n  "+tt.content+"\n</policymap>\n"), pdfPattern)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			var pe *PolicyError
			require.ErrorAs(t, err, &pe)
			assert.NoError(t, pe.Err)
		})
	}
}

func TestCheckPolicy_MissingFile(t *testing.T) {
	err := CheckPolicy(filepath.Join(t.TempDir(), "absent.xml"), pdfPattern)
	var pe *PolicyError
	require.ErrorAs(t, err, &pe)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestValidate(t *testing.T) {
	okPolicy := writePolicy(t, `<policy domain="coder" rights="read|write" pattern="PDF" />`)
	badPolicy := writePolicy(t, `<policy domain="coder" rights="none" pattern="PDF" />`)

	cfg := func(policy string) types.PipelineConfig {
		return types.PipelineConfig{
			Tools:          requirements,
			InstallCommand: "sudo apt install",
			PolicyPath:     policy,
			PolicyPattern:  pdfPattern,
		}
	}

	t.Run("all checks pass", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, Validate(lookupOnly("curl", "pdfinfo", "convert"), cfg(okPolicy), &out))
		assert.Contains(t, out.String(), "...tools ok.")
		assert.Contains(t, out.String(), "...permissions ok.")
	})

	t.Run("missing tools listed with one install hint", func(t *testing.T) {
		var out bytes.Buffer
		err := Validate(lookupOnly("curl"), cfg(okPolicy), &out)
		var mt *MissingToolsError
		require.ErrorAs(t, err, &mt)
		assert.Equal(t, "sudo apt install poppler-utils imagemagick", mt.Remediation())
		assert.Contains(t, out.String(), "Cannot proceed, missing tools: pdfinfo, convert")
		assert.Contains(t, out.String(), "To install, run: sudo apt install poppler-utils imagemagick")
		assert.NotContains(t, out.String(), "Checking PDF permissions")
	})

	t.Run("policy denies pdf", func(t *testing.T) {
		var out bytes.Buffer
		err := Validate(lookupOnly("curl", "pdfinfo", "convert"), cfg(badPolicy), &out)
		var pe *PolicyError
		require.ErrorAs(t, err, &pe)
		assert.Contains(t, out.String(), `rights="read|write" pattern="PDF"`)
		assert.Contains(t, out.String(), badPolicy)
	})
}
