// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package toolchain

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockExecutor records calls and delegates to runFunc.
type mockExecutor struct {
	availableBins map[string]bool
	runFunc       func(name string, args []string) ([]byte, error)
	calls         []string
}

func (m *mockExecutor) LookPath(file string) (string, error) {
	if m.availableBins[file] {
		return "/usr/bin/" + file, nil
	}
	return "", errors.New("not found: " + file)
}

func (m *mockExecutor) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	m.calls = append(m.calls, name+" "+strings.Join(args, " "))
	if m.runFunc != nil {
		return m.runFunc(name, args)
	}
	return nil, nil
}

// outputArg returns the value following --output in a curl argv.
func outputArg(args []string) string {
	for i, a := range args {
		if a == "--output" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

func TestDownload_Success(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "PMC1.pdf")
	exec := &mockExecutor{runFunc: func(name string, args []string) ([]byte, error) {
		require.Equal(t, "curl", name)
		return nil, os.WriteFile(outputArg(args), make([]byte, 4096), 0o644)
	}}
	l := newLocal(exec, "pmc-pages/test", nil)

	r := l.Download(context.Background(), "https://example.org/PMC1/pdf", dest)
	require.True(t, r.OK, "download failed: %v", r.Err)
	assert.Equal(t, int64(4096), r.Bytes)
	assert.FileExists(t, dest)
	assert.NoFileExists(t, dest+partialSuffix)

	require.Len(t, exec.calls, 1)
	assert.Contains(t, exec.calls[0], "--location")
	assert.Contains(t, exec.calls[0], "--user-agent pmc-pages/test")
	assert.True(t, strings.HasSuffix(exec.calls[0], "https://example.org/PMC1/pdf"))
}

func TestDownload_FailureLeavesNoFile(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "PMC1.pdf")
	exec := &mockExecutor{runFunc: func(_ string, args []string) ([]byte, error) {
		_ = os.WriteFile(outputArg(args), []byte("<html>"), 0o644)
		return []byte("curl: (22) 404"), errors.New("exit status 22")
	}}
	l := newLocal(exec, "", nil)

	r := l.Download(context.Background(), "https://example.org/PMC1/pdf", dest)
	assert.False(t, r.OK)
	require.Error(t, r.Err)
	assert.Contains(t, r.Output, "404")
	assert.NoFileExists(t, dest)
	assert.NoFileExists(t, dest+partialSuffix)
	assert.NotContains(t, exec.calls[0], "--user-agent")
}

func TestInspect(t *testing.T) {
	tests := []struct {
		name      string
		output    string
		err       error
		wantOK    bool
		wantPages int
	}{
		{
			name:      "valid pdf",
			output:    "Title:          Example\nProducer:       LaTeX\nPages:          12\nEncrypted:      no\n",
			wantOK:    true,
			wantPages: 12,
		},
		{
			name:   "valid pdf without pages field",
			output: "Title: x\n",
			wantOK: true,
		},
		{
			name:   "broken pdf",
			output: "Syntax Error: Couldn't find trailer dictionary\n",
			err:    errors.New("exit status 1"),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec := &mockExecutor{runFunc: func(name string, args []string) ([]byte, error) {
				assert.Equal(t, "pdfinfo", name)
				assert.Equal(t, []string{"pdfs/PMC1.pdf"}, args)
				return []byte(tt.output), tt.err
			}}
			r := newLocal(exec, "", nil).Inspect(context.Background(), "pdfs/PMC1.pdf")
			assert.Equal(t, tt.wantOK, r.OK)
			assert.Equal(t, tt.wantPages, r.Pages)
		})
	}
}

func TestRasterize_Args(t *testing.T) {
	exec := &mockExecutor{}
	r := newLocal(exec, "", nil).Rasterize(context.Background(), "pdfs/PMC1.pdf", "imgs/PMC1.jpg")
	assert.True(t, r.OK)
	assert.Equal(t, []string{"convert pdfs/PMC1.pdf -colorspace sRGB imgs/PMC1.jpg"}, exec.calls)
}

func TestRasterize_Failure(t *testing.T) {
	exec := &mockExecutor{runFunc: func(string, []string) ([]byte, error) {
		return []byte("not authorized `PDF'"), errors.New("exit status 1")
	}}
	r := newLocal(exec, "", nil).Rasterize(context.Background(), "a.pdf", "a.jpg")
	assert.False(t, r.OK)
	assert.ErrorContains(t, r.Err, "convert")
}

func TestResultDetail(t *testing.T) {
	tests := []struct {
		name string
		r    Result
		want string
	}{
		{"error only", Result{Err: errors.New("curl: exit status 22")}, "curl: exit status 22"},
		{
			"error and output",
			Result{Err: errors.New("curl: exit status 22"), Output: "curl: (22) The requested URL\nreturned error: 404\n"},
			"curl: exit status 22: curl: (22) The requested URL returned error: 404",
		},
		{"nothing", Result{}, "unknown failure"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.r.Detail())
		})
	}
}

func TestLookPath(t *testing.T) {
	l := newLocal(&mockExecutor{availableBins: map[string]bool{"curl": true}}, "", nil)
	p, err := l.LookPath("curl")
	require.NoError(t, err)
	assert.Equal(t, "/usr/bin/curl", p)

	_, err = l.LookPath("convert")
	assert.Error(t, err)
}

func TestParsePages(t *testing.T) {
	assert.Equal(t, 3, parsePages("Pages:   3\n"))
	assert.Equal(t, 0, parsePages("Pages: many\n"))
	assert.Equal(t, 0, parsePages(""))
	assert.Equal(t, 7, parsePages("Page size: 612 x 792 pts\nPages: 7\n"))
}
