// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pdiddy/pmc-pages/internal/fetch"
	"github.com/pdiddy/pmc-pages/internal/normalize"
	"github.com/pdiddy/pmc-pages/internal/pipeline"
	"github.com/pdiddy/pmc-pages/internal/render"
)

func TestWriteFailureSummary(t *testing.T) {
	tests := []struct {
		name   string
		report pipeline.Report
		want   string
	}{
		{
			name: "clean run prints nothing",
			report: pipeline.Report{
				Fetch:     fetch.BatchResult{Downloaded: 2},
				Render:    render.BatchResult{Rendered: 2},
				Normalize: normalize.BatchResult{Normalized: 2},
			},
		},
		{
			name: "counts problems per stage",
			report: pipeline.Report{
				Fetch:     fetch.BatchResult{Downloaded: 2, Failed: 1, Broken: 1},
				Render:    render.BatchResult{Rendered: 1, Skipped: 1, Incomplete: 1},
				Normalize: normalize.BatchResult{Normalized: 1},
			},
			want: "Problems: fetch 2 of 3, render 1 of 2, normalize 0 of 1. See \"pmc-pages status\".\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			writeFailureSummary(&buf, tt.report)
			assert.Equal(t, tt.want, buf.String())
		})
	}
}
