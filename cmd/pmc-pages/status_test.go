// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/pdiddy/pmc-pages/internal/ledger"
)

func TestWriteSummary(t *testing.T) {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	sum := ledger.Summary{
		RunID:      "run-1",
		StartedAt:  start,
		FinishedAt: start.Add(90 * time.Second),
		Endpoint:   "US NIH",
		Counts: map[ledger.Stage]map[ledger.Status]int{
			ledger.StageFetch:  {ledger.StatusDone: 2, ledger.StatusFailed: 1},
			ledger.StageRender: {ledger.StatusDone: 2},
		},
		Problems: []ledger.Event{
			{Stage: ledger.StageFetch, Item: "PMC003", Status: ledger.StatusFailed, Detail: "curl: (22)\nHTTP 404"},
		},
	}

	var buf bytes.Buffer
	writeSummary(&buf, sum)
	out := buf.String()

	assert.Contains(t, out, "Run run-1")
	assert.Contains(t, out, "Server:   US NIH")
	assert.Contains(t, out, "(1m30s)")
	assert.Contains(t, out, "normalize")
	assert.Contains(t, out, "PMC003")
	assert.Contains(t, out, "curl: (22) HTTP 404")
}

func TestWriteSummary_Unfinished(t *testing.T) {
	var buf bytes.Buffer
	writeSummary(&buf, ledger.Summary{RunID: "run-2", StartedAt: time.Now()})
	assert.Contains(t, buf.String(), "Finished: no")
	assert.NotContains(t, buf.String(), "Server:")
	assert.Contains(t, buf.String(), "fetch")
}

func TestRenderTable(t *testing.T) {
	assert.Empty(t, renderTable(nil, nil))

	out := renderTable([]string{"Stage", "done"}, [][]string{{"fetch", "12"}, {"render"}}, 2)
	assert.Contains(t, out, "fetch")
	assert.Contains(t, out, "12")
	assert.Contains(t, out, "render")
}
