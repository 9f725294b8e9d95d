package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/foodwatch-nsw/offences-cli/internal/store"
)

func TestFormatRuns(t *testing.T) {
	started := time.Date(2026, 8, 24, 6, 0, 0, 0, time.UTC)
	finished := started.Add(90 * time.Second)

	runs := []*store.Run{
		{
			ID:         "abc12345-6789-0000-0000-000000000000",
			Command:    "geocode",
			Stats:      &store.RunStats{Processed: 40, CacheHits: 30, Resolved: 8, Failed: 2},
			StartedAt:  started,
			FinishedAt: &finished,
		},
		{
			ID:        "def12345-6789-0000-0000-000000000000",
			Command:   "group",
			StartedAt: started,
		},
	}

	var buf bytes.Buffer
	formatRuns(&buf, runs)

	output := buf.String()
	assert.Contains(t, output, "COMMAND")
	assert.Contains(t, output, "geocode")
	assert.Contains(t, output, "1m30s")
	assert.Contains(t, output, `"cache_hits":30`)
	// Unfinished run shows placeholders.
	assert.Contains(t, output, "group")
	assert.Contains(t, output, "-")
}
