package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/poiesic/ledgersync/core"
	"github.com/poiesic/ledgersync/enrich"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGoldie(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func sampleRun() *core.SyncRun {
	started := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	run := core.NewSyncRun("0195514e-8f2a-7c3e-9d41-2b6a7e0f1c55", "user-1", "company-1", "quickbooks", 5, started)
	run.Stats.NewItems = 3
	run.Stats.UpdatedItems = 1
	run.Stats.FailedItems = 1
	return run
}

func TestWriteSummary(t *testing.T) {
	t.Run("completed", func(t *testing.T) {
		run := sampleRun()
		require.NoError(t, run.Complete(run.StartedAt.Add(1500*time.Millisecond)))

		var buf bytes.Buffer
		writeSummary(&buf, run)
		newGoldie(t).Assert(t, "summary_completed", buf.Bytes())
	})

	t.Run("failed", func(t *testing.T) {
		run := sampleRun()
		require.NoError(t, run.Fail(run.StartedAt.Add(2*time.Second), assert.AnError))

		var buf bytes.Buffer
		writeSummary(&buf, run)
		newGoldie(t).Assert(t, "summary_failed", buf.Bytes())
	})
}

func TestWriteRuns(t *testing.T) {
	run := sampleRun()
	require.NoError(t, run.Complete(run.StartedAt.Add(time.Second)))
	pending := core.NewSyncRun("0195514f-0000-7000-8000-000000000001", "user-1", "company-1", "xero", 2, run.StartedAt.Add(time.Hour))

	var buf bytes.Buffer
	require.NoError(t, writeRuns(&buf, []*core.SyncRun{pending, run}))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, []string{"ID", "SOURCE", "STATUS", "STARTED", "TOTAL", "NEW", "UPDATED", "FAILED"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{pending.ID, "xero", "in_progress", "2025-03-01T09:00:00Z", "2", "0", "0", "0"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{run.ID, "quickbooks", "completed", "2025-03-01T08:00:00Z", "5", "3", "1", "1"}, strings.Fields(lines[2]))
}

func TestWriteClassification(t *testing.T) {
	var buf bytes.Buffer
	writeClassification(&buf, &enrich.Classification{Category: "software", Vendor: "Linode", Confidence: 0.875})
	assert.Equal(t, "Category:   software\nVendor:     Linode\nConfidence: 0.88\n", buf.String())
}

func TestReadRecords(t *testing.T) {
	records, err := readRecords("-", strings.NewReader(batchJSON))
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "inv-3", records[2].SourceID)
	assert.Equal(t, map[string]string{"memo": "monthly"}, records[2].Extra)

	_, err = readRecords(filepath.Join(t.TempDir(), "missing.json"), nil)
	assert.ErrorContains(t, err, "open records")
}
