package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/poiesic/ledgersync/core"
	"github.com/poiesic/ledgersync/enrich"
)

// readRecords decodes a JSON array of records from path, or from stdin
// when path is "-".
func readRecords(path string, stdin io.Reader) ([]core.IncomingRecord, error) {
	r := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open records: %w", err)
		}
		defer f.Close()
		r = f
	}

	var records []core.IncomingRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to decode records: %w", err)
	}
	return records, nil
}

func writeSummary(w io.Writer, run *core.SyncRun) {
	fmt.Fprintf(w, "Run:      %s\n", run.ID)
	fmt.Fprintf(w, "Status:   %s\n", run.Status)
	fmt.Fprintf(w, "Owner:    %s\n", run.OwnerID)
	fmt.Fprintf(w, "Source:   %s\n", run.SourceSystem)
	fmt.Fprintf(w, "Company:  %s\n", run.ExternalCompanyID)
	fmt.Fprintf(w, "Started:  %s\n", formatTime(run.StartedAt))
	fmt.Fprintf(w, "Finished: %s\n", formatTime(run.FinishedAt))
	fmt.Fprintf(w, "Duration: %s\n", time.Duration(run.Stats.DurationMs)*time.Millisecond)
	fmt.Fprintf(w, "Items:    %d total, %d new, %d updated, %d failed\n",
		run.Stats.TotalItems, run.Stats.NewItems, run.Stats.UpdatedItems, run.Stats.FailedItems)
	if run.Error != "" {
		fmt.Fprintf(w, "Error:    %s\n", run.Error)
	}
}

func writeRuns(w io.Writer, runs []*core.SyncRun) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "No sync runs")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSOURCE\tSTATUS\tSTARTED\tTOTAL\tNEW\tUPDATED\tFAILED")
	for _, run := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\t%d\t%d\n",
			run.ID, run.SourceSystem, run.Status, formatTime(run.StartedAt),
			run.Stats.TotalItems, run.Stats.NewItems, run.Stats.UpdatedItems, run.Stats.FailedItems)
	}
	return tw.Flush()
}

func writeClassification(w io.Writer, cls *enrich.Classification) {
	fmt.Fprintf(w, "Category:   %s\n", cls.Category)
	fmt.Fprintf(w, "Vendor:     %s\n", cls.Vendor)
	fmt.Fprintf(w, "Confidence: %.2f\n", cls.Confidence)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format(time.RFC3339)
}
