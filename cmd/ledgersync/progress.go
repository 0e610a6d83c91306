package main

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// ProgressTracker reports reconciliation progress chunk by chunk.
type ProgressTracker struct {
	writer    io.Writer
	total     int
	current   int
	reported  bool
	startTime time.Time
	started   bool
	now       func() time.Time
	mu        sync.Mutex
}

// NewProgressTracker creates a tracker for total records writing to writer,
// typically stderr.
func NewProgressTracker(writer io.Writer, total int) *ProgressTracker {
	return &ProgressTracker{
		writer: writer,
		total:  total,
		now:    time.Now,
	}
}

// Start begins tracking progress.
func (p *ProgressTracker) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.startTime = p.now()
	p.started = true
	p.current = 0
	p.reported = false
}

// Update records that done of total records are finished. Its signature
// matches reconcile.ProgressFunc.
func (p *ProgressTracker) Update(done, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return
	}
	if total > 0 {
		p.total = total
	}
	p.current = min(done, p.total)
	p.report()
}

// Finish prints the final progress line. A run that stopped early keeps
// its last count.
func (p *ProgressTracker) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return
	}
	if !p.reported {
		p.report()
	}
	fmt.Fprintln(p.writer)
	p.started = false
}

// Elapsed returns the time elapsed since Start was called.
func (p *ProgressTracker) Elapsed() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return 0
	}
	return p.now().Sub(p.startTime)
}

// report prints the current progress. Must be called with lock held.
func (p *ProgressTracker) report() {
	rate := 0.0
	if elapsed := p.now().Sub(p.startTime); elapsed > 0 {
		rate = float64(p.current) / elapsed.Seconds()
	}

	percentage := 0.0
	if p.total > 0 {
		percentage = float64(p.current) / float64(p.total) * 100.0
	}

	fmt.Fprintf(p.writer, "\rReconciled: %d/%d (%.1f%%) - %.1f records/s",
		p.current, p.total, percentage, rate)
	p.reported = true
}
