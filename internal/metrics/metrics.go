package metrics

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// Metrics is the snapshot written to the metrics file when a crawl ends
type Metrics struct {
	StartTime         time.Time `json:"start_time"`
	EndTime           time.Time `json:"end_time"`
	DurationSeconds   float64   `json:"duration_seconds"`
	PagesFetched      int       `json:"pages_fetched"`
	PagesFailed       int       `json:"pages_failed"`
	PagesDiscovered   int       `json:"pages_discovered"`
	LinksMerged       int       `json:"links_merged"`
	AliasesMerged     int       `json:"aliases_merged"`
	TerminationReason string    `json:"termination_reason"`
}

// Tracker holds and manages crawl metrics
type Tracker struct {
	mu   sync.Mutex
	data Metrics
}

// NewTracker creates a new metrics tracker
func NewTracker() *Tracker {
	return &Tracker{
		data: Metrics{
			StartTime: time.Now(),
		},
	}
}

// IncrementPagesFetched increments the successful fetch counter
func (t *Tracker) IncrementPagesFetched() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.data.PagesFetched++
}

// IncrementPagesFailed increments the failed/missing fetch counter
func (t *Tracker) IncrementPagesFailed() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.data.PagesFailed++
}

// IncrementPagesDiscovered increments the counter of titles first seen as
// link targets
func (t *Tracker) IncrementPagesDiscovered() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.data.PagesDiscovered++
}

// IncrementLinksMerged increments the merged link edge counter
func (t *Tracker) IncrementLinksMerged() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.data.LinksMerged++
}

// IncrementAliasesMerged increments the merged alias edge counter
func (t *Tracker) IncrementAliasesMerged() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.data.AliasesMerged++
}

// GetSnapshot returns a copy of current metrics
func (t *Tracker) GetSnapshot() Metrics {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.data
}

// LogProgress returns a human-readable progress line
func (t *Tracker) LogProgress() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	elapsed := time.Since(t.data.StartTime).Round(time.Second)
	return fmt.Sprintf("fetched=%d failed=%d discovered=%d links=%d aliases=%d elapsed=%s",
		t.data.PagesFetched, t.data.PagesFailed, t.data.PagesDiscovered,
		t.data.LinksMerged, t.data.AliasesMerged, elapsed)
}

// WriteToFile appends a final metrics snapshot as one JSON line
func (t *Tracker) WriteToFile(path, terminationReason string) error {
	t.mu.Lock()
	snapshot := t.data
	t.mu.Unlock()

	snapshot.EndTime = time.Now()
	snapshot.DurationSeconds = snapshot.EndTime.Sub(snapshot.StartTime).Seconds()
	snapshot.TerminationReason = terminationReason

	line, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal metrics: %w", err)
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open metrics file: %w", err)
	}
	defer file.Close()

	if _, err := file.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	return nil
}
