package metrics

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracker_Counters(t *testing.T) {
	tracker := NewTracker()
	tracker.IncrementPagesFetched()
	tracker.IncrementPagesFetched()
	tracker.IncrementPagesFailed()
	tracker.IncrementPagesDiscovered()
	tracker.IncrementLinksMerged()
	tracker.IncrementAliasesMerged()

	snapshot := tracker.GetSnapshot()
	assert.Equal(t, 2, snapshot.PagesFetched)
	assert.Equal(t, 1, snapshot.PagesFailed)
	assert.Equal(t, 1, snapshot.PagesDiscovered)
	assert.Equal(t, 1, snapshot.LinksMerged)
	assert.Equal(t, 1, snapshot.AliasesMerged)
}

func TestTracker_LogProgress(t *testing.T) {
	tracker := NewTracker()
	tracker.IncrementPagesFetched()

	line := tracker.LogProgress()
	assert.Contains(t, line, "fetched=1")
	assert.Contains(t, line, "failed=0")
}

func TestTracker_WriteToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metrics.log")

	tracker := NewTracker()
	tracker.IncrementPagesFetched()
	require.NoError(t, tracker.WriteToFile(path, "frontier_empty"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var snapshot Metrics
	require.NoError(t, json.Unmarshal(data, &snapshot))
	assert.Equal(t, 1, snapshot.PagesFetched)
	assert.Equal(t, "frontier_empty", snapshot.TerminationReason)

	// Appends one line per run.
	require.NoError(t, tracker.WriteToFile(path, "signal"))
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, countLines(data))
}

func countLines(data []byte) int {
	count := 0
	for _, b := range data {
		if b == '\n' {
			count++
		}
	}
	return count
}
