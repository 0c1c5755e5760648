package crawler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrontier_FIFOOrder(t *testing.T) {
	frontier := NewFrontier()
	frontier.Enqueue("A", 0)
	frontier.Enqueue("B", 0)
	frontier.Enqueue("C", 1)

	first, ok := frontier.Pop()
	require.True(t, ok)
	assert.Equal(t, "A", first.Title)

	second, ok := frontier.Pop()
	require.True(t, ok)
	assert.Equal(t, "B", second.Title)

	third, ok := frontier.Pop()
	require.True(t, ok)
	assert.Equal(t, "C", third.Title)
	assert.Equal(t, 1, third.Depth)

	_, ok = frontier.Pop()
	assert.False(t, ok)
}

func TestFrontier_DuplicateEnqueueTolerated(t *testing.T) {
	frontier := NewFrontier()
	frontier.Enqueue("A", 1)
	frontier.Enqueue("A", 2)
	frontier.Enqueue("A", 3)

	// Duplicates live in the queue; the visited set decides at pop time.
	assert.Equal(t, 3, frontier.Len())

	entry, ok := frontier.Pop()
	require.True(t, ok)
	frontier.MarkVisited(entry.Title)

	for {
		next, ok := frontier.Pop()
		if !ok {
			break
		}
		assert.True(t, frontier.Visited(next.Title))
	}
}

func TestFrontier_VisitedIsTerminal(t *testing.T) {
	frontier := NewFrontier()
	assert.False(t, frontier.Visited("A"))

	frontier.MarkVisited("A")
	assert.True(t, frontier.Visited("A"))

	// Enqueueing a visited title is allowed; it is skipped when popped.
	frontier.Enqueue("A", 0)
	assert.True(t, frontier.Visited("A"))
	assert.Equal(t, 1, frontier.VisitedCount())
}
