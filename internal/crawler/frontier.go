package crawler

// Entry is one unit of crawl work: a page title at a traversal depth
type Entry struct {
	Title string
	Depth int
}

// Frontier is the FIFO work queue driving a breadth-first crawl, paired
// with the visited set. A title may be enqueued more than once; the
// visited check at pop time is the single source of truth for "already
// handled", so the enqueue path stays cheap.
type Frontier struct {
	items   []Entry
	visited map[string]bool
}

// NewFrontier creates an empty frontier
func NewFrontier() *Frontier {
	return &Frontier{
		visited: make(map[string]bool),
	}
}

// Enqueue appends an entry. Duplicates are accepted; they are discarded
// at pop time once the title is visited.
func (f *Frontier) Enqueue(title string, depth int) {
	f.items = append(f.items, Entry{Title: title, Depth: depth})
}

// Pop removes and returns the oldest entry, preserving breadth-first order
func (f *Frontier) Pop() (Entry, bool) {
	if len(f.items) == 0 {
		return Entry{}, false
	}
	entry := f.items[0]
	f.items = f.items[1:]
	return entry, true
}

// Visited reports whether a title has been processed
func (f *Frontier) Visited(title string) bool {
	return f.visited[title]
}

// MarkVisited records a title as processed. There is no way back: once
// visited, a title is never fetched again in this run.
func (f *Frontier) MarkVisited(title string) {
	f.visited[title] = true
}

// Len returns the number of queued entries, duplicates included
func (f *Frontier) Len() int {
	return len(f.items)
}

// VisitedCount returns the number of processed titles
func (f *Frontier) VisitedCount() int {
	return len(f.visited)
}
