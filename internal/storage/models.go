package storage

// Page represents one encyclopedia article stored in the graph
type Page struct {
	Title   string `json:"title"`
	Summary string `json:"summary,omitempty"`
	URL     string `json:"url,omitempty"`
}

// PageRef is a lightweight reference to a stored page: the store-assigned
// element id plus the title label
type PageRef struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Neighborhood is the raw query result used to build a visualization graph:
// the center page plus budget-truncated candidate neighbor lists.
// Candidate entries may be nil when an optional match produced no node.
type Neighborhood struct {
	Center   PageRef
	Outgoing []*PageRef
	Incoming []*PageRef
}

// SearchHit is one row of a title search result
type SearchHit struct {
	Title string `json:"title"`
	URL   string `json:"url,omitempty"`
}

// RankedPage is one row of a degree ranking (most-referenced or hubs)
type RankedPage struct {
	Title  string `json:"title"`
	Degree int64  `json:"degree"`
}

// PagePair is a mutually-linked pair of pages
type PagePair struct {
	A string `json:"a"`
	B string `json:"b"`
}

// Triangle is a directed 3-cycle of pages
type Triangle struct {
	A string `json:"a"`
	B string `json:"b"`
	C string `json:"c"`
}
