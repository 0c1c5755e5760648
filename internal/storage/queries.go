package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

const (
	// SearchLimit caps title search results
	SearchLimit = 10

	// PathMaxHops bounds shortest path traversal
	PathMaxHops = 10

	// maxExpandHops bounds the variable-length neighborhood expansion.
	// The hop count is formatted into the pattern position, so it is
	// clamped here rather than trusted from the caller.
	maxExpandHops = 5
)

// readOnlyKeywords are the clause keywords a pass-through query may begin
// with. Anything else is rejected before a session is ever opened.
var readOnlyKeywords = map[string]bool{
	"MATCH":    true,
	"OPTIONAL": true,
	"RETURN":   true,
	"WITH":     true,
	"UNWIND":   true,
}

// IsReadOnly reports whether a pass-through query begins with a read-only
// clause keyword
func IsReadOnly(query string) bool {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return false
	}
	return readOnlyKeywords[strings.ToUpper(fields[0])]
}

// SearchPages finds pages whose title contains the query substring,
// shortest titles first
func (c *Client) SearchPages(ctx context.Context, query string) ([]SearchHit, error) {
	session := c.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.Run(ctx, `
		MATCH (p:Page)
		WHERE toLower(p.title) CONTAINS toLower($query)
		RETURN p.title AS title, p.url AS url
		ORDER BY size(p.title) ASC
		LIMIT $limit`,
		map[string]any{"query": query, "limit": SearchLimit})
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	var hits []SearchHit
	for result.Next(ctx) {
		record := result.Record()
		hits = append(hits, SearchHit{
			Title: recordString(record, "title"),
			URL:   recordString(record, "url"),
		})
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	return hits, nil
}

// PageDetail returns the stored attributes of a resolved page.
// Pending pages (never fetched) report ErrNotFound.
func (c *Client) PageDetail(ctx context.Context, title string) (*Page, error) {
	session := c.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.Run(ctx, `
		MATCH (p:Page {title: $title})
		WHERE p.url IS NOT NULL
		RETURN p.title AS title, p.summary AS summary, p.url AS url`,
		map[string]any{"title": title})
	if err != nil {
		return nil, fmt.Errorf("page detail failed: %w", err)
	}

	records, err := result.Collect(ctx)
	if err != nil {
		return nil, fmt.Errorf("page detail failed: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("page %q: %w", title, ErrNotFound)
	}

	record := records[0]
	return &Page{
		Title:   recordString(record, "title"),
		Summary: recordString(record, "summary"),
		URL:     recordString(record, "url"),
	}, nil
}

// Neighborhood returns the center page plus its candidate outgoing and
// incoming neighbors, each list truncated to the caller's budget at the
// query layer. A pending or absent center reports ErrNotFound.
func (c *Client) Neighborhood(ctx context.Context, title string, outgoingBudget, incomingBudget int) (*Neighborhood, error) {
	session := c.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.Run(ctx, `
		MATCH (p:Page {title: $title})
		WHERE p.url IS NOT NULL
		OPTIONAL MATCH (p)-[:LINKS_TO]->(o:Page)
		WITH p, collect(DISTINCT o)[0..$outgoing] AS outgoing
		OPTIONAL MATCH (i:Page)-[:LINKS_TO]->(p)
		RETURN p, outgoing, collect(DISTINCT i)[0..$incoming] AS incoming`,
		map[string]any{
			"title":    title,
			"outgoing": outgoingBudget,
			"incoming": incomingBudget,
		})
	if err != nil {
		return nil, fmt.Errorf("neighborhood query failed: %w", err)
	}

	records, err := result.Collect(ctx)
	if err != nil {
		return nil, fmt.Errorf("neighborhood query failed: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("page %q: %w", title, ErrNotFound)
	}

	record := records[0]
	center, ok := recordNode(record, "p")
	if !ok {
		return nil, fmt.Errorf("page %q: %w", title, ErrNotFound)
	}

	return &Neighborhood{
		Center:   *center,
		Outgoing: recordNodeList(record, "outgoing"),
		Incoming: recordNodeList(record, "incoming"),
	}, nil
}

// ShortestPath returns the ordered pages on a shortest LINKS_TO path from
// one title to another, bounded at PathMaxHops hops. ErrNotFound when
// either endpoint is missing or no path exists within the bound.
func (c *Client) ShortestPath(ctx context.Context, from, to string, directed bool) ([]PageRef, error) {
	session := c.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	// Relationship direction cannot be parameterized, so the pattern is
	// assembled from fixed text with only the hop bound formatted in.
	arrow := ">"
	if !directed {
		arrow = ""
	}
	query := fmt.Sprintf(`
		MATCH (a:Page {title: $from}), (b:Page {title: $to})
		MATCH path = shortestPath((a)-[:LINKS_TO*..%d]-%s(b))
		RETURN [n IN nodes(path) | {id: elementId(n), title: n.title}] AS steps`,
		PathMaxHops, arrow)

	result, err := session.Run(ctx, query, map[string]any{"from": from, "to": to})
	if err != nil {
		return nil, fmt.Errorf("shortest path query failed: %w", err)
	}

	records, err := result.Collect(ctx)
	if err != nil {
		return nil, fmt.Errorf("shortest path query failed: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("path %q -> %q: %w", from, to, ErrNotFound)
	}

	value, ok := records[0].Get("steps")
	if !ok || value == nil {
		return nil, fmt.Errorf("path %q -> %q: %w", from, to, ErrNotFound)
	}

	raw, _ := value.([]any)
	steps := make([]PageRef, 0, len(raw))
	for _, item := range raw {
		fields, _ := item.(map[string]any)
		if fields == nil {
			continue
		}
		id, _ := fields["id"].(string)
		pageTitle, _ := fields["title"].(string)
		steps = append(steps, PageRef{ID: id, Title: pageTitle})
	}
	if len(steps) == 0 {
		return nil, fmt.Errorf("path %q -> %q: %w", from, to, ErrNotFound)
	}
	return steps, nil
}

// MostReferenced ranks pages by incoming link degree
func (c *Client) MostReferenced(ctx context.Context, n int) ([]RankedPage, error) {
	return c.rankByDegree(ctx, `
		MATCH (p:Page)<-[:LINKS_TO]-(q:Page)
		RETURN p.title AS title, count(q) AS degree
		ORDER BY degree DESC
		LIMIT $limit`, n)
}

// TopHubs ranks pages by outgoing link degree
func (c *Client) TopHubs(ctx context.Context, n int) ([]RankedPage, error) {
	return c.rankByDegree(ctx, `
		MATCH (p:Page)-[:LINKS_TO]->(q:Page)
		RETURN p.title AS title, count(q) AS degree
		ORDER BY degree DESC
		LIMIT $limit`, n)
}

func (c *Client) rankByDegree(ctx context.Context, query string, n int) ([]RankedPage, error) {
	session := c.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.Run(ctx, query, map[string]any{"limit": n})
	if err != nil {
		return nil, fmt.Errorf("degree ranking failed: %w", err)
	}

	var ranked []RankedPage
	for result.Next(ctx) {
		record := result.Record()
		ranked = append(ranked, RankedPage{
			Title:  recordString(record, "title"),
			Degree: recordInt(record, "degree"),
		})
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("degree ranking failed: %w", err)
	}
	return ranked, nil
}

// MutualLinks finds page pairs that link to each other
func (c *Client) MutualLinks(ctx context.Context, n int) ([]PagePair, error) {
	session := c.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.Run(ctx, `
		MATCH (a:Page)-[:LINKS_TO]->(b:Page)
		MATCH (b)-[:LINKS_TO]->(a)
		WHERE a.title < b.title
		RETURN a.title AS a, b.title AS b
		LIMIT $limit`,
		map[string]any{"limit": n})
	if err != nil {
		return nil, fmt.Errorf("mutual links query failed: %w", err)
	}

	var pairs []PagePair
	for result.Next(ctx) {
		record := result.Record()
		pairs = append(pairs, PagePair{
			A: recordString(record, "a"),
			B: recordString(record, "b"),
		})
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("mutual links query failed: %w", err)
	}
	return pairs, nil
}

// Triangles finds directed 3-cycles, deduplicated by lexicographic anchor
func (c *Client) Triangles(ctx context.Context, n int) ([]Triangle, error) {
	session := c.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.Run(ctx, `
		MATCH (a:Page)-[:LINKS_TO]->(b:Page)-[:LINKS_TO]->(c:Page)-[:LINKS_TO]->(a)
		WHERE a.title < b.title AND a.title < c.title
		RETURN a.title AS a, b.title AS b, c.title AS c
		LIMIT $limit`,
		map[string]any{"limit": n})
	if err != nil {
		return nil, fmt.Errorf("triangle query failed: %w", err)
	}

	var triangles []Triangle
	for result.Next(ctx) {
		record := result.Record()
		triangles = append(triangles, Triangle{
			A: recordString(record, "a"),
			B: recordString(record, "b"),
			C: recordString(record, "c"),
		})
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("triangle query failed: %w", err)
	}
	return triangles, nil
}

// ExpandNeighborhood returns the distinct pages reachable from a title
// within the given hop count over outgoing links. The hop count is clamped
// to [1, maxExpandHops] and substituted only into the traversal-depth
// position of the pattern.
func (c *Client) ExpandNeighborhood(ctx context.Context, title string, hops, n int) ([]PageRef, error) {
	if hops < 1 {
		hops = 1
	}
	if hops > maxExpandHops {
		hops = maxExpandHops
	}

	session := c.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	query := fmt.Sprintf(`
		MATCH (p:Page {title: $title})-[:LINKS_TO*1..%d]->(q:Page)
		RETURN DISTINCT elementId(q) AS id, q.title AS title
		LIMIT $limit`, hops)

	result, err := session.Run(ctx, query, map[string]any{"title": title, "limit": n})
	if err != nil {
		return nil, fmt.Errorf("neighborhood expansion failed: %w", err)
	}

	var pages []PageRef
	for result.Next(ctx) {
		record := result.Record()
		pages = append(pages, PageRef{
			ID:    recordString(record, "id"),
			Title: recordString(record, "title"),
		})
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("neighborhood expansion failed: %w", err)
	}
	return pages, nil
}

// ReadQuery executes an arbitrary pass-through query after verifying it
// begins with a read-only clause keyword. Rejected queries never reach
// the store.
func (c *Client) ReadQuery(ctx context.Context, query string) ([]map[string]any, error) {
	if !IsReadOnly(query) {
		return nil, ErrUnsafeQuery
	}

	session := c.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.Run(ctx, query, nil)
	if err != nil {
		return nil, fmt.Errorf("pass-through query failed: %w", err)
	}

	var rows []map[string]any
	for result.Next(ctx) {
		rows = append(rows, result.Record().AsMap())
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("pass-through query failed: %w", err)
	}
	return rows, nil
}

// recordNode extracts a node value from a record as a PageRef
func recordNode(record *neo4j.Record, key string) (*PageRef, bool) {
	value, ok := record.Get(key)
	if !ok || value == nil {
		return nil, false
	}
	node, ok := value.(neo4j.Node)
	if !ok {
		return nil, false
	}
	title, _ := node.Props["title"].(string)
	return &PageRef{ID: node.GetElementId(), Title: title}, true
}

// recordNodeList extracts a list of nodes from a record, preserving nil
// entries for unmatched candidate slots so callers can skip them
func recordNodeList(record *neo4j.Record, key string) []*PageRef {
	value, ok := record.Get(key)
	if !ok || value == nil {
		return nil
	}
	raw, _ := value.([]any)
	refs := make([]*PageRef, 0, len(raw))
	for _, item := range raw {
		node, ok := item.(neo4j.Node)
		if !ok {
			refs = append(refs, nil)
			continue
		}
		title, _ := node.Props["title"].(string)
		refs = append(refs, &PageRef{ID: node.GetElementId(), Title: title})
	}
	return refs
}
