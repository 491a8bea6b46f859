// Package graph assembles raw market and relation data into an
// internally-consistent model.GraphData and derives lookup structures from
// it (adjacency, degree stats, hot-trade signals).
//
// Upstream data is expected to be noisy: duplicate markets, relations that
// point at markets which were capped away or never fetched, stale signals.
// Everything in this package repairs rather than rejects — Sanitize never
// fails, it just drops what cannot be kept.
package graph

import (
	"sort"

	"github.com/vanderheijden86/marketgraph/pkg/model"
)

// BuildOptions controls graph assembly.
type BuildOptions struct {
	// MaxNodes caps the node count; zero means no cap. Nodes are kept in
	// input order, so callers should pre-sort by whatever "importance"
	// means to them (volume, usually).
	MaxNodes int
	// MinCorrelation drops candidate edges weaker than this.
	MinCorrelation float64
	// GenerateHotTrades derives hot-trade signals from the assembled graph
	// when the input carried none.
	GenerateHotTrades bool
}

// Build assembles a sanitized graph from raw nodes and candidate edges.
// An edge survives only if both endpoints survive the MaxNodes cap and its
// correlation clears MinCorrelation.
func Build(nodes []model.Node, candidates []model.Connection, opts BuildOptions) *model.GraphData {
	if opts.MaxNodes > 0 && len(nodes) > opts.MaxNodes {
		nodes = nodes[:opts.MaxNodes]
	}

	g := &model.GraphData{Nodes: append([]model.Node(nil), nodes...)}
	kept := g.NodeIDs()

	var edges []model.Connection
	for _, c := range candidates {
		if c.Correlation < opts.MinCorrelation {
			continue
		}
		if !kept[c.Source] || !kept[c.Target] {
			continue
		}
		edges = append(edges, c)
	}
	g.Connections = DeduplicateEdges(edges)

	sanitized := Sanitize(g)
	if opts.GenerateHotTrades && len(sanitized.HotTrades) == 0 {
		sanitized.HotTrades = GenerateHotTrades(sanitized, DefaultHotTradeLimit)
	}
	return sanitized
}

// DeduplicateEdges collapses edges sharing an unordered endpoint pair down
// to the single strongest one (highest correlation). Relative order of the
// surviving edges follows first appearance of each pair.
func DeduplicateEdges(edges []model.Connection) []model.Connection {
	if len(edges) == 0 {
		return nil
	}
	index := make(map[string]int, len(edges))
	out := make([]model.Connection, 0, len(edges))
	for _, e := range edges {
		key := e.PairKey()
		if i, ok := index[key]; ok {
			if e.Correlation > out[i].Correlation {
				out[i] = e
			}
			continue
		}
		index[key] = len(out)
		out = append(out, e)
	}
	return out
}

// Sanitize repairs a graph in three passes: duplicate node IDs (first
// occurrence wins), connections referencing missing nodes or duplicating a
// pair (strongest wins), and hot trades referencing missing nodes. It never
// fails and never mutates its input.
func Sanitize(g *model.GraphData) *model.GraphData {
	out := &model.GraphData{}

	seen := make(map[string]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		if n.ID == "" || seen[n.ID] {
			continue
		}
		seen[n.ID] = true
		out.Nodes = append(out.Nodes, n)
	}

	var edges []model.Connection
	for _, c := range g.Connections {
		if !seen[c.Source] || !seen[c.Target] || c.Source == c.Target {
			continue
		}
		edges = append(edges, c)
	}
	out.Connections = DeduplicateEdges(edges)

	for _, h := range g.HotTrades {
		ok := len(h.RelatedNodes) > 0
		for _, id := range h.RelatedNodes {
			if !seen[id] {
				ok = false
				break
			}
		}
		if ok {
			out.HotTrades = append(out.HotTrades, h)
		}
	}
	return out
}

// Merge unions any number of graphs: nodes by ID (first occurrence wins),
// edges by unordered pair (strongest wins), hot trades by ID (first wins),
// then re-sanitizes the result.
func Merge(graphs ...*model.GraphData) *model.GraphData {
	merged := &model.GraphData{}
	tradeSeen := make(map[string]bool)
	for _, g := range graphs {
		if g == nil {
			continue
		}
		merged.Nodes = append(merged.Nodes, g.Nodes...)
		merged.Connections = append(merged.Connections, g.Connections...)
		for _, h := range g.HotTrades {
			if h.ID == "" || tradeSeen[h.ID] {
				continue
			}
			tradeSeen[h.ID] = true
			merged.HotTrades = append(merged.HotTrades, h)
		}
	}
	return Sanitize(merged)
}

// SortByVolume orders nodes by descending volume (ties broken by ID) so a
// MaxNodes cap keeps the most traded markets. Returns a new slice.
func SortByVolume(nodes []model.Node) []model.Node {
	out := append([]model.Node(nil), nodes...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Volume != out[j].Volume {
			return out[i].Volume > out[j].Volume
		}
		return out[i].ID < out[j].ID
	})
	return out
}
