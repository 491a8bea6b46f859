// Package model defines the serializable market-graph contract shared by the
// layout engine, the datasource layer, and exporters: market nodes, the
// correlation connections between them, and derived hot-trade signals.
//
// The types here are pure data. Simulation state (positions, velocities,
// pins) lives in the layout engine's body arena, keyed by node ID, so that
// exactly one component ever mutates physics fields.
package model

import (
	"time"
)

// Action is the recommended direction of a hot trade.
type Action string

const (
	ActionLong    Action = "LONG"
	ActionShort   Action = "SHORT"
	ActionNeutral Action = "NEUTRAL"
)

// Valid reports whether a is one of the known actions.
func (a Action) Valid() bool {
	switch a {
	case ActionLong, ActionShort, ActionNeutral:
		return true
	}
	return false
}

// Node is a single market in the graph.
type Node struct {
	// ID is the unique market identifier (Polymarket condition ID or slug).
	ID string `json:"id"`
	// Name is the market question, possibly shortened for display.
	Name string `json:"name"`
	// Group is a categorical tag (Politics, Crypto, Sports, ...).
	Group string `json:"group"`
	// Volatility is a normalized 0..1 measure of recent price movement.
	Volatility float64 `json:"volatility"`
	// Volume is total traded volume in USD.
	Volume float64 `json:"volume"`
	// LastUpdate is when this market was last refreshed upstream.
	LastUpdate time.Time `json:"lastUpdate"`

	Tags          []string `json:"tags,omitempty"`
	Outcomes      []string `json:"outcomes,omitempty"`
	OutcomePrices []string `json:"outcomePrices,omitempty"`

	// Change24h is the signed 24h price change of the leading outcome.
	// Optional; drives hot-trade direction when present.
	Change24h float64 `json:"oneDayPriceChange,omitempty"`
}

// Connection is an undirected weighted edge between two markets. Source and
// Target are always node IDs; the layout engine resolves them to bodies once,
// so call sites never deal with an "ID or object" dual representation.
type Connection struct {
	Source string `json:"source"`
	Target string `json:"target"`
	// Correlation in 0..1 drives spring stiffness: higher correlation pulls
	// the pair closer and harder.
	Correlation float64 `json:"correlation"`
	// Pressure in 0..1 drives visual intensity only; the physics never reads it.
	Pressure float64 `json:"pressure"`
	// Distance is an optional precomputed rest length. Zero means "use the
	// engine default".
	Distance float64 `json:"distance,omitempty"`
}

// PairKey returns the unordered endpoint key for deduplication. Edges are
// stored as ordered (source, target) pairs but the graph is undirected, so
// A→B and B→A share a key.
func (c Connection) PairKey() string {
	if c.Source <= c.Target {
		return c.Source + "\x00" + c.Target
	}
	return c.Target + "\x00" + c.Source
}

// Other returns the endpoint opposite to id, and whether id is an endpoint
// at all.
func (c Connection) Other(id string) (string, bool) {
	switch id {
	case c.Source:
		return c.Target, true
	case c.Target:
		return c.Source, true
	}
	return "", false
}

// HotTrade is a derived signal over a subset of markets. It is not
// physics-relevant; it only references nodes.
type HotTrade struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	RelatedNodes []string `json:"relatedNodes"`
	Confidence   float64  `json:"confidence"`
	Action       Action   `json:"action"`
}

// GraphData is the full serializable graph: what the datasource layer
// produces and the engine family consumes.
type GraphData struct {
	Nodes       []Node       `json:"nodes"`
	Connections []Connection `json:"connections"`
	HotTrades   []HotTrade   `json:"hotTrades"`
}

// NodeIDs returns the set of node IDs present in the graph.
func (g *GraphData) NodeIDs() map[string]bool {
	ids := make(map[string]bool, len(g.Nodes))
	for i := range g.Nodes {
		ids[g.Nodes[i].ID] = true
	}
	return ids
}

// NodeByID returns a pointer to the node with the given ID, or nil.
func (g *GraphData) NodeByID(id string) *Node {
	for i := range g.Nodes {
		if g.Nodes[i].ID == id {
			return &g.Nodes[i]
		}
	}
	return nil
}
