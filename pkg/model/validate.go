package model

import (
	"fmt"
	"math"
)

// ValidationError reports input that cannot be coerced into the graph
// contract at all. Noisy-but-usable data (duplicate IDs, dangling
// references) is repaired silently by graph.Sanitize and never produces one
// of these; a ValidationError means the caller handed us something that is
// not a graph.
type ValidationError struct {
	Entity string // "node", "connection", "hotTrade", "graph"
	ID     string // offending entity ID when known
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("invalid %s %q: %s %s", e.Entity, e.ID, e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid %s: %s %s", e.Entity, e.Field, e.Reason)
}

func unitRange(v float64) bool {
	return !math.IsNaN(v) && v >= 0 && v <= 1
}

// Validate checks the node's structural invariants.
func (n *Node) Validate() error {
	if n.ID == "" {
		return &ValidationError{Entity: "node", Field: "id", Reason: "must not be empty"}
	}
	if !unitRange(n.Volatility) {
		return &ValidationError{Entity: "node", ID: n.ID, Field: "volatility", Reason: "must be in [0,1]"}
	}
	if math.IsNaN(n.Volume) || n.Volume < 0 {
		return &ValidationError{Entity: "node", ID: n.ID, Field: "volume", Reason: "must be >= 0"}
	}
	return nil
}

// Validate checks the connection's structural invariants. Endpoint existence
// is a graph-level concern handled by graph.Sanitize, not here.
func (c *Connection) Validate() error {
	if c.Source == "" || c.Target == "" {
		return &ValidationError{Entity: "connection", Field: "source/target", Reason: "must not be empty"}
	}
	if c.Source == c.Target {
		return &ValidationError{Entity: "connection", ID: c.Source, Field: "target", Reason: "must differ from source"}
	}
	if !unitRange(c.Correlation) {
		return &ValidationError{Entity: "connection", ID: c.PairKey(), Field: "correlation", Reason: "must be in [0,1]"}
	}
	if !unitRange(c.Pressure) {
		return &ValidationError{Entity: "connection", ID: c.PairKey(), Field: "pressure", Reason: "must be in [0,1]"}
	}
	if math.IsNaN(c.Distance) || c.Distance < 0 {
		return &ValidationError{Entity: "connection", ID: c.PairKey(), Field: "distance", Reason: "must be >= 0"}
	}
	return nil
}

// Validate checks the hot trade's structural invariants.
func (h *HotTrade) Validate() error {
	if h.ID == "" {
		return &ValidationError{Entity: "hotTrade", Field: "id", Reason: "must not be empty"}
	}
	if !unitRange(h.Confidence) {
		return &ValidationError{Entity: "hotTrade", ID: h.ID, Field: "confidence", Reason: "must be in [0,1]"}
	}
	if !h.Action.Valid() {
		return &ValidationError{Entity: "hotTrade", ID: h.ID, Field: "action", Reason: "must be LONG, SHORT or NEUTRAL"}
	}
	return nil
}

// Validate checks that the graph is structurally usable: every entity passes
// its own Validate. It does NOT check referential integrity between entities;
// that is repair territory (graph.Sanitize). The first structural problem
// found is returned.
func (g *GraphData) Validate() error {
	for i := range g.Nodes {
		if err := g.Nodes[i].Validate(); err != nil {
			return err
		}
	}
	for i := range g.Connections {
		if err := g.Connections[i].Validate(); err != nil {
			return err
		}
	}
	for i := range g.HotTrades {
		if err := g.HotTrades[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}
