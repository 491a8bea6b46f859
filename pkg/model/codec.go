package model

import (
	"fmt"
	"io"

	"github.com/goccy/go-json"
)

// DecodeGraph reads a GraphData JSON document from r and validates its
// structure. A decode failure or a structural validation failure is the
// "not a graph at all" case and surfaces as an error; referential noise is
// left for graph.Sanitize.
func DecodeGraph(r io.Reader) (*GraphData, error) {
	var g GraphData
	dec := json.NewDecoder(r)
	if err := dec.Decode(&g); err != nil {
		return nil, fmt.Errorf("decode graph: %w", err)
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return &g, nil
}

// EncodeGraph writes g as JSON to w.
func EncodeGraph(w io.Writer, g *GraphData) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(g); err != nil {
		return fmt.Errorf("encode graph: %w", err)
	}
	return nil
}
