package graph

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"

	"github.com/vanderheijden86/marketgraph/pkg/model"
)

// DataHash computes a stable fingerprint of the graph's identity-relevant
// content: node IDs with their volatility/volume, and edges with their
// weights. Entity order does not affect the hash, so reloading the same
// data from a differently-ordered source yields the same key.
func DataHash(g *model.GraphData) string {
	lines := make([]string, 0, len(g.Nodes)+len(g.Connections))
	for i := range g.Nodes {
		n := &g.Nodes[i]
		lines = append(lines, fmt.Sprintf("n|%s|%.6f|%.2f", n.ID, n.Volatility, n.Volume))
	}
	for _, c := range g.Connections {
		lines = append(lines, fmt.Sprintf("e|%s|%.6f|%.6f", c.PairKey(), c.Correlation, c.Pressure))
	}
	sort.Strings(lines)

	h := sha256.New()
	for _, line := range lines {
		h.Write([]byte(line))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}
