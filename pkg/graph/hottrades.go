package graph

import (
	"fmt"
	"sort"

	"github.com/vanderheijden86/marketgraph/pkg/model"
)

// DefaultHotTradeLimit caps generated hot-trade signals per graph.
const DefaultHotTradeLimit = 5

// GenerateHotTrades derives hot-trade signals from graph shape when the
// upstream feed carried none: the strongest edges (by correlation×pressure)
// become pairwise signals. Direction follows the 24h price change of the
// higher-volume endpoint; confidence is the edge product.
func GenerateHotTrades(g *model.GraphData, limit int) []model.HotTrade {
	if limit <= 0 || len(g.Connections) == 0 {
		return nil
	}

	type scored struct {
		conn  model.Connection
		score float64
	}
	ranked := make([]scored, 0, len(g.Connections))
	for _, c := range g.Connections {
		ranked = append(ranked, scored{conn: c, score: c.Correlation * c.Pressure})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].conn.PairKey() < ranked[j].conn.PairKey()
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	trades := make([]model.HotTrade, 0, len(ranked))
	for i, r := range ranked {
		src := g.NodeByID(r.conn.Source)
		dst := g.NodeByID(r.conn.Target)
		if src == nil || dst == nil {
			continue
		}
		lead := src
		if dst.Volume > src.Volume {
			lead = dst
		}
		action := model.ActionNeutral
		switch {
		case lead.Change24h > 0.01:
			action = model.ActionLong
		case lead.Change24h < -0.01:
			action = model.ActionShort
		}
		trades = append(trades, model.HotTrade{
			ID:           fmt.Sprintf("ht-%d-%s", i+1, lead.ID),
			Title:        fmt.Sprintf("%s ↔ %s", src.Name, dst.Name),
			RelatedNodes: []string{r.conn.Source, r.conn.Target},
			Confidence:   r.score,
			Action:       action,
		})
	}
	return trades
}
