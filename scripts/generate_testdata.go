//go:build ignore

// generate_testdata.go creates synthetic market graph datasets for manual
// testing and benchmarking.
// Usage: go run scripts/generate_testdata.go
//
// Creates:
//
//	testdata/small.graph.json   (25 markets)
//	testdata/medium.graph.json  (150 markets)
//	testdata/large.graph.json   (600 markets)
package main

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/vanderheijden86/marketgraph/pkg/graph"
	"github.com/vanderheijden86/marketgraph/pkg/model"
)

type datasetSpec struct {
	name string
	size int
}

var datasets = []datasetSpec{
	{"small", 25},
	{"medium", 150},
	{"large", 600},
}

var groups = []string{"Politics", "Crypto", "Sports", "Economy", "Science", "Culture"}

var questionStems = []string{
	"Will %s win the election?",
	"Will BTC close above $%dk this month?",
	"Will the Fed cut rates in %s?",
	"Will %s reach the finals?",
	"Will inflation exceed %d%% this quarter?",
	"Will the %s bill pass the Senate?",
}

func main() {
	outputDir := "testdata"
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create output directory: %v\n", err)
		os.Exit(1)
	}

	for _, ds := range datasets {
		fmt.Printf("Generating %s dataset (%d markets)...\n", ds.name, ds.size)

		g := randomGraph(ds.size, edgeDensity(ds.size))
		g.HotTrades = graph.GenerateHotTrades(g, graph.DefaultHotTradeLimit)

		data, err := json.MarshalIndent(g, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to marshal %s: %v\n", ds.name, err)
			os.Exit(1)
		}
		outputPath := filepath.Join(outputDir, ds.name+".graph.json")
		if err := os.WriteFile(outputPath, data, 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write %s: %v\n", outputPath, err)
			os.Exit(1)
		}
		fmt.Printf("  Written %s (%d bytes, %d connections)\n", outputPath, len(data), len(g.Connections))
	}

	fmt.Println("\nDone! Datasets created in", outputDir)
}

// edgeDensity scales inversely with size to keep connection counts sane.
func edgeDensity(size int) float64 {
	switch {
	case size <= 25:
		return 0.15
	case size <= 150:
		return 0.04
	default:
		return 0.01
	}
}

func randomGraph(size int, density float64) *model.GraphData {
	rng := rand.New(rand.NewSource(int64(size))) // reproducible per size
	now := time.Now().UTC().Truncate(time.Second)

	g := &model.GraphData{}
	for i := 0; i < size; i++ {
		group := groups[rng.Intn(len(groups))]
		g.Nodes = append(g.Nodes, model.Node{
			ID:            fmt.Sprintf("pm-%04d", i),
			Name:          question(rng, i),
			Group:         group,
			Volatility:    rng.Float64() * 0.6,
			Volume:        float64(rng.Intn(500_000)) + 1000,
			LastUpdate:    now,
			Tags:          []string{group},
			Outcomes:      []string{"Yes", "No"},
			OutcomePrices: prices(rng),
			Change24h:     rng.Float64()*0.3 - 0.15,
		})
	}

	for i := 0; i < size; i++ {
		for j := i + 1; j < size; j++ {
			if rng.Float64() >= density {
				continue
			}
			g.Connections = append(g.Connections, model.Connection{
				Source:      g.Nodes[i].ID,
				Target:      g.Nodes[j].ID,
				Correlation: 0.3 + rng.Float64()*0.7,
				Pressure:    rng.Float64(),
			})
		}
	}
	return g
}

func question(rng *rand.Rand, i int) string {
	stem := questionStems[rng.Intn(len(questionStems))]
	switch {
	case strings.Contains(stem, "%d%%"):
		return fmt.Sprintf(stem, 2+rng.Intn(6))
	case strings.Contains(stem, "$%dk"):
		return fmt.Sprintf(stem, 50+10*rng.Intn(10))
	default:
		return fmt.Sprintf(stem, fmt.Sprintf("candidate-%d", i))
	}
}

func prices(rng *rand.Rand) []string {
	yes := 0.05 + rng.Float64()*0.9
	return []string{
		fmt.Sprintf("%.2f", yes),
		fmt.Sprintf("%.2f", 1-yes),
	}
}
