// Command mg visualizes the Polymarket correlation graph in the terminal.
//
// With no flags it starts the interactive viewer on the freshest data
// source it can find. --snapshot renders a static SVG/PNG instead, and
// --robot-stats prints machine-readable graph stats for agents.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/goccy/go-json"
	"golang.org/x/term"

	"github.com/vanderheijden86/marketgraph/internal/datasource"
	"github.com/vanderheijden86/marketgraph/pkg/cache"
	"github.com/vanderheijden86/marketgraph/pkg/config"
	"github.com/vanderheijden86/marketgraph/pkg/debug"
	"github.com/vanderheijden86/marketgraph/pkg/export"
	"github.com/vanderheijden86/marketgraph/pkg/graph"
	"github.com/vanderheijden86/marketgraph/pkg/metrics"
	"github.com/vanderheijden86/marketgraph/pkg/model"
	"github.com/vanderheijden86/marketgraph/pkg/ui"
	"github.com/vanderheijden86/marketgraph/pkg/version"
	"github.com/vanderheijden86/marketgraph/pkg/watcher"
)

func main() {
	dataDir := flag.String("data", "", "Directory containing markets.json / markets.db (default: config, then $MARKETGRAPH_DIR, then cwd)")
	snapshot := flag.String("snapshot", "", "Render a static snapshot to this path (.svg or .png) and exit")
	robotStats := flag.Bool("robot-stats", false, "Print graph stats as JSON and exit")
	versionFlag := flag.Bool("version", false, "Show version")
	help := flag.Bool("help", false, "Show help")
	flag.Parse()

	if *help {
		fmt.Println("Usage: mg [options]")
		fmt.Println("\nA terminal viewer for the market correlation graph.")
		flag.PrintDefaults()
		os.Exit(0)
	}
	if *versionFlag {
		fmt.Printf("mg %s\n", version.Version)
		os.Exit(0)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
	}
	dir := cfg.ResolveDataDir()
	if *dataDir != "" {
		dir = *dataDir
	}

	loader := newLoader(dir, cfg)
	data, source, err := loader.load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fmt.Fprintf(os.Stderr, "Hint: point --data (or %s) at a directory containing markets.json or markets.db\n", config.DataDirEnvVar)
		os.Exit(1)
	}
	debug.Log("loaded %s: %d markets, %d connections", source.Path, len(data.Nodes), len(data.Connections))

	if *robotStats {
		printRobotStats(data, source)
		return
	}

	if *snapshot != "" {
		stop := metrics.Timer(metrics.SnapshotExport)
		err := export.SaveSnapshot(export.SnapshotOptions{
			Path:     *snapshot,
			Title:    fmt.Sprintf("Market Graph — %s", filepath.Base(source.Path)),
			Graph:    data,
			DataHash: graph.DataHash(data),
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		stop()
		debug.Log("snapshot export: %+v", metrics.SnapshotExport.Stats())
		fmt.Printf("Snapshot written to %s\n", *snapshot)
		return
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "Error: stdout is not a terminal (use --snapshot or --robot-stats for non-interactive output)")
		os.Exit(1)
	}

	// Live reload: watch whichever source we loaded from.
	var watchCh <-chan struct{}
	w, err := watcher.New(source.Path)
	if err == nil && w.Start() == nil {
		watchCh = w.Changed()
		defer w.Stop()
	}

	m := ui.NewModel(data, cfg, func() (*model.GraphData, error) {
		g, _, err := loader.load()
		return g, err
	}, watchCh)

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loader assembles sanitized graphs from the data directory, short-circuiting
// through a TTL cache when the underlying data has not changed.
type loader struct {
	dir   string
	cfg   config.Config
	cache *cache.GraphCache[*model.GraphData]
}

func newLoader(dir string, cfg config.Config) *loader {
	return &loader{dir: dir, cfg: cfg, cache: cache.New[*model.GraphData](5 * time.Minute)}
}

func (l *loader) load() (*model.GraphData, datasource.DataSource, error) {
	defer metrics.Timer(metrics.GraphLoad)()
	raw, source, err := datasource.LoadGraph(l.dir)
	if err != nil {
		return nil, source, err
	}
	hash := graph.DataHash(raw)
	if g, ok := l.cache.Get(hash); ok {
		debug.Log("graph cache hit (%s)", hash)
		return g, source, nil
	}

	start := time.Now()
	stopBuild := metrics.Timer(metrics.GraphBuild)
	g := graph.Build(graph.SortByVolume(raw.Nodes), raw.Connections, graph.BuildOptions{
		MaxNodes:       l.cfg.Graph.MaxNodes,
		MinCorrelation: l.cfg.Graph.MinCorrelation,
	})
	if len(raw.HotTrades) > 0 {
		// The feed's own signals win over anything we would derive.
		g.HotTrades = raw.HotTrades
		g = graph.Sanitize(g)
	} else if l.cfg.Graph.HotTrades {
		g.HotTrades = graph.GenerateHotTrades(g, graph.DefaultHotTradeLimit)
	}
	stopBuild()
	debug.LogTiming("graph.Build", time.Since(start))

	l.cache.Set(hash, g)
	return g, source, nil
}

func printRobotStats(data *model.GraphData, source datasource.DataSource) {
	stats := graph.Analyze(data)
	out := struct {
		Source      string                `json:"source"`
		DataHash    string                `json:"data_hash"`
		Markets     int                   `json:"markets"`
		Connections int                   `json:"connections"`
		HotTrades   int                   `json:"hot_trades"`
		Density     float64               `json:"density"`
		Components  int                   `json:"components"`
		Timings     []metrics.TimingStats `json:"timings,omitempty"`
	}{
		Source:      source.Path,
		DataHash:    graph.DataHash(data),
		Markets:     stats.NodeCount,
		Connections: stats.EdgeCount,
		HotTrades:   len(data.HotTrades),
		Density:     stats.Density,
		Components:  len(stats.Components),
		Timings:     metrics.AllTimingStats(),
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(out)
}
