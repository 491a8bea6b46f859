package datasource

import (
	"fmt"
	"os"
	"time"

	"github.com/vanderheijden86/marketgraph/pkg/debug"
	"github.com/vanderheijden86/marketgraph/pkg/model"
)

// LoadGraph performs smart multi-source detection and loading: discover all
// candidates under dataDir, validate them, pick the freshest valid one, and
// load a GraphData from it. The result still needs graph.Sanitize; this
// layer only guarantees the document was structurally a graph.
func LoadGraph(dataDir string) (*model.GraphData, DataSource, error) {
	start := time.Now()
	defer func() { debug.LogTiming("datasource.LoadGraph", time.Since(start)) }()

	sources, err := DiscoverSources(DiscoveryOptions{
		DataDir:                dataDir,
		ValidateAfterDiscovery: true,
		Logger:                 logDebug,
	})
	if err != nil {
		return nil, DataSource{}, err
	}
	best, err := SelectBestSource(sources)
	if err != nil {
		return nil, DataSource{}, err
	}
	g, err := LoadFromSource(best)
	if err != nil {
		return nil, DataSource{}, err
	}
	return g, best, nil
}

// LoadFromSource loads a graph from a specific DataSource, dispatching to
// the appropriate reader.
func LoadFromSource(source DataSource) (*model.GraphData, error) {
	switch source.Type {
	case SourceTypeSQLite:
		reader, err := NewSQLiteReader(source)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite source %s: %w", source.Path, err)
		}
		defer reader.Close()
		return reader.LoadGraph()

	case SourceTypeJSON:
		return loadJSONFile(source.Path)

	default:
		return nil, fmt.Errorf("unknown source type: %s", source.Type)
	}
}

// loadJSONFile decodes a GraphData document from disk.
func loadJSONFile(path string) (*model.GraphData, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	g, err := model.DecodeGraph(f)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return g, nil
}

// validateJSON checks the document decodes and counts its markets.
func validateJSON(path string) (int, error) {
	g, err := loadJSONFile(path)
	if err != nil {
		return 0, err
	}
	if len(g.Nodes) == 0 {
		return 0, fmt.Errorf("no markets")
	}
	return len(g.Nodes), nil
}

func logDebug(msg string) {
	debug.Log("%s", msg)
}
