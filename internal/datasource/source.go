// Package datasource discovers, validates, and selects market data sources
// for mg. The upstream pipeline may leave behind either a JSON graph dump
// (markets.json) or the scraper's SQLite database (markets.db); this package
// finds whatever exists, validates each candidate in parallel, and picks the
// freshest valid one.
package datasource

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// SourceType identifies the type of data source.
type SourceType string

const (
	// SourceTypeSQLite is the scraper's SQLite database (markets.db).
	SourceTypeSQLite SourceType = "sqlite"
	// SourceTypeJSON is a serialized GraphData document (markets.json).
	SourceTypeJSON SourceType = "json"
)

// Priority values for source types (higher = more authoritative). The
// database reflects the scraper's latest state; JSON dumps are snapshots.
const (
	PrioritySQLite = 100
	PriorityJSON   = 50
)

// DataSource represents a potential source of market data.
type DataSource struct {
	Type SourceType `json:"type"`
	// Path is the absolute path to the source file.
	Path string `json:"path"`
	// Priority breaks ties when timestamps are equal (higher = preferred).
	Priority int `json:"priority"`
	// ModTime is the last modification time of the source.
	ModTime time.Time `json:"mod_time"`
	// Valid indicates whether the source passed validation.
	Valid bool `json:"valid"`
	// ValidationError describes why validation failed (if Valid is false).
	ValidationError string `json:"validation_error,omitempty"`
	// NodeCount is the number of markets in the source (set during validation).
	NodeCount int `json:"node_count"`
	// Size is the file size in bytes.
	Size int64 `json:"size"`
}

// String returns a human-readable description of the source.
func (s DataSource) String() string {
	status := "valid"
	if !s.Valid {
		status = fmt.Sprintf("invalid: %s", s.ValidationError)
	}
	return fmt.Sprintf("%s (%s, priority=%d, mod=%s, markets=%d, %s)",
		s.Path, s.Type, s.Priority, s.ModTime.Format(time.RFC3339), s.NodeCount, status)
}

// DiscoveryOptions configures source discovery behavior.
type DiscoveryOptions struct {
	// DataDir is the directory to scan.
	DataDir string
	// ValidateAfterDiscovery runs validation on each discovered source.
	ValidateAfterDiscovery bool
	// IncludeInvalid includes sources that failed validation in results.
	IncludeInvalid bool
	// Logger receives log messages; nil discards them.
	Logger func(msg string)
}

// DiscoverSources finds all potential market data sources in the data
// directory, newest first.
func DiscoverSources(opts DiscoveryOptions) ([]DataSource, error) {
	if opts.Logger == nil {
		opts.Logger = func(string) {}
	}
	dataDir := opts.DataDir
	if dataDir == "" {
		var err error
		dataDir, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
	}
	opts.Logger(fmt.Sprintf("Discovering sources in: %s", dataDir))

	entries, err := os.ReadDir(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read data directory: %w", err)
	}

	var sources []DataSource
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()

		// Skip backups and partial scraper output.
		if strings.Contains(name, ".backup") || strings.Contains(name, ".tmp") {
			continue
		}

		var typ SourceType
		var priority int
		switch {
		case name == "markets.db" || strings.HasSuffix(name, ".db"):
			typ, priority = SourceTypeSQLite, PrioritySQLite
		case name == "markets.json" || strings.HasSuffix(name, ".graph.json"):
			typ, priority = SourceTypeJSON, PriorityJSON
		default:
			continue
		}

		info, err := e.Info()
		if err != nil {
			continue
		}
		src := DataSource{
			Type:     typ,
			Path:     filepath.Join(dataDir, name),
			Priority: priority,
			ModTime:  info.ModTime(),
			Size:     info.Size(),
		}
		sources = append(sources, src)
		opts.Logger(fmt.Sprintf("Found %s: %s (mod=%s)", typ, src.Path, src.ModTime.Format(time.RFC3339)))
	}

	if opts.ValidateAfterDiscovery {
		// Validation opens and parses every candidate; do it in parallel,
		// each goroutine writing only its own slice entry.
		var g errgroup.Group
		for i := range sources {
			g.Go(func() error {
				if err := ValidateSource(&sources[i]); err != nil {
					opts.Logger(fmt.Sprintf("Validation failed for %s: %v", sources[i].Path, err))
				}
				return nil
			})
		}
		_ = g.Wait()

		if !opts.IncludeInvalid {
			valid := sources[:0]
			for _, s := range sources {
				if s.Valid {
					valid = append(valid, s)
				}
			}
			sources = valid
		}
	}

	sort.Slice(sources, func(i, j int) bool {
		if sources[i].ModTime.Equal(sources[j].ModTime) {
			return sources[i].Priority > sources[j].Priority
		}
		return sources[i].ModTime.After(sources[j].ModTime)
	})

	opts.Logger(fmt.Sprintf("Discovered %d sources", len(sources)))
	return sources, nil
}

// ValidateSource checks that a source is loadable, recording the outcome on
// the source itself.
func ValidateSource(s *DataSource) error {
	var err error
	var count int
	switch s.Type {
	case SourceTypeSQLite:
		count, err = validateSQLite(s.Path)
	case SourceTypeJSON:
		count, err = validateJSON(s.Path)
	default:
		err = fmt.Errorf("unknown source type: %s", s.Type)
	}
	if err != nil {
		s.Valid = false
		s.ValidationError = err.Error()
		return err
	}
	s.Valid = true
	s.NodeCount = count
	return nil
}

// SelectBestSource returns the preferred source: freshest first, priority
// breaking ties. Assumes the slice is already sorted by DiscoverSources.
func SelectBestSource(sources []DataSource) (DataSource, error) {
	for _, s := range sources {
		if s.Valid {
			return s, nil
		}
	}
	if len(sources) > 0 {
		return DataSource{}, fmt.Errorf("no valid source among %d candidates", len(sources))
	}
	return DataSource{}, fmt.Errorf("no sources discovered")
}
