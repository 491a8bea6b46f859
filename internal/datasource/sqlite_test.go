package datasource

import (
	"database/sql"
	"path/filepath"
	"testing"
)

// newMarketDB creates a scraper-shaped database with two related markets.
func newMarketDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "markets.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	schema := `
		CREATE TABLE markets (
			id INTEGER PRIMARY KEY,
			polymarket_id TEXT NOT NULL,
			question TEXT NOT NULL,
			volume REAL,
			outcomes TEXT,
			outcome_prices TEXT,
			tags TEXT,
			one_day_price_change REAL,
			updated_at TEXT,
			is_active INTEGER NOT NULL DEFAULT 1
		);
		CREATE TABLE market_relations (
			market_id_1 INTEGER NOT NULL,
			market_id_2 INTEGER NOT NULL,
			correlation REAL,
			pressure REAL,
			similarity REAL
		);
	`
	if _, err := db.Exec(schema); err != nil {
		t.Fatal(err)
	}

	inserts := `
		INSERT INTO markets VALUES
			(1, 'pm-1', 'Will X happen?', 5000, '["Yes","No"]', '["0.61","0.39"]',
			 '["Politics","US"]', 0.08, '2026-08-01T12:00:00Z', 1),
			(2, 'pm-2', 'Will Y happen?', 3000, '["Yes","No"]', '["0.40","0.60"]',
			 'not-json', -0.03, '2026-08-01T12:00:00Z', 1),
			(3, 'pm-3', 'Delisted market', 100, NULL, NULL, NULL, 0, NULL, 0);
		INSERT INTO market_relations VALUES
			(1, 2, 0.85, 0.6, 0.7),
			(1, 2, 0, 0.4, 0.55);
	`
	if _, err := db.Exec(inserts); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestSQLiteLoadGraph(t *testing.T) {
	path := newMarketDB(t)
	reader, err := NewSQLiteReader(DataSource{Type: SourceTypeSQLite, Path: path})
	if err != nil {
		t.Fatal(err)
	}
	defer reader.Close()

	g, err := reader.LoadGraph()
	if err != nil {
		t.Fatalf("LoadGraph: %v", err)
	}

	// Inactive markets are filtered; active ones come back volume-sorted.
	if len(g.Nodes) != 2 {
		t.Fatalf("node count = %d, want 2", len(g.Nodes))
	}
	n1 := g.Nodes[0]
	if n1.ID != "pm-1" || n1.Name != "Will X happen?" {
		t.Errorf("first node = %s / %q", n1.ID, n1.Name)
	}
	if n1.Group != "Politics" {
		t.Errorf("group = %q, want first tag", n1.Group)
	}
	if len(n1.Outcomes) != 2 || n1.Outcomes[0] != "Yes" {
		t.Errorf("outcomes = %v", n1.Outcomes)
	}
	if n1.Volatility != 0.08 {
		t.Errorf("volatility = %v, want |0.08|", n1.Volatility)
	}
	if n1.LastUpdate.IsZero() {
		t.Error("updated_at not parsed")
	}
	// Malformed tag JSON degrades to no tags, not a failed load.
	if g.Nodes[1].Group != "" || g.Nodes[1].Tags != nil {
		t.Errorf("malformed tags should decode to nil, got %v", g.Nodes[1].Tags)
	}

	if len(g.Connections) != 2 {
		t.Fatalf("connection count = %d, want 2 (dedup is the builder's job)", len(g.Connections))
	}
	if g.Connections[0].Correlation != 0.85 {
		t.Errorf("correlation = %v, want 0.85", g.Connections[0].Correlation)
	}
	// Zero correlation falls back to the legacy similarity column.
	if g.Connections[1].Correlation != 0.55 {
		t.Errorf("fallback correlation = %v, want similarity 0.55", g.Connections[1].Correlation)
	}
}

func TestValidateSQLite(t *testing.T) {
	path := newMarketDB(t)
	src := DataSource{Type: SourceTypeSQLite, Path: path}
	if err := ValidateSource(&src); err != nil {
		t.Fatalf("ValidateSource: %v", err)
	}
	if !src.Valid || src.NodeCount != 2 {
		t.Errorf("src = %+v, want valid with 2 active markets", src)
	}
}

func TestSQLiteReaderRejectsWrongType(t *testing.T) {
	if _, err := NewSQLiteReader(DataSource{Type: SourceTypeJSON, Path: "x"}); err == nil {
		t.Error("expected error for non-sqlite source")
	}
}
