package datasource

import (
	"database/sql"
	"fmt"
	"math"
	"time"

	_ "modernc.org/sqlite"

	"github.com/goccy/go-json"

	"github.com/vanderheijden86/marketgraph/pkg/model"
)

// SQLiteReader provides read access to the scraper's market database. It is
// strictly an ingestion path; mg never writes to the database.
type SQLiteReader struct {
	db   *sql.DB
	path string
}

// NewSQLiteReader opens a market database for reading.
func NewSQLiteReader(source DataSource) (*SQLiteReader, error) {
	if source.Type != SourceTypeSQLite {
		return nil, fmt.Errorf("source is not SQLite: %s", source.Type)
	}

	dsn := fmt.Sprintf("file:%s?mode=ro&_busy_timeout=5000", source.Path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("cannot open database: %w", err)
	}
	return &SQLiteReader{db: db, path: source.Path}, nil
}

// Close closes the database connection.
func (r *SQLiteReader) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// LoadGraph reads markets and their relations into a GraphData. Referential
// noise (relations to missing markets) is left in place for graph.Sanitize.
func (r *SQLiteReader) LoadGraph() (*model.GraphData, error) {
	nodes, err := r.loadMarkets()
	if err != nil {
		return nil, err
	}
	conns, err := r.loadRelations()
	if err != nil {
		return nil, err
	}
	return &model.GraphData{Nodes: nodes, Connections: conns}, nil
}

func (r *SQLiteReader) loadMarkets() ([]model.Node, error) {
	query := `
		SELECT
			polymarket_id, question, volume, outcomes, outcome_prices,
			tags, one_day_price_change, updated_at
		FROM markets
		WHERE is_active = 1
		ORDER BY volume DESC
	`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("query markets: %w", err)
	}
	defer rows.Close()

	var nodes []model.Node
	for rows.Next() {
		var (
			id, question             string
			volume                   sql.NullFloat64
			outcomesJSON, pricesJSON sql.NullString
			tagsJSON                 sql.NullString
			dayChange                sql.NullFloat64
			updatedAt                sql.NullString
		)
		if err := rows.Scan(&id, &question, &volume, &outcomesJSON, &pricesJSON,
			&tagsJSON, &dayChange, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan market: %w", err)
		}

		n := model.Node{
			ID:        id,
			Name:      question,
			Volume:    volume.Float64,
			Change24h: dayChange.Float64,
		}
		n.Tags = decodeStringList(tagsJSON)
		n.Outcomes = decodeStringList(outcomesJSON)
		n.OutcomePrices = decodeStringList(pricesJSON)
		if len(n.Tags) > 0 {
			n.Group = n.Tags[0]
		}
		// Volatility proxy: magnitude of the 24h move, clamped to the unit
		// range the contract requires.
		n.Volatility = math.Min(math.Abs(dayChange.Float64), 1)
		if updatedAt.Valid {
			if t, err := time.Parse(time.RFC3339, updatedAt.String); err == nil {
				n.LastUpdate = t
			}
		}
		nodes = append(nodes, n)
	}
	return nodes, rows.Err()
}

func (r *SQLiteReader) loadRelations() ([]model.Connection, error) {
	query := `
		SELECT m1.polymarket_id, m2.polymarket_id,
		       r.correlation, r.pressure, r.similarity
		FROM market_relations r
		JOIN markets m1 ON m1.id = r.market_id_1
		JOIN markets m2 ON m2.id = r.market_id_2
	`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("query relations: %w", err)
	}
	defer rows.Close()

	var conns []model.Connection
	for rows.Next() {
		var src, dst string
		var correlation, pressure, similarity sql.NullFloat64
		if err := rows.Scan(&src, &dst, &correlation, &pressure, &similarity); err != nil {
			return nil, fmt.Errorf("scan relation: %w", err)
		}
		corr := correlation.Float64
		if corr == 0 {
			corr = similarity.Float64 // older scrapers only stored similarity
		}
		conns = append(conns, model.Connection{
			Source:      src,
			Target:      dst,
			Correlation: clampUnit(corr),
			Pressure:    clampUnit(pressure.Float64),
		})
	}
	return conns, rows.Err()
}

// validateSQLite checks the database is openable and counts its markets.
func validateSQLite(path string) (int, error) {
	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?mode=ro", path))
	if err != nil {
		return 0, fmt.Errorf("open: %w", err)
	}
	defer db.Close()

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM markets WHERE is_active = 1`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count markets: %w", err)
	}
	if count == 0 {
		return 0, fmt.Errorf("no active markets")
	}
	return count, nil
}

// decodeStringList parses a JSON array column; scrapers store list columns
// as JSON text. Malformed content decodes to nil rather than failing the
// whole load.
func decodeStringList(col sql.NullString) []string {
	if !col.Valid || col.String == "" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(col.String), &out); err != nil {
		return nil
	}
	return out
}

func clampUnit(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
