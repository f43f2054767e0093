package resonance

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"os"
	"path/filepath"

	"github.com/marcboeker/go-duckdb"

	"github.com/printwizard/backend/internal/models"
)

// SampleStore keeps the frequency samples of one analysis session in a
// session-scoped DuckDB file, so windowed range queries and graph
// downsampling run as SQL instead of slice scans.
type SampleStore struct {
	db     *sql.DB
	dbPath string
	count  int
}

// NewSampleStore creates the session database in tempDir.
func NewSampleStore(tempDir, sessionID string) (*SampleStore, error) {
	dbPath := filepath.Join(tempDir, fmt.Sprintf("resonance_%s.duckdb", sessionID))

	connector, err := duckdb.NewConnector(dbPath, func(execer driver.ExecerContext) error {
		pragmas := []string{
			"PRAGMA memory_limit='256MB'",
			"PRAGMA threads=2",
			"PRAGMA enable_progress_bar=false",
		}
		for _, pragma := range pragmas {
			if _, err := execer.ExecContext(context.Background(), pragma, nil); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("creating DuckDB connector: %w", err)
	}

	db := sql.OpenDB(connector)
	_, err = db.Exec(`
		CREATE TABLE samples (
			freq  DOUBLE NOT NULL,
			psd   DOUBLE NOT NULL,
			psd_x DOUBLE,
			psd_y DOUBLE,
			psd_z DOUBLE
		)
	`)
	if err != nil {
		db.Close()
		os.Remove(dbPath)
		return nil, fmt.Errorf("creating samples table: %w", err)
	}

	return &SampleStore{db: db, dbPath: dbPath}, nil
}

// Insert appends samples in one transaction.
func (s *SampleStore) Insert(samples []models.FreqSample) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("starting insert transaction: %w", err)
	}
	stmt, err := tx.Prepare("INSERT INTO samples VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("preparing insert: %w", err)
	}
	for _, sample := range samples {
		if _, err := stmt.Exec(sample.Freq, sample.PSD, sample.PSDX, sample.PSDY, sample.PSDZ); err != nil {
			stmt.Close()
			tx.Rollback()
			return fmt.Errorf("inserting sample: %w", err)
		}
	}
	stmt.Close()
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing samples: %w", err)
	}
	s.count += len(samples)
	return nil
}

// Len returns the number of stored samples.
func (s *SampleStore) Len() int {
	return s.count
}

// QueryRange returns the samples inside [minFreq, maxFreq] ordered by
// frequency.
func (s *SampleStore) QueryRange(ctx context.Context, minFreq, maxFreq float64) ([]models.FreqSample, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT freq, psd, psd_x, psd_y, psd_z FROM samples WHERE freq >= ? AND freq <= ? ORDER BY freq",
		minFreq, maxFreq)
	if err != nil {
		return nil, fmt.Errorf("querying sample range: %w", err)
	}
	defer rows.Close()

	var samples []models.FreqSample
	for rows.Next() {
		var sm models.FreqSample
		if err := rows.Scan(&sm.Freq, &sm.PSD, &sm.PSDX, &sm.PSDY, &sm.PSDZ); err != nil {
			return nil, fmt.Errorf("scanning sample row: %w", err)
		}
		samples = append(samples, sm)
	}
	return samples, rows.Err()
}

// Graph returns at most maxPoints (freq, psd) points, averaging samples into
// equal-width frequency buckets when the store holds more.
func (s *SampleStore) Graph(ctx context.Context, maxPoints int) ([]models.GraphPoint, error) {
	if maxPoints <= 0 || s.count <= maxPoints {
		rows, err := s.db.QueryContext(ctx, "SELECT freq, psd FROM samples ORDER BY freq")
		if err != nil {
			return nil, fmt.Errorf("querying graph points: %w", err)
		}
		defer rows.Close()
		return scanGraphRows(rows)
	}

	// Bucketed average over the frequency span.
	rows, err := s.db.QueryContext(ctx, `
		SELECT avg(freq), avg(psd)
		FROM samples,
		     (SELECT min(freq) AS lo, max(freq) AS hi FROM samples) AS span
		GROUP BY least(CAST((freq - span.lo) / ((span.hi - span.lo + 1e-9) / ?) AS INTEGER), ? - 1)
		ORDER BY 1
	`, maxPoints, maxPoints)
	if err != nil {
		return nil, fmt.Errorf("querying downsampled graph: %w", err)
	}
	defer rows.Close()
	return scanGraphRows(rows)
}

func scanGraphRows(rows *sql.Rows) ([]models.GraphPoint, error) {
	var points []models.GraphPoint
	for rows.Next() {
		var p models.GraphPoint
		if err := rows.Scan(&p.Freq, &p.PSD); err != nil {
			return nil, fmt.Errorf("scanning graph row: %w", err)
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

// PeakFreq returns the stored frequency with the highest combined power.
func (s *SampleStore) PeakFreq(ctx context.Context) (float64, error) {
	var freq float64
	err := s.db.QueryRowContext(ctx,
		"SELECT freq FROM samples ORDER BY psd DESC LIMIT 1").Scan(&freq)
	if err != nil {
		return 0, fmt.Errorf("querying peak frequency: %w", err)
	}
	return freq, nil
}

// Close shuts the database down and removes its file.
func (s *SampleStore) Close() error {
	err := s.db.Close()
	os.Remove(s.dbPath)
	return err
}
