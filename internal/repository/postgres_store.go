package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/fairwaylabs/swinglab/pkg/models"
)

// PostgresSwingStore implements SwingStore on PostgreSQL. The full
// report is stored as JSONB next to the columns used for listing.
type PostgresSwingStore struct {
	db *sql.DB
}

// NewPostgresSwingStore opens the database, checks the connection and
// ensures the schema exists.
func NewPostgresSwingStore(dsn string) (*PostgresSwingStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	store := &PostgresSwingStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *PostgresSwingStore) initSchema() error {
	query := `
		CREATE TABLE IF NOT EXISTS saved_swings (
			analysis_id     TEXT PRIMARY KEY,
			session_id      TEXT,
			predicted_label TEXT NOT NULL,
			confidence      DOUBLE PRECISION NOT NULL,
			report          JSONB NOT NULL,
			notes           TEXT,
			saved_at        TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_saved_swings_saved_at ON saved_swings (saved_at DESC);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("failed to init schema: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *PostgresSwingStore) Close() error {
	return s.db.Close()
}

func (s *PostgresSwingStore) SaveSwing(ctx context.Context, swing *models.SavedSwing) error {
	reportJSON, err := json.Marshal(swing.Report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	query := `
		INSERT INTO saved_swings (analysis_id, session_id, predicted_label, confidence, report, notes, saved_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (analysis_id) DO UPDATE SET
			notes = EXCLUDED.notes,
			saved_at = EXCLUDED.saved_at
	`

	_, err = s.db.ExecContext(ctx, query,
		swing.AnalysisID,
		swing.SessionID,
		swing.Report.PredictedLabel,
		swing.Report.Confidence,
		reportJSON,
		swing.Notes,
		swing.SavedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save swing: %w", err)
	}
	return nil
}

func (s *PostgresSwingStore) GetSwing(ctx context.Context, analysisID string) (*models.SavedSwing, error) {
	query := `
		SELECT analysis_id, session_id, report, notes, saved_at
		FROM saved_swings
		WHERE analysis_id = $1
	`

	var swing models.SavedSwing
	var sessionID sql.NullString
	var notes sql.NullString
	var reportJSON []byte

	err := s.db.QueryRowContext(ctx, query, analysisID).Scan(
		&swing.AnalysisID,
		&sessionID,
		&reportJSON,
		&notes,
		&swing.SavedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrReportNotFound
		}
		return nil, fmt.Errorf("failed to get swing: %w", err)
	}

	swing.SessionID = sessionID.String
	swing.Notes = notes.String
	if err := json.Unmarshal(reportJSON, &swing.Report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report: %w", err)
	}
	return &swing, nil
}

func (s *PostgresSwingStore) ListSwings(ctx context.Context, limit, offset int) ([]*models.SavedSwing, error) {
	query := `
		SELECT analysis_id, session_id, report, notes, saved_at
		FROM saved_swings
		ORDER BY saved_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := s.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list swings: %w", err)
	}
	defer rows.Close()

	var swings []*models.SavedSwing
	for rows.Next() {
		var swing models.SavedSwing
		var sessionID sql.NullString
		var notes sql.NullString
		var reportJSON []byte

		if err := rows.Scan(&swing.AnalysisID, &sessionID, &reportJSON, &notes, &swing.SavedAt); err != nil {
			continue
		}
		swing.SessionID = sessionID.String
		swing.Notes = notes.String
		if err := json.Unmarshal(reportJSON, &swing.Report); err == nil {
			swings = append(swings, &swing)
		}
	}
	return swings, rows.Err()
}

func (s *PostgresSwingStore) DeleteSwing(ctx context.Context, analysisID string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM saved_swings WHERE analysis_id = $1", analysisID)
	if err != nil {
		return fmt.Errorf("failed to delete swing: %w", err)
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return models.ErrReportNotFound
	}
	return nil
}

func (s *PostgresSwingStore) CountSwings(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM saved_swings").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count swings: %w", err)
	}
	return count, nil
}
