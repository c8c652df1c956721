package audit

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"
)

// PostgresStore persists audit events. Record never fails the order path: a
// failed insert is reported through the fallback logger and dropped.
type PostgresStore struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewPostgresStore(connStr string, logger *slog.Logger) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &PostgresStore{db: db, logger: logger}

	if err := s.initTables(); err != nil {
		return nil, fmt.Errorf("failed to initialize tables: %w", err)
	}

	return s, nil
}

// Record implements Recorder.
func (s *PostgresStore) Record(ctx context.Context, event Event) {
	query := `
        INSERT INTO audit_events (
            recorded_at, phase, method, url, query, status, body, note
        ) VALUES (
            $1, $2, $3, $4, $5, $6, $7, $8
        )
    `

	_, err := s.db.ExecContext(ctx, query,
		event.Time,
		string(event.Phase),
		event.Method,
		event.URL,
		event.Query,
		event.Status,
		event.Body,
		event.Note,
	)

	if err != nil {
		s.logger.Error("failed to persist audit event", "err", err)
	}
}

// Events returns persisted events in the given window, oldest first.
func (s *PostgresStore) Events(ctx context.Context, start, end time.Time) ([]Event, error) {
	query := `
        SELECT recorded_at, phase, method, url, query, status, body, note
        FROM audit_events
        WHERE recorded_at BETWEEN $1 AND $2
        ORDER BY recorded_at ASC
    `

	rows, err := s.db.QueryContext(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit events: %w", err)
	}
	defer rows.Close()

	var result []Event
	for rows.Next() {
		var e Event
		var phase string
		err := rows.Scan(
			&e.Time,
			&phase,
			&e.Method,
			&e.URL,
			&e.Query,
			&e.Status,
			&e.Body,
			&e.Note,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit event: %w", err)
		}
		e.Phase = Phase(phase)
		result = append(result, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating audit event rows: %w", err)
	}

	return result, nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) initTables() error {
	query := `CREATE TABLE IF NOT EXISTS audit_events (
		id SERIAL PRIMARY KEY,
		recorded_at TIMESTAMP NOT NULL,
		phase VARCHAR(16) NOT NULL,
		method VARCHAR(8),
		url TEXT,
		query TEXT,
		status INT,
		body TEXT,
		note TEXT
	)`

	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("failed to execute query: %w", err)
	}
	return nil
}
