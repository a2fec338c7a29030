package events

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schema embed.FS

// PostgresEventStore keeps events in the round_events table
type PostgresEventStore struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects a pool to dsn
func OpenPostgres(ctx context.Context, dsn string) (*PostgresEventStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &PostgresEventStore{pool: pool}, nil
}

func (s *PostgresEventStore) Close() { s.pool.Close() }

// Migrate creates the event table if it does not exist
func (s *PostgresEventStore) Migrate(ctx context.Context) error {
	sqlBytes, err := schema.ReadFile("schema.sql")
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, string(sqlBytes))
	return err
}

// Append adds a new event to the store.
func (s *PostgresEventStore) Append(ctx context.Context, event Event) error {
	tableID := GetTableID(event)
	if tableID == "" {
		return fmt.Errorf("event %s has no tableID", event.EventName())
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", event.EventName(), err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO round_events (table_id, round_id, name, payload)
		VALUES ($1, $2, $3, $4)
	`, tableID, GetRoundID(event), event.EventName(), string(payload))
	return err
}

// LoadEvents retrieves all events for the given tableID in insertion order.
func (s *PostgresEventStore) LoadEvents(ctx context.Context, tableID string) ([]Event, error) {
	return s.LoadRound(ctx, tableID, "")
}

// LoadRound retrieves one round of a table; an empty roundID loads them all
func (s *PostgresEventStore) LoadRound(ctx context.Context, tableID, roundID string) ([]Event, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT name, payload
		  FROM round_events
		 WHERE table_id = $1
		   AND ($2::text = '' OR round_id = $2::text)
		 ORDER BY id
	`, tableID, roundID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []Event{}
	for rows.Next() {
		var name string
		var payload []byte
		if err := rows.Scan(&name, &payload); err != nil {
			return nil, err
		}
		event, err := Decode(name, payload)
		if err != nil {
			return nil, err
		}
		result = append(result, event)
	}
	return result, rows.Err()
}
