// Copyright (c) 2026 Herdcount. All rights reserved.

package count

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/herdcount/herdcount/internal/platform/database/schema"
	"github.com/herdcount/herdcount/internal/platform/postgres"
)

// PostgresRepository implements [Repository] using pgx.
type PostgresRepository struct {
	db postgres.DBTX
}

// NewRepository creates a new PostgreSQL implementation of [Repository].
func NewRepository(db postgres.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

var (
	eventColumns = fmt.Sprintf(`%s, %s, %s, %s, %s`,
		schema.FieldCountEvent.ID, schema.FieldCountEvent.DeviceID,
		schema.FieldCountEvent.Count, schema.FieldCountEvent.AnimalType,
		schema.FieldCountEvent.RecordedAt,
	)

	insertEventQuery = fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5)`,
		schema.FieldCountEvent.Table, eventColumns,
	)

	listEventsQuery = fmt.Sprintf(`
		SELECT %s
		FROM %s
		ORDER BY %s DESC, %s DESC`,
		eventColumns, schema.FieldCountEvent.Table,
		schema.FieldCountEvent.RecordedAt, schema.FieldCountEvent.ID,
	)

	listEventsBetweenQuery = fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s >= $1 AND %s < $2
		ORDER BY %s DESC, %s DESC`,
		eventColumns, schema.FieldCountEvent.Table,
		schema.FieldCountEvent.RecordedAt, schema.FieldCountEvent.RecordedAt,
		schema.FieldCountEvent.RecordedAt, schema.FieldCountEvent.ID,
	)

	// One scan, one snapshot. SUM over bigint yields numeric, cast back.
	statsQuery = fmt.Sprintf(`
		SELECT
			COALESCE(SUM(%[1]s), 0)::bigint,
			COUNT(*),
			COALESCE(SUM(%[1]s) FILTER (WHERE %[2]s >= $1), 0)::bigint,
			COALESCE(SUM(%[1]s) FILTER (WHERE %[2]s >= $2), 0)::bigint,
			COALESCE(SUM(%[1]s) FILTER (WHERE %[2]s >= $3), 0)::bigint
		FROM %[3]s`,
		schema.FieldCountEvent.Count, schema.FieldCountEvent.RecordedAt,
		schema.FieldCountEvent.Table,
	)
)

// Insert appends one event to field.countevent.
func (repository *PostgresRepository) Insert(ctx context.Context, event *Event) error {
	ctx, cancel := postgres.WithTimeout(ctx)
	defer cancel()

	_, err := repository.db.Exec(ctx, insertEventQuery,
		event.ID,
		event.DeviceID,
		event.Count,
		event.AnimalType,
		event.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("postgres_count_repo_insert_failed: %w", err)
	}
	return nil
}

// List returns every event, newest first.
func (repository *PostgresRepository) List(ctx context.Context) ([]*Event, error) {
	ctx, cancel := postgres.WithTimeout(ctx)
	defer cancel()

	rows, err := repository.db.Query(ctx, listEventsQuery)
	if err != nil {
		return nil, fmt.Errorf("postgres_count_repo_list_failed: %w", err)
	}
	return collectEvents(rows)
}

// ListBetween returns events inside [from, to), newest first.
func (repository *PostgresRepository) ListBetween(ctx context.Context, from, to time.Time) ([]*Event, error) {
	ctx, cancel := postgres.WithTimeout(ctx)
	defer cancel()

	rows, err := repository.db.Query(ctx, listEventsBetweenQuery, from, to)
	if err != nil {
		return nil, fmt.Errorf("postgres_count_repo_list_between_failed: %w", err)
	}
	return collectEvents(rows)
}

/*
Stats computes all aggregates with FILTER clauses in a single statement.

Parameters:
  - windows: Lower bounds for today, this week and this month

Returns:
  - Stats: Sums and the record count
  - error: Database errors
*/
func (repository *PostgresRepository) Stats(ctx context.Context, windows Windows) (Stats, error) {
	ctx, cancel := postgres.WithTimeout(ctx)
	defer cancel()

	var stats Stats
	err := repository.db.QueryRow(ctx, statsQuery,
		windows.StartOfToday,
		windows.WeekAgo,
		windows.MonthAgo,
	).Scan(
		&stats.TotalAnimals,
		&stats.TotalRecords,
		&stats.Today,
		&stats.ThisWeek,
		&stats.ThisMonth,
	)
	if err != nil {
		return Stats{}, fmt.Errorf("postgres_count_repo_stats_failed: %w", err)
	}
	return stats, nil
}

func collectEvents(rows pgx.Rows) ([]*Event, error) {
	defer rows.Close()

	events := make([]*Event, 0)
	for rows.Next() {
		event := &Event{}
		if err := rows.Scan(
			&event.ID,
			&event.DeviceID,
			&event.Count,
			&event.AnimalType,
			&event.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("postgres_count_repo_scan_failed: %w", err)
		}
		event.Timestamp = event.Timestamp.UTC()
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_count_repo_rows_failed: %w", err)
	}
	return events, nil
}
