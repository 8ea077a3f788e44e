package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/zooguide/backend/internal/domain"
)

// PostgresRepository implements domain.CatalogRepository. It only reads;
// visitor and navigation state never reach the database.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// LoadFacilities reads the facility table with seed visitor counts
func (r *PostgresRepository) LoadFacilities(ctx context.Context) ([]domain.Facility, error) {
	query := `
		SELECT id, name, category, emoji, description,
			   latitude, longitude, capacity, visitors
		FROM facilities
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query facilities: %w", err)
	}
	defer rows.Close()

	var results []domain.Facility
	for rows.Next() {
		var f domain.Facility
		var category string
		err := rows.Scan(
			&f.ID, &f.Name, &category, &f.Emoji, &f.Description,
			&f.Latitude, &f.Longitude, &f.Capacity, &f.Visitors,
		)
		if err != nil {
			return nil, fmt.Errorf("postgres: failed to scan facility row: %w", err)
		}
		f.Category = domain.Category(category)
		f.SetVisitors(f.Visitors)
		results = append(results, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: failed to read facilities: %w", err)
	}

	return results, nil
}

// LoadEvents reads the event schedule. Times are stored as TIME columns.
func (r *PostgresRepository) LoadEvents(ctx context.Context) ([]domain.Event, error) {
	query := `
		SELECT id, area_id, name, description,
			   to_char(start_time, 'HH24:MI'), to_char(end_time, 'HH24:MI'),
			   max_participants, current_participants
		FROM events
		ORDER BY start_time, id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query events: %w", err)
	}

	results, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Event, error) {
		var e domain.Event
		var start, end string
		if scanErr := row.Scan(&e.ID, &e.AreaID, &e.Name, &e.Description, &start, &end,
			&e.MaxParticipants, &e.CurrentParticipants); scanErr != nil {
			return e, scanErr
		}
		var parseErr error
		if e.StartTime, parseErr = domain.ParseClock(start); parseErr != nil {
			return e, parseErr
		}
		e.EndTime, parseErr = domain.ParseClock(end)
		return e, parseErr
	})
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to scan event rows: %w", err)
	}

	return results, nil
}

// LoadWaypoints reads the curated path points in insertion order
func (r *PostgresRepository) LoadWaypoints(ctx context.Context) ([]domain.LatLng, error) {
	rows, err := r.pool.Query(ctx, `SELECT latitude, longitude FROM waypoints ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query waypoints: %w", err)
	}

	results, err := pgx.CollectRows(rows, pgx.RowToStructByPos[domain.LatLng])
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to scan waypoint rows: %w", err)
	}

	return results, nil
}

// Health checks database connectivity
func (r *PostgresRepository) Health(ctx context.Context) error {
	if err := r.pool.Ping(ctx); err != nil {
		return fmt.Errorf("postgres: health check failed: %w", err)
	}
	return nil
}

var _ domain.CatalogRepository = (*PostgresRepository)(nil)
