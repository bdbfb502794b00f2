package measurement

import (
	"context"
	"math"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/qualarmap/qualarmap/internal/interp"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL measurement repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// MeanByTimeReference averages readings per station within the reference
// window.
func (r *PostgresRepository) MeanByTimeReference(ctx context.Context, indicatorID int, timeReference string) ([]interp.StationMean, error) {
	w, err := ParseTimeReference(timeReference)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT station_id, AVG(value)
		FROM measurements
		WHERE indicator_id = $1
		  AND measured_at >= $2
		  AND measured_at < $3
		GROUP BY station_id
		ORDER BY station_id
	`

	rows, err := r.pool.Query(ctx, query, indicatorID, w.From, w.To)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var means []interp.StationMean
	for rows.Next() {
		var m interp.StationMean
		if err := rows.Scan(&m.StationID, &m.Value); err != nil {
			return nil, err
		}
		means = append(means, m)
	}
	return means, rows.Err()
}

// Mean averages readings across all stations within the window.
func (r *PostgresRepository) Mean(ctx context.Context, indicatorID int, w Window) (float64, error) {
	query := `
		SELECT AVG(value)
		FROM measurements
		WHERE indicator_id = $1
		  AND measured_at >= $2
		  AND measured_at < $3
	`

	var mean *float64
	err := r.pool.QueryRow(ctx, query, indicatorID, w.From, w.To).Scan(&mean)
	if err != nil && err != pgx.ErrNoRows {
		return 0, err
	}
	if mean == nil {
		return math.NaN(), nil
	}
	return *mean, nil
}

// Upsert inserts the measurements in one batch, replacing already stored
// values for the same station, indicator and timestamp.
func (r *PostgresRepository) Upsert(ctx context.Context, measurements []Measurement) error {
	if len(measurements) == 0 {
		return nil
	}

	query := `
		INSERT INTO measurements (station_id, indicator_id, measured_at, value)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (station_id, indicator_id, measured_at)
		DO UPDATE SET value = EXCLUDED.value
	`

	batch := &pgx.Batch{}
	for _, m := range measurements {
		batch.Queue(query, m.StationID, m.IndicatorID, m.MeasuredAt, m.Value)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()
	for range measurements {
		if _, err := results.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// Ensure PostgresRepository implements Repository interface.
var _ Repository = (*PostgresRepository)(nil)
