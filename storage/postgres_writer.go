package storage

import (
	"context"
	"fmt"
	"time"

	"car-scraper/config"
	"car-scraper/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresWriter struct {
	pool *pgxpool.Pool
}

func NewPostgresWriter(ctx context.Context, cfg config.PostgresConfig) (*PostgresWriter, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect postgres: %w", err)
	}

	return &PostgresWriter{pool: pool}, nil
}

func (w *PostgresWriter) Name() string { return "postgres" }

func (w *PostgresWriter) Close() {
	if w.pool != nil {
		w.pool.Close()
	}
}

func (w *PostgresWriter) EnsureSchema(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	if _, err := w.pool.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}

// Write appends listings in one batch. Rows are never deduplicated.
func (w *PostgresWriter) Write(ctx context.Context, listings []models.NormalizedListing) error {
	if len(listings) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	insertSQL := "INSERT INTO vehicle_listings (" + listingColumns + ") VALUES ($1, $2, $3, $4, $5, $6, $7, $8)"

	batch := &pgx.Batch{}
	for _, l := range listings {
		batch.Queue(insertSQL, listingArgs(l)...)
	}

	results := w.pool.SendBatch(ctx, batch)
	defer results.Close()

	for i := range listings {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("batch insert failed at row %d: %w", i, err)
		}
	}

	return nil
}

func listingArgs(l models.NormalizedListing) []any {
	return []any{
		l.Source,
		l.Title,
		l.Year.Ptr(),
		l.Make,
		l.Model,
		l.Price.Ptr(),
		l.Mileage.Ptr(),
		string(l.Confidence),
	}
}
