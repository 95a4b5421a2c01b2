package currency

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// PostgresStore implements RateStore on the exchange_rates table.
type PostgresStore struct {
	db *sql.DB
}

// OpenPostgres opens and pings a PostgreSQL connection pool.
func OpenPostgres(ctx context.Context, databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return db, nil
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) GetRate(ctx context.Context, code Code) (Rate, error) {
	var r Rate
	err := s.db.QueryRowContext(ctx, `
		SELECT currency_code, units_per_usd, updated_at
		FROM exchange_rates
		WHERE currency_code = $1
	`, string(code)).Scan(&r.Code, &r.UnitsPerUSD, &r.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return Rate{}, fmt.Errorf("%w: %s", ErrRateNotFound, code)
	}
	if err != nil {
		return Rate{}, fmt.Errorf("get rate %s: %w", code, err)
	}

	return r, nil
}

func (s *PostgresStore) ListRates(ctx context.Context) ([]Rate, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT currency_code, units_per_usd, updated_at
		FROM exchange_rates
		ORDER BY currency_code ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list rates: %w", err)
	}
	defer rows.Close()

	var rates []Rate
	for rows.Next() {
		var r Rate
		if err := rows.Scan(&r.Code, &r.UnitsPerUSD, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan rate: %w", err)
		}
		rates = append(rates, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rates: %w", err)
	}

	return rates, nil
}

// SetRate inserts or replaces the rate for rate.Code. A zero UpdatedAt is
// stamped with the current time.
func (s *PostgresStore) SetRate(ctx context.Context, rate Rate) error {
	if rate.UpdatedAt.IsZero() {
		rate.UpdatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO exchange_rates (currency_code, units_per_usd, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (currency_code)
		DO UPDATE SET units_per_usd = EXCLUDED.units_per_usd, updated_at = EXCLUDED.updated_at
	`, string(rate.Code), rate.UnitsPerUSD, rate.UpdatedAt)
	if err != nil {
		return fmt.Errorf("set rate %s: %w", rate.Code, err)
	}

	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
