package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"weatherline/internal/app/weather"
	"weatherline/internal/pkg/logx"
)

// Postgres is the pgx-backed Store implementation.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres creates a Store backed by the given connection pool.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// RegisterUser inserts a user if absent; a duplicate username is a no-op.
func (s *Postgres) RegisterUser(ctx context.Context, username, role string) error {
	const query = `INSERT INTO users (username, role) VALUES ($1, $2) ON CONFLICT (username) DO NOTHING`

	if _, err := s.pool.Exec(ctx, query, username, role); err != nil {
		return fmt.Errorf("register user %q: %w", username, err)
	}
	return nil
}

// UpdateLocation updates a user's current location; unknown usernames match
// zero rows and succeed silently.
func (s *Postgres) UpdateLocation(ctx context.Context, username, location string) error {
	const query = `UPDATE users SET current_location = $1 WHERE username = $2`

	if _, err := s.pool.Exec(ctx, query, location, username); err != nil {
		return fmt.Errorf("update location for %q: %w", username, err)
	}
	return nil
}

// BulkLoadWeather inserts the batch inside a single transaction. A record
// whose location already exists is skipped, never merged. Any database error
// rolls the whole batch back so partial inserts can never persist.
func (s *Postgres) BulkLoadWeather(ctx context.Context, records []weather.Record) (int, error) {
	const query = `INSERT INTO weather_data
		(location, latitude, longitude, current_weather, current_temperature, forecast)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (location) DO NOTHING`

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin weather batch: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			logx.Error(err, "Weather batch rollback failed")
		}
	}()

	inserted := 0
	for _, rec := range records {
		var forecast []byte
		if len(rec.Forecast) > 0 {
			forecast, err = json.Marshal(rec.Forecast)
			if err != nil {
				return 0, fmt.Errorf("marshal forecast for %q: %w", rec.Location, err)
			}
		}

		tag, err := tx.Exec(ctx, query,
			rec.Location, rec.Latitude, rec.Longitude,
			rec.CurrentWeather, rec.CurrentTemperature, forecast)
		if err != nil {
			return 0, fmt.Errorf("insert weather for %q: %w", rec.Location, err)
		}
		inserted += int(tag.RowsAffected())
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit weather batch: %w", err)
	}
	return inserted, nil
}

// FetchWeather returns the stored record for a location, or ErrNotFound.
func (s *Postgres) FetchWeather(ctx context.Context, location string) (weather.Record, error) {
	const query = `SELECT latitude, longitude, current_weather, current_temperature, forecast
		FROM weather_data WHERE location = $1`

	rec := weather.Record{Location: location}
	var forecast []byte

	err := s.pool.QueryRow(ctx, query, location).Scan(
		&rec.Latitude, &rec.Longitude, &rec.CurrentWeather, &rec.CurrentTemperature, &forecast)
	if errors.Is(err, pgx.ErrNoRows) {
		return weather.Record{}, ErrNotFound
	}
	if err != nil {
		return weather.Record{}, fmt.Errorf("fetch weather for %q: %w", location, err)
	}

	if len(forecast) > 0 {
		if err := json.Unmarshal(forecast, &rec.Forecast); err != nil {
			return weather.Record{}, fmt.Errorf("decode forecast for %q: %w", location, err)
		}
	}
	return rec, nil
}
