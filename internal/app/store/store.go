/*
Package store implements the data store gateway for the weather service.

It defines the Store interface the session layer depends on, plus the
PostgreSQL implementation backed by a pgx connection pool. Every operation
acquires its own connection from the pool, so no two operations can ever
execute concurrently on the same underlying connection.
*/
package store

import (
	"context"
	"errors"

	"weatherline/internal/app/weather"
)

// ErrNotFound reports that no weather record exists for the requested location.
var ErrNotFound = errors.New("weather record not found")

// Store is the gateway contract for all persistence the protocol needs.
type Store interface {
	// RegisterUser inserts a user if absent; registering a known username is a no-op.
	RegisterUser(ctx context.Context, username, role string) error

	// UpdateLocation unconditionally updates a user's current location.
	// Updating an unknown username is a no-op, not an error.
	UpdateLocation(ctx context.Context, username, location string) error

	// BulkLoadWeather stores a batch of weather records as one transaction,
	// inserting each record only if its location is absent. It returns the
	// number of records actually inserted. Any database error rolls back the
	// entire batch.
	BulkLoadWeather(ctx context.Context, records []weather.Record) (int, error)

	// FetchWeather returns the stored record for a location, or ErrNotFound.
	FetchWeather(ctx context.Context, location string) (weather.Record, error)
}
