package catalog

import (
	"context"
	"errors"
	"fmt"
	"github.com/google/uuid"
	"github.com/ssherwood/locationservices/internal/config"
	"github.com/ssherwood/locationservices/internal/geo"
	"github.com/ssherwood/locationservices/internal/location"
	"github.com/yugabyte/pgx/v5"
	"github.com/yugabyte/pgx/v5/pgxpool"
	"log/slog"
)

// Store is the persistence used by Service. Lookups that find nothing return
// an error wrapping location.ErrNotFound.
type Store interface {
	Create(ctx context.Context, entry *Entry) (*Entry, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Entry, error)
	GetByKey(ctx context.Context, lookupKey string) (*Entry, error)
	Nearest(ctx context.Context, point geo.LatLng) (*Entry, error)
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS address_catalog (
    id          uuid PRIMARY KEY,
    lookup_key  text NOT NULL UNIQUE,
    street_name text NOT NULL DEFAULT '',
    street_no   text NOT NULL DEFAULT '',
    city        text NOT NULL DEFAULT '',
    country     text NOT NULL DEFAULT '',
    latitude    numeric NOT NULL,
    longitude   numeric NOT NULL,
    created_at  timestamptz NOT NULL DEFAULT now()
)`

const entryColumns = `id, street_name, street_no, city, country, latitude::text, longitude::text, created_at`

const selectEntry = `
select ` + entryColumns + `
  from address_catalog`

const upsertEntry = `
INSERT INTO address_catalog (id, lookup_key, street_name, street_no, city, country, latitude, longitude)
     VALUES ($1, $2, $3, $4, $5, $6, $7::text::numeric, $8::text::numeric)
ON CONFLICT (lookup_key)
  DO UPDATE SET street_name = EXCLUDED.street_name, street_no = EXCLUDED.street_no,
                city = EXCLUDED.city, country = EXCLUDED.country,
                latitude = EXCLUDED.latitude, longitude = EXCLUDED.longitude
  RETURNING ` + entryColumns

// nearestOrder ranks rows by equirectangular distance to ($1, $2). The
// longitude delta is wrapped into [-180, 180) so entries across the
// antimeridian rank by their short way round.
const nearestOrder = `
 order by power(latitude::float8 - $1, 2)
        + power((mod((longitude::float8 - $2 + 540)::numeric, 360) - 180)::float8 * cos(radians($1)), 2)
 limit 1`

// Repository stores entries in YugabyteDB YSQL (or PostgreSQL). Coordinates are
// numeric columns and travel as text so no precision is lost on the way.
type Repository struct {
	db            *pgxpool.Pool
	followerReads bool
}

func NewRepository(db *pgxpool.Pool, followerReads bool) *Repository {
	return &Repository{db: db, followerReads: followerReads}
}

func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schemaDDL); err != nil {
		return fmt.Errorf("create address_catalog: %w", err)
	}
	return nil
}

// Create inserts entry, or replaces the address and coordinates of the entry
// already holding its lookup key. The stored row is returned.
func (r *Repository) Create(ctx context.Context, entry *Entry) (*Entry, error) {
	return scanEntry(r.db.QueryRow(ctx, upsertEntry,
		uuid.New(), entry.LookupKey(),
		entry.Address.StreetName, entry.Address.StreetNo, entry.Address.City, entry.Address.Country,
		entry.Point.Lat().String(), entry.Point.Lng().String()))
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Entry, error) {
	return r.readOne(ctx, selectEntry+` where id = $1`, id)
}

func (r *Repository) GetByKey(ctx context.Context, lookupKey string) (*Entry, error) {
	return r.readOne(ctx, selectEntry+` where lookup_key = $1`, lookupKey)
}

// Nearest returns the entry closest to point using an equirectangular
// approximation, which orders correctly at city scale.
func (r *Repository) Nearest(ctx context.Context, point geo.LatLng) (*Entry, error) {
	lat, lng := point.Float64()
	return r.readOne(ctx, selectEntry+nearestOrder, lat, lng)
}

// readOne runs query in a read only transaction. With follower reads enabled
// YugabyteDB may serve it from the closest replica.
func (r *Repository) readOne(ctx context.Context, query string, args ...any) (*Entry, error) {
	conn, err := r.db.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	// yb_read_from_followers must be set before BEGIN; it is reset before release
	if r.followerReads {
		_, _ = conn.Exec(ctx, "set yb_read_from_followers = true")
		defer func() { _, _ = conn.Exec(context.Background(), "set yb_read_from_followers = false") }()
	}

	tx, err := conn.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, err
	}

	entry, err := scanOne(tx.QueryRow(ctx, query, args...))
	if err != nil {
		_ = tx.Rollback(ctx)
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		slog.Debug("Read only commit failed", config.ErrAttr(err))
	}

	return entry, nil
}

// scanOne scans a lookup result; no rows becomes location.ErrNotFound.
func scanOne(row pgx.Row) (*Entry, error) {
	entry, err := scanEntry(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: no catalog entry", location.ErrNotFound)
	}
	return entry, err
}

func scanEntry(row pgx.Row) (*Entry, error) {
	var entry Entry
	var lat, lng string
	err := row.Scan(&entry.ID,
		&entry.Address.StreetName, &entry.Address.StreetNo, &entry.Address.City, &entry.Address.Country,
		&lat, &lng, &entry.CreatedAt)
	if err != nil {
		return nil, err
	}

	if entry.Point, err = geo.ParseLatLng(lat, lng); err != nil {
		return nil, err
	}
	return &entry, nil
}
