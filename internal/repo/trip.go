package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/trailhead-app/backend/internal/domain"
	"github.com/trailhead-app/backend/internal/geo"
)

// TripRepo defines the persistence operations for Trips and their items.
// The service layer depends on this interface, not the concrete Postgres
// implementation, which allows the service to be unit-tested with a mock.
type TripRepo interface {
	// Create inserts a new trip and returns the persisted record (with
	// DB-generated id, created_at, and updated_at populated).
	Create(ctx context.Context, trip domain.Trip) (domain.Trip, error)

	// GetByID retrieves a single trip by its UUID primary key, items included.
	// Returns domain.ErrNotFound if no trip with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error)

	// ListByUser returns all of a user's trips, items included, ordered by
	// end_date descending (most recently ended first).
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Trip, error)

	// AddItem appends an item reference to a trip. The append is conditional:
	// if the trip already holds an item with the same (item_id, item_type),
	// the existing row is returned and no new row is written, so concurrent
	// save flows cannot double-add.
	// Returns domain.ErrNotFound if the trip does not exist.
	AddItem(ctx context.Context, item domain.TripItem) (domain.TripItem, error)

	// Delete removes a trip by ID. Returns domain.ErrNotFound if it does not exist.
	Delete(ctx context.Context, id uuid.UUID) error
}

// pgTripRepo is the Postgres implementation of TripRepo.
type pgTripRepo struct {
	db db
}

// NewTripRepo constructs a TripRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewTripRepo(db db) TripRepo {
	return &pgTripRepo{db: db}
}

// Create inserts a new trip row and returns the full persisted record.
func (r *pgTripRepo) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	const q = `
		INSERT INTO trips (user_id, name, start_date, end_date, notes)
		VALUES (@user_id, @name, @start_date, @end_date, @notes)
		RETURNING id, user_id, name, start_date, end_date, notes, created_at, updated_at`

	args := pgx.NamedArgs{
		"user_id":    trip.UserID,
		"name":       trip.Name,
		"start_date": trip.StartDate,
		"end_date":   trip.EndDate,
		"notes":      trip.Notes,
	}

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanTrip(row)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Create: %w", err)
	}
	result.Items = []domain.TripItem{}
	return result, nil
}

// GetByID retrieves a trip by primary key, including its items.
func (r *pgTripRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	const q = `
		SELECT id, user_id, name, start_date, end_date, notes, created_at, updated_at
		FROM trips
		WHERE id = @id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id})
	trip, err := scanTrip(row)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.GetByID: %w", err)
	}

	items, err := r.listItems(ctx, []uuid.UUID{trip.ID})
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.GetByID: %w", err)
	}
	trip.Items = items[trip.ID]
	if trip.Items == nil {
		trip.Items = []domain.TripItem{}
	}
	return trip, nil
}

// ListByUser returns all trips for a user ordered by end_date descending,
// each with its items attached. Two queries: one for trips, one for all
// items across those trips, stitched together in memory.
func (r *pgTripRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Trip, error) {
	const q = `
		SELECT id, user_id, name, start_date, end_date, notes, created_at, updated_at
		FROM trips
		WHERE user_id = @user_id
		ORDER BY end_date DESC`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("repo.TripRepo.ListByUser: %w", err)
	}
	defer rows.Close()

	var trips []domain.Trip
	var ids []uuid.UUID
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.TripRepo.ListByUser: scan: %w", err)
		}
		trips = append(trips, t)
		ids = append(ids, t.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.TripRepo.ListByUser: rows: %w", err)
	}
	if len(trips) == 0 {
		return []domain.Trip{}, nil
	}

	items, err := r.listItems(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("repo.TripRepo.ListByUser: %w", err)
	}
	for i := range trips {
		trips[i].Items = items[trips[i].ID]
		if trips[i].Items == nil {
			trips[i].Items = []domain.TripItem{}
		}
	}
	return trips, nil
}

// AddItem conditionally appends an item to a trip. ON CONFLICT DO NOTHING plus
// a follow-up read makes the append idempotent at the store layer, so two
// racing save flows resolve to the same single row.
func (r *pgTripRepo) AddItem(ctx context.Context, item domain.TripItem) (domain.TripItem, error) {
	const q = `
		INSERT INTO trip_items (trip_id, item_id, item_type, latitude, longitude)
		VALUES (@trip_id, @item_id, @item_type, @latitude, @longitude)
		ON CONFLICT (trip_id, item_id, item_type) DO NOTHING
		RETURNING id, trip_id, item_id, item_type, latitude, longitude, created_at`

	var lat, lon *float64
	if item.Location != nil {
		lat = &item.Location.Latitude
		lon = &item.Location.Longitude
	}
	args := pgx.NamedArgs{
		"trip_id":   item.TripID,
		"item_id":   item.ItemID,
		"item_type": item.ItemType,
		"latitude":  lat,
		"longitude": lon,
	}

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanTripItem(row)
	if err == nil {
		return result, nil
	}
	if errors.Is(err, domain.ErrNotFound) {
		// Conflict path: the row already exists, return it.
		return r.getItem(ctx, item.TripID, item.ItemID, item.ItemType)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23503" { // foreign_key_violation
		return domain.TripItem{}, fmt.Errorf("repo.TripRepo.AddItem: trip %s: %w", item.TripID, domain.ErrNotFound)
	}
	return domain.TripItem{}, fmt.Errorf("repo.TripRepo.AddItem: %w", err)
}

// Delete removes a trip by primary key. Items go with it via ON DELETE CASCADE.
func (r *pgTripRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM trips WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.TripRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.TripRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// getItem fetches a single trip item by its natural key.
func (r *pgTripRepo) getItem(ctx context.Context, tripID, itemID uuid.UUID, itemType domain.ItemType) (domain.TripItem, error) {
	const q = `
		SELECT id, trip_id, item_id, item_type, latitude, longitude, created_at
		FROM trip_items
		WHERE trip_id = @trip_id AND item_id = @item_id AND item_type = @item_type`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{
		"trip_id": tripID, "item_id": itemID, "item_type": itemType,
	})
	result, err := scanTripItem(row)
	if err != nil {
		return domain.TripItem{}, fmt.Errorf("repo.TripRepo.AddItem: fetch existing: %w", err)
	}
	return result, nil
}

// listItems loads all items for the given trip IDs, grouped by trip.
func (r *pgTripRepo) listItems(ctx context.Context, tripIDs []uuid.UUID) (map[uuid.UUID][]domain.TripItem, error) {
	const q = `
		SELECT id, trip_id, item_id, item_type, latitude, longitude, created_at
		FROM trip_items
		WHERE trip_id = ANY(@trip_ids)
		ORDER BY created_at ASC`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"trip_ids": tripIDs})
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	items := make(map[uuid.UUID][]domain.TripItem)
	for rows.Next() {
		it, err := scanTripItem(rows)
		if err != nil {
			return nil, fmt.Errorf("list items: scan: %w", err)
		}
		items[it.TripID] = append(items[it.TripID], it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list items: rows: %w", err)
	}
	return items, nil
}

// scanTrip maps a single database row into a domain.Trip.
// It handles the UUID and date conversions. Items are not populated here.
func scanTrip(s scanner) (domain.Trip, error) {
	var (
		t      domain.Trip
		id     pgtype.UUID
		userID pgtype.UUID
		sdRaw  pgtype.Date
		edRaw  pgtype.Date
	)

	err := s.Scan(&id, &userID, &t.Name, &sdRaw, &edRaw, &t.Notes, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Trip{}, domain.ErrNotFound
		}
		return domain.Trip{}, err
	}

	t.ID = uuid.UUID(id.Bytes)
	t.UserID = uuid.UUID(userID.Bytes)
	t.StartDate = sdRaw.Time
	t.EndDate = edRaw.Time
	return t, nil
}

// scanTripItem maps a single database row into a domain.TripItem,
// folding the nullable latitude/longitude pair into *geo.Point.
func scanTripItem(s scanner) (domain.TripItem, error) {
	var (
		it       domain.TripItem
		id       pgtype.UUID
		tripID   pgtype.UUID
		itemID   pgtype.UUID
		lat, lon pgtype.Float8
	)

	err := s.Scan(&id, &tripID, &itemID, &it.ItemType, &lat, &lon, &it.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.TripItem{}, domain.ErrNotFound
		}
		return domain.TripItem{}, err
	}

	it.ID = uuid.UUID(id.Bytes)
	it.TripID = uuid.UUID(tripID.Bytes)
	it.ItemID = uuid.UUID(itemID.Bytes)
	if lat.Valid && lon.Valid {
		it.Location = &geo.Point{Latitude: lat.Float64, Longitude: lon.Float64}
	}
	return it, nil
}
