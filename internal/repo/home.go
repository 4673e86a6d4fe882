package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/trailhead-app/backend/internal/domain"
	"github.com/trailhead-app/backend/internal/geo"
)

// HomeProfileRepo defines the persistence operations for a user's home region.
type HomeProfileRepo interface {
	// GetByUser returns the user's home profile.
	// Returns domain.ErrNotFound if the user never configured a home.
	GetByUser(ctx context.Context, userID uuid.UUID) (domain.HomeProfile, error)

	// Upsert creates or replaces the user's home profile.
	Upsert(ctx context.Context, profile domain.HomeProfile) (domain.HomeProfile, error)
}

// pgHomeProfileRepo is the Postgres implementation of HomeProfileRepo.
type pgHomeProfileRepo struct {
	db db
}

// NewHomeProfileRepo constructs a HomeProfileRepo backed by the provided db
// connection. In production pass *pgxpool.Pool; in tests pass a pgx.Tx.
func NewHomeProfileRepo(db db) HomeProfileRepo {
	return &pgHomeProfileRepo{db: db}
}

func (r *pgHomeProfileRepo) GetByUser(ctx context.Context, userID uuid.UUID) (domain.HomeProfile, error) {
	const q = `
		SELECT user_id, latitude, longitude, radius_km
		FROM home_profiles
		WHERE user_id = @user_id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"user_id": userID})
	result, err := scanHomeProfile(row)
	if err != nil {
		return domain.HomeProfile{}, fmt.Errorf("repo.HomeProfileRepo.GetByUser: %w", err)
	}
	return result, nil
}

func (r *pgHomeProfileRepo) Upsert(ctx context.Context, profile domain.HomeProfile) (domain.HomeProfile, error) {
	const q = `
		INSERT INTO home_profiles (user_id, latitude, longitude, radius_km)
		VALUES (@user_id, @latitude, @longitude, @radius_km)
		ON CONFLICT (user_id) DO UPDATE
		SET latitude   = EXCLUDED.latitude,
		    longitude  = EXCLUDED.longitude,
		    radius_km  = EXCLUDED.radius_km,
		    updated_at = now()
		RETURNING user_id, latitude, longitude, radius_km`

	var lat, lon *float64
	if profile.HomeLocation != nil {
		lat = &profile.HomeLocation.Latitude
		lon = &profile.HomeLocation.Longitude
	}
	var radius *float64
	if profile.HomeRadiusKm > 0 {
		radius = &profile.HomeRadiusKm
	}

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{
		"user_id": profile.UserID, "latitude": lat, "longitude": lon, "radius_km": radius,
	})
	result, err := scanHomeProfile(row)
	if err != nil {
		return domain.HomeProfile{}, fmt.Errorf("repo.HomeProfileRepo.Upsert: %w", err)
	}
	return result, nil
}

// scanHomeProfile maps a row into a domain.HomeProfile, folding the nullable
// coordinate pair into *geo.Point and a NULL radius into the zero value
// (domain.HomeProfile.RadiusKm applies the default).
func scanHomeProfile(s scanner) (domain.HomeProfile, error) {
	var (
		p        domain.HomeProfile
		userID   pgtype.UUID
		lat, lon pgtype.Float8
		radius   pgtype.Float8
	)

	err := s.Scan(&userID, &lat, &lon, &radius)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.HomeProfile{}, domain.ErrNotFound
		}
		return domain.HomeProfile{}, err
	}

	p.UserID = uuid.UUID(userID.Bytes)
	if lat.Valid && lon.Valid {
		p.HomeLocation = &geo.Point{Latitude: lat.Float64, Longitude: lon.Float64}
	}
	if radius.Valid {
		p.HomeRadiusKm = radius.Float64
	}
	return p, nil
}
