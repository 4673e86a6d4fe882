package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/trailhead-app/backend/internal/domain"
)

// RejectionRepo defines the persistence operations for trip rejection records.
// A rejection remembers that a user declined to file an item into a trip.
type RejectionRepo interface {
	// ListByItem returns all rejection records for an item, any trip.
	// Always returns a non-nil slice.
	ListByItem(ctx context.Context, userID, itemID uuid.UUID, itemType domain.ItemType) ([]domain.RejectionRecord, error)

	// Create inserts a rejection record. Inserting the same
	// (user, item, type, trip) tuple twice is a no-op.
	Create(ctx context.Context, rec domain.RejectionRecord) error

	// DeleteByItem removes all rejection records for an item, allowing it to
	// be proposed again. Deleting when none exist is not an error.
	DeleteByItem(ctx context.Context, userID, itemID uuid.UUID, itemType domain.ItemType) error
}

// pgRejectionRepo is the Postgres implementation of RejectionRepo.
type pgRejectionRepo struct {
	db db
}

// NewRejectionRepo constructs a RejectionRepo backed by the provided db
// connection. In production pass *pgxpool.Pool; in tests pass a pgx.Tx.
func NewRejectionRepo(db db) RejectionRepo {
	return &pgRejectionRepo{db: db}
}

func (r *pgRejectionRepo) ListByItem(ctx context.Context, userID, itemID uuid.UUID, itemType domain.ItemType) ([]domain.RejectionRecord, error) {
	const q = `
		SELECT user_id, item_id, item_type, trip_id, created_at
		FROM trip_rejections
		WHERE user_id = @user_id AND item_id = @item_id AND item_type = @item_type`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{
		"user_id": userID, "item_id": itemID, "item_type": itemType,
	})
	if err != nil {
		return nil, fmt.Errorf("repo.RejectionRepo.ListByItem: %w", err)
	}
	defer rows.Close()

	recs := []domain.RejectionRecord{}
	for rows.Next() {
		rec, err := scanRejection(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.RejectionRepo.ListByItem: scan: %w", err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.RejectionRepo.ListByItem: rows: %w", err)
	}
	return recs, nil
}

func (r *pgRejectionRepo) Create(ctx context.Context, rec domain.RejectionRecord) error {
	const q = `
		INSERT INTO trip_rejections (user_id, item_id, item_type, trip_id)
		VALUES (@user_id, @item_id, @item_type, @trip_id)
		ON CONFLICT (user_id, item_id, item_type, trip_id) DO NOTHING`

	_, err := r.db.Exec(ctx, q, pgx.NamedArgs{
		"user_id": rec.UserID, "item_id": rec.ItemID,
		"item_type": rec.ItemType, "trip_id": rec.TripID,
	})
	if err != nil {
		return fmt.Errorf("repo.RejectionRepo.Create: %w", err)
	}
	return nil
}

func (r *pgRejectionRepo) DeleteByItem(ctx context.Context, userID, itemID uuid.UUID, itemType domain.ItemType) error {
	const q = `
		DELETE FROM trip_rejections
		WHERE user_id = @user_id AND item_id = @item_id AND item_type = @item_type`

	_, err := r.db.Exec(ctx, q, pgx.NamedArgs{
		"user_id": userID, "item_id": itemID, "item_type": itemType,
	})
	if err != nil {
		return fmt.Errorf("repo.RejectionRepo.DeleteByItem: %w", err)
	}
	return nil
}

// scanRejection maps a single database row into a domain.RejectionRecord.
func scanRejection(s scanner) (domain.RejectionRecord, error) {
	var (
		rec    domain.RejectionRecord
		userID pgtype.UUID
		itemID pgtype.UUID
		tripID pgtype.UUID
	)

	err := s.Scan(&userID, &itemID, &rec.ItemType, &tripID, &rec.CreatedAt)
	if err != nil {
		return domain.RejectionRecord{}, err
	}

	rec.UserID = uuid.UUID(userID.Bytes)
	rec.ItemID = uuid.UUID(itemID.Bytes)
	rec.TripID = uuid.UUID(tripID.Bytes)
	return rec, nil
}
