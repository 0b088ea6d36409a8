package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PlaceSubmission is a candidate place entering the moderation queue.
type PlaceSubmission struct {
	Type        string
	Name        string
	Address     *string
	RoadAddress *string
	Lat         *float64
	Lng         *float64
	Description *string
	Phone       *string
	Homepage    *string
	Instagram   *string
	Naver       *string
	ImageURL    *string
	SubmittedBy *uuid.UUID // nil for anonymous submissions
	Source      string     // "user" or "admin"
	TagIDs      []int64
}

// SubmissionsStore writes user-submitted places.
type SubmissionsStore struct {
	db *pgxpool.Pool
}

// Submit inserts the place with status=pending, then links its tags.
// The two steps are intentionally not one transaction: a tag-link failure
// leaves the place row behind for moderators rather than rolling it back.
func (s *SubmissionsStore) Submit(ctx context.Context, sub *PlaceSubmission) (*Place, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	place := &Place{
		Name:        sub.Name,
		Type:        sub.Type,
		Status:      PlaceStatusPending,
		Source:      sub.Source,
		Address:     sub.Address,
		RoadAddress: sub.RoadAddress,
		Lat:         sub.Lat,
		Lng:         sub.Lng,
		Description: sub.Description,
		Phone:       sub.Phone,
		Homepage:    sub.Homepage,
		Instagram:   sub.Instagram,
		Naver:       sub.Naver,
		ImageURL:    sub.ImageURL,
		SubmittedBy: sub.SubmittedBy,
	}

	err := s.db.QueryRow(ctx, `
		INSERT INTO places (
			name, type, status, source, address, road_address, lat, lng,
			description, phone, homepage, instagram, naver, image_url, submitted_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id, created_at, updated_at`,
		sub.Name, sub.Type, PlaceStatusPending, sub.Source, sub.Address,
		sub.RoadAddress, sub.Lat, sub.Lng, sub.Description, sub.Phone,
		sub.Homepage, sub.Instagram, sub.Naver, sub.ImageURL, sub.SubmittedBy,
	).Scan(&place.ID, &place.CreatedAt, &place.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create place: %w", err)
	}

	for _, tagID := range sub.TagIDs {
		if _, err := s.db.Exec(ctx, `
			INSERT INTO place_to_tags (place_id, tag_id)
			VALUES ($1, $2)
			ON CONFLICT DO NOTHING`,
			place.ID, tagID,
		); err != nil {
			return place, fmt.Errorf("failed to link tag %d: %w", tagID, err)
		}
	}
	return place, nil
}
