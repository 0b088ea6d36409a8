package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Review struct {
	ReviewID  int64      `json:"review_id"`
	PlaceID   int64      `json:"place_id"`
	ProfileID *uuid.UUID `json:"profile_id"`
	Rating    int        `json:"rating"` // 1-5
	Content   string     `json:"content"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`

	// Joined fields
	ProfileName string  `json:"profile_name,omitempty"`
	AvatarURL   *string `json:"avatar_url,omitempty"`
}

type ReviewsStore struct {
	db *pgxpool.Pool
}

func (s *ReviewsStore) Create(ctx context.Context, review *Review) error {
	query := `
		INSERT INTO reviews (place_id, profile_id, rating, content)
		VALUES ($1, $2, $3, $4)
		RETURNING review_id, created_at, updated_at
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	return s.db.QueryRow(ctx, query,
		review.PlaceID,
		review.ProfileID,
		review.Rating,
		review.Content,
	).Scan(&review.ReviewID, &review.CreatedAt, &review.UpdatedAt)
}

func (s *ReviewsStore) ListByPlace(ctx context.Context, placeID int64) ([]Review, error) {
	query := `
		SELECT r.review_id, r.place_id, r.profile_id, r.rating, r.content,
		       r.created_at, r.updated_at, pr.name, pr.avatar_url
		FROM reviews r
		JOIN profiles pr ON pr.profile_id = r.profile_id
		WHERE r.place_id = $1
		ORDER BY r.created_at DESC
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	rows, err := s.db.Query(ctx, query, placeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	defer rows.Close()

	var reviews []Review
	for rows.Next() {
		var review Review
		if err := rows.Scan(
			&review.ReviewID,
			&review.PlaceID,
			&review.ProfileID,
			&review.Rating,
			&review.Content,
			&review.CreatedAt,
			&review.UpdatedAt,
			&review.ProfileName,
			&review.AvatarURL,
		); err != nil {
			return nil, fmt.Errorf("failed to scan review row: %w", err)
		}
		reviews = append(reviews, review)
	}
	return reviews, rows.Err()
}

func (s *ReviewsStore) Delete(ctx context.Context, reviewID int64, profileID uuid.UUID) error {
	query := `
		DELETE FROM reviews
		WHERE review_id = $1 AND profile_id = $2
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	tag, err := s.db.Exec(ctx, query, reviewID, profileID)
	if err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
