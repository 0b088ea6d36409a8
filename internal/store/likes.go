package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// LikesStore handles the place_likes bookmark table.
type LikesStore struct {
	db *pgxpool.Pool
}

// Toggle bookmarks the place for the profile, or removes the bookmark if it
// already exists. The delete-else-insert runs as one statement so a
// double-submit cannot interleave between check and act. Returns the
// resulting state: true when the place ends up bookmarked.
func (s *LikesStore) Toggle(ctx context.Context, placeID int64, profileID uuid.UUID) (bool, error) {
	query := `
		WITH removed AS (
			DELETE FROM place_likes
			WHERE place_id = $1 AND profile_id = $2
			RETURNING 1
		), added AS (
			INSERT INTO place_likes (place_id, profile_id)
			SELECT $1, $2
			WHERE NOT EXISTS (SELECT 1 FROM removed)
			RETURNING 1
		)
		SELECT EXISTS (SELECT 1 FROM added)
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var liked bool
	err := s.db.QueryRow(ctx, query, placeID, profileID).Scan(&liked)
	if isUniqueViolation(err) {
		// Lost a race against an identical toggle; the row exists now.
		return s.IsLiked(ctx, placeID, profileID)
	}
	if err != nil {
		return false, fmt.Errorf("failed to toggle like: %w", err)
	}
	return liked, nil
}

func (s *LikesStore) IsLiked(ctx context.Context, placeID int64, profileID uuid.UUID) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var liked bool
	err := s.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM place_likes WHERE place_id = $1 AND profile_id = $2
		)`, placeID, profileID,
	).Scan(&liked)
	if err != nil {
		return false, fmt.Errorf("failed to check like: %w", err)
	}
	return liked, nil
}

// ListByProfile returns the places a profile has bookmarked, newest first.
func (s *LikesStore) ListByProfile(ctx context.Context, profileID uuid.UUID) ([]Place, error) {
	query := fmt.Sprintf(`
		SELECT %s,
		       COALESCE(
		           json_agg(json_build_object(
		               'id', t.id, 'name', t.name, 'category', t.category,
		               'description', t.description, 'display_order', t.display_order
		           ) ORDER BY t.display_order) FILTER (WHERE t.id IS NOT NULL),
		           '[]'
		       ) AS tags
		FROM places p
		JOIN place_likes pl ON pl.place_id = p.id
		LEFT JOIN place_to_tags pt ON pt.place_id = p.id
		LEFT JOIN tags t ON t.id = pt.tag_id
		WHERE pl.profile_id = $1
		GROUP BY p.id
		ORDER BY p.created_at DESC`, placeColumns)

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	rows, err := s.db.Query(ctx, query, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookmarks: %w", err)
	}
	defer rows.Close()

	var places []Place
	for rows.Next() {
		p, err := scanPlace(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bookmarked place: %w", err)
		}
		places = append(places, *p)
	}
	return places, rows.Err()
}
