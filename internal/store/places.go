package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Place type and moderation status values as stored in the enums.
const (
	PlaceTypeRestaurant = "restaurant"
	PlaceTypeCafe       = "cafe"
	PlaceTypeTrail      = "trail"

	PlaceStatusPending  = "pending"
	PlaceStatusApproved = "approved"
	PlaceStatusRejected = "rejected"

	PlaceSourceUser  = "user"
	PlaceSourceAdmin = "admin"
)

// PlaceStats is the counters blob kept on each place row.
type PlaceStats struct {
	Views   int64 `json:"views"`
	Reviews int64 `json:"reviews"`
	Likes   int64 `json:"likes"`
}

type Place struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Type        string     `json:"type"`
	Status      string     `json:"status"`
	Source      string     `json:"source"`
	Address     *string    `json:"address"`
	RoadAddress *string    `json:"road_address"`
	Lat         *float64   `json:"lat"`
	Lng         *float64   `json:"lng"`
	Description *string    `json:"description"`
	Phone       *string    `json:"phone"`
	Homepage    *string    `json:"homepage"`
	Instagram   *string    `json:"instagram"`
	Naver       *string    `json:"naver"`
	ImageURL    *string    `json:"image_url"`
	SubmittedBy *uuid.UUID `json:"submitted_by"`
	Stats       PlaceStats `json:"stats"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Tags        []Tag      `json:"tags"`
}

// PlaceFilter narrows List to approved places of one type and,
// optionally, one tag.
type PlaceFilter struct {
	Type  string
	TagID int64
}

// PlacesStore handles reads against the places table.
type PlacesStore struct {
	db *pgxpool.Pool
}

const placeColumns = `
	p.id, p.name, p.type, p.status, p.source, p.address, p.road_address,
	p.lat, p.lng, p.description, p.phone, p.homepage, p.instagram, p.naver,
	p.image_url, p.submitted_by, p.stats, p.created_at, p.updated_at`

// scanPlace scans one row of placeColumns plus an aggregated tags JSON column.
func scanPlace(row pgx.Row) (*Place, error) {
	var p Place
	var statsJSON, tagsJSON []byte
	if err := row.Scan(
		&p.ID, &p.Name, &p.Type, &p.Status, &p.Source, &p.Address, &p.RoadAddress,
		&p.Lat, &p.Lng, &p.Description, &p.Phone, &p.Homepage, &p.Instagram, &p.Naver,
		&p.ImageURL, &p.SubmittedBy, &statsJSON, &p.CreatedAt, &p.UpdatedAt,
		&tagsJSON,
	); err != nil {
		return nil, err
	}
	if len(statsJSON) > 0 {
		if err := json.Unmarshal(statsJSON, &p.Stats); err != nil {
			return nil, fmt.Errorf("failed to unmarshal stats: %w", err)
		}
	}
	if err := json.Unmarshal(tagsJSON, &p.Tags); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tags: %w", err)
	}
	return &p, nil
}

// List returns approved places of the given type, each with its tags.
// A non-zero TagID keeps only places carrying that tag.
func (s *PlacesStore) List(ctx context.Context, filter PlaceFilter) ([]Place, error) {
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
		LEFT JOIN place_to_tags pt ON pt.place_id = p.id
		LEFT JOIN tags t ON t.id = pt.tag_id
		WHERE p.status = 'approved' AND p.type = $1
		GROUP BY p.id
		HAVING $2::bigint = 0 OR bool_or(t.id = $2)
		ORDER BY p.created_at DESC`, placeColumns)

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	rows, err := s.db.Query(ctx, query, filter.Type, filter.TagID)
	if err != nil {
		return nil, fmt.Errorf("failed to list places: %w", err)
	}
	defer rows.Close()

	var places []Place
	for rows.Next() {
		p, err := scanPlace(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan place row: %w", err)
		}
		places = append(places, *p)
	}
	return places, rows.Err()
}

func (s *PlacesStore) GetByID(ctx context.Context, placeID int64) (*Place, error) {
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
		LEFT JOIN place_to_tags pt ON pt.place_id = p.id
		LEFT JOIN tags t ON t.id = pt.tag_id
		WHERE p.id = $1
		GROUP BY p.id`, placeColumns)

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	p, err := scanPlace(s.db.QueryRow(ctx, query, placeID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

// CountPending reports how many submissions are still awaiting moderation.
func (s *PlacesStore) CountPending(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var count int
	err := s.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM places WHERE status = 'pending'`,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count pending places: %w", err)
	}
	return count, nil
}
