package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Tag is reference data; the application never writes this table.
type Tag struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Category     *string   `json:"category"`
	Description  *string   `json:"description"`
	DisplayOrder int       `json:"display_order"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type TagsStore struct {
	db *pgxpool.Pool
}

func (s *TagsStore) List(ctx context.Context) ([]Tag, error) {
	query := `
		SELECT id, name, category, description, display_order, created_at, updated_at
		FROM tags
		ORDER BY display_order, id
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	defer rows.Close()

	var tags []Tag
	for rows.Next() {
		var t Tag
		if err := rows.Scan(
			&t.ID, &t.Name, &t.Category, &t.Description, &t.DisplayOrder,
			&t.CreatedAt, &t.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan tag row: %w", err)
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}
