package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"honhonji/internal/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Course is a user-authored ordered itinerary of places.
type Course struct {
	ID          int64        `json:"id"`
	Name        string       `json:"name"`
	Description *string      `json:"description"`
	ProfileID   uuid.UUID    `json:"profile_id"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
	Places      []CourseStop `json:"places,omitempty"`
}

// CoursePlace is the join row recording one place's position within one course.
// For any course the set of order values is exactly {1..n}.
type CoursePlace struct {
	CourseID int64 `json:"course_id"`
	PlaceID  int64 `json:"place_id"`
	Order    int   `json:"order"`
}

// CourseStop is a place together with its position in a course.
type CourseStop struct {
	Order int `json:"order"`
	Place
}

// CourseFailure reports a per-course error from a bulk add.
type CourseFailure struct {
	CourseID int64  `json:"course_id"`
	Error    string `json:"error"`
}

// CoursesStore owns the courses and course_places tables. Every membership
// write runs in a transaction that locks the course row first, so writes on
// the same course are serialized and the order column stays contiguous.
type CoursesStore struct {
	db *pgxpool.Pool
}

func (s *CoursesStore) Create(ctx context.Context, course *Course) error {
	query := `
		INSERT INTO courses (name, description, profile_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	err := s.db.QueryRow(ctx, query,
		course.Name,
		course.Description,
		course.ProfileID,
	).Scan(&course.ID, &course.CreatedAt, &course.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create course: %w", err)
	}
	return nil
}

// Owns reports whether the course exists and belongs to the profile.
func (s *CoursesStore) Owns(ctx context.Context, courseID int64, profileID uuid.UUID) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var owns bool
	err := s.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM courses WHERE id = $1 AND profile_id = $2
		)`, courseID, profileID,
	).Scan(&owns)
	if err != nil {
		return false, fmt.Errorf("failed to check course owner: %w", err)
	}
	return owns, nil
}

// lockCourse takes a row lock on the course, serializing membership writes
// for that course until the transaction ends.
func lockCourse(ctx context.Context, tx pgx.Tx, courseID int64) error {
	var id int64
	err := tx.QueryRow(ctx,
		`SELECT id FROM courses WHERE id = $1 FOR UPDATE`, courseID,
	).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// AddPlace appends a place at the end of the course: order = current
// membership count + 1. A (course, place) pair that already exists surfaces
// as ErrDuplicateMembership.
func (s *CoursesStore) AddPlace(ctx context.Context, courseID, placeID int64) (*CoursePlace, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	cp := &CoursePlace{CourseID: courseID, PlaceID: placeID}
	err := db.WithTx(ctx, s.db, func(tx pgx.Tx) error {
		if err := lockCourse(ctx, tx, courseID); err != nil {
			return err
		}

		var count int
		if err := tx.QueryRow(ctx,
			`SELECT COUNT(*) FROM course_places WHERE course_id = $1`, courseID,
		).Scan(&count); err != nil {
			return err
		}

		cp.Order = count + 1
		_, err := tx.Exec(ctx, `
			INSERT INTO course_places (course_id, place_id, "order")
			VALUES ($1, $2, $3)`,
			courseID, placeID, cp.Order,
		)
		if isUniqueViolation(err) {
			return ErrDuplicateMembership
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return cp, nil
}

// AddPlaceToCourses applies AddPlace to each course independently. One course
// already containing the place does not fail the batch; partial success is
// the expected outcome.
func (s *CoursesStore) AddPlaceToCourses(ctx context.Context, courseIDs []int64, placeID int64) ([]CoursePlace, []CourseFailure) {
	var results []CoursePlace
	var failures []CourseFailure

	for _, courseID := range courseIDs {
		cp, err := s.AddPlace(ctx, courseID, placeID)
		if err != nil {
			failures = append(failures, CourseFailure{CourseID: courseID, Error: err.Error()})
			continue
		}
		results = append(results, *cp)
	}
	return results, failures
}

// RemovePlace deletes the membership row and closes the gap it leaves:
// every row with a higher order is shifted down by one.
func (s *CoursesStore) RemovePlace(ctx context.Context, courseID, placeID int64) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	return db.WithTx(ctx, s.db, func(tx pgx.Tx) error {
		if err := lockCourse(ctx, tx, courseID); err != nil {
			return err
		}

		var removedOrder int
		err := tx.QueryRow(ctx, `
			DELETE FROM course_places
			WHERE course_id = $1 AND place_id = $2
			RETURNING "order"`,
			courseID, placeID,
		).Scan(&removedOrder)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx, `
			UPDATE course_places
			SET "order" = "order" - 1
			WHERE course_id = $1 AND "order" > $2`,
			courseID, removedOrder,
		)
		return err
	})
}

// Reorder rewrites the order column from the caller's full permutation of
// the current membership: place orderedPlaceIDs[i] gets order i+1. The list
// must contain exactly the course's current members, each exactly once.
func (s *CoursesStore) Reorder(ctx context.Context, courseID int64, orderedPlaceIDs []int64) error {
	seen := make(map[int64]struct{}, len(orderedPlaceIDs))
	for _, placeID := range orderedPlaceIDs {
		if _, ok := seen[placeID]; ok {
			return fmt.Errorf("%w: place %d appears more than once in reorder list",
				ErrConflict, placeID)
		}
		seen[placeID] = struct{}{}
	}

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	return db.WithTx(ctx, s.db, func(tx pgx.Tx) error {
		if err := lockCourse(ctx, tx, courseID); err != nil {
			return err
		}

		var count int
		if err := tx.QueryRow(ctx,
			`SELECT COUNT(*) FROM course_places WHERE course_id = $1`, courseID,
		).Scan(&count); err != nil {
			return err
		}
		if count != len(orderedPlaceIDs) {
			return fmt.Errorf("%w: reorder list has %d ids, course has %d places",
				ErrConflict, len(orderedPlaceIDs), count)
		}

		for i, placeID := range orderedPlaceIDs {
			tag, err := tx.Exec(ctx, `
				UPDATE course_places
				SET "order" = $1
				WHERE course_id = $2 AND place_id = $3`,
				i+1, courseID, placeID,
			)
			if err != nil {
				return err
			}
			if tag.RowsAffected() == 0 {
				return fmt.Errorf("%w: place %d is not in course %d",
					ErrNotFound, placeID, courseID)
			}
		}
		return nil
	})
}

// Delete removes the course and all of its membership rows, scoped to the
// owning profile. A course owned by someone else looks identical to a
// missing one.
func (s *CoursesStore) Delete(ctx context.Context, courseID int64, profileID uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	return db.WithTx(ctx, s.db, func(tx pgx.Tx) error {
		var owner uuid.UUID
		err := tx.QueryRow(ctx,
			`SELECT profile_id FROM courses WHERE id = $1 FOR UPDATE`, courseID,
		).Scan(&owner)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if owner != profileID {
			return ErrNotFound
		}

		if _, err := tx.Exec(ctx,
			`DELETE FROM course_places WHERE course_id = $1`, courseID,
		); err != nil {
			return err
		}

		_, err = tx.Exec(ctx,
			`DELETE FROM courses WHERE id = $1 AND profile_id = $2`,
			courseID, profileID,
		)
		return err
	})
}

func (s *CoursesStore) Update(ctx context.Context, courseID int64, profileID uuid.UUID, name string, description *string) error {
	query := `
		UPDATE courses
		SET name = $1, description = $2, updated_at = NOW()
		WHERE id = $3 AND profile_id = $4
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	tag, err := s.db.Exec(ctx, query, name, description, courseID, profileID)
	if err != nil {
		return fmt.Errorf("failed to update course: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByID returns the course with its places in itinerary order, scoped to
// the owning profile.
func (s *CoursesStore) GetByID(ctx context.Context, courseID int64, profileID uuid.UUID) (*Course, error) {
	return s.get(ctx, courseID, &profileID)
}

// GetShared is the public, share-link view of a course: no owner scoping.
func (s *CoursesStore) GetShared(ctx context.Context, courseID int64) (*Course, error) {
	return s.get(ctx, courseID, nil)
}

func (s *CoursesStore) get(ctx context.Context, courseID int64, profileID *uuid.UUID) (*Course, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var c Course
	err := s.db.QueryRow(ctx, `
		SELECT id, name, description, profile_id, created_at, updated_at
		FROM courses
		WHERE id = $1 AND ($2::uuid IS NULL OR profile_id = $2)`,
		courseID, profileID,
	).Scan(&c.ID, &c.Name, &c.Description, &c.ProfileID, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(ctx, fmt.Sprintf(`
		SELECT cp."order", %s
		FROM course_places cp
		JOIN places p ON p.id = cp.place_id
		WHERE cp.course_id = $1
		ORDER BY cp."order"`, placeColumns),
		courseID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get course places: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var stop CourseStop
		var statsJSON []byte
		if err := rows.Scan(
			&stop.Order,
			&stop.ID, &stop.Name, &stop.Type, &stop.Status, &stop.Source,
			&stop.Address, &stop.RoadAddress, &stop.Lat, &stop.Lng,
			&stop.Description, &stop.Phone, &stop.Homepage, &stop.Instagram,
			&stop.Naver, &stop.ImageURL, &stop.SubmittedBy, &statsJSON,
			&stop.CreatedAt, &stop.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan course place row: %w", err)
		}
		if len(statsJSON) > 0 {
			if err := json.Unmarshal(statsJSON, &stop.Stats); err != nil {
				return nil, fmt.Errorf("failed to unmarshal stats: %w", err)
			}
		}
		c.Places = append(c.Places, stop)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *CoursesStore) ListByProfile(ctx context.Context, profileID uuid.UUID) ([]Course, error) {
	query := `
		SELECT c.id, c.name, c.description, c.profile_id, c.created_at, c.updated_at
		FROM courses c
		WHERE c.profile_id = $1
		ORDER BY c.created_at DESC
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	rows, err := s.db.Query(ctx, query, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	defer rows.Close()

	var courses []Course
	for rows.Next() {
		var c Course
		if err := rows.Scan(
			&c.ID, &c.Name, &c.Description, &c.ProfileID, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan course row: %w", err)
		}
		courses = append(courses, c)
	}
	return courses, rows.Err()
}

// isUniqueViolation reports whether err is a Postgres unique_violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
