package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound            = errors.New("resource not found")
	ErrConflict            = errors.New("resource already exists")
	ErrDuplicateMembership = errors.New("place is already in this course")
	ErrDuplicateEmail      = errors.New("a profile with that email already exists")
	QueryTimeoutDuration   = time.Second * 5
)

type Storage struct {
	Places interface {
		List(context.Context, PlaceFilter) ([]Place, error)
		GetByID(context.Context, int64) (*Place, error)
		CountPending(context.Context) (int, error)
	}
	Tags interface {
		List(context.Context) ([]Tag, error)
	}
	Courses interface {
		Create(context.Context, *Course) error
		GetByID(context.Context, int64, uuid.UUID) (*Course, error)
		GetShared(context.Context, int64) (*Course, error)
		ListByProfile(context.Context, uuid.UUID) ([]Course, error)
		Owns(ctx context.Context, courseID int64, profileID uuid.UUID) (bool, error)
		Update(context.Context, int64, uuid.UUID, string, *string) error
		Delete(context.Context, int64, uuid.UUID) error
		AddPlace(context.Context, int64, int64) (*CoursePlace, error)
		AddPlaceToCourses(context.Context, []int64, int64) ([]CoursePlace, []CourseFailure)
		RemovePlace(context.Context, int64, int64) error
		Reorder(context.Context, int64, []int64) error
	}
	Likes interface {
		Toggle(ctx context.Context, placeID int64, profileID uuid.UUID) (bool, error)
		IsLiked(ctx context.Context, placeID int64, profileID uuid.UUID) (bool, error)
		ListByProfile(ctx context.Context, profileID uuid.UUID) ([]Place, error)
	}
	Submissions interface {
		Submit(context.Context, *PlaceSubmission) (*Place, error)
	}
	Profiles interface {
		Create(context.Context, *Profile) error
		GetByID(context.Context, uuid.UUID) (*Profile, error)
		GetByEmail(context.Context, string) (*Profile, error)
	}
	Reviews interface {
		Create(context.Context, *Review) error
		ListByPlace(context.Context, int64) ([]Review, error)
		Delete(ctx context.Context, reviewID int64, profileID uuid.UUID) error
	}
}

func NewStorage(db *pgxpool.Pool) Storage {
	return Storage{
		Places:      &PlacesStore{db},
		Tags:        &TagsStore{db},
		Courses:     &CoursesStore{db},
		Likes:       &LikesStore{db},
		Submissions: &SubmissionsStore{db},
		Profiles:    &ProfilesStore{db},
		Reviews:     &ReviewsStore{db},
	}
}
