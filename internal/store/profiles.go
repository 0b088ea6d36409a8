package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

type Profile struct {
	ProfileID        uuid.UUID `json:"profile_id"`
	Name             string    `json:"name"`
	Email            string    `json:"email"`
	Password         password  `json:"-"`
	AvatarURL        *string   `json:"avatar_url"`
	Role             string    `json:"role"`
	MarketingConsent bool      `json:"marketing_consent"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// password keeps the plaintext out of JSON and logs.
type password struct {
	text *string
	hash []byte
}

func (p *password) Set(text string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(text), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	p.text = &text
	p.hash = hash

	return nil
}

func (p *password) Compare(text string) error {
	return bcrypt.CompareHashAndPassword(p.hash, []byte(text))
}

type ProfilesStore struct {
	db *pgxpool.Pool
}

func (s *ProfilesStore) Create(ctx context.Context, profile *Profile) error {
	query := `
		INSERT INTO profiles (profile_id, name, email, password, marketing_consent)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	if profile.ProfileID == uuid.Nil {
		profile.ProfileID = uuid.New()
	}

	err := s.db.QueryRow(ctx, query,
		profile.ProfileID,
		profile.Name,
		profile.Email,
		profile.Password.hash,
		profile.MarketingConsent,
	).Scan(&profile.CreatedAt, &profile.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicateEmail
	}
	if err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}
	return nil
}

func (s *ProfilesStore) GetByID(ctx context.Context, profileID uuid.UUID) (*Profile, error) {
	query := `
		SELECT profile_id, name, email, password, avatar_url, role,
		       marketing_consent, created_at, updated_at
		FROM profiles
		WHERE profile_id = $1
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	return s.scanProfile(s.db.QueryRow(ctx, query, profileID))
}

func (s *ProfilesStore) GetByEmail(ctx context.Context, email string) (*Profile, error) {
	query := `
		SELECT profile_id, name, email, password, avatar_url, role,
		       marketing_consent, created_at, updated_at
		FROM profiles
		WHERE email = $1
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	return s.scanProfile(s.db.QueryRow(ctx, query, email))
}

func (s *ProfilesStore) scanProfile(row pgx.Row) (*Profile, error) {
	var profile Profile
	err := row.Scan(
		&profile.ProfileID,
		&profile.Name,
		&profile.Email,
		&profile.Password.hash,
		&profile.AvatarURL,
		&profile.Role,
		&profile.MarketingConsent,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &profile, nil
}
