package user

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/devanagari-foods/storefront/internal/rowstore"
)

// Service handles the mirrored users table.
type Service struct {
	store rowstore.Store
}

// NewService creates a new user service
func NewService(store rowstore.Store) *Service {
	return &Service{store: store}
}

// Profile describes the identity fields mirrored into the row store.
type Profile struct {
	ID        uuid.UUID
	Email     string
	FullName  string
	AvatarURL string
	Phone     string
}

// EnsureMirrored upserts the identity's core fields into the users table.
// Idempotent: repeat calls refresh the mirrored fields in place, and two
// callers racing on the first write converge on the same row.
func (s *Service) EnsureMirrored(ctx context.Context, p Profile) error {
	if p.ID == uuid.Nil {
		return fmt.Errorf("mirror user: missing identity id")
	}

	row := &User{
		ID:        p.ID,
		Email:     p.Email,
		FullName:  p.FullName,
		AvatarURL: p.AvatarURL,
		Phone:     p.Phone,
	}
	if err := s.store.Upsert(ctx, row, []string{"id"}, []string{"email", "full_name", "avatar_url", "phone", "updated_at"}); err != nil {
		return fmt.Errorf("mirror user %s: %w", p.ID, err)
	}
	return nil
}

// Get retrieves a mirrored user row.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*User, error) {
	var u User
	if err := s.store.SelectOne(ctx, &u, rowstore.Filter{"id": id}); err != nil {
		return nil, err
	}
	return &u, nil
}
