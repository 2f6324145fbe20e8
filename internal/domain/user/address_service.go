package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/devanagari-foods/storefront/internal/rowstore"
)

// ErrAddressNotFound reports that the address does not exist or is not
// owned by the caller. Ownership failures are indistinguishable from
// missing rows on purpose.
var ErrAddressNotFound = errors.New("address not found")

// AddressService handles address business logic
type AddressService struct {
	store rowstore.Store
}

// NewAddressService creates a new address service
func NewAddressService(store rowstore.Store) *AddressService {
	return &AddressService{store: store}
}

// CreateAddressRequest represents address creation data
type CreateAddressRequest struct {
	Name         string `json:"name" binding:"required"`
	Phone        string `json:"phone"`
	AddressLine1 string `json:"address_line_1" binding:"required"`
	AddressLine2 string `json:"address_line_2"`
	City         string `json:"city" binding:"required"`
	State        string `json:"state"`
	PostalCode   string `json:"postal_code" binding:"required"`
	Country      string `json:"country"`
	IsDefault    bool   `json:"is_default"`
}

// UpdateAddressRequest represents address update data
type UpdateAddressRequest struct {
	Name         *string `json:"name"`
	Phone        *string `json:"phone"`
	AddressLine1 *string `json:"address_line_1"`
	AddressLine2 *string `json:"address_line_2"`
	City         *string `json:"city"`
	State        *string `json:"state"`
	PostalCode   *string `json:"postal_code"`
	Country      *string `json:"country"`
	IsDefault    *bool   `json:"is_default"`
}

// List retrieves all addresses for a user, default first.
func (s *AddressService) List(ctx context.Context, userID uuid.UUID) ([]Address, error) {
	var addresses []Address
	err := s.store.SelectAll(ctx, &addresses, rowstore.Filter{"user_id": userID},
		rowstore.WithOrder("is_default DESC, created_at DESC"))
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve addresses: %w", err)
	}
	return addresses, nil
}

// Get retrieves a specific address owned by the user.
func (s *AddressService) Get(ctx context.Context, userID, addressID uuid.UUID) (*Address, error) {
	var address Address
	err := s.store.SelectOne(ctx, &address, rowstore.Filter{"id": addressID, "user_id": userID})
	if err != nil {
		if rowstore.IsNotFound(err) {
			return nil, ErrAddressNotFound
		}
		return nil, fmt.Errorf("failed to retrieve address: %w", err)
	}
	return &address, nil
}

// GetDefault retrieves the user's default address, or ErrAddressNotFound
// when none is flagged.
func (s *AddressService) GetDefault(ctx context.Context, userID uuid.UUID) (*Address, error) {
	var address Address
	err := s.store.SelectOne(ctx, &address, rowstore.Filter{"user_id": userID, "is_default": true})
	if err != nil {
		if rowstore.IsNotFound(err) {
			return nil, ErrAddressNotFound
		}
		return nil, fmt.Errorf("failed to retrieve default address: %w", err)
	}
	return &address, nil
}

// Create creates a new address. The first address a user saves becomes
// the default. The at-most-one-default invariant is maintained inside a
// single transaction: clear every default, then set the new one.
func (s *AddressService) Create(ctx context.Context, userID uuid.UUID, req *CreateAddressRequest) (*Address, error) {
	address := &Address{
		ID:           uuid.New(),
		UserID:       userID,
		Name:         req.Name,
		Phone:        req.Phone,
		AddressLine1: req.AddressLine1,
		AddressLine2: req.AddressLine2,
		City:         req.City,
		State:        req.State,
		PostalCode:   req.PostalCode,
		Country:      req.Country,
		IsDefault:    req.IsDefault,
	}
	if address.Country == "" {
		address.Country = "India"
	}

	err := s.store.Transaction(ctx, func(tx rowstore.Store) error {
		var existing []Address
		if err := tx.SelectAll(ctx, &existing, rowstore.Filter{"user_id": userID}, rowstore.WithLimit(1)); err != nil {
			return err
		}
		if len(existing) == 0 {
			address.IsDefault = true
		}

		if address.IsDefault {
			if err := s.clearDefault(ctx, tx, userID); err != nil {
				return err
			}
		}
		return tx.Insert(ctx, address)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create address: %w", err)
	}

	return address, nil
}

// Update modifies an address owned by the user.
func (s *AddressService) Update(ctx context.Context, userID, addressID uuid.UUID, req *UpdateAddressRequest) (*Address, error) {
	changes := map[string]any{}
	if req.Name != nil {
		changes["name"] = *req.Name
	}
	if req.Phone != nil {
		changes["phone"] = *req.Phone
	}
	if req.AddressLine1 != nil {
		changes["address_line_1"] = *req.AddressLine1
	}
	if req.AddressLine2 != nil {
		changes["address_line_2"] = *req.AddressLine2
	}
	if req.City != nil {
		changes["city"] = *req.City
	}
	if req.State != nil {
		changes["state"] = *req.State
	}
	if req.PostalCode != nil {
		changes["postal_code"] = *req.PostalCode
	}
	if req.Country != nil {
		changes["country"] = *req.Country
	}
	if req.IsDefault != nil {
		changes["is_default"] = *req.IsDefault
	}

	err := s.store.Transaction(ctx, func(tx rowstore.Store) error {
		if req.IsDefault != nil && *req.IsDefault {
			if err := s.clearDefault(ctx, tx, userID); err != nil {
				return err
			}
		}

		rows, err := tx.Update(ctx, &Address{}, rowstore.Filter{"id": addressID, "user_id": userID}, changes)
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrAddressNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrAddressNotFound) {
			return nil, ErrAddressNotFound
		}
		return nil, fmt.Errorf("failed to update address: %w", err)
	}

	return s.Get(ctx, userID, addressID)
}

// Delete removes an address owned by the user. Deleting a missing
// address is not an error.
func (s *AddressService) Delete(ctx context.Context, userID, addressID uuid.UUID) error {
	_, err := s.store.Delete(ctx, &Address{}, rowstore.Filter{"id": addressID, "user_id": userID})
	if err != nil {
		return fmt.Errorf("failed to delete address: %w", err)
	}
	return nil
}

func (s *AddressService) clearDefault(ctx context.Context, tx rowstore.Store, userID uuid.UUID) error {
	_, err := tx.Update(ctx, &Address{}, rowstore.Filter{"user_id": userID, "is_default": true},
		map[string]any{"is_default": false})
	return err
}
