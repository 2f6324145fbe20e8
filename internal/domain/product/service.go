package product

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/devanagari-foods/storefront/internal/rowstore"
)

// Descriptor identifies a purchasable pack the way the storefront pages
// do: by display name and pack weight, with enough detail to lazily
// create the catalog row on first add-to-cart.
type Descriptor struct {
	Name        string  `json:"name" binding:"required"`
	Weight      float64 `json:"weight" binding:"required"`
	Price       int64   `json:"price" binding:"required"`
	Description string  `json:"description"`
	ImageURL    string  `json:"image_url"`
}

const (
	defaultDescription = "A premium blend of 21 natural grains, millets, and pulses"
	defaultImageURL    = "/assets/shop/health-mix.png"
	defaultStock       = 100
)

// Service handles catalog reads and the legacy find-or-create path.
type Service struct {
	store  rowstore.Store
	logger *logrus.Logger
}

// NewService creates a new product service
func NewService(store rowstore.Store, logger *logrus.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// List returns all products, newest first.
func (s *Service) List(ctx context.Context) ([]Product, error) {
	var products []Product
	err := s.store.SelectAll(ctx, &products, rowstore.Filter{}, rowstore.WithOrder("created_at DESC"))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}
	return products, nil
}

// Get returns a single product by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Product, error) {
	var p Product
	if err := s.store.SelectOne(ctx, &p, rowstore.Filter{"id": id}); err != nil {
		return nil, err
	}
	return &p, nil
}

// FindOrCreate resolves the catalog row for a (name, weight) pair,
// creating it when absent. Two callers racing on the first create are
// reconciled through the unique index on (name, weight).
func (s *Service) FindOrCreate(ctx context.Context, desc Descriptor) (*Product, error) {
	existing, err := s.findByNameWeight(ctx, desc.Name, desc.Weight)
	if err == nil {
		return existing, nil
	}
	if !rowstore.IsNotFound(err) {
		return nil, fmt.Errorf("failed to check existing product: %w", err)
	}

	p := &Product{
		ID:          uuid.New(),
		Name:        desc.Name,
		Description: desc.Description,
		Price:       desc.Price,
		ImageURL:    desc.ImageURL,
		Stock:       defaultStock,
		Weight:      desc.Weight,
	}
	if p.Description == "" {
		p.Description = defaultDescription
	}
	if p.ImageURL == "" {
		p.ImageURL = defaultImageURL
	}

	if err := s.store.Insert(ctx, p); err != nil {
		if rowstore.IsUniqueViolation(err) {
			// Lost the race; the row exists now.
			return s.findByNameWeight(ctx, desc.Name, desc.Weight)
		}
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"product_id": p.ID,
		"name":       p.Name,
		"weight":     p.Weight,
	}).Info("Created catalog row for new product pack")

	return p, nil
}

func (s *Service) findByNameWeight(ctx context.Context, name string, weight float64) (*Product, error) {
	var p Product
	if err := s.store.SelectOne(ctx, &p, rowstore.Filter{"name": name, "weight": weight}); err != nil {
		return nil, err
	}
	return &p, nil
}
