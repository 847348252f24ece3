package service

import (
	"context"
	"log/slog"
	"strconv"
	"sync"

	"github.com/Wjwesley1/queen-store-frontend/internal/domain"
	apperrors "github.com/Wjwesley1/queen-store-frontend/pkg/errors"
)

// CatalogAPI lists products.
type CatalogAPI interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
}

// Catalog caches the product list so stock checks need no extra request.
type Catalog struct {
	api    CatalogAPI
	logger *slog.Logger

	mu       sync.RWMutex
	products []domain.Product
	byID     map[int]domain.Product
}

// NewCatalog creates an empty catalog. Call Refresh to load it.
func NewCatalog(api CatalogAPI, logger *slog.Logger) *Catalog {
	return &Catalog{api: api, logger: logger, byID: map[int]domain.Product{}}
}

// Refresh reloads the product list. On failure the previous list is kept.
func (c *Catalog) Refresh(ctx context.Context) error {
	products, err := c.api.ListProducts(ctx)
	if err != nil {
		c.logger.WarnContext(ctx, "failed to load products", slog.String("error", err.Error()))
		return apperrors.Wrap(err, "load products")
	}

	byID := make(map[int]domain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	c.mu.Lock()
	c.products = products
	c.byID = byID
	c.mu.Unlock()

	c.logger.DebugContext(ctx, "catalog refreshed", slog.Int("products", len(products)))
	return nil
}

// Products returns the products in category, in backend order.
func (c *Catalog) Products(category string) []domain.Product {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]domain.Product, 0, len(c.products))
	for _, p := range c.products {
		if p.InCategory(category) {
			out = append(out, p)
		}
	}
	return out
}

// Product looks a product up by id.
func (c *Catalog) Product(id int) (domain.Product, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.byID[id]
	return p, ok
}

// Lookup is Product, loading the catalog first when id is unknown.
func (c *Catalog) Lookup(ctx context.Context, id int) (domain.Product, error) {
	if p, ok := c.Product(id); ok {
		return p, nil
	}
	if err := c.Refresh(ctx); err != nil {
		return domain.Product{}, err
	}
	if p, ok := c.Product(id); ok {
		return p, nil
	}
	return domain.Product{}, apperrors.NotFound("product", strconv.Itoa(id))
}
