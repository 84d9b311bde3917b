// Package product holds the parametric product registry and the embedded
// default catalog.
package product

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/couchcryptid/parametric-risk-engine/internal/domain"
	"github.com/couchcryptid/parametric-risk-engine/internal/observability"
)

// Registry is a concurrency-safe in-memory product store. Invalid
// definitions are rejected at registration so evaluation never sees one.
type Registry struct {
	mu       sync.RWMutex
	products map[string]domain.Product
	validate *validator.Validate
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *slog.Logger, metrics *observability.Metrics) *Registry {
	return &Registry{
		products: make(map[string]domain.Product),
		validate: validator.New(),
		logger:   logger,
		metrics:  metrics,
	}
}

// Register validates and stores a product, reporting whether it was
// accepted. Re-registering an ID overwrites the previous definition
// (last write wins); both rejections and overwrites are logged.
func (r *Registry) Register(p domain.Product) bool {
	if err := r.validate.Struct(p); err != nil {
		r.logger.Warn("rejected invalid product", "product_id", p.ID, "error", err)
		r.metrics.InvalidProducts.Inc()
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.products[p.ID]; exists {
		r.logger.Warn("overwriting registered product", "product_id", p.ID)
	}
	r.products[p.ID] = p
	return true
}

// Get returns the product with the given ID.
func (r *Registry) Get(id string) (domain.Product, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.products[id]
	return p, ok
}

// Has reports whether a product is registered.
func (r *Registry) Has(id string) bool {
	_, ok := r.Get(id)
	return ok
}

// ByWeatherType returns the products watching a weather type, sorted by ID.
func (r *Registry) ByWeatherType(weatherType domain.WeatherType) []domain.Product {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domain.Product
	for _, p := range r.products {
		if p.WeatherType == weatherType {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// All returns every registered product, sorted by ID.
func (r *Registry) All() []domain.Product {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Product, 0, len(r.products))
	for _, p := range r.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len reports the number of registered products.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.products)
}
