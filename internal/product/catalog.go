package product

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/bytedance/sonic"

	"github.com/couchcryptid/parametric-risk-engine/internal/domain"
)

//go:embed catalog.json
var defaultCatalog []byte

// LoadDefaultCatalog parses the embedded product catalog.
func LoadDefaultCatalog() ([]domain.Product, error) {
	return parseCatalog(defaultCatalog)
}

// LoadCatalog parses a product catalog from a JSON file on disk. Operators
// point CATALOG_PATH at one to replace the embedded defaults.
func LoadCatalog(path string) ([]domain.Product, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return parseCatalog(data)
}

func parseCatalog(data []byte) ([]domain.Product, error) {
	var products []domain.Product
	if err := sonic.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	return products, nil
}

// PopulateRegistry registers a product list and returns how many were
// accepted. Invalid entries are skipped, not fatal: one bad product must
// not take down the catalog.
func PopulateRegistry(r *Registry, products []domain.Product) int {
	accepted := 0
	for _, p := range products {
		if r.Register(p) {
			accepted++
		}
	}
	return accepted
}
