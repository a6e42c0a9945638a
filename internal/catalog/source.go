package catalog

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/apper-canvas/stylehub-crypto-chip/internal/domain"
)

// Source supplies the full product list. Implementations may block on I/O.
type Source interface {
	Products(ctx context.Context) ([]domain.Product, error)
}

// Decode parses a catalog document. Both a bare JSON array and an object
// with a "products" array are accepted.
func Decode(data []byte) ([]domain.Product, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("decode catalog: empty document")
	}

	if trimmed[0] == '[' {
		var products []domain.Product
		if err := json.Unmarshal(trimmed, &products); err != nil {
			return nil, fmt.Errorf("decode catalog: %w", err)
		}
		return products, nil
	}

	var doc struct {
		Products []domain.Product `json:"products"`
	}
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if doc.Products == nil {
		return nil, fmt.Errorf("decode catalog: missing products array")
	}
	return doc.Products, nil
}

//go:embed data/products.json
var embeddedCatalog []byte

// EmbeddedSource serves the catalog compiled into the binary.
type EmbeddedSource struct{}

// NewEmbeddedSource returns the built-in catalog source.
func NewEmbeddedSource() EmbeddedSource {
	return EmbeddedSource{}
}

// Products decodes the embedded catalog.
func (EmbeddedSource) Products(_ context.Context) ([]domain.Product, error) {
	return Decode(embeddedCatalog)
}

// StaticSource serves a fixed product list. Useful for tests and tools.
type StaticSource []domain.Product

// Products returns the list as is.
func (s StaticSource) Products(_ context.Context) ([]domain.Product, error) {
	return s, nil
}
