package catalog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/apper-canvas/stylehub-crypto-chip/internal/domain"
	"github.com/apper-canvas/stylehub-crypto-chip/pkg/httpclient"
)

// maxCatalogBytes bounds the size of a remote catalog document.
const maxCatalogBytes = 16 << 20

// HTTPSource fetches the catalog document from a URL through a retrying,
// circuit-broken client.
type HTTPSource struct {
	url    string
	client *httpclient.BreakerClient
}

// NewHTTPSource builds a source for url with default client settings.
func NewHTTPSource(url string, logger *slog.Logger) *HTTPSource {
	client := httpclient.NewBreakerClient(
		httpclient.New(httpclient.DefaultConfig()),
		httpclient.DefaultBreakerConfig("catalog"),
		logger,
	)
	return NewHTTPSourceWithClient(url, client)
}

// NewHTTPSourceWithClient builds a source using an existing client.
func NewHTTPSourceWithClient(url string, client *httpclient.BreakerClient) *HTTPSource {
	return &HTTPSource{url: url, client: client}
}

// Products downloads and decodes the catalog.
func (s *HTTPSource) Products(ctx context.Context) ([]domain.Product, error) {
	resp, err := s.client.Get(ctx, s.url)
	if err != nil {
		return nil, fmt.Errorf("fetch catalog: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch catalog: unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxCatalogBytes))
	if err != nil {
		return nil, fmt.Errorf("read catalog body: %w", err)
	}
	return Decode(data)
}
