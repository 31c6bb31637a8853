// Package catalog looks product display data up in the catalog service and caches it.
package catalog

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/ports"
	"marketplace/internal/pkg/errs"

	"github.com/go-faster/errors"
	"github.com/goccy/go-json"
	gocache "github.com/patrickmn/go-cache"
)

// HTTPClient fetches products from GET {baseURL}/products/{id}.
type HTTPClient struct {
	baseURL *url.URL
	client  *http.Client
}

func NewHTTPClient(baseURL string, client *http.Client) (*HTTPClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, errors.Wrap(err, "parse catalog url")
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, errs.NewValueIsInvalidErrorWithCause("catalog url", fmt.Errorf("%q is not absolute", baseURL))
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPClient{baseURL: u, client: client}, nil
}

type productPayload struct {
	Name     string `json:"name"`
	Category string `json:"category"`
}

func (c *HTTPClient) Product(ctx context.Context, productID kernel.UUID) (ports.Product, error) {
	endpoint := c.baseURL.JoinPath("products", productID.String())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), http.NoBody)
	if err != nil {
		return ports.Product{}, errors.Wrap(err, "build request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return ports.Product{}, errors.Wrap(err, "get product")
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ports.Product{}, errs.NewObjectNotFoundError("product", productID.String())
	case resp.StatusCode != http.StatusOK:
		return ports.Product{}, errors.Errorf("catalog returned %s", resp.Status)
	}

	var payload productPayload
	if err = json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return ports.Product{}, errors.Wrap(err, "decode product")
	}

	return ports.Product{ID: productID, Name: payload.Name, Category: payload.Category}, nil
}

// CachedLookup keeps catalog answers in memory for ttl. Misses are not cached.
type CachedLookup struct {
	source ports.Catalog
	store  *gocache.Cache
}

func NewCachedLookup(source ports.Catalog, ttl time.Duration) *CachedLookup {
	return &CachedLookup{
		source: source,
		store:  gocache.New(ttl, 2*ttl),
	}
}

func (c *CachedLookup) Product(ctx context.Context, productID kernel.UUID) (ports.Product, error) {
	key := productID.String()
	if v, ok := c.store.Get(key); ok {
		if product, isProduct := v.(ports.Product); isProduct {
			return product, nil
		}
	}

	product, err := c.source.Product(ctx, productID)
	if err != nil {
		return ports.Product{}, err
	}

	c.store.SetDefault(key, product)
	return product, nil
}

// Flush drops every cached product.
func (c *CachedLookup) Flush() {
	c.store.Flush()
}
