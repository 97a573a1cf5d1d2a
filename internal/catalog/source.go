package catalog

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/vxsahu/urban-threadz/internal/domain"
	"github.com/vxsahu/urban-threadz/pkg/httpclient"
)

//go:embed data/products.json
var embeddedProducts []byte

// Source yields the raw JSON product array.
type Source interface {
	Name() string
	Read(ctx context.Context) ([]byte, error)
}

// Embedded serves the catalog compiled into the binary.
type Embedded struct{}

func (Embedded) Name() string { return "embedded" }

func (Embedded) Read(context.Context) ([]byte, error) {
	return embeddedProducts, nil
}

// File reads the catalog from a path on disk.
type File struct {
	Path string
}

func (f File) Name() string { return "file:" + f.Path }

func (f File) Read(context.Context) ([]byte, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}
	return data, nil
}

// Remote downloads the catalog over HTTP.
type Remote struct {
	URL     string
	Fetcher *httpclient.Fetcher
}

func (r Remote) Name() string { return "url:" + r.URL }

func (r Remote) Read(ctx context.Context) ([]byte, error) {
	data, err := r.Fetcher.Fetch(ctx, r.URL)
	if err != nil {
		return nil, httpclient.AsAppError(err, "catalog")
	}
	return data, nil
}

// Load reads src once and builds a Catalog from it.
func Load(ctx context.Context, src Source) (*Catalog, error) {
	data, err := src.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog from %s: %w", src.Name(), err)
	}

	products, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("load catalog from %s: %w", src.Name(), err)
	}

	c, err := New(products)
	if err != nil {
		return nil, fmt.Errorf("load catalog from %s: %w", src.Name(), err)
	}
	return c, nil
}

// Decode parses a JSON array of products. Unknown fields are ignored.
func Decode(data []byte) ([]domain.Product, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("decode products: empty document")
	}

	var products []domain.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	return products, nil
}
