package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	pkgerrors "github.com/angelmondragon/autoparts-storefront/pkg/errors"
)

// CatalogPath is where a shopper recovers from a stale product link.
const CatalogPath = "/api/v1/products"

//go:embed seed.json
var seedCatalog []byte

// Catalog is the read-only, ordered product list the storefront browses.
type Catalog struct {
	products []Product
	byID     map[int]int
}

// New builds a catalog from products, preserving their order.
func New(products []Product) (*Catalog, error) {
	c := &Catalog{
		products: make([]Product, 0, len(products)),
		byID:     make(map[int]int, len(products)),
	}
	for _, p := range products {
		if err := p.validate(); err != nil {
			return nil, err
		}
		if _, dup := c.byID[p.ID]; dup {
			return nil, fmt.Errorf("duplicate product id %d", p.ID)
		}
		c.byID[p.ID] = len(c.products)
		c.products = append(c.products, p.clone())
	}
	return c, nil
}

// Default returns the catalog bundled with the binary.
func Default() (*Catalog, error) {
	return Parse(seedCatalog)
}

// Load reads a JSON catalog from path, falling back to the bundled seed when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %q: %w", path, err)
	}
	return Parse(raw)
}

// Parse decodes a JSON array of products.
func Parse(raw []byte) (*Catalog, error) {
	var products []Product
	if err := json.Unmarshal(raw, &products); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return New(products)
}

// All returns every product in catalog order.
func (c *Catalog) All() []Product {
	return cloneAll(c.products)
}

// Len reports the number of products.
func (c *Catalog) Len() int {
	return len(c.products)
}

// Get looks up a product by id.
func (c *Catalog) Get(id int) (Product, error) {
	idx, ok := c.byID[id]
	if !ok {
		return Product{}, pkgerrors.New(pkgerrors.CodeNotFound, "product not found").WithDetails(map[string]any{
			"product_id":  id,
			"catalog_url": CatalogPath,
		})
	}
	return c.products[idx].clone(), nil
}

// Featured returns the first n products.
func (c *Catalog) Featured(n int) []Product {
	if n <= 0 || n > len(c.products) {
		n = len(c.products)
	}
	return cloneAll(c.products[:n])
}

// Related returns up to n other products in the same category, in catalog order.
func (c *Catalog) Related(p Product, n int) []Product {
	out := []Product{}
	if n <= 0 {
		return out
	}
	for _, candidate := range c.products {
		if candidate.ID == p.ID || candidate.Category != p.Category {
			continue
		}
		out = append(out, candidate.clone())
		if len(out) == n {
			break
		}
	}
	return out
}

// Brands returns distinct brands in first-seen order.
func (c *Catalog) Brands() []string {
	return distinct(c.products, func(p Product) string { return p.Brand })
}

// Categories returns distinct categories in first-seen order.
func (c *Catalog) Categories() []string {
	return distinct(c.products, func(p Product) string { return p.Category })
}

// Filter applies state to the whole catalog.
func (c *Catalog) Filter(state FilterState) []Product {
	return Filter(c.products, state)
}

func distinct(products []Product, key func(Product) string) []string {
	seen := map[string]struct{}{}
	out := []string{}
	for _, p := range products {
		k := key(p)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

func cloneAll(products []Product) []Product {
	out := make([]Product, len(products))
	for i, p := range products {
		out[i] = p.clone()
	}
	return out
}
