package service

import (
	"errors"
	"fmt"

	"github.com/sangkips/shop-billing-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// ErrUnknownProduct is returned when a product name is not in the catalog.
var ErrUnknownProduct = errors.New("unknown product")

// Catalog resolves product names to their price and GST rate.
type Catalog interface {
	Lookup(name string) (entity.Product, error)
}

// CatalogService is the fixed, read-only price list of the shop.
type CatalogService struct {
	products []entity.Product
	byName   map[string]entity.Product
}

// NewCatalogService builds a catalog from products, keeping their order.
// Later duplicates of a name are ignored.
func NewCatalogService(products []entity.Product) *CatalogService {
	s := &CatalogService{
		products: make([]entity.Product, 0, len(products)),
		byName:   make(map[string]entity.Product, len(products)),
	}
	for _, p := range products {
		if _, exists := s.byName[p.Name]; exists {
			continue
		}
		s.products = append(s.products, p)
		s.byName[p.Name] = p
	}
	return s
}

// Lookup returns the product with the given name.
func (s *CatalogService) Lookup(name string) (entity.Product, error) {
	p, ok := s.byName[name]
	if !ok {
		return entity.Product{}, fmt.Errorf("%w: %q", ErrUnknownProduct, name)
	}
	return p, nil
}

// List returns a copy of the catalog in display order.
func (s *CatalogService) List() []entity.Product {
	out := make([]entity.Product, len(s.products))
	copy(out, s.products)
	return out
}

// DefaultCatalog is the shop's price list: 24 products, all at 18% GST except
// safety matches at 5%.
func DefaultCatalog() []entity.Product {
	gst18 := decimal.NewFromInt(18)
	gst5 := decimal.NewFromInt(5)

	item := func(name string, price int64, rate decimal.Decimal) entity.Product {
		return entity.Product{Name: name, Price: decimal.NewFromInt(price), GSTRate: rate}
	}

	return []entity.Product{
		item(`Kuruvi Crackers (2-3/4")`, 5, gst18),
		item("Electric Sparklers (10cm)", 25, gst18),
		item("Electric Sparklers (15cm)", 40, gst18),
		item("Electric Sparklers (30cm)", 80, gst18),
		item("Color Sparklers", 60, gst18),
		item("Ground Chakkar Small", 15, gst18),
		item("Ground Chakkar Big", 35, gst18),
		item("Flower Pot Small", 20, gst18),
		item("Flower Pot Big", 45, gst18),
		item("Color Flower Pot", 65, gst18),
		item("Fountain Small", 80, gst18),
		item("Fountain Big", 150, gst18),
		item("Baby Rocket", 8, gst18),
		item("Rocket Small", 15, gst18),
		item("Rocket Big", 25, gst18),
		item("Whistling Rocket", 35, gst18),
		item("Lakshmi Bomb", 5, gst18),
		item("Atom Bomb", 12, gst18),
		item("Hydrogen Bomb", 25, gst18),
		item("Garland 100", 80, gst18),
		item("Garland 1000", 600, gst18),
		item("Family Pack", 500, gst18),
		item("Deluxe Gift Box", 800, gst18),
		item("Safety Matches", 5, gst5),
	}
}
