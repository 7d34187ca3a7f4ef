package catalog

import (
	"fmt"
	"maps"
	"slices"
)

// Catalog is the read-only set of stores and their products.
// It is replaced wholesale, never edited in place.
type Catalog struct {
	stores   []Store
	byID     map[string]int
	products map[string]Product
}

// NewCatalog validates the stores and builds the lookup indexes.
// Store ids and product ids must be unique across the whole catalog.
func NewCatalog(stores []Store) (*Catalog, error) {
	c := &Catalog{
		stores:   make([]Store, 0, len(stores)),
		byID:     make(map[string]int, len(stores)),
		products: make(map[string]Product),
	}
	for _, s := range stores {
		if err := s.validate(); err != nil {
			return nil, err
		}
		if _, dup := c.byID[s.ID]; dup {
			return nil, fmt.Errorf("duplicate store id %q", s.ID)
		}
		products := make([]Product, len(s.Products))
		for i, p := range s.Products {
			if err := validateProduct(s, p); err != nil {
				return nil, err
			}
			if _, dup := c.products[p.ID]; dup {
				return nil, fmt.Errorf("duplicate product id %q", p.ID)
			}
			p = p.clone()
			c.products[p.ID] = p
			products[i] = p
		}
		s = s.clone()
		s.Products = products
		c.byID[s.ID] = len(c.stores)
		c.stores = append(c.stores, s)
	}
	return c, nil
}

// Empty returns a catalog without stores
func Empty() *Catalog {
	c, _ := NewCatalog(nil)
	return c
}

// Stores returns the stores in load order
func (c *Catalog) Stores() []Store {
	if c == nil {
		return nil
	}
	result := make([]Store, len(c.stores))
	for i, s := range c.stores {
		result[i] = s.clone()
	}
	return result
}

// Len returns the number of stores
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.stores)
}

// StoreByID looks up a store. A miss is reported through the boolean and
// is not an error: orders may reference stores that have since been removed.
func (c *Catalog) StoreByID(id string) (Store, bool) {
	if c == nil {
		return Store{}, false
	}
	i, ok := c.byID[id]
	if !ok {
		return Store{}, false
	}
	return c.stores[i].clone(), true
}

// ProductByID looks up a product across all stores
func (c *Catalog) ProductByID(id string) (Product, bool) {
	if c == nil {
		return Product{}, false
	}
	p, ok := c.products[id]
	return p.clone(), ok
}

func validateProduct(s Store, p Product) error {
	if p.ID == "" {
		return fmt.Errorf("store %s: product id cannot be empty", s.ID)
	}
	if p.Name == "" {
		return fmt.Errorf("product %s: name cannot be empty", p.ID)
	}
	if p.Price.IsNegative() {
		return fmt.Errorf("product %s: price cannot be negative", p.ID)
	}
	if p.PreparationMinutes < 0 {
		return fmt.Errorf("product %s: preparation time cannot be negative", p.ID)
	}
	if p.StoreID != s.ID {
		return fmt.Errorf("product %s: belongs to store %q but is listed under %q", p.ID, p.StoreID, s.ID)
	}
	return nil
}

// clone copies everything a caller could write through, so stores handed
// out never alias the catalog
func (s Store) clone() Store {
	s.Phone = cloneString(s.Phone)
	s.Description = cloneString(s.Description)
	if s.OpeningHours != nil {
		hours := maps.Clone(s.OpeningHours)
		for day, window := range hours {
			if window != nil {
				w := *window
				hours[day] = &w
			}
		}
		s.OpeningHours = hours
	}
	s.Products = slices.Clone(s.Products)
	for i := range s.Products {
		s.Products[i] = s.Products[i].clone()
	}
	return s
}

func (p Product) clone() Product {
	p.Image = cloneString(p.Image)
	return p
}

func cloneString(v *string) *string {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
