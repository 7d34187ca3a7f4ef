package catalog

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// StoreCategory classifies a store
type StoreCategory string

const (
	StoreCategoryRestaurant  StoreCategory = "restaurant"
	StoreCategoryGrocery     StoreCategory = "grocery"
	StoreCategoryPharmacy    StoreCategory = "pharmacy"
	StoreCategoryElectronics StoreCategory = "electronics"
	StoreCategoryClothing    StoreCategory = "clothing"
	StoreCategoryOther       StoreCategory = "other"
)

// IsValid checks if the category is a known value
func (c StoreCategory) IsValid() bool {
	switch c {
	case StoreCategoryRestaurant, StoreCategoryGrocery, StoreCategoryPharmacy,
		StoreCategoryElectronics, StoreCategoryClothing, StoreCategoryOther:
		return true
	}
	return false
}

// String returns the string representation
func (c StoreCategory) String() string {
	return string(c)
}

// Store groups the products of one venue shop
type Store struct {
	ID                        string          `json:"id"`
	Name                      string          `json:"name"`
	MappedInLocationID        string          `json:"mapped_in_location_id"`
	Category                  StoreCategory   `json:"category"`
	Rating                    decimal.Decimal `json:"rating"`
	OpeningHours              OpeningHours    `json:"opening_hours"`
	Phone                     *string         `json:"phone,omitempty"`
	Description               *string         `json:"description,omitempty"`
	Products                  []Product       `json:"products"`
	AcceptsClickCollect       bool            `json:"accepts_click_collect"`
	AveragePreparationMinutes int             `json:"average_preparation_minutes"`
}

// IsOpenAt reports whether the store's opening hours cover t.
// A weekday without hours is a closed day.
func (s Store) IsOpenAt(t time.Time) bool {
	return s.OpeningHours.IsOpenAt(t)
}

// ProductByID returns the store's product with the given id
func (s Store) ProductByID(id string) (Product, bool) {
	for _, p := range s.Products {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}

// AvailableProducts returns the products that can currently be ordered
func (s Store) AvailableProducts() []Product {
	result := make([]Product, 0, len(s.Products))
	for _, p := range s.Products {
		if p.Available {
			result = append(result, p)
		}
	}
	return result
}

func (s Store) validate() error {
	if s.ID == "" {
		return fmt.Errorf("store id cannot be empty")
	}
	if s.Name == "" {
		return fmt.Errorf("store %s: name cannot be empty", s.ID)
	}
	if !s.Category.IsValid() {
		return fmt.Errorf("store %s: invalid category %q", s.ID, s.Category)
	}
	if s.AveragePreparationMinutes < 0 {
		return fmt.Errorf("store %s: average preparation time cannot be negative", s.ID)
	}
	if err := s.OpeningHours.validate(); err != nil {
		return fmt.Errorf("store %s: %w", s.ID, err)
	}
	return nil
}
