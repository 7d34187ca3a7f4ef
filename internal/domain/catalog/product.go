package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a sellable item owned by exactly one store.
// Products are immutable once loaded into a Catalog.
type Product struct {
	ID                 string          `json:"id"`
	Name               string          `json:"name"`
	Price              decimal.Decimal `json:"price"`
	Description        string          `json:"description"`
	Image              *string         `json:"image,omitempty"`
	Category           string          `json:"category"`
	StoreID            string          `json:"store_id"`
	StoreName          string          `json:"store_name"`
	Available          bool            `json:"available"`
	PreparationMinutes int             `json:"preparation_minutes"`
}

// PreparationTime returns the preparation estimate as a duration
func (p Product) PreparationTime() time.Duration {
	return time.Duration(p.PreparationMinutes) * time.Minute
}
