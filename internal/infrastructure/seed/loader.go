// Package seed loads the store catalog from YAML fixtures.
package seed

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/Nassimghoulane/Dionos-1/internal/domain/catalog"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// ErrSeedNotFound is returned when the seed file does not exist
var ErrSeedNotFound = errors.New("seed: catalog file not found")

type document struct {
	Stores []storeDoc `yaml:"stores"`
}

type storeDoc struct {
	ID                        string                       `yaml:"id"`
	Name                      string                       `yaml:"name"`
	MappedInLocationID        string                       `yaml:"mapped_in_location_id"`
	Category                  string                       `yaml:"category"`
	Rating                    string                       `yaml:"rating"`
	Phone                     *string                      `yaml:"phone"`
	Description               *string                      `yaml:"description"`
	AcceptsClickCollect       bool                         `yaml:"accepts_click_collect"`
	AveragePreparationMinutes int                          `yaml:"average_preparation_minutes"`
	OpeningHours              map[string]*catalog.DayHours `yaml:"opening_hours"`
	Products                  []productDoc                 `yaml:"products"`
}

type productDoc struct {
	ID                 string  `yaml:"id"`
	Name               string  `yaml:"name"`
	Price              string  `yaml:"price"`
	Description        string  `yaml:"description"`
	Image              *string `yaml:"image"`
	Category           string  `yaml:"category"`
	Available          *bool   `yaml:"available"` // defaults to true
	PreparationMinutes int     `yaml:"preparation_minutes"`
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// Default returns the embedded venue catalog
func Default() (*catalog.Catalog, error) {
	return Parse(defaultCatalog)
}

// LoadFile reads a catalog from path; an empty path means the embedded one
func LoadFile(path string) (*catalog.Catalog, error) {
	if path == "" {
		return Default()
	}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSeedNotFound, path)
		}
		return nil, fmt.Errorf("seed: open %s: %w", path, err)
	}
	defer f.Close()
	return Load(f)
}

// Load decodes a YAML catalog from r
func Load(r io.Reader) (*catalog.Catalog, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("seed: read: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML catalog. Unknown keys are rejected so
// that a typo in a fixture fails loudly.
func Parse(data []byte) (*catalog.Catalog, error) {
	var doc document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("seed: decode: %w", err)
	}

	stores := make([]catalog.Store, 0, len(doc.Stores))
	for _, sd := range doc.Stores {
		s, err := sd.toStore()
		if err != nil {
			return nil, fmt.Errorf("seed: %w", err)
		}
		stores = append(stores, s)
	}

	c, err := catalog.NewCatalog(stores)
	if err != nil {
		return nil, fmt.Errorf("seed: %w", err)
	}
	return c, nil
}

func (sd storeDoc) toStore() (catalog.Store, error) {
	rating := decimal.Zero
	if sd.Rating != "" {
		r, err := decimal.NewFromString(sd.Rating)
		if err != nil {
			return catalog.Store{}, fmt.Errorf("store %s: invalid rating %q", sd.ID, sd.Rating)
		}
		rating = r
	}

	hours := make(catalog.OpeningHours, len(sd.OpeningHours))
	for name, window := range sd.OpeningHours {
		day, ok := weekdays[strings.ToLower(name)]
		if !ok {
			return catalog.Store{}, fmt.Errorf("store %s: unknown weekday %q", sd.ID, name)
		}
		hours[day] = window
	}

	products := make([]catalog.Product, 0, len(sd.Products))
	for _, pd := range sd.Products {
		price, err := decimal.NewFromString(pd.Price)
		if err != nil {
			return catalog.Store{}, fmt.Errorf("product %s: invalid price %q", pd.ID, pd.Price)
		}
		available := true
		if pd.Available != nil {
			available = *pd.Available
		}
		products = append(products, catalog.Product{
			ID:                 pd.ID,
			Name:               pd.Name,
			Price:              price,
			Description:        pd.Description,
			Image:              pd.Image,
			Category:           pd.Category,
			StoreID:            sd.ID,
			StoreName:          sd.Name,
			Available:          available,
			PreparationMinutes: pd.PreparationMinutes,
		})
	}

	return catalog.Store{
		ID:                        sd.ID,
		Name:                      sd.Name,
		MappedInLocationID:        sd.MappedInLocationID,
		Category:                  catalog.StoreCategory(sd.Category),
		Rating:                    rating,
		OpeningHours:              hours,
		Phone:                     sd.Phone,
		Description:               sd.Description,
		Products:                  products,
		AcceptsClickCollect:       sd.AcceptsClickCollect,
		AveragePreparationMinutes: sd.AveragePreparationMinutes,
	}, nil
}

// WeekdayName returns the lowercase English name used in fixtures
func WeekdayName(d time.Weekday) string {
	return strings.ToLower(d.String())
}
