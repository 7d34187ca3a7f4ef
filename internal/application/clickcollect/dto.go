package clickcollect

import (
	"strings"
	"time"

	"github.com/Nassimghoulane/Dionos-1/internal/domain/catalog"
	"github.com/Nassimghoulane/Dionos-1/internal/domain/shared/valueobject"
	"github.com/Nassimghoulane/Dionos-1/internal/domain/shopping"
	"github.com/google/uuid"
)

// ==================== Requests ====================

// AddToCartRequest adds one unit of a product
type AddToCartRequest struct {
	ProductID string `json:"product_id" binding:"required,max=100"`
}

// UpdateCartQuantityRequest sets an absolute quantity; 0 or less removes
type UpdateCartQuantityRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// SelectStoreRequest focuses a store; a null store_id clears the selection
type SelectStoreRequest struct {
	StoreID *string `json:"store_id" binding:"omitempty,max=100"`
}

// ToggleRequest opens or closes a panel
type ToggleRequest struct {
	Open *bool `json:"open" binding:"required"`
}

// CustomerRequest is the contact block of the checkout form
type CustomerRequest struct {
	Name  string  `json:"name" binding:"required,max=100"`
	Phone string  `json:"phone" binding:"required,pickup_phone"`
	Email *string `json:"email" binding:"omitempty,max=200"`
}

// PlaceOrderRequest is the checkout form
type PlaceOrderRequest struct {
	StoreID             *string         `json:"store_id" binding:"omitempty,max=100"`
	Customer            CustomerRequest `json:"customer"`
	SpecialInstructions *string         `json:"special_instructions" binding:"omitempty,max=500"`
}

// UpdateOrderStatusRequest moves an order to a new status
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending confirmed preparing ready collected cancelled"`
}

// CollectOrderRequest carries the code shown at the counter
type CollectOrderRequest struct {
	PickupCode string `json:"pickup_code" binding:"required,len=6,alphanum"`
}

// ToCheckoutInput trims the free-text fields; blank optional fields
// become absent
func (r PlaceOrderRequest) ToCheckoutInput() CheckoutInput {
	return CheckoutInput{
		StoreID: trimmedOrNil(r.StoreID),
		Customer: shopping.CustomerInfo{
			Name:  strings.TrimSpace(r.Customer.Name),
			Phone: strings.TrimSpace(r.Customer.Phone),
			Email: trimmedOrNil(r.Customer.Email),
		},
		SpecialInstructions: trimmedOrNil(r.SpecialInstructions),
	}
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

// ==================== Responses ====================

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID                 string            `json:"id"`
	Name               string            `json:"name"`
	Price              valueobject.Money `json:"price"`
	Description        string            `json:"description"`
	Image              *string           `json:"image,omitempty"`
	Category           string            `json:"category"`
	StoreID            string            `json:"store_id"`
	StoreName          string            `json:"store_name"`
	Available          bool              `json:"available"`
	PreparationMinutes int               `json:"preparation_minutes"`
}

// StoreResponse represents a store in API responses
type StoreResponse struct {
	ID                        string                       `json:"id"`
	Name                      string                       `json:"name"`
	MappedInLocationID        string                       `json:"mapped_in_location_id"`
	Category                  string                       `json:"category"`
	Rating                    string                       `json:"rating"`
	OpeningHours              map[string]*catalog.DayHours `json:"opening_hours"`
	OpenNow                   bool                         `json:"open_now"`
	Phone                     *string                      `json:"phone,omitempty"`
	Description               *string                      `json:"description,omitempty"`
	Products                  []ProductResponse            `json:"products"`
	AcceptsClickCollect       bool                         `json:"accepts_click_collect"`
	AveragePreparationMinutes int                          `json:"average_preparation_minutes"`
}

// CartItemResponse represents a cart line item
type CartItemResponse struct {
	Product         ProductResponse   `json:"product"`
	Quantity        int               `json:"quantity"`
	Subtotal        valueobject.Money `json:"subtotal"`
	SelectedOptions map[string]string `json:"selected_options,omitempty"`
}

// CartResponse represents the cart with its derived totals
type CartResponse struct {
	Items     []CartItemResponse `json:"items"`
	ItemCount int                `json:"item_count"`
	Total     valueobject.Money  `json:"total"`
	StoreID   *string            `json:"store_id,omitempty"`
}

// CustomerResponse represents the customer snapshot of an order
type CustomerResponse struct {
	Name  string  `json:"name"`
	Phone string  `json:"phone"`
	Email *string `json:"email,omitempty"`
}

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID                  uuid.UUID          `json:"id"`
	StoreID             string             `json:"store_id"`
	StoreName           string             `json:"store_name"`
	Items               []CartItemResponse `json:"items"`
	ItemCount           int                `json:"item_count"`
	TotalAmount         valueobject.Money  `json:"total_amount"`
	Status              string             `json:"status"`
	IsActive            bool               `json:"is_active"`
	CanCancel           bool               `json:"can_cancel"`
	CreatedAt           time.Time          `json:"created_at"`
	EstimatedReadyAt    time.Time          `json:"estimated_ready_at"`
	UpdatedAt           time.Time          `json:"updated_at"`
	Customer            CustomerResponse   `json:"customer"`
	PickupCode          string             `json:"pickup_code"`
	SpecialInstructions *string            `json:"special_instructions,omitempty"`
}

// SessionResponse represents selection and visibility state
type SessionResponse struct {
	SelectedStoreID *string        `json:"selected_store_id"`
	CurrentOrder    *OrderResponse `json:"current_order"`
	CartOpen        bool           `json:"cart_open"`
	CheckoutOpen    bool           `json:"checkout_open"`
	Cart            CartResponse   `json:"cart"`
}

// ToProductResponse converts a catalog product to a response DTO
func ToProductResponse(p catalog.Product, currency valueobject.Currency) ProductResponse {
	return ProductResponse{
		ID:                 p.ID,
		Name:               p.Name,
		Price:              currency.Amount(p.Price),
		Description:        p.Description,
		Image:              p.Image,
		Category:           p.Category,
		StoreID:            p.StoreID,
		StoreName:          p.StoreName,
		Available:          p.Available,
		PreparationMinutes: p.PreparationMinutes,
	}
}

// ToStoreResponse converts a store; now decides open_now
func ToStoreResponse(s catalog.Store, now time.Time, currency valueobject.Currency) StoreResponse {
	products := make([]ProductResponse, len(s.Products))
	for i, p := range s.Products {
		products[i] = ToProductResponse(p, currency)
	}
	hours := make(map[string]*catalog.DayHours, 7)
	for day := time.Sunday; day <= time.Saturday; day++ {
		hours[strings.ToLower(day.String())] = s.OpeningHours.For(day)
	}
	return StoreResponse{
		ID:                        s.ID,
		Name:                      s.Name,
		MappedInLocationID:        s.MappedInLocationID,
		Category:                  s.Category.String(),
		Rating:                    s.Rating.StringFixed(1),
		OpeningHours:              hours,
		OpenNow:                   s.IsOpenAt(now),
		Phone:                     s.Phone,
		Description:               s.Description,
		Products:                  products,
		AcceptsClickCollect:       s.AcceptsClickCollect,
		AveragePreparationMinutes: s.AveragePreparationMinutes,
	}
}

// ToStoreResponses converts a list of stores
func ToStoreResponses(stores []catalog.Store, now time.Time, currency valueobject.Currency) []StoreResponse {
	result := make([]StoreResponse, len(stores))
	for i, s := range stores {
		result[i] = ToStoreResponse(s, now, currency)
	}
	return result
}

// ToCartItemResponses converts line items
func ToCartItemResponses(items []shopping.LineItem, currency valueobject.Currency) []CartItemResponse {
	result := make([]CartItemResponse, len(items))
	for i, item := range items {
		result[i] = CartItemResponse{
			Product:         ToProductResponse(item.Product, currency),
			Quantity:        item.Quantity,
			Subtotal:        currency.Amount(item.Subtotal()),
			SelectedOptions: item.SelectedOptions,
		}
	}
	return result
}

// ToCartResponse converts the cart
func ToCartResponse(c shopping.Cart, currency valueobject.Currency) CartResponse {
	resp := CartResponse{
		Items:     ToCartItemResponses(c.Items(), currency),
		ItemCount: c.ItemCount(),
		Total:     currency.Amount(c.Total()),
	}
	if storeID, ok := c.StoreID(); ok {
		resp.StoreID = &storeID
	}
	return resp
}

// ToOrderResponse converts an order
func ToOrderResponse(o shopping.Order, currency valueobject.Currency) OrderResponse {
	return OrderResponse{
		ID:               o.ID,
		StoreID:          o.StoreID,
		StoreName:        o.StoreName,
		Items:            ToCartItemResponses(o.Items, currency),
		ItemCount:        o.ItemCount(),
		TotalAmount:      currency.Amount(o.TotalAmount),
		Status:           o.Status.String(),
		IsActive:         o.Status.IsActive(),
		CanCancel:        o.Status.CanCancel(),
		CreatedAt:        o.CreatedAt,
		EstimatedReadyAt: o.EstimatedReadyAt,
		UpdatedAt:        o.UpdatedAt,
		Customer: CustomerResponse{
			Name:  o.Customer.Name,
			Phone: o.Customer.Phone,
			Email: o.Customer.Email,
		},
		PickupCode:          o.PickupCode,
		SpecialInstructions: o.SpecialInstructions,
	}
}

// ToOrderResponses converts a list of orders, keeping their order
func ToOrderResponses(orders []shopping.Order, currency valueobject.Currency) []OrderResponse {
	result := make([]OrderResponse, len(orders))
	for i, o := range orders {
		result[i] = ToOrderResponse(o, currency)
	}
	return result
}

// ToSessionResponse converts the selection and visibility part of a state
func ToSessionResponse(s State, currency valueobject.Currency) SessionResponse {
	resp := SessionResponse{
		CartOpen:     s.CartOpen,
		CheckoutOpen: s.CheckoutOpen,
		Cart:         ToCartResponse(s.Cart, currency),
	}
	if s.SelectedStore != nil {
		id := s.SelectedStore.ID
		resp.SelectedStoreID = &id
	}
	if o, ok := s.CurrentOrder(); ok {
		r := ToOrderResponse(o, currency)
		resp.CurrentOrder = &r
	}
	return resp
}
