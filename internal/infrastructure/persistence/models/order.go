// Package models holds the gorm models of the order archive.
package models

import (
	"maps"
	"time"

	"github.com/Nassimghoulane/Dionos-1/internal/domain/catalog"
	"github.com/Nassimghoulane/Dionos-1/internal/domain/shopping"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderModel is the persistence model for a placed order.
// Timestamps come from the session clock, so gorm must not overwrite them.
type OrderModel struct {
	ID                  uuid.UUID            `gorm:"type:varchar(36);primaryKey"`
	StoreID             string               `gorm:"type:varchar(64);not null;index"`
	StoreName           string               `gorm:"type:varchar(200);not null"`
	Items               []OrderItemModel     `gorm:"foreignKey:OrderID;references:ID"`
	TotalAmount         decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	Status              shopping.OrderStatus `gorm:"type:varchar(20);not null;index"`
	CreatedAt           time.Time            `gorm:"not null;index;autoCreateTime:false"`
	EstimatedReadyAt    time.Time            `gorm:"not null"`
	UpdatedAt           time.Time            `gorm:"not null;autoUpdateTime:false"`
	CustomerName        string               `gorm:"type:varchar(100);not null"`
	CustomerPhone       string               `gorm:"type:varchar(32);not null"`
	CustomerEmail       *string              `gorm:"type:varchar(200)"`
	PickupCode          string               `gorm:"type:varchar(6);not null;index"`
	SpecialInstructions *string              `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "click_collect_orders"
}

// ToDomain converts the persistence model to a domain Order
func (m *OrderModel) ToDomain() shopping.Order {
	o := shopping.Order{
		ID:               m.ID,
		StoreID:          m.StoreID,
		StoreName:        m.StoreName,
		TotalAmount:      m.TotalAmount,
		Status:           m.Status,
		CreatedAt:        m.CreatedAt,
		EstimatedReadyAt: m.EstimatedReadyAt,
		UpdatedAt:        m.UpdatedAt,
		Customer: shopping.CustomerInfo{
			Name:  m.CustomerName,
			Phone: m.CustomerPhone,
			Email: m.CustomerEmail,
		},
		PickupCode:          m.PickupCode,
		SpecialInstructions: m.SpecialInstructions,
		Items:               make([]shopping.LineItem, len(m.Items)),
	}
	for i := range m.Items {
		o.Items[i] = m.Items[i].ToDomain(m.StoreID, m.StoreName)
	}
	return o
}

// FromDomain populates the model from a domain Order
func (m *OrderModel) FromDomain(o shopping.Order) {
	m.ID = o.ID
	m.StoreID = o.StoreID
	m.StoreName = o.StoreName
	m.TotalAmount = o.TotalAmount
	m.Status = o.Status
	m.CreatedAt = o.CreatedAt
	m.EstimatedReadyAt = o.EstimatedReadyAt
	m.UpdatedAt = o.UpdatedAt
	m.CustomerName = o.Customer.Name
	m.CustomerPhone = o.Customer.Phone
	m.CustomerEmail = o.Customer.Email
	m.PickupCode = o.PickupCode
	m.SpecialInstructions = o.SpecialInstructions
	m.Items = make([]OrderItemModel, len(o.Items))
	for i, item := range o.Items {
		m.Items[i] = OrderItemModelFromDomain(o.ID, i, item)
	}
}

// OrderModelFromDomain creates a new persistence model from a domain Order
func OrderModelFromDomain(o shopping.Order) *OrderModel {
	m := &OrderModel{}
	m.FromDomain(o)
	return m
}

// OrderItemModel is one line of an order, keyed by its position so the
// cart's insertion order survives a round trip.
// Availability is stored inverted: gorm skips zero values on insert, so
// a column defaulting to true could never hold false.
type OrderItemModel struct {
	OrderID            uuid.UUID         `gorm:"type:varchar(36);primaryKey"`
	Position           int               `gorm:"primaryKey;autoIncrement:false"`
	ProductID          string            `gorm:"type:varchar(64);not null"`
	ProductName        string            `gorm:"type:varchar(200);not null"`
	Description        string            `gorm:"type:text"`
	Category           string            `gorm:"type:varchar(100)"`
	Image              *string           `gorm:"type:varchar(500)"`
	UnitPrice          decimal.Decimal   `gorm:"type:decimal(18,4);not null"`
	PreparationMinutes int               `gorm:"not null;default:0"`
	Unavailable        bool              `gorm:"not null;default:false"`
	Quantity           int               `gorm:"not null"`
	SelectedOptions    map[string]string `gorm:"type:text;serializer:json"`
}

// TableName returns the table name for GORM
func (OrderItemModel) TableName() string {
	return "click_collect_order_items"
}

// ToDomain converts the item back to a line item. Items are always sold
// by the order's store, so store fields come from the parent row.
func (m *OrderItemModel) ToDomain(storeID, storeName string) shopping.LineItem {
	return shopping.LineItem{
		Product: catalog.Product{
			ID:                 m.ProductID,
			Name:               m.ProductName,
			Price:              m.UnitPrice,
			Description:        m.Description,
			Image:              m.Image,
			Category:           m.Category,
			StoreID:            storeID,
			StoreName:          storeName,
			Available:          !m.Unavailable,
			PreparationMinutes: m.PreparationMinutes,
		},
		Quantity:        m.Quantity,
		SelectedOptions: maps.Clone(m.SelectedOptions),
	}
}

// OrderItemModelFromDomain creates the persistence model of one line item
func OrderItemModelFromDomain(orderID uuid.UUID, position int, item shopping.LineItem) OrderItemModel {
	return OrderItemModel{
		OrderID:            orderID,
		Position:           position,
		ProductID:          item.Product.ID,
		ProductName:        item.Product.Name,
		Description:        item.Product.Description,
		Category:           item.Product.Category,
		Image:              item.Product.Image,
		UnitPrice:          item.Product.Price,
		PreparationMinutes: item.Product.PreparationMinutes,
		Unavailable:        !item.Product.Available,
		Quantity:           item.Quantity,
		SelectedOptions:    maps.Clone(item.SelectedOptions),
	}
}

// AllModels lists the models AutoMigrate creates
func AllModels() []any {
	return []any{&OrderModel{}, &OrderItemModel{}}
}
