package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/Nassimghoulane/Dionos-1/internal/domain/shared"
	"github.com/Nassimghoulane/Dionos-1/internal/domain/shopping"
	"github.com/Nassimghoulane/Dionos-1/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OrderFilter narrows FindAll
type OrderFilter struct {
	StoreID    string
	Statuses   []shopping.OrderStatus
	ActiveOnly bool
	Limit      int
}

// GormOrderArchive keeps a durable copy of every order the session has
// placed. It is written from order events and read back on startup.
type GormOrderArchive struct {
	db *gorm.DB
}

// NewGormOrderArchive creates a new GormOrderArchive
func NewGormOrderArchive(db *gorm.DB) *GormOrderArchive {
	return &GormOrderArchive{db: db}
}

// Save inserts the order or overwrites its mutable columns. Line items are
// written once; an order's items never change after placement.
func (r *GormOrderArchive) Save(ctx context.Context, order shopping.Order) error {
	m := models.OrderModelFromDomain(order)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				DoUpdates: clause.AssignmentColumns([]string{"status", "updated_at"}),
			}).
			Create(m).Error; err != nil {
			return fmt.Errorf("failed to save order %s: %w", order.ID, err)
		}
		if len(m.Items) == 0 {
			return nil
		}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&m.Items).Error; err != nil {
			return fmt.Errorf("failed to save items of order %s: %w", order.ID, err)
		}
		return nil
	})
}

// FindByID finds an archived order by its ID
func (r *GormOrderArchive) FindByID(ctx context.Context, id uuid.UUID) (shopping.Order, error) {
	var m models.OrderModel
	if err := r.db.WithContext(ctx).
		Preload("Items", orderItemsByPosition).
		First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return shopping.Order{}, shared.ErrNotFound
		}
		return shopping.Order{}, err
	}
	return m.ToDomain(), nil
}

// FindAll returns archived orders, oldest first
func (r *GormOrderArchive) FindAll(ctx context.Context, filter OrderFilter) ([]shopping.Order, error) {
	query := r.db.WithContext(ctx).
		Model(&models.OrderModel{}).
		Preload("Items", orderItemsByPosition)

	if filter.StoreID != "" {
		query = query.Where("store_id = ?", filter.StoreID)
	}
	statuses := filter.Statuses
	if filter.ActiveOnly {
		statuses = activeStatuses()
	}
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var rows []models.OrderModel
	if err := query.Order("created_at ASC").Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}

	orders := make([]shopping.Order, len(rows))
	for i := range rows {
		orders[i] = rows[i].ToDomain()
	}
	return orders, nil
}

// Count returns the number of archived orders
func (r *GormOrderArchive) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.OrderModel{}).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func orderItemsByPosition(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

func activeStatuses() []shopping.OrderStatus {
	var out []shopping.OrderStatus
	for _, s := range shopping.AllOrderStatuses {
		if s.IsActive() {
			out = append(out, s)
		}
	}
	return out
}

// ArchiveHandler writes every placed or changed order to the archive
type ArchiveHandler struct {
	archive *GormOrderArchive
	logger  *zap.Logger
}

// NewArchiveHandler creates a new ArchiveHandler
func NewArchiveHandler(archive *GormOrderArchive, logger *zap.Logger) *ArchiveHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ArchiveHandler{archive: archive, logger: logger}
}

// EventTypes implements shared.EventHandler
func (h *ArchiveHandler) EventTypes() []string {
	return []string{
		shopping.EventTypeOrderPlaced,
		shopping.EventTypeOrderStatusChanged,
	}
}

// Handle implements shared.EventHandler
func (h *ArchiveHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	var order shopping.Order
	switch e := event.(type) {
	case *shopping.OrderPlacedEvent:
		order = e.Order
	case *shopping.OrderStatusChangedEvent:
		order = e.Order
	default:
		return nil
	}

	if err := h.archive.Save(ctx, order); err != nil {
		return err
	}
	h.logger.Debug("order archived",
		zap.String("order_id", order.ID.String()),
		zap.String("status", order.Status.String()),
	)
	return nil
}

var _ shared.EventHandler = (*ArchiveHandler)(nil)
