package handler

import (
	"strconv"

	"github.com/Nassimghoulane/Dionos-1/internal/application/clickcollect"
	"github.com/Nassimghoulane/Dionos-1/internal/domain/shared/valueobject"
	"github.com/Nassimghoulane/Dionos-1/internal/domain/shopping"
	"github.com/gin-gonic/gin"
)

// OrderHandler exposes checkout and the order lifecycle
type OrderHandler struct {
	BaseHandler
	session  *clickcollect.Session
	currency valueobject.Currency
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(session *clickcollect.Session, currency valueobject.Currency) *OrderHandler {
	return &OrderHandler{
		session:  session,
		currency: currency,
	}
}

// RegisterRoutes registers the order routes
func (h *OrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	orders := rg.Group("/orders")
	orders.POST("", h.Place)
	orders.GET("", h.List)
	orders.GET("/current", h.Current)
	orders.GET("/:id", h.Get)
	orders.POST("/:id/cancel", h.Cancel)
	orders.PUT("/:id/status", h.UpdateStatus)
	orders.POST("/:id/collect", h.Collect)
}

// Place turns the cart into a pending order
func (h *OrderHandler) Place(c *gin.Context) {
	var req clickcollect.PlaceOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}

	order, err := h.session.PlaceOrder(c.Request.Context(), req.ToCheckoutInput())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, clickcollect.ToOrderResponse(order, h.currency))
}

// List returns the orders of the session, active ones first.
// ?active=true restricts the list to orders still in progress.
func (h *OrderHandler) List(c *gin.Context) {
	activeOnly := false
	if raw := c.Query("active"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			h.BadRequest(c, "active must be a boolean")
			return
		}
		activeOnly = v
	}

	orders := h.session.Orders()
	if activeOnly {
		orders = h.session.ActiveOrders()
	}
	h.Success(c, clickcollect.ToOrderResponses(orders, h.currency))
}

// Current returns the most recently placed order
func (h *OrderHandler) Current(c *gin.Context) {
	order, ok := h.session.CurrentOrder()
	if !ok {
		h.NotFound(c, "No order has been placed yet")
		return
	}
	h.Success(c, clickcollect.ToOrderResponse(order, h.currency))
}

// Get returns one order
func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := h.OrderID(c)
	if !ok {
		return
	}
	order, found := h.session.Order(id)
	if !found {
		h.NotFound(c, "Order not found")
		return
	}
	h.Success(c, clickcollect.ToOrderResponse(order, h.currency))
}

// Cancel cancels a pending or confirmed order
func (h *OrderHandler) Cancel(c *gin.Context) {
	id, ok := h.OrderID(c)
	if !ok {
		return
	}
	order, err := h.session.CancelOrder(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, clickcollect.ToOrderResponse(order, h.currency))
}

// UpdateStatus moves an order to the given status
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	id, ok := h.OrderID(c)
	if !ok {
		return
	}
	var req clickcollect.UpdateOrderStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}

	order, err := h.session.UpdateOrderStatus(c.Request.Context(), id, shopping.OrderStatus(req.Status))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, clickcollect.ToOrderResponse(order, h.currency))
}

// Collect hands a ready order over against its pickup code
func (h *OrderHandler) Collect(c *gin.Context) {
	id, ok := h.OrderID(c)
	if !ok {
		return
	}
	var req clickcollect.CollectOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}

	order, err := h.session.CollectOrder(c.Request.Context(), id, req.PickupCode)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, clickcollect.ToOrderResponse(order, h.currency))
}
