package handler

import (
	"github.com/Nassimghoulane/Dionos-1/internal/application/clickcollect"
	"github.com/Nassimghoulane/Dionos-1/internal/domain/shared/valueobject"
	"github.com/gin-gonic/gin"
)

// CartHandler exposes the cart ledger. Every mutation answers with the
// resulting cart.
type CartHandler struct {
	BaseHandler
	session  *clickcollect.Session
	currency valueobject.Currency
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(session *clickcollect.Session, currency valueobject.Currency) *CartHandler {
	return &CartHandler{
		session:  session,
		currency: currency,
	}
}

// RegisterRoutes registers the cart routes
func (h *CartHandler) RegisterRoutes(rg *gin.RouterGroup) {
	cart := rg.Group("/cart")
	cart.GET("", h.Get)
	cart.POST("/items", h.AddItem)
	cart.PUT("/items/:product_id", h.UpdateItem)
	cart.DELETE("/items/:product_id", h.RemoveItem)
	cart.DELETE("", h.Clear)
}

// Get returns the cart with its totals
func (h *CartHandler) Get(c *gin.Context) {
	h.Success(c, clickcollect.ToCartResponse(h.session.Cart(), h.currency))
}

// AddItem adds one unit of a product
func (h *CartHandler) AddItem(c *gin.Context) {
	var req clickcollect.AddToCartRequest
	if !h.BindJSON(c, &req) {
		return
	}

	cart, err := h.session.AddToCart(c.Request.Context(), req.ProductID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, clickcollect.ToCartResponse(cart, h.currency))
}

// UpdateItem sets the quantity of a line; zero or less removes it
func (h *CartHandler) UpdateItem(c *gin.Context) {
	var req clickcollect.UpdateCartQuantityRequest
	if !h.BindJSON(c, &req) {
		return
	}

	cart, err := h.session.UpdateCartQuantity(c.Request.Context(), c.Param("product_id"), *req.Quantity)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, clickcollect.ToCartResponse(cart, h.currency))
}

// RemoveItem drops a line
func (h *CartHandler) RemoveItem(c *gin.Context) {
	cart, err := h.session.RemoveFromCart(c.Request.Context(), c.Param("product_id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, clickcollect.ToCartResponse(cart, h.currency))
}

// Clear empties the cart
func (h *CartHandler) Clear(c *gin.Context) {
	if err := h.session.ClearCart(c.Request.Context()); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, clickcollect.ToCartResponse(h.session.Cart(), h.currency))
}
