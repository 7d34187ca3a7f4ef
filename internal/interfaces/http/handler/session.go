package handler

import (
	"github.com/Nassimghoulane/Dionos-1/internal/application/clickcollect"
	"github.com/Nassimghoulane/Dionos-1/internal/domain/shared/valueobject"
	"github.com/gin-gonic/gin"
)

// SessionHandler exposes store selection and panel visibility
type SessionHandler struct {
	BaseHandler
	session  *clickcollect.Session
	currency valueobject.Currency
}

// NewSessionHandler creates a new SessionHandler
func NewSessionHandler(session *clickcollect.Session, currency valueobject.Currency) *SessionHandler {
	return &SessionHandler{
		session:  session,
		currency: currency,
	}
}

// RegisterRoutes registers the session routes
func (h *SessionHandler) RegisterRoutes(rg *gin.RouterGroup) {
	s := rg.Group("/session")
	s.GET("", h.Get)
	s.PUT("/selected-store", h.SelectStore)
	s.PUT("/cart-open", h.SetCartOpen)
	s.PUT("/checkout-open", h.SetCheckoutOpen)
}

// Get returns the selection and visibility state
func (h *SessionHandler) Get(c *gin.Context) {
	h.respond(c)
}

// SelectStore focuses a store; {"store_id": null} clears the selection
func (h *SessionHandler) SelectStore(c *gin.Context) {
	var req clickcollect.SelectStoreRequest
	if !h.BindJSON(c, &req) {
		return
	}
	if err := h.session.SetSelectedStore(c.Request.Context(), req.StoreID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.respond(c)
}

// SetCartOpen shows or hides the cart panel
func (h *SessionHandler) SetCartOpen(c *gin.Context) {
	var req clickcollect.ToggleRequest
	if !h.BindJSON(c, &req) {
		return
	}
	if err := h.session.SetCartOpen(c.Request.Context(), *req.Open); err != nil {
		h.HandleError(c, err)
		return
	}
	h.respond(c)
}

// SetCheckoutOpen shows or hides the checkout form
func (h *SessionHandler) SetCheckoutOpen(c *gin.Context) {
	var req clickcollect.ToggleRequest
	if !h.BindJSON(c, &req) {
		return
	}
	if err := h.session.SetCheckoutOpen(c.Request.Context(), *req.Open); err != nil {
		h.HandleError(c, err)
		return
	}
	h.respond(c)
}

func (h *SessionHandler) respond(c *gin.Context) {
	h.Success(c, clickcollect.ToSessionResponse(h.session.Snapshot(), h.currency))
}
