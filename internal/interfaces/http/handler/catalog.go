package handler

import (
	"github.com/Nassimghoulane/Dionos-1/internal/application/clickcollect"
	"github.com/Nassimghoulane/Dionos-1/internal/domain/shared/valueobject"
	"github.com/gin-gonic/gin"
)

// CatalogHandler serves the read-only store catalog
type CatalogHandler struct {
	BaseHandler
	session  *clickcollect.Session
	currency valueobject.Currency
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(session *clickcollect.Session, currency valueobject.Currency) *CatalogHandler {
	return &CatalogHandler{
		session:  session,
		currency: currency,
	}
}

// RegisterRoutes registers the catalog routes
func (h *CatalogHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/stores", h.ListStores)
	rg.GET("/stores/:id", h.GetStore)
	rg.GET("/products/:id", h.GetProduct)
}

// ListStores returns every store with its products; open_now is evaluated
// against the session clock
func (h *CatalogHandler) ListStores(c *gin.Context) {
	h.Success(c, clickcollect.ToStoreResponses(h.session.Stores(), h.session.Now(), h.currency))
}

// GetStore returns one store
func (h *CatalogHandler) GetStore(c *gin.Context) {
	store, ok := h.session.GetStoreByID(c.Param("id"))
	if !ok {
		h.NotFound(c, "Store not found")
		return
	}
	h.Success(c, clickcollect.ToStoreResponse(store, h.session.Now(), h.currency))
}

// GetProduct returns one product
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	product, ok := h.session.GetProductByID(c.Param("id"))
	if !ok {
		h.NotFound(c, "Product not found")
		return
	}
	h.Success(c, clickcollect.ToProductResponse(product, h.currency))
}
