package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Nassimghoulane/Dionos-1/internal/application/clickcollect"
	"github.com/Nassimghoulane/Dionos-1/internal/domain/shared/valueobject"
	"github.com/Nassimghoulane/Dionos-1/internal/infrastructure/scheduler"
	"github.com/Nassimghoulane/Dionos-1/internal/infrastructure/seed"
	"github.com/Nassimghoulane/Dionos-1/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// Saturday noon, every seeded store is open
var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

type fixedCodes struct {
	codes []string
	next  int
}

func (g *fixedCodes) Generate() (string, error) {
	code := g.codes[min(g.next, len(g.codes)-1)]
	g.next++
	return code, nil
}

type testAPI struct {
	engine  *gin.Engine
	session *clickcollect.Session
	clock   *scheduler.ManualClock
	timers  *scheduler.Scheduler
}

func newTestAPI(t *testing.T, checks ...DependencyCheck) *testAPI {
	t.Helper()
	require.NoError(t, middleware.SetupValidator())

	clock := scheduler.NewManualClock(testNow)
	timers := scheduler.New(clock, nil)
	session := clickcollect.NewSession(
		clickcollect.WithScheduler(timers),
		clickcollect.WithPickupCodeGenerator(&fixedCodes{codes: []string{"ABC123", "XYZ789", "QRS456"}}),
	)
	t.Cleanup(func() { _ = session.Close(context.Background()) })

	cat, err := seed.Default()
	require.NoError(t, err)
	require.NoError(t, session.SetStores(context.Background(), cat.Stores()))

	engine := gin.New()
	engine.Use(middleware.RequestID())
	api := engine.Group("/api/v1")
	currency := valueobject.EUR
	NewCatalogHandler(session, currency).RegisterRoutes(api)
	NewCartHandler(session, currency).RegisterRoutes(api)
	NewSessionHandler(session, currency).RegisterRoutes(api)
	NewOrderHandler(session, currency).RegisterRoutes(api)
	NewHealthHandler(session, checks...).RegisterRoutes(api)

	return &testAPI{engine: engine, session: session, clock: clock, timers: timers}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code      string `json:"code"`
		Message   string `json:"message"`
		RequestID string `json:"request_id"`
		Details   []struct {
			Field string `json:"field"`
		} `json:"details"`
	} `json:"error"`
}

func (a *testAPI) do(t *testing.T, method, path string, body any) (int, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, "/api/v1"+path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w.Code, env
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(env.Data, &v))
	return v
}

type moneyJSON struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

type cartJSON struct {
	Items []struct {
		Product struct {
			ID string `json:"id"`
		} `json:"product"`
		Quantity int       `json:"quantity"`
		Subtotal moneyJSON `json:"subtotal"`
	} `json:"items"`
	ItemCount int       `json:"item_count"`
	Total     moneyJSON `json:"total"`
	StoreID   *string   `json:"store_id"`
}

type orderJSON struct {
	ID          string    `json:"id"`
	StoreID     string    `json:"store_id"`
	StoreName   string    `json:"store_name"`
	ItemCount   int       `json:"item_count"`
	TotalAmount moneyJSON `json:"total_amount"`
	Status      string    `json:"status"`
	IsActive    bool      `json:"is_active"`
	CanCancel   bool      `json:"can_cancel"`
	PickupCode  string    `json:"pickup_code"`
	Customer    struct {
		Name  string `json:"name"`
		Phone string `json:"phone"`
	} `json:"customer"`
	SpecialInstructions *string `json:"special_instructions"`
}

type sessionJSON struct {
	SelectedStoreID *string    `json:"selected_store_id"`
	CurrentOrder    *orderJSON `json:"current_order"`
	CartOpen        bool       `json:"cart_open"`
	CheckoutOpen    bool       `json:"checkout_open"`
	Cart            cartJSON   `json:"cart"`
}

func checkoutBody() map[string]any {
	return map[string]any{
		"customer": map[string]any{
			"name":  "  Alice Martin ",
			"phone": "06 12 34 56 78",
		},
		"special_instructions": "Sans oignons",
	}
}

func (a *testAPI) fillCart(t *testing.T, productIDs ...string) {
	t.Helper()
	for _, id := range productIDs {
		status, _ := a.do(t, http.MethodPost, "/cart/items", map[string]string{"product_id": id})
		require.Equal(t, http.StatusOK, status)
	}
}

func (a *testAPI) placeOrder(t *testing.T) orderJSON {
	t.Helper()
	status, env := a.do(t, http.MethodPost, "/orders", checkoutBody())
	require.Equal(t, http.StatusCreated, status)
	return decode[orderJSON](t, env)
}
