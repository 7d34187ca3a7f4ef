package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderHandler_Place(t *testing.T) {
	api := newTestAPI(t)
	api.fillCart(t, "prod-1", "prod-1", "prod-2")
	api.do(t, http.MethodPut, "/session/checkout-open", map[string]bool{"open": true})

	order := api.placeOrder(t)
	assert.NotEmpty(t, order.ID)
	assert.Equal(t, "store-1", order.StoreID)
	assert.Equal(t, "Food Corner", order.StoreName)
	assert.Equal(t, 3, order.ItemCount)
	assert.Equal(t, "30.30", order.TotalAmount.Amount)
	assert.Equal(t, "pending", order.Status)
	assert.True(t, order.IsActive)
	assert.True(t, order.CanCancel)
	assert.Equal(t, "ABC123", order.PickupCode)
	assert.Equal(t, "Alice Martin", order.Customer.Name)
	require.NotNil(t, order.SpecialInstructions)
	assert.Equal(t, "Sans oignons", *order.SpecialInstructions)

	// cart emptied, panels closed, order made current
	_, env := api.do(t, http.MethodGet, "/session", nil)
	s := decode[sessionJSON](t, env)
	assert.Equal(t, 0, s.Cart.ItemCount)
	assert.False(t, s.CheckoutOpen)
	assert.False(t, s.CartOpen)
	require.NotNil(t, s.CurrentOrder)
	assert.Equal(t, order.ID, s.CurrentOrder.ID)
}

func TestOrderHandler_Place_Errors(t *testing.T) {
	api := newTestAPI(t)

	t.Run("empty cart", func(t *testing.T) {
		status, env := api.do(t, http.MethodPost, "/orders", checkoutBody())
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "INVALID_INPUT", env.Error.Code)
	})

	api.fillCart(t, "prod-5")

	t.Run("invalid phone", func(t *testing.T) {
		body := checkoutBody()
		body["customer"] = map[string]any{"name": "Alice", "phone": "call me"}
		status, env := api.do(t, http.MethodPost, "/orders", body)
		assert.Equal(t, http.StatusBadRequest, status)
		require.NotNil(t, env.Error)
		assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
		require.Len(t, env.Error.Details, 1)
		assert.Equal(t, "customer.phone", env.Error.Details[0].Field)
	})

	t.Run("missing name", func(t *testing.T) {
		body := checkoutBody()
		body["customer"] = map[string]any{"phone": "0612345678"}
		status, env := api.do(t, http.MethodPost, "/orders", body)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	})

	t.Run("store differs from cart", func(t *testing.T) {
		body := checkoutBody()
		body["store_id"] = "store-1"
		status, env := api.do(t, http.MethodPost, "/orders", body)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "INVALID_INPUT", env.Error.Code)
	})

	// nothing was placed and the cart survived
	assert.Empty(t, api.session.Orders())
	assert.Equal(t, 1, api.session.GetCartItemCount())
}

func TestOrderHandler_GetAndList(t *testing.T) {
	api := newTestAPI(t)

	status, env := api.do(t, http.MethodGet, "/orders/current", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)

	api.fillCart(t, "prod-1")
	first := api.placeOrder(t)
	api.clock.Advance(time.Minute)
	api.fillCart(t, "prod-5")
	second := api.placeOrder(t)

	status, env = api.do(t, http.MethodGet, "/orders/"+first.ID, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, first.ID, decode[orderJSON](t, env).ID)

	status, env = api.do(t, http.MethodGet, "/orders/current", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, second.ID, decode[orderJSON](t, env).ID)

	status, env = api.do(t, http.MethodGet, "/orders/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "INVALID_INPUT", env.Error.Code)

	status, _ = api.do(t, http.MethodGet, "/orders/00000000-0000-0000-0000-000000000001", nil)
	assert.Equal(t, http.StatusNotFound, status)

	_, env = api.do(t, http.MethodPost, "/orders/"+first.ID+"/cancel", nil)
	assert.Equal(t, "cancelled", decode[orderJSON](t, env).Status)

	status, env = api.do(t, http.MethodGet, "/orders", nil)
	require.Equal(t, http.StatusOK, status)
	all := decode[[]orderJSON](t, env)
	require.Len(t, all, 2)
	// active orders come first
	assert.Equal(t, second.ID, all[0].ID)
	assert.Equal(t, first.ID, all[1].ID)

	status, env = api.do(t, http.MethodGet, "/orders?active=true", nil)
	require.Equal(t, http.StatusOK, status)
	active := decode[[]orderJSON](t, env)
	require.Len(t, active, 1)
	assert.Equal(t, second.ID, active[0].ID)

	status, _ = api.do(t, http.MethodGet, "/orders?active=maybe", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestOrderHandler_Cancel(t *testing.T) {
	api := newTestAPI(t)
	api.fillCart(t, "prod-1")
	order := api.placeOrder(t)

	status, env := api.do(t, http.MethodPost, "/orders/"+order.ID+"/cancel", nil)
	require.Equal(t, http.StatusOK, status)
	cancelled := decode[orderJSON](t, env)
	assert.Equal(t, "cancelled", cancelled.Status)
	assert.False(t, cancelled.IsActive)
	assert.False(t, cancelled.CanCancel)

	status, env = api.do(t, http.MethodPost, "/orders/"+order.ID+"/cancel", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "INVALID_STATE", env.Error.Code)

	// the automatic progression was dropped with the cancellation
	assert.Empty(t, api.timers.PendingFor(api.session.Orders()[0].ID))
}

func TestOrderHandler_Cancel_TooLate(t *testing.T) {
	api := newTestAPI(t)
	api.fillCart(t, "prod-1")
	order := api.placeOrder(t)

	status, _ := api.do(t, http.MethodPut, "/orders/"+order.ID+"/status", map[string]string{"status": "preparing"})
	require.Equal(t, http.StatusOK, status)

	status, env := api.do(t, http.MethodPost, "/orders/"+order.ID+"/cancel", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "INVALID_STATE", env.Error.Code)
}

func TestOrderHandler_UpdateStatus(t *testing.T) {
	api := newTestAPI(t)
	api.fillCart(t, "prod-1")
	order := api.placeOrder(t)
	path := "/orders/" + order.ID + "/status"

	status, env := api.do(t, http.MethodPut, path, map[string]string{"status": "confirmed"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "confirmed", decode[orderJSON](t, env).Status)

	status, env = api.do(t, http.MethodPut, path, map[string]string{"status": "shipped"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)

	status, env = api.do(t, http.MethodPut, path, map[string]string{"status": "pending"})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "INVALID_STATE", env.Error.Code)

	status, _ = api.do(t, http.MethodPut, path, map[string]string{"status": "cancelled"})
	require.Equal(t, http.StatusOK, status)

	status, env = api.do(t, http.MethodPut, path, map[string]string{"status": "ready"})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "INVALID_STATE", env.Error.Code)
}

func TestOrderHandler_Collect(t *testing.T) {
	api := newTestAPI(t)
	api.fillCart(t, "prod-1")
	order := api.placeOrder(t)
	path := "/orders/" + order.ID + "/collect"

	status, _ := api.do(t, http.MethodPut, "/orders/"+order.ID+"/status", map[string]string{"status": "ready"})
	require.Equal(t, http.StatusOK, status)

	status, env := api.do(t, http.MethodPost, path, map[string]string{"pickup_code": "ZZZ999"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "INVALID_INPUT", env.Error.Code)

	status, env = api.do(t, http.MethodPost, path, map[string]string{"pickup_code": "AB"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)

	status, env = api.do(t, http.MethodPost, path, map[string]string{"pickup_code": "abc123"})
	require.Equal(t, http.StatusOK, status)
	collected := decode[orderJSON](t, env)
	assert.Equal(t, "collected", collected.Status)
	assert.False(t, collected.IsActive)
}

func TestOrderHandler_AutomaticProgression(t *testing.T) {
	api := newTestAPI(t)
	api.fillCart(t, "prod-5")
	order := api.placeOrder(t)

	api.clock.Advance(2 * time.Second)
	api.timers.Pump(context.Background())
	_, env := api.do(t, http.MethodGet, "/orders/current", nil)
	assert.Equal(t, "confirmed", decode[orderJSON](t, env).Status)

	api.clock.Advance(3 * time.Second)
	api.timers.Pump(context.Background())
	_, env = api.do(t, http.MethodGet, "/orders/"+order.ID, nil)
	assert.Equal(t, "preparing", decode[orderJSON](t, env).Status)
}
