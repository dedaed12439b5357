package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"snack-cart/internal/catalog"
	"snack-cart/internal/handler"
	"snack-cart/internal/middleware"
	"snack-cart/internal/model"
	"snack-cart/internal/payment"
	"snack-cart/internal/repository"
	"snack-cart/internal/router"
	"snack-cart/internal/service"
	"snack-cart/internal/shipping"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAPIKey = "test-api-key"

func setupTestServer(t *testing.T, testDB *TestDB) http.Handler {
	t.Helper()

	logger := zerolog.Nop()

	// Guest carts live in Redis; miniredis stands in for the real thing.
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = redisClient.Close()
	})

	guestCartRepo := repository.NewRedisCartRepository(redisClient, time.Hour, logger)
	accountCartRepo := repository.NewPostgresCartRepository(testDB.Pool, logger)
	orderRepo := repository.NewPostgresOrderRepository(testDB.Pool, logger)

	catalogReader := catalog.NewPostgresReader(testDB.Pool, logger)

	cartService := service.NewCartService(guestCartRepo, accountCartRepo, catalogReader, logger)
	stockVerifier := service.NewStockVerifier(catalogReader, logger)
	checkoutService := service.NewCheckoutService(
		cartService,
		stockVerifier,
		orderRepo,
		payment.NewHostedGateway(logger),
		shipping.DefaultRates(),
		"INR",
		logger,
	)

	cartHandler := handler.NewCartHandler(cartService, logger)
	checkoutHandler := handler.NewCheckoutHandler(checkoutService, logger)

	return router.New(cartHandler, checkoutHandler, testAPIKey, logger)
}

func doJSON(t *testing.T, server http.Handler, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", testAPIKey)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)
	return w
}

func checkoutBody() *model.CheckoutRequest {
	return &model.CheckoutRequest{
		Shipping: model.ShippingDetails{
			FirstName: "Asha", LastName: "Nair", Email: "asha@example.com",
			Phone: "9876543210", Street: "12 MG Road", City: "Kochi",
			State: "Kerala", Country: "India", Pincode: "682001",
		},
		ShippingMethod: "express",
	}
}

func TestCartAPI_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	server := setupTestServer(t, testDB)

	guest := map[string]string{middleware.SessionHeader: "sess-1"}
	account := map[string]string{middleware.UserHeader: "user-1"}

	t.Run("Guest adds items and reads the cart back", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		SeedCatalog(t, testDB.Pool)

		w := doJSON(t, server, http.MethodPost, "/api/cart/items",
			&handler.AddItemRequest{ProductID: "P001", Quantity: 2}, guest)
		require.Equal(t, http.StatusOK, w.Code)

		w = doJSON(t, server, http.MethodPost, "/api/cart/items",
			&handler.AddItemRequest{ProductID: "P002", VariantKey: "500g", Quantity: 1}, guest)
		require.Equal(t, http.StatusOK, w.Code)

		w = doJSON(t, server, http.MethodGet, "/api/cart", nil, guest)
		require.Equal(t, http.StatusOK, w.Code)

		var cart model.Cart
		require.NoError(t, json.NewDecoder(w.Body).Decode(&cart))
		require.Len(t, cart.Lines, 2)
		assert.Equal(t, 45.0, cart.Lines[0].UnitPrice)
		// The 500g variant price is its discount price.
		assert.Equal(t, 250.0, cart.Lines[1].UnitPrice)
	})

	t.Run("Adding an unknown product returns 404", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		SeedCatalog(t, testDB.Pool)

		w := doJSON(t, server, http.MethodPost, "/api/cart/items",
			&handler.AddItemRequest{ProductID: "P999", Quantity: 1}, guest)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Update and remove by line key", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		SeedCatalog(t, testDB.Pool)

		w := doJSON(t, server, http.MethodPost, "/api/cart/items",
			&handler.AddItemRequest{ProductID: "P002", VariantKey: "500g", Quantity: 1}, account)
		require.Equal(t, http.StatusOK, w.Code)

		w = doJSON(t, server, http.MethodPut, "/api/cart/items/P002-500g",
			&handler.UpdateQuantityRequest{Quantity: 4}, account)
		require.Equal(t, http.StatusOK, w.Code)

		var cart model.Cart
		require.NoError(t, json.NewDecoder(w.Body).Decode(&cart))
		require.Len(t, cart.Lines, 1)
		assert.Equal(t, 4, cart.Lines[0].Quantity)

		w = doJSON(t, server, http.MethodDelete, "/api/cart/items/P002-500g", nil, account)
		require.Equal(t, http.StatusOK, w.Code)

		require.NoError(t, json.NewDecoder(w.Body).Decode(&cart))
		assert.Empty(t, cart.Lines)
	})

	t.Run("Merge moves the guest cart into the account cart", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		SeedCatalog(t, testDB.Pool)

		w := doJSON(t, server, http.MethodPost, "/api/cart/items",
			&handler.AddItemRequest{ProductID: "P001", Quantity: 2}, guest)
		require.Equal(t, http.StatusOK, w.Code)

		w = doJSON(t, server, http.MethodPost, "/api/cart/items",
			&handler.AddItemRequest{ProductID: "P001", Quantity: 1}, account)
		require.Equal(t, http.StatusOK, w.Code)

		both := map[string]string{
			middleware.SessionHeader: "sess-1",
			middleware.UserHeader:    "user-1",
		}
		w = doJSON(t, server, http.MethodPost, "/api/cart/merge", nil, both)
		require.Equal(t, http.StatusOK, w.Code)

		var merged model.Cart
		require.NoError(t, json.NewDecoder(w.Body).Decode(&merged))
		require.Len(t, merged.Lines, 1)
		assert.Equal(t, 3, merged.Lines[0].Quantity)

		// The guest cart is gone after the merge.
		w = doJSON(t, server, http.MethodGet, "/api/cart", nil, guest)
		require.Equal(t, http.StatusOK, w.Code)
		var guestCart model.Cart
		require.NoError(t, json.NewDecoder(w.Body).Decode(&guestCart))
		assert.Empty(t, guestCart.Lines)
	})

	t.Run("Requests without an API key are rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
		req.Header.Set(middleware.UserHeader, "user-1")
		w := httptest.NewRecorder()

		server.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("GET /health returns 200 without API key", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		w := httptest.NewRecorder()

		server.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestCheckoutAPI_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	server := setupTestServer(t, testDB)

	account := map[string]string{middleware.UserHeader: "user-1"}

	t.Run("Full checkout flow places exactly one order", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		SeedCatalog(t, testDB.Pool)

		w := doJSON(t, server, http.MethodPost, "/api/cart/items",
			&handler.AddItemRequest{ProductID: "P002", VariantKey: "500g", Quantity: 2}, account)
		require.Equal(t, http.StatusOK, w.Code)

		w = doJSON(t, server, http.MethodPost, "/api/checkout", checkoutBody(), account)
		require.Equal(t, http.StatusAccepted, w.Code)

		var pending model.PendingOrder
		require.NoError(t, json.NewDecoder(w.Body).Decode(&pending))
		assert.Len(t, pending.Code, 8)
		// 2 x 250 plus express shipping of 15, in paise.
		assert.Equal(t, int64(51500), pending.AmountMinor)
		assert.Equal(t, "INR", pending.Currency)

		confirm := map[string]string{"orderId": pending.OrderID.String(), "paymentRef": "pay_abc"}
		w = doJSON(t, server, http.MethodPost, "/api/payments/confirm", confirm, account)
		require.Equal(t, http.StatusCreated, w.Code)

		var order model.Order
		require.NoError(t, json.NewDecoder(w.Body).Decode(&order))
		assert.Equal(t, pending.OrderID, order.ID)
		assert.Equal(t, model.OrderConfirmed, order.Status)
		assert.Equal(t, 515.0, order.Total)

		// Confirming again returns the same order, not a second one.
		w = doJSON(t, server, http.MethodPost, "/api/payments/confirm", confirm, account)
		require.Equal(t, http.StatusCreated, w.Code)
		var again model.Order
		require.NoError(t, json.NewDecoder(w.Body).Decode(&again))
		assert.Equal(t, order.ID, again.ID)

		var count int
		require.NoError(t, testDB.Pool.QueryRow(context.Background(), "SELECT COUNT(*) FROM orders").Scan(&count))
		assert.Equal(t, 1, count)

		// The cart is empty once the order is placed.
		w = doJSON(t, server, http.MethodGet, "/api/cart", nil, account)
		require.Equal(t, http.StatusOK, w.Code)
		var cart model.Cart
		require.NoError(t, json.NewDecoder(w.Body).Decode(&cart))
		assert.Empty(t, cart.Lines)

		// The order is retrievable afterwards.
		w = doJSON(t, server, http.MethodGet, "/api/orders/"+order.ID.String(), nil, account)
		require.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Cancelling a payment leaves the cart and order store untouched", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		SeedCatalog(t, testDB.Pool)

		w := doJSON(t, server, http.MethodPost, "/api/cart/items",
			&handler.AddItemRequest{ProductID: "P001", Quantity: 1}, account)
		require.Equal(t, http.StatusOK, w.Code)

		w = doJSON(t, server, http.MethodPost, "/api/checkout", checkoutBody(), account)
		require.Equal(t, http.StatusAccepted, w.Code)

		var pending model.PendingOrder
		require.NoError(t, json.NewDecoder(w.Body).Decode(&pending))

		w = doJSON(t, server, http.MethodPost, "/api/payments/cancel",
			map[string]string{"orderId": pending.OrderID.String()}, account)
		require.Equal(t, http.StatusOK, w.Code)

		// No order row was written.
		var count int
		require.NoError(t, testDB.Pool.QueryRow(context.Background(), "SELECT COUNT(*) FROM orders").Scan(&count))
		assert.Equal(t, 0, count)

		// The cart still holds the line.
		w = doJSON(t, server, http.MethodGet, "/api/cart", nil, account)
		require.Equal(t, http.StatusOK, w.Code)
		var cart model.Cart
		require.NoError(t, json.NewDecoder(w.Body).Decode(&cart))
		assert.Len(t, cart.Lines, 1)

		// A confirmation after the cancel finds nothing.
		w = doJSON(t, server, http.MethodPost, "/api/payments/confirm",
			map[string]string{"orderId": pending.OrderID.String(), "paymentRef": "pay_abc"}, account)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Checkout fails fast on the first out-of-stock line", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		SeedCatalog(t, testDB.Pool)

		w := doJSON(t, server, http.MethodPost, "/api/cart/items",
			&handler.AddItemRequest{ProductID: "P004", Quantity: 1}, account)
		require.Equal(t, http.StatusOK, w.Code)

		w = doJSON(t, server, http.MethodPost, "/api/checkout", checkoutBody(), account)
		assert.Equal(t, http.StatusConflict, w.Code)

		var errResp handler.ErrorResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&errResp))
		assert.Equal(t, model.ErrCodeOutOfStock, errResp.Code)
		assert.Contains(t, errResp.Error, "Dry Fruit Mix")
	})

	t.Run("Checkout with an empty cart is rejected", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		SeedCatalog(t, testDB.Pool)

		w := doJSON(t, server, http.MethodPost, "/api/checkout", checkoutBody(), account)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Checkout with an unknown shipping method is rejected", func(t *testing.T) {
		CleanupDB(t, testDB.Pool)
		SeedCatalog(t, testDB.Pool)

		w := doJSON(t, server, http.MethodPost, "/api/cart/items",
			&handler.AddItemRequest{ProductID: "P001", Quantity: 1}, account)
		require.Equal(t, http.StatusOK, w.Code)

		body := checkoutBody()
		body.ShippingMethod = "overnight"
		w = doJSON(t, server, http.MethodPost, "/api/checkout", body, account)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestCORS_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	server := setupTestServer(t, testDB)

	t.Run("OPTIONS request returns CORS headers", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/cart", nil)
		w := httptest.NewRecorder()

		server.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "GET")
	})
}
