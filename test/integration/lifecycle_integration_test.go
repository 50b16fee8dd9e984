package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"storefront/internal/handler"
	"storefront/internal/model"
	"storefront/internal/notify"
	"storefront/internal/repository"
	"storefront/internal/router"
	"storefront/internal/scanner"
	"storefront/internal/service"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	storefrontKey = "test-api-key"
	adminKey      = "test-admin-key"
)

type testServer struct {
	handler http.Handler
	clock   *manualClock
	mail    *recordingDispatcher
}

func setupTestServer(t *testing.T, testDB *TestDB, start time.Time) *testServer {
	t.Helper()

	logger := zerolog.Nop()
	clk := &manualClock{now: start}
	mail := &recordingDispatcher{}

	composer, err := notify.NewComposer("https://shop.example.com")
	require.NoError(t, err)
	notifier := notify.NewNotifier(mail, composer, logger)

	productRepo := repository.NewProductRepository(testDB.Pool, logger)
	orderRepo := repository.NewOrderRepository(testDB.Pool, logger)

	productService := service.NewProductService(productRepo, logger)
	orderService := service.NewOrderService(orderRepo, productRepo, notifier, clk, 30*time.Minute, logger)

	runner := scanner.NewRunner(scanner.New(orderRepo, notifier, 4, logger), clk, 0, logger)

	h := router.New(
		handler.NewProductHandler(productService, logger),
		handler.NewOrderHandler(orderService, logger),
		handler.NewAdminHandler(orderService, runner, logger),
		router.Keys{APIKey: storefrontKey, AdminAPIKey: adminKey},
		logger,
	)

	return &testServer{handler: h, clock: clk, mail: mail}
}

func (s *testServer) do(t *testing.T, method, path, key string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if key != "" {
		req.Header.Set("X-API-Key", key)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(w.Body).Decode(&v))
	return v
}

func TestCatalogAPI_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	server := setupTestServer(t, testDB, time.Now().UTC())

	CleanupDB(t, testDB.Pool)
	SeedProducts(t, testDB.Pool)

	t.Run("GET /health returns 200 without API key", func(t *testing.T) {
		w := server.do(t, http.MethodGet, "/health", "", nil, nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("GET /api/products without API key returns 401", func(t *testing.T) {
		w := server.do(t, http.MethodGet, "/api/products", "", nil, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("GET /api/products with pagination", func(t *testing.T) {
		w := server.do(t, http.MethodGet, "/api/products?limit=2", storefrontKey, nil, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, decode[[]model.Product](t, w), 2)
	})

	t.Run("GET /api/products/{id}", func(t *testing.T) {
		w := server.do(t, http.MethodGet, "/api/products/P002", storefrontKey, nil, nil)
		require.Equal(t, http.StatusOK, w.Code)
		product := decode[model.Product](t, w)
		assert.Equal(t, "20.50", product.Price.StringFixed(2))

		w = server.do(t, http.MethodGet, "/api/products/P999", storefrontKey, nil, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestOrderLifecycle_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	t0 := time.Now().UTC().Truncate(time.Second)
	server := setupTestServer(t, testDB, t0)

	CleanupDB(t, testDB.Pool)
	SeedProducts(t, testDB.Pool)

	email := "ada@example.com"
	phone := map[string]string{handler.CustomerPhoneHeader: "+15550100"}

	// Checkout at T0.
	w := server.do(t, http.MethodPost, "/api/orders", storefrontKey, model.CheckoutRequest{
		CustomerName:    "Ada Lovelace",
		CustomerPhone:   "+15550100",
		CustomerEmail:   &email,
		DeliveryAddress: "1 Analytical Way",
		Items: []model.OrderItemRequest{
			{ProductID: "P001", Quantity: 2},
			{ProductID: "P002", Quantity: 1},
		},
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	placed := decode[model.OrderResponse](t, w)

	order := placed.Order
	orderPath := "/api/orders/" + order.ID.String()
	assert.Equal(t, model.StatusPending, order.Status)
	assert.Equal(t, "40.50", order.TotalAmount.StringFixed(2))
	require.NotNil(t, order.OrderDeadline)
	assert.True(t, order.OrderDeadline.Equal(t0.Add(30*time.Minute)))
	assert.Equal(t, "30m 00s", placed.Deadline.Display)

	t.Run("customer finds the order by code and phone", func(t *testing.T) {
		w := server.do(t, http.MethodGet, "/api/orders/lookup?code="+strings.ToLower(order.OrderCode)+"&phone=%2B15550100", storefrontKey, nil, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, order.ID, decode[model.OrderResponse](t, w).Order.ID)

		w = server.do(t, http.MethodGet, "/api/orders/lookup?code="+order.OrderCode+"&phone=%2B10000000", storefrontKey, nil, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("edit inside the window", func(t *testing.T) {
		server.clock.Set(t0.Add(5 * time.Minute))

		w := server.do(t, http.MethodPatch, orderPath, storefrontKey, map[string]any{
			"deliveryAddress": "2 Compiler Court",
		}, phone)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "2 Compiler Court", decode[model.OrderResponse](t, w).Order.DeliveryAddress)

		w = server.do(t, http.MethodPatch, orderPath, storefrontKey, map[string]any{"totalAmount": "0.01"}, phone)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, model.ErrCodeForbiddenField, decode[model.ErrorResponse](t, w).Error)
	})

	t.Run("deadline warning is sent once", func(t *testing.T) {
		server.clock.Set(t0.Add(10 * time.Minute))
		w := server.do(t, http.MethodPost, "/api/admin/scans", adminKey, nil, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 0, decode[model.ScanResult](t, w).Processed)

		server.clock.Set(t0.Add(16 * time.Minute))
		w = server.do(t, http.MethodPost, "/api/admin/scans", adminKey, nil, nil)
		require.Equal(t, http.StatusOK, w.Code)
		result := decode[model.ScanResult](t, w)
		assert.Equal(t, 1, result.Processed)
		assert.Empty(t, result.Errors)

		server.clock.Set(t0.Add(17 * time.Minute))
		w = server.do(t, http.MethodPost, "/api/admin/scans", adminKey, nil, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 0, decode[model.ScanResult](t, w).Processed)

		sent := server.mail.Sent()
		require.Len(t, sent, 1)
		assert.Equal(t, email, sent[0].To)
		assert.Equal(t, "Order "+order.OrderCode+": 14 minutes left to make changes", sent[0].Subject)
		assert.Contains(t, sent[0].Body, "https://shop.example.com/orders/"+order.OrderCode)
	})

	t.Run("edit after the deadline is rejected", func(t *testing.T) {
		server.clock.Set(t0.Add(31 * time.Minute))

		w := server.do(t, http.MethodGet, orderPath+"/deadline", storefrontKey, nil, nil)
		require.Equal(t, http.StatusOK, w.Code)
		state := decode[model.DeadlineState](t, w)
		assert.True(t, state.Expired)
		assert.False(t, state.Editable)

		w = server.do(t, http.MethodPatch, orderPath, storefrontKey, map[string]any{"customerName": "Too Late"}, phone)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, model.ErrCodeEditWindowClosed, decode[model.ErrorResponse](t, w).Error)
	})

	t.Run("admin routes need the admin key", func(t *testing.T) {
		w := server.do(t, http.MethodPut, "/api/admin/orders/"+order.ID.String()+"/status", storefrontKey,
			model.StatusUpdateRequest{Status: "paid"}, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("status transitions notify the customer", func(t *testing.T) {
		statusPath := "/api/admin/orders/" + order.ID.String() + "/status"
		for _, next := range []string{"paid", "shipped", "DELIVERED"} {
			w := server.do(t, http.MethodPut, statusPath, adminKey, model.StatusUpdateRequest{Status: next}, nil)
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		}

		w := server.do(t, http.MethodPut, statusPath, adminKey, model.StatusUpdateRequest{Status: "pending"}, nil)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

		w = server.do(t, http.MethodGet, orderPath, storefrontKey, nil, nil)
		require.Equal(t, http.StatusOK, w.Code)
		final := decode[model.OrderResponse](t, w).Order
		assert.Equal(t, model.StatusDelivered, final.Status)
		assert.True(t, final.DeadlineWarningSent)
		assert.True(t, final.OrderDeadline.Equal(t0.Add(30*time.Minute)))

		subjects := make([]string, 0)
		for _, m := range server.mail.Sent() {
			subjects = append(subjects, m.Subject)
		}
		assert.Equal(t, []string{
			"Order " + order.OrderCode + ": 14 minutes left to make changes",
			"Order " + order.OrderCode + " is now paid",
			"Order " + order.OrderCode + " is now shipped",
			"Order " + order.OrderCode + " is now delivered",
			"How was your order " + order.OrderCode + "?",
		}, subjects)

		w = server.do(t, http.MethodGet, "/api/admin/orders?status=delivered", adminKey, nil, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, decode[[]model.Order](t, w), 1)
	})
}
