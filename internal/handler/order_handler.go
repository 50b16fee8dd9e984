package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"storefront/internal/model"
	"storefront/internal/service"

	"github.com/rs/zerolog"
)

// CustomerPhoneHeader carries the phone number that proves a customer owns an order.
const CustomerPhoneHeader = "X-Customer-Phone"

// OrderHandler handles customer-facing order requests.
type OrderHandler struct {
	service service.OrderService
	logger  zerolog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(service service.OrderService, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		logger:  logger.With().Str("handler", "order").Logger(),
	}
}

// Checkout handles POST /api/orders requests.
func (h *OrderHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req model.CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	resp, err := h.service.Checkout(r.Context(), &req)
	if err != nil {
		writeServiceError(w, err, "failed to create order", h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

// GetByID handles GET /api/orders/{id} requests.
func (h *OrderHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, model.ErrCodeValidation, "invalid order ID format", h.logger)
		return
	}

	resp, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "failed to retrieve order", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Lookup handles GET /api/orders/lookup?code=&phone= requests.
func (h *OrderHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	code := strings.TrimSpace(r.URL.Query().Get("code"))
	phone := strings.TrimSpace(r.URL.Query().Get("phone"))
	if code == "" || phone == "" {
		writeError(w, http.StatusBadRequest, model.ErrCodeMissingField, "code and phone are required", h.logger)
		return
	}

	resp, err := h.service.Lookup(r.Context(), code, phone)
	if err != nil {
		writeServiceError(w, err, "failed to look up order", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Deadline handles GET /api/orders/{id}/deadline requests.
func (h *OrderHandler) Deadline(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, model.ErrCodeValidation, "invalid order ID format", h.logger)
		return
	}

	state, err := h.service.Deadline(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "failed to evaluate deadline", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, state)
}

// Edit handles PATCH /api/orders/{id} requests. The body is a map of the
// contact fields to change.
func (h *OrderHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, model.ErrCodeValidation, "invalid order ID format", h.logger)
		return
	}

	phone := strings.TrimSpace(r.Header.Get(CustomerPhoneHeader))
	if phone == "" {
		writeError(w, http.StatusBadRequest, model.ErrCodeMissingField, CustomerPhoneHeader+" header is required", h.logger)
		return
	}

	var fields map[string]any
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	resp, err := h.service.Edit(r.Context(), id, phone, fields)
	if err != nil {
		writeServiceError(w, err, "failed to update order", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
