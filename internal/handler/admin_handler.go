package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"storefront/internal/model"
	"storefront/internal/scanner"
	"storefront/internal/service"

	"github.com/rs/zerolog"
)

// ScanTrigger runs one deadline warning scan on demand.
type ScanTrigger interface {
	Trigger(ctx context.Context) (*model.ScanResult, error)
}

// AdminHandler handles back-office order requests.
type AdminHandler struct {
	orders service.OrderService
	scans  ScanTrigger
	logger zerolog.Logger
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(orders service.OrderService, scans ScanTrigger, logger zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		orders: orders,
		scans:  scans,
		logger: logger.With().Str("handler", "admin").Logger(),
	}
}

// ListOrders handles GET /api/admin/orders?status=&limit=&offset= requests.
func (h *AdminHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := pageParams(r)
	if err != nil {
		writeServiceError(w, err, "invalid pagination", h.logger)
		return
	}

	filter := model.OrderFilter{Limit: limit, Offset: offset}
	if s := r.URL.Query().Get("status"); s != "" {
		status, err := model.ParseStatus(s)
		if err != nil {
			writeServiceError(w, err, "invalid status filter", h.logger)
			return
		}
		filter.Status = &status
	}

	orders, err := h.orders.List(r.Context(), filter)
	if err != nil {
		writeServiceError(w, err, "failed to list orders", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, orders)
}

// UpdateStatus handles PUT /api/admin/orders/{id}/status requests.
func (h *AdminHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, model.ErrCodeValidation, "invalid order ID format", h.logger)
		return
	}

	var req model.StatusUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}
	if req.Status == "" {
		writeError(w, http.StatusBadRequest, model.ErrCodeMissingField, "status is required", h.logger)
		return
	}

	resp, err := h.orders.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		writeServiceError(w, err, "failed to update order status", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// TriggerScan handles POST /api/admin/scans requests from an external scheduler.
func (h *AdminHandler) TriggerScan(w http.ResponseWriter, r *http.Request) {
	result, err := h.scans.Trigger(r.Context())
	if err != nil {
		if errors.Is(err, scanner.ErrScanInProgress) {
			writeError(w, http.StatusConflict, model.ErrCodeScanInProgress, err.Error(), h.logger)
			return
		}
		writeServiceError(w, err, "deadline scan failed", h.logger)
		return
	}

	h.logger.Info().
		Int("processed", result.Processed).
		Int("skipped", result.Skipped).
		Int("no_recipient", result.NoRecipient).
		Int("duplicates", result.Duplicates).
		Int("errors", len(result.Errors)).
		Msg("deadline scan triggered")

	writeJSON(w, http.StatusOK, result)
}
