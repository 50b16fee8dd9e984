package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// statusByCode maps domain error codes onto HTTP status codes.
var statusByCode = map[string]int{
	model.ErrCodeInvalidJSON:      http.StatusBadRequest,
	model.ErrCodeMissingField:     http.StatusBadRequest,
	model.ErrCodeValidation:       http.StatusBadRequest,
	model.ErrCodeInvalidQuantity:  http.StatusBadRequest,
	model.ErrCodeInvalidContact:   http.StatusBadRequest,
	model.ErrCodeInvalidStatus:    http.StatusBadRequest,
	model.ErrCodeProductNotFound:  http.StatusBadRequest,
	model.ErrCodeForbiddenField:   http.StatusForbidden,
	model.ErrCodeEditWindowClosed: http.StatusForbidden,
	model.ErrCodeOrderNotFound:    http.StatusNotFound,
	model.ErrCodeStatusConflict:   http.StatusConflict,
	model.ErrCodeNoStatusChange:   http.StatusConflict,
	model.ErrCodeTerminalState:    http.StatusUnprocessableEntity,
	model.ErrCodeTotalMismatch:    http.StatusUnprocessableEntity,
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Headers are already sent, nothing useful left to tell the client.
		return
	}
}

// writeError writes an error response with the given status code, code and message.
func writeError(w http.ResponseWriter, status int, code, message string, logger zerolog.Logger) {
	event := logger.Warn()
	if status >= http.StatusInternalServerError {
		event = logger.Error()
	}
	event.Str("code", code).Str("error", message).Int("status", status).Msg("handler error")
	writeJSON(w, status, model.ErrorResponse{Error: code, Message: message})
}

// writeServiceError translates err into a response. Domain errors keep their
// code and message; anything else is reported as an opaque internal error.
func writeServiceError(w http.ResponseWriter, err error, fallback string, logger zerolog.Logger) {
	var de *model.DomainError
	if errors.As(err, &de) {
		status, ok := statusByCode[de.Code]
		if !ok {
			status = http.StatusInternalServerError
		}
		writeError(w, status, de.Code, de.Message, logger)
		return
	}

	logger.Error().Err(err).Msg(fallback)
	writeError(w, http.StatusInternalServerError, model.ErrCodeInternalError, fallback, logger)
}

// pathUUID parses the named path value as a UUID.
func pathUUID(r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// pageParams reads limit and offset from the query string. Missing values
// are returned as zero so the service applies its defaults.
func pageParams(r *http.Request) (limit, offset int, err error) {
	if s := r.URL.Query().Get("limit"); s != "" {
		if limit, err = strconv.Atoi(s); err != nil {
			return 0, 0, model.NewDomainError(model.ErrCodeValidation, "invalid limit parameter")
		}
	}
	if s := r.URL.Query().Get("offset"); s != "" {
		if offset, err = strconv.Atoi(s); err != nil {
			return 0, 0, model.NewDomainError(model.ErrCodeValidation, "invalid offset parameter")
		}
	}
	return limit, offset, nil
}
