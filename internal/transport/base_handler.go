package transport

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/pix-checkout/internal"
	"github.com/frahmantamala/pix-checkout/pkg/logger"
)

// BaseHandler provides common functionality for HTTP handlers
type BaseHandler struct {
	Logger *slog.Logger
}

// NewBaseHandler creates a base handler with logger
func NewBaseHandler(lg *slog.Logger) *BaseHandler {
	if lg == nil {
		lg = logger.L()
	}
	return &BaseHandler{Logger: lg}
}

// WriteJSON writes a JSON response
func (h *BaseHandler) WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.Logger.Error("failed to encode JSON response", "error", err)
	}
}

// WriteRawJSON writes an already encoded JSON document unchanged.
func (h *BaseHandler) WriteRawJSON(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		h.Logger.Error("failed to write JSON response", "error", err)
	}
}

// WriteFailure writes the {success:false, error} envelope used by the
// checkout endpoints. The status is chosen by the caller; AppError codes are
// only logged.
func (h *BaseHandler) WriteFailure(w http.ResponseWriter, status int, err error) {
	attrs := []any{"status", status, "error", err}
	if appErr, ok := internal.IsAppError(err); ok {
		attrs = append(attrs, "type", appErr.Type, "code", appErr.Code)
	}
	h.Logger.Error("http error", attrs...)
	h.WriteJSON(w, status, map[string]interface{}{
		"success": false,
		"error":   err.Error(),
	})
}
