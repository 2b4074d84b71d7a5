package checkout

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/frahmantamala/pix-checkout/internal"
	"github.com/frahmantamala/pix-checkout/internal/transport"
)

var errInvalidBody = errors.New("invalid request body")

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

// GeneratePix handles POST /generate-pix
func (h *Handler) GeneratePix(w http.ResponseWriter, r *http.Request) {
	visitor := internal.VisitorFromContext(r.Context())

	tx, err := h.Service.GeneratePix(r.Context(), visitor)
	if err != nil {
		h.WriteFailure(w, http.StatusInternalServerError, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, NewGeneratePixResponse(tx))
}

// ChargeWebhook handles POST /charge/webhook
func (h *Handler) ChargeWebhook(w http.ResponseWriter, r *http.Request) {
	var n WebhookNotification
	if err := json.NewDecoder(r.Body).Decode(&n); err != nil {
		h.WriteFailure(w, http.StatusBadRequest, errInvalidBody)
		return
	}

	if err := h.Service.RecordWebhook(r.Context(), n); err != nil {
		status := http.StatusInternalServerError
		if appErr, ok := internal.IsAppError(err); ok && appErr.Type == internal.ErrorTypeValidation {
			status = http.StatusBadRequest
		}
		h.WriteFailure(w, status, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, WebhookResponse{
		Success: true,
		Message: "Webhook processado com sucesso",
	})
}

// CheckPaymentStatus handles GET /check-payment-status/{orderId}
func (h *Handler) CheckPaymentStatus(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderId")

	body, err := h.Service.PaymentStatus(r.Context(), orderID)
	if err != nil {
		h.WriteFailure(w, http.StatusInternalServerError, err)
		return
	}

	h.WriteRawJSON(w, http.StatusOK, body)
}
