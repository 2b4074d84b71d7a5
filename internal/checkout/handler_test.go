package checkout_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"

	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"

	"github.com/frahmantamala/pix-checkout/internal"
	"github.com/frahmantamala/pix-checkout/internal/checkout"
	"github.com/frahmantamala/pix-checkout/internal/transport"
)

type stubService struct {
	tx         *checkout.Transaction
	err        error
	visitor    *internal.Visitor
	status     json.RawMessage
	webhooks   []checkout.WebhookNotification
	webhookErr error
	lastOrder  string
}

func (s *stubService) GeneratePix(ctx context.Context, v *internal.Visitor) (*checkout.Transaction, error) {
	s.visitor = v
	return s.tx, s.err
}

func (s *stubService) PaymentStatus(ctx context.Context, orderID string) (json.RawMessage, error) {
	s.lastOrder = orderID
	return s.status, s.err
}

func (s *stubService) RecordWebhook(ctx context.Context, n checkout.WebhookNotification) error {
	if s.webhookErr != nil {
		return s.webhookErr
	}
	s.webhooks = append(s.webhooks, n)
	return nil
}

var _ = Describe("Handler", func() {
	var (
		stub   *stubService
		router *chi.Mux
	)

	BeforeEach(func() {
		stub = &stubService{}
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		h := checkout.NewHandler(transport.NewBaseHandler(logger), stub)
		router = chi.NewRouter()
		router.Post("/generate-pix", h.GeneratePix)
		router.Post("/charge/webhook", h.ChargeWebhook)
		router.Get("/check-payment-status/{orderId}", h.CheckPaymentStatus)
	})

	decode := func(rec *httptest.ResponseRecorder) map[string]interface{} {
		var body map[string]interface{}
		Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
		return body
	}

	Describe("POST /generate-pix", func() {
		It("returns the PIX data", func() {
			stub.tx = &checkout.Transaction{
				ID:      "tx-1",
				OrderID: "order-1",
				Amount:  decimal.RequireFromString("137.46"),
				PixCode: "000201",
				QRImage: "data:image/png;base64,QR",
			}
			req := httptest.NewRequest(http.MethodPost, "/generate-pix", nil)
			visitor := &internal.Visitor{Referer: "https://shop.example.com/12345678901"}
			req = req.WithContext(internal.ContextWithVisitor(req.Context(), visitor))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			Expect(rec.Code).To(Equal(http.StatusOK))
			body := decode(rec)
			Expect(body).To(HaveKeyWithValue("success", true))
			Expect(body).To(HaveKeyWithValue("pixCode", "000201"))
			Expect(body).To(HaveKeyWithValue("pixQrCode", "data:image/png;base64,QR"))
			Expect(body).To(HaveKeyWithValue("orderId", "order-1"))
			Expect(body).To(HaveKeyWithValue("amount", 137.46))
			Expect(body).To(HaveKeyWithValue("transactionId", "tx-1"))
			Expect(stub.visitor).To(BeIdenticalTo(visitor))
		})

		It("returns 500 with the error on failure", func() {
			stub.err = internal.NewExternalError("failed to create charge", internal.ErrCodeChargeCreationFailed, errors.New("boom"))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/generate-pix", nil))

			Expect(rec.Code).To(Equal(http.StatusInternalServerError))
			body := decode(rec)
			Expect(body).To(HaveKeyWithValue("success", false))
			Expect(body["error"]).To(ContainSubstring("failed to create charge"))
		})
	})

	Describe("POST /charge/webhook", func() {
		It("acknowledges the notification", func() {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/charge/webhook", strings.NewReader(`{"orderId":"order-1","status":"paid","amount":137.46}`))
			router.ServeHTTP(rec, req)

			Expect(rec.Code).To(Equal(http.StatusOK))
			body := decode(rec)
			Expect(body).To(HaveKeyWithValue("success", true))
			Expect(body).To(HaveKey("message"))
			Expect(stub.webhooks).To(HaveLen(1))
			Expect(stub.webhooks[0].OrderID).To(Equal("order-1"))
			Expect(stub.webhooks[0].AmountString()).To(Equal("137.46"))
		})

		It("rejects a malformed body", func() {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/charge/webhook", strings.NewReader(`{not json`)))

			Expect(rec.Code).To(Equal(http.StatusBadRequest))
			Expect(decode(rec)).To(HaveKeyWithValue("success", false))
			Expect(stub.webhooks).To(BeEmpty())
		})

		It("returns 400 when the notification is invalid", func() {
			stub.webhookErr = internal.NewValidationFieldError("orderId", "orderId is required", internal.ErrCodeValidationFailed)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/charge/webhook", strings.NewReader(`{"status":"paid"}`)))

			Expect(rec.Code).To(Equal(http.StatusBadRequest))
			body := decode(rec)
			Expect(body).To(HaveKeyWithValue("success", false))
			Expect(body).To(HaveKeyWithValue("error", "orderId is required"))
		})

		It("returns 500 when recording fails for another reason", func() {
			stub.webhookErr = errors.New("bus closed")
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/charge/webhook", strings.NewReader(`{"orderId":"order-1"}`)))

			Expect(rec.Code).To(Equal(http.StatusInternalServerError))
		})
	})

	Describe("GET /check-payment-status/{orderId}", func() {
		It("proxies the gateway JSON verbatim", func() {
			stub.status = json.RawMessage(`{"id":"tx-1","status":"waiting_payment"}`)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/check-payment-status/tx-1", nil))

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Header().Get("Content-Type")).To(Equal("application/json"))
			Expect(rec.Body.String()).To(Equal(`{"id":"tx-1","status":"waiting_payment"}`))
			Expect(stub.lastOrder).To(Equal("tx-1"))
		})

		It("returns 500 when the gateway fails", func() {
			stub.err = errors.New("gateway returned status 503")
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/check-payment-status/tx-1", nil))

			Expect(rec.Code).To(Equal(http.StatusInternalServerError))
			Expect(decode(rec)).To(HaveKeyWithValue("success", false))
		})

		It("reports unknown charges as 500 too", func() {
			stub.err = internal.ErrChargeNotFound
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/check-payment-status/missing", nil))

			Expect(rec.Code).To(Equal(http.StatusInternalServerError))
			Expect(decode(rec)).To(HaveKeyWithValue("error", "charge not found"))
		})
	})
})
