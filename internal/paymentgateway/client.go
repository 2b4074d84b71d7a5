package paymentgateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/frahmantamala/pix-checkout/internal"
	paymentgatewaytypes "github.com/frahmantamala/pix-checkout/internal/core/datamodel/paymentgateway"
)

// ErrChargeNotFound is returned when the gateway answers 404 for a charge.
var ErrChargeNotFound = internal.ErrChargeNotFound

type Config struct {
	BaseURL    string
	SecretKey  string
	CompanyID  string
	WebhookURL string
	Timeout    time.Duration
}

// Client is an HTTP client for the PIX payment gateway. Requests are
// authenticated with HTTP Basic auth using the secret key.
type Client struct {
	baseURL    string
	secretKey  string
	companyID  string
	webhookURL string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewClient(config Config, logger *slog.Logger) *Client {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(config.BaseURL, "/"),
		secretKey:  config.SecretKey,
		companyID:  config.CompanyID,
		webhookURL: config.WebhookURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type customerDocument struct {
	Type   string `json:"type"`
	Number string `json:"number"`
}

type customerPayload struct {
	Name     string           `json:"name"`
	Email    string           `json:"email"`
	Phone    string           `json:"phone"`
	Document customerDocument `json:"document"`
}

type itemPayload struct {
	Title     string `json:"title"`
	UnitPrice int64  `json:"unitPrice"`
	Quantity  int    `json:"quantity"`
	Tangible  bool   `json:"tangible"`
}

type createTransactionPayload struct {
	Amount        int64             `json:"amount"`
	PaymentMethod string            `json:"paymentMethod"`
	Customer      customerPayload   `json:"customer"`
	Items         []itemPayload     `json:"items"`
	ExternalRef   string            `json:"externalRef"`
	PostbackURL   string            `json:"postbackUrl,omitempty"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

type transactionResponse struct {
	ID          json.RawMessage `json:"id"`
	Status      string          `json:"status"`
	Amount      int64           `json:"amount"`
	ExternalRef string          `json:"externalRef"`
	Pix         *struct {
		QRCode      string `json:"qrcode"`
		QRCodeImage string `json:"qrcodeImage"`
	} `json:"pix"`
}

func (t *transactionResponse) toCharge() *paymentgatewaytypes.Charge {
	charge := &paymentgatewaytypes.Charge{
		ID:        strings.Trim(string(t.ID), `"`),
		OrderID:   t.ExternalRef,
		Amount:    decimal.New(t.Amount, -2),
		Status:    paymentgatewaytypes.MapGatewayStatus(t.Status),
		RawStatus: t.Status,
	}
	if t.Pix != nil {
		charge.PixCode = t.Pix.QRCode
		charge.QRImage = t.Pix.QRCodeImage
	}
	return charge
}

// CreateCharge creates a PIX charge. The returned charge may not carry a PIX
// code yet; callers re-query with GetCharge.
func (c *Client) CreateCharge(ctx context.Context, req *paymentgatewaytypes.ChargeRequest) (*paymentgatewaytypes.Charge, error) {
	if err := req.Validate(); err != nil {
		c.logger.Error("charge request validation failed", "error", err)
		return nil, fmt.Errorf("validation error: %w", err)
	}

	cents := req.Amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
	payload := createTransactionPayload{
		Amount:        cents,
		PaymentMethod: "pix",
		Customer: customerPayload{
			Name:     req.Payer.Name,
			Email:    req.Payer.Email,
			Phone:    req.Payer.Phone,
			Document: customerDocument{Type: "cpf", Number: req.Payer.CPF},
		},
		Items: []itemPayload{{
			Title:     req.Description,
			UnitPrice: cents,
			Quantity:  1,
			Tangible:  false,
		}},
		ExternalRef: req.OrderID,
		PostbackURL: c.webhookURL,
	}
	if c.companyID != "" {
		payload.Metadata = map[string]string{"company_id": c.companyID}
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal charge request: %w", err)
	}

	c.logger.Info("creating gateway charge",
		"order_id", req.OrderID,
		"amount_cents", cents)

	body, status, err := c.do(ctx, http.MethodPost, "/transactions", jsonData)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK && status != http.StatusCreated {
		c.logger.Error("gateway rejected charge",
			"order_id", req.OrderID,
			"status_code", status,
			"response", string(body))
		return nil, fmt.Errorf("gateway returned status %d: %s", status, truncate(string(body), 200))
	}

	var resp transactionResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	charge := resp.toCharge()
	if charge.ID == "" {
		return nil, errors.New("gateway response has no transaction id")
	}
	if charge.OrderID == "" {
		charge.OrderID = req.OrderID
	}

	c.logger.Info("gateway charge created",
		"transaction_id", charge.ID,
		"order_id", charge.OrderID,
		"status", charge.RawStatus,
		"has_pix_code", charge.PixCode != "")

	return charge, nil
}

// GetCharge fetches the current state of a charge.
func (c *Client) GetCharge(ctx context.Context, transactionID string) (*paymentgatewaytypes.Charge, error) {
	body, err := c.ChargeStatus(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	var resp transactionResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return resp.toCharge(), nil
}

// ChargeStatus returns the raw gateway representation of a charge.
func (c *Client) ChargeStatus(ctx context.Context, transactionID string) (json.RawMessage, error) {
	if transactionID == "" {
		return nil, errors.New("transaction id is required")
	}

	c.logger.Info("getting gateway charge", "transaction_id", transactionID)

	body, status, err := c.do(ctx, http.MethodGet, "/transactions/"+url.PathEscape(transactionID), nil)
	if err != nil {
		return nil, err
	}
	switch {
	case status == http.StatusNotFound:
		return nil, ErrChargeNotFound
	case status != http.StatusOK:
		return nil, fmt.Errorf("gateway returned status %d", status)
	case !json.Valid(body):
		return nil, errors.New("gateway returned invalid JSON")
	}
	return body, nil
}

// Ping checks that the gateway base URL answers at all.
func (c *Client) Ping(ctx context.Context) error {
	_, _, err := c.do(ctx, http.MethodHead, "", nil)
	return err
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte) ([]byte, int, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	httpReq.SetBasicAuth(c.secretKey, "x")
	httpReq.Header.Set("Accept", "application/json")
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Error("gateway request failed", "method", method, "path", path, "error", err)
		return nil, 0, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response: %w", err)
	}
	return body, resp.StatusCode, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
