package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	paymentgatewaytypes "github.com/frahmantamala/pix-checkout/internal/core/datamodel/paymentgateway"
	"github.com/frahmantamala/pix-checkout/internal/core/events"
)

type Message struct {
	Title           string `json:"title"`
	Text            string `json:"text"`
	IsTimeSensitive bool   `json:"isTimeSensitive"`
}

// Result describes the outcome of a delivery attempt. Callers log it and move
// on; a failed notification never fails the operation that triggered it.
type Result struct {
	Delivered  bool
	Skipped    bool
	StatusCode int
	Err        error
}

type Config struct {
	WebhookURL string
	Timeout    time.Duration
}

// Notifier posts sale alerts to a push-notification webhook.
type Notifier struct {
	webhookURL string
	httpClient *http.Client
	logger     *slog.Logger
}

func New(config Config, logger *slog.Logger) *Notifier {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Notifier{
		webhookURL: config.WebhookURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

func (n *Notifier) Enabled() bool {
	return n.webhookURL != ""
}

// Notify makes a single delivery attempt. It never returns an error.
func (n *Notifier) Notify(ctx context.Context, msg Message) Result {
	if !n.Enabled() {
		return Result{Skipped: true}
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return n.failed(msg, Result{Err: fmt.Errorf("failed to marshal notification: %w", err)})
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return n.failed(msg, Result{Err: fmt.Errorf("failed to create request: %w", err)})
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return n.failed(msg, Result{Err: fmt.Errorf("HTTP request failed: %w", err)})
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return n.failed(msg, Result{
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("notification endpoint returned status %d", resp.StatusCode),
		})
	}

	n.logger.Info("notification sent", "title", msg.Title, "status_code", resp.StatusCode)
	return Result{Delivered: true, StatusCode: resp.StatusCode}
}

func (n *Notifier) failed(msg Message, res Result) Result {
	n.logger.Warn("notification not delivered",
		"title", msg.Title,
		"status_code", res.StatusCode,
		"error", res.Err)
	return res
}

// Subscribe wires sale alerts to checkout events.
func (n *Notifier) Subscribe(bus *events.EventBus) {
	bus.Subscribe(events.EventTypeChargeCreated, n.handleChargeCreated)
	bus.Subscribe(events.EventTypeChargeStatusChanged, n.handleStatusChanged)
}

func (n *Notifier) handleChargeCreated(ctx context.Context, event events.Event) error {
	e, ok := event.(*events.ChargeCreatedEvent)
	if !ok {
		return fmt.Errorf("unexpected event %T", event)
	}
	n.Notify(ctx, ChargeCreatedMessage(e))
	return nil
}

func (n *Notifier) handleStatusChanged(ctx context.Context, event events.Event) error {
	e, ok := event.(*events.ChargeStatusChangedEvent)
	if !ok {
		return fmt.Errorf("unexpected event %T", event)
	}
	if paymentgatewaytypes.MapGatewayStatus(e.Status) != paymentgatewaytypes.ChargeStatusPaid {
		return nil
	}
	n.Notify(ctx, ChargePaidMessage(e))
	return nil
}

func ChargeCreatedMessage(e *events.ChargeCreatedEvent) Message {
	name := e.CustomerName
	if name == "" {
		name = "Cliente"
	}
	return Message{
		Title:           "🎉 Nova Venda PIX",
		Text:            fmt.Sprintf("Cliente: %s\nValor: R$ %s\nID: %s", name, e.Amount.StringFixed(2), orNA(e.TransactionID)),
		IsTimeSensitive: true,
	}
}

func ChargePaidMessage(e *events.ChargeStatusChangedEvent) Message {
	return Message{
		Title:           "✅ Venda Aprovada",
		Text:            fmt.Sprintf("Pedido: %s\nValor: R$ %s", e.OrderID, orNA(e.Amount)),
		IsTimeSensitive: true,
	}
}

// orNA fills fields a webhook may leave out.
func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
