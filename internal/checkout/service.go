package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/frahmantamala/pix-checkout/internal"
	"github.com/frahmantamala/pix-checkout/internal/core/common/validation"
	"github.com/frahmantamala/pix-checkout/internal/core/datamodel/identity"
	paymentgatewaytypes "github.com/frahmantamala/pix-checkout/internal/core/datamodel/paymentgateway"
	"github.com/frahmantamala/pix-checkout/internal/core/events"
	"github.com/frahmantamala/pix-checkout/internal/lookup"
	"github.com/frahmantamala/pix-checkout/internal/paymentgateway"
	"github.com/frahmantamala/pix-checkout/internal/pix"
	"github.com/frahmantamala/pix-checkout/pkg/logger"
)

// ServiceAPI is what the HTTP handlers need from checkout.
type ServiceAPI interface {
	GeneratePix(ctx context.Context, visitor *internal.Visitor) (*Transaction, error)
	PaymentStatus(ctx context.Context, orderID string) (json.RawMessage, error)
	RecordWebhook(ctx context.Context, n WebhookNotification) error
}

type Config struct {
	Amount       decimal.Decimal
	Description  string
	DefaultEmail string
	DefaultPhone string
	// PollDelay is waited once before re-querying a charge without PIX code.
	PollDelay time.Duration
}

type Service struct {
	config    Config
	gateway   Gateway
	cpfLookup lookup.CPFLookup
	sessions  IdentitySaver
	renderer  QRRenderer
	fallback  pix.FallbackPolicy
	publisher events.Publisher
	logger    *slog.Logger
}

func NewService(
	config Config,
	gateway Gateway,
	cpfLookup lookup.CPFLookup,
	sessions IdentitySaver,
	renderer QRRenderer,
	fallback pix.FallbackPolicy,
	publisher events.Publisher,
	logger *slog.Logger,
) *Service {
	return &Service{
		config:    config,
		gateway:   gateway,
		cpfLookup: cpfLookup,
		sessions:  sessions,
		renderer:  renderer,
		fallback:  fallback,
		publisher: publisher,
		logger:    logger,
	}
}

// GeneratePix creates a charge for the configured amount and makes sure the
// result carries a PIX code and a QR image.
func (s *Service) GeneratePix(ctx context.Context, visitor *internal.Visitor) (*Transaction, error) {
	if err := validation.ValidateAmount(s.config.Amount); err != nil {
		return nil, err
	}

	customer := s.resolveCustomer(ctx, visitor)
	log := logger.From(ctx)

	req := &paymentgatewaytypes.ChargeRequest{
		OrderID:     uuid.NewString(),
		Amount:      s.config.Amount,
		Description: s.config.Description,
		Payer: paymentgatewaytypes.Payer{
			Name:  customer.Name,
			CPF:   lookup.NormalizeCPF(customer.CPF),
			Email: s.config.DefaultEmail,
			Phone: s.config.DefaultPhone,
		},
	}

	log.Info("creating pix charge", "order_id", req.OrderID, "amount", req.Amount.StringFixed(2))

	charge, err := s.gateway.CreateCharge(ctx, req)
	if err != nil {
		log.Error("failed to create charge", "order_id", req.OrderID, "error", err)
		return nil, internal.NewExternalError("failed to create charge", internal.ErrCodeChargeCreationFailed, err)
	}

	if err := s.publisher.Publish(ctx, events.NewChargeCreatedEvent(charge.ID, req.OrderID, customer.Name, req.Amount)); err != nil {
		log.Warn("failed to publish charge created event", "transaction_id", charge.ID, "error", err)
	}

	tx := &Transaction{
		ID:       charge.ID,
		OrderID:  charge.OrderID,
		Amount:   req.Amount,
		Customer: customer,
		Status:   charge.Status,
		PixCode:  charge.PixCode,
		QRImage:  charge.QRImage,
	}
	if tx.OrderID == "" {
		tx.OrderID = req.OrderID
	}

	if tx.PixCode == "" {
		log.Info("charge has no pix code yet, waiting", "transaction_id", tx.ID, "delay", s.config.PollDelay)
		if err := s.requery(ctx, tx); err != nil {
			return nil, err
		}
	}

	if tx.PixCode == "" {
		code, err := s.fallback.Payload(tx.ID)
		if err != nil {
			log.Error("failed to build fallback pix code", "transaction_id", tx.ID, "error", err)
			return nil, internal.NewPayloadBuildError("failed to build pix code", err)
		}
		tx.PixCode = code
		tx.QRImage = ""
		tx.Fallback = true
		log.Info("built pix code locally", "transaction_id", tx.ID)
	}

	if tx.QRImage == "" {
		img, err := s.renderer.RenderDataURI(tx.PixCode)
		if err != nil {
			log.Error("failed to render qr code", "transaction_id", tx.ID, "error", err)
			return nil, internal.NewPayloadBuildError("failed to render qr code", err)
		}
		tx.QRImage = img
	}

	log.Info("pix generated",
		"transaction_id", tx.ID,
		"order_id", tx.OrderID,
		"fallback", tx.Fallback)

	return tx, nil
}

// requery waits PollDelay and asks the gateway once more. Lookup errors are
// logged and leave tx untouched.
func (s *Service) requery(ctx context.Context, tx *Transaction) error {
	if err := ctx.Err(); err != nil {
		return internal.NewInternalError("request cancelled while waiting for pix code", err)
	}

	timer := time.NewTimer(s.config.PollDelay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return internal.NewInternalError("request cancelled while waiting for pix code", ctx.Err())
	case <-timer.C:
	}

	log := logger.From(ctx)
	charge, err := s.gateway.GetCharge(ctx, tx.ID)
	if err != nil {
		log.Warn("failed to re-query charge", "transaction_id", tx.ID, "error", err)
		return nil
	}
	if charge.PixCode == "" {
		log.Warn("pix code still unavailable", "transaction_id", tx.ID)
		return nil
	}

	tx.PixCode = charge.PixCode
	tx.QRImage = charge.QRImage
	tx.Status = charge.Status
	return nil
}

// resolveCustomer prefers a known session identity, then a CPF found in the
// Referer, then the placeholder.
func (s *Service) resolveCustomer(ctx context.Context, visitor *internal.Visitor) identity.Identity {
	log := logger.From(ctx)

	if visitor == nil {
		log.Warn("no visitor in context, using placeholder identity")
		return identity.Placeholder()
	}
	if visitor.Known && !visitor.Identity.IsPlaceholder() {
		log.Info("using session identity")
		return visitor.Identity
	}

	cpf, ok := lookup.ExtractCPFFromURL(visitor.Referer)
	if ok {
		id, err := s.cpfLookup.LookupByCPF(ctx, cpf)
		switch {
		case err == nil:
			if s.sessions != nil {
				s.sessions.SaveIdentity(ctx, *id)
			}
			log.Info("identity loaded from referer")
			return *id
		case errors.Is(err, lookup.ErrNotFound):
			log.Warn("no identity for referer cpf")
		default:
			log.Error("cpf lookup failed", "error", err)
		}
	}

	log.Warn("using placeholder identity")
	return identity.Placeholder()
}

// PaymentStatus returns the gateway's JSON for the charge as-is.
func (s *Service) PaymentStatus(ctx context.Context, orderID string) (json.RawMessage, error) {
	if orderID == "" {
		return nil, internal.NewValidationError("order id is required", internal.ErrCodeValidationFailed)
	}

	body, err := s.gateway.ChargeStatus(ctx, orderID)
	if err != nil {
		logger.From(ctx).Error("failed to check payment status", "order_id", orderID, "error", err)
		if errors.Is(err, paymentgateway.ErrChargeNotFound) {
			return nil, err
		}
		return nil, internal.NewExternalError("failed to check payment status", internal.ErrCodeGatewayUnavailable, err)
	}
	return body, nil
}

// RecordWebhook logs a gateway status notification and publishes it. Nothing
// is stored. A notification without an order id is rejected.
func (s *Service) RecordWebhook(ctx context.Context, n WebhookNotification) error {
	log := logger.From(ctx)
	v := validation.NewValidator()
	v.Field("orderId", n.OrderID).Required()
	if appErr := v.Validate(); appErr != nil {
		log.Warn("rejected charge status notification", "error", appErr)
		return appErr
	}

	log.Info("charge status received",
		"order_id", n.OrderID,
		"status", n.Status,
		"amount", n.AmountString())

	if err := s.publisher.Publish(ctx, events.NewChargeStatusChangedEvent(n.OrderID, n.Status, n.AmountString())); err != nil {
		log.Warn("failed to publish charge status event", "order_id", n.OrderID, "error", err)
	}
	return nil
}
