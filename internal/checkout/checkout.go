package checkout

import (
	"context"
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/frahmantamala/pix-checkout/internal/core/datamodel/identity"
	paymentgatewaytypes "github.com/frahmantamala/pix-checkout/internal/core/datamodel/paymentgateway"
)

// Gateway is the subset of the payment gateway client used by checkout.
type Gateway interface {
	CreateCharge(ctx context.Context, req *paymentgatewaytypes.ChargeRequest) (*paymentgatewaytypes.Charge, error)
	GetCharge(ctx context.Context, transactionID string) (*paymentgatewaytypes.Charge, error)
	ChargeStatus(ctx context.Context, transactionID string) (json.RawMessage, error)
}

type QRRenderer interface {
	RenderDataURI(payload string) (string, error)
}

type IdentitySaver interface {
	SaveIdentity(ctx context.Context, id identity.Identity)
}

// Transaction is the outcome of one generate-pix request. It lives only for
// the duration of the request.
type Transaction struct {
	ID       string
	OrderID  string
	Amount   decimal.Decimal
	Customer identity.Identity
	Status   paymentgatewaytypes.ChargeStatus
	PixCode  string
	QRImage  string
	// Fallback is set when the PIX code was built locally.
	Fallback bool
}

type WebhookNotification struct {
	OrderID string           `json:"orderId"`
	Status  string           `json:"status"`
	Amount  *decimal.Decimal `json:"amount"`
}

func (n WebhookNotification) AmountString() string {
	if n.Amount == nil {
		return ""
	}
	return n.Amount.StringFixed(2)
}
