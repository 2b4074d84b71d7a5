package paymentgateway

import (
	"strings"

	"github.com/shopspring/decimal"

	errors "github.com/frahmantamala/pix-checkout/internal"
	"github.com/frahmantamala/pix-checkout/internal/core/common/validation"
)

type ChargeStatus string

const (
	ChargeStatusPending ChargeStatus = "pending"
	ChargeStatusPaid    ChargeStatus = "paid"
	ChargeStatusFailed  ChargeStatus = "failed"
)

// MapGatewayStatus folds the provider's status vocabulary into pending/paid/failed.
func MapGatewayStatus(status string) ChargeStatus {
	switch strings.ToLower(status) {
	case "paid", "approved", "completed":
		return ChargeStatusPaid
	case "refused", "failed", "canceled", "cancelled", "expired", "refunded", "chargedback":
		return ChargeStatusFailed
	default:
		return ChargeStatusPending
	}
}

type Payer struct {
	Name  string `json:"name"`
	CPF   string `json:"cpf"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type ChargeRequest struct {
	OrderID     string
	Amount      decimal.Decimal
	Description string
	Payer       Payer
}

func (r *ChargeRequest) Validate() error {
	validator := validation.NewValidator()
	validator.Field("order_id", r.OrderID).Required()
	validator.Field("amount", r.Amount).Positive(errors.ErrCodeInvalidAmount)
	validator.Field("payer_name", r.Payer.Name).Required()
	validator.Field("payer_cpf", r.Payer.CPF).Digits(11, errors.ErrCodeInvalidCPF)
	validator.Field("description", r.Description).MaxLength(255)
	if err := validator.Validate(); err != nil {
		return err
	}
	return nil
}

// Charge is a gateway charge. PixCode and QRImage may be empty while the
// provider is still generating them.
type Charge struct {
	ID        string          `json:"id"`
	OrderID   string          `json:"order_id"`
	Amount    decimal.Decimal `json:"amount"`
	Status    ChargeStatus    `json:"status"`
	RawStatus string          `json:"raw_status"`
	PixCode   string          `json:"pix_code,omitempty"`
	QRImage   string          `json:"qr_image,omitempty"`
}
