package pix

import (
	"errors"
	"fmt"
	"strings"
)

const (
	StrategyKeyURLTemplate = "key_url_template"
	StrategyDisabled       = "disabled"
)

var ErrFallbackDisabled = errors.New("pix: local payload fallback is disabled")

// FallbackPolicy builds a PIX payload for a gateway transaction that came
// back without one.
type FallbackPolicy interface {
	Payload(transactionID string) (string, error)
}

// KeyURLTemplatePolicy derives the PIX key URL by formatting Template with
// the transaction id, e.g. "qrcode.example.com/pix/%s".
type KeyURLTemplatePolicy struct {
	Template     string
	MerchantName string
	MerchantCity string
}

func (p KeyURLTemplatePolicy) Payload(transactionID string) (string, error) {
	if transactionID == "" {
		return "", errors.New("pix: transaction id is required")
	}
	if !strings.Contains(p.Template, "%s") {
		return "", fmt.Errorf("pix: key URL template %q has no %%s placeholder", p.Template)
	}
	return Payload{
		KeyURL:       fmt.Sprintf(p.Template, transactionID),
		MerchantName: p.MerchantName,
		MerchantCity: p.MerchantCity,
	}.Build()
}

type DisabledPolicy struct{}

func (DisabledPolicy) Payload(string) (string, error) {
	return "", ErrFallbackDisabled
}

// NewFallbackPolicy selects a policy by strategy name. Merchant name and city
// are normalized to plain upper-case ASCII.
func NewFallbackPolicy(strategy, template, merchantName, merchantCity string) (FallbackPolicy, error) {
	switch strategy {
	case "", StrategyKeyURLTemplate:
		return KeyURLTemplatePolicy{
			Template:     template,
			MerchantName: NormalizeText(merchantName),
			MerchantCity: NormalizeText(merchantCity),
		}, nil
	case StrategyDisabled:
		return DisabledPolicy{}, nil
	default:
		return nil, fmt.Errorf("pix: unknown fallback strategy %q", strategy)
	}
}
