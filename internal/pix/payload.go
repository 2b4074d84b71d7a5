package pix

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	IDPayloadFormat      = "00"
	IDPointOfInitiation  = "01"
	IDMerchantAccount    = "26"
	IDMerchantCategory   = "52"
	IDCurrency           = "53"
	IDCountry            = "58"
	IDMerchantName       = "59"
	IDMerchantCity       = "60"
	IDAdditionalData     = "62"
	IDCRC                = "63"
	idAccountGUI         = "00"
	idAccountURL         = "25"
	idAdditionalRefLabel = "05"

	PixGUI                = "br.gov.bcb.pix"
	CurrencyBRL           = "986"
	CountryBR             = "BR"
	DefaultReferenceLabel = "***"

	crcPrefix = IDCRC + "04"
)

var ErrChecksumMismatch = errors.New("pix: checksum mismatch")

// Payload describes a dynamic PIX "Copy and Paste" code whose key is a URL
// served by the payment provider.
type Payload struct {
	KeyURL         string
	MerchantName   string
	MerchantCity   string
	ReferenceLabel string
}

// BuildPayload assembles a dynamic PIX payload with the default reference label.
func BuildPayload(keyURL, merchantName, merchantCity string) (string, error) {
	return Payload{KeyURL: keyURL, MerchantName: merchantName, MerchantCity: merchantCity}.Build()
}

// Build encodes the payload and appends its CRC.
func (p Payload) Build() (string, error) {
	if p.KeyURL == "" {
		return "", errors.New("pix: key URL is required")
	}

	account, err := Template(IDMerchantAccount,
		Field{ID: idAccountGUI, Value: PixGUI},
		Field{ID: idAccountURL, Value: p.KeyURL},
	)
	if err != nil {
		return "", err
	}

	label := p.ReferenceLabel
	if label == "" {
		label = DefaultReferenceLabel
	}
	additional, err := Template(IDAdditionalData, Field{ID: idAdditionalRefLabel, Value: label})
	if err != nil {
		return "", err
	}

	body, err := Encode(
		Field{ID: IDPayloadFormat, Value: "01"},
		Field{ID: IDPointOfInitiation, Value: "12"},
		account,
		Field{ID: IDMerchantCategory, Value: "0000"},
		Field{ID: IDCurrency, Value: CurrencyBRL},
		Field{ID: IDCountry, Value: CountryBR},
		Field{ID: IDMerchantName, Value: p.MerchantName},
		Field{ID: IDMerchantCity, Value: p.MerchantCity},
		additional,
	)
	if err != nil {
		return "", err
	}

	prefix := body + crcPrefix
	return prefix + Checksum(prefix), nil
}

// Decoded is the information recovered from a payload by Parse.
type Decoded struct {
	KeyURL         string
	MerchantName   string
	MerchantCity   string
	ReferenceLabel string
	Checksum       string
	Fields         []Field
}

// Parse verifies the trailing CRC of payload and decodes its fields.
func Parse(payload string) (*Decoded, error) {
	if len(payload) < len(crcPrefix)+4 {
		return nil, fmt.Errorf("%w: payload too short", ErrMalformedTLV)
	}
	prefix, sum := payload[:len(payload)-4], payload[len(payload)-4:]
	if !strings.HasSuffix(prefix, crcPrefix) {
		return nil, fmt.Errorf("%w: missing CRC field", ErrMalformedTLV)
	}
	if want := Checksum(prefix); want != strings.ToUpper(sum) {
		return nil, fmt.Errorf("%w: got %s, want %s", ErrChecksumMismatch, sum, want)
	}

	fields, err := ParseFields(payload)
	if err != nil {
		return nil, err
	}

	d := &Decoded{Checksum: sum, Fields: fields}
	d.MerchantName, _ = Lookup(fields, IDMerchantName)
	d.MerchantCity, _ = Lookup(fields, IDMerchantCity)

	if account, ok := Lookup(fields, IDMerchantAccount); ok {
		sub, err := ParseFields(account)
		if err != nil {
			return nil, fmt.Errorf("merchant account: %w", err)
		}
		d.KeyURL, _ = Lookup(sub, idAccountURL)
	}
	if additional, ok := Lookup(fields, IDAdditionalData); ok {
		sub, err := ParseFields(additional)
		if err != nil {
			return nil, fmt.Errorf("additional data: %w", err)
		}
		d.ReferenceLabel, _ = Lookup(sub, idAdditionalRefLabel)
	}

	return d, nil
}

// NormalizeText strips diacritics and upper-cases s, e.g. "São Paulo" -> "SAO PAULO".
func NormalizeText(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToUpper(strings.TrimSpace(out))
}
