package qrcode

import (
	"encoding/base64"
	"errors"
	"fmt"

	goqrcode "github.com/skip2/go-qrcode"
)

const DefaultSize = 256

var ErrEmptyPayload = errors.New("qrcode: empty payload")

// Renderer turns a PIX payload string into a PNG QR code.
type Renderer struct {
	size  int
	level goqrcode.RecoveryLevel
}

func NewRenderer(size int) *Renderer {
	if size <= 0 {
		size = DefaultSize
	}
	return &Renderer{size: size, level: goqrcode.Medium}
}

func (r *Renderer) Render(payload string) ([]byte, error) {
	if payload == "" {
		return nil, ErrEmptyPayload
	}
	png, err := goqrcode.Encode(payload, r.level, r.size)
	if err != nil {
		return nil, fmt.Errorf("failed to encode QR code: %w", err)
	}
	return png, nil
}

// RenderDataURI renders payload and returns it ready to be used as an <img> src.
func (r *Renderer) RenderDataURI(payload string) (string, error) {
	png, err := r.Render(payload)
	if err != nil {
		return "", err
	}
	return DataURI(png), nil
}

func DataURI(png []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
}
