package render

import (
	"fmt"
	"image"

	"github.com/skip2/go-qrcode"
)

const defaultQRCodeSizePx = 256

// GenerateQRCodeImage returns a QR code image for the given payload.
// If payload is empty, it returns (nil, nil).
func GenerateQRCodeImage(payload string, sizePx int) (image.Image, error) {
	if payload == "" {
		return nil, nil
	}
	if sizePx <= 0 {
		sizePx = defaultQRCodeSizePx
	}

	qrCode, err := qrcode.New(payload, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("encode qr code: %w", err)
	}
	qrCode.DisableBorder = true

	return qrCode.Image(sizePx), nil
}

// GenerateQRCodePNG is GenerateQRCodeImage encoded as PNG bytes.
func GenerateQRCodePNG(payload string, sizePx int) ([]byte, error) {
	if sizePx <= 0 {
		sizePx = defaultQRCodeSizePx
	}
	data, err := qrcode.Encode(payload, qrcode.Medium, sizePx)
	if err != nil {
		return nil, fmt.Errorf("encode qr code: %w", err)
	}
	return data, nil
}
