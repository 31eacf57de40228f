// Package qr builds the per-scout QR code that links back to the public
// status page.
package qr

import (
	"encoding/base64"
	"fmt"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

const dataURLPrefix = "data:image/png;base64,"

// StatusURL is the link a scanned QR code opens.
func StatusURL(baseURL, userID string) string {
	return strings.TrimRight(baseURL, "/") + "/user/" + userID
}

// DataURL renders the status-page link as a PNG QR code wrapped in a
// base64 data URL, ready to embed in responses and email bodies.
func DataURL(baseURL, userID string) (string, error) {
	png, err := qrcode.Encode(StatusURL(baseURL, userID), qrcode.Medium, 256)
	if err != nil {
		return "", fmt.Errorf("qr encode: %w", err)
	}
	return dataURLPrefix + base64.StdEncoding.EncodeToString(png), nil
}

// PNGFromDataURL recovers the raw PNG bytes from a QR data URL, used when
// attaching the image to registration email.
func PNGFromDataURL(dataURL string) ([]byte, error) {
	encoded := strings.TrimPrefix(dataURL, dataURLPrefix)
	if idx := strings.IndexByte(encoded, ','); idx >= 0 && strings.HasPrefix(encoded, "data:") {
		encoded = encoded[idx+1:]
	}
	png, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("qr data url decode: %w", err)
	}
	return png, nil
}
