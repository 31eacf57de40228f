package qr

import (
	"bytes"
	"strings"
	"testing"
)

func TestStatusURL(t *testing.T) {
	got := StatusURL("http://localhost:3000/", "2025-101")
	if got != "http://localhost:3000/user/2025-101" {
		t.Fatalf("unexpected status url %q", got)
	}
}

func TestDataURLRoundTrip(t *testing.T) {
	dataURL, err := DataURL("http://localhost:3000", "2025-101")
	if err != nil {
		t.Fatalf("data url: %v", err)
	}
	if !strings.HasPrefix(dataURL, "data:image/png;base64,") {
		t.Fatalf("missing data url prefix: %.40s", dataURL)
	}

	png, err := PNGFromDataURL(dataURL)
	if err != nil {
		t.Fatalf("png decode: %v", err)
	}
	if !bytes.HasPrefix(png, []byte("\x89PNG")) {
		t.Fatalf("payload is not a PNG, got % x", png[:4])
	}
}
