package qr

import qrcode "github.com/skip2/go-qrcode"

// DefaultImageSize matches the 256px codes the front-ends render.
const DefaultImageSize = 256

// PNG renders a payload as a QR image. Medium error correction keeps the
// module count low enough for phone cameras while staying scannable.
func PNG(payload string, size int) ([]byte, error) {
	if size <= 0 {
		size = DefaultImageSize
	}
	return qrcode.Encode(payload, qrcode.Medium, size)
}
