package library

import (
	"bytes"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"github.com/nfnt/resize"
)

const (
	maxDimension   = 800
	jpegQuality    = 80
	resizeOverSize = 2 * 1024 * 1024
)

// downscaleImage re-encodes an upload as a bounded JPEG. Images already within
// bounds pass through untouched so small uploads keep their original format.
func downscaleImage(data []byte) ([]byte, string, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", err
	}

	bounds := img.Bounds()
	needsResize := bounds.Dx() > maxDimension ||
		bounds.Dy() > maxDimension ||
		len(data) > resizeOverSize
	if !needsResize {
		return data, "", nil
	}

	scaled := resize.Thumbnail(maxDimension, maxDimension, img, resize.Lanczos3)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, scaled, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), "image/jpeg", nil
}
