package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/imgio"
)

// Raster is an in-memory image artifact encoded as base64 PNG, ready to be
// returned to a client or written to disk.
type Raster struct {
	// Name identifies the artifact, e.g. "ssim_diff".
	Name string `json:"name"`

	// Width of the image in pixels.
	Width int `json:"width"`

	// Height of the image in pixels.
	Height int `json:"height"`

	// ImageBase64 is the PNG encoded as standard base64.
	ImageBase64 string `json:"image_base64"`

	// MimeType is always "image/png".
	MimeType string `json:"mime_type"`
}

// EncodePNG encodes img as PNG.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imgio.PNGEncoder()(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// NewRaster encodes img into a named Raster.
func NewRaster(name string, img image.Image) (*Raster, error) {
	data, err := EncodePNG(img)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	b := img.Bounds()
	return &Raster{
		Name:        name,
		Width:       b.Dx(),
		Height:      b.Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(data),
		MimeType:    "image/png",
	}, nil
}

// PNG decodes the raster payload back to PNG bytes.
func (r *Raster) PNG() ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(r.ImageBase64)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid base64: %w", r.Name, err)
	}
	return data, nil
}
