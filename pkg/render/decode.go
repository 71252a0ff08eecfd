package render

import (
	"bytes"
	"fmt"

	"github.com/disintegration/imaging"
)

// PNGDecoder decodes PNG (or any format registered with the image
// package) into non-premultiplied RGBA samples.
type PNGDecoder struct{}

var _ Decoder = PNGDecoder{}

// Decode implements Decoder.
func (PNGDecoder) Decode(data []byte) (Raster, error) {
	if len(data) == 0 {
		return Raster{}, fmt.Errorf("decode: empty image data")
	}
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return Raster{}, fmt.Errorf("decode: %w", err)
	}

	// Clone always yields a tightly packed NRGBA image (Stride == 4*width).
	nrgba := imaging.Clone(img)
	b := nrgba.Bounds()
	return Raster{Width: b.Dx(), Height: b.Dy(), Pix: nrgba.Pix}, nil
}
