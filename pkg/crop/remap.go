package crop

import (
	"math"
	"regexp"
	"strings"

	errs "github.com/matzehuels/svgcrop/pkg/errors"
)

// Inner returns the region of a square tile that a document with the given
// viewBox actually occupies. Browsers letterbox the drawing to keep its
// aspect ratio and center it, so one dimension may be shorter than size.
func Inner(vb ViewBox, size int) (col, row, width, height int) {
	ratio := vb.Ratio()
	width = int(math.Min(float64(size), math.Ceil(float64(size)*ratio)))
	height = int(math.Min(float64(size), math.Ceil(float64(size)/ratio)))
	col = (size - width) / 2
	row = (size - height) / 2
	return col, row, width, height
}

// Remap crops the tile bitmap of document i to its drawn region, finds the
// opaque bounds and maps them back into viewBox coordinates, padded
// symmetrically by scale.
func Remap(vb ViewBox, tile *Bitmap, size int, scale float64, i int) (ViewBox, error) {
	col, row, w, h := Inner(vb, size)
	box, ok := tile.Crop(col, row, w, h).Bounds()
	if !ok {
		return ViewBox{}, errs.AtIndex(errs.ErrCodeNoOpaque, i,
			"Error processing svg #%d: no non-transparent pixels found", i)
	}
	return remapBox(vb, box, w, h, scale).Round(), nil
}

// remapBox converts a pixel box inside a w×h drawing into viewBox units.
func remapBox(vb ViewBox, box Box, w, h int, scale float64) ViewBox {
	newWidth := vb.Width / float64(w) * float64(box.Right-box.Left)
	newHeight := vb.Height / float64(h) * float64(box.Bottom-box.Top)
	return ViewBox{
		X:      vb.X + vb.Width*(float64(box.Left)/float64(w)) - newWidth*(scale-1)/2,
		Y:      vb.Y + vb.Height*(float64(box.Top)/float64(h)) - newHeight*(scale-1)/2,
		Width:  newWidth * scale,
		Height: newHeight * scale,
	}
}

var (
	// svgOpenTag matches the opening tag of the first <svg> element. Quoted
	// attribute values may contain '>'.
	svgOpenTag = regexp.MustCompile(`(?i)<svg(?:\s+[^\s=>/]+(?:\s*=\s*(?:"[^"]*"|'[^']*'|[^\s>]+))?)*\s*/?>`)

	// viewBoxAttr matches a quoted viewBox attribute with its leading space.
	viewBoxAttr = regexp.MustCompile(`\s+viewBox\s*=\s*(?:"[^"]*"|'[^']*')`)
)

// SpliceViewBox replaces the viewBox of the first <svg> tag in src with vb.
// Everything else in src is kept byte for byte.
func SpliceViewBox(src string, vb ViewBox) string {
	loc := svgOpenTag.FindStringIndex(src)
	if loc == nil {
		return src
	}
	tag := src[loc[0]:loc[1]]
	tag = viewBoxAttr.ReplaceAllString(tag, "")
	tag = tag[:len("<svg")] + ` viewBox="` + vb.String() + `"` + tag[len("<svg"):]

	var b strings.Builder
	b.Grow(len(src) + len(tag))
	b.WriteString(src[:loc[0]])
	b.WriteString(tag)
	b.WriteString(src[loc[1]:])
	return b.String()
}
