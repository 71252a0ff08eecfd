package crop

import (
	"fmt"
	"strings"

	"github.com/matzehuels/svgcrop/pkg/render"
)

// tileStyle fixes every tile and root <svg> to the tile size and removes
// default margins so each document lands exactly on its grid cell.
const tileStyle = `* { margin: 0; box-sizing: border-box; } ` +
	`.svg, svg { width: %[1]dpx; height: %[1]dpx; display: inline-flex; overflow: hidden; box-sizing: border-box; }`

// Compose builds the single page that renders every document of a batch as
// one tile of l.
func Compose(docs []*Document, l Layout) render.Page {
	tiles := make([]string, len(docs))

	var b strings.Builder
	b.WriteString("<style>")
	fmt.Fprintf(&b, tileStyle, l.TileSize)
	b.WriteString("</style><body>")
	for i, d := range docs {
		tiles[i] = d.Markup()
		b.WriteString(`<div class="svg">`)
		b.WriteString(tiles[i])
		b.WriteString("</div>")
	}
	b.WriteString("</body>")

	return render.Page{
		HTML:     b.String(),
		Width:    l.Width(),
		Height:   l.Height(),
		TileSize: l.TileSize,
		Columns:  l.Columns,
		Tiles:    tiles,
	}
}
