package crop

import (
	"testing"

	errs "github.com/matzehuels/svgcrop/pkg/errors"
)

// fillTile returns a size×size bitmap with the rectangle [x0,x1]×[y0,y1] opaque.
func fillTile(size, x0, y0, x1, y1 int) *Bitmap {
	b := NewBitmap(size, size)
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			b.Set(x, y, true)
		}
	}
	return b
}

func TestInner(t *testing.T) {
	tests := []struct {
		name                    string
		vb                      ViewBox
		size                    int
		col, row, width, height int
	}{
		{"square", ViewBox{Width: 10, Height: 10}, 100, 0, 0, 100, 100},
		{"wide", ViewBox{Width: 200, Height: 100}, 100, 0, 25, 100, 50},
		{"tall", ViewBox{Width: 100, Height: 400}, 100, 37, 0, 25, 100},
		{"odd remainder", ViewBox{Width: 3, Height: 1}, 100, 0, 33, 100, 34},
		{"extreme wide", ViewBox{Width: 1e20, Height: 1}, 100, 0, 49, 100, 1},
		{"extreme tall", ViewBox{Width: 1, Height: 1e20}, 100, 49, 0, 1, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			col, row, w, h := Inner(tt.vb, tt.size)
			if col != tt.col || row != tt.row || w != tt.width || h != tt.height {
				t.Errorf("Inner() = (%d, %d, %d, %d), want (%d, %d, %d, %d)",
					col, row, w, h, tt.col, tt.row, tt.width, tt.height)
			}
		})
	}
}

func TestRemap(t *testing.T) {
	tests := []struct {
		name  string
		vb    ViewBox
		tile  *Bitmap
		scale float64
		want  ViewBox
	}{
		{
			name:  "tight square",
			vb:    ViewBox{Width: 100, Height: 100},
			tile:  fillTile(100, 20, 30, 79, 69),
			scale: 1,
			want:  ViewBox{X: 20, Y: 30, Width: 59, Height: 39},
		},
		{
			name:  "padded square",
			vb:    ViewBox{Width: 100, Height: 100},
			tile:  fillTile(100, 20, 30, 79, 69),
			scale: 1.05,
			want:  ViewBox{X: 18.525, Y: 29.025, Width: 61.95, Height: 40.95},
		},
		{
			name:  "offset origin",
			vb:    ViewBox{X: -50, Y: 10, Width: 50, Height: 50},
			tile:  fillTile(100, 0, 50, 99, 99),
			scale: 1,
			want:  ViewBox{X: -50, Y: 35, Width: 49.5, Height: 24.5},
		},
		{
			name: "wide document letterboxed",
			vb:   ViewBox{Width: 200, Height: 100},
			// Drawing occupies rows 25..74; content at rows 30..69.
			tile:  fillTile(100, 10, 30, 89, 69),
			scale: 1,
			want:  ViewBox{X: 20, Y: 10, Width: 158, Height: 78},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Remap(tt.vb, tt.tile, 100, tt.scale, 0)
			if err != nil {
				t.Fatalf("Remap() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Remap() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestRemapIgnoresLetterbox(t *testing.T) {
	// Pixels outside the drawn region of a wide document are ignored.
	tile := NewBitmap(100, 100)
	tile.Set(50, 5, true)
	_, err := Remap(ViewBox{Width: 200, Height: 100}, tile, 100, 1, 4)
	if !errs.Is(err, errs.ErrCodeNoOpaque) {
		t.Fatalf("Remap() error = %v, want %s", err, errs.ErrCodeNoOpaque)
	}
	if got, want := errs.UserMessage(err), "Error processing svg #4: no non-transparent pixels found"; got != want {
		t.Errorf("message = %q, want %q", got, want)
	}
	if got := errs.GetIndex(err); got != 4 {
		t.Errorf("index = %d, want 4", got)
	}
}

func TestRemapExtremeAspectRatio(t *testing.T) {
	// A 1e20:1 drawing is a single row in the middle of the tile.
	got, err := Remap(ViewBox{Width: 1e20, Height: 1}, fillTile(100, 0, 49, 99, 49), 100, 1, 0)
	if err != nil {
		t.Fatalf("Remap() error = %v", err)
	}
	if want := (ViewBox{Width: 9.9e19}); got != want {
		t.Errorf("Remap() = %+v, want %+v", got, want)
	}
}

func TestRemapScaleGrowsAboutCenter(t *testing.T) {
	vb := ViewBox{Width: 100, Height: 100}
	tile := fillTile(100, 20, 30, 79, 69)

	prev, err := Remap(vb, tile, 100, 1, 0)
	if err != nil {
		t.Fatal(err)
	}
	for _, scale := range []float64{1.05, 1.2, 1.5, 2} {
		got, err := Remap(vb, tile, 100, scale, 0)
		if err != nil {
			t.Fatal(err)
		}
		if got.Width <= prev.Width || got.Height <= prev.Height {
			t.Errorf("scale %v: size %vx%v did not grow from %vx%v", scale, got.Width, got.Height, prev.Width, prev.Height)
		}
		if got.X >= prev.X || got.Y >= prev.Y {
			t.Errorf("scale %v: origin (%v, %v) did not move out from (%v, %v)", scale, got.X, got.Y, prev.X, prev.Y)
		}
		prev = got
	}
}

func TestSpliceViewBox(t *testing.T) {
	vb := ViewBox{X: 1, Y: 2, Width: 3.5, Height: 4}
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "replaces existing",
			src:  `<svg width="10" viewBox="0 0 10 10"><path d="M0 0"/></svg>`,
			want: `<svg viewBox="1 2 3.5 4" width="10"><path d="M0 0"/></svg>`,
		},
		{
			name: "inserts missing",
			src:  `<svg xmlns="http://www.w3.org/2000/svg"></svg>`,
			want: `<svg viewBox="1 2 3.5 4" xmlns="http://www.w3.org/2000/svg"></svg>`,
		},
		{
			name: "single quoted",
			src:  `<svg viewBox='0 0 1 1'/>`,
			want: `<svg viewBox="1 2 3.5 4"/>`,
		},
		{
			name: "keeps prolog and nested svg",
			src:  "<?xml version=\"1.0\"?>\n<!-- icon -->\n<svg\n  viewBox=\"0 0 9 9\">\n<svg viewBox=\"5 5 1 1\"></svg></svg>",
			want: "<?xml version=\"1.0\"?>\n<!-- icon -->\n<svg viewBox=\"1 2 3.5 4\">\n<svg viewBox=\"5 5 1 1\"></svg></svg>",
		},
		{
			name: "quoted angle bracket",
			src:  `<svg data-x="a>b" viewBox="0 0 10 10"><g/></svg>`,
			want: `<svg viewBox="1 2 3.5 4" data-x="a>b"><g/></svg>`,
		},
		{
			name: "self closing",
			src:  `<svg width=10 viewBox="0 0 10 10" />`,
			want: `<svg viewBox="1 2 3.5 4" width=10 />`,
		},
		{
			name: "no svg",
			src:  `<div></div>`,
			want: `<div></div>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SpliceViewBox(tt.src, vb); got != tt.want {
				t.Errorf("SpliceViewBox() = %q, want %q", got, tt.want)
			}
		})
	}
}
