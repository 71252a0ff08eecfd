package crop

import (
	"math"
	"regexp"
	"strings"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	errs "github.com/matzehuels/svgcrop/pkg/errors"
)

// dimensionAttrs are the legacy root attributes a viewBox is inferred from.
// They are removed from the root once the viewBox is known so that they do
// not fight the tile stylesheet.
var dimensionAttrs = [...]string{"x", "y", "width", "height"}

// backgroundPattern matches the legacy CSS enable-background declaration.
var backgroundPattern = regexp.MustCompile(`enable-background:\s*new\s+(?P<viewBox>\d+\s+\d+\s+\d+\s+\d+)`)

// Document is one normalized input: the parsed markup with a guaranteed
// viewBox and identifiers scoped for batch rendering.
//
// A Document lives for a single crop call.
type Document struct {
	// Index is the position of the document in the caller's batch.
	Index int

	// Source is the original markup, untouched.
	Source string

	// ViewBox is the parsed (possibly inferred) root viewBox.
	ViewBox ViewBox

	// Scope is the suffix appended to class and id tokens.
	Scope string

	svg *html.Node
}

// Normalize parses src and prepares it for tiled rendering.
// i is the document's batch index, used in error messages.
func Normalize(src string, i int) (*Document, error) {
	return NormalizeWithScope(src, i, NewScope())
}

// NormalizeWithScope is Normalize with a caller-chosen scope token.
func NormalizeWithScope(src string, i int, scope string) (*Document, error) {
	container, svg, err := parseFragment(src)
	if err != nil || svg == nil {
		return nil, errs.AtIndex(errs.ErrCodeMalformedInput, i, "Incorrect data in svg #%d", i)
	}

	if _, ok := getAttr(svg, "viewBox"); !ok {
		if inferred, ok := inferViewBox(svg); ok {
			setAttr(svg, "viewBox", inferred)
		}
	}

	raw, ok := getAttr(svg, "viewBox")
	if !ok {
		return nil, errs.AtIndex(errs.ErrCodeInvalidViewBox, i, "Invalid viewBox inferred for svg #%d: %q", i, "undefined")
	}
	vals := parseNumbers(splitViewBox(raw))
	vb, ok := viewBoxFromValues(vals)
	if !ok {
		return nil, errs.AtIndex(errs.ErrCodeInvalidViewBox, i, "Invalid viewBox inferred for svg #%d: %q", i, formatNumbers(vals))
	}

	for _, name := range dimensionAttrs {
		removeAttr(svg, name)
	}

	svg, err = scopeIdentifiers(container, scope)
	if err != nil || svg == nil {
		return nil, errs.AtIndex(errs.ErrCodeMalformedInput, i, "Incorrect data in svg #%d", i)
	}

	return &Document{
		Index:   i,
		Source:  src,
		ViewBox: vb,
		Scope:   scope,
		svg:     svg,
	}, nil
}

// Markup serializes the normalized root <svg> element.
func (d *Document) Markup() string {
	var b strings.Builder
	if err := html.Render(&b, d.svg); err != nil {
		return ""
	}
	return b.String()
}

// Apply writes vb into the document's original markup.
func (d *Document) Apply(vb ViewBox) string {
	return SpliceViewBox(d.Source, vb)
}

// viewBoxFromValues validates parsed viewBox values. A usable viewBox has
// exactly four finite values, not all zero, with a positive width and height.
func viewBoxFromValues(vals []float64) (ViewBox, bool) {
	if len(vals) != 4 {
		return ViewBox{}, false
	}
	allZero := true
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return ViewBox{}, false
		}
		if v != 0 {
			allZero = false
		}
	}
	if allZero || vals[2] <= 0 || vals[3] <= 0 {
		return ViewBox{}, false
	}
	return ViewBox{X: vals[0], Y: vals[1], Width: vals[2], Height: vals[3]}, true
}

// inferViewBox derives a viewBox from the root's dimension attributes,
// falling back to the legacy enable-background attribute or style property.
func inferViewBox(svg *html.Node) (string, bool) {
	dims := make([]float64, len(dimensionAttrs))
	for i, name := range dimensionAttrs {
		v, ok := getAttr(svg, name)
		if !ok {
			v = "0"
		}
		dims[i] = parseNumber(v)
	}
	if candidate := formatNumbers(dims); candidate != "0 0 0 0" {
		return candidate, true
	}

	if bg, ok := getAttr(svg, "enable-background"); ok {
		// "new x y w h": drop the leading keyword.
		fields := strings.Split(bg, " ")
		candidate := strings.Join(fields[1:], " ")
		return candidate, candidate != ""
	}

	if style, ok := getAttr(svg, "style"); ok {
		for _, decl := range strings.Split(style, ";") {
			m := backgroundPattern.FindStringSubmatch(decl)
			if m != nil {
				return m[backgroundPattern.SubexpIndex("viewBox")], true
			}
		}
	}
	return "", false
}

// parseFragment parses src the way a browser parses innerHTML of a <div>
// and returns the container plus the first <svg> element, if any.
func parseFragment(src string) (*html.Node, *html.Node, error) {
	container := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	nodes, err := html.ParseFragment(strings.NewReader(src), container)
	if err != nil {
		return nil, nil, err
	}
	for _, n := range nodes {
		container.AppendChild(n)
	}
	return container, htmlquery.FindOne(container, "//svg"), nil
}

// innerHTML serializes the children of n.
func innerHTML(n *html.Node) (string, error) {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&b, c); err != nil {
			return "", err
		}
	}
	return b.String(), nil
}

func getAttr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func removeAttr(n *html.Node, key string) {
	out := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			continue
		}
		out = append(out, a)
	}
	n.Attr = out
}
