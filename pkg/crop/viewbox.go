package crop

import (
	"errors"
	"math"
	"math/big"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// ViewBox is the coordinate window an SVG document is drawn against.
type ViewBox struct {
	X, Y, Width, Height float64
}

// String formats the viewBox as the attribute value "x y width height".
func (v ViewBox) String() string {
	return formatNumbers([]float64{v.X, v.Y, v.Width, v.Height})
}

// Ratio returns the aspect ratio width / height.
func (v ViewBox) Ratio() float64 {
	return v.Width / v.Height
}

// Round returns v with every field rounded to 5 significant figures.
func (v ViewBox) Round() ViewBox {
	return ViewBox{
		X:      roundSignificant(v.X, 5),
		Y:      roundSignificant(v.Y, 5),
		Width:  roundSignificant(v.Width, 5),
		Height: roundSignificant(v.Height, 5),
	}
}

// roundSignificant rounds f to n significant decimal figures. A value
// exactly halfway between two candidates rounds away from zero.
func roundSignificant(f float64, n int) float64 {
	if f == 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return f
	}
	abs := math.Abs(f)
	if isDecimalTie(abs, n) {
		abs = math.Nextafter(abs, math.Inf(1))
	}
	r, err := strconv.ParseFloat(strconv.FormatFloat(abs, 'g', n, 64), 64)
	if err != nil {
		return f
	}
	return math.Copysign(r, f)
}

// isDecimalTie reports whether the exact binary value of f ends in a 5 at
// significant digit n+1.
func isDecimalTie(f float64, n int) bool {
	s := strconv.FormatFloat(f, 'e', n, 64)
	mant, _, _ := strings.Cut(s, "e")
	if !strings.HasSuffix(mant, "5") {
		return false
	}
	dec, ok := new(big.Rat).SetString(s)
	return ok && dec.Cmp(new(big.Rat).SetFloat64(f)) == 0
}

// splitViewBox splits a viewBox attribute into its tokens.
// Both whitespace and commas are accepted as separators.
func splitViewBox(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
}

// parseNumbers parses each token with parseNumber.
func parseNumbers(tokens []string) []float64 {
	out := make([]float64, len(tokens))
	for i, tok := range tokens {
		out[i] = parseNumber(tok)
	}
	return out
}

// numberPrefix matches the longest numeric prefix of an attribute value,
// so "100px" reads as 100.
var numberPrefix = regexp.MustCompile(`^[+-]?(Infinity|(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?)`)

// parseNumber reads the leading number of s, ignoring leading whitespace and
// any trailing unit. It returns NaN when s does not start with a number.
func parseNumber(s string) float64 {
	m := numberPrefix.FindString(strings.TrimLeftFunc(s, unicode.IsSpace))
	if m == "" {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return math.NaN()
	}
	return f
}

// formatNumbers joins the shortest decimal representation of each value
// with single spaces.
func formatNumbers(vals []float64) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = formatNumber(v)
	}
	return strings.Join(parts, " ")
}

// formatNumber returns the shortest representation of f that reads back
// as the same value. Integers have no decimal point, negative zero prints
// as "0", and very large or small magnitudes use exponent notation.
func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}
	abs := math.Abs(f)
	if abs >= 1e21 || abs < 1e-6 {
		s := strconv.FormatFloat(f, 'e', -1, 64)
		mant, exp, _ := strings.Cut(s, "e")
		sign := exp[:1]
		digits := strings.TrimLeft(exp[1:], "0")
		return mant + "e" + sign + digits
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
