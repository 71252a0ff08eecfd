package crop

import (
	"strings"
	"testing"

	errs "github.com/matzehuels/svgcrop/pkg/errors"
)

func TestNormalizeInfersViewBox(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want ViewBox
	}{
		{
			name: "explicit",
			src:  `<svg viewBox="-5 10 20 40"></svg>`,
			want: ViewBox{X: -5, Y: 10, Width: 20, Height: 40},
		},
		{
			name: "comma separated",
			src:  `<svg viewBox="0,0,24,24"></svg>`,
			want: ViewBox{Width: 24, Height: 24},
		},
		{
			name: "dimension attributes",
			src:  `<svg x="0" y="0" width="100" height="100"></svg>`,
			want: ViewBox{Width: 100, Height: 100},
		},
		{
			name: "dimension attributes with units",
			src:  `<svg width="64px" height="32px"></svg>`,
			want: ViewBox{Width: 64, Height: 32},
		},
		{
			name: "enable-background style",
			src:  `<svg style="enable-background: new 0 0 100 100;"></svg>`,
			want: ViewBox{Width: 100, Height: 100},
		},
		{
			name: "enable-background attribute",
			src:  `<svg enable-background="new 0 0 50 25"></svg>`,
			want: ViewBox{Width: 50, Height: 25},
		},
		{
			name: "leading markup",
			src:  `<?xml version="1.0"?><!-- logo --><svg viewBox="0 0 10 10"></svg>`,
			want: ViewBox{Width: 10, Height: 10},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Normalize(tt.src, 0)
			if err != nil {
				t.Fatalf("Normalize() error = %v", err)
			}
			if doc.ViewBox != tt.want {
				t.Errorf("ViewBox = %+v, want %+v", doc.ViewBox, tt.want)
			}
			if doc.Source != tt.src {
				t.Errorf("Source was modified: %q", doc.Source)
			}
		})
	}
}

func TestNormalizeRemovesDimensions(t *testing.T) {
	doc, err := Normalize(`<svg x="0" y="0" width="100" height="100"><rect width="5" height="5"/></svg>`, 0)
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}

	markup := doc.Markup()
	if !strings.HasPrefix(markup, `<svg viewBox="0 0 100 100">`) {
		t.Errorf("Markup() = %q, want root with only the inferred viewBox", markup)
	}
	if !strings.Contains(markup, `<rect width="5" height="5">`) {
		t.Errorf("Markup() = %q, child dimensions should be kept", markup)
	}
}

func TestNormalizeErrors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		code    errs.Code
		message string
	}{
		{
			name:    "no svg",
			src:     `<div></div>`,
			code:    errs.ErrCodeMalformedInput,
			message: "Incorrect data in svg #0",
		},
		{
			name:    "empty",
			src:     ``,
			code:    errs.ErrCodeMalformedInput,
			message: "Incorrect data in svg #0",
		},
		{
			name:    "nothing to infer",
			src:     `<svg></svg>`,
			code:    errs.ErrCodeInvalidViewBox,
			message: `Invalid viewBox inferred for svg #0: "undefined"`,
		},
		{
			name:    "zero dimensions",
			src:     `<svg x="0px" y="0px" width="0px" height="0px"></svg>`,
			code:    errs.ErrCodeInvalidViewBox,
			message: `Invalid viewBox inferred for svg #0: "undefined"`,
		},
		{
			name:    "all zero",
			src:     `<svg viewBox="0 0 0 0"></svg>`,
			code:    errs.ErrCodeInvalidViewBox,
			message: `Invalid viewBox inferred for svg #0: "0 0 0 0"`,
		},
		{
			name:    "zero background",
			src:     `<svg style="enable-background: new 0 0 0 0;"></svg>`,
			code:    errs.ErrCodeInvalidViewBox,
			message: `Invalid viewBox inferred for svg #0: "0 0 0 0"`,
		},
		{
			name:    "not a number",
			src:     `<svg viewBox="0 0 wide 10"></svg>`,
			code:    errs.ErrCodeInvalidViewBox,
			message: `Invalid viewBox inferred for svg #0: "0 0 NaN 10"`,
		},
		{
			name:    "three values",
			src:     `<svg viewBox="0 0 10"></svg>`,
			code:    errs.ErrCodeInvalidViewBox,
			message: `Invalid viewBox inferred for svg #0: "0 0 10"`,
		},
		{
			name:    "negative width",
			src:     `<svg viewBox="0 0 -10 10"></svg>`,
			code:    errs.ErrCodeInvalidViewBox,
			message: `Invalid viewBox inferred for svg #0: "0 0 -10 10"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize(tt.src, 0)
			if err == nil {
				t.Fatal("Normalize() expected error")
			}
			if !errs.Is(err, tt.code) {
				t.Errorf("code = %v, want %v", errs.GetCode(err), tt.code)
			}
			if got := errs.UserMessage(err); got != tt.message {
				t.Errorf("message = %q, want %q", got, tt.message)
			}
			if got := errs.GetIndex(err); got != 0 {
				t.Errorf("index = %d, want 0", got)
			}
		})
	}
}

func TestNormalizeErrorCitesIndex(t *testing.T) {
	_, err := Normalize(`<div></div>`, 3)
	if got := errs.GetIndex(err); got != 3 {
		t.Errorf("GetIndex() = %d, want 3", got)
	}
	if got, want := errs.UserMessage(err), "Incorrect data in svg #3"; got != want {
		t.Errorf("UserMessage() = %q, want %q", got, want)
	}
}

func TestNormalizeScopesIdentifiers(t *testing.T) {
	src := `<svg viewBox="0 0 10 10">` +
		`<style>.a{fill:red}#b{fill:blue}</style>` +
		`<rect class="a wide" id="b" width="1" height="1"/>` +
		`<use href="#b"/>` +
		`</svg>`

	doc, err := NormalizeWithScope(src, 0, "xyz")
	if err != nil {
		t.Fatalf("NormalizeWithScope() error = %v", err)
	}
	if doc.Scope != "xyz" {
		t.Errorf("Scope = %q, want xyz", doc.Scope)
	}

	markup := doc.Markup()
	for _, want := range []string{
		`class="a-xyz wide-xyz"`,
		`id="b-xyz"`,
		`.a-xyz{fill:red}`,
		`#b-xyz{fill:blue}`,
		`href="#b-xyz"`,
	} {
		if !strings.Contains(markup, want) {
			t.Errorf("Markup() = %q, missing %q", markup, want)
		}
	}
}

func TestNewScope(t *testing.T) {
	seen := make(map[string]bool)
	for range 100 {
		s := NewScope()
		if s == "" || len(s) > scopeLength {
			t.Fatalf("NewScope() = %q, want 1..%d characters", s, scopeLength)
		}
		for _, r := range s {
			if !strings.ContainsRune("0123456789abcdefghijklmnopqrstuvwxyz", r) {
				t.Fatalf("NewScope() = %q, not base 36", s)
			}
		}
		seen[s] = true
	}
	if len(seen) < 99 {
		t.Errorf("NewScope() produced %d distinct tokens out of 100", len(seen))
	}
}
