package crop

import (
	"math"
	"testing"
)

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"0", 0},
		{"100", 100},
		{"100px", 100},
		{"  12.5", 12.5},
		{"-3", -3},
		{".5", 0.5},
		{"1e3", 1000},
		{"2.5em", 2.5},
	}
	for _, tt := range tests {
		if got := parseNumber(tt.in); got != tt.want {
			t.Errorf("parseNumber(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	for _, in := range []string{"", "abc", "px", "-"} {
		if got := parseNumber(in); !math.IsNaN(got) {
			t.Errorf("parseNumber(%q) = %v, want NaN", in, got)
		}
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{math.Copysign(0, -1), "0"},
		{100, "100"},
		{-2.5, "-2.5"},
		{0.1, "0.1"},
		{1e21, "1e+21"},
		{1.5e-7, "1.5e-7"},
		{math.NaN(), "NaN"},
		{math.Inf(1), "Infinity"},
	}
	for _, tt := range tests {
		if got := formatNumber(tt.in); got != tt.want {
			t.Errorf("formatNumber(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSplitViewBox(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"0 0 100 100", 4},
		{"0,0,100,100", 4},
		{" 0, 0  100\t100 ", 4},
		{"0 0 100", 3},
		{"", 0},
	}
	for _, tt := range tests {
		if got := len(splitViewBox(tt.in)); got != tt.want {
			t.Errorf("len(splitViewBox(%q)) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestViewBoxRound(t *testing.T) {
	vb := ViewBox{X: 18.524999999999, Y: -0.000123456789, Width: 61.950000000001, Height: 123456.789}
	want := ViewBox{X: 18.525, Y: -0.00012346, Width: 61.95, Height: 123460}
	if got := vb.Round(); got != want {
		t.Errorf("Round() = %+v, want %+v", got, want)
	}
}

func TestRoundSignificantTies(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{100.125, 100.13},
		{-100.125, -100.13},
		{12.3125, 12.313},
		{1.03125, 1.0313},
		{123465, 123470},
		{2.00005, 2},      // just below the tie in binary
		{1.00005, 1.0001}, // just above it
		{100.124, 100.12},
	}

	for _, tt := range tests {
		if got := roundSignificant(tt.in, 5); got != tt.want {
			t.Errorf("roundSignificant(%v, 5) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestViewBoxString(t *testing.T) {
	vb := ViewBox{X: -1.5, Y: 0, Width: 100, Height: 0.25}
	if got, want := vb.String(), "-1.5 0 100 0.25"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
