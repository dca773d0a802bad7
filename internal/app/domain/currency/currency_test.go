package currency

import (
	"math"
	"testing"
)

func TestConvert(t *testing.T) {
	cases := []struct {
		name   string
		amount float64
		from   Code
		to     Code
		want   float64
	}{
		{"identity", 100, USD, USD, 100},
		{"usd to aed", 100, USD, AED, 367},
		{"aed to usd", 367, AED, USD, 100},
		{"usd to eur", 100, USD, EUR, 92},
		{"cross aed to eur", 3.67, AED, EUR, 0.92},
		{"unknown code falls back to usd", 100, Code("XYZ"), USD, 100},
		{"lowercase code", 367, Code("aed"), USD, 100},
		{"zero amount", 0, USD, AED, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Convert(tc.amount, tc.from, tc.to)
			if math.Abs(got-tc.want) > 1e-9 {
				t.Errorf("Convert(%v, %s, %s) = %v, want %v", tc.amount, tc.from, tc.to, got, tc.want)
			}
		})
	}
}

func TestConvert_NonFinite(t *testing.T) {
	if got := Convert(math.NaN(), USD, AED); got != 0 {
		t.Errorf("Convert(NaN) = %v, want 0", got)
	}
	if got := Convert(math.Inf(1), USD, AED); got != 0 {
		t.Errorf("Convert(+Inf) = %v, want 0", got)
	}
}

func TestRates_ReturnsCopy(t *testing.T) {
	r := Rates()
	r[USD] = 42
	if Rate(USD) != 1 {
		t.Error("mutating the returned table must not affect the rate table")
	}
}

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"12.50", 12.5},
		{" 7 ", 7},
		{"", 0},
		{"abc", 0},
		{"NaN", 0},
	}
	for _, tc := range cases {
		if got := ParseAmount(tc.in); got != tc.want {
			t.Errorf("ParseAmount(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
