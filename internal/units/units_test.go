package units

import (
	"math"
	"testing"
)

func TestDegRadRoundTrip(t *testing.T) {
	for _, deg := range []float64{0, 45, 90, 180, 270, 360, -30} {
		got := RadToDeg(DegToRad(deg))
		if math.Abs(got-deg) > 1e-12 {
			t.Fatalf("round trip of %g gave %g", deg, got)
		}
	}
}

func TestLonKmPerDegree(t *testing.T) {
	tests := []struct {
		name string
		lat  float64
		want float64
	}{
		{"equator", 0, KmPerDegree},
		{"sixty north", 60, KmPerDegree / 2},
		{"sixty south", -60, KmPerDegree / 2},
		{"pole", 90, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := LonKmPerDegree(tc.lat)
			if math.Abs(got-tc.want) > 1e-9 {
				t.Fatalf("LonKmPerDegree(%g) = %g, want %g", tc.lat, got, tc.want)
			}
		})
	}
}

func TestNormalizeBearing(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{360, 0},
		{370, 10},
		{-90, 270},
		{725, 5},
	}
	for _, tc := range tests {
		if got := NormalizeBearing(tc.in); math.Abs(got-tc.want) > 1e-12 {
			t.Fatalf("NormalizeBearing(%g) = %g, want %g", tc.in, got, tc.want)
		}
	}
}

func TestConvertVelocity(t *testing.T) {
	if got := ConvertVelocity(1.5, MYR); got != 1500 {
		t.Fatalf("expected 1500 m/yr, got %v", got)
	}
	if got := ConvertVelocity(1.5, KMYR); got != 1.5 {
		t.Fatalf("expected 1.5 km/yr, got %v", got)
	}
	if got := ConvertVelocity(1.5, "unknown"); got != 1.5 {
		t.Fatalf("unknown units must fall back to km/yr, got %v", got)
	}
}

func TestIsValid(t *testing.T) {
	if !IsValid(KMYR) || !IsValid(MYR) {
		t.Fatalf("expected built-in units to validate")
	}
	if IsValid("mph") {
		t.Fatalf("expected mph to be rejected")
	}
}
