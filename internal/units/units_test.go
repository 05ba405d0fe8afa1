package units

import (
	"math"
	"math/big"
	"testing"
)

func TestToBaseUnitsTruncates(t *testing.T) {
	cases := []struct {
		amount   float64
		decimals int
		want     string
	}{
		{0.1, 8, "10000000"},
		{1.5, 2, "150"},
		{1.239, 2, "123"},
		{1.999, 0, "1"},
		{0.000000019, 8, "1"},
		{123456789.5, 8, "12345678950000000"},
		{2_000_000, 0, "2000000"},
		{1e-9, 8, "0"},
		{-1.239, 2, "-123"},
	}
	for _, tc := range cases {
		got, err := ToBaseUnits(tc.amount, tc.decimals)
		if err != nil {
			t.Fatalf("ToBaseUnits(%v, %d): %v", tc.amount, tc.decimals, err)
		}
		if got.String() != tc.want {
			t.Fatalf("ToBaseUnits(%v, %d) = %s, want %s", tc.amount, tc.decimals, got, tc.want)
		}
	}
}

func TestToBaseUnitsRejectsBadInput(t *testing.T) {
	if _, err := ToBaseUnits(math.NaN(), 2); err == nil {
		t.Fatalf("expected NaN to fail")
	}
	if _, err := ToBaseUnits(math.Inf(1), 2); err == nil {
		t.Fatalf("expected Inf to fail")
	}
	if _, err := ToBaseUnits(1, -1); err == nil {
		t.Fatalf("expected negative decimals to fail")
	}
}

func TestPositiveConversions(t *testing.T) {
	for _, amount := range []float64{0, -1, 1e-9} {
		if _, err := ToPositiveTinybars(amount); err == nil {
			t.Fatalf("expected %v HBAR to be rejected", amount)
		}
	}
	v, err := ToPositiveTinybars(2.5)
	if err != nil || v != 250_000_000 {
		t.Fatalf("unexpected tinybars %d (%v)", v, err)
	}
	if _, err := ToTinybars(1e12); err == nil {
		t.Fatalf("expected out of range error")
	}
}

func TestFromBaseUnits(t *testing.T) {
	cases := []struct {
		value    int64
		decimals int
		want     string
	}{
		{150, 2, "1.5"},
		{100, 2, "1"},
		{5, 3, "0.005"},
		{-250_000_000, 8, "-2.5"},
		{42, 0, "42"},
		{0, 8, "0"},
	}
	for _, tc := range cases {
		if got := FromBaseUnits(big.NewInt(tc.value), tc.decimals); got != tc.want {
			t.Fatalf("FromBaseUnits(%d, %d) = %s, want %s", tc.value, tc.decimals, got, tc.want)
		}
	}
	if TinybarsToHbar(123_456_789) != "1.23456789" {
		t.Fatalf("unexpected hbar rendering %s", TinybarsToHbar(123_456_789))
	}
}
