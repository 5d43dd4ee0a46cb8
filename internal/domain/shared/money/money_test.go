package money

import (
	"errors"
	"testing"
)

func TestParseDecimal(t *testing.T) {
	cases := []struct {
		in    string
		cents int64
	}{
		{"33.33", 3333},
		{"50", 5000},
		{"50.00", 5000},
		{"0.05", 5},
		{"0.5", 50},
		{"-12.30", -1230},
		{"1999.99", 199999},
	}
	for _, tc := range cases {
		m, err := ParseDecimal(tc.in, "USD")
		if err != nil {
			t.Fatalf("ParseDecimal(%q): %v", tc.in, err)
		}
		if m.Cents != tc.cents {
			t.Errorf("ParseDecimal(%q) = %d cents, want %d", tc.in, m.Cents, tc.cents)
		}
	}
}

func TestParseDecimalRejectsBadInput(t *testing.T) {
	for _, in := range []string{"", "abc", "1.234", "1,50"} {
		if _, err := ParseDecimal(in, "USD"); !errors.Is(err, ErrInvalidDecimal) {
			t.Errorf("ParseDecimal(%q) err = %v, want ErrInvalidDecimal", in, err)
		}
	}
	if _, err := ParseDecimal("10.00", "US"); !errors.Is(err, ErrInvalidCurrency) {
		t.Errorf("short currency err = %v, want ErrInvalidCurrency", err)
	}
}

func TestFormat(t *testing.T) {
	cases := []struct {
		cents int64
		want  string
	}{
		{3333, "33.33"},
		{5000, "50.00"},
		{5, "0.05"},
		{-1230, "-12.30"},
		{0, "0.00"},
	}
	for _, tc := range cases {
		got := Must(tc.cents, "USD").Format()
		if got != tc.want {
			t.Errorf("Format(%d) = %q, want %q", tc.cents, got, tc.want)
		}
	}
}

// Integer minor units must stay exact under repeated accumulation where float
// arithmetic would drift.
func TestRepeatedAdditionStaysExact(t *testing.T) {
	unit := Must(3333, "USD")
	sum := Must(0, "USD")
	for i := 0; i < 10000; i++ {
		var err error
		sum, err = sum.Add(unit)
		if err != nil {
			t.Fatalf("Add: %v", err)
		}
	}
	if sum.Cents != 33330000 {
		t.Fatalf("sum = %d cents, want 33330000", sum.Cents)
	}
	if sum.Format() != "333300.00" {
		t.Fatalf("sum.Format() = %q, want %q", sum.Format(), "333300.00")
	}
}

func TestMultiply(t *testing.T) {
	total := Must(5000, "USD").Multiply(3)
	if total.Format() != "150.00" {
		t.Fatalf("50.00 * 3 = %q, want 150.00", total.Format())
	}
}

func TestCurrencyMismatch(t *testing.T) {
	usd := Must(100, "USD")
	eur := Must(100, "EUR")
	if _, err := usd.Add(eur); !errors.Is(err, ErrCurrencyMismatch) {
		t.Fatalf("Add err = %v, want ErrCurrencyMismatch", err)
	}
	if _, err := usd.Sub(eur); !errors.Is(err, ErrCurrencyMismatch) {
		t.Fatalf("Sub err = %v, want ErrCurrencyMismatch", err)
	}
}
