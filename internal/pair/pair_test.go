package pair

import (
	"errors"
	"testing"
	"time"
)

func TestFormat(t *testing.T) {
	if got := Format("USD", "BRL"); got != "USD/BRL" {
		t.Errorf("expected USD/BRL, got %s", got)
	}
}

func TestParse_Valid(t *testing.T) {
	p, err := Parse("usd/brl")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Base != "USD" || p.Quote != "BRL" {
		t.Errorf("expected USD/BRL, got %s", p)
	}
}

func TestParse_InvalidFormat(t *testing.T) {
	tests := []string{
		"",
		"USD",
		"USDBRL",
		"USD/BRL/EUR",
		"US/BRL",
		"USD/B-L",
		"/BRL",
	}
	for _, s := range tests {
		if _, err := Parse(s); err == nil {
			t.Errorf("expected error for pair %q", s)
		}
	}
}

func TestNormalizeCode(t *testing.T) {
	c, err := NormalizeCode(" eur ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c != "EUR" {
		t.Errorf("expected EUR, got %s", c)
	}

	if _, err := NormalizeCode("ABCDEFGHIJK"); !errors.Is(err, ErrInvalidCode) {
		t.Errorf("expected ErrInvalidCode for 11 chars, got %v", err)
	}
}

func TestNew_RestrictsToSelectableCurrencies(t *testing.T) {
	if _, err := New("USD", "BRL"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if _, err := New("USD", "XAU"); !errors.Is(err, ErrUnsupportedCurrency) {
		t.Errorf("expected ErrUnsupportedCurrency, got %v", err)
	}
	for _, c := range Currencies {
		if !Supported(c) {
			t.Errorf("expected %s to be supported", c)
		}
	}
}

func TestParseDueDate(t *testing.T) {
	d, err := ParseDueDate("2026-03-07")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expected := time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC)
	if !d.Equal(expected) {
		t.Errorf("expected %v, got %v", expected, d)
	}

	if _, err := ParseDueDate("07/03/2026"); !errors.Is(err, ErrInvalidDueDate) {
		t.Errorf("expected ErrInvalidDueDate, got %v", err)
	}
}

func TestDaysLeft(t *testing.T) {
	now := time.Date(2026, 3, 1, 23, 59, 0, 0, time.UTC)
	tests := []struct {
		due  time.Time
		want int
	}{
		{time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), 0},
		{time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC), 7},
		{time.Date(2026, 2, 27, 0, 0, 0, 0, time.UTC), -2},
	}
	for _, tt := range tests {
		if got := DaysLeft(tt.due, now); got != tt.want {
			t.Errorf("DaysLeft(%v): expected %d, got %d", tt.due, tt.want, got)
		}
	}
}
