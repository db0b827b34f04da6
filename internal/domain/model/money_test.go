//go:build !integration

package model_test

import (
	"testing"

	"github.com/shopspring/decimal"

	"shaparak-pay/internal/domain/model"
)

func TestMoney_Int64_Truncates(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"50000", 50000},
		{"50000.75", 50000},
		{"50000.99", 50000},
		{"-120.9", -120},
		{"0", 0},
	}
	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			m, err := model.ParseMoney(c.in)
			if err != nil {
				t.Fatalf("parse %q: %v", c.in, err)
			}
			if got := m.Int64(); got != c.want {
				t.Fatalf("Int64(%q) = %d, want %d", c.in, got, c.want)
			}
		})
	}
}

func TestParseMoney_Invalid(t *testing.T) {
	if _, err := model.ParseMoney("abc"); err == nil {
		t.Fatal("want error for non-numeric amount")
	}
	if _, err := model.ParseMoney(""); err == nil {
		t.Fatal("want error for empty amount")
	}
}

func TestMoney_EqualTruncated(t *testing.T) {
	a, _ := model.ParseMoney("50000.75")
	b := model.NewMoney(50000)
	if !a.EqualTruncated(b) {
		t.Fatal("50000.75 and 50000 should be equal after truncation")
	}
	if a.Equal(b) {
		t.Fatal("50000.75 and 50000 must not be exactly equal")
	}

	c := model.NewMoney(50001)
	if a.EqualTruncated(c) {
		t.Fatal("50000.75 and 50001 must differ after truncation")
	}
}

func TestMoney_Predicates(t *testing.T) {
	if !model.NewMoney(0).IsZero() {
		t.Fatal("zero should be zero")
	}
	if model.NewMoney(0).IsPositive() {
		t.Fatal("zero is not positive")
	}
	if !model.NewMoney(1).IsPositive() {
		t.Fatal("one is positive")
	}
	if model.NewMoney(-5).IsPositive() {
		t.Fatal("negative is not positive")
	}
}

func TestMoneyFromDecimal_RoundTrip(t *testing.T) {
	d := decimal.RequireFromString("123456.789")
	m := model.MoneyFromDecimal(d)
	if m.String() != "123456.789" {
		t.Fatalf("String() = %q", m.String())
	}
	if !m.Decimal().Equal(d) {
		t.Fatal("Decimal() should round-trip")
	}
}
