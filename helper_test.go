package trackmetal

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

// test helpers shared across the package tests.

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func usd(s string) Money { return M(dec(s), "USD") }

// buy opens a purchase of weight units of metal for price USD.
func buy(id string, on time.Time, weight string, unit Unit, metal Metal, price string) *Transaction {
	return &Transaction{
		Service:        "TestVault",
		Account:        "main",
		Date:           on,
		ID:             id,
		Type:           Purchase,
		Vault:          "vault1",
		AmountPaid:     dec(price),
		AmountReceived: dec(weight),
		Currency:       "USD",
		Unit:           unit,
		Metal:          metal,
		Item:           "Generic",
	}
}

// sell disposes weight units of metal for proceeds USD.
func sell(id string, on time.Time, weight string, unit Unit, metal Metal, proceeds string) *Transaction {
	return &Transaction{
		Service:        "TestVault",
		Account:        "main",
		Date:           on,
		ID:             id,
		Type:           Sale,
		Vault:          "vault1",
		AmountPaid:     dec(weight),
		AmountReceived: dec(proceeds),
		Currency:       "USD",
		Unit:           unit,
		Metal:          metal,
		Item:           "Generic",
	}
}

// equalDec fails the test when got is not numerically equal to want.
func equalDec(t *testing.T, name string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(dec(want)) {
		t.Errorf("%s = %s, want %s", name, got, want)
	}
}

// equalMoney fails the test when got is not numerically equal to want USD.
func equalMoney(t *testing.T, name string, got Money, want string) {
	t.Helper()
	if !got.Decimal().Equal(dec(want)) {
		t.Errorf("%s = %s, want %s USD", name, got.Decimal(), want)
	}
}
