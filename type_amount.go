package trackmetal

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Amount is a typed, unit-aware quantity of metal. It is used both as the
// value carried by a transaction and as mutable working state inside the
// allocation engine (remaining-to-sell, remaining-fee).
type Amount struct {
	Weight decimal.Decimal
	Metal  Metal
	Item   string
	Unit   Unit
}

func (a Amount) String() string {
	return fmt.Sprintf("%s %s %s (%s)", a.Weight, a.Unit, a.Metal, a.Item)
}

func (a Amount) IsZero() bool     { return a.Weight.IsZero() }
func (a Amount) IsPositive() bool { return a.Weight.IsPositive() }

// In returns the weight expressed in the given unit.
func (a Amount) In(unit Unit) (decimal.Decimal, error) {
	return ConvertWeight(a.Weight, a.Unit, unit)
}

// Sub subtracts another amount, converting it into a's unit. The metal and
// item types must match: amounts of different holdings are not fungible.
func (a Amount) Sub(b Amount) (Amount, error) {
	if a.Metal != b.Metal {
		return Amount{}, fmt.Errorf("metal types do not match: %s and %s", a.Metal, b.Metal)
	}
	if a.Item != b.Item {
		return Amount{}, fmt.Errorf("item types do not match: %q and %q", a.Item, b.Item)
	}
	w, err := ConvertWeight(b.Weight, b.Unit, a.Unit)
	if err != nil {
		return Amount{}, err
	}
	a.Weight = a.Weight.Sub(w)
	return a, nil
}

// Decrease reduces the amount in place by a weight expressed in any
// compatible unit. Going below zero is an invalid state transition.
func (a *Amount) Decrease(w decimal.Decimal, unit Unit) error {
	converted, err := ConvertWeight(w, unit, a.Unit)
	if err != nil {
		return err
	}
	next := a.Weight.Sub(converted)
	if next.IsNegative() {
		return fmt.Errorf("cannot decrease %s below zero", a)
	}
	a.Weight = next
	return nil
}
