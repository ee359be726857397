package trackmetal

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Lot is a single tracked purchase: an open, partially-depletable position
// with its own cost basis, used for FIFO disposal accounting.
//
// Lots are owned exclusively by the Inventory that opened them. All mutating
// operations are unexported so that no caller outside this package can alias
// or mutate a lot; external consumers only ever see value copies.
type Lot struct {
	id             string
	purchaseDate   time.Time
	originalWeight decimal.Decimal
	currentWeight  decimal.Decimal
	unit           Unit
	metal          Metal
	item           string
	originalBasis  Money
	adjustedBasis  Money
	service        string
	account        string
	vault          string
	history        []string
}

const shortDate = "2006-01-02"

func newLot(service, transactionID string, purchaseDate time.Time, weight decimal.Decimal,
	unit Unit, basis Money, metal Metal, vault, account, item string) *Lot {
	l := &Lot{
		id:             transactionID,
		purchaseDate:   purchaseDate,
		originalWeight: weight,
		currentWeight:  weight,
		unit:           unit,
		metal:          metal,
		item:           item,
		originalBasis:  basis,
		adjustedBasis:  basis,
		service:        service,
		account:        account,
		vault:          vault,
	}
	l.log("opened lot %s bought %s %s %s (%s) for %s, vault %s, account %s",
		purchaseDate.Format(shortDate), weight, unit, metal, item, basis, vault, account)
	return l
}

func (l *Lot) ID() string               { return l.id }
func (l *Lot) PurchaseDate() time.Time  { return l.purchaseDate }
func (l *Lot) Unit() Unit               { return l.unit }
func (l *Lot) Metal() Metal             { return l.metal }
func (l *Lot) Item() string             { return l.item }
func (l *Lot) Service() string          { return l.service }
func (l *Lot) Account() string          { return l.account }
func (l *Lot) Vault() string            { return l.vault }
func (l *Lot) OriginalBasis() Money     { return l.originalBasis }
func (l *Lot) AdjustedBasis() Money     { return l.adjustedBasis }
func (l *Lot) OriginalWeight() decimal.Decimal { return l.originalWeight }

// History returns a copy of the lot's append-only narrative log.
func (l *Lot) History() []string {
	h := make([]string, len(l.history))
	copy(h, l.history)
	return h
}

// CurrentWeight returns the remaining weight expressed in the given unit.
func (l *Lot) CurrentWeight(unit Unit) (decimal.Decimal, error) {
	return ConvertWeight(l.currentWeight, l.unit, unit)
}

// IsDepleted reports whether nothing remains of the lot. The comparison is
// exact: decimal arithmetic keeps depletion at precisely zero.
func (l *Lot) IsDepleted() bool { return l.currentWeight.IsZero() }

func (l *Lot) log(format string, args ...any) {
	l.history = append(l.history, fmt.Sprintf(format, args...))
}

func (l *Lot) setVault(vault string) {
	l.vault = vault
	l.log("set vault to %s", vault)
}

func (l *Lot) setAccount(account string) {
	l.account = account
	l.log("set account to %s", account)
}

// decreaseWeight converts the given weight into the lot's native unit and
// subtracts it. Going below zero is an invalid state transition.
func (l *Lot) decreaseWeight(w decimal.Decimal, unit Unit) error {
	converted, err := ConvertWeight(w, unit, l.unit)
	if err != nil {
		return err
	}
	next := l.currentWeight.Sub(converted)
	if next.IsNegative() {
		return fmt.Errorf("lot %s: cannot decrease lot weight by more than its current weight", l.id)
	}
	l.currentWeight = next
	return nil
}

func (l *Lot) decreaseWeightViaFee(on time.Time, w decimal.Decimal, unit Unit) error {
	if err := l.decreaseWeight(w, unit); err != nil {
		return err
	}
	l.log("%s decreased weight by %s %s as fee", on.Format(shortDate), w, unit)
	return nil
}

func (l *Lot) decreaseWeightViaTransfer(on time.Time, w decimal.Decimal, unit Unit, account, vault string) error {
	if err := l.decreaseWeight(w, unit); err != nil {
		return err
	}
	l.log("%s transferred %s %s to account %s, vault %s", on.Format(shortDate), w, unit, account, vault)
	return nil
}

// applyFeeInCurrency adds a currency-denominated fee to the adjusted basis.
// The remaining weight is untouched.
func (l *Lot) applyFeeInCurrency(on time.Time, fee Money) error {
	converted, err := fee.ConvertTo(l.adjustedBasis.Currency())
	if err != nil {
		return fmt.Errorf("lot %s: %w", l.id, err)
	}
	l.adjustedBasis = l.adjustedBasis.Add(converted)
	l.log("%s applied fee %s", on.Format(shortDate), fee)
	return nil
}

var one = decimal.NewFromInt(1)

// sell disposes part of the lot and returns the immutable taxable-sale
// snapshot. The percentage of the lot being sold is computed before any
// mutation, and the same percentage drives both the snapshot's basis and the
// lot's own basis reduction so the two stay consistent.
func (l *Lot) sell(on time.Time, amount Amount, salePrice Money) (TaxableSale, error) {
	if l.metal != amount.Metal {
		return TaxableSale{}, fmt.Errorf("lot %s: metal types in sell do not match: lot type %s, sale type %s", l.id, l.metal, amount.Metal)
	}
	if l.item != amount.Item {
		return TaxableSale{}, fmt.Errorf("lot %s: item types in sell do not match: lot type %q, sale type %q", l.id, l.item, amount.Item)
	}
	weightToSell, err := amount.In(l.unit)
	if err != nil {
		return TaxableSale{}, fmt.Errorf("lot %s: %w", l.id, err)
	}
	if weightToSell.GreaterThan(l.currentWeight) {
		return TaxableSale{}, fmt.Errorf("lot %s: cannot sell more than the lot's current weight", l.id)
	}

	percentOfLot := weightToSell.Div(l.currentWeight)
	sale := TaxableSale{
		Service:       l.service,
		LotID:         l.id,
		Metal:         l.metal,
		Item:          l.item,
		Unit:          l.unit,
		PurchaseDate:  l.purchaseDate,
		SaleDate:      on,
		SaleWeight:    weightToSell,
		AdjustedBasis: l.adjustedBasis.Mul(percentOfLot),
		SalePrice:     salePrice,
	}
	l.currentWeight = l.currentWeight.Sub(weightToSell)
	l.adjustedBasis = l.adjustedBasis.Mul(one.Sub(percentOfLot))
	l.log("%s sold %s %s %s for %s", on.Format(shortDate), amount.Weight, amount.Unit, amount.Metal, salePrice)
	return sale, nil
}

// amountToSell returns how much of a desired disposal this lot can cover:
// min(desired, current weight), expressed in the lot's native unit.
func (l *Lot) amountToSell(desired Amount) (Amount, error) {
	if l.metal != desired.Metal {
		return Amount{}, fmt.Errorf("lot %s: metal types in amountToSell do not match: lot type %s, sale type %s", l.id, l.metal, desired.Metal)
	}
	if l.item != desired.Item {
		return Amount{}, fmt.Errorf("lot %s: item types in amountToSell do not match: lot type %q, sale type %q", l.id, l.item, desired.Item)
	}
	w, err := desired.In(l.unit)
	if err != nil {
		return Amount{}, fmt.Errorf("lot %s: %w", l.id, err)
	}
	if l.currentWeight.LessThan(w) {
		w = l.currentWeight
	}
	return Amount{Weight: w, Metal: l.metal, Item: l.item, Unit: l.unit}, nil
}

// split carves the given weight off into a new lot placed in the destination
// account and vault. The new lot keeps the original purchase date (the
// holding period survives a transfer) and takes a proportional share of both
// the original and the adjusted basis.
func (l *Lot) split(on time.Time, w decimal.Decimal, unit Unit, account, vault string) (*Lot, error) {
	converted, err := ConvertWeight(w, unit, l.unit)
	if err != nil {
		return nil, fmt.Errorf("lot %s: %w", l.id, err)
	}
	if converted.GreaterThan(l.currentWeight) {
		return nil, fmt.Errorf("lot %s: cannot split off more than the lot's current weight", l.id)
	}
	percentOfCurrent := converted.Div(l.currentWeight)
	percentOfOriginal := converted.Div(l.originalWeight)

	part := newLot(l.service, l.id+"-split", l.purchaseDate, converted, l.unit,
		l.originalBasis.Mul(percentOfOriginal), l.metal, vault, account, l.item)
	part.adjustedBasis = l.adjustedBasis.Mul(percentOfCurrent)
	part.log("split from lot %s", l.id)

	if err := l.decreaseWeightViaTransfer(on, converted, l.unit, account, vault); err != nil {
		return nil, err
	}
	l.adjustedBasis = l.adjustedBasis.Mul(one.Sub(percentOfCurrent))
	return part, nil
}

// snapshot returns a detached value copy safe to hand outside the package.
func (l *Lot) snapshot() Lot {
	c := *l
	c.history = l.History()
	return c
}

// TaxableSale is the immutable record of one realized disposal: the moment a
// sale was drawn against one lot, with the proportional adjusted basis
// captured from the lot's pre-mutation state.
type TaxableSale struct {
	Service       string
	LotID         string
	Metal         Metal
	Item          string
	Unit          Unit
	PurchaseDate  time.Time
	SaleDate      time.Time
	SaleWeight    decimal.Decimal
	AdjustedBasis Money
	SalePrice     Money
}

// NetGain returns the realized gain: proceeds minus adjusted basis.
func (s TaxableSale) NetGain() Money { return s.SalePrice.Sub(s.AdjustedBasis) }
