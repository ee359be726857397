package trackmetal

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/shopspring/decimal"
)

// AnyVault is the sentinel vault name matching every vault when an in-metal
// fee is applied. Services that bill storage per account rather than per
// vault use it.
const AnyVault = "any"

// Inventory is the lot allocation engine. It exclusively owns the lots
// opened during a replay and the taxable sales realized against them; no
// other component ever holds a mutable reference to a lot.
//
// An Inventory is single-use: replaying a second batch into the same
// instance accumulates state, so callers wanting a fresh run must start from
// a fresh Inventory.
type Inventory struct {
	lots  []*Lot
	sales []TaxableSale
}

// NewInventory creates an empty inventory.
func NewInventory() *Inventory {
	return &Inventory{}
}

// Process reconciles a transaction batch with the given strategy and replays
// it. This is the whole pipeline: callers that already reconciled can use
// Replay directly.
func (inv *Inventory) Process(txs []*Transaction, strategy MatchStrategy) error {
	slog.Info("reconciling transactions", "count", len(txs), "strategy", strategy.String())
	reconciled, err := Reconcile(txs, strategy)
	if err != nil {
		return fmt.Errorf("reconciliation failed: %w", err)
	}
	slog.Info("replaying transactions", "count", len(reconciled))
	return inv.Replay(reconciled)
}

// Replay applies a reconciled transaction stream in chronological order,
// ties broken by stable input order. The first failure aborts the batch:
// there is no partial-success mode and the inventory must be considered
// unusable after an error.
func (inv *Inventory) Replay(txs []*Transaction) error {
	for _, tx := range byDate(txs) {
		if err := inv.apply(tx); err != nil {
			return err
		}
	}
	return nil
}

func (inv *Inventory) apply(tx *Transaction) error {
	switch tx.Type {
	case Purchase, PurchaseViaExchange:
		inv.purchase(tx)
		return nil
	case Sale, SaleViaExchange:
		return inv.sell(tx)
	case Transfer, TransferIn:
		return inv.transfer(tx)
	case StorageFeeInMetal:
		return inv.applyFeeInMetal(tx)
	case StorageFeeInCurrency:
		return inv.applyFeeInCurrency(tx)
	default:
		// TransferOut legs are consumed by reconciliation and Indeterminate
		// is parser-internal: neither may reach the dispatch.
		return fmt.Errorf("transaction %s: unsupported type %s reached the allocation engine", tx.ID, tx.Type)
	}
}

// availableLots returns the open lots accepted by the filter in FIFO order.
func (inv *Inventory) availableLots(accept func(*Lot) bool) []*Lot {
	var lots []*Lot
	for _, l := range inv.lots {
		if !l.IsDepleted() && accept(l) {
			lots = append(lots, l)
		}
	}
	sort.SliceStable(lots, func(i, j int) bool { return lots[i].purchaseDate.Before(lots[j].purchaseDate) })
	return lots
}

// available sums the current weights of the given lots in the given unit.
func available(lots []*Lot, unit Unit) (decimal.Decimal, error) {
	var total decimal.Decimal
	for _, l := range lots {
		w, err := l.CurrentWeight(unit)
		if err != nil {
			return decimal.Decimal{}, fmt.Errorf("lot %s: %w", l.id, err)
		}
		total = total.Add(w)
	}
	return total, nil
}

// purchase opens a new lot scoped to the transaction's service, account,
// vault, metal and item type.
func (inv *Inventory) purchase(tx *Transaction) {
	slog.Debug("purchase", "date", tx.Date.Format(shortDate), "weight", tx.AmountReceived, "unit", tx.Unit.String(), "metal", tx.Metal.String(), "account", tx.Account)
	lot := newLot(tx.Service, tx.ID, tx.Date, tx.AmountReceived, tx.Unit,
		M(tx.AmountPaid, tx.Currency), tx.Metal, tx.Vault, tx.Account, tx.Item)
	inv.lots = append(inv.lots, lot)
}

// normalizationUnit is the unit the per-lot share of a sale is computed in:
// grams for physical metal, the native unit for crypto (which has no weight).
func normalizationUnit(tx *Transaction) Unit {
	if tx.Unit == CryptoCoin {
		return CryptoCoin
	}
	return Gram
}

// sell FIFO-depletes the open lots matching the sale's scope, emitting one
// taxable sale per lot touched, each carrying its proportional share of the
// proceeds. Availability is verified up front so a failed sale leaves every
// lot untouched.
func (inv *Inventory) sell(tx *Transaction) error {
	slog.Debug("sale", "date", tx.Date.Format(shortDate), "weight", tx.AmountPaid, "unit", tx.Unit.String(), "metal", tx.Metal.String(), "account", tx.Account)
	lots := inv.availableLots(func(l *Lot) bool {
		return l.metal == tx.Metal && l.item == tx.Item && l.service == tx.Service && l.account == tx.Account
	})

	// The availability check and the per-lot sale shares are both computed
	// in the normalization unit: converting into grams only ever multiplies,
	// which keeps the check exact.
	unit := normalizationUnit(tx)
	totalToSell, err := ConvertWeight(tx.AmountPaid, tx.Unit, unit)
	if err != nil {
		return fmt.Errorf("transaction %s: %w", tx.ID, err)
	}
	total, err := available(lots, unit)
	if err != nil {
		return fmt.Errorf("transaction %s: %w", tx.ID, err)
	}
	if total.LessThan(totalToSell) {
		return fmt.Errorf("transaction %s: cannot sell more metal than is available (want %s %s, have %s)",
			tx.ID, tx.AmountPaid, tx.Unit, total)
	}

	remaining := tx.Amount()
	for _, lot := range lots {
		if !remaining.IsPositive() {
			break
		}
		draw, err := lot.amountToSell(remaining)
		if err != nil {
			return fmt.Errorf("transaction %s: %w", tx.ID, err)
		}
		drawNormalized, err := draw.In(unit)
		if err != nil {
			return fmt.Errorf("transaction %s: %w", tx.ID, err)
		}
		percentOfSale := drawNormalized.Div(totalToSell)
		proceeds := M(percentOfSale.Mul(tx.AmountReceived), tx.Currency)

		desiredInLot, err := remaining.In(lot.unit)
		if err != nil {
			return fmt.Errorf("transaction %s: %w", tx.ID, err)
		}
		covered := desiredInLot.LessThanOrEqual(lot.currentWeight)
		sale, err := lot.sell(tx.Date, draw, proceeds)
		if err != nil {
			return fmt.Errorf("transaction %s: %w", tx.ID, err)
		}
		inv.sales = append(inv.sales, sale)
		if covered {
			// This lot absorbed the whole remainder.
			remaining.Weight = decimal.Decimal{}
			break
		}
		if err := remaining.Decrease(draw.Weight, draw.Unit); err != nil {
			return fmt.Errorf("transaction %s: %w", tx.ID, err)
		}
	}
	if remaining.IsPositive() {
		return fmt.Errorf("transaction %s: cannot sell more metal than is available", tx.ID)
	}
	return nil
}

// transfer moves weight from the stamped source account and vault into the
// transaction's destination, FIFO over the source lots: a lot that covers
// the remainder is split, a smaller lot is reassigned whole.
func (inv *Inventory) transfer(tx *Transaction) error {
	if tx.FromAccount == "" && tx.FromVault == "" {
		return fmt.Errorf("transaction %s: transfer has no source account or vault (unreconciled leg)", tx.ID)
	}
	slog.Debug("transfer", "date", tx.Date.Format(shortDate), "weight", tx.AmountReceived, "unit", tx.Unit.String(), "metal", tx.Metal.String(),
		"from_account", tx.FromAccount, "from_vault", tx.FromVault, "to_account", tx.Account, "to_vault", tx.Vault)
	lots := inv.availableLots(func(l *Lot) bool {
		return l.metal == tx.Metal && l.item == tx.Item && l.service == tx.Service &&
			l.account == tx.FromAccount && l.vault == tx.FromVault
	})

	unit := normalizationUnit(tx)
	wanted, err := ConvertWeight(tx.AmountReceived, tx.Unit, unit)
	if err != nil {
		return fmt.Errorf("transaction %s: %w", tx.ID, err)
	}
	total, err := available(lots, unit)
	if err != nil {
		return fmt.Errorf("transaction %s: %w", tx.ID, err)
	}
	if total.LessThan(wanted) {
		return fmt.Errorf("transaction %s: requested transfer exceeds available lots (want %s %s, have %s)",
			tx.ID, tx.AmountReceived, tx.Unit, total)
	}

	remaining := tx.Amount()
	for _, lot := range lots {
		if !remaining.IsPositive() {
			break
		}
		needed, err := remaining.In(lot.unit)
		if err != nil {
			return fmt.Errorf("transaction %s: %w", tx.ID, err)
		}
		if lot.currentWeight.GreaterThanOrEqual(needed) {
			// Split the lot and move exactly the needed weight.
			part, err := lot.split(tx.Date, needed, lot.unit, tx.Account, tx.Vault)
			if err != nil {
				return fmt.Errorf("transaction %s: %w", tx.ID, err)
			}
			inv.lots = append(inv.lots, part)
			break
		}
		// Reassign the entire lot to the destination and keep going.
		transferred := lot.currentWeight
		lot.setAccount(tx.Account)
		lot.setVault(tx.Vault)
		if err := remaining.Decrease(transferred, lot.unit); err != nil {
			return fmt.Errorf("transaction %s: %w", tx.ID, err)
		}
	}
	return nil
}

// applyFeeInMetal FIFO-depletes the matching lots by the fee weight.
func (inv *Inventory) applyFeeInMetal(tx *Transaction) error {
	slog.Debug("storage fee in metal", "date", tx.Date.Format(shortDate), "weight", tx.AmountPaid, "unit", tx.Unit.String(), "metal", tx.Metal.String(), "account", tx.Account)
	lots := inv.availableLots(func(l *Lot) bool {
		return l.metal == tx.Metal && l.item == tx.Item && l.service == tx.Service &&
			l.account == tx.Account && (tx.Vault == AnyVault || l.vault == tx.Vault)
	})

	unit := normalizationUnit(tx)
	wanted, err := ConvertWeight(tx.AmountPaid, tx.Unit, unit)
	if err != nil {
		return fmt.Errorf("transaction %s: %w", tx.ID, err)
	}
	total, err := available(lots, unit)
	if err != nil {
		return fmt.Errorf("transaction %s: %w", tx.ID, err)
	}
	if total.LessThan(wanted) {
		return fmt.Errorf("transaction %s: storage fee exceeds available metal (want %s %s, have %s)",
			tx.ID, tx.AmountPaid, tx.Unit, total)
	}

	fee := tx.Amount()
	for _, lot := range lots {
		if !fee.IsPositive() {
			break
		}
		needed, err := fee.In(lot.unit)
		if err != nil {
			return fmt.Errorf("transaction %s: %w", tx.ID, err)
		}
		if lot.currentWeight.GreaterThanOrEqual(needed) {
			if err := lot.decreaseWeightViaFee(tx.Date, needed, lot.unit); err != nil {
				return fmt.Errorf("transaction %s: %w", tx.ID, err)
			}
			break
		}
		// Lot expended, some fee remaining.
		depleted := lot.currentWeight
		if err := lot.decreaseWeightViaFee(tx.Date, depleted, lot.unit); err != nil {
			return fmt.Errorf("transaction %s: %w", tx.ID, err)
		}
		if err := fee.Decrease(depleted, lot.unit); err != nil {
			return fmt.Errorf("transaction %s: %w", tx.ID, err)
		}
	}
	return nil
}

// applyFeeInCurrency adds a currency fee to the adjusted basis of the single
// earliest-purchased matching lot. No weight changes hands.
func (inv *Inventory) applyFeeInCurrency(tx *Transaction) error {
	slog.Debug("storage fee in currency", "date", tx.Date.Format(shortDate), "fee", tx.AmountPaid, "currency", tx.Currency, "account", tx.Account)
	lots := inv.availableLots(func(l *Lot) bool {
		return l.metal == tx.Metal && l.item == tx.Item && l.service == tx.Service &&
			l.account == tx.Account && (tx.Vault == AnyVault || l.vault == tx.Vault)
	})
	if len(lots) == 0 {
		return fmt.Errorf("transaction %s: no open lot to absorb currency fee", tx.ID)
	}
	if err := lots[0].applyFeeInCurrency(tx.Date, M(tx.AmountPaid, tx.Currency)); err != nil {
		return fmt.Errorf("transaction %s: %w", tx.ID, err)
	}
	return nil
}

// Lots returns a read-only snapshot of every lot, open and depleted, in the
// order they were opened.
func (inv *Inventory) Lots() []Lot {
	lots := make([]Lot, 0, len(inv.lots))
	for _, l := range inv.lots {
		lots = append(lots, l.snapshot())
	}
	return lots
}

// Lot returns a snapshot of the lot with the given ID.
func (inv *Inventory) Lot(id string) (Lot, bool) {
	for _, l := range inv.lots {
		if l.id == id {
			return l.snapshot(), true
		}
	}
	return Lot{}, false
}

// Sales returns a read-only snapshot of the realized taxable sales in the
// order they were emitted.
func (inv *Inventory) Sales() []TaxableSale {
	sales := make([]TaxableSale, len(inv.sales))
	copy(sales, inv.sales)
	return sales
}
