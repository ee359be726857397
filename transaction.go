package trackmetal

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Type is the closed enumeration of transaction kinds.
type Type int

const (
	// Indeterminate is parser-internal: a row whose kind could not be
	// decided yet. It must never reach the allocation engine.
	Indeterminate Type = iota
	Purchase
	// PurchaseViaExchange is the buy side of a heterogeneous metal-to-metal
	// exchange (e.g. gold-to-silver), which forces a sale and a purchase.
	PurchaseViaExchange
	Sale
	SaleViaExchange
	StorageFeeInMetal
	StorageFeeInCurrency
	// Transfer is a movement between vaults or accounts. Before
	// reconciliation it marks an unresolved leg; after reconciliation it is
	// the single canonical event carrying the source account and vault.
	Transfer
	TransferOut
	TransferIn
)

func (t Type) String() string {
	switch t {
	case Indeterminate:
		return "Indeterminate"
	case Purchase:
		return "Purchase"
	case PurchaseViaExchange:
		return "PurchaseViaExchange"
	case Sale:
		return "Sale"
	case SaleViaExchange:
		return "SaleViaExchange"
	case StorageFeeInMetal:
		return "StorageFeeInMetal"
	case StorageFeeInCurrency:
		return "StorageFeeInCurrency"
	case Transfer:
		return "Transfer"
	case TransferOut:
		return "TransferOut"
	case TransferIn:
		return "TransferIn"
	default:
		return "unknown"
	}
}

// ParseType parses a transaction type name.
func ParseType(s string) (Type, error) {
	for t := Indeterminate; t <= TransferIn; t++ {
		if strings.EqualFold(s, t.String()) {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown transaction type %q", s)
}

// Transaction is the normalized record of one economic event, as produced by
// the file parsers. Exactly one of AmountPaid and AmountReceived is the
// semantically meaningful weight for a given type; Weight maps type to field.
type Transaction struct {
	Service string
	Account string
	Date    time.Time
	// ID is the service-assigned transaction identifier. It is not globally
	// unique: both legs of a transfer or exchange carry the same ID.
	ID             string
	Type           Type
	Vault          string
	AmountPaid     decimal.Decimal
	AmountReceived decimal.Decimal
	Currency       string
	Unit           Unit
	Metal          Metal
	Item           string
	Memo           string

	// Stamped on the receiving leg by reconciliation; empty before.
	FromAccount string
	FromVault   string
}

// Weight returns the metal weight this transaction moves: AmountReceived for
// purchase-like types, AmountPaid for sale-like and in-metal-fee types, and
// zero otherwise.
func (t *Transaction) Weight() decimal.Decimal {
	switch t.Type {
	case Purchase, PurchaseViaExchange, Transfer, TransferIn:
		return t.AmountReceived
	case Sale, SaleViaExchange, StorageFeeInMetal, TransferOut:
		return t.AmountPaid
	default:
		return decimal.Decimal{}
	}
}

// setWeight writes back through the same type-to-field mapping as Weight.
func (t *Transaction) setWeight(w decimal.Decimal) {
	switch t.Type {
	case Purchase, PurchaseViaExchange, Transfer, TransferIn:
		t.AmountReceived = w
	case Sale, SaleViaExchange, StorageFeeInMetal, TransferOut:
		t.AmountPaid = w
	}
}

// WeightIn returns the transaction weight expressed in the given unit.
func (t *Transaction) WeightIn(unit Unit) (decimal.Decimal, error) {
	return ConvertWeight(t.Weight(), t.Unit, unit)
}

// Amount returns the transaction weight as a typed amount.
func (t *Transaction) Amount() Amount {
	return Amount{Weight: t.Weight(), Metal: t.Metal, Item: t.Item, Unit: t.Unit}
}

// Duplicate returns a deep value copy, used to split the unmatched remainder
// off an exchange leg during reconciliation.
func (t *Transaction) Duplicate() *Transaction {
	d := *t
	return &d
}

// OppositeType returns the counterpart type on the other side of a like-kind
// exchange, or Indeterminate when the type has no counterpart.
func (t *Transaction) OppositeType() Type {
	switch t.Type {
	case Purchase:
		return Sale
	case Sale:
		return Purchase
	case PurchaseViaExchange:
		return SaleViaExchange
	case SaleViaExchange:
		return PurchaseViaExchange
	default:
		return Indeterminate
	}
}

// MakeTransfer reclassifies the transaction as the canonical receiving side
// of a transfer and stamps the source account and vault. It is irreversible
// and called exactly once per logical transfer, during reconciliation.
func (t *Transaction) MakeTransfer(fromAccount, fromVault string) {
	t.Type = Transfer
	t.FromAccount = fromAccount
	t.FromVault = fromVault
}
