package parser

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/etnz/trackmetal"
	"github.com/shopspring/decimal"
)

// GoldMoney reads GoldMoney account statements. One statement covers a single
// metal; the metal and therefore the weight unit come from the filename
// ("GoldMoney-<account>-<metal>-..."). Rows carry weights in the two amount
// columns and bury the money side in free-text memos, so most of the work here
// is memo archaeology.
type GoldMoney struct{}

func NewGoldMoney() *GoldMoney { return &GoldMoney{} }

var goldMoneyFileRe = regexp.MustCompile(`^GoldMoney-(\w+)-(\w+)`)

// transferIDRe extracts the service-wide transfer id GoldMoney appends to
// memos. Both legs of a transfer carry the same id, which is what lets the
// reconciler pair them.
var transferIDRe = regexp.MustCompile(`Thank you for using GoldMoney. \(([\w\d\-]+)\)`)

var (
	costRe = regexp.MustCompile(`for \$([\d\.\,]+)`)
	feeRe  = regexp.MustCompile(`plus a \$([\d\.\,]+) processing fee`)
)

func (p *GoldMoney) Parse(filename string) ([]*trackmetal.Transaction, error) {
	base := filepath.Base(filename)
	m := goldMoneyFileRe.FindStringSubmatch(base)
	if m == nil {
		return nil, fmt.Errorf("cannot parse account and metal from filename %q", base)
	}
	account := m[1]
	metal, err := trackmetal.ParseMetal(m[2])
	if err != nil {
		return nil, fmt.Errorf("filename %q: %w", base, err)
	}
	unit, err := goldMoneyUnit(metal)
	if err != nil {
		return nil, err
	}

	rows, err := readRows(filename)
	if err != nil {
		return nil, err
	}
	var txs []*trackmetal.Transaction
	for i, fields := range rows {
		if len(fields) < 7 {
			return nil, fmt.Errorf("row %d: expected 7 fields, got %d", i+2, len(fields))
		}
		date, err := parseDate(fields[0])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		id := fields[1]
		kind := fields[2]
		vault := fields[3]
		paid, err := parseAmount(fields[4])
		if err != nil {
			return nil, fmt.Errorf("row %d: amount paid: %w", i+2, err)
		}
		received, err := parseAmount(fields[5])
		if err != nil {
			return nil, fmt.Errorf("row %d: amount received: %w", i+2, err)
		}
		memo := fixMemo(kind, fields[6], id)

		typ, err := goldMoneyType(kind, memo, apparentType(paid, received))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		if typ == trackmetal.TransferIn || typ == trackmetal.TransferOut {
			id, err = transferID(memo)
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", i+2, err)
			}
		}
		// The statement columns only carry the metal weight. The money side of
		// a purchase or sale hides in the memo text.
		if paid.IsZero() && typ != trackmetal.TransferOut {
			paid = memoAmount(memo)
		}
		if received.IsZero() && typ != trackmetal.TransferIn {
			received = memoAmount(memo)
		}

		txs = append(txs, &trackmetal.Transaction{
			Service:        "GoldMoney",
			Account:        account,
			Date:           date,
			ID:             id,
			Type:           typ,
			Vault:          vault,
			AmountPaid:     paid,
			AmountReceived: received,
			Currency:       "USD",
			Unit:           unit,
			Metal:          metal,
			Item:           "Generic",
			Memo:           memo,
		})
	}
	return txs, nil
}

// goldMoneyUnit returns the unit GoldMoney keeps its books in. All metals are
// in grams except silver, which is in troy ounces.
func goldMoneyUnit(metal trackmetal.Metal) (trackmetal.Unit, error) {
	switch metal {
	case trackmetal.Gold, trackmetal.Platinum, trackmetal.Palladium:
		return trackmetal.Gram, nil
	case trackmetal.Silver:
		return trackmetal.TroyOz, nil
	default:
		return 0, fmt.Errorf("no GoldMoney weight unit for metal %s", metal)
	}
}

// apparentType infers the direction from which amount column is filled.
func apparentType(paid, received decimal.Decimal) trackmetal.Type {
	switch {
	case paid.IsPositive() && received.IsZero():
		return trackmetal.Sale
	case paid.IsZero() && received.IsPositive():
		return trackmetal.Purchase
	default:
		return trackmetal.Indeterminate
	}
}

// fixMemo folds the type column into the memo so the amount and transfer-id
// regexes see one consistent text, the way the statements looked before
// GoldMoney split the column out.
func fixMemo(kind, memo, id string) string {
	memo = kind + " " + memo
	memo = strings.ReplaceAll(memo, "GoldMoney Fee: 0.00%", "")
	if strings.Contains(strings.ToLower(kind), "payment") {
		memo = memo + "Thank you for using GoldMoney. (" + id + ")"
	}
	return memo
}

func transferID(memo string) (string, error) {
	m := transferIDRe.FindStringSubmatch(memo)
	if m == nil {
		return "", fmt.Errorf("cannot parse transfer transaction id from memo %q", memo)
	}
	return m[1], nil
}

// memoAmount digs the money amount out of a memo like "GoldGram purchase by
// e-check on 2006-Jan-27 for USD1,099.00 of goldgrams ...". Early statements
// list the processing fee separately instead of totalling it.
func memoAmount(memo string) decimal.Decimal {
	if strings.Contains(memo, "USD") {
		memo = strings.ReplaceAll(memo, "USD", "$")
		memo = strings.ReplaceAll(memo, "$ ", "$")
	}
	var amount decimal.Decimal
	if m := costRe.FindStringSubmatch(memo); m != nil {
		s := strings.TrimSuffix(m[1], ".")
		if v, err := parseAmount(s); err == nil {
			amount = v
		}
	}
	if !strings.Contains(memo, "Thank you for using GoldMoney") {
		if m := feeRe.FindStringSubmatch(memo); m != nil {
			if v, err := parseAmount(m[1]); err == nil {
				amount = amount.Add(v)
			}
		}
	}
	return amount
}

// goldMoneyType decides the transaction type from the statement's type column,
// falling back to the memo for exchanges. An exchange of a metal for the same
// metal is really a transfer between vaults.
func goldMoneyType(kind, memo string, apparent trackmetal.Type) (trackmetal.Type, error) {
	switch strings.ToLower(kind) {
	case "account fee", "storage fee", "payment fee":
		return trackmetal.StorageFeeInMetal, nil
	case "buy metal":
		return trackmetal.Purchase, nil
	case "sell metal":
		return trackmetal.Sale, nil
	case "exchange metal":
		if apparent == trackmetal.Indeterminate {
			return exchangeType(memo)
		}
		if sameMetalExchange(memo) {
			if apparent == trackmetal.Sale {
				return trackmetal.TransferOut, nil
			}
			return trackmetal.TransferIn, nil
		}
		switch apparent {
		case trackmetal.Purchase:
			return trackmetal.PurchaseViaExchange, nil
		case trackmetal.Sale:
			return trackmetal.SaleViaExchange, nil
		default:
			return apparent, nil
		}
	default:
		if apparent == trackmetal.Sale {
			return trackmetal.TransferOut, nil
		}
		return trackmetal.TransferIn, nil
	}
}

var sameMetalPairs = []string{
	"silver-to-silver",
	"gold-to-gold",
	"platinum-to-platinum",
	"palladium-to-palladium",
}

func sameMetalExchange(memo string) bool {
	memo = strings.ToLower(memo)
	for _, pair := range sameMetalPairs {
		if strings.Contains(memo, pair) {
			return true
		}
	}
	return false
}

var exchangeRe = regexp.MustCompile(`(\w+)-to-(\w+) exchange`)

func exchangeType(memo string) (trackmetal.Type, error) {
	lower := strings.ToLower(memo)
	m := exchangeRe.FindStringSubmatch(lower)
	if m == nil {
		return 0, fmt.Errorf("cannot identify transaction from exchange memo %q", memo)
	}
	if m[1] == m[2] {
		return 0, fmt.Errorf("cannot identify transaction from memo %q", memo)
	}
	switch {
	case strings.Contains(lower, "sale"):
		return trackmetal.Sale, nil
	case strings.Contains(lower, "purchase"):
		return trackmetal.Purchase, nil
	case strings.Contains(lower, "exchange"):
		return trackmetal.Sale, nil
	default:
		return 0, fmt.Errorf("cannot identify transaction from memo %q", memo)
	}
}
