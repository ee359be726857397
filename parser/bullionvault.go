package parser

import (
	"fmt"

	"github.com/etnz/trackmetal"
	"github.com/shopspring/decimal"
)

// BullionVault reads BullionVault trade history exports. BullionVault keeps
// all weights in grams except silver, which it reports in kilograms.
type BullionVault struct{}

func NewBullionVault() *BullionVault { return &BullionVault{} }

var thousand = decimal.NewFromInt(1000)

func (p *BullionVault) Parse(filename string) ([]*trackmetal.Transaction, error) {
	_, account, err := serviceAndAccount(filename)
	if err != nil {
		return nil, err
	}
	rows, err := readRows(filename)
	if err != nil {
		return nil, err
	}
	var txs []*trackmetal.Transaction
	for i, fields := range rows {
		if len(fields) < 17 {
			return nil, fmt.Errorf("row %d: expected 17 fields, got %d", i+2, len(fields))
		}
		date, err := parseDate(fields[0])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		id := fields[1]
		typ, err := bullionVaultType(fields[2])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		vault := fields[3]
		metal, err := trackmetal.ParseMetal(fields[7])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		weight, err := parseAmount(fields[14])
		if err != nil {
			return nil, fmt.Errorf("row %d: weight: %w", i+2, err)
		}
		commission, err := parseAmount(fields[15])
		if err != nil {
			return nil, fmt.Errorf("row %d: commission: %w", i+2, err)
		}
		consideration, err := parseAmount(fields[16])
		if err != nil {
			return nil, fmt.Errorf("row %d: consideration: %w", i+2, err)
		}
		total := commission.Add(consideration)
		if metal == trackmetal.Silver {
			weight = weight.Mul(thousand)
		}

		var paid, received decimal.Decimal
		switch typ {
		case trackmetal.Purchase:
			paid, received = total, weight
		case trackmetal.Sale:
			paid, received = weight, total
		case trackmetal.StorageFeeInCurrency:
			paid = total.Abs()
		}

		txs = append(txs, &trackmetal.Transaction{
			Service:        "BullionVault",
			Account:        account,
			Date:           date,
			ID:             id,
			Type:           typ,
			Vault:          vault,
			AmountPaid:     paid,
			AmountReceived: received,
			Currency:       fields[6],
			Unit:           trackmetal.Gram,
			Metal:          metal,
			Item:           "Generic",
		})
	}
	return txs, nil
}

func bullionVaultType(s string) (trackmetal.Type, error) {
	switch s {
	case "buy", "BUY":
		return trackmetal.Purchase, nil
	case "sell", "SELL":
		return trackmetal.Sale, nil
	case "storage_fee", "STORAGE_FEE":
		return trackmetal.StorageFeeInCurrency, nil
	default:
		return 0, fmt.Errorf("transaction type %q not recognized", s)
	}
}
