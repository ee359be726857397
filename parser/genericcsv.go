package parser

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/trackmetal"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// GenericCSV reads the house-standard spreadsheet format for services that do
// not ship a machine-readable export: one row per transaction with columns
// date, vault, id, type, currency amount, currency, weight, unit, metal, and
// optionally an item type in column 13. The service name comes from the
// filename, so one parser covers any number of services.
type GenericCSV struct{}

func NewGenericCSV() *GenericCSV { return &GenericCSV{} }

func (p *GenericCSV) Parse(filename string) ([]*trackmetal.Transaction, error) {
	service, account, err := serviceAndAccount(filename)
	if err != nil {
		return nil, err
	}
	rows, err := p.rows(filename)
	if err != nil {
		return nil, err
	}
	var txs []*trackmetal.Transaction
	for i, fields := range rows {
		tx, err := genericTransaction(fields, service, account)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

func (p *GenericCSV) rows(filename string) ([][]string, error) {
	if !strings.HasSuffix(strings.ToLower(filename), ".csv") {
		return readRows(filename)
	}
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	all, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(all) > 0 {
		all = all[1:] // header
	}
	return all, nil
}

// genericTransaction builds a transaction from a generic row. It is shared
// with the JSON parser, which flattens its records into the same column
// order.
func genericTransaction(fields []string, service, account string) (*trackmetal.Transaction, error) {
	if len(fields) < 9 {
		return nil, fmt.Errorf("expected at least 9 fields, got %d", len(fields))
	}
	date, err := parseDate(fields[0])
	if err != nil {
		return nil, err
	}
	vault := fields[1]
	id := strings.TrimSpace(fields[2])
	if id == "" {
		// Some services leave the id blank. The engine needs one per lot
		// opened, so mint it.
		id = uuid.NewString()[:8]
	}
	typ, err := genericType(fields[3])
	if err != nil {
		return nil, err
	}
	currencyAmount, err := parseAmount(fields[4])
	if err != nil {
		return nil, fmt.Errorf("currency amount: %w", err)
	}
	currency := strings.ToUpper(fields[5])
	weight, err := parseAmount(fields[6])
	if err != nil {
		return nil, fmt.Errorf("weight: %w", err)
	}
	unit, err := trackmetal.ParseUnit(fields[7])
	if err != nil {
		return nil, err
	}
	metal, err := trackmetal.ParseMetal(fields[8])
	if err != nil {
		return nil, err
	}
	item := "Generic"
	if len(fields) > 12 && strings.TrimSpace(fields[12]) != "" {
		item = fields[12]
	}

	var paid, received decimal.Decimal
	switch typ {
	case trackmetal.Purchase:
		paid, received = currencyAmount, weight
	case trackmetal.Sale:
		paid, received = weight, currencyAmount
	case trackmetal.TransferIn:
		received = weight
	case trackmetal.TransferOut:
		paid = weight
	case trackmetal.StorageFeeInMetal:
		paid = weight
	case trackmetal.StorageFeeInCurrency:
		paid = currencyAmount.Abs()
	default:
		return nil, fmt.Errorf("unknown transaction type %s", typ)
	}

	return &trackmetal.Transaction{
		Service:        service,
		Account:        account,
		Date:           date,
		ID:             id,
		Type:           typ,
		Vault:          vault,
		AmountPaid:     paid,
		AmountReceived: received,
		Currency:       currency,
		Unit:           unit,
		Metal:          metal,
		Item:           item,
	}, nil
}

func genericType(s string) (trackmetal.Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "buy":
		return trackmetal.Purchase, nil
	case "sell":
		return trackmetal.Sale, nil
	case "storage_fee", "storage fee":
		return trackmetal.StorageFeeInCurrency, nil
	case "metal_fee", "metal fee":
		return trackmetal.StorageFeeInMetal, nil
	case "send":
		return trackmetal.TransferOut, nil
	case "receive":
		return trackmetal.TransferIn, nil
	default:
		return 0, fmt.Errorf("transaction type %q not recognized", s)
	}
}
