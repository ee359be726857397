package parser

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/trackmetal"
)

// Mapping tells GenericJSON where to find each transaction field inside one
// record, as jsonpath expressions evaluated against the record object.
// Records locates the list of records in the document. Optional fields left
// empty fall back to the generic defaults (blank id, "Generic" item).
type Mapping struct {
	Records  string
	Date     string
	Vault    string
	ID       string
	Type     string
	Amount   string
	Currency string
	Weight   string
	Unit     string
	Metal    string
	Item     string
}

// DefaultMapping matches a plain JSON export: a top-level array of objects
// keyed like the generic spreadsheet columns.
func DefaultMapping() Mapping {
	return Mapping{
		Records:  "$[*]",
		Date:     "$.date",
		Vault:    "$.vault",
		ID:       "$.id",
		Type:     "$.type",
		Amount:   "$.amount",
		Currency: "$.currency",
		Weight:   "$.weight",
		Unit:     "$.unit",
		Metal:    "$.metal",
		Item:     "$.itemType",
	}
}

// GenericJSON reads a JSON export and maps its records onto transactions
// through configurable jsonpath expressions, so a new service only needs a
// mapping, not a parser.
type GenericJSON struct {
	mapping Mapping
}

func NewGenericJSON(mapping Mapping) *GenericJSON { return &GenericJSON{mapping: mapping} }

func (p *GenericJSON) Parse(filename string) ([]*trackmetal.Transaction, error) {
	service, account, err := serviceAndAccount(filename)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	var jobj any
	if err := json.Unmarshal(data, &jobj); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	jval, err := jsonpath.Get(p.mapping.Records, jobj)
	if err != nil {
		return nil, fmt.Errorf("records path %q: %w", p.mapping.Records, err)
	}
	records, ok := jval.([]any)
	if !ok {
		// jsonpath is never clear about whether it returns a list or a single
		// answer, so treat a lone object as a one-record list.
		records = []any{jval}
	}

	var txs []*trackmetal.Transaction
	for i, record := range records {
		fields := make([]string, 13)
		paths := []struct {
			index int
			path  string
		}{
			{0, p.mapping.Date},
			{1, p.mapping.Vault},
			{2, p.mapping.ID},
			{3, p.mapping.Type},
			{4, p.mapping.Amount},
			{5, p.mapping.Currency},
			{6, p.mapping.Weight},
			{7, p.mapping.Unit},
			{8, p.mapping.Metal},
			{12, p.mapping.Item},
		}
		for _, f := range paths {
			if f.path == "" {
				continue
			}
			s, err := stringAt(record, f.path)
			if err != nil {
				return nil, fmt.Errorf("record %d: %w", i, err)
			}
			fields[f.index] = s
		}
		tx, err := genericTransaction(fields, service, account)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

// stringAt evaluates a jsonpath against one record and renders the value as a
// string. Missing values render empty, matching an absent spreadsheet cell.
func stringAt(record any, path string) (string, error) {
	jval, err := jsonpath.Get(path, record)
	if err != nil {
		// An unknown key is an absent optional field, not an error.
		return "", nil
	}
	if jlist, ok := jval.([]any); ok {
		if len(jlist) == 0 {
			return "", nil
		}
		jval = jlist[0]
	}
	switch v := jval.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(v), nil
	default:
		return "", fmt.Errorf("path %q: unexpected value %v", path, jval)
	}
}
