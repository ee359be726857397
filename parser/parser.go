// Package parser reads service export files and turns them into normalized
// transactions. Each storage service publishes its history in its own format;
// a Parser hides that format and yields transactions the allocation engine
// understands.
package parser

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/etnz/trackmetal"
	"github.com/shopspring/decimal"
)

// Parser reads one service export file.
type Parser interface {
	Parse(filename string) ([]*trackmetal.Transaction, error)
}

// ForFile picks the parser matching the filename. Files produced by our own
// exports (tm- prefix) are not inputs and yield no parser.
func ForFile(filename string) (Parser, error) {
	base := filepath.Base(filename)
	switch {
	case strings.HasPrefix(base, "tm-"):
		return nil, fmt.Errorf("%q is an export file, not a service statement", base)
	case strings.Contains(base, "GoldMoney"):
		return NewGoldMoney(), nil
	case strings.Contains(base, "BullionVault"):
		return NewBullionVault(), nil
	case strings.HasSuffix(strings.ToLower(base), ".json"):
		return NewGenericJSON(DefaultMapping()), nil
	default:
		return NewGenericCSV(), nil
	}
}

// ParseFiles runs every file through its parser and concatenates the results.
// Export files (tm- prefix) are silently skipped so a shell glob over the data
// directory keeps working.
func ParseFiles(filenames []string) ([]*trackmetal.Transaction, error) {
	var txs []*trackmetal.Transaction
	for _, filename := range filenames {
		if strings.HasPrefix(filepath.Base(filename), "tm-") {
			continue
		}
		p, err := ForFile(filename)
		if err != nil {
			return nil, err
		}
		parsed, err := p.Parse(filename)
		if err != nil {
			return nil, fmt.Errorf("parsing %q: %w", filename, err)
		}
		txs = append(txs, parsed...)
	}
	return txs, nil
}

// accountRe extracts the account from filenames shaped
// "<Service>-<account>-<anything>".
var accountRe = regexp.MustCompile(`^\w+-(\w+)-`)

// serviceAndAccount reads the service and account names off the filename.
// Services name their exports "<Service>-<account>-..." so the engine can tie
// every row to the account it belongs to.
func serviceAndAccount(filename string) (service, account string, err error) {
	base := filepath.Base(filename)
	m := accountRe.FindStringSubmatch(base)
	if m == nil {
		return "", "", fmt.Errorf("cannot parse service and account from filename %q", base)
	}
	return strings.SplitN(base, "-", 2)[0], m[1], nil
}

// readRows reads a tab (or comma) separated statement, skipping the header
// line, blank lines and the trailing transaction-count line some services
// append.
func readRows(filename string) ([][]string, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var rows [][]string
	scanner := bufio.NewScanner(f)
	first := true
	for scanner.Scan() {
		line := scanner.Text()
		if first {
			first = false
			continue
		}
		if strings.TrimSpace(line) == "" || strings.Contains(line, "Number of transactions =") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 2 {
			fields = strings.Split(line, ",")
		}
		rows = append(rows, fields)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return rows, nil
}

// dateLayouts are the formats seen across service exports, tried in order.
var dateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02",
	"1/2/2006 15:04",
	"1/2/2006",
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// parseAmount parses a decimal field, tolerating currency signs, thousands
// separators and the empty string (zero).
func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return decimal.Decimal{}, nil
	}
	return decimal.NewFromString(s)
}
