package trackmetal

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MatchStrategy selects the algorithm used to collapse like-kind exchange
// legs into transfers.
type MatchStrategy int

const (
	// MatchAcrossTransactions greedily consumes any opposite-leg
	// transactions within a ±30 day window, splitting legs when only part
	// of one is needed.
	MatchAcrossTransactions MatchStrategy = iota
	// MatchSimilarTransactions pairs a sale with the single nearest
	// purchase of similar size within 30 days, absorbing the weight
	// difference as an in-kind storage fee.
	MatchSimilarTransactions
)

func (s MatchStrategy) String() string {
	switch s {
	case MatchAcrossTransactions:
		return "across"
	case MatchSimilarTransactions:
		return "similar"
	default:
		return "unknown"
	}
}

// ParseMatchStrategy parses a string into a MatchStrategy.
func ParseMatchStrategy(s string) (MatchStrategy, error) {
	switch s {
	case "across":
		return MatchAcrossTransactions, nil
	case "similar":
		return MatchSimilarTransactions, nil
	default:
		return 0, fmt.Errorf("unknown match strategy: %q", s)
	}
}

// matcher collapses the legs of like-kind exchanges into single transfer
// events.
type matcher interface {
	formLikeKindExchanges(txs []*Transaction) ([]*Transaction, error)
}

func (s MatchStrategy) matcher() matcher {
	switch s {
	case MatchSimilarTransactions:
		return matchSimilar{}
	default:
		return matchAcross{}
	}
}

// Reconcile deterministically produces exactly one canonical event per
// logical movement: it first pairs the split-recorded legs of transfers,
// then collapses like-kind exchanges using the selected strategy. The input
// slice is not reused; callers should process the returned slice.
func Reconcile(txs []*Transaction, strategy MatchStrategy) ([]*Transaction, error) {
	txs, err := pairTransfers(txs)
	if err != nil {
		return nil, err
	}
	return strategy.matcher().formLikeKindExchanges(txs)
}

// pairTransfers combines both legs of every transfer into one transaction:
// the receiving leg, reclassified and stamped with the source account and
// vault. The source leg is discarded, and any weight lost in transit becomes
// a synthesized in-kind storage fee on the source side.
func pairTransfers(txs []*Transaction) ([]*Transaction, error) {
	sources := make(map[*Transaction]bool)
	paired := make(map[string]bool)

	for _, tx := range byDate(transferLegs(txs)) {
		if paired[tx.ID] {
			continue
		}
		source := findLeg(txs, tx.ID, func(t *Transaction) bool {
			return t.Type == TransferOut || (t.AmountPaid.IsPositive() && !strings.Contains(t.Memo, "Fee"))
		})
		if source == nil {
			return nil, fmt.Errorf("could not match source transaction for transfer %s", tx.ID)
		}
		if source.AmountPaid.IsZero() {
			return nil, fmt.Errorf("found incorrect source transaction for transfer %s", tx.ID)
		}
		receive := findLeg(txs, tx.ID, func(t *Transaction) bool {
			return t.Type == TransferIn || (t.AmountReceived.IsPositive() && !strings.Contains(t.Memo, "Fee"))
		})
		if receive == nil {
			return nil, fmt.Errorf("could not identify receive transaction for transfer %s", tx.ID)
		}
		if receive.AmountReceived.IsZero() {
			return nil, fmt.Errorf("found incorrect receive transaction for transfer %s", tx.ID)
		}

		received, err := ConvertWeight(receive.AmountReceived, receive.Unit, source.Unit)
		if err != nil {
			return nil, fmt.Errorf("transfer %s: %w", tx.ID, err)
		}
		if !received.Equal(source.AmountPaid) {
			diff := source.AmountPaid.Sub(received)
			if diff.IsNegative() {
				return nil, fmt.Errorf("transfer %s received more than was sent", tx.ID)
			}
			txs = append(txs, transferFee(source, diff, "transfer fee in metal from "+source.Memo))
		}

		receive.MakeTransfer(source.Account, source.Vault)
		sources[source] = true
		paired[tx.ID] = true
	}

	return discard(txs, sources), nil
}

// transferLegs returns the unresolved transfer legs of the stream.
func transferLegs(txs []*Transaction) []*Transaction {
	var legs []*Transaction
	for _, t := range txs {
		switch t.Type {
		case Transfer, TransferOut, TransferIn:
			legs = append(legs, t)
		}
	}
	return legs
}

func findLeg(txs []*Transaction, id string, ok func(*Transaction) bool) *Transaction {
	for _, t := range txs {
		if t.ID != id {
			continue
		}
		switch t.Type {
		case Transfer, TransferOut, TransferIn:
			if ok(t) {
				return t
			}
		}
	}
	return nil
}

// transferFee synthesizes the in-kind storage fee that absorbs the weight
// difference between two legs. Synthesized transactions get their own ID so
// they never collide with the legs they were derived from.
func transferFee(source *Transaction, diff decimal.Decimal, memo string) *Transaction {
	fee := source.Duplicate()
	fee.ID = source.ID + "-fee-" + uuid.NewString()[:8]
	fee.Type = StorageFeeInMetal
	fee.AmountPaid = diff
	fee.AmountReceived = decimal.Decimal{}
	fee.Memo = memo
	return fee
}

// byDate returns the transactions sorted chronologically, ties keeping the
// stable input order.
func byDate(txs []*Transaction) []*Transaction {
	sorted := make([]*Transaction, len(txs))
	copy(sorted, txs)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })
	return sorted
}

// discard returns the stream without the given transactions.
func discard(txs []*Transaction, dead map[*Transaction]bool) []*Transaction {
	kept := txs[:0]
	for _, t := range txs {
		if !dead[t] {
			kept = append(kept, t)
		}
	}
	return kept
}

// withinDays reports whether b falls strictly within the given number of
// days around a.
func withinDays(a, b time.Time, days int) bool {
	window := time.Duration(days) * 24 * time.Hour
	return b.After(a.Add(-window)) && b.Before(a.Add(window))
}
