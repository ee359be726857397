package trackmetal

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// matchAcross collapses like-kind exchanges by searching every transaction
// within ±30 days of a sale for opposite legs with the same metal and item
// type in a different vault, greedily consuming them by weight. A purchase
// only partially needed is split: the unmatched remainder is re-inserted as
// a new transaction with reduced weight.
type matchAcross struct{}

const matchWindowDays = 30

func (matchAcross) formLikeKindExchanges(txs []*Transaction) ([]*Transaction, error) {
	matched := make(map[*Transaction]bool)

	for _, sale := range byDate(txs) {
		if sale.Type != Sale {
			continue
		}
		opposite := sale.OppositeType()
		if opposite != Purchase && opposite != Sale {
			continue
		}

		remaining := sale.Amount()
		for _, cand := range byDate(txs) {
			if !remaining.IsPositive() {
				break
			}
			if cand.Type != opposite || cand.Metal != sale.Metal || cand.Item != sale.Item ||
				cand.Vault == sale.Vault || !withinDays(sale.Date, cand.Date, matchWindowDays) {
				continue
			}

			w, err := cand.WeightIn(sale.Unit)
			if err != nil {
				return nil, fmt.Errorf("exchange %s: %w", cand.ID, err)
			}
			leftover := w.Sub(remaining.Weight)
			if leftover.Sign() >= 0 {
				if leftover.Sign() > 0 {
					// Split the candidate: only part of it joins the exchange.
					rest := cand.Duplicate()
					restWeight, err := ConvertWeight(leftover, sale.Unit, cand.Unit)
					if err != nil {
						return nil, fmt.Errorf("exchange %s: %w", cand.ID, err)
					}
					rest.setWeight(restWeight)
					txs = append(txs, rest)
				}
				cand.MakeTransfer(sale.Account, sale.Vault)
				matchedWeight, err := ConvertWeight(remaining.Weight, sale.Unit, cand.Unit)
				if err != nil {
					return nil, fmt.Errorf("exchange %s: %w", cand.ID, err)
				}
				cand.AmountReceived = matchedWeight
				remaining.Weight = decimal.Decimal{}
				break
			}
			// Candidate fully consumed by this sale.
			cand.MakeTransfer(sale.Account, sale.Vault)
			remaining.Weight = remaining.Weight.Sub(w)
		}

		if remaining.Weight.Equal(sale.AmountPaid) {
			continue // nothing matched, the sale stands
		}
		if remaining.IsPositive() {
			// Residual disposal that no purchase offsets: keep it as a
			// smaller sale.
			sale.setWeight(remaining.Weight)
		} else {
			// Sale completely eliminated in the transfer.
			matched[sale] = true
		}
	}

	return discard(txs, matched), nil
}
