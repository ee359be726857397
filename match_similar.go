package trackmetal

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// matchSimilar collapses a like-kind exchange by pairing a sale with one
// single purchase of similar size: the nearest purchase within the next 30
// days (falling back to the previous 30 days) of the same metal whose
// received weight is at least 90% of the weight sold. A weight shortfall on
// the purchase side is absorbed by a synthesized in-kind storage fee; an
// excess remains behind as a reduced purchase, as in matchAcross.
type matchSimilar struct{}

var ninetyPercent = decimal.RequireFromString("0.9")

func (matchSimilar) formLikeKindExchanges(txs []*Transaction) ([]*Transaction, error) {
	matched := make(map[*Transaction]bool)

	for _, sale := range byDate(txs) {
		if sale.Type != Sale || sale.OppositeType() != Purchase {
			continue
		}

		cand, err := similarPurchase(sale, txs)
		if err != nil {
			return nil, err
		}
		if cand == nil {
			continue // no match
		}

		received, err := cand.WeightIn(sale.Unit)
		if err != nil {
			return nil, fmt.Errorf("exchange %s: %w", cand.ID, err)
		}
		diff := sale.AmountPaid.Sub(received)
		switch diff.Sign() {
		case 1:
			// Metal lost between the legs becomes a storage fee on the
			// sale's side.
			txs = append(txs, transferFee(sale, diff, "transfer fee in metal from like-kind exchange "+sale.ID))
		case -1:
			// The purchase was larger than the sale: only the sold weight
			// transfers, the excess stays behind as a purchase.
			rest := cand.Duplicate()
			restWeight, err := ConvertWeight(diff.Neg(), sale.Unit, cand.Unit)
			if err != nil {
				return nil, fmt.Errorf("exchange %s: %w", cand.ID, err)
			}
			rest.setWeight(restWeight)
			txs = append(txs, rest)
			soldWeight, err := ConvertWeight(sale.AmountPaid, sale.Unit, cand.Unit)
			if err != nil {
				return nil, fmt.Errorf("exchange %s: %w", cand.ID, err)
			}
			cand.AmountReceived = soldWeight
		}

		cand.MakeTransfer(sale.Account, sale.Vault)
		matched[sale] = true
	}

	return discard(txs, matched), nil
}

// similarPurchase finds the single purchase paired with the sale, preferring
// later transactions; an earlier one may qualify.
func similarPurchase(sale *Transaction, txs []*Transaction) (*Transaction, error) {
	for _, after := range []bool{true, false} {
		for _, cand := range byDate(txs) {
			if cand.Type != Purchase || cand.Metal != sale.Metal {
				continue
			}
			if after && (cand.Date.Before(sale.Date) || cand.Date.After(sale.Date.AddDate(0, 0, matchWindowDays))) {
				continue
			}
			if !after && (cand.Date.After(sale.Date) || cand.Date.Before(sale.Date.AddDate(0, 0, -matchWindowDays))) {
				continue
			}
			received, err := cand.WeightIn(sale.Unit)
			if err != nil {
				return nil, fmt.Errorf("exchange %s: %w", cand.ID, err)
			}
			if received.GreaterThanOrEqual(sale.AmountPaid.Mul(ninetyPercent)) {
				return cand, nil
			}
		}
	}
	return nil, nil
}
