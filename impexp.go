package trackmetal

import (
	"fmt"
	"io"
)

// this file contains the tab-separated export formats. They are the flat
// files the original accounting runs produced, kept identical so existing
// spreadsheets keep working.

// ExportTransactions dumps a transaction stream, one row per transaction in
// chronological order.
func ExportTransactions(w io.Writer, txs []*Transaction) error {
	if _, err := fmt.Fprintln(w, "Date\tService\tType\tMetal\tWeight\tUnit\tItemType\tAccount\tAmountPaid\tAmountReceived\tCurrency\tVault\tTransactionId\tMemo"); err != nil {
		return err
	}
	for _, tx := range byDate(txs) {
		_, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			tx.Date.Format(shortDate), tx.Service, tx.Type, tx.Metal, tx.Weight(), tx.Unit,
			tx.Item, tx.Account, tx.AmountPaid, tx.AmountReceived, tx.Currency, tx.Vault, tx.ID, tx.Memo)
		if err != nil {
			return err
		}
	}
	return nil
}

// ExportLots writes the open lots of a lots report.
func ExportLots(w io.Writer, report *LotsReport) error {
	if _, err := fmt.Fprintln(w, "Date\tLotID\tMetal\tOriginalWeight\tCurrentWeight\tUnit\tItemType\tAccount\tService\tVault\tOriginalBasis\tCurrentBasis\tCurrency"); err != nil {
		return err
	}
	for _, lot := range report.Lots {
		current, err := lot.CurrentWeight(lot.Unit())
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			lot.PurchaseDate().Format(shortDate), lot.ID(), lot.Metal(), lot.OriginalWeight(), current,
			lot.Unit(), lot.Item(), lot.Account(), lot.Service(), lot.Vault(),
			lot.OriginalBasis().StringFixed(), lot.AdjustedBasis().StringFixed(), lot.AdjustedBasis().Currency())
		if err != nil {
			return err
		}
	}
	return nil
}

// ExportHoldings writes the aggregated holdings.
func ExportHoldings(w io.Writer, report *HoldingsReport) error {
	if _, err := fmt.Fprintln(w, "Metal\tItemType\tCurrentWeight\tUnit\tCurrentBasis\tCurrency"); err != nil {
		return err
	}
	for _, h := range report.Holdings {
		_, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			h.Metal, h.Item, h.Weight, h.Unit, h.Basis.StringFixed(), h.Basis.Currency())
		if err != nil {
			return err
		}
	}
	return nil
}

// ExportGains writes the realized sales of a gains report.
func ExportGains(w io.Writer, report *GainsReport) error {
	if _, err := fmt.Fprintln(w, "Service\tLot ID\tMetal\tItemType\tBought Date\tSold Date\tAdjusted Basis\tSale Price\tNet Gain"); err != nil {
		return err
	}
	for _, sale := range report.Sales {
		_, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			sale.Service, sale.LotID, sale.Metal, sale.Item,
			sale.PurchaseDate.Format(shortDate), sale.SaleDate.Format(shortDate),
			sale.AdjustedBasis.StringFixed(), sale.SalePrice.StringFixed(), sale.NetGain().StringFixed())
		if err != nil {
			return err
		}
	}
	return nil
}
