// Package renderer turns reports into markdown strings for terminal display.
// The tab-separated exports live next to the engine; this package only covers
// the human-facing views.
package renderer

import (
	"fmt"
	"strings"

	"github.com/etnz/trackmetal"
)

const shortDate = "2006-01-02"

// GainsMarkdown renders a capital gains report, one row per taxable sale.
func GainsMarkdown(report *trackmetal.GainsReport) string {
	var b strings.Builder

	if report.Year == 0 {
		fmt.Fprint(&b, "# Capital Gains Report (all years)\n\n")
	} else {
		fmt.Fprintf(&b, "# Capital Gains Report for %d\n\n", report.Year)
	}

	fmt.Fprintln(&b, "| Service | Lot | Metal | Item | Bought | Sold | Basis | Proceeds | Gain |")
	fmt.Fprintln(&b, "|:---|:---|:---|:---|:---|:---|---:|---:|---:|")
	for _, sale := range report.Sales {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s | %s | %s |\n",
			sale.Service,
			sale.LotID,
			sale.Metal,
			sale.Item,
			sale.PurchaseDate.Format(shortDate),
			sale.SaleDate.Format(shortDate),
			sale.AdjustedBasis.String(),
			sale.SalePrice.String(),
			sale.NetGain().SignedString(),
		)
	}
	fmt.Fprintf(&b, "| **Total** | | | | | | **%s** | **%s** | **%s** |\n",
		report.TotalBasis.String(),
		report.TotalProceeds.String(),
		report.TotalGain.SignedString(),
	)

	return b.String()
}

// HoldingsMarkdown renders the aggregated holdings per metal and item type.
func HoldingsMarkdown(report *trackmetal.HoldingsReport) string {
	var b strings.Builder

	fmt.Fprint(&b, "# Holdings\n\n")
	fmt.Fprintln(&b, "| Metal | Item | Weight | Unit | Basis |")
	fmt.Fprintln(&b, "|:---|:---|---:|:---|---:|")
	for _, h := range report.Holdings {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
			h.Metal, h.Item, h.Weight, h.Unit, h.Basis.String())
	}

	return b.String()
}

// LotsMarkdown renders the open lots, oldest first.
func LotsMarkdown(report *trackmetal.LotsReport) string {
	var b strings.Builder

	fmt.Fprint(&b, "# Open Lots\n\n")
	fmt.Fprintln(&b, "| Bought | Lot | Service | Account | Vault | Metal | Item | Weight | Unit | Basis |")
	fmt.Fprintln(&b, "|:---|:---|:---|:---|:---|:---|:---|---:|:---|---:|")
	for i := range report.Lots {
		lot := &report.Lots[i]
		weight, err := lot.CurrentWeight(lot.Unit())
		if err != nil {
			continue
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s | %s | %s | %s |\n",
			lot.PurchaseDate().Format(shortDate),
			lot.ID(),
			lot.Service(),
			lot.Account(),
			lot.Vault(),
			lot.Metal(),
			lot.Item(),
			weight,
			lot.Unit(),
			lot.AdjustedBasis().String(),
		)
	}

	return b.String()
}

// LotMarkdown renders one lot in full, including its audit history.
func LotMarkdown(lot *trackmetal.Lot) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Lot %s\n\n", lot.ID())
	fmt.Fprintf(&b, "- Purchased: %s\n", lot.PurchaseDate().Format(shortDate))
	fmt.Fprintf(&b, "- Service: %s, account %s, vault %s\n", lot.Service(), lot.Account(), lot.Vault())
	fmt.Fprintf(&b, "- Metal: %s (%s)\n", lot.Metal(), lot.Item())
	if weight, err := lot.CurrentWeight(lot.Unit()); err == nil {
		fmt.Fprintf(&b, "- Weight: %s %s of %s %s originally\n", weight, lot.Unit(), lot.OriginalWeight(), lot.Unit())
	}
	fmt.Fprintf(&b, "- Basis: %s adjusted, %s original\n\n", lot.AdjustedBasis().String(), lot.OriginalBasis().String())

	fmt.Fprint(&b, "## History\n\n")
	for _, line := range lot.History() {
		fmt.Fprintf(&b, "- %s\n", line)
	}

	return b.String()
}

// TransactionsMarkdown renders a reconciled transaction stream in date order.
func TransactionsMarkdown(txs []*trackmetal.Transaction) string {
	var b strings.Builder

	fmt.Fprint(&b, "# Transactions\n\n")
	fmt.Fprintln(&b, "| Date | Service | Account | Type | Metal | Weight | Unit | Vault | Id |")
	fmt.Fprintln(&b, "|:---|:---|:---|:---|:---|---:|:---|:---|:---|")
	for _, tx := range txs {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s | %s | %s |\n",
			tx.Date.Format(shortDate),
			tx.Service,
			tx.Account,
			tx.Type,
			tx.Metal,
			tx.Weight(),
			tx.Unit,
			tx.Vault,
			tx.ID,
		)
	}

	return b.String()
}
