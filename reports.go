package trackmetal

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// GainsReport contains the realized capital gains of one year, or of the
// whole history when Year is zero.
type GainsReport struct {
	Year          int
	Sales         []TaxableSale
	TotalProceeds Money
	TotalBasis    Money
	TotalGain     Money
}

// GainsReport collects the realized sales of the given year (zero for all
// years), ordered the way the original gains exports are: by service, item
// type, then purchase date.
func (inv *Inventory) GainsReport(year int) *GainsReport {
	report := &GainsReport{Year: year}
	for _, sale := range inv.sales {
		if year != 0 && sale.SaleDate.Year() != year {
			continue
		}
		report.Sales = append(report.Sales, sale)
		report.TotalProceeds = report.TotalProceeds.Add(sale.SalePrice)
		report.TotalBasis = report.TotalBasis.Add(sale.AdjustedBasis)
		report.TotalGain = report.TotalGain.Add(sale.NetGain())
	}
	sort.SliceStable(report.Sales, func(i, j int) bool {
		a, b := report.Sales[i], report.Sales[j]
		if a.Service != b.Service {
			return a.Service < b.Service
		}
		if a.Item != b.Item {
			return a.Item < b.Item
		}
		return a.PurchaseDate.Before(b.PurchaseDate)
	})
	return report
}

// Years returns the distinct years in which sales were realized, ascending.
func (inv *Inventory) Years() []int {
	seen := make(map[int]bool)
	var years []int
	for _, sale := range inv.sales {
		y := sale.SaleDate.Year()
		if !seen[y] {
			seen[y] = true
			years = append(years, y)
		}
	}
	sort.Ints(years)
	return years
}

// Holding is the aggregate of every open lot of one metal and item type,
// regardless of service, account or vault.
type Holding struct {
	Metal  Metal
	Item   string
	Weight decimal.Decimal
	Unit   Unit
	Basis  Money
}

// HoldingsReport aggregates the open lots by metal and item type.
type HoldingsReport struct {
	Holdings []Holding
}

// HoldingsReport sums the remaining weight and adjusted basis of the open
// lots per metal and item type. Weights are expressed in the unit of the
// first lot seen for the group.
func (inv *Inventory) HoldingsReport() (*HoldingsReport, error) {
	type key struct {
		metal Metal
		item  string
	}
	groups := make(map[key]*Holding)
	var order []key

	for _, lot := range inv.lots {
		if lot.IsDepleted() {
			continue
		}
		k := key{lot.metal, lot.item}
		h, ok := groups[k]
		if !ok {
			h = &Holding{Metal: lot.metal, Item: lot.item, Unit: lot.unit, Basis: M(0, lot.adjustedBasis.Currency())}
			groups[k] = h
			order = append(order, k)
		}
		w, err := lot.CurrentWeight(h.Unit)
		if err != nil {
			return nil, fmt.Errorf("lot %s: %w", lot.id, err)
		}
		h.Weight = h.Weight.Add(w)
		h.Basis = h.Basis.Add(lot.adjustedBasis)
	}

	sort.SliceStable(order, func(i, j int) bool {
		if order[i].metal != order[j].metal {
			return order[i].metal < order[j].metal
		}
		return order[i].item < order[j].item
	})
	report := &HoldingsReport{}
	for _, k := range order {
		report.Holdings = append(report.Holdings, *groups[k])
	}
	return report, nil
}

// LotsReport lists the open lots ordered by purchase date.
type LotsReport struct {
	Lots []Lot
}

// LotsReport snapshots the open (non-depleted) lots, oldest first.
func (inv *Inventory) LotsReport() *LotsReport {
	report := &LotsReport{}
	for _, lot := range inv.lots {
		if !lot.IsDepleted() {
			report.Lots = append(report.Lots, lot.snapshot())
		}
	}
	sort.SliceStable(report.Lots, func(i, j int) bool {
		return report.Lots[i].purchaseDate.Before(report.Lots[j].purchaseDate)
	})
	return report
}
