package trackmetal

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestInventoryPurchaseAndSale(t *testing.T) {
	inv := NewInventory()
	err := inv.Replay([]*Transaction{
		buy("p1", day(2023, time.May, 2), "100", Gram, Gold, "5000"),
		sell("s1", day(2024, time.February, 1), "40", Gram, Gold, "2200"),
	})
	if err != nil {
		t.Fatalf("Replay failed: %v", err)
	}

	sales := inv.Sales()
	if len(sales) != 1 {
		t.Fatalf("got %d taxable sales, want 1", len(sales))
	}
	equalMoney(t, "sale basis", sales[0].AdjustedBasis, "2000")
	equalMoney(t, "sale proceeds", sales[0].SalePrice, "2200")
	equalMoney(t, "net gain", sales[0].NetGain(), "200")

	lot, ok := inv.Lot("p1")
	if !ok {
		t.Fatal("lot p1 missing")
	}
	w, _ := lot.CurrentWeight(Gram)
	equalDec(t, "remaining weight", w, "60")
	equalMoney(t, "remaining basis", lot.AdjustedBasis(), "3000")
}

func TestInventoryFIFOAcrossLots(t *testing.T) {
	// Two lots, one sale spanning both: the older lot is consumed first and
	// each slice of the sale carries its share of the proceeds.
	inv := NewInventory()
	err := inv.Replay([]*Transaction{
		buy("p1", day(2023, time.January, 10), "60", Gram, Gold, "3000"),
		buy("p2", day(2023, time.June, 10), "80", Gram, Gold, "4000"),
		sell("s1", day(2024, time.February, 1), "100", Gram, Gold, "5000"),
	})
	if err != nil {
		t.Fatalf("Replay failed: %v", err)
	}

	sales := inv.Sales()
	if len(sales) != 2 {
		t.Fatalf("got %d taxable sales, want 2", len(sales))
	}
	first, second := sales[0], sales[1]
	if first.LotID != "p1" || second.LotID != "p2" {
		t.Fatalf("sales drew from %s then %s, want p1 then p2", first.LotID, second.LotID)
	}
	equalDec(t, "first slice weight", first.SaleWeight, "60")
	equalMoney(t, "first slice basis", first.AdjustedBasis, "3000")
	equalMoney(t, "first slice proceeds", first.SalePrice, "3000")
	equalDec(t, "second slice weight", second.SaleWeight, "40")
	equalMoney(t, "second slice basis", second.AdjustedBasis, "2000")
	equalMoney(t, "second slice proceeds", second.SalePrice, "2000")

	lot1, _ := inv.Lot("p1")
	if !lot1.IsDepleted() {
		t.Error("older lot must be fully depleted")
	}
	lot2, _ := inv.Lot("p2")
	w, _ := lot2.CurrentWeight(Gram)
	equalDec(t, "newer lot remaining", w, "40")
	equalMoney(t, "newer lot basis", lot2.AdjustedBasis(), "2000")
}

func TestInventoryOverSellLeavesLotsUntouched(t *testing.T) {
	inv := NewInventory()
	if err := inv.Replay([]*Transaction{buy("p1", day(2023, time.May, 2), "10", Gram, Gold, "500")}); err != nil {
		t.Fatal(err)
	}
	err := inv.Replay([]*Transaction{sell("s1", day(2024, time.February, 1), "20", Gram, Gold, "1200")})
	if err == nil {
		t.Fatal("over-selling expected an error")
	}

	lot, _ := inv.Lot("p1")
	w, _ := lot.CurrentWeight(Gram)
	equalDec(t, "weight after failed sale", w, "10")
	equalMoney(t, "basis after failed sale", lot.AdjustedBasis(), "500")
	if len(inv.Sales()) != 0 {
		t.Error("failed sale must not emit taxable sales")
	}
}

func TestInventorySaleIgnoresVault(t *testing.T) {
	// Sales are scoped to service and account but not vault: the services
	// report where the metal sits, not which pile a client meant to sell.
	tx := buy("p1", day(2023, time.May, 2), "10", Gram, Gold, "500")
	tx.Vault = "zurich"
	s := sell("s1", day(2024, time.February, 1), "10", Gram, Gold, "800")
	s.Vault = "london"

	inv := NewInventory()
	if err := inv.Replay([]*Transaction{tx, s}); err != nil {
		t.Fatalf("Replay failed: %v", err)
	}
	if len(inv.Sales()) != 1 {
		t.Fatal("sale in another vault must still consume the lot")
	}
}

func TestInventorySaleScopedToAccount(t *testing.T) {
	tx := buy("p1", day(2023, time.May, 2), "10", Gram, Gold, "500")
	tx.Account = "other"
	s := sell("s1", day(2024, time.February, 1), "10", Gram, Gold, "800")

	inv := NewInventory()
	if err := inv.Replay([]*Transaction{tx, s}); err == nil {
		t.Fatal("selling from an account with no lots expected an error")
	}
}

func TestInventoryTransferSplitsLot(t *testing.T) {
	transfer := &Transaction{
		Service:        "TestVault",
		Account:        "main",
		Date:           day(2024, time.March, 1),
		ID:             "t1",
		Type:           Transfer,
		Vault:          "vault2",
		AmountReceived: dec("30"),
		Currency:       "USD",
		Unit:           Gram,
		Metal:          Gold,
		Item:           "Generic",
		FromAccount:    "main",
		FromVault:      "vault1",
	}

	inv := NewInventory()
	err := inv.Replay([]*Transaction{
		buy("p1", day(2023, time.May, 2), "100", Gram, Gold, "5000"),
		transfer,
	})
	if err != nil {
		t.Fatalf("Replay failed: %v", err)
	}

	lots := inv.Lots()
	if len(lots) != 2 {
		t.Fatalf("got %d lots, want source plus split", len(lots))
	}
	source, _ := inv.Lot("p1")
	w, _ := source.CurrentWeight(Gram)
	equalDec(t, "source weight", w, "70")
	equalMoney(t, "source basis", source.AdjustedBasis(), "3500")

	part, ok := inv.Lot("p1-split")
	if !ok {
		t.Fatal("split lot missing")
	}
	if part.Vault() != "vault2" {
		t.Errorf("split lot vault = %s, want vault2", part.Vault())
	}
	pw, _ := part.CurrentWeight(Gram)
	equalDec(t, "split weight", pw, "30")
	equalMoney(t, "split basis", part.AdjustedBasis(), "1500")
	if !part.PurchaseDate().Equal(source.PurchaseDate()) {
		t.Error("split lot must keep the purchase date")
	}
}

func TestInventoryTransferWholeLotsThenSplit(t *testing.T) {
	transfer := &Transaction{
		Service:        "TestVault",
		Account:        "main",
		Date:           day(2024, time.March, 1),
		ID:             "t1",
		Type:           Transfer,
		Vault:          "vault2",
		AmountReceived: dec("30"),
		Currency:       "USD",
		Unit:           Gram,
		Metal:          Gold,
		Item:           "Generic",
		FromAccount:    "main",
		FromVault:      "vault1",
	}

	inv := NewInventory()
	err := inv.Replay([]*Transaction{
		buy("p1", day(2023, time.January, 2), "20", Gram, Gold, "1000"),
		buy("p2", day(2023, time.June, 2), "20", Gram, Gold, "1000"),
		transfer,
	})
	if err != nil {
		t.Fatalf("Replay failed: %v", err)
	}

	// The older lot moves whole, the newer is split for the last 10g.
	p1, _ := inv.Lot("p1")
	if p1.Vault() != "vault2" {
		t.Errorf("older lot vault = %s, want vault2", p1.Vault())
	}
	p2, _ := inv.Lot("p2")
	if p2.Vault() != "vault1" {
		t.Errorf("newer lot vault = %s, want vault1", p2.Vault())
	}
	w, _ := p2.CurrentWeight(Gram)
	equalDec(t, "newer lot remaining", w, "10")
	part, ok := inv.Lot("p2-split")
	if !ok {
		t.Fatal("split lot missing")
	}
	pw, _ := part.CurrentWeight(Gram)
	equalDec(t, "split weight", pw, "10")
}

func TestInventoryUnreconciledTransfer(t *testing.T) {
	transfer := &Transaction{
		Service:        "TestVault",
		Account:        "main",
		Date:           day(2024, time.March, 1),
		ID:             "t1",
		Type:           Transfer,
		AmountReceived: dec("30"),
		Unit:           Gram,
		Metal:          Gold,
		Item:           "Generic",
	}
	inv := NewInventory()
	if err := inv.Replay([]*Transaction{transfer}); err == nil {
		t.Fatal("transfer without a stamped source expected an error")
	}
}

func TestInventoryFeeInMetal(t *testing.T) {
	fee := &Transaction{
		Service:    "TestVault",
		Account:    "main",
		Date:       day(2024, time.January, 1),
		ID:         "f1",
		Type:       StorageFeeInMetal,
		Vault:      "vault1",
		AmountPaid: dec("5"),
		Unit:       Gram,
		Metal:      Gold,
		Item:       "Generic",
	}
	inv := NewInventory()
	err := inv.Replay([]*Transaction{
		buy("p1", day(2023, time.May, 2), "100", Gram, Gold, "5000"),
		fee,
	})
	if err != nil {
		t.Fatalf("Replay failed: %v", err)
	}
	lot, _ := inv.Lot("p1")
	w, _ := lot.CurrentWeight(Gram)
	equalDec(t, "weight after fee", w, "95")
	// An in-metal fee never touches the basis: less metal for the same money.
	equalMoney(t, "basis after fee", lot.AdjustedBasis(), "5000")
}

func TestInventoryFeeInMetalSpansLots(t *testing.T) {
	fee := &Transaction{
		Service:    "TestVault",
		Account:    "main",
		Date:       day(2024, time.January, 1),
		ID:         "f1",
		Type:       StorageFeeInMetal,
		Vault:      AnyVault,
		AmountPaid: dec("25"),
		Unit:       Gram,
		Metal:      Gold,
		Item:       "Generic",
	}
	inv := NewInventory()
	err := inv.Replay([]*Transaction{
		buy("p1", day(2023, time.January, 2), "20", Gram, Gold, "1000"),
		buy("p2", day(2023, time.June, 2), "20", Gram, Gold, "1000"),
		fee,
	})
	if err != nil {
		t.Fatalf("Replay failed: %v", err)
	}
	p1, _ := inv.Lot("p1")
	if !p1.IsDepleted() {
		t.Error("older lot must be fully consumed by the fee")
	}
	p2, _ := inv.Lot("p2")
	w, _ := p2.CurrentWeight(Gram)
	equalDec(t, "newer lot remaining", w, "15")
}

func TestInventoryFeeInCurrency(t *testing.T) {
	fee := &Transaction{
		Service:    "TestVault",
		Account:    "main",
		Date:       day(2024, time.January, 1),
		ID:         "f1",
		Type:       StorageFeeInCurrency,
		Vault:      "vault1",
		AmountPaid: dec("12"),
		Currency:   "USD",
		Metal:      Gold,
		Item:       "Generic",
		Unit:       Gram,
	}
	inv := NewInventory()
	err := inv.Replay([]*Transaction{
		buy("p1", day(2023, time.May, 2), "100", Gram, Gold, "5000"),
		fee,
	})
	if err != nil {
		t.Fatalf("Replay failed: %v", err)
	}
	lot, _ := inv.Lot("p1")
	equalMoney(t, "basis after currency fee", lot.AdjustedBasis(), "5012")
	w, _ := lot.CurrentWeight(Gram)
	equalDec(t, "weight after currency fee", w, "100")
}

func TestInventoryFeeInCurrencyNoLot(t *testing.T) {
	fee := &Transaction{
		Service:    "TestVault",
		Account:    "main",
		Date:       day(2024, time.January, 1),
		ID:         "f1",
		Type:       StorageFeeInCurrency,
		Vault:      "vault1",
		AmountPaid: dec("12"),
		Currency:   "USD",
		Metal:      Gold,
		Item:       "Generic",
		Unit:       Gram,
	}
	inv := NewInventory()
	if err := inv.Replay([]*Transaction{fee}); err == nil {
		t.Fatal("currency fee with no open lot expected an error")
	}
}

func TestInventoryRejectsUnreconciledTypes(t *testing.T) {
	for _, typ := range []Type{Indeterminate, TransferOut} {
		tx := &Transaction{ID: "x1", Type: typ, Date: day(2024, time.January, 1)}
		inv := NewInventory()
		if err := inv.Replay([]*Transaction{tx}); err == nil {
			t.Errorf("type %s reaching the engine expected an error", typ)
		}
	}
}

func TestInventoryProcessEndToEnd(t *testing.T) {
	// Full pipeline: a purchase, an exchange recorded as sale plus purchase
	// in another vault, then a real sale. The exchange must not create a
	// taxable event.
	txs := []*Transaction{
		buy("p1", day(2023, time.January, 10), "100", Gram, Gold, "5000"),
		vaultTx(sell("x1", day(2023, time.June, 1), "100", Gram, Gold, "5500"), "vault1"),
		vaultTx(buy("x1b", day(2023, time.June, 3), "100", Gram, Gold, "5500"), "vault2"),
		vaultTx(sell("s1", day(2024, time.February, 1), "40", Gram, Gold, "2200"), "vault2"),
	}

	inv := NewInventory()
	if err := inv.Process(txs, MatchAcrossTransactions); err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	sales := inv.Sales()
	if len(sales) != 1 {
		t.Fatalf("got %d taxable sales, want only the real one", len(sales))
	}
	equalMoney(t, "sale basis", sales[0].AdjustedBasis, "2000")
	equalMoney(t, "net gain", sales[0].NetGain(), "200")
	if !sales[0].PurchaseDate.Equal(day(2023, time.January, 10)) {
		t.Error("the holding period must survive the exchange")
	}
}

func TestInventoryCryptoSale(t *testing.T) {
	// Crypto coins have no weight: the whole pipeline runs in coin counts.
	p := buy("p1", day(2023, time.May, 2), "2", CryptoCoin, Crypto, "40000")
	s := sell("s1", day(2024, time.February, 1), "0.5", CryptoCoin, Crypto, "15000")

	inv := NewInventory()
	if err := inv.Replay([]*Transaction{p, s}); err != nil {
		t.Fatalf("Replay failed: %v", err)
	}
	sales := inv.Sales()
	if len(sales) != 1 {
		t.Fatalf("got %d taxable sales, want 1", len(sales))
	}
	equalMoney(t, "sale basis", sales[0].AdjustedBasis, "10000")
	equalMoney(t, "net gain", sales[0].NetGain(), "5000")

	lot, _ := inv.Lot("p1")
	w, err := lot.CurrentWeight(CryptoCoin)
	if err != nil {
		t.Fatal(err)
	}
	if !w.Equal(decimal.RequireFromString("1.5")) {
		t.Errorf("remaining coins = %s, want 1.5", w)
	}
}

func TestInventoryMixedUnits(t *testing.T) {
	// A lot in troy ounces sold in grams: conversion happens inside the
	// engine and depletion stays exact.
	p := buy("p1", day(2023, time.May, 2), "2", TroyOz, Gold, "4000")
	s := sell("s1", day(2024, time.February, 1), "62.2069536", Gram, Gold, "4400")

	inv := NewInventory()
	if err := inv.Replay([]*Transaction{p, s}); err != nil {
		t.Fatalf("Replay failed: %v", err)
	}
	lot, _ := inv.Lot("p1")
	if !lot.IsDepleted() {
		w, _ := lot.CurrentWeight(TroyOz)
		t.Errorf("lot not depleted, %s oz remain", w)
	}
	sales := inv.Sales()
	if len(sales) != 1 {
		t.Fatalf("got %d taxable sales, want 1", len(sales))
	}
	equalMoney(t, "sale basis", sales[0].AdjustedBasis, "4000")
}
