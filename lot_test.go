package trackmetal

import (
	"testing"
	"time"
)

func newTestLot(t *testing.T, weight, basis string) *Lot {
	t.Helper()
	return newLot("TestVault", "lot1", day(2023, time.May, 2), dec(weight), Gram,
		usd(basis), Gold, "vault1", "main", "Generic")
}

func TestLotSellProportionalBasis(t *testing.T) {
	lot := newTestLot(t, "100", "5000")

	sale, err := lot.sell(day(2024, time.February, 1),
		Amount{Weight: dec("40"), Metal: Gold, Item: "Generic", Unit: Gram}, usd("2200"))
	if err != nil {
		t.Fatalf("sell failed: %v", err)
	}

	// 40% of the lot leaves with 40% of the basis.
	equalMoney(t, "sale basis", sale.AdjustedBasis, "2000")
	equalMoney(t, "sale proceeds", sale.SalePrice, "2200")
	equalMoney(t, "net gain", sale.NetGain(), "200")
	equalDec(t, "sale weight", sale.SaleWeight, "40")
	if !sale.PurchaseDate.Equal(lot.PurchaseDate()) {
		t.Error("taxable sale must keep the lot's purchase date")
	}

	equalMoney(t, "remaining basis", lot.AdjustedBasis(), "3000")
	w, err := lot.CurrentWeight(Gram)
	if err != nil {
		t.Fatal(err)
	}
	equalDec(t, "remaining weight", w, "60")
}

func TestLotSellWholeDepletes(t *testing.T) {
	lot := newTestLot(t, "100", "5000")
	if _, err := lot.sell(day(2024, time.February, 1),
		Amount{Weight: dec("100"), Metal: Gold, Item: "Generic", Unit: Gram}, usd("6000")); err != nil {
		t.Fatalf("sell failed: %v", err)
	}
	if !lot.IsDepleted() {
		t.Error("selling the whole lot must deplete it exactly")
	}
	equalMoney(t, "depleted basis", lot.AdjustedBasis(), "0")
}

func TestLotSellTooMuch(t *testing.T) {
	lot := newTestLot(t, "10", "500")
	_, err := lot.sell(day(2024, time.February, 1),
		Amount{Weight: dec("11"), Metal: Gold, Item: "Generic", Unit: Gram}, usd("600"))
	if err == nil {
		t.Fatal("selling more than the lot holds expected an error")
	}
	// A failed sale must not touch the lot.
	w, _ := lot.CurrentWeight(Gram)
	equalDec(t, "weight after failed sell", w, "10")
	equalMoney(t, "basis after failed sell", lot.AdjustedBasis(), "500")
}

func TestLotSellScopeMismatch(t *testing.T) {
	lot := newTestLot(t, "10", "500")
	if _, err := lot.sell(day(2024, time.February, 1),
		Amount{Weight: dec("1"), Metal: Silver, Item: "Generic", Unit: Gram}, usd("60")); err == nil {
		t.Error("selling a different metal against the lot expected an error")
	}
	if _, err := lot.sell(day(2024, time.February, 1),
		Amount{Weight: dec("1"), Metal: Gold, Item: "Coin", Unit: Gram}, usd("60")); err == nil {
		t.Error("selling a different item type against the lot expected an error")
	}
}

func TestLotAmountToSell(t *testing.T) {
	lot := newTestLot(t, "10", "500")
	got, err := lot.amountToSell(Amount{Weight: dec("25"), Metal: Gold, Item: "Generic", Unit: Gram})
	if err != nil {
		t.Fatal(err)
	}
	equalDec(t, "capped amount", got.Weight, "10")

	got, err = lot.amountToSell(Amount{Weight: dec("4"), Metal: Gold, Item: "Generic", Unit: Gram})
	if err != nil {
		t.Fatal(err)
	}
	equalDec(t, "uncapped amount", got.Weight, "4")
}

func TestLotSplit(t *testing.T) {
	lot := newTestLot(t, "100", "5000")

	part, err := lot.split(day(2024, time.March, 1), dec("30"), Gram, "other", "vault2")
	if err != nil {
		t.Fatalf("split failed: %v", err)
	}

	if part.Account() != "other" || part.Vault() != "vault2" {
		t.Errorf("split lot placed in %s/%s, want other/vault2", part.Account(), part.Vault())
	}
	if !part.PurchaseDate().Equal(lot.PurchaseDate()) {
		t.Error("split lot must keep the original purchase date")
	}
	equalMoney(t, "split adjusted basis", part.AdjustedBasis(), "1500")
	equalMoney(t, "split original basis", part.OriginalBasis(), "1500")
	equalMoney(t, "source adjusted basis", lot.AdjustedBasis(), "3500")

	w, _ := lot.CurrentWeight(Gram)
	equalDec(t, "source weight", w, "70")
	pw, _ := part.CurrentWeight(Gram)
	equalDec(t, "split weight", pw, "30")
}

func TestLotSplitAfterFee(t *testing.T) {
	// A fee shrank the lot from 100g to 80g without touching the basis. A
	// 40g split then takes half the adjusted basis but 40% of the original.
	lot := newTestLot(t, "100", "5000")
	if err := lot.decreaseWeightViaFee(day(2024, time.January, 1), dec("20"), Gram); err != nil {
		t.Fatal(err)
	}

	part, err := lot.split(day(2024, time.March, 1), dec("40"), Gram, "other", "vault2")
	if err != nil {
		t.Fatalf("split failed: %v", err)
	}
	equalMoney(t, "split adjusted basis", part.AdjustedBasis(), "2500")
	equalMoney(t, "split original basis", part.OriginalBasis(), "2000")
	equalMoney(t, "source adjusted basis", lot.AdjustedBasis(), "2500")
}

func TestLotFeeInCurrency(t *testing.T) {
	lot := newTestLot(t, "100", "5000")
	if err := lot.applyFeeInCurrency(day(2024, time.April, 1), usd("12")); err != nil {
		t.Fatal(err)
	}
	equalMoney(t, "basis after fee", lot.AdjustedBasis(), "5012")

	if err := lot.applyFeeInCurrency(day(2024, time.April, 2), M(5, "EUR")); err == nil {
		t.Error("fee in a different currency expected an error")
	}
}

func TestLotDecreaseWeight(t *testing.T) {
	lot := newTestLot(t, "10", "500")
	if err := lot.decreaseWeight(dec("11"), Gram); err == nil {
		t.Error("decreasing below zero expected an error")
	}
	if err := lot.decreaseWeight(dec("10"), Gram); err != nil {
		t.Fatal(err)
	}
	if !lot.IsDepleted() {
		t.Error("lot must be exactly depleted")
	}
}

func TestLotHistory(t *testing.T) {
	lot := newTestLot(t, "100", "5000")
	if err := lot.decreaseWeightViaFee(day(2024, time.January, 1), dec("1"), Gram); err != nil {
		t.Fatal(err)
	}
	h := lot.History()
	if len(h) != 2 {
		t.Fatalf("history has %d entries, want 2", len(h))
	}
	// The returned slice is a copy: mutating it must not corrupt the lot.
	h[0] = "tampered"
	if lot.History()[0] == "tampered" {
		t.Error("History must return a detached copy")
	}
}
