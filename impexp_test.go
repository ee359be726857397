package trackmetal

import (
	"strings"
	"testing"
	"time"
)

func TestExportTransactions(t *testing.T) {
	txs := []*Transaction{
		// Out of order on purpose: the export must be chronological.
		sell("s1", day(2024, time.February, 1), "40", Gram, Gold, "2200"),
		buy("p1", day(2023, time.May, 2), "100", Gram, Gold, "5000"),
	}
	var sb strings.Builder
	if err := ExportTransactions(&sb, txs); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(sb.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want header plus 2 rows", len(lines))
	}
	if lines[0] != "Date\tService\tType\tMetal\tWeight\tUnit\tItemType\tAccount\tAmountPaid\tAmountReceived\tCurrency\tVault\tTransactionId\tMemo" {
		t.Errorf("bad header: %q", lines[0])
	}
	if lines[1] != "2023-05-02\tTestVault\tPurchase\tgold\t100\tgram\tGeneric\tmain\t5000\t100\tUSD\tvault1\tp1\t" {
		t.Errorf("bad purchase row: %q", lines[1])
	}
	if !strings.HasPrefix(lines[2], "2024-02-01\tTestVault\tSale\tgold\t40\tgram\t") {
		t.Errorf("bad sale row: %q", lines[2])
	}
}

func TestExportLots(t *testing.T) {
	inv := NewInventory()
	err := inv.Replay([]*Transaction{
		buy("p1", day(2023, time.May, 2), "100", Gram, Gold, "5000"),
		sell("s1", day(2024, time.February, 1), "40", Gram, Gold, "2200"),
	})
	if err != nil {
		t.Fatal(err)
	}
	var sb strings.Builder
	if err := ExportLots(&sb, inv.LotsReport()); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(sb.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want header plus 1 row", len(lines))
	}
	if lines[0] != "Date\tLotID\tMetal\tOriginalWeight\tCurrentWeight\tUnit\tItemType\tAccount\tService\tVault\tOriginalBasis\tCurrentBasis\tCurrency" {
		t.Errorf("bad header: %q", lines[0])
	}
	if lines[1] != "2023-05-02\tp1\tgold\t100\t60\tgram\tGeneric\tmain\tTestVault\tvault1\t5000.00\t3000.00\tUSD" {
		t.Errorf("bad lot row: %q", lines[1])
	}
}

func TestExportHoldings(t *testing.T) {
	inv := NewInventory()
	if err := inv.Replay([]*Transaction{buy("p1", day(2023, time.May, 2), "100", Gram, Gold, "5000")}); err != nil {
		t.Fatal(err)
	}
	report, err := inv.HoldingsReport()
	if err != nil {
		t.Fatal(err)
	}
	var sb strings.Builder
	if err := ExportHoldings(&sb, report); err != nil {
		t.Fatal(err)
	}
	want := "Metal\tItemType\tCurrentWeight\tUnit\tCurrentBasis\tCurrency\n" +
		"gold\tGeneric\t100\tgram\t5000.00\tUSD\n"
	if sb.String() != want {
		t.Errorf("got:\n%q\nwant:\n%q", sb.String(), want)
	}
}

func TestExportGains(t *testing.T) {
	inv := NewInventory()
	err := inv.Replay([]*Transaction{
		buy("p1", day(2023, time.May, 2), "100", Gram, Gold, "5000"),
		sell("s1", day(2024, time.February, 1), "40", Gram, Gold, "2200"),
	})
	if err != nil {
		t.Fatal(err)
	}
	var sb strings.Builder
	if err := ExportGains(&sb, inv.GainsReport(2024)); err != nil {
		t.Fatal(err)
	}
	want := "Service\tLot ID\tMetal\tItemType\tBought Date\tSold Date\tAdjusted Basis\tSale Price\tNet Gain\n" +
		"TestVault\tp1\tgold\tGeneric\t2023-05-02\t2024-02-01\t2000.00\t2200.00\t200.00\n"
	if sb.String() != want {
		t.Errorf("got:\n%q\nwant:\n%q", sb.String(), want)
	}
}
