package portfolio

import (
	"math"
	"testing"

	"tascope/internal/config"
)

func TestSnapshotMarksToMarket(t *testing.T) {
	book, err := NewBook([]config.Holding{
		{Symbol: "AAPL", Qty: 10, CostBasis: 150},
		{Symbol: "MSFT", Qty: 5, CostBasis: 300},
	})
	if err != nil {
		t.Fatalf("NewBook returned error: %v", err)
	}

	snap := book.Snapshot(map[string]float64{"AAPL": 180, "MSFT": 280})
	if len(snap.Positions) != 2 {
		t.Fatalf("expected 2 positions, got %d", len(snap.Positions))
	}
	if snap.Positions[0].Symbol != "AAPL" || snap.Positions[1].Symbol != "MSFT" {
		t.Fatalf("positions not sorted: %+v", snap.Positions)
	}

	// AAPL: +30 * 10 = +300; MSFT: -20 * 5 = -100
	if math.Abs(snap.Unrealized-200) > 1e-9 {
		t.Fatalf("expected +200 unrealized, got %.2f", snap.Unrealized)
	}
	if math.Abs(snap.MarketValue-(1800+1400)) > 1e-9 {
		t.Fatalf("unexpected market value %.2f", snap.MarketValue)
	}
	if math.Abs(snap.CostValue-(1500+1500)) > 1e-9 {
		t.Fatalf("unexpected cost value %.2f", snap.CostValue)
	}
}

func TestSnapshotMissingMark(t *testing.T) {
	book, err := NewBook([]config.Holding{{Symbol: "AAPL", Qty: 10, CostBasis: 150}})
	if err != nil {
		t.Fatalf("NewBook returned error: %v", err)
	}
	snap := book.Snapshot(nil)
	if snap.MarketValue != 0 || snap.Unrealized != 0 {
		t.Fatalf("unmarked position should carry zero values: %+v", snap)
	}
}

func TestNewBookMergesDuplicates(t *testing.T) {
	book, err := NewBook([]config.Holding{
		{Symbol: "aapl", Qty: 10, CostBasis: 100},
		{Symbol: "AAPL", Qty: 10, CostBasis: 200},
	})
	if err != nil {
		t.Fatalf("NewBook returned error: %v", err)
	}
	snap := book.Snapshot(map[string]float64{"AAPL": 150})
	if len(snap.Positions) != 1 {
		t.Fatalf("expected merged position, got %+v", snap.Positions)
	}
	pos := snap.Positions[0]
	if pos.Qty != 20 || math.Abs(pos.CostBasis-150) > 1e-9 {
		t.Fatalf("unexpected blended position: %+v", pos)
	}
}

func TestNewBookRejectsBadHoldings(t *testing.T) {
	if _, err := NewBook([]config.Holding{{Symbol: "", Qty: 1}}); err == nil {
		t.Fatalf("expected error for missing symbol")
	}
	if _, err := NewBook([]config.Holding{{Symbol: "AAPL", Qty: 0}}); err == nil {
		t.Fatalf("expected error for zero quantity")
	}
	if _, err := NewBook([]config.Holding{{Symbol: "AAPL", Qty: 1, CostBasis: -5}}); err == nil {
		t.Fatalf("expected error for negative cost basis")
	}
}

func TestEmptyAndSymbols(t *testing.T) {
	book, err := NewBook(nil)
	if err != nil {
		t.Fatalf("NewBook returned error: %v", err)
	}
	if !book.Empty() {
		t.Fatalf("expected empty book")
	}

	book, err = NewBook([]config.Holding{{Symbol: "msft", Qty: 1}, {Symbol: "AAPL", Qty: 2}})
	if err != nil {
		t.Fatalf("NewBook returned error: %v", err)
	}
	syms := book.Symbols()
	if len(syms) != 2 || syms[0] != "AAPL" || syms[1] != "MSFT" {
		t.Fatalf("unexpected symbols: %+v", syms)
	}
}
