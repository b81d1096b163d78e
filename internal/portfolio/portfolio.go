// Package portfolio marks configured holdings to market using analyzed closes.
package portfolio

import (
	"errors"
	"sort"
	"strings"
	"sync"

	"tascope/internal/config"
)

type position struct {
	Qty       float64
	CostBasis float64
}

// Book tracks per-symbol holdings seeded from configuration.
type Book struct {
	mu        sync.Mutex
	positions map[string]position
}

// PositionSnapshot exposes a read-only view of a single holding.
type PositionSnapshot struct {
	Symbol      string  `json:"symbol"`
	Qty         float64 `json:"qty"`
	CostBasis   float64 `json:"cost_basis"`
	MarketValue float64 `json:"market_value"`
	Unrealized  float64 `json:"unrealized"`
}

// Snapshot represents the whole book, optionally marked using provided prices.
type Snapshot struct {
	MarketValue float64            `json:"market_value"`
	CostValue   float64            `json:"cost_value"`
	Unrealized  float64            `json:"unrealized"`
	Positions   []PositionSnapshot `json:"positions"`
}

// NewBook constructs a book from configured holdings. Duplicate symbols merge
// into one position at blended cost.
func NewBook(holdings []config.Holding) (*Book, error) {
	book := &Book{positions: make(map[string]position, len(holdings))}
	for _, h := range holdings {
		symbol := strings.ToUpper(strings.TrimSpace(h.Symbol))
		if symbol == "" {
			return nil, errors.New("holding missing symbol")
		}
		if h.Qty <= 0 {
			return nil, errors.New("holding quantity must be positive")
		}
		if h.CostBasis < 0 {
			return nil, errors.New("holding cost basis must not be negative")
		}
		cur := book.positions[symbol]
		newQty := cur.Qty + h.Qty
		blended := ((cur.CostBasis * cur.Qty) + (h.CostBasis * h.Qty)) / newQty
		book.positions[symbol] = position{Qty: newQty, CostBasis: blended}
	}
	return book, nil
}

// Symbols returns held symbols, sorted.
func (b *Book) Symbols() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, 0, len(b.positions))
	for sym := range b.positions {
		out = append(out, sym)
	}
	sort.Strings(out)
	return out
}

// Empty reports whether the book has no holdings.
func (b *Book) Empty() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.positions) == 0
}

// Snapshot marks the book using the supplied prices map. Symbols without a
// mark carry zero market value and unrealized P&L.
func (b *Book) Snapshot(prices map[string]float64) Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()

	var snap Snapshot
	for sym, pos := range b.positions {
		mark := prices[sym]
		marketValue := pos.Qty * mark
		unrealized := (mark - pos.CostBasis) * pos.Qty
		if mark == 0 {
			marketValue = 0
			unrealized = 0
		}
		snap.Positions = append(snap.Positions, PositionSnapshot{
			Symbol:      sym,
			Qty:         pos.Qty,
			CostBasis:   pos.CostBasis,
			MarketValue: marketValue,
			Unrealized:  unrealized,
		})
		snap.MarketValue += marketValue
		snap.CostValue += pos.CostBasis * pos.Qty
		snap.Unrealized += unrealized
	}
	sort.Slice(snap.Positions, func(i, j int) bool {
		return snap.Positions[i].Symbol < snap.Positions[j].Symbol
	})
	return snap
}
