package server

import (
	"context"
	"fmt"
	"os"

	"github.com/etnz/tradestats"
	"github.com/etnz/tradestats/date"
)

// Source provides a consistent snapshot of the ledger.
//
// window restricts the trades of interest, a Source may return more trades
// than requested but never fewer.
type Source interface {
	Snapshot(ctx context.Context, window date.Range) ([]tradestats.Trade, tradestats.PortfolioState, error)
}

// LedgerFile is a Source reading a JSONL ledger file on every snapshot.
type LedgerFile string

func (f LedgerFile) Snapshot(ctx context.Context, window date.Range) ([]tradestats.Trade, tradestats.PortfolioState, error) {
	if err := ctx.Err(); err != nil {
		return nil, tradestats.PortfolioState{}, err
	}
	r, err := os.Open(string(f))
	if err != nil {
		return nil, tradestats.PortfolioState{}, fmt.Errorf("cannot open ledger: %w", err)
	}
	defer r.Close()
	ledger, err := tradestats.DecodeLedger(r)
	if err != nil {
		return nil, tradestats.PortfolioState{}, fmt.Errorf("cannot decode ledger %q: %w", string(f), err)
	}
	return ledger.Trades(), ledger.State(), nil
}
