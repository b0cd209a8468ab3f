package journal

import (
	"context"
	"fmt"

	"trade-journal-go/internal/models"

	"go.uber.org/zap"
)

// DiagnosticKey is the key used by connectivity checks and the diagnostic route.
const DiagnosticKey = "foo"

const diagnosticValue = "bar"

// SampleSymbols and SampleTrades are the demo data loaded by Seed.
var (
	SampleSymbols = []string{"EURUSD", "GBPUSD", "USDJPY", "AUDUSD", "USDCAD"}

	SampleTrades = []models.TradeInput{
		{Date: "2024-01-15", Symbol: "EURUSD", Action: models.ActionBuy, Size: 0.1, PnL: 125.50, Notes: "Strong bullish momentum"},
		{Date: "2024-01-14", Symbol: "GBPUSD", Action: models.ActionSell, Size: 0.05, PnL: -45.20, Notes: "Hit stop loss"},
		{Date: "2024-01-13", Symbol: "USDJPY", Action: models.ActionBuy, Size: 0.08, PnL: 89.75, Notes: "Breakout confirmed"},
		{Date: "2024-01-12", Symbol: "AUDUSD", Action: models.ActionSell, Size: 0.12, PnL: 67.30, Notes: "Resistance rejection"},
		{Date: "2024-01-11", Symbol: "USDCAD", Action: models.ActionBuy, Size: 0.06, PnL: -23.80, Notes: "False breakout"},
	}
)

// Reset deletes the symbol list, the trade list and the trade counter.
func (r *Repository) Reset(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, key := range []string{KeySymbols, KeyTrades, KeyTradeCounter} {
		if err := r.store.Del(ctx, key); err != nil {
			return fmt.Errorf("could not delete %s: %w", key, err)
		}
	}
	r.logger.Warn("Journal data reset")
	return nil
}

// Seed replaces the journal with the given symbols and trades. Trade ids
// restart from 1.
func (r *Repository) Seed(ctx context.Context, symbols []string, trades []models.TradeInput) error {
	if err := r.Initialize(ctx); err != nil {
		return err
	}
	if err := r.Reset(ctx); err != nil {
		return err
	}

	for _, name := range symbols {
		if _, err := r.AddSymbol(ctx, name); err != nil {
			return fmt.Errorf("failed to add symbol %s: %w", name, err)
		}
	}
	for _, in := range trades {
		if _, err := r.AddTrade(ctx, in); err != nil {
			return fmt.Errorf("failed to add trade for %s: %w", in.Symbol, err)
		}
	}

	r.logger.Info("Journal seeded", zap.Int("symbols", len(symbols)), zap.Int("trades", len(trades)))
	return nil
}

// RecountSymbols recomputes every symbol's trade count from the trade list
// and returns how many symbols had a wrong count. Nothing is written when all
// counts are already right.
func (r *Repository) RecountSymbols(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	trades, err := r.Trades(ctx)
	if err != nil {
		return 0, err
	}
	counts := make(map[string]int, len(trades))
	for _, t := range trades {
		counts[t.Symbol]++
	}

	symbols, err := r.Symbols(ctx)
	if err != nil {
		return 0, err
	}

	corrected := 0
	for i := range symbols {
		want := counts[symbols[i].Name]
		if symbols[i].Trades != want {
			r.logger.Info("Correcting symbol trade count",
				zap.String("symbol", symbols[i].Name),
				zap.Int("stored", symbols[i].Trades),
				zap.Int("actual", want))
			symbols[i].Trades = want
			corrected++
		}
	}

	if corrected == 0 {
		return 0, nil
	}
	if err := saveList(ctx, r.store, KeySymbols, symbols); err != nil {
		return 0, err
	}
	return corrected, nil
}

// Ping writes a probe value under DiagnosticKey and reads it back.
func (r *Repository) Ping(ctx context.Context) error {
	if err := r.store.Set(ctx, DiagnosticKey, []byte(diagnosticValue)); err != nil {
		return fmt.Errorf("store write failed: %w", err)
	}
	v, found, err := r.store.Get(ctx, DiagnosticKey)
	if err != nil {
		return fmt.Errorf("store read failed: %w", err)
	}
	if !found || string(v) != diagnosticValue {
		return fmt.Errorf("store returned %q for %s, want %q", string(v), DiagnosticKey, diagnosticValue)
	}
	return nil
}
