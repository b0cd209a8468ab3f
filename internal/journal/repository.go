// Package journal is the data access layer of the trade journal. Symbols and
// trades are each stored as one JSON array under a fixed key; trade ids come
// from an integer counter key. Every mutation reads the whole collection,
// changes it in memory and writes the whole collection back.
package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"trade-journal-go/internal/kvstore"
	"trade-journal-go/internal/models"

	"go.uber.org/zap"
)

// Keys of the external store.
const (
	KeySymbols      = "symbols"
	KeyTrades       = "trades"
	KeyTradeCounter = "trade_counter"
)

// Repository mediates between the journal model and the key-value store.
//
// Mutations made through one Repository are serialized. Writers in other
// processes are not coordinated with: two of them mutating the same
// collection can still lose one of the updates, and the symbol counts can
// drift from the trade list (RecountSymbols repairs them).
type Repository struct {
	store  kvstore.Store
	logger *zap.Logger
	mu     sync.Mutex
}

// NewRepository creates a Repository over store.
func NewRepository(store kvstore.Store, logger *zap.Logger) *Repository {
	return &Repository{
		store:  store,
		logger: logger.Named("journal"),
	}
}

// Symbols returns all symbols in insertion order.
func (r *Repository) Symbols(ctx context.Context) ([]models.Symbol, error) {
	return loadList[models.Symbol](ctx, r.store, KeySymbols)
}

// AddSymbol appends a symbol with a zero trade count. It returns false, and
// writes nothing, when a symbol with exactly this name already exists.
func (r *Repository) AddSymbol(ctx context.Context, name string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	symbols, err := r.Symbols(ctx)
	if err != nil {
		return false, err
	}
	if indexOfSymbol(symbols, name) >= 0 {
		return false, nil
	}

	symbols = append(symbols, models.Symbol{Name: name, Trades: 0})
	if err := saveList(ctx, r.store, KeySymbols, symbols); err != nil {
		return false, err
	}
	r.logger.Info("Symbol added", zap.String("symbol", name))
	return true, nil
}

// DeleteSymbol removes the symbol with exactly this name. It returns false
// when there is none. Trades referencing the symbol are left as they are.
func (r *Repository) DeleteSymbol(ctx context.Context, name string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	symbols, err := r.Symbols(ctx)
	if err != nil {
		return false, err
	}

	kept := make([]models.Symbol, 0, len(symbols))
	for _, s := range symbols {
		if s.Name != name {
			kept = append(kept, s)
		}
	}
	if len(kept) == len(symbols) {
		return false, nil
	}

	if err := saveList(ctx, r.store, KeySymbols, kept); err != nil {
		return false, err
	}
	r.logger.Info("Symbol deleted", zap.String("symbol", name))
	return true, nil
}

// Trades returns all trades in insertion order.
func (r *Repository) Trades(ctx context.Context) ([]models.Trade, error) {
	return loadList[models.Trade](ctx, r.store, KeyTrades)
}

// TradeByID scans the trade list for id.
func (r *Repository) TradeByID(ctx context.Context, id string) (models.Trade, bool, error) {
	trades, err := r.Trades(ctx)
	if err != nil {
		return models.Trade{}, false, err
	}
	if i := indexOfTrade(trades, id); i >= 0 {
		return trades[i], true, nil
	}
	return models.Trade{}, false, nil
}

// AddTrade assigns the next id from the trade counter, appends the trade and
// bumps the trade count of its symbol. A trade whose symbol is not in the
// symbol list is still recorded; no count changes then.
func (r *Repository) AddTrade(ctx context.Context, in models.TradeInput) (models.Trade, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	seq, err := r.store.Incr(ctx, KeyTradeCounter)
	if err != nil {
		return models.Trade{}, fmt.Errorf("could not allocate trade id: %w", err)
	}
	trade := in.WithID(models.TradeID(seq))

	trades, err := r.Trades(ctx)
	if err != nil {
		return models.Trade{}, err
	}
	trades = append(trades, trade)
	if err := saveList(ctx, r.store, KeyTrades, trades); err != nil {
		return models.Trade{}, err
	}

	symbols, err := r.Symbols(ctx)
	if err != nil {
		return models.Trade{}, err
	}
	if i := indexOfSymbol(symbols, trade.Symbol); i >= 0 {
		symbols[i].Trades++
		if err := saveList(ctx, r.store, KeySymbols, symbols); err != nil {
			return models.Trade{}, err
		}
	} else {
		r.logger.Debug("Trade references unknown symbol", zap.String("symbol", trade.Symbol))
	}

	r.logger.Info("Trade added", zap.String("trade_id", trade.ID), zap.String("symbol", trade.Symbol))
	return trade, nil
}

// UpdateTrade replaces the stored trade with the same id. It returns false
// when no such trade exists. When the symbol changes, the old symbol's count
// goes down (never below zero) and the new one's goes up.
func (r *Repository) UpdateTrade(ctx context.Context, trade models.Trade) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	trades, err := r.Trades(ctx)
	if err != nil {
		return false, err
	}
	i := indexOfTrade(trades, trade.ID)
	if i < 0 {
		return false, nil
	}

	old := trades[i]
	trades[i] = trade
	if err := saveList(ctx, r.store, KeyTrades, trades); err != nil {
		return false, err
	}

	if old.Symbol != trade.Symbol {
		symbols, err := r.Symbols(ctx)
		if err != nil {
			return false, err
		}
		if j := indexOfSymbol(symbols, old.Symbol); j >= 0 {
			symbols[j].Trades = decrement(symbols[j].Trades)
		}
		if j := indexOfSymbol(symbols, trade.Symbol); j >= 0 {
			symbols[j].Trades++
		}
		if err := saveList(ctx, r.store, KeySymbols, symbols); err != nil {
			return false, err
		}
	}

	r.logger.Info("Trade updated", zap.String("trade_id", trade.ID))
	return true, nil
}

// DeleteTrade removes the trade with id and decrements its symbol's count.
// It returns false when no such trade exists.
func (r *Repository) DeleteTrade(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	trades, err := r.Trades(ctx)
	if err != nil {
		return false, err
	}
	i := indexOfTrade(trades, id)
	if i < 0 {
		return false, nil
	}

	removed := trades[i]
	trades = append(trades[:i], trades[i+1:]...)
	if err := saveList(ctx, r.store, KeyTrades, trades); err != nil {
		return false, err
	}

	symbols, err := r.Symbols(ctx)
	if err != nil {
		return false, err
	}
	if j := indexOfSymbol(symbols, removed.Symbol); j >= 0 && symbols[j].Trades > 0 {
		symbols[j].Trades--
		if err := saveList(ctx, r.store, KeySymbols, symbols); err != nil {
			return false, err
		}
	}

	r.logger.Info("Trade deleted", zap.String("trade_id", id))
	return true, nil
}

// Initialize creates the symbol list, the trade list and the trade counter
// when they are absent. Existing values are never overwritten.
func (r *Repository) Initialize(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	defaults := []struct {
		key   string
		value string
	}{
		{KeySymbols, "[]"},
		{KeyTrades, "[]"},
		{KeyTradeCounter, "0"},
	}

	for _, d := range defaults {
		ok, err := r.store.Exists(ctx, d.key)
		if err != nil {
			return fmt.Errorf("could not check key %s: %w", d.key, err)
		}
		if ok {
			continue
		}
		if err := r.store.Set(ctx, d.key, []byte(d.value)); err != nil {
			return fmt.Errorf("could not initialize key %s: %w", d.key, err)
		}
		r.logger.Info("Initialized key", zap.String("key", d.key))
	}
	return nil
}

func indexOfSymbol(symbols []models.Symbol, name string) int {
	for i, s := range symbols {
		if s.Name == name {
			return i
		}
	}
	return -1
}

func indexOfTrade(trades []models.Trade, id string) int {
	for i, t := range trades {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func decrement(n int) int {
	if n <= 0 {
		return 0
	}
	return n - 1
}

// loadList decodes the JSON array under key. An absent key, or a stored null,
// is an empty list.
func loadList[T any](ctx context.Context, store kvstore.Store, key string) ([]T, error) {
	raw, found, err := store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("could not load %s: %w", key, err)
	}
	items := []T{}
	if !found || len(raw) == 0 {
		return items, nil
	}
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("could not decode %s: %w", key, err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

func saveList[T any](ctx context.Context, store kvstore.Store, key string, items []T) error {
	if items == nil {
		items = []T{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("could not encode %s: %w", key, err)
	}
	if err := store.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("could not save %s: %w", key, err)
	}
	return nil
}
