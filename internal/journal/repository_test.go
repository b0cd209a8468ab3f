package journal

import (
	"context"
	"errors"
	"testing"

	"trade-journal-go/internal/kvstore"
	"trade-journal-go/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockStore is a mock implementation of the kvstore.Store interface.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	args := m.Called(key)
	v, _ := args.Get(0).([]byte)
	return v, args.Bool(1), args.Error(2)
}

func (m *MockStore) Set(ctx context.Context, key string, value []byte) error {
	args := m.Called(key, string(value))
	return args.Error(0)
}

func (m *MockStore) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(key)
	return args.Bool(0), args.Error(1)
}

func (m *MockStore) Incr(ctx context.Context, key string) (int64, error) {
	args := m.Called(key)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStore) Del(ctx context.Context, key string) error {
	args := m.Called(key)
	return args.Error(0)
}

// setupTest creates a repository over a fresh in-memory store.
func setupTest(t *testing.T) (*Repository, *kvstore.MemoryStore) {
	t.Helper()
	store := kvstore.NewMemoryStore()
	return NewRepository(store, zap.NewNop()), store
}

func sampleInput(symbol string) models.TradeInput {
	return models.TradeInput{Date: "2024-01-15", Symbol: symbol, Action: models.ActionBuy, Size: 0.1, PnL: 125.50, Notes: "test"}
}

func symbolCount(t *testing.T, repo *Repository, name string) int {
	t.Helper()
	symbols, err := repo.Symbols(context.Background())
	require.NoError(t, err)
	for _, s := range symbols {
		if s.Name == name {
			return s.Trades
		}
	}
	t.Fatalf("symbol %s not found", name)
	return 0
}

func TestEmptyStoreReadsAsEmptyLists(t *testing.T) {
	repo, _ := setupTest(t)
	ctx := context.Background()

	symbols, err := repo.Symbols(ctx)
	assert.NoError(t, err)
	assert.NotNil(t, symbols)
	assert.Empty(t, symbols)

	trades, err := repo.Trades(ctx)
	assert.NoError(t, err)
	assert.NotNil(t, trades)
	assert.Empty(t, trades)

	_, found, err := repo.TradeByID(ctx, "trade_1")
	assert.NoError(t, err)
	assert.False(t, found)
}

func TestInitialize_Idempotent(t *testing.T) {
	// Arrange
	repo, store := setupTest(t)
	ctx := context.Background()

	// Act
	require.NoError(t, repo.Initialize(ctx))
	snapshot := map[string]string{}
	for _, key := range []string{KeySymbols, KeyTrades, KeyTradeCounter} {
		v, found, err := store.Get(ctx, key)
		require.NoError(t, err)
		require.True(t, found, key)
		snapshot[key] = string(v)
	}
	require.NoError(t, repo.Initialize(ctx))

	// Assert
	assert.Equal(t, map[string]string{KeySymbols: "[]", KeyTrades: "[]", KeyTradeCounter: "0"}, snapshot)
	for key, want := range snapshot {
		v, _, _ := store.Get(ctx, key)
		assert.Equal(t, want, string(v), key)
	}
}

func TestInitialize_KeepsExistingData(t *testing.T) {
	repo, store := setupTest(t)
	ctx := context.Background()

	_, err := repo.AddSymbol(ctx, "EURUSD")
	require.NoError(t, err)
	_, err = repo.AddTrade(ctx, sampleInput("EURUSD"))
	require.NoError(t, err)

	require.NoError(t, repo.Initialize(ctx))

	counter, _, _ := store.Get(ctx, KeyTradeCounter)
	assert.Equal(t, "1", string(counter))
	trades, _ := repo.Trades(ctx)
	assert.Len(t, trades, 1)
	assert.Equal(t, 1, symbolCount(t, repo, "EURUSD"))
}

func TestAddSymbol_Uniqueness(t *testing.T) {
	repo, _ := setupTest(t)
	ctx := context.Background()

	for _, name := range []string{"EURUSD", "GBPUSD", "EURUSD", "eurusd", "GBPUSD"} {
		_, err := repo.AddSymbol(ctx, name)
		require.NoError(t, err)
	}

	symbols, err := repo.Symbols(ctx)
	require.NoError(t, err)
	// Names are compared exactly; normalization is the caller's job.
	assert.Equal(t, []models.Symbol{{Name: "EURUSD"}, {Name: "GBPUSD"}, {Name: "eurusd"}}, symbols)
}

func TestAddSymbol_DuplicateDoesNotWrite(t *testing.T) {
	// Arrange
	store := new(MockStore)
	repo := NewRepository(store, zap.NewNop())
	store.On("Get", KeySymbols).Return([]byte(`[{"name":"EURUSD","trades":2}]`), true, nil)

	// Act
	ok, err := repo.AddSymbol(context.Background(), "EURUSD")

	// Assert
	assert.NoError(t, err)
	assert.False(t, ok)
	store.AssertNotCalled(t, "Set", mock.Anything, mock.Anything)
	store.AssertExpectations(t)
}

func TestDeleteSymbol(t *testing.T) {
	repo, _ := setupTest(t)
	ctx := context.Background()
	_, _ = repo.AddSymbol(ctx, "EURUSD")
	_, _ = repo.AddSymbol(ctx, "GBPUSD")
	trade, err := repo.AddTrade(ctx, sampleInput("EURUSD"))
	require.NoError(t, err)

	ok, err := repo.DeleteSymbol(ctx, "EURUSD")
	assert.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.DeleteSymbol(ctx, "EURUSD")
	assert.NoError(t, err)
	assert.False(t, ok)

	symbols, _ := repo.Symbols(ctx)
	assert.Equal(t, []models.Symbol{{Name: "GBPUSD"}}, symbols)

	// The trade keeps its now dangling symbol reference.
	got, found, err := repo.TradeByID(ctx, trade.ID)
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "EURUSD", got.Symbol)
}

func TestAddTrade_CounterMonotonic(t *testing.T) {
	repo, _ := setupTest(t)
	ctx := context.Background()

	var last int64
	for i := 0; i < 6; i++ {
		trade, err := repo.AddTrade(ctx, sampleInput("EURUSD"))
		require.NoError(t, err)

		seq, ok := models.TradeSeq(trade.ID)
		require.True(t, ok)
		assert.Greater(t, seq, last)
		last = seq

		if i%2 == 0 {
			deleted, err := repo.DeleteTrade(ctx, trade.ID)
			require.NoError(t, err)
			require.True(t, deleted)
		}
	}
	assert.Equal(t, int64(6), last)
}

func TestAddTrade_RoundTrip(t *testing.T) {
	repo, _ := setupTest(t)
	ctx := context.Background()

	trade, err := repo.AddTrade(ctx, models.TradeInput{
		Date: "2024-01-14", Symbol: "GBPUSD", Action: models.ActionSell, Size: 0.05, PnL: -45.2, Notes: `Hit "stop" loss`,
	})
	require.NoError(t, err)

	got, found, err := repo.TradeByID(ctx, trade.ID)
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, trade, got)
}

func TestAddTrade_OrphanSymbol(t *testing.T) {
	repo, _ := setupTest(t)
	ctx := context.Background()
	_, _ = repo.AddSymbol(ctx, "EURUSD")
	before, _ := repo.Symbols(ctx)

	trade, err := repo.AddTrade(ctx, sampleInput("XAUUSD"))

	assert.NoError(t, err)
	assert.Equal(t, "trade_1", trade.ID)
	assert.Equal(t, "XAUUSD", trade.Symbol)
	after, _ := repo.Symbols(ctx)
	assert.Equal(t, before, after)
}

func TestTradeCountConsistency(t *testing.T) {
	repo, _ := setupTest(t)
	ctx := context.Background()
	_, _ = repo.AddSymbol(ctx, "EURUSD")

	a, err := repo.AddTrade(ctx, sampleInput("EURUSD"))
	require.NoError(t, err)
	b, err := repo.AddTrade(ctx, sampleInput("EURUSD"))
	require.NoError(t, err)
	assert.Equal(t, 2, symbolCount(t, repo, "EURUSD"))

	ok, err := repo.DeleteTrade(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, symbolCount(t, repo, "EURUSD"))

	ok, err = repo.DeleteTrade(ctx, a.ID)
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 1, symbolCount(t, repo, "EURUSD"))

	// A count already at zero stays at zero.
	_, err = repo.RecountSymbols(ctx)
	require.NoError(t, err)
	_, _ = repo.DeleteSymbol(ctx, "EURUSD")
	_, _ = repo.AddSymbol(ctx, "EURUSD")
	ok, err = repo.DeleteTrade(ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 0, symbolCount(t, repo, "EURUSD"))
}

func TestUpdateTrade(t *testing.T) {
	ctx := context.Background()

	t.Run("SymbolChangeMigratesCounts", func(t *testing.T) {
		repo, _ := setupTest(t)
		_, _ = repo.AddSymbol(ctx, "EURUSD")
		_, _ = repo.AddSymbol(ctx, "GBPUSD")
		trade, err := repo.AddTrade(ctx, sampleInput("EURUSD"))
		require.NoError(t, err)
		_, err = repo.AddTrade(ctx, sampleInput("GBPUSD"))
		require.NoError(t, err)

		trade.Symbol = "GBPUSD"
		trade.PnL = -10
		ok, err := repo.UpdateTrade(ctx, trade)

		assert.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, 0, symbolCount(t, repo, "EURUSD"))
		assert.Equal(t, 2, symbolCount(t, repo, "GBPUSD"))
		got, _, _ := repo.TradeByID(ctx, trade.ID)
		assert.Equal(t, trade, got)
	})

	t.Run("OldCountFlooredAtZero", func(t *testing.T) {
		repo, store := setupTest(t)
		require.NoError(t, store.Set(ctx, KeySymbols, []byte(`[{"name":"EURUSD","trades":0},{"name":"GBPUSD","trades":4}]`)))
		require.NoError(t, store.Set(ctx, KeyTrades, []byte(`[{"id":"trade_9","date":"2024-01-15","symbol":"EURUSD","action":"buy","size":1,"pnl":5,"notes":""}]`)))

		ok, err := repo.UpdateTrade(ctx, models.Trade{ID: "trade_9", Date: "2024-01-15", Symbol: "GBPUSD", Action: models.ActionBuy, Size: 1, PnL: 5})

		assert.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, 0, symbolCount(t, repo, "EURUSD"))
		assert.Equal(t, 5, symbolCount(t, repo, "GBPUSD"))
	})

	t.Run("FullOverwrite", func(t *testing.T) {
		repo, _ := setupTest(t)
		trade, err := repo.AddTrade(ctx, sampleInput("EURUSD"))
		require.NoError(t, err)

		replacement := models.Trade{ID: trade.ID, Date: "2024-02-01", Symbol: "EURUSD", Action: models.ActionSell, Size: 2}
		ok, err := repo.UpdateTrade(ctx, replacement)

		assert.NoError(t, err)
		assert.True(t, ok)
		got, _, _ := repo.TradeByID(ctx, trade.ID)
		assert.Equal(t, replacement, got)
		assert.Empty(t, got.Notes)
	})

	t.Run("NotFound", func(t *testing.T) {
		repo, store := setupTest(t)
		_, err := repo.AddTrade(ctx, sampleInput("EURUSD"))
		require.NoError(t, err)
		before, _, _ := store.Get(ctx, KeyTrades)

		ok, err := repo.UpdateTrade(ctx, models.Trade{ID: "trade_99", Symbol: "EURUSD"})

		assert.NoError(t, err)
		assert.False(t, ok)
		after, _, _ := store.Get(ctx, KeyTrades)
		assert.Equal(t, before, after)
	})

	t.Run("SameSymbolSkipsSymbolWrite", func(t *testing.T) {
		// Arrange
		store := new(MockStore)
		repo := NewRepository(store, zap.NewNop())
		stored := `[{"id":"trade_1","date":"2024-01-15","symbol":"EURUSD","action":"buy","size":0.1,"pnl":1,"notes":""}]`
		store.On("Get", KeyTrades).Return([]byte(stored), true, nil)
		store.On("Set", KeyTrades, mock.Anything).Return(nil)

		// Act
		ok, err := repo.UpdateTrade(ctx, models.Trade{ID: "trade_1", Date: "2024-01-15", Symbol: "EURUSD", Action: models.ActionBuy, Size: 0.1, PnL: 99})

		// Assert
		assert.NoError(t, err)
		assert.True(t, ok)
		store.AssertNotCalled(t, "Get", KeySymbols)
		store.AssertNotCalled(t, "Set", KeySymbols, mock.Anything)
		store.AssertExpectations(t)
	})
}

func TestAddDeleteTradeLifecycle(t *testing.T) {
	repo, _ := setupTest(t)
	ctx := context.Background()

	ok, err := repo.AddSymbol(ctx, "EURUSD")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.AddSymbol(ctx, "EURUSD")
	require.NoError(t, err)
	assert.False(t, ok)

	trade, err := repo.AddTrade(ctx, models.TradeInput{
		Date: "2024-01-15", Symbol: "EURUSD", Action: models.ActionBuy, Size: 0.1, PnL: 125.50, Notes: "test",
	})
	require.NoError(t, err)
	assert.Equal(t, "trade_1", trade.ID)
	assert.Equal(t, []models.Symbol{{Name: "EURUSD", Trades: 1}}, mustSymbols(t, repo))

	ok, err = repo.DeleteTrade(ctx, trade.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []models.Symbol{{Name: "EURUSD", Trades: 0}}, mustSymbols(t, repo))
}

func mustSymbols(t *testing.T, repo *Repository) []models.Symbol {
	t.Helper()
	symbols, err := repo.Symbols(context.Background())
	require.NoError(t, err)
	return symbols
}

func TestStoreFailuresPropagate(t *testing.T) {
	ctx := context.Background()
	storeErr := errors.New("connection refused")

	t.Run("Read", func(t *testing.T) {
		store := new(MockStore)
		repo := NewRepository(store, zap.NewNop())
		store.On("Get", KeySymbols).Return(nil, false, storeErr)

		_, err := repo.Symbols(ctx)

		assert.ErrorIs(t, err, storeErr)
		store.AssertExpectations(t)
	})

	t.Run("CounterFailureWritesNothing", func(t *testing.T) {
		store := new(MockStore)
		repo := NewRepository(store, zap.NewNop())
		store.On("Incr", KeyTradeCounter).Return(int64(0), storeErr)

		_, err := repo.AddTrade(ctx, sampleInput("EURUSD"))

		assert.ErrorIs(t, err, storeErr)
		store.AssertNotCalled(t, "Set", mock.Anything, mock.Anything)
		store.AssertExpectations(t)
	})

	t.Run("WriteFailure", func(t *testing.T) {
		store := new(MockStore)
		repo := NewRepository(store, zap.NewNop())
		store.On("Get", KeySymbols).Return(nil, false, nil)
		store.On("Set", KeySymbols, `[{"name":"EURUSD","trades":0}]`).Return(storeErr)

		ok, err := repo.AddSymbol(ctx, "EURUSD")

		assert.False(t, ok)
		assert.ErrorIs(t, err, storeErr)
		store.AssertExpectations(t)
	})

	t.Run("CorruptValue", func(t *testing.T) {
		repo, store := setupTest(t)
		require.NoError(t, store.Set(ctx, KeyTrades, []byte(`{not json`)))

		_, err := repo.Trades(ctx)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "could not decode trades")
	})
}
