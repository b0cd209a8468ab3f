package models

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TradeIDPrefix is prepended to the trade counter value to form a trade id.
const TradeIDPrefix = "trade_"

// DateLayout is the calendar date format of Trade.Date.
const DateLayout = "2006-01-02"

// ErrInvalidTrade is wrapped by every trade validation failure.
var ErrInvalidTrade = errors.New("invalid trade")

// Action is the side of a trade.
type Action string

const (
	ActionBuy  Action = "buy"
	ActionSell Action = "sell"
)

// Valid reports whether a is one of the known actions.
func (a Action) Valid() bool {
	return a == ActionBuy || a == ActionSell
}

// Trade is one recorded trading action and its outcome.
type Trade struct {
	ID     string  `json:"id"`
	Date   string  `json:"date"` // YYYY-MM-DD
	Symbol string  `json:"symbol"`
	Action Action  `json:"action"`
	Size   float64 `json:"size"` // lot size
	PnL    float64 `json:"pnl"`
	Notes  string  `json:"notes"`
}

// TradeInput is a trade before it has been assigned an id.
type TradeInput struct {
	Date   string  `json:"date"`
	Symbol string  `json:"symbol"`
	Action Action  `json:"action"`
	Size   float64 `json:"size"`
	PnL    float64 `json:"pnl"`
	Notes  string  `json:"notes"`
}

// WithID builds the stored trade for the given id.
func (in TradeInput) WithID(id string) Trade {
	return Trade{
		ID:     id,
		Date:   in.Date,
		Symbol: in.Symbol,
		Action: in.Action,
		Size:   in.Size,
		PnL:    in.PnL,
		Notes:  in.Notes,
	}
}

// Input returns the trade without its id.
func (t Trade) Input() TradeInput {
	return TradeInput{
		Date:   t.Date,
		Symbol: t.Symbol,
		Action: t.Action,
		Size:   t.Size,
		PnL:    t.PnL,
		Notes:  t.Notes,
	}
}

// Validate checks the fields a trade form requires.
func (in TradeInput) Validate() error {
	if strings.TrimSpace(in.Symbol) == "" {
		return fmt.Errorf("%w: symbol is required", ErrInvalidTrade)
	}
	if strings.TrimSpace(in.Date) == "" {
		return fmt.Errorf("%w: date is required", ErrInvalidTrade)
	}
	if _, err := time.Parse(DateLayout, in.Date); err != nil {
		return fmt.Errorf("%w: date %q is not YYYY-MM-DD", ErrInvalidTrade, in.Date)
	}
	if !in.Action.Valid() {
		return fmt.Errorf("%w: action must be buy or sell, got %q", ErrInvalidTrade, in.Action)
	}
	if in.Size <= 0 {
		return fmt.Errorf("%w: size must be positive", ErrInvalidTrade)
	}
	return nil
}

// Validate checks the trade id and the form fields.
func (t Trade) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidTrade)
	}
	return t.Input().Validate()
}

// TradeID formats the id for a trade counter value.
func TradeID(seq int64) string {
	return TradeIDPrefix + strconv.FormatInt(seq, 10)
}

// TradeSeq extracts the counter value from a trade id.
func TradeSeq(id string) (int64, bool) {
	if !strings.HasPrefix(id, TradeIDPrefix) {
		return 0, false
	}
	n, err := strconv.ParseInt(strings.TrimPrefix(id, TradeIDPrefix), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
