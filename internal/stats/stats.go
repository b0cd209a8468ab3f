// Package stats derives the dashboard figures from the trade list.
package stats

import (
	"sort"
	"time"

	"trade-journal-go/internal/models"

	"github.com/shopspring/decimal"
)

// RecentWindowDays is the length of the "recent" period in a Report.
const RecentWindowDays = 30

var hundred = decimal.NewFromInt(100)

// Summary holds the aggregate figures for a set of trades.
// Money values and the win rate are rounded to two decimals.
type Summary struct {
	TotalTrades   int     `json:"total_trades"`
	WinningTrades int     `json:"winning_trades"`
	LosingTrades  int     `json:"losing_trades"`
	WinRate       float64 `json:"win_rate"` // percent
	TotalPnL      float64 `json:"total_pnl"`
	AveragePnL    float64 `json:"average_pnl"`
	GrossProfit   float64 `json:"gross_profit"`
	GrossLoss     float64 `json:"gross_loss"`
	ProfitFactor  float64 `json:"profit_factor"`
	BestTrade     float64 `json:"best_trade"`
	WorstTrade    float64 `json:"worst_trade"`
}

// Report is the payload of the statistics panel.
type Report struct {
	AllTime    Summary `json:"all_time"`
	Last30Days Summary `json:"last_30_days"`
	Since      string  `json:"since"`
}

// Point is one sample of the cumulative P/L series.
type Point struct {
	Date string  `json:"date"`
	PnL  float64 `json:"pnl"`
}

// SymbolShare is one slice of the symbol distribution.
type SymbolShare struct {
	Symbol  string  `json:"symbol"`
	Trades  int     `json:"trades"`
	Percent float64 `json:"percent"`
	PnL     float64 `json:"pnl"`
}

// Summarize computes the aggregate figures of trades.
func Summarize(trades []models.Trade) Summary {
	var s Summary
	if len(trades) == 0 {
		return s
	}

	total := decimal.Zero
	profit := decimal.Zero
	loss := decimal.Zero
	best := decimal.NewFromFloat(trades[0].PnL)
	worst := best

	for _, t := range trades {
		pnl := decimal.NewFromFloat(t.PnL)
		total = total.Add(pnl)
		switch {
		case pnl.IsPositive():
			s.WinningTrades++
			profit = profit.Add(pnl)
		case pnl.IsNegative():
			s.LosingTrades++
			loss = loss.Add(pnl.Abs())
		}
		if pnl.GreaterThan(best) {
			best = pnl
		}
		if pnl.LessThan(worst) {
			worst = pnl
		}
	}

	n := decimal.NewFromInt(int64(len(trades)))
	s.TotalTrades = len(trades)
	s.WinRate = round2(decimal.NewFromInt(int64(s.WinningTrades)).Mul(hundred).Div(n))
	s.TotalPnL = round2(total)
	s.AveragePnL = round2(total.Div(n))
	s.GrossProfit = round2(profit)
	s.GrossLoss = round2(loss)
	if loss.IsPositive() {
		s.ProfitFactor = round2(profit.Div(loss))
	}
	s.BestTrade = round2(best)
	s.WorstTrade = round2(worst)
	return s
}

// BuildReport summarizes all trades and those dated within the last
// RecentWindowDays days before now.
func BuildReport(trades []models.Trade, now time.Time) Report {
	since := now.UTC().AddDate(0, 0, -RecentWindowDays).Format(models.DateLayout)

	recent := make([]models.Trade, 0, len(trades))
	for _, t := range trades {
		// YYYY-MM-DD compares correctly as a string.
		if t.Date >= since {
			recent = append(recent, t)
		}
	}

	return Report{
		AllTime:    Summarize(trades),
		Last30Days: Summarize(recent),
		Since:      since,
	}
}

// CumulativePnL returns the running P/L total, one point per distinct date in
// ascending date order.
func CumulativePnL(trades []models.Trade) []Point {
	sorted := make([]models.Trade, len(trades))
	copy(sorted, trades)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date < sorted[j].Date })

	points := make([]Point, 0, len(sorted))
	running := decimal.Zero
	for _, t := range sorted {
		running = running.Add(decimal.NewFromFloat(t.PnL))
		if n := len(points); n > 0 && points[n-1].Date == t.Date {
			points[n-1].PnL = round2(running)
			continue
		}
		points = append(points, Point{Date: t.Date, PnL: round2(running)})
	}
	return points
}

// Distribution groups trades by symbol, ordered by trade count and then name.
// Counts come from the trades themselves, not the stored symbol counts.
func Distribution(trades []models.Trade) []SymbolShare {
	if len(trades) == 0 {
		return []SymbolShare{}
	}

	type acc struct {
		trades int
		pnl    decimal.Decimal
	}
	bySymbol := make(map[string]*acc)
	for _, t := range trades {
		a, ok := bySymbol[t.Symbol]
		if !ok {
			a = &acc{pnl: decimal.Zero}
			bySymbol[t.Symbol] = a
		}
		a.trades++
		a.pnl = a.pnl.Add(decimal.NewFromFloat(t.PnL))
	}

	n := decimal.NewFromInt(int64(len(trades)))
	shares := make([]SymbolShare, 0, len(bySymbol))
	for symbol, a := range bySymbol {
		shares = append(shares, SymbolShare{
			Symbol:  symbol,
			Trades:  a.trades,
			Percent: round2(decimal.NewFromInt(int64(a.trades)).Mul(hundred).Div(n)),
			PnL:     round2(a.pnl),
		})
	}
	sort.Slice(shares, func(i, j int) bool {
		if shares[i].Trades != shares[j].Trades {
			return shares[i].Trades > shares[j].Trades
		}
		return shares[i].Symbol < shares[j].Symbol
	})
	return shares
}

func round2(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
