// Package history implements the trade history view: search, ordering,
// pagination and CSV export.
package history

import (
	"sort"
	"strings"

	"trade-journal-go/internal/models"
)

// DefaultPerPage is the page size of the history table.
const DefaultPerPage = 5

// Page is one page of the trade history.
// Start and End are 1-based positions for "Showing Start to End of Total";
// both are 0 when there are no trades.
type Page struct {
	Items      []models.Trade `json:"items"`
	Page       int            `json:"page"`
	PerPage    int            `json:"per_page"`
	Total      int            `json:"total"`
	TotalPages int            `json:"total_pages"`
	Start      int            `json:"start"`
	End        int            `json:"end"`
}

// Filter keeps the trades whose symbol or notes contain term, ignoring case.
// An empty term keeps every trade.
func Filter(trades []models.Trade, term string) []models.Trade {
	term = strings.ToLower(strings.TrimSpace(term))
	out := make([]models.Trade, 0, len(trades))
	for _, t := range trades {
		if term == "" ||
			strings.Contains(strings.ToLower(t.Symbol), term) ||
			strings.Contains(strings.ToLower(t.Notes), term) {
			out = append(out, t)
		}
	}
	return out
}

// SortByDateDesc orders trades newest first in place. Trades on the same
// date keep their relative order.
func SortByDateDesc(trades []models.Trade) {
	sort.SliceStable(trades, func(i, j int) bool { return trades[i].Date > trades[j].Date })
}

// Paginate returns page number page of trades. A non-positive perPage means
// DefaultPerPage; page is clamped to the available range.
func Paginate(trades []models.Trade, page, perPage int) Page {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	total := len(trades)
	totalPages := total / perPage
	if total%perPage != 0 {
		totalPages++
	}

	if page > totalPages {
		page = totalPages
	}
	if page < 1 {
		page = 1
	}

	p := Page{
		Items:      []models.Trade{},
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
	}
	if total == 0 {
		return p
	}

	start := (page - 1) * perPage
	end := total
	if perPage < total-start {
		end = start + perPage
	}
	p.Items = trades[start:end]
	p.Start = start + 1
	p.End = end
	return p
}
