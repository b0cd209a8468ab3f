package models

import "strings"

// Symbol is a tradable instrument tracked by name.
// Trades is a denormalized count of trades referencing the symbol; it is
// best-effort and may drift from the trade list (see journal.RecountSymbols).
type Symbol struct {
	Name   string `json:"name"`
	Trades int    `json:"trades"`
}

// NormalizeSymbol trims and upper-cases a user-entered symbol name.
// The journal itself stores names exactly as given.
func NormalizeSymbol(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}
