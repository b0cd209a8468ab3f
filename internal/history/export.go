package history

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"trade-journal-go/internal/models"
)

var csvHeader = []string{"Date", "Symbol", "Action", "Size", "P/L", "Notes"}

// ExportFilename is the download name of an export made at now.
func ExportFilename(now time.Time) string {
	return fmt.Sprintf("trades_export_%s.csv", now.UTC().Format(models.DateLayout))
}

// WriteCSV writes trades as CSV. The action is upper-cased, numbers use their
// shortest form and notes are always quoted.
func WriteCSV(w io.Writer, trades []models.Trade) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(strings.Join(csvHeader, ",") + "\n"); err != nil {
		return err
	}
	for _, t := range trades {
		row := []string{
			t.Date,
			t.Symbol,
			strings.ToUpper(string(t.Action)),
			formatNumber(t.Size),
			formatNumber(t.PnL),
			quote(t.Notes),
		}
		if _, err := bw.WriteString(strings.Join(row, ",") + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// quote wraps s in double quotes, doubling any inside it.
func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
