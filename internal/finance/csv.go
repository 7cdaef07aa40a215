package finance

import (
	"strings"

	"fintrack/internal/core"
)

// ExportFileName is the default name of the CSV export.
const ExportFileName = "transactions_export.csv"

const csvHeader = "Date,Type,Category,Amount,Note"

// GenerateCSV renders the transactions in their current order under the
// header Date,Type,Category,Amount,Note. Rows are separated by "\n" without a
// trailing newline. The note column is always quoted, with embedded quotes
// doubled; other columns are quoted only when they contain a delimiter.
func GenerateCSV(txs []core.Transaction) string {
	var b strings.Builder
	b.WriteString(csvHeader)
	for _, t := range txs {
		b.WriteByte('\n')
		b.WriteString(csvField(t.Date.String()))
		b.WriteByte(',')
		b.WriteString(csvField(t.Type.String()))
		b.WriteByte(',')
		b.WriteString(csvField(t.Category))
		b.WriteByte(',')
		b.WriteString(t.Amount.String())
		b.WriteByte(',')
		b.WriteString(quote(t.Note))
	}
	return b.String()
}

func csvField(s string) string {
	if strings.ContainsAny(s, ",\"\r\n") {
		return quote(s)
	}
	return s
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
