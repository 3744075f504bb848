// Package export renders the payment-history snapshot as CSV, the one
// client-exposed download the dashboard offers.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/Mondli-02/union-dues-system/internal/domain"
)

// historyHeader is the fixed column order consumers of the export rely on.
var historyHeader = []string{
	"TransactionID", "ReceiptNumber", "Date", "AmountUSD", "AmountZWL",
	"MonthsPaid", "Status", "PickupDate", "ScheduleFileLink",
}

// Options tunes the export per deployment variant.
type Options struct {
	// OmitReceiptNumber drops the ReceiptNumber column, matching the
	// delegated-auth deployment where the service never issues one.
	OmitReceiptNumber bool
}

// WriteHistory writes the snapshot as CSV with proper quoting. Fields that
// contain commas or quotes survive a round-trip, unlike the naive
// comma-join the dashboard used to ship.
func WriteHistory(w io.Writer, payments []domain.Payment, opts Options) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(projectRow(historyHeader, opts)); err != nil {
		return fmt.Errorf("export: write header: %w", err)
	}
	for _, p := range payments {
		row := []string{
			p.TransactionID,
			p.ReceiptNumber,
			p.Date,
			formatAmount(p.AmountUSD),
			formatAmount(p.AmountZWL),
			strconv.Itoa(p.MonthsPaid),
			string(p.Status),
			p.PickupDate,
			p.ScheduleFileLink,
		}
		if err := cw.Write(projectRow(row, opts)); err != nil {
			return fmt.Errorf("export: write row %s: %w", p.TransactionID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("export: flush: %w", err)
	}
	return nil
}

// projectRow removes the ReceiptNumber column (index 1) when configured.
func projectRow(row []string, opts Options) []string {
	if !opts.OmitReceiptNumber {
		return row
	}
	out := make([]string, 0, len(row)-1)
	out = append(out, row[0])
	out = append(out, row[2:]...)
	return out
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
