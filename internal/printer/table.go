package printer

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/siiapp/phasetrack/internal/model"
)

// TablePrinter prints order and phase information in a table format.
type TablePrinter struct {
	writer io.Writer
}

// NewTablePrinter creates a new table printer.
func NewTablePrinter(w io.Writer) *TablePrinter {
	return &TablePrinter{writer: w}
}

// PrintOrders prints catalog rows in a table format. Untracked orders show
// empty progress columns.
func (t *TablePrinter) PrintOrders(rows []model.OrderRow) error {
	if len(rows) == 0 {
		return nil
	}

	tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "ORDER\tREF\tITEM\tDESCRIPTION\tREQUIRED\tSTATUS\tFP ID\tQTY\tPHASE\tPLANT")

	for _, row := range rows {
		progressID, qty, phase, plant := "", "", "", ""
		if row.Tracked() {
			progressID = row.Progress.ID
			qty = fmt.Sprintf("%g", row.Progress.Quantity)
			phase = string(row.Progress.Phase)
			plant = string(row.Progress.Plant)
		}

		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			row.Order.OrderNumber,
			row.Order.ExternalOrderRef,
			row.Order.ItemCode,
			row.Order.ItemDescription,
			formatDate(row.Order.RequiredDate),
			row.Order.StatusLabel,
			progressID,
			qty,
			phase,
			plant,
		)
	}

	return nil
}

// PrintPhaseTimes prints the time ledger of a progress record, one line per
// phase in display order.
func (t *TablePrinter) PrintPhaseTimes(times model.PhaseTimes) error {
	tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "PHASE\tSTARTED\tENDED")

	for _, phase := range model.AllPhases {
		window := times.Window(phase)
		fmt.Fprintf(tw, "%s\t%s\t%s\n",
			phase,
			formatOptTimestamp(window.Start),
			formatOptTimestamp(window.End),
		)
	}

	return nil
}

// PrintMessage prints a simple message.
func (t *TablePrinter) PrintMessage(msg string) error {
	_, err := fmt.Fprintln(t.writer, msg)
	return err
}

func formatDate(ts time.Time) string {
	if ts.IsZero() {
		return ""
	}
	return ts.UTC().Format("2006-01-02")
}

func formatOptTimestamp(ts *time.Time) string {
	if ts == nil {
		return "-"
	}
	return FormatTimestamp(*ts)
}
