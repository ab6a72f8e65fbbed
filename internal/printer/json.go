package printer

import (
	"encoding/json"
	"io"
	"time"

	"github.com/siiapp/phasetrack/internal/model"
)

// JSONPrinter prints order and phase information in JSON format.
type JSONPrinter struct {
	writer io.Writer
}

// NewJSONPrinter creates a new JSON printer.
func NewJSONPrinter(w io.Writer) *JSONPrinter {
	return &JSONPrinter{writer: w}
}

// orderItem represents a catalog row in the list output.
type orderItem struct {
	OrderNumber       string         `json:"order_number"`
	ExternalOrderRef  string         `json:"external_order_ref"`
	ItemCode          string         `json:"item_code"`
	ItemDescription   string         `json:"item_description"`
	RequiredDate      *time.Time     `json:"required_date,omitempty"`
	DeliveryDate      *time.Time     `json:"delivery_date,omitempty"`
	EstimatedEndDate  *time.Time     `json:"estimated_end_date,omitempty"`
	RequestedQuantity float64        `json:"requested_quantity"`
	StatusLabel       string         `json:"status_label"`
	CompanyCode       string         `json:"company_code"`
	Progress          *progressBlock `json:"progress,omitempty"`
}

// progressBlock represents the progress summary of a tracked order.
type progressBlock struct {
	ID       string  `json:"id"`
	Quantity float64 `json:"quantity"`
	Phase    string  `json:"phase"`
	Plant    string  `json:"plant"`
	Comments string  `json:"comments,omitempty"`
}

// windowOutput represents one phase window of the time ledger.
type windowOutput struct {
	Phase   string     `json:"phase"`
	Started *time.Time `json:"started,omitempty"`
	Ended   *time.Time `json:"ended,omitempty"`
}

// messageOutput represents a simple message output.
type messageOutput struct {
	Message string `json:"message"`
}

// PrintOrders prints catalog rows in JSON format.
func (j *JSONPrinter) PrintOrders(rows []model.OrderRow) error {
	items := make([]orderItem, len(rows))
	for i, row := range rows {
		items[i] = orderItem{
			OrderNumber:       row.Order.OrderNumber,
			ExternalOrderRef:  row.Order.ExternalOrderRef,
			ItemCode:          row.Order.ItemCode,
			ItemDescription:   row.Order.ItemDescription,
			RequiredDate:      optTime(row.Order.RequiredDate),
			DeliveryDate:      optTime(row.Order.DeliveryDate),
			EstimatedEndDate:  optTime(row.Order.EstimatedEndDate),
			RequestedQuantity: row.Order.RequestedQuantity,
			StatusLabel:       row.Order.StatusLabel,
			CompanyCode:       row.Order.CompanyCode,
		}
		if row.Tracked() {
			items[i].Progress = &progressBlock{
				ID:       row.Progress.ID,
				Quantity: row.Progress.Quantity,
				Phase:    string(row.Progress.Phase),
				Plant:    string(row.Progress.Plant),
				Comments: row.Progress.Comments,
			}
		}
	}

	enc := json.NewEncoder(j.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(items)
}

// PrintPhaseTimes prints the time ledger in JSON format in phase display
// order.
func (j *JSONPrinter) PrintPhaseTimes(times model.PhaseTimes) error {
	windows := make([]windowOutput, 0, len(model.AllPhases))
	for _, phase := range model.AllPhases {
		window := times.Window(phase)
		windows = append(windows, windowOutput{
			Phase:   string(phase),
			Started: window.Start,
			Ended:   window.End,
		})
	}

	enc := json.NewEncoder(j.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(windows)
}

// PrintMessage prints a simple message in JSON format.
func (j *JSONPrinter) PrintMessage(msg string) error {
	enc := json.NewEncoder(j.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(messageOutput{Message: msg})
}

func optTime(ts time.Time) *time.Time {
	if ts.IsZero() {
		return nil
	}
	u := ts.UTC()
	return &u
}
