package printer

import "github.com/siiapp/phasetrack/internal/model"

// Printer knows how to print order and phase information in different formats.
type Printer interface {
	PrintOrders(rows []model.OrderRow) error
	PrintPhaseTimes(times model.PhaseTimes) error
	PrintMessage(msg string) error
}
