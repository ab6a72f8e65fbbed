package printer_test

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siiapp/phasetrack/internal/model"
	"github.com/siiapp/phasetrack/internal/printer"
)

func testRows() []model.OrderRow {
	return []model.OrderRow{
		{
			Order: model.ProcessOrder{
				OrderNumber:       "OP-1001",
				ExternalOrderRef:  "REF-1001",
				ItemCode:          "PARACETAMOL-500",
				ItemDescription:   "Paracetamol 500mg tablets",
				RequiredDate:      time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
				RequestedQuantity: 500,
				StatusLabel:       "En Firme",
				CompanyCode:       "01",
			},
			Progress: &model.PhaseProgress{
				ID:       "01HRW9YZTEST000000000000",
				Quantity: 100,
				Phase:    model.PhasePesaje,
				Plant:    model.Plant01,
			},
		},
		{
			Order: model.ProcessOrder{
				OrderNumber: "OP-1002",
				ItemCode:    "IBUPROFENO-400",
				StatusLabel: "Pendiente",
				CompanyCode: "01",
			},
		},
	}
}

func TestTablePrinterPrintOrders(t *testing.T) {
	t.Run("Tracked and untracked rows", func(t *testing.T) {
		var b bytes.Buffer
		p := printer.NewTablePrinter(&b)

		require.NoError(t, p.PrintOrders(testRows()))

		out := b.String()
		assert.Contains(t, out, "ORDER")
		assert.Contains(t, out, "PHASE")
		assert.Contains(t, out, "OP-1001")
		assert.Contains(t, out, "2026-03-10")
		assert.Contains(t, out, "Pesaje")
		assert.Contains(t, out, "01HRW9YZTEST000000000000")

		// The untracked order is listed without progress columns.
		assert.Contains(t, out, "OP-1002")
		assert.NotContains(t, out, "Dispensacion")
	})

	t.Run("Empty list prints nothing", func(t *testing.T) {
		var b bytes.Buffer
		p := printer.NewTablePrinter(&b)

		require.NoError(t, p.PrintOrders(nil))
		assert.Empty(t, b.String())
	})
}

func TestTablePrinterPrintPhaseTimes(t *testing.T) {
	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Hour)

	var b bytes.Buffer
	p := printer.NewTablePrinter(&b)

	err := p.PrintPhaseTimes(model.PhaseTimes{
		ProgressID: "fp-1",
		Windows: map[model.Phase]model.PhaseWindow{
			model.PhaseDispensacion: {Start: &start, End: &end},
			model.PhasePesaje:       {Start: &end},
		},
	})
	require.NoError(t, err)

	out := b.String()
	assert.Contains(t, out, "Dispensacion")
	assert.Contains(t, out, "2026-03-02 10:00:00 UTC")
	assert.Contains(t, out, "2026-03-02 12:00:00 UTC")

	// Every phase is listed, untouched ones with empty markers.
	for _, phase := range model.AllPhases {
		assert.Contains(t, out, string(phase))
	}
	assert.Contains(t, out, "-")
}

func TestJSONPrinterPrintOrders(t *testing.T) {
	var b bytes.Buffer
	p := printer.NewJSONPrinter(&b)

	require.NoError(t, p.PrintOrders(testRows()))

	var got []map[string]any
	require.NoError(t, json.Unmarshal(b.Bytes(), &got))
	require.Len(t, got, 2)

	assert.Equal(t, "OP-1001", got[0]["order_number"])
	progress, ok := got[0]["progress"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Pesaje", progress["phase"])
	assert.Equal(t, float64(100), progress["quantity"])

	// The untracked order has no progress block at all.
	_, hasProgress := got[1]["progress"]
	assert.False(t, hasProgress)
	_, hasRequired := got[1]["required_date"]
	assert.False(t, hasRequired)
}

func TestJSONPrinterPrintPhaseTimes(t *testing.T) {
	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	var b bytes.Buffer
	p := printer.NewJSONPrinter(&b)

	err := p.PrintPhaseTimes(model.PhaseTimes{
		ProgressID: "fp-1",
		Windows: map[model.Phase]model.PhaseWindow{
			model.PhaseDispensacion: {Start: &start},
		},
	})
	require.NoError(t, err)

	var got []map[string]any
	require.NoError(t, json.Unmarshal(b.Bytes(), &got))
	require.Len(t, got, len(model.AllPhases))

	assert.Equal(t, "Dispensacion", got[0]["phase"])
	assert.NotEmpty(t, got[0]["started"])
	_, hasEnded := got[0]["ended"]
	assert.False(t, hasEnded)
}

func TestPrintMessage(t *testing.T) {
	t.Run("Table", func(t *testing.T) {
		var b bytes.Buffer
		require.NoError(t, printer.NewTablePrinter(&b).PrintMessage("Welcome jdoe!"))
		assert.Equal(t, "Welcome jdoe!\n", b.String())
	})

	t.Run("JSON", func(t *testing.T) {
		var b bytes.Buffer
		require.NoError(t, printer.NewJSONPrinter(&b).PrintMessage("Welcome jdoe!"))

		var got map[string]string
		require.NoError(t, json.Unmarshal(b.Bytes(), &got))
		assert.Equal(t, "Welcome jdoe!", got["message"])
	})
}
