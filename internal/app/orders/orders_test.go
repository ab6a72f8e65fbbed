package orders_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/siiapp/phasetrack/internal/app/orders"
	"github.com/siiapp/phasetrack/internal/model"
	"github.com/siiapp/phasetrack/internal/storage/storagemock"
)

func TestNewService(t *testing.T) {
	t.Run("Missing catalog returns error", func(t *testing.T) {
		_, err := orders.NewService(orders.ServiceConfig{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "catalog is required")
	})
}

func TestServiceRun(t *testing.T) {
	catalogRows := []model.OrderRow{
		{Order: model.ProcessOrder{OrderNumber: "OP-1001", ItemCode: "PARACETAMOL-500"}},
		{Order: model.ProcessOrder{OrderNumber: "OP-1002", ItemCode: "IBUPROFENO-400"}},
		{Order: model.ProcessOrder{OrderNumber: "OP-2001", ItemCode: "PARACETAMOL-500"}},
	}

	tests := map[string]struct {
		req        orders.Request
		setupMocks func(cat *storagemock.MockOrderCatalog)
		expOrders  []string
		expErr     error
	}{
		"No filter returns every catalog row": {
			req: orders.Request{CompanyCode: "01", StatusCodes: []string{"EF", "PE", "EE"}},
			setupMocks: func(cat *storagemock.MockOrderCatalog) {
				cat.On("ListOrders", mock.Anything, "01", []string{"EF", "PE", "EE"}).
					Return(catalogRows, nil)
			},
			expOrders: []string{"OP-1001", "OP-1002", "OP-2001"},
		},
		"Filter narrows by order number": {
			req: orders.Request{CompanyCode: "01", Filter: "1001"},
			setupMocks: func(cat *storagemock.MockOrderCatalog) {
				cat.On("ListOrders", mock.Anything, "01", []string(nil)).
					Return(catalogRows, nil)
			},
			expOrders: []string{"OP-1001"},
		},
		"Filter matches item code case insensitively": {
			req: orders.Request{CompanyCode: "01", Filter: "paracetamol"},
			setupMocks: func(cat *storagemock.MockOrderCatalog) {
				cat.On("ListOrders", mock.Anything, "01", []string(nil)).
					Return(catalogRows, nil)
			},
			expOrders: []string{"OP-1001", "OP-2001"},
		},
		"Filter with no match returns an empty list": {
			req: orders.Request{CompanyCode: "01", Filter: "amoxicilina"},
			setupMocks: func(cat *storagemock.MockOrderCatalog) {
				cat.On("ListOrders", mock.Anything, "01", []string(nil)).
					Return(catalogRows, nil)
			},
			expOrders: []string{},
		},
		"An unavailable catalog is propagated": {
			req: orders.Request{CompanyCode: "01"},
			setupMocks: func(cat *storagemock.MockOrderCatalog) {
				cat.On("ListOrders", mock.Anything, "01", []string(nil)).
					Return([]model.OrderRow(nil), model.ErrUnavailable)
			},
			expErr: model.ErrUnavailable,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			cat := &storagemock.MockOrderCatalog{}
			test.setupMocks(cat)

			svc, err := orders.NewService(orders.ServiceConfig{Catalog: cat})
			require.NoError(t, err)

			rows, err := svc.Run(context.Background(), test.req)

			if test.expErr != nil {
				assert.ErrorIs(t, err, test.expErr)
			} else {
				require.NoError(t, err)
				gotOrders := make([]string, 0, len(rows))
				for _, row := range rows {
					gotOrders = append(gotOrders, row.Order.OrderNumber)
				}
				assert.Equal(t, test.expOrders, gotOrders)
			}

			cat.AssertExpectations(t)
		})
	}
}
