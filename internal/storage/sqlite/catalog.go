package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/siiapp/phasetrack/internal/log"
	"github.com/siiapp/phasetrack/internal/model"
)

// CatalogConfig is the configuration for the SQLite order catalog.
type CatalogConfig struct {
	DB     *sql.DB
	Logger log.Logger
}

func (c *CatalogConfig) defaults() error {
	if c.DB == nil {
		return fmt.Errorf("db is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "storage.Catalog"})
	return nil
}

// Catalog is a SQLite implementation of storage.OrderCatalog.
type Catalog struct {
	db     *sql.DB
	logger log.Logger
}

// NewCatalog creates a new SQLite order catalog.
func NewCatalog(cfg CatalogConfig) (*Catalog, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Catalog{
		db:     cfg.DB,
		logger: cfg.Logger,
	}, nil
}

// ListOrders returns the orders of a company in the given external statuses,
// outer-joined with their phase progress summary, ordered by order number.
func (c *Catalog) ListOrders(ctx context.Context, companyCode string, statusCodes []string) ([]model.OrderRow, error) {
	if len(statusCodes) == 0 {
		return nil, fmt.Errorf("at least one status code is required: %w", model.ErrNotValid)
	}

	// Only the placeholder count depends on the input, values are always bound.
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(statusCodes)), ", ")

	query := fmt.Sprintf(`
		SELECT
			o.order_number, o.external_order_ref, o.item_code, i.description,
			o.required_date, o.delivery_date, o.estimated_end_date,
			o.requested_quantity, o.status_label, o.company_code,
			p.id, p.quantity, p.phase, p.plant, p.comments, p.created_at, p.updated_at
		FROM process_orders o
		INNER JOIN items i
			ON o.item_code = i.item_code AND o.company_code = i.company_code
		LEFT OUTER JOIN phase_progress p
			ON o.order_number = p.order_number AND o.company_code = p.company_code
		WHERE o.company_code = ? AND o.status_code IN (%s)
		ORDER BY o.order_number ASC
	`, placeholders)

	args := make([]any, 0, len(statusCodes)+1)
	args = append(args, companyCode)
	for _, code := range statusCodes {
		args = append(args, code)
	}

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("could not query orders (%s): %w", err, model.ErrUnavailable)
	}
	defer rows.Close()

	var orders []model.OrderRow
	for rows.Next() {
		row, err := c.scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("could not scan row: %w", err)
		}
		orders = append(orders, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows (%s): %w", err, model.ErrUnavailable)
	}

	return orders, nil
}

func (c *Catalog) scanRow(rows *sql.Rows) (model.OrderRow, error) {
	var row model.OrderRow
	var requiredDate, deliveryDate, estimatedEndDate sql.NullInt64
	var progressID, phase, plant, comments sql.NullString
	var quantity sql.NullFloat64
	var createdAt, updatedAt sql.NullInt64

	err := rows.Scan(
		&row.Order.OrderNumber,
		&row.Order.ExternalOrderRef,
		&row.Order.ItemCode,
		&row.Order.ItemDescription,
		&requiredDate,
		&deliveryDate,
		&estimatedEndDate,
		&row.Order.RequestedQuantity,
		&row.Order.StatusLabel,
		&row.Order.CompanyCode,
		&progressID,
		&quantity,
		&phase,
		&plant,
		&comments,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return model.OrderRow{}, err
	}

	if requiredDate.Valid {
		row.Order.RequiredDate = timeFromUnix(requiredDate.Int64)
	}
	if deliveryDate.Valid {
		row.Order.DeliveryDate = timeFromUnix(deliveryDate.Int64)
	}
	if estimatedEndDate.Valid {
		row.Order.EstimatedEndDate = timeFromUnix(estimatedEndDate.Int64)
	}

	if progressID.Valid {
		row.Progress = &model.PhaseProgress{
			ID:          progressID.String,
			OrderNumber: row.Order.OrderNumber,
			CompanyCode: row.Order.CompanyCode,
			Quantity:    quantity.Float64,
			Phase:       model.Phase(phase.String),
			Plant:       model.Plant(plant.String),
			Comments:    comments.String,
		}
		if createdAt.Valid {
			row.Progress.CreatedAt = timeFromUnix(createdAt.Int64)
		}
		if updatedAt.Valid {
			row.Progress.UpdatedAt = timeFromUnix(updatedAt.Int64)
		}
	}

	return row, nil
}
