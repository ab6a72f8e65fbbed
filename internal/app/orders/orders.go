// Package orders implements the order catalog listing: process orders joined
// with their phase progress summary, with a client side filter.
package orders

import (
	"context"
	"fmt"

	"github.com/siiapp/phasetrack/internal/log"
	"github.com/siiapp/phasetrack/internal/model"
	"github.com/siiapp/phasetrack/internal/storage"
)

// ServiceConfig is the configuration for the orders service.
type ServiceConfig struct {
	Catalog storage.OrderCatalog
	Logger  log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Catalog == nil {
		return fmt.Errorf("catalog is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Orders"})
	return nil
}

// Service lists the order catalog.
type Service struct {
	catalog storage.OrderCatalog
	logger  log.Logger
}

// NewService creates a new orders service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		catalog: cfg.Catalog,
		logger:  cfg.Logger,
	}, nil
}

// Request are the catalog listing inputs. Filter is applied to the already
// fetched result set, it never causes another round trip.
type Request struct {
	CompanyCode string
	StatusCodes []string
	Filter      string
}

// Run lists the order catalog rows matching the request.
func (s *Service) Run(ctx context.Context, req Request) ([]model.OrderRow, error) {
	rows, err := s.catalog.ListOrders(ctx, req.CompanyCode, req.StatusCodes)
	if err != nil {
		return nil, fmt.Errorf("could not list orders: %w", err)
	}

	if req.Filter == "" {
		return rows, nil
	}

	filtered := make([]model.OrderRow, 0, len(rows))
	for _, row := range rows {
		if row.MatchesFilter(req.Filter) {
			filtered = append(filtered, row)
		}
	}

	s.logger.Debugf("Filter %q matched %d of %d orders", req.Filter, len(filtered), len(rows))

	return filtered, nil
}
