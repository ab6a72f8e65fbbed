package storage

import (
	"context"
	"time"

	"github.com/siiapp/phasetrack/internal/model"
)

// OrderCatalog is the read-only projection over the external order data joined
// with the local phase progress records.
type OrderCatalog interface {
	// ListOrders returns the orders of a company whose external status is one
	// of the given codes, ordered by order number ascending.
	ListOrders(ctx context.Context, companyCode string, statusCodes []string) ([]model.OrderRow, error)
}

// ProgressRepository is the interface for phase progress persistence.
//
// CreateProgress and TransitionProgress are atomic units: the progress row and
// its time ledger are written in a single transaction, using the caller
// captured timestamp for every window touched by the operation.
type ProgressRepository interface {
	// CreateProgress inserts a new progress record together with the opening
	// ledger window for its phase, and returns the generated progress ID.
	CreateProgress(ctx context.Context, p model.PhaseProgress, now time.Time) (string, error)
	// GetProgress returns a progress record by ID.
	GetProgress(ctx context.Context, id string) (*model.PhaseProgress, error)
	// GetProgressByOrder returns the progress record of an order, if any.
	GetProgressByOrder(ctx context.Context, orderNumber, companyCode string) (*model.PhaseProgress, error)
	// TransitionProgress updates a progress record and its ledger. prevPhase is
	// the phase the record was in before the update, read by the caller.
	TransitionProgress(ctx context.Context, p model.PhaseProgress, prevPhase model.Phase, now time.Time) error
	// GetPhaseTimes returns the time ledger of a progress record.
	GetPhaseTimes(ctx context.Context, progressID string) (*model.PhaseTimes, error)
}
