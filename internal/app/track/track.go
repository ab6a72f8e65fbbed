// Package track implements the phase progress tracking operations: putting an
// order under tracking and moving it between production phases.
package track

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/siiapp/phasetrack/internal/log"
	"github.com/siiapp/phasetrack/internal/model"
	"github.com/siiapp/phasetrack/internal/storage"
)

// ServiceConfig is the configuration for the tracking service.
type ServiceConfig struct {
	Repository storage.ProgressRepository
	Logger     log.Logger

	// nowFunc is replaceable for deterministic tests.
	nowFunc func() time.Time
}

func (c *ServiceConfig) defaults() error {
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	if c.nowFunc == nil {
		c.nowFunc = func() time.Time { return time.Now().UTC() }
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Track"})
	return nil
}

// Service handles the phase progress state machine.
type Service struct {
	repo   storage.ProgressRepository
	logger log.Logger
	now    func() time.Time
}

// NewService creates a new tracking service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:   cfg.Repository,
		logger: cfg.Logger,
		now:    cfg.nowFunc,
	}, nil
}

// CreateRequest are the inputs for putting an order under tracking.
type CreateRequest struct {
	OrderNumber string
	CompanyCode string
	Quantity    float64
	Phase       model.Phase
	Plant       model.Plant
	Comments    string
}

// Create puts an order under phase tracking for the first time and returns
// the new progress ID. The progress row and its opening ledger window are
// written atomically with a single captured timestamp.
func (s *Service) Create(ctx context.Context, req CreateRequest) (string, error) {
	progress := model.PhaseProgress{
		OrderNumber: req.OrderNumber,
		CompanyCode: req.CompanyCode,
		Quantity:    req.Quantity,
		Phase:       req.Phase,
		Plant:       req.Plant,
		Comments:    req.Comments,
	}
	if err := progress.Validate(); err != nil {
		return "", fmt.Errorf("invalid progress: %w", err)
	}

	// An already tracked order must be transitioned instead. The unique index
	// on (order number, company code) backstops concurrent instances.
	_, err := s.repo.GetProgressByOrder(ctx, req.OrderNumber, req.CompanyCode)
	if err == nil {
		return "", fmt.Errorf("order %s is already tracked: %w", req.OrderNumber, model.ErrAlreadyExists)
	}
	if !errors.Is(err, model.ErrNotFound) {
		return "", fmt.Errorf("could not check existing progress: %w", err)
	}

	id, err := s.repo.CreateProgress(ctx, progress, s.now())
	if err != nil {
		return "", fmt.Errorf("could not create progress: %w", err)
	}

	s.logger.Infof("Order %s tracked in phase %s (%s)", req.OrderNumber, req.Phase, id)

	return id, nil
}

// AdvanceRequest are the inputs for transitioning a tracked order.
type AdvanceRequest struct {
	ProgressID string
	Quantity   float64
	Phase      model.Phase
	Plant      model.Plant
	Comments   string
}

// Advance transitions a progress record to a new phase. The record's current
// phase is read first and threaded into the write, which atomically updates
// the progress fields, opens the new phase window and closes the previous one.
func (s *Service) Advance(ctx context.Context, req AdvanceRequest) error {
	if req.ProgressID == "" {
		return fmt.Errorf("progress id is required: %w", model.ErrNotValid)
	}

	current, err := s.repo.GetProgress(ctx, req.ProgressID)
	if err != nil {
		return fmt.Errorf("could not get progress: %w", err)
	}

	progress := model.PhaseProgress{
		ID:          req.ProgressID,
		OrderNumber: current.OrderNumber,
		CompanyCode: current.CompanyCode,
		Quantity:    req.Quantity,
		Phase:       req.Phase,
		Plant:       req.Plant,
		Comments:    req.Comments,
	}
	if err := progress.Validate(); err != nil {
		return fmt.Errorf("invalid progress: %w", err)
	}

	if err := s.repo.TransitionProgress(ctx, progress, current.Phase, s.now()); err != nil {
		return fmt.Errorf("could not transition progress: %w", err)
	}

	s.logger.Infof("Progress %s moved from %s to %s", req.ProgressID, current.Phase, req.Phase)

	return nil
}

// Times returns the phase time ledger of a progress record.
func (s *Service) Times(ctx context.Context, progressID string) (*model.PhaseTimes, error) {
	if progressID == "" {
		return nil, fmt.Errorf("progress id is required: %w", model.ErrNotValid)
	}

	times, err := s.repo.GetPhaseTimes(ctx, progressID)
	if err != nil {
		return nil, fmt.Errorf("could not get phase times: %w", err)
	}

	return times, nil
}
