package model

import (
	"fmt"
	"time"
)

// PhaseProgress is the mutable summary of an order's current tracked phase.
// There is at most one record per (order number, company code) pair.
type PhaseProgress struct {
	ID          string
	OrderNumber string
	CompanyCode string
	Quantity    float64
	Phase       Phase
	Plant       Plant
	Comments    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Validate validates the operator supplied progress fields.
func (p *PhaseProgress) Validate() error {
	if p.OrderNumber == "" {
		return fmt.Errorf("order number is required: %w", ErrNotValid)
	}
	if p.CompanyCode == "" {
		return fmt.Errorf("company code is required: %w", ErrNotValid)
	}
	if p.Quantity <= 0 {
		return fmt.Errorf("quantity must be positive: %w", ErrNotValid)
	}
	if err := p.Phase.Validate(); err != nil {
		return err
	}
	if err := p.Plant.Validate(); err != nil {
		return err
	}
	return nil
}
