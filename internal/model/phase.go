package model

import (
	"fmt"
	"time"
)

// Phase represents a production phase of a process order.
//
// Phase labels are kept in Spanish because they are shared with the plant
// floor systems and stored as-is.
type Phase string

const (
	PhaseDispensacion      Phase = "Dispensacion"
	PhasePesaje            Phase = "Pesaje"
	PhaseFabricacion       Phase = "Fabricacion"
	PhaseMicrobiologia     Phase = "Microbiologia"
	PhaseEnvasado          Phase = "Envasado"
	PhaseAcondicionamiento Phase = "Acondicionamiento"
	PhaseEmbalaje          Phase = "Embalaje"
	PhaseDespacho          Phase = "Despacho"
	PhaseReproceso         Phase = "Reproceso"
)

// AllPhases lists every production phase in display order.
var AllPhases = []Phase{
	PhaseDispensacion,
	PhasePesaje,
	PhaseFabricacion,
	PhaseMicrobiologia,
	PhaseEnvasado,
	PhaseAcondicionamiento,
	PhaseEmbalaje,
	PhaseDespacho,
	PhaseReproceso,
}

// Terminal returns true for the phase that closes instantaneously: dispatch
// gets its start and end timestamps set in the same write.
func (p Phase) Terminal() bool { return p == PhaseDespacho }

// Validate checks the phase is one of the known production phases.
func (p Phase) Validate() error {
	for _, known := range AllPhases {
		if p == known {
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q: %w", string(p), ErrNotValid)
}

// Plant is a two-digit facility code identifying where production occurs.
type Plant string

const (
	Plant01 Plant = "01"
	Plant02 Plant = "02"
)

// AllPlants lists the known production plants.
var AllPlants = []Plant{Plant01, Plant02}

// Validate checks the plant is one of the known facility codes.
func (p Plant) Validate() error {
	for _, known := range AllPlants {
		if p == known {
			return nil
		}
	}
	return fmt.Errorf("unknown plant %q: %w", string(p), ErrNotValid)
}

// PhaseWindow holds the start/end timestamps of a single phase for one
// progress record. End is set only if Start is set.
type PhaseWindow struct {
	Start *time.Time
	End   *time.Time
}

// Open returns true when the phase was entered and not yet closed.
func (w PhaseWindow) Open() bool { return w.Start != nil && w.End == nil }

// PhaseTimes is the per-phase timestamp ledger of a progress record. Windows
// only get added or updated, never removed.
type PhaseTimes struct {
	ProgressID string
	Windows    map[Phase]PhaseWindow
}

// Window returns the window of a phase, zero valued if the phase was never
// entered.
func (t PhaseTimes) Window(p Phase) PhaseWindow { return t.Windows[p] }
