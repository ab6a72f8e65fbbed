package model

import (
	"strings"
	"time"
)

// ProcessOrder is an external manufacturing order. It is owned by the order
// management system and is read-only for this application.
type ProcessOrder struct {
	OrderNumber       string
	ExternalOrderRef  string
	ItemCode          string
	ItemDescription   string
	RequiredDate      time.Time
	DeliveryDate      time.Time
	EstimatedEndDate  time.Time
	RequestedQuantity float64
	StatusLabel       string
	CompanyCode       string
}

// OrderRow is one row of the order catalog projection: a process order plus
// its phase progress summary when the order is already under tracking.
type OrderRow struct {
	Order ProcessOrder

	// Progress is nil when the order is not yet tracked.
	Progress *PhaseProgress
}

// Tracked returns true when the order already has a progress record.
func (r OrderRow) Tracked() bool { return r.Progress != nil }

// MatchesFilter reports whether the row matches a case-insensitive substring
// filter over order number, external order reference and item code. An empty
// filter matches everything.
func (r OrderRow) MatchesFilter(filter string) bool {
	if filter == "" {
		return true
	}
	filter = strings.ToLower(filter)

	for _, field := range []string{r.Order.OrderNumber, r.Order.ExternalOrderRef, r.Order.ItemCode} {
		if strings.Contains(strings.ToLower(field), filter) {
			return true
		}
	}
	return false
}
