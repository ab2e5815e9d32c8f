// Package lifecycle derives a campaign's phase from its dates and orders
// campaigns for display. Everything here is a pure function of its inputs.
package lifecycle

import (
	"strings"
	"time"
)

// Phase is the derived lifecycle label of a campaign.
type Phase string

const (
	PhaseUpcoming Phase = "Upcoming"
	PhaseActive   Phase = "Active"
	PhaseClosed   Phase = "Closed"
)

var phases = []Phase{PhaseActive, PhaseUpcoming, PhaseClosed}

// Precedence is the primary display sort key: Active, then Upcoming, then Closed.
func (p Phase) Precedence() int {
	switch p {
	case PhaseActive:
		return 0
	case PhaseUpcoming:
		return 1
	case PhaseClosed:
		return 2
	default:
		return len(phases)
	}
}

// ParsePhase recognizes one of the three phase labels, ignoring case and
// surrounding whitespace.
func ParsePhase(raw string) (Phase, bool) {
	raw = strings.TrimSpace(raw)
	for _, p := range phases {
		if strings.EqualFold(raw, string(p)) {
			return p, true
		}
	}
	return "", false
}

// Dates holds the normalized dates of one campaign. A nil field means the
// constraint does not apply.
type Dates struct {
	Start    *time.Time
	Deadline *time.Time
	Event    *time.Time
}

// Classify returns the phase of a campaign on the calendar day of today.
// Rules are evaluated in order and the first match wins; a campaign no rule
// matches is reported as Active.
func Classify(today time.Time, d Dates) Phase {
	now := EndOfDay(today)

	if d.Start != nil && now.Before(*d.Start) {
		return PhaseUpcoming
	}
	if d.Event != nil && now.After(EndOfDay(*d.Event)) {
		return PhaseClosed
	}
	if d.Event == nil && d.Deadline != nil && now.After(EndOfDay(*d.Deadline)) {
		return PhaseClosed
	}
	if d.Start != nil && !now.Before(*d.Start) {
		switch {
		case d.Deadline != nil && !now.After(EndOfDay(*d.Deadline)):
			return PhaseActive
		case d.Deadline == nil && d.Event != nil && !now.After(EndOfDay(*d.Event)):
			return PhaseActive
		case d.Deadline == nil && d.Event == nil:
			return PhaseActive
		}
	}
	// Insufficient or contradictory dates fail open.
	return PhaseActive
}
