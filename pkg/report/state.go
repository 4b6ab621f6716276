package report

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrRowNotFound is returned when an intent targets an unknown row id.
	ErrRowNotFound = errors.New("report: row not found")
	// ErrUnknownField is returned by SetField for a column that does not exist.
	ErrUnknownField = errors.New("report: unknown field")
)

// State is the full working report. It is a value: Apply never mutates the
// receiver.
type State struct {
	Date string `json:"date"`
	Rows []Row  `json:"rows"`

	newID IDFunc
}

// NewState returns an empty report for date. ids may be nil to use NewID.
func NewState(date string, ids IDFunc) State {
	if ids == nil {
		ids = NewID
	}
	return State{Date: strings.TrimSpace(date), newID: ids}
}

// Vans lists the van of every row in table order, including blanks.
func (s State) Vans() []string {
	out := make([]string, 0, len(s.Rows))
	for _, row := range s.Rows {
		out = append(out, row.Van)
	}
	return out
}

// HasContent reports whether replacing the rows would discard user input:
// at least one row has a non-blank field. A table of blank rows has none.
func (s State) HasContent() bool {
	for _, row := range s.Rows {
		if !row.empty() {
			return true
		}
	}
	return false
}

// Row returns the row with id.
func (s State) Row(id string) (Row, bool) {
	for _, row := range s.Rows {
		if row.ID == id {
			return row, true
		}
	}
	return Row{}, false
}

// Apply returns the state that results from intent.
func (s State) Apply(intent Intent) (State, error) {
	if intent == nil {
		return s, errors.New("report: intent is nil")
	}
	next := s.clone()
	if err := intent.apply(&next); err != nil {
		return s, err
	}
	return next, nil
}

func (s State) clone() State {
	next := s
	next.Rows = append([]Row(nil), s.Rows...)
	if next.newID == nil {
		next.newID = NewID
	}
	return next
}

func (s *State) indexOf(id string) (int, error) {
	for i, row := range s.Rows {
		if row.ID == id {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %q", ErrRowNotFound, id)
}
