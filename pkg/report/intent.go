package report

import (
	"fmt"
	"strings"
)

// Intent is an event emitted by the UI layer. The set is closed: only the
// types in this package implement it.
type Intent interface {
	apply(*State) error
}

// AddRow appends an empty row.
type AddRow struct{}

func (AddRow) apply(s *State) error {
	s.Rows = append(s.Rows, Row{ID: s.newID()})
	return nil
}

// RemoveRow deletes the row with ID.
type RemoveRow struct {
	ID string
}

func (in RemoveRow) apply(s *State) error {
	idx, err := s.indexOf(in.ID)
	if err != nil {
		return err
	}
	s.Rows = append(s.Rows[:idx], s.Rows[idx+1:]...)
	return nil
}

// SetField updates one cell. The value is stripped of markup.
type SetField struct {
	ID    string
	Field Field
	Value string
}

func (in SetField) apply(s *State) error {
	idx, err := s.indexOf(in.ID)
	if err != nil {
		return err
	}
	row, ok := s.Rows[idx].with(in.Field, SanitizeText(in.Value))
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, in.Field)
	}
	s.Rows[idx] = row
	return nil
}

// BlurVanOut normalizes the van-out time of a row once editing ends.
type BlurVanOut struct {
	ID string
}

func (in BlurVanOut) apply(s *State) error {
	idx, err := s.indexOf(in.ID)
	if err != nil {
		return err
	}
	s.Rows[idx].VanOut = NormalizeVanOut(s.Rows[idx].VanOut)
	return nil
}

// ReplaceVans swaps the whole table for one fresh row per van, keeping only
// the van and clearing every other column.
type ReplaceVans struct {
	Vans []string
}

func (in ReplaceVans) apply(s *State) error {
	rows := make([]Row, 0, len(in.Vans))
	for _, van := range in.Vans {
		rows = append(rows, Row{ID: s.newID(), Van: van})
	}
	s.Rows = rows
	return nil
}

// ClearRows empties the table.
type ClearRows struct{}

func (ClearRows) apply(s *State) error {
	s.Rows = nil
	return nil
}

// SetDate changes the report date.
type SetDate struct {
	Date string
}

func (in SetDate) apply(s *State) error {
	s.Date = strings.TrimSpace(in.Date)
	return nil
}
