package templates

import (
	"errors"
	"strings"
)

// DefaultStorageKey is the key the collection is stored under unless
// overridden with WithStorageKey.
const DefaultStorageKey = "vanreport.templates"

// ErrValidation is the parent of every template validation failure.
var ErrValidation = errors.New("templates: invalid template")

var (
	// ErrEmptyName is returned when the template name trims to empty.
	ErrEmptyName = &ValidationError{Field: "name", Message: "template name is required"}
	// ErrNoVans is returned when no non-blank van remains after filtering.
	ErrNoVans = &ValidationError{Field: "vans", Message: "template needs at least one van"}
)

// ValidationError describes a rejected save. It matches ErrValidation with
// errors.Is.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ErrValidation.Error()
	}
	return "templates: " + e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Template is a named, ordered list of van identifiers.
type Template struct {
	Name string   `json:"name"`
	Vans []string `json:"vans"`
}

// Clone returns a deep copy so callers cannot mutate the store's state.
func (t Template) Clone() Template {
	return Template{Name: t.Name, Vans: append([]string(nil), t.Vans...)}
}

// Normalize trims the name and every van, drops blank vans, and validates the
// result.
func Normalize(name string, vans []string) (Template, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Template{}, ErrEmptyName
	}
	cleaned := make([]string, 0, len(vans))
	for _, van := range vans {
		van = strings.TrimSpace(van)
		if van == "" {
			continue
		}
		cleaned = append(cleaned, van)
	}
	if len(cleaned) == 0 {
		return Template{}, ErrNoVans
	}
	return Template{Name: name, Vans: cleaned}, nil
}
