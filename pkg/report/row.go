package report

import "github.com/google/uuid"

// Field names a free-text column of a Row.
type Field string

const (
	FieldVan      Field = "van"
	FieldVanOut   Field = "vanOut"
	FieldEWaybill Field = "eWaybill"
	FieldInvoice  Field = "invoice"
)

// Row is one line of the report table.
type Row struct {
	ID       string `json:"id"`
	Van      string `json:"van"`
	VanOut   string `json:"vanOut"`
	EWaybill string `json:"eWaybill"`
	Invoice  string `json:"invoice"`
}

// IDFunc produces opaque row identifiers.
type IDFunc func() string

// NewID returns a random UUID string.
func NewID() string {
	return uuid.NewString()
}

func (r Row) empty() bool {
	return r.Van == "" && r.VanOut == "" && r.EWaybill == "" && r.Invoice == ""
}

func (r Row) with(field Field, value string) (Row, bool) {
	switch field {
	case FieldVan:
		r.Van = value
	case FieldVanOut:
		r.VanOut = value
	case FieldEWaybill:
		r.EWaybill = value
	case FieldInvoice:
		r.Invoice = value
	default:
		return r, false
	}
	return r, true
}
