package prompt

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-vanreport/pkg/report"
	"github.com/goliatone/go-vanreport/pkg/templates"
)

// Prompter adapts a Driver to report.Confirmer and report.Alerter.
type Prompter struct {
	driver Driver
}

var (
	_ report.Confirmer = Prompter{}
	_ report.Alerter   = Prompter{}
)

// NewPrompter wraps driver.
func NewPrompter(driver Driver) Prompter {
	return Prompter{driver: driver}
}

func (p Prompter) Confirm(ctx context.Context, message string) (bool, error) {
	return p.driver.Confirm(ctx, ConfirmConfig{Message: message})
}

func (p Prompter) Alert(ctx context.Context, message string) error {
	return p.driver.Info(ctx, "! "+message)
}

// TemplateLister lists saved templates for the load menu.
type TemplateLister interface {
	List(ctx context.Context) []templates.Template
}

// ExportFunc exports the current state. The console reports its error and
// keeps running.
type ExportFunc func(ctx context.Context, state report.State) (string, error)

// ConsoleOption configures a Console.
type ConsoleOption func(*Console)

// WithExport enables the export action.
func WithExport(fn ExportFunc) ConsoleOption {
	return func(c *Console) { c.export = fn }
}

// WithConsoleLogger sets the logger.
func WithConsoleLogger(logger *zap.Logger) ConsoleOption {
	return func(c *Console) {
		if logger != nil {
			c.logger = logger
		}
	}
}

const (
	actionAddRow       = "Add row"
	actionEditRow      = "Edit row"
	actionRemoveRow    = "Remove row"
	actionSaveTemplate = "Save template"
	actionLoadTemplate = "Load template"
	actionSetDate      = "Set date"
	actionShow         = "Show report"
	actionExport       = "Export image"
	actionQuit         = "Quit"
)

var fieldLabels = []struct {
	field report.Field
	label string
}{
	{report.FieldVan, "Van"},
	{report.FieldVanOut, "Van out"},
	{report.FieldEWaybill, "E-waybill"},
	{report.FieldInvoice, "Invoice"},
}

// Console runs the menu loop over a report session.
type Console struct {
	driver  Driver
	session *report.Session
	saved   TemplateLister
	export  ExportFunc
	logger  *zap.Logger
}

// NewConsole constructs a Console. saved may be nil, which hides the load
// menu entries.
func NewConsole(driver Driver, session *report.Session, saved TemplateLister, opts ...ConsoleOption) (*Console, error) {
	if driver == nil {
		return nil, errors.New("prompt: driver is required")
	}
	if session == nil {
		return nil, errors.New("prompt: session is required")
	}
	c := &Console{
		driver:  driver,
		session: session,
		saved:   saved,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(c)
	}
	return c, nil
}

// Run shows the menu until the user quits. ErrAborted is returned on an
// interrupt.
func (c *Console) Run(ctx context.Context) error {
	for {
		actions := c.actions()
		idx, err := c.driver.Select(ctx, SelectConfig{Message: "What next?", Options: actions})
		if err != nil {
			return err
		}
		if idx < 0 || idx >= len(actions) {
			continue
		}
		action := actions[idx]
		if action == actionQuit {
			return nil
		}
		if err := c.do(ctx, action); err != nil {
			if errors.Is(err, ErrAborted) || ctx.Err() != nil {
				return err
			}
			c.logger.Warn("console action failed", zap.String("action", action), zap.Error(err))
			if infoErr := c.driver.Info(ctx, "! "+err.Error()); infoErr != nil {
				return infoErr
			}
		}
	}
}

func (c *Console) actions() []string {
	out := []string{actionAddRow}
	if len(c.session.State().Rows) > 0 {
		out = append(out, actionEditRow, actionRemoveRow)
	}
	out = append(out, actionSaveTemplate)
	if c.saved != nil {
		out = append(out, actionLoadTemplate)
	}
	out = append(out, actionSetDate, actionShow)
	if c.export != nil {
		out = append(out, actionExport)
	}
	return append(out, actionQuit)
}

func (c *Console) do(ctx context.Context, action string) error {
	switch action {
	case actionAddRow:
		return c.addRow(ctx)
	case actionEditRow:
		return c.editRow(ctx)
	case actionRemoveRow:
		id, ok, err := c.pickRow(ctx, "Remove which row?")
		if err != nil || !ok {
			return err
		}
		_, err = c.session.Dispatch(report.RemoveRow{ID: id})
		return err
	case actionSaveTemplate:
		return c.saveTemplate(ctx)
	case actionLoadTemplate:
		return c.loadTemplate(ctx)
	case actionSetDate:
		return c.setDate(ctx)
	case actionShow:
		return c.driver.Info(ctx, FormatState(c.session.State()))
	case actionExport:
		location, err := c.export(ctx, c.session.State())
		if err != nil {
			return err
		}
		return c.driver.Info(ctx, "Exported "+location)
	}
	return nil
}

func (c *Console) addRow(ctx context.Context) error {
	state, err := c.session.Dispatch(report.AddRow{})
	if err != nil {
		return err
	}
	id := state.Rows[len(state.Rows)-1].ID
	for _, fl := range fieldLabels {
		if err := c.editField(ctx, id, fl.field, fl.label, ""); err != nil {
			return err
		}
	}
	return nil
}

func (c *Console) editRow(ctx context.Context) error {
	id, ok, err := c.pickRow(ctx, "Edit which row?")
	if err != nil || !ok {
		return err
	}
	labels := make([]string, len(fieldLabels))
	for i, fl := range fieldLabels {
		labels[i] = fl.label
	}
	idx, err := c.driver.Select(ctx, SelectConfig{Message: "Which field?", Options: labels})
	if err != nil {
		return err
	}
	if idx < 0 || idx >= len(fieldLabels) {
		return nil
	}
	row, _ := c.session.State().Row(id)
	fl := fieldLabels[idx]
	return c.editField(ctx, id, fl.field, fl.label, fieldValue(row, fl.field))
}

func (c *Console) editField(ctx context.Context, id string, field report.Field, label, current string) error {
	value, err := c.driver.Input(ctx, InputConfig{Message: label, Default: current})
	if err != nil {
		return err
	}
	if _, err := c.session.Dispatch(report.SetField{ID: id, Field: field, Value: value}); err != nil {
		return err
	}
	if field == report.FieldVanOut {
		_, err = c.session.Dispatch(report.BlurVanOut{ID: id})
	}
	return err
}

func (c *Console) pickRow(ctx context.Context, message string) (string, bool, error) {
	rows := c.session.State().Rows
	if len(rows) == 0 {
		return "", false, nil
	}
	options := make([]string, len(rows))
	for i, row := range rows {
		van := row.Van
		if van == "" {
			van = "(blank)"
		}
		options[i] = fmt.Sprintf("%d. %s", i+1, van)
	}
	idx, err := c.driver.Select(ctx, SelectConfig{Message: message, Options: options})
	if err != nil {
		return "", false, err
	}
	if idx < 0 || idx >= len(rows) {
		return "", false, nil
	}
	return rows[idx].ID, true, nil
}

func (c *Console) saveTemplate(ctx context.Context) error {
	name, err := c.driver.Input(ctx, InputConfig{Message: "Template name"})
	if err != nil {
		return err
	}
	tpl, err := c.session.SaveTemplate(ctx, name)
	if err != nil {
		if errors.Is(err, templates.ErrValidation) {
			// already surfaced through the alerter
			return nil
		}
		return err
	}
	return c.driver.Info(ctx, fmt.Sprintf("Saved %q with %d vans", tpl.Name, len(tpl.Vans)))
}

func (c *Console) loadTemplate(ctx context.Context) error {
	saved := c.saved.List(ctx)
	if len(saved) == 0 {
		return c.driver.Info(ctx, "No saved templates")
	}
	names := make([]string, len(saved))
	for i, tpl := range saved {
		names[i] = tpl.Name
	}
	idx, err := c.driver.Select(ctx, SelectConfig{Message: "Load which template?", Options: names})
	if err != nil {
		return err
	}
	if idx < 0 || idx >= len(names) {
		return nil
	}
	loaded, err := c.session.LoadTemplate(ctx, names[idx])
	if err != nil || !loaded {
		return err
	}
	return c.driver.Info(ctx, fmt.Sprintf("Loaded %q", names[idx]))
}

func (c *Console) setDate(ctx context.Context) error {
	value, err := c.driver.Input(ctx, InputConfig{
		Message: "Report date (YYYY-MM-DD)",
		Default: c.session.State().Date,
		Validator: func(s string) error {
			_, err := time.Parse(time.DateOnly, strings.TrimSpace(s))
			return err
		},
	})
	if err != nil {
		return err
	}
	_, err = c.session.Dispatch(report.SetDate{Date: value})
	return err
}

// FormatState renders state as a plain text table.
func FormatState(state report.State) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Date: %s\n", state.Date)
	tw := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tVan\tVan out\tE-waybill\tInvoice")
	for i, row := range state.Rows {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", i+1, row.Van, row.VanOut, row.EWaybill, row.Invoice)
	}
	_ = tw.Flush()
	return strings.TrimRight(b.String(), "\n")
}

func fieldValue(row report.Row, field report.Field) string {
	switch field {
	case report.FieldVan:
		return row.Van
	case report.FieldVanOut:
		return row.VanOut
	case report.FieldEWaybill:
		return row.EWaybill
	case report.FieldInvoice:
		return row.Invoice
	}
	return ""
}
