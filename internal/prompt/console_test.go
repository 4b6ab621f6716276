package prompt

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-vanreport/pkg/kv"
	"github.com/goliatone/go-vanreport/pkg/report"
	"github.com/goliatone/go-vanreport/pkg/templates"
)

// stubDriver answers prompts from scripted values. Selects are scripted by
// option label. An exhausted script behaves like Ctrl+C.
type stubDriver struct {
	selects  []string
	inputs   []string
	confirms []bool
	infos    []string
}

func (d *stubDriver) Input(_ context.Context, cfg InputConfig) (string, error) {
	if len(d.inputs) == 0 {
		return "", ErrAborted
	}
	value := d.inputs[0]
	d.inputs = d.inputs[1:]
	if cfg.Validator != nil {
		if err := cfg.Validator(value); err != nil {
			return "", err
		}
	}
	return value, nil
}

func (d *stubDriver) Confirm(context.Context, ConfirmConfig) (bool, error) {
	if len(d.confirms) == 0 {
		return false, ErrAborted
	}
	value := d.confirms[0]
	d.confirms = d.confirms[1:]
	return value, nil
}

func (d *stubDriver) Select(_ context.Context, cfg SelectConfig) (int, error) {
	if len(d.selects) == 0 {
		return 0, ErrAborted
	}
	label := d.selects[0]
	d.selects = d.selects[1:]
	for i, option := range cfg.Options {
		if option == label {
			return i, nil
		}
	}
	return 0, fmt.Errorf("option %q not offered in %v", label, cfg.Options)
}

func (d *stubDriver) Info(_ context.Context, msg string) error {
	d.infos = append(d.infos, msg)
	return nil
}

func newConsole(t *testing.T, driver *stubDriver, opts ...ConsoleOption) (*Console, *report.Session, *templates.Store) {
	t.Helper()
	store, err := templates.Open(context.Background(), kv.NewMemory())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	prompter := NewPrompter(driver)
	session, err := report.NewSession(store,
		report.WithConfirmer(prompter),
		report.WithAlerter(prompter),
		report.WithInitialState(report.NewState("2026-10-14", nil)),
	)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	console, err := NewConsole(driver, session, store, opts...)
	if err != nil {
		t.Fatalf("new console: %v", err)
	}
	return console, session, store
}

func TestConsoleAddRowAndSaveTemplate(t *testing.T) {
	driver := &stubDriver{
		selects: []string{actionAddRow, actionSaveTemplate, actionQuit},
		inputs:  []string{"VAN-1", "7", "EW-1", "INV-1", "Morning"},
	}
	console, session, store := newConsole(t, driver)

	if err := console.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	rows := session.State().Rows
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	got := rows[0]
	got.ID = ""
	if diff := cmp.Diff(report.Row{Van: "VAN-1", VanOut: "07:00", EWaybill: "EW-1", Invoice: "INV-1"}, got); diff != "" {
		t.Fatalf("row mismatch (-want +got):\n%s", diff)
	}
	vans, ok := store.Load(context.Background(), "Morning")
	if !ok {
		t.Fatalf("expected template saved")
	}
	if diff := cmp.Diff([]string{"VAN-1"}, vans); diff != "" {
		t.Fatalf("vans mismatch (-want +got):\n%s", diff)
	}
}

func TestConsoleLoadTemplateAsksBeforeReplacing(t *testing.T) {
	driver := &stubDriver{
		selects:  []string{actionAddRow, actionLoadTemplate, "Evening", actionQuit},
		inputs:   []string{"VAN-X", "", "", ""},
		confirms: []bool{true},
	}
	console, session, store := newConsole(t, driver)
	if _, err := store.Save(context.Background(), "Evening", []string{"VAN-7", "VAN-8"}); err != nil {
		t.Fatalf("save: %v", err)
	}

	if err := console.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if diff := cmp.Diff([]string{"VAN-7", "VAN-8"}, session.State().Vans()); diff != "" {
		t.Fatalf("vans mismatch (-want +got):\n%s", diff)
	}
	if len(driver.confirms) != 0 {
		t.Fatalf("expected confirmation consumed")
	}
}

func TestConsoleSaveValidationIsAlerted(t *testing.T) {
	driver := &stubDriver{
		selects: []string{actionSaveTemplate, actionQuit},
		inputs:  []string{"Empty"},
	}
	console, _, store := newConsole(t, driver)

	if err := console.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if diff := cmp.Diff([]string{"! " + templates.ErrNoVans.Message}, driver.infos); diff != "" {
		t.Fatalf("infos mismatch (-want +got):\n%s", diff)
	}
	if got := store.List(context.Background()); len(got) != 0 {
		t.Fatalf("expected nothing saved, got %#v", got)
	}
}

func TestConsoleEditAndRemoveRow(t *testing.T) {
	driver := &stubDriver{
		selects: []string{
			actionAddRow,
			actionEditRow, "1. VAN-1", "Van out",
			actionAddRow,
			actionRemoveRow, "2. VAN-2",
			actionQuit,
		},
		inputs: []string{
			"VAN-1", "", "", "",
			"1830",
			"VAN-2", "", "", "",
		},
	}
	console, session, _ := newConsole(t, driver)

	if err := console.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	rows := session.State().Rows
	if len(rows) != 1 || rows[0].Van != "VAN-1" || rows[0].VanOut != "18:30" {
		t.Fatalf("unexpected rows %#v", rows)
	}
}

func TestConsoleSetDateValidates(t *testing.T) {
	driver := &stubDriver{
		selects: []string{actionSetDate, actionSetDate, actionQuit},
		inputs:  []string{"tomorrow", "2026-10-15"},
	}
	console, session, _ := newConsole(t, driver)

	if err := console.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := session.State().Date; got != "2026-10-15" {
		t.Fatalf("expected date updated, got %q", got)
	}
	if len(driver.infos) != 1 || !strings.HasPrefix(driver.infos[0], "! ") {
		t.Fatalf("expected one reported error, got %#v", driver.infos)
	}
}

func TestConsoleExport(t *testing.T) {
	var exported report.State
	driver := &stubDriver{selects: []string{actionExport, actionQuit}}
	console, _, _ := newConsole(t, driver, WithExport(func(_ context.Context, state report.State) (string, error) {
		exported = state
		return "daily-report-2026-10-14.png", nil
	}))

	if err := console.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if exported.Date != "2026-10-14" {
		t.Fatalf("expected export called with session state, got %#v", exported)
	}
	if diff := cmp.Diff([]string{"Exported daily-report-2026-10-14.png"}, driver.infos); diff != "" {
		t.Fatalf("infos mismatch (-want +got):\n%s", diff)
	}
}

func TestConsoleAbortStopsRun(t *testing.T) {
	console, _, _ := newConsole(t, &stubDriver{})
	if err := console.Run(context.Background()); !errors.Is(err, ErrAborted) {
		t.Fatalf("expected ErrAborted, got %v", err)
	}
}

func TestFormatState(t *testing.T) {
	state := report.NewState("2026-10-14", func() string { return "row" })
	state, err := state.Apply(report.ReplaceVans{Vans: []string{"VAN-1"}})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	got := FormatState(state)
	if !strings.HasPrefix(got, "Date: 2026-10-14\n#") || !strings.Contains(got, "1  VAN-1") {
		t.Fatalf("unexpected table:\n%s", got)
	}
}
