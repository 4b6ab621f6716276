package report

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/goliatone/go-vanreport/pkg/templates"
)

// TemplateStore is the subset of templates.Store a Session needs.
type TemplateStore interface {
	Save(ctx context.Context, name string, vans []string) (templates.Template, error)
	Load(ctx context.Context, name string) ([]string, bool)
}

// Confirmer asks the user to approve a destructive action.
type Confirmer interface {
	Confirm(ctx context.Context, message string) (bool, error)
}

// Alerter shows a blocking message to the user.
type Alerter interface {
	Alert(ctx context.Context, message string) error
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, message string) (bool, error)

func (fn ConfirmFunc) Confirm(ctx context.Context, message string) (bool, error) {
	return fn(ctx, message)
}

// AlertFunc adapts a function to Alerter.
type AlertFunc func(ctx context.Context, message string) error

func (fn AlertFunc) Alert(ctx context.Context, message string) error {
	return fn(ctx, message)
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithConfirmer sets the hook used before a template load discards rows.
// Without one, loads over a non-empty table are declined.
func WithConfirmer(c Confirmer) SessionOption {
	return func(s *Session) { s.confirm = c }
}

// WithAlerter sets the hook used to surface validation failures.
func WithAlerter(a Alerter) SessionOption {
	return func(s *Session) { s.alert = a }
}

// WithSessionLogger attaches a logger.
func WithSessionLogger(logger *zap.Logger) SessionOption {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithInitialState seeds the session with an existing state.
func WithInitialState(state State) SessionOption {
	return func(s *Session) { s.state = state.clone() }
}

// Session owns the working State and routes template operations through the
// store and the user-facing hooks.
type Session struct {
	store   TemplateStore
	confirm Confirmer
	alert   Alerter
	logger  *zap.Logger

	mu    sync.Mutex
	state State
}

// NewSession constructs a Session over store.
func NewSession(store TemplateStore, opts ...SessionOption) (*Session, error) {
	if store == nil {
		return nil, errors.New("report: template store is required")
	}
	s := &Session{
		store:  store,
		logger: zap.NewNop(),
		state:  NewState("", nil),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(s)
	}
	return s, nil
}

// State returns a snapshot of the working state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Dispatch applies intent to the working state.
func (s *Session) Dispatch(intent Intent) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := s.state.Apply(intent)
	if err != nil {
		return s.state.clone(), err
	}
	s.state = next
	return next.clone(), nil
}

// SaveTemplate stores the current rows' vans under name. Validation failures
// are shown through the Alerter and returned.
func (s *Session) SaveTemplate(ctx context.Context, name string) (templates.Template, error) {
	vans := s.State().Vans()
	tpl, err := s.store.Save(ctx, name, vans)
	if err != nil {
		if errors.Is(err, templates.ErrValidation) {
			s.raise(ctx, err)
		}
		return templates.Template{}, err
	}
	return tpl, nil
}

// LoadTemplate replaces the working rows with the vans stored under name. It
// reports false when nothing changed: the template is missing or the user
// declined to discard the current rows.
//
// The table counts as non-empty, and confirmation is asked, only when some
// row has a non-blank field (State.HasContent). Rows that are all blank hold
// no input and are replaced without asking.
func (s *Session) LoadTemplate(ctx context.Context, name string) (bool, error) {
	vans, ok := s.store.Load(ctx, name)
	if !ok {
		s.logger.Debug("template not found", zap.String("name", name))
		return false, nil
	}

	if s.State().HasContent() {
		if s.confirm == nil {
			return false, nil
		}
		approved, err := s.confirm.Confirm(ctx, fmt.Sprintf("Replace the current table with template %q?", name))
		if err != nil {
			return false, err
		}
		if !approved {
			return false, nil
		}
	}

	if _, err := s.Dispatch(ReplaceVans{Vans: vans}); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Session) raise(ctx context.Context, err error) {
	if s.alert == nil {
		return
	}
	message := err.Error()
	var verr *templates.ValidationError
	if errors.As(err, &verr) {
		message = verr.Message
	}
	if alertErr := s.alert.Alert(ctx, message); alertErr != nil {
		s.logger.Warn("alert failed", zap.Error(alertErr))
	}
}
