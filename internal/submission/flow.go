// Package submission holds the client-side state for entering users: the
// pending form entries, the directory list shown to the user, and the batch
// submit that persists entries one at a time.
package submission

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/userdir/userdir/internal/logging"
	"github.com/userdir/userdir/internal/users"
)

// Status values reported by Flow.Status. Failures are reported as
// StatusErrorPrefix followed by the reason.
const (
	StatusIdle        = "idle"
	StatusSubmitting  = "submitting"
	StatusSuccess     = "success"
	StatusErrorPrefix = "error: "

	incompleteMessage = "all fields must be filled"
)

var (
	// ErrSubmitInProgress is returned by Submit while another submit is running.
	ErrSubmitInProgress = errors.New("submission already in progress")
	// ErrIncompleteEntry is returned when an entry has an empty required field.
	ErrIncompleteEntry = errors.New(incompleteMessage)
	// ErrUnknownEntry is returned by UpdateField for a local id not in the form.
	ErrUnknownEntry = errors.New("unknown entry")
	// ErrUnknownField is returned by UpdateField for an unsupported field name.
	ErrUnknownField = errors.New("unknown field")
)

// API is the subset of the directory API the flow depends on.
type API interface {
	Create(ctx context.Context, candidate users.Candidate) (users.User, error)
	List(ctx context.Context) ([]users.User, error)
}

// Field names an editable entry field.
type Field string

// Editable fields, in display order.
const (
	FieldName  Field = "name"
	FieldPhone Field = "phone"
	FieldEmail Field = "email"
)

// Fields lists the editable fields in display order.
var Fields = []Field{FieldName, FieldPhone, FieldEmail}

// Entry is one pending, not yet persisted, form entry.
type Entry struct {
	LocalID int    `json:"id" yaml:"-"`
	Name    string `json:"name" yaml:"name" validate:"required"`
	Phone   string `json:"phone" yaml:"phone" validate:"required"`
	Email   string `json:"email" yaml:"email" validate:"required"`
}

// Candidate converts the entry to the API request body.
func (e Entry) Candidate() users.Candidate {
	return users.Candidate{Name: e.Name, Phone: e.Phone, Email: e.Email}
}

// Get returns the value of field f.
func (e Entry) Get(f Field) string {
	switch f {
	case FieldName:
		return e.Name
	case FieldPhone:
		return e.Phone
	case FieldEmail:
		return e.Email
	}
	return ""
}

func (e *Entry) set(f Field, value string) error {
	switch f {
	case FieldName:
		e.Name = value
	case FieldPhone:
		e.Phone = value
	case FieldEmail:
		e.Email = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, f)
	}
	return nil
}

// Result describes what a Submit persisted. FailedAt is the index of the entry
// that halted the batch, or -1 when every entry was stored.
type Result struct {
	Created  []users.User
	FailedAt int
}

// Flow is safe for concurrent use. Network calls run without holding the lock.
type Flow struct {
	api      API
	logger   *slog.Logger
	validate *validator.Validate

	mu       sync.Mutex
	entries  []Entry
	users    []users.User
	status   string
	inFlight bool
}

// Option configures a Flow.
type Option func(*Flow)

// WithLogger sets the logger for swallowed refresh and submit failures.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Flow) { f.logger = logger }
}

// New builds a flow with a single blank entry and an empty directory list.
func New(api API, opts ...Option) *Flow {
	f := &Flow{
		api:      api,
		logger:   logging.Discard(),
		validate: validator.New(),
		entries:  []Entry{{LocalID: 1}},
		users:    []users.User{},
		status:   StatusIdle,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Entries returns a copy of the pending entries.
func (f *Flow) Entries() []Entry {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Entry, len(f.entries))
	copy(out, f.entries)
	return out
}

// Users returns a copy of the displayed directory list.
func (f *Flow) Users() []users.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]users.User, len(f.users))
	copy(out, f.users)
	return out
}

// Status returns the current status line.
func (f *Flow) Status() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status
}

// Submitting reports whether a submit is in flight.
func (f *Flow) Submitting() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.inFlight
}

// AddEntry appends a blank entry and returns it.
func (f *Flow) AddEntry() Entry {
	f.mu.Lock()
	defer f.mu.Unlock()
	e := Entry{LocalID: len(f.entries) + 1}
	f.entries = append(f.entries, e)
	return e
}

// UpdateField sets one field of the entry with the given local id.
func (f *Flow) UpdateField(localID int, field Field, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.entries {
		if f.entries[i].LocalID == localID {
			return f.entries[i].set(field, value)
		}
	}
	return fmt.Errorf("%w: %d", ErrUnknownEntry, localID)
}

// Refresh replaces the displayed list with the API's current records. On
// failure the list is left as it was; the error is logged and returned.
func (f *Flow) Refresh(ctx context.Context) error {
	list, err := f.api.List(ctx)
	if err != nil {
		f.logger.Warn("fetch users failed", slog.Any("error", err))
		return err
	}
	f.mu.Lock()
	f.users = list
	f.mu.Unlock()
	return nil
}

// Submit persists the pending entries in order, one create call each. It stops
// at the first entry that is incomplete or rejected. Records created before the
// halt stay stored; there is no rollback. On full success the created records
// are appended to the directory list and the form resets to one blank entry.
func (f *Flow) Submit(ctx context.Context) (Result, error) {
	f.mu.Lock()
	if f.inFlight {
		f.mu.Unlock()
		return Result{FailedAt: -1}, ErrSubmitInProgress
	}
	f.inFlight = true
	f.status = StatusSubmitting
	entries := make([]Entry, len(f.entries))
	copy(entries, f.entries)
	f.mu.Unlock()

	res := Result{Created: []users.User{}, FailedAt: -1}
	for i, e := range entries {
		if err := f.validate.Struct(e); err != nil {
			res.FailedAt = i
			f.finish(StatusErrorPrefix+incompleteMessage, nil)
			return res, ErrIncompleteEntry
		}

		user, err := f.api.Create(ctx, e.Candidate())
		if err != nil {
			res.FailedAt = i
			f.logger.Warn("submit users failed",
				slog.Int("entry", e.LocalID),
				slog.Int("created", len(res.Created)),
				slog.Any("error", err),
			)
			f.finish(StatusErrorPrefix+err.Error(), nil)
			return res, fmt.Errorf("submit entry %d: %w", e.LocalID, err)
		}
		res.Created = append(res.Created, user)
	}

	f.finish(StatusSuccess, res.Created)
	return res, nil
}

// finish records the outcome of a submit. A non-nil created slice marks
// success: records are appended and the form is reset. Records a concurrent
// Refresh already listed are not appended again.
func (f *Flow) finish(status string, created []users.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status = status
	f.inFlight = false
	if created == nil {
		return
	}
	shown := make(map[string]struct{}, len(f.users))
	for _, u := range f.users {
		shown[u.ID] = struct{}{}
	}
	for _, u := range created {
		if _, ok := shown[u.ID]; !ok || u.ID == "" {
			f.users = append(f.users, u)
		}
	}
	f.entries = []Entry{{LocalID: 1}}
}
