package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Lixing-Zhang/restaurant-app/backend/internal/models"
	"github.com/google/uuid"
)

// ReservationSelector tracks which table the user picked and the reservation
// form they are filling in. Base table statuses belong to the TableSource and
// are never changed here; the selection is held as a single table id.
type ReservationSelector struct {
	mu sync.Mutex

	tables     []models.Table
	selectedID string
	form       models.ReservationForm
	submitting bool

	source        TableSource
	submitter     ReservationSubmitter
	submitTimeout time.Duration
	newID         func() string
	now           func() time.Time
	log           *slog.Logger
}

// ReservationOption customizes a ReservationSelector
type ReservationOption func(*ReservationSelector)

// WithReservationLogger sets the logger used for selector transitions
func WithReservationLogger(log *slog.Logger) ReservationOption {
	return func(s *ReservationSelector) {
		if log != nil {
			s.log = log
		}
	}
}

// WithSubmitTimeout bounds how long Submit waits for the reservation service
func WithSubmitTimeout(d time.Duration) ReservationOption {
	return func(s *ReservationSelector) {
		s.submitTimeout = d
	}
}

// WithReservationIDGenerator replaces the uuid reservation id generator
func WithReservationIDGenerator(fn func() string) ReservationOption {
	return func(s *ReservationSelector) {
		s.newID = fn
	}
}

// WithReservationClock replaces time.Now for snapshot timestamps
func WithReservationClock(fn func() time.Time) ReservationOption {
	return func(s *ReservationSelector) {
		s.now = fn
	}
}

// NewReservationSelector creates a selector with no tables loaded; call Refresh
// to read the floor plan from source.
func NewReservationSelector(source TableSource, submitter ReservationSubmitter, opts ...ReservationOption) *ReservationSelector {
	s := &ReservationSelector{
		source:    source,
		submitter: submitter,
		newID:     func() string { return uuid.New().String() },
		now:       time.Now,
		log:       slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Refresh reloads base statuses from the table source. If the selected table
// has disappeared or is no longer available, the selection is cleared. While a
// submission is in flight the selection is kept; the next Refresh after it
// fails re-checks it.
func (s *ReservationSelector) Refresh(ctx context.Context) error {
	tables, err := s.source.ListTables(ctx)
	if err != nil {
		return fmt.Errorf("failed to load tables: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.tables = tables
	if s.selectedID != "" && !s.submitting {
		if t, ok := s.findLocked(s.selectedID); !ok || t.Status != models.TableAvailable {
			s.log.Info("selected table no longer available", "table_id", s.selectedID)
			s.selectedID = ""
		}
	}
	return nil
}

// Tables returns the floor plan with the selection overlay applied
func (s *ReservationSelector) Tables() []models.TableView {
	s.mu.Lock()
	defer s.mu.Unlock()

	views := make([]models.TableView, len(s.tables))
	for i, t := range s.tables {
		views[i] = models.TableView{Table: t, Selected: t.ID == s.selectedID}
	}
	return views
}

// SelectTable marks an available table as the chosen one, replacing any
// previous choice. Reserved and occupied tables are rejected with
// ErrTableUnavailable and nothing changes. Reselecting the current table is a no-op.
func (s *ReservationSelector) SelectTable(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.submitting {
		return ErrSubmissionInProgress
	}

	t, ok := s.findLocked(id)
	if !ok {
		return ErrTableNotFound
	}
	if t.Status != models.TableAvailable {
		return ErrTableUnavailable
	}
	if s.selectedID == id {
		return nil
	}

	s.selectedID = id
	s.log.Debug("table selected", "table_id", id, "seats", t.Seats)
	return nil
}

// ClearSelection drops the current table choice, if any
func (s *ReservationSelector) ClearSelection() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.submitting {
		return ErrSubmissionInProgress
	}
	s.selectedID = ""
	return nil
}

// SelectedTableID returns the chosen table id
func (s *ReservationSelector) SelectedTableID() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectedID, s.selectedID != ""
}

// UpdateField stores the raw value of one form input. Values are only
// validated at submission.
func (s *ReservationSelector) UpdateField(field models.ReservationField, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.submitting {
		return ErrSubmissionInProgress
	}

	form, err := s.form.Set(field, value)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	s.form = form
	return nil
}

// Form returns the current form contents
func (s *ReservationSelector) Form() models.ReservationForm {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.form
}

// CanSubmit reports whether a table is selected and every field is filled in
func (s *ReservationSelector) CanSubmit() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.validateLocked()
	return err == nil
}

// Submitting reports whether a reservation is waiting on the reservation service
func (s *ReservationSelector) Submitting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submitting
}

// Submit builds the reservation request and hands it to the reservation
// service. On acknowledgement the form and selection are reset; on failure,
// timeout or cancellation both are kept so the user can retry.
func (s *ReservationSelector) Submit(ctx context.Context) (*models.ReservationRequest, error) {
	s.mu.Lock()
	if s.submitting {
		s.mu.Unlock()
		return nil, ErrSubmissionInProgress
	}
	partySize, err := s.validateLocked()
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	req := models.ReservationRequest{
		ID:           s.newID(),
		TableID:      s.selectedID,
		Date:         strings.TrimSpace(s.form.Date),
		Time:         strings.TrimSpace(s.form.Time),
		PartySize:    partySize,
		ContactName:  strings.TrimSpace(s.form.ContactName),
		ContactPhone: strings.TrimSpace(s.form.ContactPhone),
		CreatedAt:    s.now().UTC(),
	}
	s.submitting = true
	s.mu.Unlock()

	log := s.log.With("reservation_id", req.ID, "table_id", req.TableID)
	log.Debug("reservation submission started", "party_size", req.PartySize)

	err = s.submit(ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.submitting = false

	if err != nil {
		log.Warn("reservation submission failed", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrSubmissionFailed, err)
	}

	s.form = models.ReservationForm{}
	s.selectedID = ""
	log.Info("reservation acknowledged", "date", req.Date, "time", req.Time)

	return &req, nil
}

func (s *ReservationSelector) submit(ctx context.Context, req models.ReservationRequest) error {
	if s.submitter == nil {
		return fmt.Errorf("no reservation submitter configured")
	}
	if s.submitTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.submitTimeout)
		defer cancel()
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.submitter.SubmitReservation(ctx, req)
}

// validateLocked checks the selection and form and returns the parsed party size
func (s *ReservationSelector) validateLocked() (int, error) {
	if s.selectedID == "" {
		return 0, fmt.Errorf("%w: no table selected", ErrIncompleteReservation)
	}
	for _, field := range models.ReservationFields {
		value, _ := s.form.Get(field)
		if strings.TrimSpace(value) == "" {
			return 0, fmt.Errorf("%w: %s is empty", ErrIncompleteReservation, field)
		}
	}

	partySize, err := strconv.Atoi(strings.TrimSpace(s.form.PartySize))
	if err != nil || partySize < 1 {
		return 0, fmt.Errorf("%w: party size must be a positive whole number", ErrIncompleteReservation)
	}
	return partySize, nil
}

func (s *ReservationSelector) findLocked(id string) (models.Table, bool) {
	for _, t := range s.tables {
		if t.ID == id {
			return t, true
		}
	}
	return models.Table{}, false
}
