package quotation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"tripmanager/auth"
	"tripmanager/triprequest"
)

var (
	// ErrForbidden signals the acting principal does not own the linked
	// trip request.
	ErrForbidden = errors.New("quotation: forbidden")
	// ErrExpired signals the quotation is past its validity deadline.
	ErrExpired = errors.New("quotation: expired")
	// ErrInvalidInput signals malformed quotation input.
	ErrInvalidInput = errors.New("quotation: invalid input")
)

// TxBeginner abstracts pgxpool.Pool for testability.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Notifier receives lifecycle events for best-effort email delivery after
// the state-changing transaction has committed. Implementations must never
// block or fail the calling operation.
type Notifier interface {
	QuotationSent(q Quotation, trip TripSummary)
	QuotationResponded(q Quotation, trip TripSummary, accepted bool)
}

// Service enforces the quotation lifecycle and keeps the linked trip
// request in sync transactionally.
type Service struct {
	pool     TxBeginner
	repo     Repository
	notifier Notifier
	logger   *zap.Logger
	now      func() time.Time
}

func NewService(pool TxBeginner, repo Repository, notifier Notifier, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		pool:     pool,
		repo:     repo,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Create stores a new DRAFT quotation against an existing trip request.
// No trip request transition happens at this point.
func (s *Service) Create(ctx context.Context, principal auth.Principal, params CreateParams) (Quotation, error) {
	if !principal.IsAdmin() {
		return Quotation{}, ErrForbidden
	}
	if params.TripRequestID == "" {
		return Quotation{}, fmt.Errorf("%w: trip request id required", ErrInvalidInput)
	}
	if params.Price <= 0 {
		return Quotation{}, fmt.Errorf("%w: price must be greater than 0", ErrInvalidInput)
	}
	if params.Currency == "" {
		params.Currency = "USD"
	}

	return s.repo.Create(ctx, params, principal.UserID)
}

// Update edits a quotation while it is still a draft.
func (s *Service) Update(ctx context.Context, principal auth.Principal, id string, params UpdateParams) (Quotation, error) {
	if !principal.IsAdmin() {
		return Quotation{}, ErrForbidden
	}
	if params.Price != nil && *params.Price <= 0 {
		return Quotation{}, fmt.Errorf("%w: price must be greater than 0", ErrInvalidInput)
	}
	return s.repo.UpdateDraft(ctx, id, params)
}

// Send moves a DRAFT quotation to SENT and the linked trip request to
// QUOTED in one transaction, then notifies the customer best-effort.
func (s *Service) Send(ctx context.Context, principal auth.Principal, id string) (Quotation, error) {
	if !principal.IsAdmin() {
		return Quotation{}, ErrForbidden
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return Quotation{}, fmt.Errorf("quotation: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	locked, err := s.repo.GetForUpdate(ctx, tx, id)
	if err != nil {
		return Quotation{}, err
	}
	if locked.Quotation.Status != StatusDraft {
		return Quotation{}, ErrInvalidState
	}

	sent, err := s.repo.MarkSent(ctx, tx, id, s.now())
	if err != nil {
		return Quotation{}, err
	}
	if err := s.repo.SetTripRequestStatus(ctx, tx, locked.Trip.ID, string(triprequest.StatusQuoted)); err != nil {
		return Quotation{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Quotation{}, fmt.Errorf("quotation: commit send: %w", err)
	}

	if s.notifier != nil {
		s.notifier.QuotationSent(sent, locked.Trip)
	}

	return sent, nil
}

// Respond applies the customer's decision to a SENT quotation and syncs
// the linked trip request in one transaction, then notifies the admin
// team best-effort. Only the owner of the trip request may respond, and
// acceptance is refused past the validity deadline.
func (s *Service) Respond(ctx context.Context, principal auth.Principal, id string, decision Decision) (Quotation, error) {
	if decision != DecisionAccept && decision != DecisionReject {
		return Quotation{}, fmt.Errorf("%w: unknown decision %q", ErrInvalidInput, decision)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return Quotation{}, fmt.Errorf("quotation: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	locked, err := s.repo.GetForUpdate(ctx, tx, id)
	if err != nil {
		return Quotation{}, err
	}
	if locked.Trip.OwnerID != principal.UserID {
		return Quotation{}, ErrForbidden
	}
	if locked.Quotation.Status != StatusSent {
		return Quotation{}, ErrInvalidState
	}
	if decision == DecisionAccept && locked.Quotation.ValidUntil != nil && locked.Quotation.ValidUntil.Before(s.now()) {
		return Quotation{}, ErrExpired
	}

	status := StatusAccepted
	tripStatus := triprequest.StatusAccepted
	if decision == DecisionReject {
		status = StatusRejected
		tripStatus = triprequest.StatusRejected
	}

	responded, err := s.repo.MarkResponded(ctx, tx, id, status, s.now())
	if err != nil {
		return Quotation{}, err
	}
	if err := s.repo.SetTripRequestStatus(ctx, tx, locked.Trip.ID, string(tripStatus)); err != nil {
		return Quotation{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Quotation{}, fmt.Errorf("quotation: commit respond: %w", err)
	}

	if s.notifier != nil {
		s.notifier.QuotationResponded(responded, locked.Trip, decision == DecisionAccept)
	}

	return responded, nil
}

// Delete hard-deletes a quotation while it is still a draft.
func (s *Service) Delete(ctx context.Context, principal auth.Principal, id string) error {
	if !principal.IsAdmin() {
		return ErrForbidden
	}
	return s.repo.DeleteDraft(ctx, id)
}

// GetByID returns a single quotation for admin inspection.
func (s *Service) GetByID(ctx context.Context, principal auth.Principal, id string) (Quotation, error) {
	if !principal.IsAdmin() {
		return Quotation{}, ErrForbidden
	}
	return s.repo.GetByID(ctx, id)
}

// ListForTripRequest returns quotations for a request, most recent first.
// Drafts are only visible to admins.
func (s *Service) ListForTripRequest(ctx context.Context, principal auth.Principal, tripRequestID string) ([]Quotation, error) {
	return s.repo.ListForTripRequest(ctx, tripRequestID, principal.IsAdmin())
}
