package triprequest

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"tripmanager/auth"
)

var (
	// ErrForbidden signals the acting principal does not own the request.
	ErrForbidden = errors.New("triprequest: forbidden")
	// ErrInvalidInput signals malformed request input.
	ErrInvalidInput = errors.New("triprequest: invalid input")
)

// Notifier receives lifecycle events for best-effort email delivery.
// Implementations must never block or fail the calling operation.
type Notifier interface {
	TripRequestCreated(req TripRequest, owner UserSummary)
	TripConfirmed(req TripRequest, owner UserSummary)
}

// Service exposes the trip-request operations of the portal.
type Service struct {
	repo     Repository
	notifier Notifier
	logger   *zap.Logger
}

func NewService(repo Repository, notifier Notifier, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, notifier: notifier, logger: logger}
}

// Create validates customer input and stores a new PENDING request owned
// by the principal. The admin team is notified best-effort.
func (s *Service) Create(ctx context.Context, principal auth.Principal, params CreateParams) (TripRequest, error) {
	if err := validateCreate(params); err != nil {
		return TripRequest{}, err
	}

	language := strings.TrimSpace(params.Language)
	if language == "" {
		language = "English"
	}

	req := TripRequest{
		UserID:             principal.UserID,
		CompanyID:          principal.CompanyID,
		ServiceType:        params.ServiceType,
		ArrivalAirport:     params.ArrivalAirport,
		DestinationAddress: params.DestinationAddress,
		PickupAddress:      params.PickupAddress,
		DepartureAirport:   params.DepartureAirport,
		Language:           language,
		FirstName:          strings.TrimSpace(params.FirstName),
		LastName:           strings.TrimSpace(params.LastName),
		Phone:              strings.TrimSpace(params.Phone),
		NumberOfAdults:     params.NumberOfAdults,
		AreThereChildren:   params.AreThereChildren,
		NumberOfChildren:   params.NumberOfChildren,
		AgeOfChildren:      params.AgeOfChildren,
		NumberOfChildSeats: params.NumberOfChildSeats,
		AdditionalInfo:     params.AdditionalInfo,
		Status:             StatusPending,
	}

	created, err := s.repo.Create(ctx, req)
	if err != nil {
		return TripRequest{}, err
	}

	if s.notifier != nil {
		owner, err := s.repo.OwnerSummary(ctx, created.UserID)
		if err != nil {
			s.logger.Warn("owner lookup for notification failed",
				zap.String("trip_request_id", created.ID), zap.Error(err))
		} else {
			s.notifier.TripRequestCreated(created, owner)
		}
	}

	return created, nil
}

// ListMine returns the principal's own requests.
func (s *Service) ListMine(ctx context.Context, principal auth.Principal, status Status, limit int, cursor string) (Page, error) {
	if status != "" && !IsValidStatus(status) {
		return Page{}, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
	}
	return s.repo.List(ctx, Filters{
		OwnerID: principal.UserID,
		Status:  status,
		Limit:   limit,
		Cursor:  cursor,
	}, false)
}

// GetByID returns a single request; customers can only see their own.
func (s *Service) GetByID(ctx context.Context, principal auth.Principal, id string) (TripRequest, error) {
	req, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return TripRequest{}, err
	}
	if req.UserID != principal.UserID {
		return TripRequest{}, ErrForbidden
	}
	return req, nil
}

// ListAll returns requests across the admin's tenant, with owner summaries.
// SUPER_ADMIN sees every tenant.
func (s *Service) ListAll(ctx context.Context, principal auth.Principal, status Status, limit int, cursor string) (Page, error) {
	if !principal.IsAdmin() {
		return Page{}, ErrForbidden
	}
	if status != "" && !IsValidStatus(status) {
		return Page{}, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
	}

	filters := Filters{Status: status, Limit: limit, Cursor: cursor}
	if principal.Role == auth.RoleAdmin && principal.CompanyID != nil {
		filters.CompanyID = *principal.CompanyID
	}
	return s.repo.List(ctx, filters, true)
}

// GetByIDAdmin returns a single request without ownership restrictions.
func (s *Service) GetByIDAdmin(ctx context.Context, principal auth.Principal, id string) (TripRequest, error) {
	if !principal.IsAdmin() {
		return TripRequest{}, ErrForbidden
	}
	return s.repo.GetByID(ctx, id)
}

// UpdateStatus is the unrestricted administrative override: any status may
// be set from any other.
func (s *Service) UpdateStatus(ctx context.Context, principal auth.Principal, id string, status Status) (TripRequest, error) {
	if !principal.IsAdmin() {
		return TripRequest{}, ErrForbidden
	}
	if !IsValidStatus(status) {
		return TripRequest{}, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
	}
	return s.repo.UpdateStatus(ctx, id, status)
}

// Confirm attaches flight details and marks the request confirmed. Only
// the owning customer may confirm. The admin team is notified best-effort.
func (s *Service) Confirm(ctx context.Context, principal auth.Principal, id string, params ConfirmParams) (TripRequest, error) {
	req, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return TripRequest{}, err
	}
	if req.UserID != principal.UserID {
		return TripRequest{}, ErrForbidden
	}

	confirmed, err := s.repo.Confirm(ctx, id, params)
	if err != nil {
		return TripRequest{}, err
	}

	if s.notifier != nil {
		owner, err := s.repo.OwnerSummary(ctx, confirmed.UserID)
		if err != nil {
			s.logger.Warn("owner lookup for notification failed",
				zap.String("trip_request_id", confirmed.ID), zap.Error(err))
		} else {
			s.notifier.TripConfirmed(confirmed, owner)
		}
	}

	return confirmed, nil
}

func validateCreate(params CreateParams) error {
	switch params.ServiceType {
	case ServiceBoth, ServiceArrival, ServiceDeparture:
	default:
		return fmt.Errorf("%w: unknown service type %q", ErrInvalidInput, params.ServiceType)
	}

	if params.ServiceType.HasArrival() {
		if isBlank(params.ArrivalAirport) {
			return fmt.Errorf("%w: arrival airport is required", ErrInvalidInput)
		}
		if isBlank(params.DestinationAddress) {
			return fmt.Errorf("%w: destination address is required", ErrInvalidInput)
		}
	}
	if params.ServiceType.HasDeparture() {
		if isBlank(params.PickupAddress) {
			return fmt.Errorf("%w: pickup address is required", ErrInvalidInput)
		}
		if isBlank(params.DepartureAirport) {
			return fmt.Errorf("%w: departure airport is required", ErrInvalidInput)
		}
	}

	if strings.TrimSpace(params.FirstName) == "" {
		return fmt.Errorf("%w: first name is required", ErrInvalidInput)
	}
	if strings.TrimSpace(params.LastName) == "" {
		return fmt.Errorf("%w: last name is required", ErrInvalidInput)
	}
	if strings.TrimSpace(params.Phone) == "" {
		return fmt.Errorf("%w: phone number is required", ErrInvalidInput)
	}
	if params.NumberOfAdults < 1 {
		return fmt.Errorf("%w: at least 1 adult required", ErrInvalidInput)
	}
	if params.NumberOfChildren != nil && *params.NumberOfChildren < 0 {
		return fmt.Errorf("%w: number of children cannot be negative", ErrInvalidInput)
	}
	if params.NumberOfChildSeats != nil && *params.NumberOfChildSeats < 0 {
		return fmt.Errorf("%w: number of child seats cannot be negative", ErrInvalidInput)
	}
	return nil
}

func isBlank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}
