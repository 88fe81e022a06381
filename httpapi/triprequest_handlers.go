package httpapi

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"tripmanager/auth"
	"tripmanager/quotation"
	"tripmanager/triprequest"
)

// TripRequestService is the slice of the trip-request service used by the
// HTTP layer.
type TripRequestService interface {
	Create(ctx context.Context, principal auth.Principal, params triprequest.CreateParams) (triprequest.TripRequest, error)
	ListMine(ctx context.Context, principal auth.Principal, status triprequest.Status, limit int, cursor string) (triprequest.Page, error)
	GetByID(ctx context.Context, principal auth.Principal, id string) (triprequest.TripRequest, error)
	ListAll(ctx context.Context, principal auth.Principal, status triprequest.Status, limit int, cursor string) (triprequest.Page, error)
	GetByIDAdmin(ctx context.Context, principal auth.Principal, id string) (triprequest.TripRequest, error)
	UpdateStatus(ctx context.Context, principal auth.Principal, id string, status triprequest.Status) (triprequest.TripRequest, error)
	Confirm(ctx context.Context, principal auth.Principal, id string, params triprequest.ConfirmParams) (triprequest.TripRequest, error)
}

// QuotationReader lists quotations for the composed detail endpoints.
type QuotationReader interface {
	ListForTripRequest(ctx context.Context, principal auth.Principal, tripRequestID string) ([]quotation.Quotation, error)
}

type tripRequestHandler struct {
	service    TripRequestService
	quotations QuotationReader
	logger     *zap.Logger
}

type createTripRequestBody struct {
	ServiceType        string  `json:"service_type"`
	ArrivalAirport     *string `json:"arrival_airport"`
	DestinationAddress *string `json:"destination_address"`
	PickupAddress      *string `json:"pickup_address"`
	DepartureAirport   *string `json:"departure_airport"`
	Language           string  `json:"language"`
	FirstName          string  `json:"first_name"`
	LastName           string  `json:"last_name"`
	Phone              string  `json:"phone"`
	NumberOfAdults     int     `json:"number_of_adults"`
	AreThereChildren   bool    `json:"are_there_children"`
	NumberOfChildren   *int    `json:"number_of_children"`
	AgeOfChildren      *string `json:"age_of_children"`
	NumberOfChildSeats *int    `json:"number_of_child_seats"`
	AdditionalInfo     *string `json:"additional_info"`
}

func (h *tripRequestHandler) create(w http.ResponseWriter, r *http.Request) {
	principal, _ := principalFrom(r.Context())

	var req createTripRequestBody
	if !decodeBody(w, r, h.logger, &req) {
		return
	}

	created, err := h.service.Create(r.Context(), principal, triprequest.CreateParams{
		ServiceType:        triprequest.ServiceType(req.ServiceType),
		ArrivalAirport:     req.ArrivalAirport,
		DestinationAddress: req.DestinationAddress,
		PickupAddress:      req.PickupAddress,
		DepartureAirport:   req.DepartureAirport,
		Language:           req.Language,
		FirstName:          req.FirstName,
		LastName:           req.LastName,
		Phone:              req.Phone,
		NumberOfAdults:     req.NumberOfAdults,
		AreThereChildren:   req.AreThereChildren,
		NumberOfChildren:   req.NumberOfChildren,
		AgeOfChildren:      req.AgeOfChildren,
		NumberOfChildSeats: req.NumberOfChildSeats,
		AdditionalInfo:     req.AdditionalInfo,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.logger.Info("trip request created",
		zap.String("trip_request_id", created.ID), zap.Int64("order_number", created.OrderNumber))
	writeJSON(w, h.logger, http.StatusCreated, toTripRequestView(created))
}

func (h *tripRequestHandler) listMine(w http.ResponseWriter, r *http.Request) {
	principal, _ := principalFrom(r.Context())
	status, limit, cursor := listParams(r)

	page, err := h.service.ListMine(r.Context(), principal, status, limit, cursor)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, toPageView(page))
}

// getByID returns one of the customer's requests together with its
// visible quotations.
func (h *tripRequestHandler) getByID(w http.ResponseWriter, r *http.Request) {
	principal, _ := principalFrom(r.Context())
	id := chi.URLParam(r, "id")

	req, err := h.service.GetByID(r.Context(), principal, id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	quotations, err := h.quotations.ListForTripRequest(r.Context(), principal, id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, map[string]any{
		"trip_request": toTripRequestView(req),
		"quotations":   toQuotationViews(quotations, principal.IsAdmin()),
	})
}

func (h *tripRequestHandler) listAll(w http.ResponseWriter, r *http.Request) {
	principal, _ := principalFrom(r.Context())
	status, limit, cursor := listParams(r)

	page, err := h.service.ListAll(r.Context(), principal, status, limit, cursor)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, toPageView(page))
}

func (h *tripRequestHandler) getByIDAdmin(w http.ResponseWriter, r *http.Request) {
	principal, _ := principalFrom(r.Context())
	id := chi.URLParam(r, "id")

	req, err := h.service.GetByIDAdmin(r.Context(), principal, id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	quotations, err := h.quotations.ListForTripRequest(r.Context(), principal, id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, map[string]any{
		"trip_request": toTripRequestView(req),
		"quotations":   toQuotationViews(quotations, true),
	})
}

func (h *tripRequestHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	principal, _ := principalFrom(r.Context())

	var req struct {
		Status string `json:"status"`
	}
	if !decodeBody(w, r, h.logger, &req) {
		return
	}

	updated, err := h.service.UpdateStatus(r.Context(), principal, chi.URLParam(r, "id"), triprequest.Status(req.Status))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.logger.Info("trip request status updated",
		zap.String("trip_request_id", updated.ID), zap.String("status", string(updated.Status)))
	writeJSON(w, h.logger, http.StatusOK, toTripRequestView(updated))
}

func (h *tripRequestHandler) confirm(w http.ResponseWriter, r *http.Request) {
	principal, _ := principalFrom(r.Context())

	var req struct {
		ArrivalFlightDate     *time.Time `json:"arrival_flight_date"`
		ArrivalFlightTime     *string    `json:"arrival_flight_time"`
		ArrivalFlightNumber   *string    `json:"arrival_flight_number"`
		DepartureFlightDate   *time.Time `json:"departure_flight_date"`
		DepartureFlightTime   *string    `json:"departure_flight_time"`
		DepartureFlightNumber *string    `json:"departure_flight_number"`
	}
	if !decodeBody(w, r, h.logger, &req) {
		return
	}

	confirmed, err := h.service.Confirm(r.Context(), principal, chi.URLParam(r, "id"), triprequest.ConfirmParams{
		ArrivalFlightDate:     req.ArrivalFlightDate,
		ArrivalFlightTime:     req.ArrivalFlightTime,
		ArrivalFlightNumber:   req.ArrivalFlightNumber,
		DepartureFlightDate:   req.DepartureFlightDate,
		DepartureFlightTime:   req.DepartureFlightTime,
		DepartureFlightNumber: req.DepartureFlightNumber,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, toTripRequestView(confirmed))
}

func listParams(r *http.Request) (triprequest.Status, int, string) {
	q := r.URL.Query()

	limit := 0
	if raw := q.Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			limit = n
		}
	}

	return triprequest.Status(q.Get("status")), limit, q.Get("cursor")
}
