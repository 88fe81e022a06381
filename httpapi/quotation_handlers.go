package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"tripmanager/auth"
	"tripmanager/quotation"
)

// QuotationService is the slice of the quotation service used by the HTTP
// layer.
type QuotationService interface {
	Create(ctx context.Context, principal auth.Principal, params quotation.CreateParams) (quotation.Quotation, error)
	Update(ctx context.Context, principal auth.Principal, id string, params quotation.UpdateParams) (quotation.Quotation, error)
	Send(ctx context.Context, principal auth.Principal, id string) (quotation.Quotation, error)
	Respond(ctx context.Context, principal auth.Principal, id string, decision quotation.Decision) (quotation.Quotation, error)
	Delete(ctx context.Context, principal auth.Principal, id string) error
	GetByID(ctx context.Context, principal auth.Principal, id string) (quotation.Quotation, error)
	QuotationReader
}

type quotationHandler struct {
	service QuotationService
	logger  *zap.Logger
}

type quotationBody struct {
	TripRequestID       string     `json:"trip_request_id"`
	Price               *float64   `json:"price"`
	Currency            *string    `json:"currency"`
	IsPriceEachWay      *bool      `json:"is_price_each_way"`
	AreCarSeatsIncluded *bool      `json:"are_car_seats_included"`
	AdditionalInfo      *string    `json:"additional_info"`
	InternalNotes       *string    `json:"internal_notes"`
	ValidUntil          *time.Time `json:"valid_until"`
}

func (h *quotationHandler) create(w http.ResponseWriter, r *http.Request) {
	principal, _ := principalFrom(r.Context())

	var req quotationBody
	if !decodeBody(w, r, h.logger, &req) {
		return
	}

	params := quotation.CreateParams{
		TripRequestID:  req.TripRequestID,
		AdditionalInfo: req.AdditionalInfo,
		InternalNotes:  req.InternalNotes,
		ValidUntil:     req.ValidUntil,
	}
	if req.Price != nil {
		params.Price = *req.Price
	}
	if req.Currency != nil {
		params.Currency = *req.Currency
	}
	if req.IsPriceEachWay != nil {
		params.IsPriceEachWay = *req.IsPriceEachWay
	}
	if req.AreCarSeatsIncluded != nil {
		params.AreCarSeatsIncluded = *req.AreCarSeatsIncluded
	}

	created, err := h.service.Create(r.Context(), principal, params)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.logger.Info("quotation created",
		zap.String("quotation_id", created.ID), zap.String("trip_request_id", created.TripRequestID))
	writeJSON(w, h.logger, http.StatusCreated, toQuotationView(created, true))
}

func (h *quotationHandler) update(w http.ResponseWriter, r *http.Request) {
	principal, _ := principalFrom(r.Context())

	var req quotationBody
	if !decodeBody(w, r, h.logger, &req) {
		return
	}

	updated, err := h.service.Update(r.Context(), principal, chi.URLParam(r, "id"), quotation.UpdateParams{
		Price:               req.Price,
		Currency:            req.Currency,
		IsPriceEachWay:      req.IsPriceEachWay,
		AreCarSeatsIncluded: req.AreCarSeatsIncluded,
		AdditionalInfo:      req.AdditionalInfo,
		InternalNotes:       req.InternalNotes,
		ValidUntil:          req.ValidUntil,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, toQuotationView(updated, true))
}

func (h *quotationHandler) send(w http.ResponseWriter, r *http.Request) {
	principal, _ := principalFrom(r.Context())

	sent, err := h.service.Send(r.Context(), principal, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.logger.Info("quotation sent", zap.String("quotation_id", sent.ID))
	writeJSON(w, h.logger, http.StatusOK, toQuotationView(sent, true))
}

func (h *quotationHandler) respond(w http.ResponseWriter, r *http.Request) {
	principal, _ := principalFrom(r.Context())

	var req struct {
		Decision string `json:"decision"`
	}
	if !decodeBody(w, r, h.logger, &req) {
		return
	}

	responded, err := h.service.Respond(r.Context(), principal, chi.URLParam(r, "id"), quotation.Decision(req.Decision))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.logger.Info("quotation responded",
		zap.String("quotation_id", responded.ID), zap.String("status", string(responded.Status)))
	writeJSON(w, h.logger, http.StatusOK, toQuotationView(responded, false))
}

func (h *quotationHandler) delete(w http.ResponseWriter, r *http.Request) {
	principal, _ := principalFrom(r.Context())

	if err := h.service.Delete(r.Context(), principal, chi.URLParam(r, "id")); err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, h.logger, http.StatusNoContent, nil)
}

func (h *quotationHandler) getByID(w http.ResponseWriter, r *http.Request) {
	principal, _ := principalFrom(r.Context())

	q, err := h.service.GetByID(r.Context(), principal, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, toQuotationView(q, true))
}
