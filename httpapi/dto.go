package httpapi

import (
	"time"

	"tripmanager/auth"
	"tripmanager/company"
	"tripmanager/quotation"
	"tripmanager/triprequest"
)

// JSON views of the domain types. Domain structs carry no JSON tags, so
// the wire shapes live here.

type userView struct {
	ID              string     `json:"id"`
	Email           string     `json:"email"`
	Name            *string    `json:"name"`
	Role            string     `json:"role"`
	CompanyID       *string    `json:"company_id"`
	EmailVerifiedAt *time.Time `json:"email_verified_at"`
	CreatedAt       time.Time  `json:"created_at"`
}

func toUserView(u auth.User) userView {
	return userView{
		ID:              u.ID,
		Email:           u.Email,
		Name:            u.Name,
		Role:            string(u.Role),
		CompanyID:       u.CompanyID,
		EmailVerifiedAt: u.EmailVerifiedAt,
		CreatedAt:       u.CreatedAt,
	}
}

type companyView struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Slug             string    `json:"slug"`
	AdminEmail       *string   `json:"admin_email,omitempty"`
	LogoURL          *string   `json:"logo_url"`
	IsActive         bool      `json:"is_active"`
	CreatedAt        time.Time `json:"created_at"`
	UserCount        int       `json:"user_count,omitempty"`
	TripRequestCount int       `json:"trip_request_count,omitempty"`
}

func toCompanyView(c company.Company) companyView {
	return companyView{
		ID:               c.ID,
		Name:             c.Name,
		Slug:             c.Slug,
		AdminEmail:       c.AdminEmail,
		LogoURL:          c.LogoURL,
		IsActive:         c.IsActive,
		CreatedAt:        c.CreatedAt,
		UserCount:        c.UserCount,
		TripRequestCount: c.TripRequestCount,
	}
}

// publicCompanyView is the slice served to the unauthenticated booking
// page; tenant internals stay hidden.
type publicCompanyView struct {
	Name    string  `json:"name"`
	Slug    string  `json:"slug"`
	LogoURL *string `json:"logo_url"`
}

type memberView struct {
	ID    string  `json:"id"`
	Email string  `json:"email"`
	Name  *string `json:"name"`
	Role  string  `json:"role"`
}

func toMemberViews(members []company.Member) []memberView {
	out := make([]memberView, len(members))
	for i, m := range members {
		out[i] = memberView{ID: m.ID, Email: m.Email, Name: m.Name, Role: m.Role}
	}
	return out
}

type tripRequestView struct {
	ID          string  `json:"id"`
	OrderNumber int64   `json:"order_number"`
	UserID      string  `json:"user_id"`
	CompanyID   *string `json:"company_id"`
	ServiceType string  `json:"service_type"`

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

	Status      string `json:"status"`
	IsConfirmed bool   `json:"is_confirmed"`

	ArrivalFlightDate     *time.Time `json:"arrival_flight_date"`
	ArrivalFlightTime     *string    `json:"arrival_flight_time"`
	ArrivalFlightNumber   *string    `json:"arrival_flight_number"`
	DepartureFlightDate   *time.Time `json:"departure_flight_date"`
	DepartureFlightTime   *string    `json:"departure_flight_time"`
	DepartureFlightNumber *string    `json:"departure_flight_number"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User *ownerView `json:"user,omitempty"`
}

type ownerView struct {
	ID    string  `json:"id"`
	Email string  `json:"email"`
	Name  *string `json:"name"`
}

func toTripRequestView(req triprequest.TripRequest) tripRequestView {
	return tripRequestView{
		ID:                    req.ID,
		OrderNumber:           req.OrderNumber,
		UserID:                req.UserID,
		CompanyID:             req.CompanyID,
		ServiceType:           string(req.ServiceType),
		ArrivalAirport:        req.ArrivalAirport,
		DestinationAddress:    req.DestinationAddress,
		PickupAddress:         req.PickupAddress,
		DepartureAirport:      req.DepartureAirport,
		Language:              req.Language,
		FirstName:             req.FirstName,
		LastName:              req.LastName,
		Phone:                 req.Phone,
		NumberOfAdults:        req.NumberOfAdults,
		AreThereChildren:      req.AreThereChildren,
		NumberOfChildren:      req.NumberOfChildren,
		AgeOfChildren:         req.AgeOfChildren,
		NumberOfChildSeats:    req.NumberOfChildSeats,
		AdditionalInfo:        req.AdditionalInfo,
		Status:                string(req.Status),
		IsConfirmed:           req.IsConfirmed,
		ArrivalFlightDate:     req.ArrivalFlightDate,
		ArrivalFlightTime:     req.ArrivalFlightTime,
		ArrivalFlightNumber:   req.ArrivalFlightNumber,
		DepartureFlightDate:   req.DepartureFlightDate,
		DepartureFlightTime:   req.DepartureFlightTime,
		DepartureFlightNumber: req.DepartureFlightNumber,
		CreatedAt:             req.CreatedAt,
		UpdatedAt:             req.UpdatedAt,
	}
}

type pageView struct {
	Items      []tripRequestView `json:"items"`
	NextCursor string            `json:"next_cursor,omitempty"`
}

func toPageView(page triprequest.Page) pageView {
	items := make([]tripRequestView, len(page.Items))
	for i, item := range page.Items {
		v := toTripRequestView(item.Request)
		if item.User != nil {
			v.User = &ownerView{ID: item.User.ID, Email: item.User.Email, Name: item.User.Name}
		}
		items[i] = v
	}
	return pageView{Items: items, NextCursor: page.NextCursor}
}

type quotationView struct {
	ID                  string     `json:"id"`
	TripRequestID       string     `json:"trip_request_id"`
	Price               float64    `json:"price"`
	Currency            string     `json:"currency"`
	IsPriceEachWay      bool       `json:"is_price_each_way"`
	AreCarSeatsIncluded bool       `json:"are_car_seats_included"`
	AdditionalInfo      *string    `json:"additional_info"`
	InternalNotes       *string    `json:"internal_notes,omitempty"`
	ValidUntil          *time.Time `json:"valid_until"`
	Status              string     `json:"status"`
	SentAt              *time.Time `json:"sent_at"`
	RespondedAt         *time.Time `json:"responded_at"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// toQuotationView renders a quotation. Internal notes are admin-only and
// stripped for customers.
func toQuotationView(q quotation.Quotation, includeInternal bool) quotationView {
	v := quotationView{
		ID:                  q.ID,
		TripRequestID:       q.TripRequestID,
		Price:               q.Price,
		Currency:            q.Currency,
		IsPriceEachWay:      q.IsPriceEachWay,
		AreCarSeatsIncluded: q.AreCarSeatsIncluded,
		AdditionalInfo:      q.AdditionalInfo,
		ValidUntil:          q.ValidUntil,
		Status:              string(q.Status),
		SentAt:              q.SentAt,
		RespondedAt:         q.RespondedAt,
		CreatedAt:           q.CreatedAt,
		UpdatedAt:           q.UpdatedAt,
	}
	if includeInternal {
		v.InternalNotes = q.InternalNotes
	}
	return v
}

func toQuotationViews(qs []quotation.Quotation, includeInternal bool) []quotationView {
	out := make([]quotationView, len(qs))
	for i, q := range qs {
		out[i] = toQuotationView(q, includeInternal)
	}
	return out
}
