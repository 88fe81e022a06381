package triprequest

import "time"

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusQuoted    Status = "QUOTED"
	StatusAccepted  Status = "ACCEPTED"
	StatusRejected  Status = "REJECTED"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

func IsValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusQuoted, StatusAccepted, StatusRejected, StatusCompleted, StatusCancelled:
		return true
	default:
		return false
	}
}

type ServiceType string

const (
	ServiceBoth      ServiceType = "both"
	ServiceArrival   ServiceType = "arrival"
	ServiceDeparture ServiceType = "departure"
)

func (t ServiceType) HasArrival() bool {
	return t == ServiceBoth || t == ServiceArrival
}

func (t ServiceType) HasDeparture() bool {
	return t == ServiceBoth || t == ServiceDeparture
}

// TripRequest is a customer's transfer service request. Flight details are
// filled in later, when the customer confirms an accepted booking.
type TripRequest struct {
	ID          string
	OrderNumber int64
	UserID      string
	CompanyID   *string
	ServiceType ServiceType

	ArrivalAirport     *string
	DestinationAddress *string
	PickupAddress      *string
	DepartureAirport   *string

	Language           string
	FirstName          string
	LastName           string
	Phone              string
	NumberOfAdults     int
	AreThereChildren   bool
	NumberOfChildren   *int
	AgeOfChildren      *string
	NumberOfChildSeats *int
	AdditionalInfo     *string

	Status      Status
	IsConfirmed bool

	ArrivalFlightDate     *time.Time
	ArrivalFlightTime     *string
	ArrivalFlightNumber   *string
	DepartureFlightDate   *time.Time
	DepartureFlightTime   *string
	DepartureFlightNumber *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// UserSummary is the slice of account data surfaced on admin listings and
// notification emails.
type UserSummary struct {
	ID    string
	Email string
	Name  *string
}

// CreateParams carries customer input for a new request.
type CreateParams struct {
	ServiceType        ServiceType
	ArrivalAirport     *string
	DestinationAddress *string
	PickupAddress      *string
	DepartureAirport   *string
	Language           string
	FirstName          string
	LastName           string
	Phone              string
	NumberOfAdults     int
	AreThereChildren   bool
	NumberOfChildren   *int
	AgeOfChildren      *string
	NumberOfChildSeats *int
	AdditionalInfo     *string
}

// ConfirmParams carries the flight details attached at confirmation.
type ConfirmParams struct {
	ArrivalFlightDate     *time.Time
	ArrivalFlightTime     *string
	ArrivalFlightNumber   *string
	DepartureFlightDate   *time.Time
	DepartureFlightTime   *string
	DepartureFlightNumber *string
}

// Filters narrows listings. Cursor is the id of the last item from the
// previous page; listings are most recent first.
type Filters struct {
	OwnerID   string
	CompanyID string
	Status    Status
	Limit     int
	Cursor    string
}

// Item pairs a request with its owner summary for admin listings.
type Item struct {
	Request TripRequest
	User    *UserSummary
}

// Page is one cursor-paginated slice of results.
type Page struct {
	Items      []Item
	NextCursor string
}
