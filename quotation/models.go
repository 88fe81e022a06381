package quotation

import "time"

type Status string

const (
	StatusDraft    Status = "DRAFT"
	StatusSent     Status = "SENT"
	StatusAccepted Status = "ACCEPTED"
	StatusRejected Status = "REJECTED"
)

// Decision is the customer's response to a SENT quotation.
type Decision string

const (
	DecisionAccept Decision = "ACCEPT"
	DecisionReject Decision = "REJECT"
)

// Quotation is an admin-issued price offer against one trip request.
// Only DRAFT quotations are editable or deletable; SENT is the only state
// from which a customer response is accepted.
type Quotation struct {
	ID                  string
	TripRequestID       string
	CreatedByID         *string
	Price               float64
	Currency            string
	IsPriceEachWay      bool
	AreCarSeatsIncluded bool
	AdditionalInfo      *string
	InternalNotes       *string
	ValidUntil          *time.Time
	Status              Status
	SentAt              *time.Time
	RespondedAt         *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// TripSummary is the slice of the linked trip request needed for guards
// and notifications, captured under the same row lock as the quotation.
type TripSummary struct {
	ID          string
	OrderNumber int64
	OwnerID     string
	OwnerEmail  string
	OwnerName   *string
	FirstName   string
	Status      string
}

// Locked pairs a quotation with its trip summary while both rows are held
// under FOR UPDATE inside a transaction.
type Locked struct {
	Quotation Quotation
	Trip      TripSummary
}

// CreateParams carries admin input for a new draft quotation.
type CreateParams struct {
	TripRequestID       string
	Price               float64
	Currency            string
	IsPriceEachWay      bool
	AreCarSeatsIncluded bool
	AdditionalInfo      *string
	InternalNotes       *string
	ValidUntil          *time.Time
}

// UpdateParams carries a partial update for a draft; nil fields are left
// untouched.
type UpdateParams struct {
	Price               *float64
	Currency            *string
	IsPriceEachWay      *bool
	AreCarSeatsIncluded *bool
	AdditionalInfo      *string
	InternalNotes       *string
	ValidUntil          *time.Time
}
