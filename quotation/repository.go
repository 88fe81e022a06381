package quotation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound signals the quotation does not exist.
	ErrNotFound = errors.New("quotation: not found")
	// ErrTripRequestNotFound signals the referenced trip request is absent.
	ErrTripRequestNotFound = errors.New("quotation: trip request not found")
	// ErrInvalidState signals the operation is not valid from the current
	// lifecycle state.
	ErrInvalidState = errors.New("quotation: invalid state for operation")
)

// Repository defines the data access required by the lifecycle service.
// Transactional methods take the caller's pgx.Tx so guarded read-check-write
// sequences stay inside one transaction.
type Repository interface {
	Create(ctx context.Context, params CreateParams, createdByID string) (Quotation, error)
	GetByID(ctx context.Context, id string) (Quotation, error)
	GetForUpdate(ctx context.Context, tx pgx.Tx, id string) (Locked, error)
	MarkSent(ctx context.Context, tx pgx.Tx, id string, at time.Time) (Quotation, error)
	MarkResponded(ctx context.Context, tx pgx.Tx, id string, status Status, at time.Time) (Quotation, error)
	SetTripRequestStatus(ctx context.Context, tx pgx.Tx, tripRequestID, status string) error
	UpdateDraft(ctx context.Context, id string, params UpdateParams) (Quotation, error)
	DeleteDraft(ctx context.Context, id string) error
	ListForTripRequest(ctx context.Context, tripRequestID string, includeDrafts bool) ([]Quotation, error)
}

// PGRepository implements Repository backed by PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const quotationColumns = `id, trip_request_id, created_by_id, price, currency,
	is_price_each_way, are_car_seats_included, additional_info, internal_notes,
	valid_until, status::text, sent_at, responded_at, created_at, updated_at`

// Create inserts a DRAFT quotation, verifying the trip request exists in
// the same statement.
func (r *PGRepository) Create(ctx context.Context, params CreateParams, createdByID string) (Quotation, error) {
	query := fmt.Sprintf(`
		INSERT INTO quotations (
			trip_request_id, created_by_id, price, currency,
			is_price_each_way, are_car_seats_included, additional_info, internal_notes, valid_until
		)
		SELECT t.id, $2, $3, $4, $5, $6, $7, $8, $9
		FROM trip_requests t
		WHERE t.id = $1
		RETURNING %s
	`, quotationColumns)

	q, err := scanQuotation(r.pool.QueryRow(ctx, query,
		params.TripRequestID,
		createdByID,
		params.Price,
		params.Currency,
		params.IsPriceEachWay,
		params.AreCarSeatsIncluded,
		params.AdditionalInfo,
		params.InternalNotes,
		params.ValidUntil,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Quotation{}, ErrTripRequestNotFound
		}
		return Quotation{}, fmt.Errorf("quotation: create: %w", err)
	}
	return q, nil
}

func (r *PGRepository) GetByID(ctx context.Context, id string) (Quotation, error) {
	query := fmt.Sprintf(`SELECT %s FROM quotations WHERE id = $1`, quotationColumns)

	q, err := scanQuotation(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Quotation{}, ErrNotFound
		}
		return Quotation{}, fmt.Errorf("quotation: get by id: %w", err)
	}
	return q, nil
}

// GetForUpdate locks the quotation and its linked trip request and returns
// both, including the owner data needed for guards and notifications.
func (r *PGRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id string) (Locked, error) {
	const query = `
		SELECT q.id, q.trip_request_id, q.created_by_id, q.price, q.currency,
		       q.is_price_each_way, q.are_car_seats_included, q.additional_info, q.internal_notes,
		       q.valid_until, q.status::text, q.sent_at, q.responded_at, q.created_at, q.updated_at,
		       t.id, t.order_number, t.user_id, u.email, u.name, t.first_name, t.status::text
		FROM quotations q
		JOIN trip_requests t ON t.id = q.trip_request_id
		JOIN users u ON u.id = t.user_id
		WHERE q.id = $1
		FOR UPDATE OF q, t
	`

	var (
		locked Locked
		q      = &locked.Quotation
		trip   = &locked.Trip
	)
	err := tx.QueryRow(ctx, query, id).Scan(
		&q.ID, &q.TripRequestID, &q.CreatedByID, &q.Price, &q.Currency,
		&q.IsPriceEachWay, &q.AreCarSeatsIncluded, &q.AdditionalInfo, &q.InternalNotes,
		&q.ValidUntil, &q.Status, &q.SentAt, &q.RespondedAt, &q.CreatedAt, &q.UpdatedAt,
		&trip.ID, &trip.OrderNumber, &trip.OwnerID, &trip.OwnerEmail, &trip.OwnerName, &trip.FirstName, &trip.Status,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Locked{}, ErrNotFound
		}
		return Locked{}, fmt.Errorf("quotation: get for update: %w", err)
	}
	return locked, nil
}

// MarkSent moves a locked quotation to SENT and stamps sent_at.
func (r *PGRepository) MarkSent(ctx context.Context, tx pgx.Tx, id string, at time.Time) (Quotation, error) {
	query := fmt.Sprintf(`
		UPDATE quotations
		SET status = 'SENT',
		    sent_at = $2,
		    updated_at = $2
		WHERE id = $1
		RETURNING %s
	`, quotationColumns)

	q, err := scanQuotation(tx.QueryRow(ctx, query, id, at))
	if err != nil {
		return Quotation{}, fmt.Errorf("quotation: mark sent: %w", err)
	}
	return q, nil
}

// MarkResponded moves a locked quotation to its terminal state and stamps
// responded_at.
func (r *PGRepository) MarkResponded(ctx context.Context, tx pgx.Tx, id string, status Status, at time.Time) (Quotation, error) {
	query := fmt.Sprintf(`
		UPDATE quotations
		SET status = $2::quotation_status,
		    responded_at = $3,
		    updated_at = $3
		WHERE id = $1
		RETURNING %s
	`, quotationColumns)

	q, err := scanQuotation(tx.QueryRow(ctx, query, id, status, at))
	if err != nil {
		return Quotation{}, fmt.Errorf("quotation: mark responded: %w", err)
	}
	return q, nil
}

// SetTripRequestStatus syncs the linked trip request inside the caller's
// transaction.
func (r *PGRepository) SetTripRequestStatus(ctx context.Context, tx pgx.Tx, tripRequestID, status string) error {
	if _, err := tx.Exec(ctx, `
		UPDATE trip_requests
		SET status = $2::trip_request_status,
		    updated_at = now()
		WHERE id = $1
	`, tripRequestID, status); err != nil {
		return fmt.Errorf("quotation: sync trip request status: %w", err)
	}
	return nil
}

// UpdateDraft edits a quotation while it is still a draft. Non-draft rows
// are left untouched and reported as an invalid state.
func (r *PGRepository) UpdateDraft(ctx context.Context, id string, params UpdateParams) (Quotation, error) {
	query := fmt.Sprintf(`
		UPDATE quotations
		SET price = COALESCE($2, price),
		    currency = COALESCE($3, currency),
		    is_price_each_way = COALESCE($4, is_price_each_way),
		    are_car_seats_included = COALESCE($5, are_car_seats_included),
		    additional_info = COALESCE($6, additional_info),
		    internal_notes = COALESCE($7, internal_notes),
		    valid_until = COALESCE($8, valid_until),
		    updated_at = now()
		WHERE id = $1 AND status = 'DRAFT'
		RETURNING %s
	`, quotationColumns)

	q, err := scanQuotation(r.pool.QueryRow(ctx, query, id,
		params.Price,
		params.Currency,
		params.IsPriceEachWay,
		params.AreCarSeatsIncluded,
		params.AdditionalInfo,
		params.InternalNotes,
		params.ValidUntil,
	))
	if err == nil {
		return q, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return Quotation{}, fmt.Errorf("quotation: update draft: %w", err)
	}

	return Quotation{}, r.classifyDraftMiss(ctx, id)
}

// DeleteDraft hard-deletes a quotation while it is still a draft.
func (r *PGRepository) DeleteDraft(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM quotations WHERE id = $1 AND status = 'DRAFT'`, id)
	if err != nil {
		return fmt.Errorf("quotation: delete draft: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	return r.classifyDraftMiss(ctx, id)
}

// classifyDraftMiss distinguishes a missing row from a non-draft row after
// a conditional draft-only statement matched nothing.
func (r *PGRepository) classifyDraftMiss(ctx context.Context, id string) error {
	var status Status
	if err := r.pool.QueryRow(ctx, `SELECT status::text FROM quotations WHERE id = $1`, id).Scan(&status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("quotation: classify draft miss: %w", err)
	}
	if status != StatusDraft {
		return ErrInvalidState
	}
	return ErrNotFound
}

// ListForTripRequest returns quotations most recent first. Draft
// quotations are hidden from customers.
func (r *PGRepository) ListForTripRequest(ctx context.Context, tripRequestID string, includeDrafts bool) ([]Quotation, error) {
	query := fmt.Sprintf(`SELECT %s FROM quotations WHERE trip_request_id = $1`, quotationColumns)
	if !includeDrafts {
		query += ` AND status <> 'DRAFT'`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, tripRequestID)
	if err != nil {
		return nil, fmt.Errorf("quotation: list: %w", err)
	}
	defer rows.Close()

	out := make([]Quotation, 0, 4)
	for rows.Next() {
		q, err := scanQuotation(rows)
		if err != nil {
			return nil, fmt.Errorf("quotation: scan: %w", err)
		}
		out = append(out, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("quotation: iterate: %w", err)
	}
	return out, nil
}

func scanQuotation(row pgx.Row) (Quotation, error) {
	var q Quotation
	return q, row.Scan(
		&q.ID,
		&q.TripRequestID,
		&q.CreatedByID,
		&q.Price,
		&q.Currency,
		&q.IsPriceEachWay,
		&q.AreCarSeatsIncluded,
		&q.AdditionalInfo,
		&q.InternalNotes,
		&q.ValidUntil,
		&q.Status,
		&q.SentAt,
		&q.RespondedAt,
		&q.CreatedAt,
		&q.UpdatedAt,
	)
}
