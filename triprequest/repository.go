package triprequest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound signals the trip request does not exist.
	ErrNotFound = errors.New("triprequest: not found")
)

// Repository provides data access for trip requests.
type Repository interface {
	Create(ctx context.Context, req TripRequest) (TripRequest, error)
	GetByID(ctx context.Context, id string) (TripRequest, error)
	List(ctx context.Context, filters Filters, withUser bool) (Page, error)
	UpdateStatus(ctx context.Context, id string, status Status) (TripRequest, error)
	Confirm(ctx context.Context, id string, params ConfirmParams) (TripRequest, error)
	OwnerSummary(ctx context.Context, userID string) (UserSummary, error)
}

// PGRepository implements Repository backed by PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

var requestCols = []string{
	"id", "order_number", "user_id", "company_id", "service_type::text",
	"arrival_airport", "destination_address", "pickup_address", "departure_airport",
	"language", "first_name", "last_name", "phone", "number_of_adults",
	"are_there_children", "number_of_children", "age_of_children", "number_of_child_seats",
	"additional_info", "status::text", "is_confirmed",
	"arrival_flight_date", "arrival_flight_time", "arrival_flight_number",
	"departure_flight_date", "departure_flight_time", "departure_flight_number",
	"created_at", "updated_at",
}

var requestColumns = strings.Join(requestCols, ", ")

func prefixedRequestColumns(prefix string) string {
	out := make([]string, len(requestCols))
	for i, c := range requestCols {
		out[i] = prefix + "." + c
	}
	return strings.Join(out, ", ")
}

func (r *PGRepository) Create(ctx context.Context, req TripRequest) (TripRequest, error) {
	query := fmt.Sprintf(`
		INSERT INTO trip_requests (
			user_id, company_id, service_type,
			arrival_airport, destination_address, pickup_address, departure_airport,
			language, first_name, last_name, phone, number_of_adults,
			are_there_children, number_of_children, age_of_children, number_of_child_seats,
			additional_info, status
		)
		VALUES ($1, $2, $3::trip_service_type, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18::trip_request_status)
		RETURNING %s
	`, requestColumns)

	row := r.pool.QueryRow(ctx, query,
		req.UserID,
		req.CompanyID,
		req.ServiceType,
		req.ArrivalAirport,
		req.DestinationAddress,
		req.PickupAddress,
		req.DepartureAirport,
		req.Language,
		req.FirstName,
		req.LastName,
		req.Phone,
		req.NumberOfAdults,
		req.AreThereChildren,
		req.NumberOfChildren,
		req.AgeOfChildren,
		req.NumberOfChildSeats,
		req.AdditionalInfo,
		req.Status,
	)

	created, err := scanRequest(row)
	if err != nil {
		return TripRequest{}, fmt.Errorf("triprequest: create: %w", err)
	}
	return created, nil
}

func (r *PGRepository) GetByID(ctx context.Context, id string) (TripRequest, error) {
	query := fmt.Sprintf(`SELECT %s FROM trip_requests WHERE id = $1`, requestColumns)

	req, err := scanRequest(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return TripRequest{}, ErrNotFound
		}
		return TripRequest{}, fmt.Errorf("triprequest: get by id: %w", err)
	}
	return req, nil
}

// List returns one page of requests, most recent first, keyed by the
// cursor id of the previous page's last item.
func (r *PGRepository) List(ctx context.Context, filters Filters, withUser bool) (Page, error) {
	if filters.Limit <= 0 || filters.Limit > 100 {
		filters.Limit = 50
	}

	cols := prefixedRequestColumns("t")
	if withUser {
		cols += ", u.id, u.email, u.name"
	}
	base := fmt.Sprintf(`SELECT %s FROM trip_requests t`, cols)
	if withUser {
		base += ` JOIN users u ON u.id = t.user_id`
	}

	where := []string{"1=1"}
	args := []any{}

	if filters.OwnerID != "" {
		where = append(where, fmt.Sprintf("t.user_id = $%d", len(args)+1))
		args = append(args, filters.OwnerID)
	}
	if filters.CompanyID != "" {
		where = append(where, fmt.Sprintf("t.company_id = $%d", len(args)+1))
		args = append(args, filters.CompanyID)
	}
	if filters.Status != "" {
		where = append(where, fmt.Sprintf("t.status = $%d::trip_request_status", len(args)+1))
		args = append(args, filters.Status)
	}
	if filters.Cursor != "" {
		cursorCreatedAt, cursorID, err := r.resolveCursor(ctx, filters.Cursor)
		if err != nil {
			return Page{}, err
		}
		where = append(where, fmt.Sprintf("(t.created_at, t.id) < ($%d, $%d)", len(args)+1, len(args)+2))
		args = append(args, cursorCreatedAt, cursorID)
	}

	query := fmt.Sprintf("%s WHERE %s ORDER BY t.created_at DESC, t.id DESC LIMIT %d",
		base, strings.Join(where, " AND "), filters.Limit+1)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return Page{}, fmt.Errorf("triprequest: list: %w", err)
	}
	defer rows.Close()

	items := []Item{}
	for rows.Next() {
		item, err := scanItem(rows, withUser)
		if err != nil {
			return Page{}, fmt.Errorf("triprequest: scan: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return Page{}, fmt.Errorf("triprequest: iterate: %w", err)
	}

	page := Page{Items: items}
	if len(items) > filters.Limit {
		page.Items = items[:filters.Limit]
		page.NextCursor = page.Items[len(page.Items)-1].Request.ID
	}
	return page, nil
}

// resolveCursor turns a cursor id into its sort key. A cursor that does
// not point at an existing row is rejected rather than silently yielding
// an empty page.
func (r *PGRepository) resolveCursor(ctx context.Context, cursor string) (time.Time, string, error) {
	var (
		createdAt time.Time
		id        string
	)
	err := r.pool.QueryRow(ctx, `SELECT created_at, id FROM trip_requests WHERE id = $1`, cursor).
		Scan(&createdAt, &id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return time.Time{}, "", fmt.Errorf("%w: unknown cursor", ErrInvalidInput)
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "22P02" {
			return time.Time{}, "", fmt.Errorf("%w: malformed cursor", ErrInvalidInput)
		}
		return time.Time{}, "", fmt.Errorf("triprequest: resolve cursor: %w", err)
	}
	return createdAt, id, nil
}

// UpdateStatus is the administrative override: any status may be set from
// any other, no transition-graph validation.
func (r *PGRepository) UpdateStatus(ctx context.Context, id string, status Status) (TripRequest, error) {
	query := fmt.Sprintf(`
		UPDATE trip_requests
		SET status = $2::trip_request_status,
		    updated_at = now()
		WHERE id = $1
		RETURNING %s
	`, requestColumns)

	req, err := scanRequest(r.pool.QueryRow(ctx, query, id, status))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return TripRequest{}, ErrNotFound
		}
		return TripRequest{}, fmt.Errorf("triprequest: update status: %w", err)
	}
	return req, nil
}

func (r *PGRepository) Confirm(ctx context.Context, id string, params ConfirmParams) (TripRequest, error) {
	query := fmt.Sprintf(`
		UPDATE trip_requests
		SET arrival_flight_date = $2,
		    arrival_flight_time = $3,
		    arrival_flight_number = $4,
		    departure_flight_date = $5,
		    departure_flight_time = $6,
		    departure_flight_number = $7,
		    is_confirmed = true,
		    updated_at = now()
		WHERE id = $1
		RETURNING %s
	`, requestColumns)

	req, err := scanRequest(r.pool.QueryRow(ctx, query, id,
		params.ArrivalFlightDate,
		params.ArrivalFlightTime,
		params.ArrivalFlightNumber,
		params.DepartureFlightDate,
		params.DepartureFlightTime,
		params.DepartureFlightNumber,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return TripRequest{}, ErrNotFound
		}
		return TripRequest{}, fmt.Errorf("triprequest: confirm: %w", err)
	}
	return req, nil
}

func (r *PGRepository) OwnerSummary(ctx context.Context, userID string) (UserSummary, error) {
	var u UserSummary
	err := r.pool.QueryRow(ctx, `SELECT id, email, name FROM users WHERE id = $1`, userID).
		Scan(&u.ID, &u.Email, &u.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return UserSummary{}, ErrNotFound
		}
		return UserSummary{}, fmt.Errorf("triprequest: owner summary: %w", err)
	}
	return u, nil
}

func scanRequest(row pgx.Row) (TripRequest, error) {
	var req TripRequest
	return req, row.Scan(
		&req.ID,
		&req.OrderNumber,
		&req.UserID,
		&req.CompanyID,
		&req.ServiceType,
		&req.ArrivalAirport,
		&req.DestinationAddress,
		&req.PickupAddress,
		&req.DepartureAirport,
		&req.Language,
		&req.FirstName,
		&req.LastName,
		&req.Phone,
		&req.NumberOfAdults,
		&req.AreThereChildren,
		&req.NumberOfChildren,
		&req.AgeOfChildren,
		&req.NumberOfChildSeats,
		&req.AdditionalInfo,
		&req.Status,
		&req.IsConfirmed,
		&req.ArrivalFlightDate,
		&req.ArrivalFlightTime,
		&req.ArrivalFlightNumber,
		&req.DepartureFlightDate,
		&req.DepartureFlightTime,
		&req.DepartureFlightNumber,
		&req.CreatedAt,
		&req.UpdatedAt,
	)
}

func scanItem(rows pgx.Rows, withUser bool) (Item, error) {
	var (
		req  TripRequest
		user UserSummary
	)
	dest := []any{
		&req.ID, &req.OrderNumber, &req.UserID, &req.CompanyID, &req.ServiceType,
		&req.ArrivalAirport, &req.DestinationAddress, &req.PickupAddress, &req.DepartureAirport,
		&req.Language, &req.FirstName, &req.LastName, &req.Phone, &req.NumberOfAdults,
		&req.AreThereChildren, &req.NumberOfChildren, &req.AgeOfChildren, &req.NumberOfChildSeats,
		&req.AdditionalInfo, &req.Status, &req.IsConfirmed,
		&req.ArrivalFlightDate, &req.ArrivalFlightTime, &req.ArrivalFlightNumber,
		&req.DepartureFlightDate, &req.DepartureFlightTime, &req.DepartureFlightNumber,
		&req.CreatedAt, &req.UpdatedAt,
	}
	if withUser {
		dest = append(dest, &user.ID, &user.Email, &user.Name)
	}
	if err := rows.Scan(dest...); err != nil {
		return Item{}, err
	}

	item := Item{Request: req}
	if withUser {
		item.User = &user
	}
	return item, nil
}
