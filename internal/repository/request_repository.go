package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/farisali522/birojasaapp/internal/db"
	"github.com/farisali522/birojasaapp/internal/domain"
	"github.com/farisali522/birojasaapp/internal/ports"
)

type RequestRepository struct {
	DB *db.Postgres
}

// requestSelect joins the relations every caller wants to show alongside a
// request: the customer, the offering and the assigned field worker.
const requestSelect = `
	SELECT r.id, r.code, r.customer_id, r.offering_id, r.assigned_id,
	       r.status, r.official_fee, r.delivery, r.customer_note,
	       r.rejection_note, r.tracking_number, r.created_at, r.updated_at,
	       c.id, c.code, c.name, c.email, c.phone, c.address,
	       o.id, o.code, o.name, o.service_fee, o.estimate,
	       e.id, e.code, e.name, e.role
	FROM requests r
	JOIN customers c ON c.id = r.customer_id
	JOIN service_offerings o ON o.id = r.offering_id
	LEFT JOIN employees e ON e.id = r.assigned_id`

func scanRequest(row rowScanner) (*domain.Request, error) {
	var (
		req      domain.Request
		cust     domain.Customer
		offer    domain.ServiceOffering
		assigned pgtype.Int8
		empID    pgtype.Int8
		empCode  pgtype.Text
		empName  pgtype.Text
		empRole  pgtype.Text
	)
	err := row.Scan(
		&req.ID, &req.Code, &req.CustomerID, &req.OfferingID, &assigned,
		&req.Status, &req.OfficialFee.Amount, &req.Delivery, &req.CustomerNote,
		&req.RejectionNote, &req.TrackingNumber, &req.CreatedAt, &req.UpdatedAt,
		&cust.ID, &cust.Code, &cust.Name, &cust.Email, &cust.Phone, &cust.Address,
		&offer.ID, &offer.Code, &offer.Name, &offer.ServiceFee.Amount, &offer.Estimate,
		&empID, &empCode, &empName, &empRole,
	)
	if err != nil {
		return nil, err
	}
	if assigned.Valid {
		req.AssignedID = &assigned.Int64
	}
	req.Customer = &cust
	req.Offering = &offer
	if empID.Valid {
		req.Assigned = &domain.Employee{
			ID:   empID.Int64,
			Code: empCode.String,
			Name: empName.String,
			Role: domain.EmployeeRole(empRole.String),
		}
	}
	return &req, nil
}

func (r RequestRepository) Create(ctx context.Context, in ports.CreateRequestInput) (*domain.Request, error) {
	var id int64
	err := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO requests (code, customer_id, offering_id, status, delivery, customer_note, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6, now(), now())
		RETURNING id
	`, in.Code, in.CustomerID, in.OfferingID, domain.StatusAwaitingVerification, in.Delivery, in.CustomerNote).Scan(&id)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ports.ErrDuplicate
		}
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r RequestRepository) GetByID(ctx context.Context, id int64) (*domain.Request, error) {
	req, err := scanRequest(r.DB.Pool.QueryRow(ctx, requestSelect+` WHERE r.id=$1`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return req, nil
}

func (r RequestRepository) ListByCustomer(ctx context.Context, customerID int64) ([]domain.Request, error) {
	return r.list(ctx, requestSelect+` WHERE r.customer_id=$1 ORDER BY r.created_at DESC`, customerID)
}

func (r RequestRepository) ListByStatus(ctx context.Context, statuses ...domain.RequestStatus) ([]domain.Request, error) {
	return r.list(ctx, requestSelect+` WHERE r.status = ANY($1) ORDER BY r.created_at`, statusStrings(statuses))
}

func (r RequestRepository) ListUnassignedProcessing(ctx context.Context) ([]domain.Request, error) {
	return r.list(ctx, requestSelect+` WHERE r.status=$1 AND r.assigned_id IS NULL ORDER BY r.created_at`,
		domain.StatusProcessing)
}

func (r RequestRepository) ListAssigned(ctx context.Context, employeeID int64) ([]domain.Request, error) {
	return r.list(ctx, requestSelect+` WHERE r.assigned_id=$1 ORDER BY r.created_at`, employeeID)
}

func (r RequestRepository) list(ctx context.Context, query string, args ...any) ([]domain.Request, error) {
	rows, err := r.DB.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Request
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *req)
	}
	return out, rows.Err()
}

func (r RequestRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.DB.Pool.QueryRow(ctx, `SELECT count(*) FROM requests`).Scan(&n)
	return n, err
}

func (r RequestRepository) CountByStatus(ctx context.Context) (map[domain.RequestStatus]int64, error) {
	rows, err := r.DB.Pool.Query(ctx, `SELECT status, count(*) FROM requests GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[domain.RequestStatus]int64{}
	for rows.Next() {
		var status domain.RequestStatus
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		out[status] = n
	}
	return out, rows.Err()
}

func (r RequestRepository) SetVerified(ctx context.Context, id int64, officialFee int64) error {
	return r.cas(ctx, `
		UPDATE requests SET status=$2, official_fee=$3, rejection_note='', updated_at=now()
		WHERE id=$1 AND status=$4
	`, id, domain.StatusAwaitingPayment, officialFee, domain.StatusAwaitingVerification)
}

func (r RequestRepository) MarkRejected(ctx context.Context, id int64, note string) error {
	return r.cas(ctx, `
		UPDATE requests SET status=$2, rejection_note=$3, updated_at=now()
		WHERE id=$1 AND status=$4
	`, id, domain.StatusRejected, note, domain.StatusAwaitingVerification)
}

func (r RequestRepository) Assign(ctx context.Context, id int64, employeeID int64) error {
	return r.cas(ctx, `
		UPDATE requests SET status=$2, assigned_id=$3, updated_at=now()
		WHERE id=$1 AND status=$4
	`, id, domain.StatusFieldProcessing, employeeID, domain.StatusProcessing)
}

func (r RequestRepository) SetShipped(ctx context.Context, id int64, trackingNumber string, from ...domain.RequestStatus) error {
	return r.cas(ctx, `
		UPDATE requests SET status=$2, tracking_number=$3, updated_at=now()
		WHERE id=$1 AND status = ANY($4)
	`, id, domain.StatusShipped, trackingNumber, statusStrings(from))
}

func (r RequestRepository) SetStatus(ctx context.Context, id int64, to domain.RequestStatus, from ...domain.RequestStatus) error {
	if len(from) == 0 {
		tag, err := r.DB.Pool.Exec(ctx, `
			UPDATE requests SET status=$2, updated_at=now() WHERE id=$1
		`, id, to)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ports.ErrNotFound
		}
		return nil
	}
	return r.cas(ctx, `
		UPDATE requests SET status=$2, updated_at=now()
		WHERE id=$1 AND status = ANY($3)
	`, id, to, statusStrings(from))
}

func (r RequestRepository) ResetForResubmission(ctx context.Context, id int64, customerNote *string) error {
	note := pgtype.Text{}
	if customerNote != nil {
		note = pgtype.Text{String: *customerNote, Valid: true}
	}
	return r.cas(ctx, `
		UPDATE requests SET status=$2, rejection_note='',
			customer_note = COALESCE($3, customer_note), updated_at=now()
		WHERE id=$1 AND status = ANY($4)
	`, id, domain.StatusAwaitingVerification, note,
		statusStrings([]domain.RequestStatus{domain.StatusRejected, domain.StatusRevision}))
}

func (r RequestRepository) cas(ctx context.Context, query string, args ...any) error {
	tag, err := r.DB.Pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ports.ErrStaleStatus
	}
	return nil
}

func statusStrings(statuses []domain.RequestStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}
