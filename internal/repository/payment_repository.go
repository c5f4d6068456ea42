package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/farisali522/birojasaapp/internal/db"
	"github.com/farisali522/birojasaapp/internal/domain"
	"github.com/farisali522/birojasaapp/internal/ports"
)

type PaymentRepository struct {
	DB *db.Postgres
}

const paymentColumns = `id, invoice_number, request_id, shipping_fee, total,
	method, status, gateway_ref, proof_path, paid_at, created_at, updated_at`

func scanPayment(row rowScanner) (*domain.Payment, error) {
	var (
		p          domain.Payment
		method     pgtype.Text
		gatewayRef pgtype.Text
		proofPath  pgtype.Text
		paidAt     pgtype.Timestamptz
	)
	err := row.Scan(&p.ID, &p.InvoiceNumber, &p.RequestID, &p.ShippingFee.Amount, &p.Total.Amount,
		&method, &p.Status, &gatewayRef, &proofPath, &paidAt, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if method.Valid {
		m := domain.PaymentMethod(method.String)
		p.Method = &m
	}
	if gatewayRef.Valid {
		p.GatewayRef = &gatewayRef.String
	}
	if proofPath.Valid {
		p.ProofPath = &proofPath.String
	}
	if paidAt.Valid {
		p.PaidAt = &paidAt.Time
	}
	return &p, nil
}

func (r PaymentRepository) Create(ctx context.Context, in ports.CreatePaymentInput) (*domain.Payment, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO payments (invoice_number, request_id, shipping_fee, total, status, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5, now(), now())
		RETURNING `+paymentColumns,
		in.InvoiceNumber, in.RequestID, in.ShippingFee, in.Total, domain.PaymentPending)
	p, err := scanPayment(row)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ports.ErrDuplicate
		}
		return nil, err
	}
	return p, nil
}

func (r PaymentRepository) GetByID(ctx context.Context, id int64) (*domain.Payment, error) {
	p, err := scanPayment(r.DB.Pool.QueryRow(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE id=$1`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return p, nil
}

func (r PaymentRepository) GetByRequest(ctx context.Context, requestID int64) (*domain.Payment, error) {
	p, err := scanPayment(r.DB.Pool.QueryRow(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE request_id=$1`, requestID))
	if err != nil {
		return nil, notFound(err)
	}
	return p, nil
}

func (r PaymentRepository) SettleOnline(ctx context.Context, id int64, gatewayRef string) error {
	return r.cas(ctx, `
		UPDATE payments SET status=$2, method=$3, gateway_ref=$4, paid_at=now(), updated_at=now()
		WHERE id=$1 AND status=$5
	`, id, domain.PaymentPaid, domain.MethodGateway, gatewayRef, domain.PaymentPending)
}

func (r PaymentRepository) SetMethod(ctx context.Context, id int64, method domain.PaymentMethod, proofPath *string) error {
	proof := pgtype.Text{}
	if proofPath != nil {
		proof = pgtype.Text{String: *proofPath, Valid: true}
	}
	return r.cas(ctx, `
		UPDATE payments SET method=$2, proof_path = COALESCE($3, proof_path), updated_at=now()
		WHERE id=$1 AND status=$4
	`, id, method, proof, domain.PaymentPending)
}

func (r PaymentRepository) ConfirmPaid(ctx context.Context, id int64, method domain.PaymentMethod) error {
	return r.cas(ctx, `
		UPDATE payments SET status=$2, method=$3, paid_at=now(), updated_at=now()
		WHERE id=$1 AND status=$4
	`, id, domain.PaymentPaid, method, domain.PaymentPending)
}

// ListPendingForFinance returns the payments the finance desk has to settle by
// hand: cash, no method chosen yet, or a pickup order whose cash changes hands
// at the counter.
func (r PaymentRepository) ListPendingForFinance(ctx context.Context) ([]domain.Payment, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT `+paymentColumns+` FROM payments p
		WHERE p.status = $1
		  AND (p.method = $2 OR p.method IS NULL
		       OR EXISTS (SELECT 1 FROM requests r WHERE r.id = p.request_id AND r.delivery = $3))
		ORDER BY p.created_at
	`, domain.PaymentPending, domain.MethodCash, domain.DeliveryPickup)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (r PaymentRepository) ListPaidBetween(ctx context.Context, start, end *time.Time) ([]ports.PaidPaymentRow, error) {
	from := pgtype.Timestamptz{}
	if start != nil {
		from = pgtype.Timestamptz{Time: *start, Valid: true}
	}
	until := pgtype.Timestamptz{}
	if end != nil {
		until = pgtype.Timestamptz{Time: *end, Valid: true}
	}
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT p.invoice_number, p.paid_at, c.name, p.total
		FROM payments p
		JOIN requests r ON r.id = p.request_id
		JOIN customers c ON c.id = r.customer_id
		WHERE p.status = $1
		  AND ($2::timestamptz IS NULL OR p.paid_at >= $2)
		  AND ($3::timestamptz IS NULL OR p.paid_at <= $3)
		ORDER BY p.paid_at
	`, domain.PaymentPaid, from, until)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ports.PaidPaymentRow
	for rows.Next() {
		var row ports.PaidPaymentRow
		if err := rows.Scan(&row.InvoiceNumber, &row.PaidAt, &row.CustomerName, &row.Total); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r PaymentRepository) SumPaid(ctx context.Context) (int64, error) {
	var sum int64
	err := r.DB.Pool.QueryRow(ctx, `
		SELECT COALESCE(sum(total), 0) FROM payments WHERE status=$1
	`, domain.PaymentPaid).Scan(&sum)
	return sum, err
}

func (r PaymentRepository) cas(ctx context.Context, query string, args ...any) error {
	tag, err := r.DB.Pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ports.ErrStaleStatus
	}
	return nil
}
