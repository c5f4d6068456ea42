package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/farisali522/birojasaapp/internal/db"
	"github.com/farisali522/birojasaapp/internal/domain"
)

type AuditRepository struct {
	DB *db.Postgres
}

func (r AuditRepository) AppendRequestEntry(ctx context.Context, e domain.RequestAuditEntry) error {
	_, err := r.DB.Pool.Exec(ctx, `
		INSERT INTO request_audit_logs (request_id, employee_id, action, note, logged_at)
		VALUES ($1,$2,$3,$4, now())
	`, e.RequestID, nullableID(e.EmployeeID), e.Action, e.Note)
	return err
}

func (r AuditRepository) AppendPaymentEntry(ctx context.Context, e domain.PaymentAuditEntry) error {
	_, err := r.DB.Pool.Exec(ctx, `
		INSERT INTO payment_audit_logs (payment_id, employee_id, action, note, logged_at)
		VALUES ($1,$2,$3,$4, now())
	`, e.PaymentID, nullableID(e.EmployeeID), e.Action, e.Note)
	return err
}

func (r AuditRepository) ListRequestEntries(ctx context.Context, requestID int64) ([]domain.RequestAuditEntry, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT id, request_id, employee_id, action, note, logged_at
		FROM request_audit_logs WHERE request_id=$1 ORDER BY logged_at, id
	`, requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.RequestAuditEntry
	for rows.Next() {
		var e domain.RequestAuditEntry
		var emp pgtype.Int8
		if err := rows.Scan(&e.ID, &e.RequestID, &emp, &e.Action, &e.Note, &e.LoggedAt); err != nil {
			return nil, err
		}
		if emp.Valid {
			e.EmployeeID = &emp.Int64
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r AuditRepository) ListPaymentEntries(ctx context.Context, paymentID int64) ([]domain.PaymentAuditEntry, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT id, payment_id, employee_id, action, note, logged_at
		FROM payment_audit_logs WHERE payment_id=$1 ORDER BY logged_at, id
	`, paymentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.PaymentAuditEntry
	for rows.Next() {
		var e domain.PaymentAuditEntry
		var emp pgtype.Int8
		if err := rows.Scan(&e.ID, &e.PaymentID, &emp, &e.Action, &e.Note, &e.LoggedAt); err != nil {
			return nil, err
		}
		if emp.Valid {
			e.EmployeeID = &emp.Int64
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func nullableID(id *int64) pgtype.Int8 {
	if id == nil {
		return pgtype.Int8{}
	}
	return pgtype.Int8{Int64: *id, Valid: true}
}
