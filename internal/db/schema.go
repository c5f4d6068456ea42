package db

import "context"

// Migrate bootstraps the schema. Statements are idempotent so the server can
// run them on every start.
func (p *Postgres) Migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS customers (
			id BIGSERIAL PRIMARY KEY,
			code TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE,
			phone TEXT NOT NULL DEFAULT '',
			address TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS employees (
			id BIGSERIAL PRIMARY KEY,
			code TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE,
			phone TEXT NOT NULL DEFAULT '',
			role TEXT NOT NULL,
			password_hash TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS service_offerings (
			id BIGSERIAL PRIMARY KEY,
			code TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			service_fee BIGINT NOT NULL DEFAULT 0,
			estimate TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS service_stages (
			id BIGSERIAL PRIMARY KEY,
			offering_id BIGINT NOT NULL REFERENCES service_offerings(id) ON DELETE CASCADE,
			sequence INT NOT NULL,
			name TEXT NOT NULL,
			cost BIGINT NOT NULL DEFAULT 0,
			requires_payment BOOLEAN NOT NULL DEFAULT false,
			UNIQUE (offering_id, sequence)
		)`,
		`CREATE TABLE IF NOT EXISTS document_types (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			description TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS requirement_links (
			id BIGSERIAL PRIMARY KEY,
			offering_id BIGINT NOT NULL REFERENCES service_offerings(id) ON DELETE CASCADE,
			document_type_id BIGINT NOT NULL REFERENCES document_types(id) ON DELETE CASCADE,
			mandatory BOOLEAN NOT NULL DEFAULT true,
			UNIQUE (offering_id, document_type_id)
		)`,
		`CREATE TABLE IF NOT EXISTS requests (
			id BIGSERIAL PRIMARY KEY,
			code TEXT NOT NULL UNIQUE,
			customer_id BIGINT NOT NULL REFERENCES customers(id),
			offering_id BIGINT NOT NULL REFERENCES service_offerings(id) ON DELETE RESTRICT,
			assigned_id BIGINT REFERENCES employees(id) ON DELETE SET NULL,
			status TEXT NOT NULL,
			official_fee BIGINT NOT NULL DEFAULT 0,
			delivery TEXT NOT NULL,
			customer_note TEXT NOT NULL DEFAULT '',
			rejection_note TEXT NOT NULL DEFAULT '',
			tracking_number TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS uploaded_documents (
			id BIGSERIAL PRIMARY KEY,
			code TEXT NOT NULL,
			request_id BIGINT NOT NULL REFERENCES requests(id) ON DELETE CASCADE,
			document_type_id BIGINT NOT NULL REFERENCES document_types(id) ON DELETE RESTRICT,
			file_path TEXT NOT NULL,
			status TEXT NOT NULL,
			revision_note TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			UNIQUE (request_id, document_type_id)
		)`,
		`CREATE TABLE IF NOT EXISTS payments (
			id BIGSERIAL PRIMARY KEY,
			invoice_number TEXT NOT NULL UNIQUE,
			request_id BIGINT NOT NULL UNIQUE REFERENCES requests(id) ON DELETE CASCADE,
			shipping_fee BIGINT NOT NULL DEFAULT 0,
			total BIGINT NOT NULL DEFAULT 0,
			method TEXT,
			status TEXT NOT NULL DEFAULT 'pending',
			gateway_ref TEXT,
			proof_path TEXT,
			paid_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS request_audit_logs (
			id BIGSERIAL PRIMARY KEY,
			request_id BIGINT NOT NULL REFERENCES requests(id) ON DELETE CASCADE,
			employee_id BIGINT REFERENCES employees(id) ON DELETE SET NULL,
			action TEXT NOT NULL,
			note TEXT NOT NULL DEFAULT '',
			logged_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS payment_audit_logs (
			id BIGSERIAL PRIMARY KEY,
			payment_id BIGINT NOT NULL REFERENCES payments(id) ON DELETE CASCADE,
			employee_id BIGINT REFERENCES employees(id) ON DELETE SET NULL,
			action TEXT NOT NULL,
			note TEXT NOT NULL DEFAULT '',
			logged_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_requests_status ON requests(status)`,
		`CREATE INDEX IF NOT EXISTS idx_requests_customer ON requests(customer_id)`,
		`CREATE INDEX IF NOT EXISTS idx_requests_assigned ON requests(assigned_id)`,
		`CREATE INDEX IF NOT EXISTS idx_payments_status ON payments(status)`,
	}

	for _, stmt := range stmts {
		if _, err := p.Pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
