package repository

import (
	"context"

	"github.com/farisali522/birojasaapp/internal/db"
	"github.com/farisali522/birojasaapp/internal/domain"
	"github.com/farisali522/birojasaapp/internal/ports"
)

type CustomerRepository struct {
	DB *db.Postgres
}

const customerColumns = `id, code, name, email, phone, address, created_at, updated_at`

func (r CustomerRepository) Create(ctx context.Context, in ports.CreateCustomerInput) (*domain.Customer, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO customers (code, name, email, phone, address, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5, now(), now())
		RETURNING `+customerColumns+`
	`, in.Code, in.Name, in.Email, in.Phone, in.Address)

	var c domain.Customer
	if err := row.Scan(&c.ID, &c.Code, &c.Name, &c.Email, &c.Phone, &c.Address, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ports.ErrDuplicate
		}
		return nil, err
	}
	return &c, nil
}

func (r CustomerRepository) GetByID(ctx context.Context, id int64) (*domain.Customer, error) {
	return r.get(ctx, `SELECT `+customerColumns+` FROM customers WHERE id=$1`, id)
}

func (r CustomerRepository) GetByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	return r.get(ctx, `SELECT `+customerColumns+` FROM customers WHERE email=$1`, email)
}

func (r CustomerRepository) get(ctx context.Context, query string, arg any) (*domain.Customer, error) {
	var c domain.Customer
	err := r.DB.Pool.QueryRow(ctx, query, arg).
		Scan(&c.ID, &c.Code, &c.Name, &c.Email, &c.Phone, &c.Address, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

func (r CustomerRepository) UpdateProfile(ctx context.Context, id int64, name, phone, address string) error {
	tag, err := r.DB.Pool.Exec(ctx, `
		UPDATE customers SET name=$2, phone=$3, address=$4, updated_at=now() WHERE id=$1
	`, id, name, phone, address)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ports.ErrNotFound
	}
	return nil
}

func (r CustomerRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.DB.Pool.QueryRow(ctx, `SELECT count(*) FROM customers`).Scan(&n)
	return n, err
}
