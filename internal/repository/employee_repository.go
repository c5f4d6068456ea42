package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/farisali522/birojasaapp/internal/db"
	"github.com/farisali522/birojasaapp/internal/domain"
	"github.com/farisali522/birojasaapp/internal/ports"
)

type EmployeeRepository struct {
	DB *db.Postgres
}

const employeeColumns = `id, code, name, email, phone, role, password_hash, created_at, updated_at`

func (r EmployeeRepository) Create(ctx context.Context, in ports.CreateEmployeeInput) (*domain.Employee, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO employees (code, name, email, phone, role, password_hash, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6, now(), now())
		RETURNING `+employeeColumns+`
	`, in.Code, in.Name, in.Email, in.Phone, string(in.Role), in.PasswordHash)

	emp, err := scanEmployee(row)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ports.ErrDuplicate
		}
		return nil, err
	}
	return emp, nil
}

func (r EmployeeRepository) GetByID(ctx context.Context, id int64) (*domain.Employee, error) {
	row := r.DB.Pool.QueryRow(ctx, `SELECT `+employeeColumns+` FROM employees WHERE id=$1`, id)
	emp, err := scanEmployee(row)
	if err != nil {
		return nil, notFound(err)
	}
	return emp, nil
}

func (r EmployeeRepository) GetByEmail(ctx context.Context, email string) (*domain.Employee, error) {
	row := r.DB.Pool.QueryRow(ctx, `SELECT `+employeeColumns+` FROM employees WHERE email=$1`, email)
	emp, err := scanEmployee(row)
	if err != nil {
		return nil, notFound(err)
	}
	return emp, nil
}

func (r EmployeeRepository) List(ctx context.Context) ([]domain.Employee, error) {
	return r.list(ctx, `SELECT `+employeeColumns+` FROM employees ORDER BY role, name`)
}

func (r EmployeeRepository) ListByRole(ctx context.Context, role domain.EmployeeRole) ([]domain.Employee, error) {
	return r.list(ctx, `SELECT `+employeeColumns+` FROM employees WHERE role=$1 ORDER BY name`, string(role))
}

func (r EmployeeRepository) list(ctx context.Context, query string, args ...any) ([]domain.Employee, error) {
	rows, err := r.DB.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *emp)
	}
	return out, rows.Err()
}

func (r EmployeeRepository) Update(ctx context.Context, id int64, name, email, phone string, role domain.EmployeeRole) error {
	tag, err := r.DB.Pool.Exec(ctx, `
		UPDATE employees SET name=$2, email=$3, phone=$4, role=$5, updated_at=now() WHERE id=$1
	`, id, name, email, phone, string(role))
	if err != nil {
		if db.IsUniqueViolation(err) {
			return ports.ErrDuplicate
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ports.ErrNotFound
	}
	return nil
}

func (r EmployeeRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.DB.Pool.Exec(ctx, `DELETE FROM employees WHERE id=$1`, id)
	if err != nil {
		if db.IsRestrictViolation(err) {
			return ports.ErrInUse
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ports.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEmployee(row rowScanner) (*domain.Employee, error) {
	var e domain.Employee
	var role string
	var hash pgtype.Text
	if err := row.Scan(&e.ID, &e.Code, &e.Name, &e.Email, &e.Phone, &role, &hash, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	e.Role = domain.EmployeeRole(role)
	if hash.Valid {
		e.PasswordHash = &hash.String
	}
	return &e, nil
}
