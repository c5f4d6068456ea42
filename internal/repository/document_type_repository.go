package repository

import (
	"context"

	"github.com/farisali522/birojasaapp/internal/db"
	"github.com/farisali522/birojasaapp/internal/domain"
	"github.com/farisali522/birojasaapp/internal/ports"
)

type DocumentTypeRepository struct {
	DB *db.Postgres
}

func (r DocumentTypeRepository) Create(ctx context.Context, name, description string) (*domain.DocumentType, error) {
	var dt domain.DocumentType
	err := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO document_types (name, description) VALUES ($1,$2)
		RETURNING id, name, description
	`, name, description).Scan(&dt.ID, &dt.Name, &dt.Description)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ports.ErrDuplicate
		}
		return nil, err
	}
	return &dt, nil
}

func (r DocumentTypeRepository) Update(ctx context.Context, id int64, name, description string) error {
	tag, err := r.DB.Pool.Exec(ctx, `
		UPDATE document_types SET name=$2, description=$3 WHERE id=$1
	`, id, name, description)
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

func (r DocumentTypeRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.DB.Pool.Exec(ctx, `DELETE FROM document_types WHERE id=$1`, id)
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

func (r DocumentTypeRepository) GetByID(ctx context.Context, id int64) (*domain.DocumentType, error) {
	var dt domain.DocumentType
	err := r.DB.Pool.QueryRow(ctx, `
		SELECT id, name, description FROM document_types WHERE id=$1
	`, id).Scan(&dt.ID, &dt.Name, &dt.Description)
	if err != nil {
		return nil, notFound(err)
	}
	return &dt, nil
}

func (r DocumentTypeRepository) List(ctx context.Context) ([]domain.DocumentType, error) {
	rows, err := r.DB.Pool.Query(ctx, `SELECT id, name, description FROM document_types ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.DocumentType
	for rows.Next() {
		var dt domain.DocumentType
		if err := rows.Scan(&dt.ID, &dt.Name, &dt.Description); err != nil {
			return nil, err
		}
		out = append(out, dt)
	}
	return out, rows.Err()
}
