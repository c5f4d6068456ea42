package repository

import (
	"context"

	"github.com/farisali522/birojasaapp/internal/db"
	"github.com/farisali522/birojasaapp/internal/domain"
	"github.com/farisali522/birojasaapp/internal/ports"
)

type OfferingRepository struct {
	DB *db.Postgres
}

func (r OfferingRepository) Create(ctx context.Context, in ports.SaveOfferingInput) (*domain.ServiceOffering, error) {
	tx, err := r.DB.Pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var o domain.ServiceOffering
	err = tx.QueryRow(ctx, `
		INSERT INTO service_offerings (code, name, service_fee, estimate, created_at, updated_at)
		VALUES ($1,$2,$3,$4, now(), now())
		RETURNING id, code, name, service_fee, estimate, created_at, updated_at
	`, in.Code, in.Name, in.ServiceFee, in.Estimate).
		Scan(&o.ID, &o.Code, &o.Name, &o.ServiceFee.Amount, &o.Estimate, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ports.ErrDuplicate
		}
		return nil, err
	}

	for _, st := range in.Stages {
		_, err := tx.Exec(ctx, `
			INSERT INTO service_stages (offering_id, sequence, name, cost, requires_payment)
			VALUES ($1,$2,$3,$4,$5)
		`, o.ID, st.Sequence, st.Name, st.Cost, st.RequiresPayment)
		if err != nil {
			return nil, err
		}
		o.Stages = append(o.Stages, domain.ServiceStage{
			OfferingID:      o.ID,
			Sequence:        st.Sequence,
			Name:            st.Name,
			Cost:            domain.Money{Amount: st.Cost},
			RequiresPayment: st.RequiresPayment,
		})
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r OfferingRepository) Update(ctx context.Context, id int64, in ports.SaveOfferingInput) error {
	tx, err := r.DB.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE service_offerings SET code=$2, name=$3, service_fee=$4, estimate=$5, updated_at=now()
		WHERE id=$1
	`, id, in.Code, in.Name, in.ServiceFee, in.Estimate)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return ports.ErrDuplicate
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ports.ErrNotFound
	}

	// Stages are replaced wholesale on edit; they carry no foreign rows.
	if _, err := tx.Exec(ctx, `DELETE FROM service_stages WHERE offering_id=$1`, id); err != nil {
		return err
	}
	for _, st := range in.Stages {
		_, err := tx.Exec(ctx, `
			INSERT INTO service_stages (offering_id, sequence, name, cost, requires_payment)
			VALUES ($1,$2,$3,$4,$5)
		`, id, st.Sequence, st.Name, st.Cost, st.RequiresPayment)
		if err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r OfferingRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.DB.Pool.Exec(ctx, `DELETE FROM service_offerings WHERE id=$1`, id)
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

func (r OfferingRepository) GetByID(ctx context.Context, id int64) (*domain.ServiceOffering, error) {
	var o domain.ServiceOffering
	err := r.DB.Pool.QueryRow(ctx, `
		SELECT id, code, name, service_fee, estimate, created_at, updated_at
		FROM service_offerings WHERE id=$1
	`, id).Scan(&o.ID, &o.Code, &o.Name, &o.ServiceFee.Amount, &o.Estimate, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}

	stages, err := r.stages(ctx, id)
	if err != nil {
		return nil, err
	}
	o.Stages = stages
	return &o, nil
}

func (r OfferingRepository) List(ctx context.Context) ([]domain.ServiceOffering, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT id, code, name, service_fee, estimate, created_at, updated_at
		FROM service_offerings ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ServiceOffering
	for rows.Next() {
		var o domain.ServiceOffering
		if err := rows.Scan(&o.ID, &o.Code, &o.Name, &o.ServiceFee.Amount, &o.Estimate, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		stages, err := r.stages(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Stages = stages
	}
	return out, nil
}

func (r OfferingRepository) stages(ctx context.Context, offeringID int64) ([]domain.ServiceStage, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT id, offering_id, sequence, name, cost, requires_payment
		FROM service_stages WHERE offering_id=$1 ORDER BY sequence
	`, offeringID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ServiceStage
	for rows.Next() {
		var st domain.ServiceStage
		if err := rows.Scan(&st.ID, &st.OfferingID, &st.Sequence, &st.Name, &st.Cost.Amount, &st.RequiresPayment); err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}
