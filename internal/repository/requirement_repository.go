package repository

import (
	"context"

	"github.com/farisali522/birojasaapp/internal/db"
	"github.com/farisali522/birojasaapp/internal/domain"
	"github.com/farisali522/birojasaapp/internal/ports"
)

type RequirementRepository struct {
	DB *db.Postgres
}

func (r RequirementRepository) ListByOffering(ctx context.Context, offeringID int64) ([]domain.RequirementLink, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT l.id, l.offering_id, l.document_type_id, t.name, l.mandatory
		FROM requirement_links l
		JOIN document_types t ON t.id = l.document_type_id
		WHERE l.offering_id = $1
		ORDER BY t.name
	`, offeringID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.RequirementLink
	for rows.Next() {
		var l domain.RequirementLink
		if err := rows.Scan(&l.ID, &l.OfferingID, &l.DocumentTypeID, &l.DocumentName, &l.Mandatory); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// Replace diffs the submitted selection against the stored set so untouched
// links keep their rows: inserts additions, deletes removals, updates links
// whose mandatory flag changed.
func (r RequirementRepository) Replace(ctx context.Context, offeringID int64, selection []ports.RequirementSelection) error {
	tx, err := r.DB.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx, `
		SELECT document_type_id, mandatory FROM requirement_links WHERE offering_id=$1
	`, offeringID)
	if err != nil {
		return err
	}
	current := map[int64]bool{}
	for rows.Next() {
		var id int64
		var mandatory bool
		if err := rows.Scan(&id, &mandatory); err != nil {
			rows.Close()
			return err
		}
		current[id] = mandatory
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	wanted := map[int64]bool{}
	for _, sel := range selection {
		wanted[sel.DocumentTypeID] = sel.Mandatory
	}

	for id, mandatory := range wanted {
		have, ok := current[id]
		switch {
		case !ok:
			_, err = tx.Exec(ctx, `
				INSERT INTO requirement_links (offering_id, document_type_id, mandatory)
				VALUES ($1,$2,$3)
			`, offeringID, id, mandatory)
		case have != mandatory:
			_, err = tx.Exec(ctx, `
				UPDATE requirement_links SET mandatory=$3
				WHERE offering_id=$1 AND document_type_id=$2
			`, offeringID, id, mandatory)
		}
		if err != nil {
			return err
		}
	}
	for id := range current {
		if _, ok := wanted[id]; ok {
			continue
		}
		_, err = tx.Exec(ctx, `
			DELETE FROM requirement_links WHERE offering_id=$1 AND document_type_id=$2
		`, offeringID, id)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}
