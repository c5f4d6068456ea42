package repository

import (
	"context"

	"github.com/farisali522/birojasaapp/internal/db"
	"github.com/farisali522/birojasaapp/internal/domain"
	"github.com/farisali522/birojasaapp/internal/ports"
)

type DocumentRepository struct {
	DB *db.Postgres
}

func (r DocumentRepository) ListByRequest(ctx context.Context, requestID int64) ([]domain.UploadedDocument, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT d.id, d.code, d.request_id, d.document_type_id, t.name,
		       d.file_path, d.status, d.revision_note, d.created_at, d.updated_at
		FROM uploaded_documents d
		JOIN document_types t ON t.id = d.document_type_id
		WHERE d.request_id = $1
		ORDER BY t.name
	`, requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.UploadedDocument
	for rows.Next() {
		var d domain.UploadedDocument
		err := rows.Scan(&d.ID, &d.Code, &d.RequestID, &d.DocumentTypeID, &d.DocumentName,
			&d.FilePath, &d.Status, &d.RevisionNote, &d.CreatedAt, &d.UpdatedAt)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Upsert relies on the (request_id, document_type_id) unique key: a resubmitted
// document replaces the stored file and drops any pending revision note.
func (r DocumentRepository) Upsert(ctx context.Context, in ports.UpsertDocumentInput) (*domain.UploadedDocument, error) {
	var d domain.UploadedDocument
	err := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO uploaded_documents (code, request_id, document_type_id, file_path, status, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5, now(), now())
		ON CONFLICT (request_id, document_type_id) DO UPDATE
		SET file_path = EXCLUDED.file_path,
		    status = EXCLUDED.status,
		    revision_note = '',
		    updated_at = now()
		RETURNING id, code, request_id, document_type_id, file_path, status, revision_note, created_at, updated_at
	`, in.Code, in.RequestID, in.DocumentTypeID, in.FilePath, in.Status).
		Scan(&d.ID, &d.Code, &d.RequestID, &d.DocumentTypeID, &d.FilePath, &d.Status,
			&d.RevisionNote, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r DocumentRepository) MarkNeedsRevision(ctx context.Context, requestID, documentTypeID int64, note string) error {
	tag, err := r.DB.Pool.Exec(ctx, `
		UPDATE uploaded_documents SET status=$3, revision_note=$4, updated_at=now()
		WHERE request_id=$1 AND document_type_id=$2
	`, requestID, documentTypeID, domain.DocumentNeedsRevision, note)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ports.ErrNotFound
	}
	return nil
}
