package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/kirillkom/judgment-assistant/internal/core/domain"
)

type DocumentRepository struct {
	db *sql.DB
}

func NewDocumentRepository(db *sql.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func (r *DocumentRepository) Create(ctx context.Context, doc *domain.Document) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO documents (id, filename, mime_type, storage_path, pages, extraction_method, status, error_message, created_at, updated_at)
VALUES (?,?,?,?,?,?,?,?,?,?)`,
		doc.ID, doc.Filename, doc.MimeType, doc.StoragePath, doc.Pages, doc.Method,
		string(doc.Status), doc.Error, doc.CreatedAt.UTC(), doc.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	var doc domain.Document
	var status string
	err := r.db.QueryRowContext(ctx, `
SELECT id, filename, mime_type, storage_path, pages, extraction_method, status, error_message, created_at, updated_at
FROM documents WHERE id = ?`, id).Scan(
		&doc.ID, &doc.Filename, &doc.MimeType, &doc.StoragePath, &doc.Pages, &doc.Method,
		&status, &doc.Error, &doc.CreatedAt, &doc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrDocumentNotFound, "get document", fmt.Errorf("id=%s", id))
		}
		return nil, fmt.Errorf("scan document: %w", err)
	}
	doc.Status = domain.DocumentStatus(status)
	return &doc, nil
}

func (r *DocumentRepository) UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus, errMessage string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE documents SET status = ?, error_message = ?, updated_at = ? WHERE id = ?`,
		string(status), errMessage, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update document status: %w", err)
	}
	return requireRow(result, "update document status", id)
}

func (r *DocumentRepository) SaveSourceInfo(ctx context.Context, id string, pages int, method string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE documents SET pages = ?, extraction_method = ?, updated_at = ? WHERE id = ?`,
		pages, method, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("save source info: %w", err)
	}
	return requireRow(result, "save source info", id)
}

func requireRow(result sql.Result, op, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", op, err)
	}
	if rows == 0 {
		return domain.WrapError(domain.ErrDocumentNotFound, op, fmt.Errorf("id=%s", id))
	}
	return nil
}
