package repository

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fieldstack/workorder-tracker/internal/entity"
)

// EmailRepository reads inbound emails and records their terminal status.
// GetByID returns (nil, nil) for an unknown id: "not found" is an outcome,
// not an error, per the pipeline contract.
type EmailRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entity.EmailMessage, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	ListIDsByStatus(ctx context.Context, status string) ([]uuid.UUID, error)
}

type emailRepository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewEmailRepository(pool *pgxpool.Pool, logger *slog.Logger) EmailRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &emailRepository{pool: pool, logger: logger}
}

func (r *emailRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.EmailMessage, error) {
	const q = `
		SELECT id, provider, external_id, from_address, to_address, subject,
		       COALESCE(body, ''), received_at, processing_status
		FROM email_messages WHERE id = $1`

	var e entity.EmailMessage
	err := r.pool.QueryRow(ctx, q, id).Scan(
		&e.ID, &e.Provider, &e.ExternalID, &e.FromAddress, &e.ToAddress,
		&e.Subject, &e.Body, &e.ReceivedAt, &e.ProcessingStatus,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("failed to load email", "email_id", id, "error", err)
		return nil, err
	}

	const qa = `
		SELECT id, filename, mime_type, size_bytes, storage_location
		FROM email_attachments WHERE email_id = $1 ORDER BY position`
	rows, err := r.pool.Query(ctx, qa, id)
	if err != nil {
		r.logger.Error("failed to load attachments", "email_id", id, "error", err)
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var a entity.EmailAttachment
		if err := rows.Scan(&a.ID, &a.Filename, &a.MimeType, &a.SizeBytes, &a.StorageLocation); err != nil {
			return nil, err
		}
		e.Attachments = append(e.Attachments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *emailRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	const q = `UPDATE email_messages SET processing_status = $2 WHERE id = $1`
	if _, err := r.pool.Exec(ctx, q, id, status); err != nil {
		r.logger.Error("failed to update email status", "email_id", id, "status", status, "error", err)
		return err
	}
	return nil
}

func (r *emailRepository) ListIDsByStatus(ctx context.Context, status string) ([]uuid.UUID, error) {
	const q = `SELECT id FROM email_messages WHERE processing_status = $1 ORDER BY received_at`
	rows, err := r.pool.Query(ctx, q, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
