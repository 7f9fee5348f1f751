package repository

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fieldstack/workorder-tracker/internal/entity"
)

// ErrDuplicateNumber is returned by Create when the storage layer carries a
// unique (tenant, number) backstop constraint and it fired. Duplicate
// suppression is primarily application-level (internal/dedup); this exists
// so a constraint violation reads as "duplicate, discard", never as a fatal
// processing error.
var ErrDuplicateNumber = errors.New("work order number already exists for tenant")

// WorkOrderRepository persists extracted work orders, scoped by tenant.
// A nil tenant is its own isolated scope (anonymous usage).
type WorkOrderRepository interface {
	Create(ctx context.Context, in *entity.WorkOrderInput) (*entity.WorkOrder, error)
	FindNumbers(ctx context.Context, tenant *string, numbers []string) (map[string]struct{}, error)
	List(ctx context.Context, tenant *string, from, to *time.Time) ([]*entity.WorkOrder, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.WorkOrder, error)
	Delete(ctx context.Context, id uuid.UUID, tenant *string) error
}

type workOrderRepository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewWorkOrderRepository(pool *pgxpool.Pool, logger *slog.Logger) WorkOrderRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &workOrderRepository{pool: pool, logger: logger}
}

const workOrderColumns = `
	id, work_order_number, customer_name, vendor_name, service_address,
	job_type, job_description, scheduled_date, amount, currency, notes,
	priority, work_order_pdf_link, timestamp_extracted, user_id, created_at`

func (r *workOrderRepository) Create(ctx context.Context, in *entity.WorkOrderInput) (*entity.WorkOrder, error) {
	const q = `
		INSERT INTO work_orders (
			id, work_order_number, customer_name, vendor_name, service_address,
			job_type, job_description, scheduled_date, amount, currency, notes,
			priority, work_order_pdf_link, timestamp_extracted, user_id, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)`

	wo := &entity.WorkOrder{
		ID:             uuid.New(),
		CreatedAt:      time.Now().UTC(),
		WorkOrderInput: *in,
	}
	_, err := r.pool.Exec(ctx, q,
		wo.ID, wo.WorkOrderNumber, wo.CustomerName, wo.VendorName, wo.ServiceAddress,
		wo.JobType, wo.JobDescription, wo.ScheduledDate, wo.Amount, wo.Currency, wo.Notes,
		wo.Priority, wo.WorkOrderPdfLink, wo.TimestampExtracted, wo.UserID, wo.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrDuplicateNumber
		}
		r.logger.Error("failed to insert work order", "number", wo.WorkOrderNumber, "error", err)
		return nil, err
	}
	return wo, nil
}

// FindNumbers returns the subset of numbers already persisted for the
// tenant. Matching is exact and case-sensitive; IS NOT DISTINCT FROM keeps
// the nil tenant isolated from every real one.
func (r *workOrderRepository) FindNumbers(ctx context.Context, tenant *string, numbers []string) (map[string]struct{}, error) {
	existing := make(map[string]struct{}, len(numbers))
	if len(numbers) == 0 {
		return existing, nil
	}
	const q = `
		SELECT work_order_number FROM work_orders
		WHERE user_id IS NOT DISTINCT FROM $1 AND work_order_number = ANY($2)`
	rows, err := r.pool.Query(ctx, q, tenant, numbers)
	if err != nil {
		r.logger.Error("failed to query existing numbers", "error", err)
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		existing[n] = struct{}{}
	}
	return existing, rows.Err()
}

func (r *workOrderRepository) List(ctx context.Context, tenant *string, from, to *time.Time) ([]*entity.WorkOrder, error) {
	q := `SELECT ` + workOrderColumns + ` FROM work_orders WHERE user_id IS NOT DISTINCT FROM $1`
	args := []any{tenant}
	if from != nil {
		args = append(args, *from)
		q += ` AND created_at >= $2`
	}
	if to != nil {
		args = append(args, *to)
		if from != nil {
			q += ` AND created_at <= $3`
		} else {
			q += ` AND created_at <= $2`
		}
	}
	q += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		r.logger.Error("failed to list work orders", "error", err)
		return nil, err
	}
	defer rows.Close()

	var out []*entity.WorkOrder
	for rows.Next() {
		wo, err := scanWorkOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, wo)
	}
	return out, rows.Err()
}

func (r *workOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.WorkOrder, error) {
	q := `SELECT ` + workOrderColumns + ` FROM work_orders WHERE id = $1`
	row := r.pool.QueryRow(ctx, q, id)
	wo, err := scanWorkOrder(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return wo, err
}

func (r *workOrderRepository) Delete(ctx context.Context, id uuid.UUID, tenant *string) error {
	const q = `DELETE FROM work_orders WHERE id = $1 AND user_id IS NOT DISTINCT FROM $2`
	_, err := r.pool.Exec(ctx, q, id, tenant)
	return err
}

func scanWorkOrder(row pgx.Row) (*entity.WorkOrder, error) {
	var wo entity.WorkOrder
	err := row.Scan(
		&wo.ID, &wo.WorkOrderNumber, &wo.CustomerName, &wo.VendorName, &wo.ServiceAddress,
		&wo.JobType, &wo.JobDescription, &wo.ScheduledDate, &wo.Amount, &wo.Currency, &wo.Notes,
		&wo.Priority, &wo.WorkOrderPdfLink, &wo.TimestampExtracted, &wo.UserID, &wo.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &wo, nil
}
