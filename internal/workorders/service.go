// Package workorders handles work-order business logic behind the API
// surface: validation, listing filters, and deletion scoped to a tenant.
package workorders

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fieldstack/workorder-tracker/constants"
	"github.com/fieldstack/workorder-tracker/internal/common"
	"github.com/fieldstack/workorder-tracker/internal/entity"
	"github.com/fieldstack/workorder-tracker/internal/repository"
)

// Service handles work-order business logic.
type Service struct {
	orders repository.WorkOrderRepository
	logger *slog.Logger
}

func NewService(orders repository.WorkOrderRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{orders: orders, logger: logger}
}

// ListRequest carries listing filters. Dates are inclusive bounds on
// CreatedAt.
type ListRequest struct {
	Tenant   *string
	FromDate *time.Time
	ToDate   *time.Time
}

// List returns the tenant's work orders, newest first.
func (s *Service) List(ctx context.Context, req ListRequest) ([]*entity.WorkOrder, error) {
	recs, err := s.orders.List(ctx, req.Tenant, req.FromDate, req.ToDate)
	if err != nil {
		s.logger.Error("workorders.list.failed", "error", err)
		return nil, common.WrapError(err, "list work orders")
	}
	s.logger.Info("workorders.list.ok", "count", len(recs))
	return recs, nil
}

// Create validates and persists a manually entered work order. The number
// is the only required field; currency defaults when absent. A duplicate
// number within the tenant surfaces as repository.ErrDuplicateNumber.
func (s *Service) Create(ctx context.Context, in *entity.WorkOrderInput) (*entity.WorkOrder, error) {
	if strings.TrimSpace(in.WorkOrderNumber) == "" {
		return nil, common.NewAppError("VALIDATION", "work_order_number is required", common.ErrValidation)
	}
	if in.Currency == "" {
		in.Currency = constants.DefaultCurrency
	}
	if in.TimestampExtracted.IsZero() {
		in.TimestampExtracted = time.Now().UTC()
	}

	created, err := s.orders.Create(ctx, in)
	if err != nil {
		s.logger.Error("workorders.create.failed", "work_order_number", in.WorkOrderNumber, "error", err)
		return nil, err
	}
	s.logger.Info("workorders.create.ok", "id", created.ID, "work_order_number", created.WorkOrderNumber)
	return created, nil
}

// Get returns one work order by id, tenant-checked.
func (s *Service) Get(ctx context.Context, id uuid.UUID, tenant *string) (*entity.WorkOrder, error) {
	rec, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, common.WrapError(err, "get work order")
	}
	if rec == nil || !sameTenant(rec.UserID, tenant) {
		return nil, common.NewAppError("NOT_FOUND", "work order not found", common.ErrNotFound)
	}
	return rec, nil
}

// Delete removes one work order. Idempotent: a missing record, or one the
// tenant does not own, is a no-op.
func (s *Service) Delete(ctx context.Context, id uuid.UUID, tenant *string) error {
	if err := s.orders.Delete(ctx, id, tenant); err != nil {
		s.logger.Error("workorders.delete.failed", "id", id, "error", err)
		return err
	}
	s.logger.Info("workorders.delete.ok", "id", id)
	return nil
}

func sameTenant(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
