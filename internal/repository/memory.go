package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fieldstack/workorder-tracker/internal/entity"
)

// In-memory implementations, used by tests and the batch dry-run mode.

type MemoryEmailRepository struct {
	mu     sync.Mutex
	emails map[uuid.UUID]*entity.EmailMessage
}

func NewMemoryEmailRepository() *MemoryEmailRepository {
	return &MemoryEmailRepository{emails: make(map[uuid.UUID]*entity.EmailMessage)}
}

func (r *MemoryEmailRepository) Put(email *entity.EmailMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.emails[email.ID] = email
}

func (r *MemoryEmailRepository) GetByID(_ context.Context, id uuid.UUID) (*entity.EmailMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.emails[id]
	if !ok {
		return nil, nil
	}
	cp := *e
	return &cp, nil
}

func (r *MemoryEmailRepository) UpdateStatus(_ context.Context, id uuid.UUID, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.emails[id]; ok {
		e.ProcessingStatus = status
	}
	return nil
}

func (r *MemoryEmailRepository) ListIDsByStatus(_ context.Context, status string) ([]uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []uuid.UUID
	for id, e := range r.emails {
		if e.ProcessingStatus == status {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// Status returns the stored processing status, for test assertions.
func (r *MemoryEmailRepository) Status(id uuid.UUID) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.emails[id]; ok {
		return e.ProcessingStatus
	}
	return ""
}

type MemoryWorkOrderRepository struct {
	mu     sync.Mutex
	orders []*entity.WorkOrder
}

func NewMemoryWorkOrderRepository() *MemoryWorkOrderRepository {
	return &MemoryWorkOrderRepository{}
}

func sameTenant(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func (r *MemoryWorkOrderRepository) Create(_ context.Context, in *entity.WorkOrderInput) (*entity.WorkOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	wo := &entity.WorkOrder{
		ID:             uuid.New(),
		CreatedAt:      time.Now().UTC(),
		WorkOrderInput: *in,
	}
	r.orders = append(r.orders, wo)
	return wo, nil
}

func (r *MemoryWorkOrderRepository) FindNumbers(_ context.Context, tenant *string, numbers []string) (map[string]struct{}, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	want := make(map[string]struct{}, len(numbers))
	for _, n := range numbers {
		want[n] = struct{}{}
	}
	existing := make(map[string]struct{})
	for _, wo := range r.orders {
		if !sameTenant(wo.UserID, tenant) {
			continue
		}
		if _, ok := want[wo.WorkOrderNumber]; ok {
			existing[wo.WorkOrderNumber] = struct{}{}
		}
	}
	return existing, nil
}

func (r *MemoryWorkOrderRepository) List(_ context.Context, tenant *string, from, to *time.Time) ([]*entity.WorkOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.WorkOrder
	for _, wo := range r.orders {
		if !sameTenant(wo.UserID, tenant) {
			continue
		}
		if from != nil && wo.CreatedAt.Before(*from) {
			continue
		}
		if to != nil && wo.CreatedAt.After(*to) {
			continue
		}
		cp := *wo
		out = append(out, &cp)
	}
	return out, nil
}

func (r *MemoryWorkOrderRepository) GetByID(_ context.Context, id uuid.UUID) (*entity.WorkOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, wo := range r.orders {
		if wo.ID == id {
			cp := *wo
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *MemoryWorkOrderRepository) Delete(_ context.Context, id uuid.UUID, tenant *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, wo := range r.orders {
		if wo.ID == id && sameTenant(wo.UserID, tenant) {
			r.orders = append(r.orders[:i], r.orders[i+1:]...)
			return nil
		}
	}
	return nil
}
