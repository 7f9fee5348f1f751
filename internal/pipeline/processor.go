// Package pipeline coordinates one email's journey from stored message to
// persisted work orders: AI extraction first, rule-based fallback second,
// duplicate resolution, insertion, and the email's terminal status.
package pipeline

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/fieldstack/workorder-tracker/constants"
	"github.com/fieldstack/workorder-tracker/internal/common"
	"github.com/fieldstack/workorder-tracker/internal/dedup"
	"github.com/fieldstack/workorder-tracker/internal/entity"
	"github.com/fieldstack/workorder-tracker/internal/llm"
	"github.com/fieldstack/workorder-tracker/internal/repository"
	"github.com/fieldstack/workorder-tracker/internal/rules"
)

// AIExtractor is the model-backed extraction stage. aiextract.Extractor
// satisfies it; tests substitute fakes.
type AIExtractor interface {
	Extract(ctx context.Context, email *entity.EmailMessage) (llm.Result, error)
}

// Capabilities reports which extraction paths this processor can take.
type Capabilities struct {
	CanUseAIExtraction bool
}

// ProcessResult is the outcome of processing one email.
type ProcessResult struct {
	EmailID                   uuid.UUID
	Status                    constants.EmailStatus
	Source                    string // "ai" or "rules"
	CreatedWorkOrders         []*entity.WorkOrder
	DuplicateWorkOrderNumbers []string
}

// Processor runs the extraction pipeline for a single email.
type Processor struct {
	logger *slog.Logger
	emails repository.EmailRepository
	orders repository.WorkOrderRepository
	ai     AIExtractor // nil disables the AI stage entirely
}

func NewProcessor(logger *slog.Logger, emails repository.EmailRepository, orders repository.WorkOrderRepository, ai AIExtractor) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{logger: logger, emails: emails, orders: orders, ai: ai}
}

func (p *Processor) Capabilities() Capabilities {
	return Capabilities{CanUseAIExtraction: p.ai != nil}
}

// Process extracts work orders from the email identified by emailID and
// persists the ones not already known to the tenant. The email's status is
// written only once the outcome is definitive; infrastructure errors leave
// it untouched so a retry starts clean.
//
// Every candidate is stamped with the caller's tenant before resolution,
// regardless of what extraction produced.
func (p *Processor) Process(ctx context.Context, emailID uuid.UUID, tenant *string) (*ProcessResult, error) {
	email, err := p.emails.GetByID(ctx, emailID)
	if err != nil {
		return nil, common.WrapError(err, "loading email")
	}
	if email == nil {
		return nil, common.NewAppError("NOT_FOUND", "email not found", common.ErrNotFound)
	}

	candidates, source := p.extract(ctx, email)
	for _, c := range candidates {
		c.UserID = tenant
	}

	res := &ProcessResult{EmailID: emailID, Source: source}

	if len(candidates) == 0 {
		// Nothing extractable is still a completed processing attempt.
		res.Status = constants.EmailStatusProcessed
		if err := p.emails.UpdateStatus(ctx, emailID, string(res.Status)); err != nil {
			return nil, common.WrapError(err, "updating email status")
		}
		p.logger.Info("pipeline.process.ok", "email_id", emailID, "source", source, "created", 0)
		return res, nil
	}

	resolution, err := dedup.Resolve(ctx, p.orders, tenant, candidates)
	if err != nil {
		return nil, common.WrapError(err, "resolving duplicates")
	}
	res.DuplicateWorkOrderNumbers = resolution.DuplicateNumbers

	for _, in := range resolution.ToInsert {
		created, err := p.orders.Create(ctx, in)
		if errors.Is(err, repository.ErrDuplicateNumber) {
			// Lost the race to a concurrent insert; same outcome as the
			// read-time check.
			p.logger.Info("pipeline.insert.duplicate", "email_id", emailID, "work_order_number", in.WorkOrderNumber)
			res.DuplicateWorkOrderNumbers = append(res.DuplicateWorkOrderNumbers, in.WorkOrderNumber)
			continue
		}
		if err != nil {
			return nil, common.WrapError(err, "inserting work order")
		}
		res.CreatedWorkOrders = append(res.CreatedWorkOrders, created)
	}

	res.Status = dedup.DeriveStatus(len(candidates), len(res.CreatedWorkOrders))
	if err := p.emails.UpdateStatus(ctx, emailID, string(res.Status)); err != nil {
		return nil, common.WrapError(err, "updating email status")
	}

	p.logger.Info("pipeline.process.ok",
		"email_id", emailID,
		"source", source,
		"status", string(res.Status),
		"candidates", len(candidates),
		"created", len(res.CreatedWorkOrders),
		"duplicates", len(res.DuplicateWorkOrderNumbers),
	)
	return res, nil
}

// extract runs the AI stage when available and falls back to the rule-based
// builder on any non-usable outcome. AI failures are logged and absorbed —
// an unreachable or misbehaving model never fails the email.
func (p *Processor) extract(ctx context.Context, email *entity.EmailMessage) ([]*entity.WorkOrderInput, string) {
	if p.ai != nil {
		result, err := p.ai.Extract(ctx, email)
		if err != nil {
			p.logger.Warn("pipeline.ai.failed", "email_id", email.ID, "err", err)
		} else if result.Status == llm.StatusOK && len(result.Orders) > 0 {
			return result.Orders, "ai"
		} else {
			p.logger.Info("pipeline.ai.fallback", "email_id", email.ID, "ai_status", result.Status.String())
		}
	}
	return rules.BuildFromEmail(email), "rules"
}
