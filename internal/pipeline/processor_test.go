package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/fieldstack/workorder-tracker/constants"
	"github.com/fieldstack/workorder-tracker/internal/common"
	"github.com/fieldstack/workorder-tracker/internal/entity"
	"github.com/fieldstack/workorder-tracker/internal/llm"
	"github.com/fieldstack/workorder-tracker/internal/repository"
)

type fakeAI struct {
	result llm.Result
	err    error
	calls  int
}

func (f *fakeAI) Extract(_ context.Context, _ *entity.EmailMessage) (llm.Result, error) {
	f.calls++
	return f.result, f.err
}

func strp(s string) *string { return &s }

func storedEmail(t *testing.T, emails *repository.MemoryEmailRepository, filenames ...string) *entity.EmailMessage {
	t.Helper()
	email := &entity.EmailMessage{
		ID:               uuid.New(),
		Provider:         "gmail",
		ExternalID:       "msg-100",
		FromAddress:      "dispatch@servicechannel.com",
		ToAddress:        "orders@acmefm.example",
		Subject:          "Service request",
		Body:             "See attached.",
		ReceivedAt:       time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
		ProcessingStatus: string(constants.EmailStatusNew),
	}
	for _, name := range filenames {
		email.Attachments = append(email.Attachments, entity.EmailAttachment{
			ID:              uuid.New(),
			Filename:        name,
			MimeType:        "application/pdf",
			SizeBytes:       1024,
			StorageLocation: "/blobs/" + name,
		})
	}
	emails.Put(email)
	return email
}

func aiOrder(number string) *entity.WorkOrderInput {
	return &entity.WorkOrderInput{
		WorkOrderNumber: number,
		CustomerName:    strp("Bluefin Grill #204"),
		ServiceAddress:  strp("88 Harbor Way, Tampa FL"),
		JobType:         strp("Plumbing"),
		Amount:          strp("450.00"),
		Currency:        "USD",
	}
}

func TestProcess_AISuccessCreatesWorkOrders(t *testing.T) {
	ctx := context.Background()
	emails := repository.NewMemoryEmailRepository()
	orders := repository.NewMemoryWorkOrderRepository()
	email := storedEmail(t, emails, "wo-555123.pdf")

	ai := &fakeAI{result: llm.Result{
		Status: llm.StatusOK,
		Orders: []*entity.WorkOrderInput{aiOrder("555123")},
	}}
	p := NewProcessor(nil, emails, orders, ai)

	tenant := strp("tenant-1")
	res, err := p.Process(ctx, email.ID, tenant)
	if err != nil {
		t.Fatal(err)
	}
	if res.Source != "ai" {
		t.Errorf("source = %q, want ai", res.Source)
	}
	if len(res.CreatedWorkOrders) != 1 {
		t.Fatalf("created = %d, want 1", len(res.CreatedWorkOrders))
	}
	created := res.CreatedWorkOrders[0]
	if created.WorkOrderNumber != "555123" {
		t.Errorf("number = %q", created.WorkOrderNumber)
	}
	if created.UserID == nil || *created.UserID != "tenant-1" {
		t.Errorf("tenant not stamped onto created record: %v", created.UserID)
	}
	if res.Status != constants.EmailStatusProcessed {
		t.Errorf("status = %q", res.Status)
	}
	if got := emails.Status(email.ID); got != string(constants.EmailStatusProcessed) {
		t.Errorf("stored email status = %q", got)
	}
}

func TestProcess_AIFailureFallsBackToRules(t *testing.T) {
	ctx := context.Background()
	emails := repository.NewMemoryEmailRepository()
	orders := repository.NewMemoryWorkOrderRepository()
	email := storedEmail(t, emails, "1898060.pdf")

	for name, ai := range map[string]*fakeAI{
		"infrastructure error": {err: errors.New("connection refused")},
		"unavailable":          {result: llm.Result{Status: llm.StatusUnavailable}},
		"parse failure":        {result: llm.Result{Status: llm.StatusParseFailure}},
		"empty result":         {result: llm.Result{Status: llm.StatusEmpty}},
	} {
		t.Run(name, func(t *testing.T) {
			p := NewProcessor(nil, emails, orders, ai)
			res, err := p.Process(ctx, email.ID, nil)
			if err != nil {
				t.Fatal(err)
			}
			if res.Source != "rules" {
				t.Errorf("source = %q, want rules", res.Source)
			}
			if ai.calls != 1 {
				t.Errorf("AI called %d times", ai.calls)
			}
			// First subtest inserts; later ones see it as a duplicate. Either
			// way the number came from the attachment filename.
			if len(res.CreatedWorkOrders) == 1 {
				if got := res.CreatedWorkOrders[0].WorkOrderNumber; got != "1898060" {
					t.Errorf("number = %q, want 1898060", got)
				}
			} else if len(res.DuplicateWorkOrderNumbers) != 1 || res.DuplicateWorkOrderNumbers[0] != "1898060" {
				t.Errorf("unexpected result: %+v", res)
			}
		})
	}
}

func TestProcess_NilAIUsesRules(t *testing.T) {
	ctx := context.Background()
	emails := repository.NewMemoryEmailRepository()
	orders := repository.NewMemoryWorkOrderRepository()
	email := storedEmail(t, emails, "wo-444222.pdf")

	p := NewProcessor(nil, emails, orders, nil)
	if p.Capabilities().CanUseAIExtraction {
		t.Error("capabilities must report AI disabled")
	}
	res, err := p.Process(ctx, email.ID, nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.Source != "rules" || len(res.CreatedWorkOrders) != 1 {
		t.Fatalf("result = %+v", res)
	}
	if got := res.CreatedWorkOrders[0].WorkOrderNumber; got != "444222" {
		t.Errorf("number = %q", got)
	}
}

func TestProcess_ReprocessingIsSkippedDuplicate(t *testing.T) {
	ctx := context.Background()
	emails := repository.NewMemoryEmailRepository()
	orders := repository.NewMemoryWorkOrderRepository()
	email := storedEmail(t, emails, "wo-555123.pdf")

	ai := &fakeAI{result: llm.Result{
		Status: llm.StatusOK,
		Orders: []*entity.WorkOrderInput{aiOrder("555123"), aiOrder("555124")},
	}}
	p := NewProcessor(nil, emails, orders, ai)
	tenant := strp("tenant-1")

	if _, err := p.Process(ctx, email.ID, tenant); err != nil {
		t.Fatal(err)
	}
	// The fake returns fresh Result values but the same Order pointers; the
	// second pass restamps them, which is exactly what reprocessing does.
	ai.result.Orders = []*entity.WorkOrderInput{aiOrder("555123"), aiOrder("555124")}

	res, err := p.Process(ctx, email.ID, tenant)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.CreatedWorkOrders) != 0 {
		t.Errorf("reprocessing created %d records", len(res.CreatedWorkOrders))
	}
	if len(res.DuplicateWorkOrderNumbers) != 2 {
		t.Errorf("duplicates = %v", res.DuplicateWorkOrderNumbers)
	}
	if res.Status != constants.EmailStatusSkippedDuplicate {
		t.Errorf("status = %q, want %q", res.Status, constants.EmailStatusSkippedDuplicate)
	}
	if got := emails.Status(email.ID); got != string(constants.EmailStatusSkippedDuplicate) {
		t.Errorf("stored email status = %q", got)
	}

	all, err := orders.List(ctx, tenant, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Errorf("total persisted = %d, want 2", len(all))
	}
}

func TestProcess_PartialDuplicatesStillProcessed(t *testing.T) {
	ctx := context.Background()
	emails := repository.NewMemoryEmailRepository()
	orders := repository.NewMemoryWorkOrderRepository()
	email := storedEmail(t, emails, "wo.pdf")

	pre := aiOrder("555123")
	if _, err := orders.Create(ctx, pre); err != nil { // nil tenant
		t.Fatal(err)
	}

	ai := &fakeAI{result: llm.Result{
		Status: llm.StatusOK,
		Orders: []*entity.WorkOrderInput{aiOrder("555123"), aiOrder("999000")},
	}}
	p := NewProcessor(nil, emails, orders, ai)

	res, err := p.Process(ctx, email.ID, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.CreatedWorkOrders) != 1 || res.CreatedWorkOrders[0].WorkOrderNumber != "999000" {
		t.Errorf("created = %+v", res.CreatedWorkOrders)
	}
	if len(res.DuplicateWorkOrderNumbers) != 1 || res.DuplicateWorkOrderNumbers[0] != "555123" {
		t.Errorf("duplicates = %v", res.DuplicateWorkOrderNumbers)
	}
	if res.Status != constants.EmailStatusProcessed {
		t.Errorf("status = %q", res.Status)
	}
}

func TestProcess_NoPDFAttachmentsIsProcessedWithNothing(t *testing.T) {
	ctx := context.Background()
	emails := repository.NewMemoryEmailRepository()
	orders := repository.NewMemoryWorkOrderRepository()

	email := &entity.EmailMessage{
		ID:               uuid.New(),
		Subject:          "Invoice attached",
		ReceivedAt:       time.Now().UTC(),
		ProcessingStatus: string(constants.EmailStatusNew),
		Attachments: []entity.EmailAttachment{
			{ID: uuid.New(), Filename: "photo.jpg", MimeType: "image/jpeg"},
		},
	}
	emails.Put(email)

	ai := &fakeAI{result: llm.Result{Status: llm.StatusUnavailable}}
	p := NewProcessor(nil, emails, orders, ai)

	res, err := p.Process(ctx, email.ID, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.CreatedWorkOrders) != 0 || len(res.DuplicateWorkOrderNumbers) != 0 {
		t.Errorf("result = %+v", res)
	}
	if res.Status != constants.EmailStatusProcessed {
		t.Errorf("status = %q", res.Status)
	}
	if got := emails.Status(email.ID); got != string(constants.EmailStatusProcessed) {
		t.Errorf("stored email status = %q", got)
	}
}

func TestProcess_UnknownEmailIsNotFound(t *testing.T) {
	p := NewProcessor(nil, repository.NewMemoryEmailRepository(), repository.NewMemoryWorkOrderRepository(), nil)
	_, err := p.Process(context.Background(), uuid.New(), nil)
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestProcess_TenantOverridesExtractedOwner(t *testing.T) {
	ctx := context.Background()
	emails := repository.NewMemoryEmailRepository()
	orders := repository.NewMemoryWorkOrderRepository()
	email := storedEmail(t, emails, "wo.pdf")

	stray := aiOrder("321321")
	stray.UserID = strp("someone-else")
	ai := &fakeAI{result: llm.Result{Status: llm.StatusOK, Orders: []*entity.WorkOrderInput{stray}}}
	p := NewProcessor(nil, emails, orders, ai)

	res, err := p.Process(ctx, email.ID, strp("tenant-9"))
	if err != nil {
		t.Fatal(err)
	}
	if got := res.CreatedWorkOrders[0].UserID; got == nil || *got != "tenant-9" {
		t.Errorf("owner = %v, want tenant-9", got)
	}
}
