// Package aiextract runs the AI tier of the pipeline: it gathers PDF text
// for one email, prompts the model, and maps the response to work-order
// inputs. All recoverable conditions come back as a tagged llm.Result; an
// error return means unexpected infrastructure failure and the caller is
// expected to fall back to the rule-based tier.
package aiextract

import (
	"context"
	"log/slog"
	"time"

	"github.com/fieldstack/workorder-tracker/constants"
	"github.com/fieldstack/workorder-tracker/internal/entity"
	"github.com/fieldstack/workorder-tracker/internal/fetch"
	"github.com/fieldstack/workorder-tracker/internal/llm"
	"github.com/fieldstack/workorder-tracker/internal/pdftext"
	"github.com/fieldstack/workorder-tracker/internal/rules"
)

// Config holds behavior knobs for the AI stage.
type Config struct {
	Enabled     bool
	MaxDocChars int    // per-document prompt cap; default constants.MaxDocChars
	Industry    string // industry-profile label for the prompt
	Examples    string // optional worked examples, injected verbatim
}

type Extractor struct {
	cfg    Config
	loader fetch.Loader
	pdf    *pdftext.Extractor
	client llm.ChatCompleter
	logger *slog.Logger
	now    func() time.Time
}

func New(cfg Config, loader fetch.Loader, pdf *pdftext.Extractor, client llm.ChatCompleter, logger *slog.Logger) *Extractor {
	if cfg.MaxDocChars <= 0 {
		cfg.MaxDocChars = constants.MaxDocChars
	}
	if logger == nil {
		logger = slog.Default()
	}
	if pdf == nil {
		pdf = pdftext.New(logger)
	}
	return &Extractor{
		cfg:    cfg,
		loader: loader,
		pdf:    pdf,
		client: client,
		logger: logger,
		now:    time.Now,
	}
}

// Extract runs the AI pipeline for one email. Attachments are processed in a
// simple sequential loop; a fetch or extraction failure on one attachment
// skips that attachment only.
func (e *Extractor) Extract(ctx context.Context, email *entity.EmailMessage) (llm.Result, error) {
	if !e.cfg.Enabled || e.client == nil {
		return llm.Result{Status: llm.StatusUnavailable}, nil
	}

	var docs []llm.Document
	var firstLink *string
	for _, att := range email.Attachments {
		if !rules.IsPDF(att.MimeType) {
			continue
		}
		data, err := e.loader.Load(ctx, att.StorageLocation)
		if err != nil {
			e.logger.Warn("aiextract.fetch.failed",
				"email_id", email.ID, "filename", att.Filename, "error", err)
			continue
		}
		text, err := e.pdf.Extract(data)
		if err != nil {
			e.logger.Warn("aiextract.pdftext.failed",
				"email_id", email.ID, "filename", att.Filename, "error", err)
			continue
		}
		docs = append(docs, llm.Document{
			Filename: att.Filename,
			Text:     truncate(text, e.cfg.MaxDocChars),
		})
		if firstLink == nil {
			loc := att.StorageLocation
			firstLink = &loc
		}
	}
	if len(docs) == 0 {
		e.logger.Info("aiextract.no_usable_pdfs", "email_id", email.ID, "attachments", len(email.Attachments))
		return llm.Result{Status: llm.StatusUnavailable}, nil
	}

	req := llm.ExtractRequest{
		Subject:    email.Subject,
		Body:       email.Body,
		Documents:  docs,
		ReceivedAt: email.ReceivedAt.UTC().Format("2006-01-02"),
		Industry:   e.cfg.Industry,
		Examples:   e.cfg.Examples,
	}

	content, err := e.client.CompleteJSON(ctx, llm.BuildSystemPrompt(req.Industry, req.Examples), llm.BuildUserPrompt(req))
	if err != nil {
		// Infrastructure failure (network, auth, rate limit): surface to the
		// orchestrator, which logs and falls back to rules.
		return llm.Result{}, err
	}

	env, err := llm.ParseResponse(content)
	if err != nil {
		e.logger.Warn("aiextract.parse.failed",
			"email_id", email.ID, "error", err, "content_len", len(content))
		return llm.Result{Status: llm.StatusParseFailure}, nil
	}
	if len(env.WorkOrders) == 0 {
		return llm.Result{Status: llm.StatusEmpty}, nil
	}

	now := e.now().UTC()
	orders := make([]*entity.WorkOrderInput, 0, len(env.WorkOrders))
	for _, f := range env.WorkOrders {
		orders = append(orders, llm.MapFields(f, firstLink, now))
	}
	e.logger.Info("aiextract.ok",
		"email_id", email.ID, "documents", len(docs), "orders", len(orders))
	return llm.Result{Status: llm.StatusOK, Orders: orders}, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
