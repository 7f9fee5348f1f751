// workorder-batch processes every stored email still marked "new" through
// the extraction pipeline, then optionally exports the resulting work
// orders to a CSV or XLSX file.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/fieldstack/workorder-tracker/constants"
	"github.com/fieldstack/workorder-tracker/internal/aiextract"
	"github.com/fieldstack/workorder-tracker/internal/common"
	"github.com/fieldstack/workorder-tracker/internal/entity"
	"github.com/fieldstack/workorder-tracker/internal/export"
	"github.com/fieldstack/workorder-tracker/internal/fetch"
	"github.com/fieldstack/workorder-tracker/internal/llm/openai"
	"github.com/fieldstack/workorder-tracker/internal/pdftext"
	"github.com/fieldstack/workorder-tracker/internal/pipeline"
	"github.com/fieldstack/workorder-tracker/internal/repository"
)

func main() {
	var (
		tenantFlag = flag.String("tenant", "", "tenant id to process and export under (empty = anonymous scope)")
		outFlag    = flag.String("out", "", "export file path; .csv or .xlsx extension selects the format")
		noAIFlag   = flag.Bool("no-ai", false, "skip AI extraction and use only the rule-based path")
		dryRunFlag = flag.Bool("dry-run", false, "extract but persist nothing; pairs with -out to preview results")
	)
	flag.Parse()

	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if cfg.Database.DSN == "" {
		fmt.Fprintln(os.Stderr, "DB_URL is required")
		os.Exit(1)
	}

	ctx := context.Background()
	pool, err := repository.Open(ctx, repository.Config(cfg.Database), logger)
	if err != nil {
		logger.Error("database connection failed", "err", err)
		os.Exit(1)
	}
	defer repository.Close(pool, logger)

	emails := repository.NewEmailRepository(pool, logger)
	var orders repository.WorkOrderRepository = repository.NewWorkOrderRepository(pool, logger)
	if *dryRunFlag {
		// Candidates land in a throwaway store and email statuses stay put.
		orders = repository.NewMemoryWorkOrderRepository()
		emails = readOnlyEmails{emails}
	}

	var ai pipeline.AIExtractor
	if cfg.LLM.Enabled() && !*noAIFlag {
		client := openai.NewClient(openai.Config{
			APIKey:      cfg.LLM.APIKey,
			BaseURL:     cfg.LLM.BaseURL,
			Model:       cfg.LLM.Model,
			Temperature: cfg.LLM.Temperature,
			Timeout:     cfg.LLM.Timeout,
		}, logger)
		ai = aiextract.New(aiextract.Config{
			Enabled:  true,
			Industry: cfg.LLM.Industry,
			Examples: cfg.LLM.IndustryExamples,
		}, fetch.NewStorageLoader(nil), pdftext.New(logger), client, logger)
	}
	processor := pipeline.NewProcessor(logger, emails, orders, ai)

	var tenant *string
	if *tenantFlag != "" {
		tenant = tenantFlag
	}

	ids, err := emails.ListIDsByStatus(ctx, string(constants.EmailStatusNew))
	if err != nil {
		logger.Error("listing pending emails failed", "err", err)
		os.Exit(1)
	}
	logger.Info("batch starting", "pending", len(ids), "ai", processor.Capabilities().CanUseAIExtraction)

	var created, duplicates, failed int
	for _, id := range ids {
		res, err := processor.Process(ctx, id, tenant)
		if err != nil {
			// One bad email must not sink the batch.
			logger.Error("processing failed", "email_id", id, "err", err)
			failed++
			continue
		}
		created += len(res.CreatedWorkOrders)
		duplicates += len(res.DuplicateWorkOrderNumbers)
	}
	logger.Info("batch finished", "emails", len(ids), "created", created, "duplicates", duplicates, "failed", failed)

	if *outFlag != "" {
		if err := writeExport(ctx, orders, tenant, *outFlag, *dryRunFlag); err != nil {
			logger.Error("export failed", "path", *outFlag, "err", err)
			os.Exit(1)
		}
		logger.Info("export written", "path", *outFlag)
	}
	if failed > 0 {
		os.Exit(1)
	}
}

func writeExport(ctx context.Context, orders repository.WorkOrderRepository, tenant *string, path string, dryRun bool) error {
	recs, err := orders.List(ctx, tenant, nil, nil)
	if err != nil {
		return err
	}
	var data []byte
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		if dryRun {
			// Nothing was persisted, so report extraction-time records.
			inputs := make([]*entity.WorkOrderInput, 0, len(recs))
			for _, wo := range recs {
				in := wo.WorkOrderInput
				inputs = append(inputs, &in)
			}
			data = []byte(export.WorkOrderInputsCSV(inputs))
			break
		}
		data = []byte(export.WorkOrdersCSV(recs))
	case ".xlsx":
		data, err = export.WorkOrdersXLSX(recs)
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported export extension %q", ext)
	}
	return os.WriteFile(path, data, 0o644)
}

// readOnlyEmails suppresses status writes for dry runs.
type readOnlyEmails struct {
	repository.EmailRepository
}

func (readOnlyEmails) UpdateStatus(context.Context, uuid.UUID, string) error { return nil }
