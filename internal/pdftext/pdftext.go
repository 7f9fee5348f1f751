// Package pdftext turns a raw PDF byte buffer into plain text.
//
// Extraction is an ordered cascade of engines sharing a uniform
// (bytes) -> (text, error) contract: the whole-document text-layer engine is
// tried first, then a page-by-page engine. Adding a future engine (OCR, a
// remote service) is a list append. The package never touches the
// filesystem; callers pass buffers so the same code runs in serverless
// deployments.
package pdftext

import (
	"fmt"
	"log/slog"
	"strings"
)

// ReasonEmptyText is the ExtractionError reason used when every engine
// parsed the document but none produced any text.
const ReasonEmptyText = "EMPTY_TEXT_FROM_PDF"

// Engine is a single text-extraction strategy.
type Engine struct {
	Name    string
	Extract func(data []byte) (string, error)
}

// ExtractionError reports total extraction failure: every engine in the
// cascade either failed or yielded empty text. Attempts carries one message
// per engine for diagnostics.
type ExtractionError struct {
	Reason   string
	Attempts []string
}

func (e *ExtractionError) Error() string {
	if len(e.Attempts) == 0 {
		return "pdftext: " + e.Reason
	}
	return fmt.Sprintf("pdftext: %s (%s)", e.Reason, strings.Join(e.Attempts, "; "))
}

// Extractor runs the engine cascade.
type Extractor struct {
	engines []Engine
	logger  *slog.Logger
}

// New returns an Extractor with the default two-engine cascade.
func New(logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{
		engines: []Engine{
			{Name: "text-layer", Extract: textLayer},
			{Name: "page-by-page", Extract: pageByPage},
		},
		logger: logger,
	}
}

// NewWithEngines returns an Extractor over a caller-supplied cascade.
func NewWithEngines(logger *slog.Logger, engines ...Engine) *Extractor {
	e := New(logger)
	e.engines = engines
	return e
}

// Extract returns the first engine's non-empty trimmed text. It fails only
// when every engine fails or yields empty text.
func (x *Extractor) Extract(data []byte) (string, error) {
	attempts := make([]string, 0, len(x.engines))
	sawEmpty := false

	for _, eng := range x.engines {
		text, err := runEngine(eng, data)
		if err != nil {
			x.logger.Debug("pdftext.engine.failed", "engine", eng.Name, "error", err)
			attempts = append(attempts, fmt.Sprintf("%s: %v", eng.Name, err))
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			sawEmpty = true
			attempts = append(attempts, eng.Name+": empty text")
			continue
		}
		return text, nil
	}

	reason := "ALL_ENGINES_FAILED"
	if sawEmpty {
		reason = ReasonEmptyText
	}
	return "", &ExtractionError{Reason: reason, Attempts: attempts}
}

// runEngine converts engine panics to errors; ledongthuc/pdf panics on some
// malformed content streams.
func runEngine(eng Engine, data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return eng.Extract(data)
}
