package llm

import "github.com/fieldstack/workorder-tracker/internal/entity"

// Status tags the outcome of an AI extraction attempt so the orchestrator's
// fallback decision stays explicit instead of null-punning.
type Status int

const (
	// StatusOK: the model returned a well-formed, non-empty order list.
	StatusOK Status = iota
	// StatusEmpty: well-formed response, but the model found no work orders.
	// Distinct from a parse failure; both fall back to rules.
	StatusEmpty
	// StatusUnavailable: AI was never attempted — disabled by configuration,
	// no PDF attachments, or no attachment yielded usable text.
	StatusUnavailable
	// StatusParseFailure: the model's output was malformed (bad JSON or a
	// missing/non-array 'workOrders' field).
	StatusParseFailure
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusEmpty:
		return "empty"
	case StatusUnavailable:
		return "unavailable"
	case StatusParseFailure:
		return "parse_failure"
	default:
		return "unknown"
	}
}

// Result is the tagged outcome of one AI extraction attempt.
type Result struct {
	Status Status
	Orders []*entity.WorkOrderInput
}
