package llm

import "context"

// WorkOrderFields is the normalized per-order shape we want from the LLM.
// Missing fields arrive as empty strings (the prompt forbids nulls) and map
// to nil pointers downstream.
type WorkOrderFields struct {
	WorkOrderNumber string `json:"work_order_number"`
	CustomerName    string `json:"customer_name"`
	VendorName      string `json:"vendor_name"` // facility-management platform, never the contractor
	ServiceAddress  string `json:"service_address"`
	JobType         string `json:"job_type"`
	JobDescription  string `json:"job_description"`
	ScheduledDate   string `json:"scheduled_date"` // YYYY-MM-DD
	Amount          string `json:"amount"`
	NTEAmount       string `json:"nte_amount"`
	Currency        string `json:"currency"`
	Notes           string `json:"notes"`
	Priority        string `json:"priority"`
}

// Envelope is the exact top-level JSON shape the model must return.
type Envelope struct {
	WorkOrders []WorkOrderFields `json:"workOrders"`
}

// Document is one PDF's text, labeled by filename in the prompt.
type Document struct {
	Filename string
	Text     string
}

// ExtractRequest carries everything the prompt builder needs for one email.
type ExtractRequest struct {
	Subject    string
	Body       string
	Documents  []Document
	ReceivedAt string // YYYY-MM-DD, the model's fallback scheduled date

	Industry string // industry-profile label, e.g. "facility maintenance"
	Examples string // optional worked examples, injected verbatim
}

// ChatCompleter is the model transport the extractor depends on. It returns
// the raw completion text; parsing and validation happen in this package.
type ChatCompleter interface {
	CompleteJSON(ctx context.Context, system, user string) (string, error)
}
