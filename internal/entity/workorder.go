package entity

import (
	"time"

	"github.com/google/uuid"
)

// WorkOrderInput is the pipeline's structured output, pre-persistence.
// WorkOrderNumber is always non-empty: when no business identifier can be
// located anywhere, the pipeline fabricates a deterministic placeholder so
// the record is never silently dropped. All other fields are optional.
//
// UserID is the tenant scope; nil means unauthenticated/free-tier usage,
// which is its own isolated scope for duplicate detection.
type WorkOrderInput struct {
	WorkOrderNumber    string    `json:"work_order_number"`
	CustomerName       *string   `json:"customer_name,omitempty"`
	VendorName         *string   `json:"vendor_name,omitempty"`
	ServiceAddress     *string   `json:"service_address,omitempty"`
	JobType            *string   `json:"job_type,omitempty"`
	JobDescription     *string   `json:"job_description,omitempty"`
	ScheduledDate      *string   `json:"scheduled_date,omitempty"` // YYYY-MM-DD
	Amount             *string   `json:"amount,omitempty"`         // decimal string, two fraction digits
	Currency           string    `json:"currency"`
	Notes              *string   `json:"notes,omitempty"`
	Priority           *string   `json:"priority,omitempty"`
	WorkOrderPdfLink   *string   `json:"work_order_pdf_link,omitempty"`
	TimestampExtracted time.Time `json:"timestamp_extracted"`
	UserID             *string   `json:"user_id,omitempty"`
}

// WorkOrder is the persisted form: the input plus storage-assigned identity.
// Uniqueness of (tenant, number) is enforced by the duplicate detector, not
// by the storage layer; see internal/dedup.
type WorkOrder struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	WorkOrderInput
}
