package entity

import (
	"time"

	"github.com/google/uuid"
)

// EmailAttachment is one attachment on an inbound email. StorageLocation is
// either a local filesystem path or an http(s) URL, depending on how the
// webhook handler persisted the payload.
type EmailAttachment struct {
	ID              uuid.UUID `json:"id"`
	Filename        string    `json:"filename"`
	MimeType        string    `json:"mime_type"`
	SizeBytes       int64     `json:"size_bytes"`
	StorageLocation string    `json:"storage_location"`
}

// EmailMessage is the canonical inbound email produced by the webhook layer.
// The pipeline reads it and mutates only ProcessingStatus, exactly once per
// processing attempt.
type EmailMessage struct {
	ID               uuid.UUID         `json:"id"`
	Provider         string            `json:"provider"`
	ExternalID       string            `json:"external_id"`
	FromAddress      string            `json:"from_address"`
	ToAddress        string            `json:"to_address"`
	Subject          string            `json:"subject"`
	Body             string            `json:"body,omitempty"`
	ReceivedAt       time.Time         `json:"received_at"`
	ProcessingStatus string            `json:"processing_status"`
	Attachments      []EmailAttachment `json:"attachments"`
}
