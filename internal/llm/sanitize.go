package llm

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/fieldstack/workorder-tracker/constants"
	"github.com/fieldstack/workorder-tracker/internal/entity"
)

// StripCodeFence removes an optional surrounding markdown code fence.
// Models wrap JSON in ```json ... ``` often enough that this runs on every
// response.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// ParseResponse turns raw completion text into the response envelope. Any
// failure here — bad JSON, missing or non-array 'workOrders' — is a parse
// failure, not an infrastructure error: the caller maps it to
// StatusParseFailure and falls back to rules.
func ParseResponse(content string) (*Envelope, error) {
	raw := []byte(StripCodeFence(content))
	if err := ValidateEnvelope(raw); err != nil {
		return nil, err
	}
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	return &env, nil
}

// SanitizeAmount strips every character except digits and the decimal point,
// then normalizes to two fraction digits. Returns nil when nothing parseable
// survives ("", "N/A", "TBD").
func SanitizeAmount(raw string) *string {
	var b strings.Builder
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	stripped := b.String()
	if stripped == "" {
		return nil
	}
	v, err := strconv.ParseFloat(stripped, 64)
	if err != nil {
		return nil
	}
	s := strconv.FormatFloat(v, 'f', 2, 64)
	return &s
}

// MapFields maps one model-returned order onto a WorkOrderInput.
//
//   - empty model strings become nil, never empty pointers
//   - an empty work-order number gets a timestamp-based placeholder
//   - when the primary amount sanitizes to nothing but an NTE amount is
//     present, the NTE value becomes the amount and is recorded in notes as
//     "NTE: <value>"
//   - currency defaults to USD
func MapFields(f WorkOrderFields, pdfLink *string, now time.Time) *entity.WorkOrderInput {
	number := strings.TrimSpace(f.WorkOrderNumber)
	if number == "" {
		number = fmt.Sprintf("WO-%d", now.UnixMilli())
	}

	amount := SanitizeAmount(f.Amount)
	notes := strings.TrimSpace(f.Notes)
	if nte := SanitizeAmount(f.NTEAmount); nte != nil && amount == nil {
		amount = nte
		tag := "NTE: " + *nte
		if notes == "" {
			notes = tag
		} else {
			notes = notes + " | " + tag
		}
	}

	currency := strings.ToUpper(strings.TrimSpace(f.Currency))
	if currency == "" {
		currency = constants.DefaultCurrency
	}

	return &entity.WorkOrderInput{
		WorkOrderNumber:    number,
		CustomerName:       optional(f.CustomerName),
		VendorName:         optional(f.VendorName),
		ServiceAddress:     optional(f.ServiceAddress),
		JobType:            optional(f.JobType),
		JobDescription:     optional(f.JobDescription),
		ScheduledDate:      optional(f.ScheduledDate),
		Amount:             amount,
		Currency:           currency,
		Notes:              optional(notes),
		Priority:           optional(f.Priority),
		WorkOrderPdfLink:   pdfLink,
		TimestampExtracted: now,
	}
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
