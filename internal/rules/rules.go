// Package rules builds minimal work-order records from email metadata alone.
// It is the fallback tier when AI extraction is disabled, fails, or finds
// nothing; it never fails itself.
package rules

import (
	"fmt"
	"strings"

	"github.com/fieldstack/workorder-tracker/constants"
	"github.com/fieldstack/workorder-tracker/internal/entity"
	"github.com/fieldstack/workorder-tracker/internal/wonum"
)

// IsPDF reports whether an attachment looks like a PDF. Real-world senders
// use varied content-type strings ("application/pdf; name=...", uppercase
// variants), so this is a substring check, not an equality check.
func IsPDF(mimeType string) bool {
	return strings.Contains(strings.ToLower(mimeType), "pdf")
}

// BuildFromEmail produces one record per PDF attachment, in attachment
// order. The work-order number comes from the attachment filename, then the
// subject, then a deterministic placeholder derived from the email id so the
// record is never dropped. Fields the rule engine cannot infer get
// placeholder values; AI-only fields stay nil. Dates are never invented:
// both the scheduled date and the extraction timestamp are the email's
// received time.
func BuildFromEmail(email *entity.EmailMessage) []*entity.WorkOrderInput {
	var orders []*entity.WorkOrderInput

	idx := 0
	for _, att := range email.Attachments {
		if !IsPDF(att.MimeType) {
			continue
		}

		number, ok := wonum.Locate(att.Filename)
		if !ok {
			number, ok = wonum.Locate(email.Subject)
		}
		if !ok {
			number = fmt.Sprintf("UNKNOWN-%.8s-%d", email.ID.String(), idx)
		}

		address := constants.PlaceholderServiceAddress
		jobType := constants.PlaceholderJobType
		scheduled := email.ReceivedAt.UTC().Format("2006-01-02")
		pdfLink := att.StorageLocation

		orders = append(orders, &entity.WorkOrderInput{
			WorkOrderNumber:    number,
			ServiceAddress:     &address,
			JobType:            &jobType,
			ScheduledDate:      &scheduled,
			Currency:           constants.DefaultCurrency,
			WorkOrderPdfLink:   &pdfLink,
			TimestampExtracted: email.ReceivedAt,
		})
		idx++
	}
	return orders
}
