package llm

import (
	"fmt"
	"strings"
)

// BuildSystemPrompt states the extraction task, the per-field rules, and the
// required output shape. The field rules are business logic, not formatting
// niceties: amount/NTE handling, merge precedence across sources, and the
// vendor-vs-contractor distinction all live here.
func BuildSystemPrompt(industry, examples string) string {
	if strings.TrimSpace(industry) == "" {
		industry = "facility maintenance and field service"
	}

	parts := []string{
		"You are a work-order parser for the " + industry + " industry. " +
			"You read an email (subject and body) plus the text of its PDF attachments " +
			"and return every distinct work order you find as structured JSON.",

		// Field rules, stated verbatim for the model:
		"Rules:",
		"- Only extract what is explicitly present in the subject, body, or PDF text. Never fabricate values.",
		"- If a field is not present, use an empty string. Never output null.",
		"- Dates must be normalized to YYYY-MM-DD. If several dates appear, prefer the most explicit scheduled/service date. Never invent a date; if no date is present at all, use the email's received date.",
		"- 'amount' is the job's dollar amount, digits and decimal point only (no currency symbols, commas, or text).",
		"- 'nte_amount' is the not-to-exceed maximum if one is stated, same digits-only format.",
		"- 'currency' is a 3-letter code; default to USD if uncertain.",
		"- Values present in the subject but absent from the PDFs must be kept. When the subject and a PDF contradict each other, the PDF wins. Special instructions that appear only in the email body belong in 'notes'.",
		"- 'vendor_name' means the facility-management platform that issued the work order (for example ServiceChannel, Corrigo, FMPilot), NOT the contractor or trade company performing the work. Never fill it with a contractor name.",
		"- 'priority' is the stated priority/urgency label if any.",

		"Return ONLY a JSON object of this exact shape: " +
			`{"workOrders": [{"work_order_number": "", "customer_name": "", "vendor_name": "", ` +
			`"service_address": "", "job_type": "", "job_description": "", "scheduled_date": "", ` +
			`"amount": "", "nte_amount": "", "currency": "", "notes": "", "priority": ""}]}. ` +
			"One array element per distinct work order; an empty array if the documents contain none.",
	}

	if ex := strings.TrimSpace(examples); ex != "" {
		parts = append(parts, "Worked examples:\n"+ex)
	}
	return strings.Join(parts, "\n")
}

// BuildUserPrompt concatenates the email subject, the body when available,
// and every PDF's text labeled by filename.
func BuildUserPrompt(req ExtractRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Email subject: %s\n", req.Subject)
	fmt.Fprintf(&b, "Email received date: %s\n", req.ReceivedAt)
	if body := strings.TrimSpace(req.Body); body != "" {
		b.WriteString("\nEmail body:\n")
		b.WriteString(body)
		b.WriteString("\n")
	}
	for _, doc := range req.Documents {
		fmt.Fprintf(&b, "\n=== PDF: %s ===\n", doc.Filename)
		b.WriteString(doc.Text)
		b.WriteString("\n")
	}
	return b.String()
}
