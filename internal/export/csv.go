// Package export renders persisted work orders as downloadable CSV and XLSX
// documents.
package export

import (
	"strings"
	"time"

	"github.com/fieldstack/workorder-tracker/internal/entity"
)

// csvColumns is the fixed column order existing consumers depend on. Do not
// reorder. The last column differs by variant: persisted records carry
// "Created At", not-yet-persisted inputs carry "Timestamp Extracted".
var csvColumns = []string{
	"Work Order Number",
	"Scheduled Date",
	"Customer Name",
	"Service Address",
	"Job Type",
	"Job Description",
	"Amount",
	"Currency",
	"Priority",
	"Notes",
	"Vendor Name",
}

var (
	csvHeaders      = append(append([]string{}, csvColumns...), "Created At")
	csvInputHeaders = append(append([]string{}, csvColumns...), "Timestamp Extracted")
)

// WorkOrdersCSV renders the records in the fixed column order. Fields are
// quoted only when they contain a double quote, comma, or newline; internal
// quotes are doubled.
func WorkOrdersCSV(orders []*entity.WorkOrder) string {
	var b strings.Builder
	writeCSVRow(&b, csvHeaders)
	for _, wo := range orders {
		writeCSVRow(&b, csvRow(wo))
	}
	return b.String()
}

// WorkOrderInputsCSV renders not-yet-persisted extraction results, same
// columns except the trailing timestamp is the extraction time.
func WorkOrderInputsCSV(inputs []*entity.WorkOrderInput) string {
	var b strings.Builder
	writeCSVRow(&b, csvInputHeaders)
	for _, in := range inputs {
		writeCSVRow(&b, append(inputColumns(in), in.TimestampExtracted.UTC().Format(time.RFC3339)))
	}
	return b.String()
}

func csvRow(wo *entity.WorkOrder) []string {
	return append(inputColumns(&wo.WorkOrderInput), wo.CreatedAt.UTC().Format(time.RFC3339))
}

func inputColumns(in *entity.WorkOrderInput) []string {
	return []string{
		in.WorkOrderNumber,
		deref(in.ScheduledDate),
		deref(in.CustomerName),
		deref(in.ServiceAddress),
		deref(in.JobType),
		deref(in.JobDescription),
		deref(in.Amount),
		in.Currency,
		deref(in.Priority),
		deref(in.Notes),
		deref(in.VendorName),
	}
}

func writeCSVRow(b *strings.Builder, fields []string) {
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(escapeCSVField(f))
	}
	b.WriteString("\r\n")
}

func escapeCSVField(f string) string {
	if !strings.ContainsAny(f, "\",\n\r") {
		return f
	}
	return `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
