package export

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/fieldstack/workorder-tracker/internal/entity"
)

func strp(s string) *string { return &s }

func order() *entity.WorkOrder {
	return &entity.WorkOrder{
		ID:        uuid.New(),
		CreatedAt: time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC),
		WorkOrderInput: entity.WorkOrderInput{
			WorkOrderNumber: "555123",
			ScheduledDate:   strp("2026-03-20"),
			CustomerName:    strp("Bluefin Grill #204"),
			ServiceAddress:  strp("88 Harbor Way, Tampa FL"),
			JobType:         strp("Plumbing"),
			JobDescription:  strp("Replace grease trap"),
			Amount:          strp("450.00"),
			Currency:        "USD",
			Priority:        strp("P2"),
			Notes:           strp("NTE: 500"),
			VendorName:      strp("ServiceChannel"),
		},
	}
}

func TestWorkOrdersCSV_ColumnOrder(t *testing.T) {
	got := WorkOrdersCSV(nil)
	want := "Work Order Number,Scheduled Date,Customer Name,Service Address,Job Type,Job Description,Amount,Currency,Priority,Notes,Vendor Name,Created At\r\n"
	if got != want {
		t.Errorf("header row:\n got %q\nwant %q", got, want)
	}
}

func TestWorkOrdersCSV_Row(t *testing.T) {
	got := WorkOrdersCSV([]*entity.WorkOrder{order()})
	lines := strings.Split(strings.TrimRight(got, "\r\n"), "\r\n")
	if len(lines) != 2 {
		t.Fatalf("line count = %d", len(lines))
	}
	want := `555123,2026-03-20,Bluefin Grill #204,"88 Harbor Way, Tampa FL",Plumbing,Replace grease trap,450.00,USD,P2,NTE: 500,ServiceChannel,2026-03-14T10:00:00Z`
	if lines[1] != want {
		t.Errorf("data row:\n got %q\nwant %q", lines[1], want)
	}
}

func TestWorkOrdersCSV_NilOptionalsAreEmpty(t *testing.T) {
	wo := &entity.WorkOrder{
		CreatedAt:      time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		WorkOrderInput: entity.WorkOrderInput{WorkOrderNumber: "777", Currency: "USD"},
	}
	got := WorkOrdersCSV([]*entity.WorkOrder{wo})
	want := "777,,,,,,,USD,,,,2026-01-01T00:00:00Z"
	if lines := strings.Split(strings.TrimRight(got, "\r\n"), "\r\n"); lines[1] != want {
		t.Errorf("row = %q, want %q", lines[1], want)
	}
}

func TestWorkOrderInputsCSV_TimestampVariant(t *testing.T) {
	in := &entity.WorkOrderInput{
		WorkOrderNumber:    "555123",
		Currency:           "USD",
		TimestampExtracted: time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
	}
	got := WorkOrderInputsCSV([]*entity.WorkOrderInput{in})
	lines := strings.Split(strings.TrimRight(got, "\r\n"), "\r\n")
	if !strings.HasSuffix(lines[0], ",Timestamp Extracted") {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.HasSuffix(lines[1], ",2026-03-14T09:30:00Z") {
		t.Errorf("row = %q", lines[1])
	}
}

func TestEscapeCSVField(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"has,comma", `"has,comma"`},
		{`say "hi"`, `"say ""hi"""`},
		{"line\nbreak", "\"line\nbreak\""},
		{"", ""},
		{"  spaced  ", "  spaced  "}, // whitespace alone never triggers quoting
	}
	for _, tt := range tests {
		if got := escapeCSVField(tt.in); got != tt.want {
			t.Errorf("escapeCSVField(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWorkOrdersXLSX_RoundTrips(t *testing.T) {
	data, err := WorkOrdersXLSX([]*entity.WorkOrder{order()})
	if err != nil {
		t.Fatal(err)
	}
	if len(data) == 0 {
		t.Fatal("empty workbook")
	}
	// XLSX is a zip container.
	if string(data[:2]) != "PK" {
		t.Errorf("workbook does not look like a zip: % x", data[:4])
	}
}
