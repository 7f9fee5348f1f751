package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/fieldstack/workorder-tracker/constants"
	"github.com/fieldstack/workorder-tracker/internal/entity"
	"github.com/fieldstack/workorder-tracker/internal/pipeline"
	"github.com/fieldstack/workorder-tracker/internal/repository"
	"github.com/fieldstack/workorder-tracker/internal/workorders"
)

func newTestServer(t *testing.T) (*Server, *repository.MemoryEmailRepository, *repository.MemoryWorkOrderRepository) {
	t.Helper()
	emails := repository.NewMemoryEmailRepository()
	orders := repository.NewMemoryWorkOrderRepository()
	proc := pipeline.NewProcessor(nil, emails, orders, nil)
	svc := workorders.NewService(orders, nil)
	return New(nil, proc, svc, nil, nil), emails, orders
}

func doJSON(t *testing.T, h http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	srv, _, _ := newTestServer(t)
	rec := doJSON(t, srv.Router(), http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestProcessEmail_EndToEnd(t *testing.T) {
	srv, emails, _ := newTestServer(t)
	email := &entity.EmailMessage{
		ID:               uuid.New(),
		Subject:          "WO# 555123 dispatch",
		ReceivedAt:       time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC),
		ProcessingStatus: string(constants.EmailStatusNew),
		Attachments: []entity.EmailAttachment{
			{ID: uuid.New(), Filename: "scan.pdf", MimeType: "application/pdf"},
		},
	}
	emails.Put(email)

	h := srv.Router()
	rec := doJSON(t, h, http.MethodPost, "/v1/emails/"+email.ID.String()+"/process", "", map[string]string{"X-User-ID": "tenant-1"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp processResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != "processed" || resp.Source != "rules" {
		t.Errorf("resp = %+v", resp)
	}
	if len(resp.Created) != 1 || resp.Created[0].WorkOrderNumber != "555123" {
		t.Errorf("created = %+v", resp.Created)
	}

	// Second processing of the same email: every number is now a duplicate.
	rec = doJSON(t, h, http.MethodPost, "/v1/emails/"+email.ID.String()+"/process", "", map[string]string{"X-User-ID": "tenant-1"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != "skipped_duplicate" || len(resp.Created) != 0 {
		t.Errorf("reprocess resp = %+v", resp)
	}
}

func TestProcessEmail_Errors(t *testing.T) {
	srv, _, _ := newTestServer(t)
	h := srv.Router()

	if rec := doJSON(t, h, http.MethodPost, "/v1/emails/not-a-uuid/process", "", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("bad uuid status = %d", rec.Code)
	}
	if rec := doJSON(t, h, http.MethodPost, "/v1/emails/"+uuid.NewString()+"/process", "", nil); rec.Code != http.StatusNotFound {
		t.Errorf("unknown email status = %d", rec.Code)
	}
}

func TestWorkOrderCRUD(t *testing.T) {
	srv, _, _ := newTestServer(t)
	h := srv.Router()
	hdr := map[string]string{"X-User-ID": "tenant-1"}

	rec := doJSON(t, h, http.MethodPost, "/v1/workorders/", `{"work_order_number":"888999","customer_name":"Bluefin Grill"}`, hdr)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var created entity.WorkOrder
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatal(err)
	}
	if created.Currency != "USD" {
		t.Errorf("currency = %q", created.Currency)
	}

	if rec := doJSON(t, h, http.MethodPost, "/v1/workorders/", `{"work_order_number":""}`, hdr); rec.Code != http.StatusBadRequest {
		t.Errorf("empty number status = %d", rec.Code)
	}

	rec = doJSON(t, h, http.MethodGet, "/v1/workorders/", "", hdr)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	var listResp struct {
		WorkOrders []*entity.WorkOrder `json:"work_orders"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &listResp); err != nil {
		t.Fatal(err)
	}
	if len(listResp.WorkOrders) != 1 {
		t.Errorf("list = %+v", listResp.WorkOrders)
	}

	// Another tenant sees nothing.
	rec = doJSON(t, h, http.MethodGet, "/v1/workorders/", "", map[string]string{"X-User-ID": "tenant-2"})
	if err := json.Unmarshal(rec.Body.Bytes(), &listResp); err != nil {
		t.Fatal(err)
	}
	if len(listResp.WorkOrders) != 0 {
		t.Errorf("cross-tenant list = %+v", listResp.WorkOrders)
	}

	if rec := doJSON(t, h, http.MethodGet, "/v1/workorders/"+created.ID.String(), "", hdr); rec.Code != http.StatusOK {
		t.Errorf("get status = %d", rec.Code)
	}
	if rec := doJSON(t, h, http.MethodDelete, "/v1/workorders/"+created.ID.String(), "", hdr); rec.Code != http.StatusNoContent {
		t.Errorf("delete status = %d", rec.Code)
	}
	if rec := doJSON(t, h, http.MethodGet, "/v1/workorders/"+created.ID.String(), "", hdr); rec.Code != http.StatusNotFound {
		t.Errorf("get-after-delete status = %d", rec.Code)
	}
}

func TestExportCSV(t *testing.T) {
	srv, _, orders := newTestServer(t)
	tenantID := "tenant-1"
	in := &entity.WorkOrderInput{WorkOrderNumber: "555123", Currency: "USD", UserID: &tenantID}
	if _, err := orders.Create(t.Context(), in); err != nil {
		t.Fatal(err)
	}

	rec := doJSON(t, srv.Router(), http.MethodGet, "/v1/workorders/export.csv", "", map[string]string{"X-User-ID": tenantID})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/csv" {
		t.Errorf("content type = %q", ct)
	}
	body := rec.Body.String()
	if !strings.HasPrefix(body, "Work Order Number,") {
		t.Errorf("body missing header row: %q", body)
	}
	if !strings.Contains(body, "555123") {
		t.Errorf("body missing record: %q", body)
	}
}

func TestExportXLSX(t *testing.T) {
	srv, _, _ := newTestServer(t)
	rec := doJSON(t, srv.Router(), http.MethodGet, "/v1/workorders/export.xlsx", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.HasPrefix(rec.Body.String(), "PK") {
		t.Error("response is not an XLSX container")
	}
}

func TestListDateFilterValidation(t *testing.T) {
	srv, _, _ := newTestServer(t)
	rec := doJSON(t, srv.Router(), http.MethodGet, "/v1/workorders/?from=March-1", "", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d", rec.Code)
	}
}
