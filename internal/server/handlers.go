package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/fieldstack/workorder-tracker/internal/common"
	"github.com/fieldstack/workorder-tracker/internal/entity"
	"github.com/fieldstack/workorder-tracker/internal/export"
	"github.com/fieldstack/workorder-tracker/internal/repository"
	"github.com/fieldstack/workorder-tracker/internal/workorders"
)

type errorResponse struct {
	Error string `json:"error"`
}

type processResponse struct {
	EmailID          string              `json:"email_id"`
	Status           string              `json:"status"`
	Source           string              `json:"source"`
	Created          []*entity.WorkOrder `json:"created"`
	DuplicateNumbers []string            `json:"duplicate_numbers"`
}

// handleProcessEmail runs the extraction pipeline for one stored email.
// X-Delivery-ID, when present, is checked against the delivery guard so
// webhook retries return the suppressed marker instead of reprocessing.
func (s *Server) handleProcessEmail(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "id must be a UUID"})
		return
	}

	if deliveryID := r.Header.Get("X-Delivery-ID"); deliveryID != "" {
		first, err := s.guard.FirstDelivery(r.Context(), deliveryID)
		if err != nil {
			s.logger.Error("server.guard.failed", "delivery_id", deliveryID, "err", err)
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "delivery guard unavailable"})
			return
		}
		if !first {
			s.logger.Info("server.delivery.suppressed", "delivery_id", deliveryID, "email_id", id)
			writeJSON(w, http.StatusOK, map[string]string{"status": "duplicate_delivery"})
			return
		}
	}

	res, err := s.processor.Process(r.Context(), id, tenant(r))
	if err != nil {
		s.writeError(w, err)
		return
	}

	created := res.CreatedWorkOrders
	if created == nil {
		created = []*entity.WorkOrder{}
	}
	dups := res.DuplicateWorkOrderNumbers
	if dups == nil {
		dups = []string{}
	}
	writeJSON(w, http.StatusOK, processResponse{
		EmailID:          res.EmailID.String(),
		Status:           string(res.Status),
		Source:           res.Source,
		Created:          created,
		DuplicateNumbers: dups,
	})
}

func (s *Server) handleListWorkOrders(w http.ResponseWriter, r *http.Request) {
	req, err := listRequest(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	recs, err := s.orders.List(r.Context(), req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if recs == nil {
		recs = []*entity.WorkOrder{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"work_orders": recs})
}

func (s *Server) handleCreateWorkOrder(w http.ResponseWriter, r *http.Request) {
	var in entity.WorkOrderInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}
	in.UserID = tenant(r)

	created, err := s.orders.Create(r.Context(), &in)
	if errors.Is(err, repository.ErrDuplicateNumber) {
		writeJSON(w, http.StatusConflict, errorResponse{Error: "duplicate, discard"})
		return
	}
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetWorkOrder(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "id must be a UUID"})
		return
	}
	rec, err := s.orders.Get(r.Context(), id, tenant(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleDeleteWorkOrder(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "id must be a UUID"})
		return
	}
	if err := s.orders.Delete(r.Context(), id, tenant(r)); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	recs, ok := s.exportRecords(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="work_orders.csv"`)
	_, _ = w.Write([]byte(export.WorkOrdersCSV(recs)))
}

func (s *Server) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	recs, ok := s.exportRecords(w, r)
	if !ok {
		return
	}
	data, err := export.WorkOrdersXLSX(recs)
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="work_orders.xlsx"`)
	_, _ = w.Write(data)
}

func (s *Server) exportRecords(w http.ResponseWriter, r *http.Request) ([]*entity.WorkOrder, bool) {
	req, err := listRequest(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return nil, false
	}
	recs, err := s.orders.List(r.Context(), req)
	if err != nil {
		s.writeError(w, err)
		return nil, false
	}
	return recs, true
}

// listRequest parses the shared from/to query filters (YYYY-MM-DD,
// inclusive) plus the tenant header.
func listRequest(r *http.Request) (workorders.ListRequest, error) {
	req := workorders.ListRequest{Tenant: tenant(r)}
	if v := r.URL.Query().Get("from"); v != "" {
		d, err := time.Parse("2006-01-02", v)
		if err != nil {
			return req, errors.New("from must be YYYY-MM-DD")
		}
		req.FromDate = &d
	}
	if v := r.URL.Query().Get("to"); v != "" {
		d, err := time.Parse("2006-01-02", v)
		if err != nil {
			return req, errors.New("to must be YYYY-MM-DD")
		}
		// Inclusive upper bound: extend to end of day.
		end := d.Add(24*time.Hour - time.Nanosecond)
		req.ToDate = &end
	}
	return req, nil
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := common.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("server.request.failed", "err", err)
		writeJSON(w, status, errorResponse{Error: "internal error"})
		return
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
