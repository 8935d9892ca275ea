package reports

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
)

// Handlers handles HTTP requests for exports
type Handlers struct {
	service *Service
}

// NewHandlers creates new handlers
func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// HandleExport streams the current schedule.
// GET /v1/export?format=pdf|csv
func (h *Handlers) HandleExport(w http.ResponseWriter, r *http.Request) {
	export, err := h.service.Render(r.URL.Query().Get("format"))
	if err != nil {
		h.handleError(w, err)
		return
	}
	writeFile(w, export)
}

// HandleCreate handles POST /v1/exports
func (h *Handlers) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateExportRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON")
			return
		}
	}

	dto, err := h.service.CreateExport(r.Context(), req, getBaseURL(r))
	if err != nil {
		h.handleError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(dto)
}

// HandleDownload handles GET /v1/exports/{id}/download?format=pdf|csv
func (h *Handlers) HandleDownload(w http.ResponseWriter, r *http.Request) {
	export, err := h.service.GetExport(r.Context(), r.PathValue("id"), r.URL.Query().Get("format"))
	if err != nil {
		h.handleError(w, err)
		return
	}
	writeFile(w, export)
}

// HandleDelete handles DELETE /v1/exports/{id}?format=pdf|csv
func (h *Handlers) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteExport(r.Context(), r.PathValue("id"), r.URL.Query().Get("format")); err != nil {
		h.handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) handleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidFormat):
		writeError(w, http.StatusBadRequest, "invalid_format", "Format must be 'pdf' or 'csv'")
	case errors.Is(err, ErrExportNotFound):
		writeError(w, http.StatusNotFound, "export_not_found", "Export not found")
	case errors.Is(err, ErrStoreUnavailable):
		writeError(w, http.StatusNotImplemented, "export_store_unavailable", "Stored exports are not configured")
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
	}
}

// Helper functions

func writeFile(w http.ResponseWriter, export *Export) {
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", export.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(export.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(export.Data)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}

func getBaseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s", scheme, r.Host)
}
