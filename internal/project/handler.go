package project

import (
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/mvpcad/mvpcad/internal/document"
	"github.com/mvpcad/mvpcad/internal/render"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Save handles POST /api/project/save?name=...
func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	ctx := WithTarget(r.Context(), r.URL.Query().Get("name"))

	ok, err := h.service.Save(ctx)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeResult(w, ok, "saved")
}

// Load handles POST /api/project/load?name=...
func (h *Handler) Load(w http.ResponseWriter, r *http.Request) {
	ctx := WithTarget(r.Context(), r.URL.Query().Get("name"))

	ok, err := h.service.Load(ctx)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeResult(w, ok, "loaded")
}

// Export handles POST /api/export/{format}?name=...&scale=...
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	format := Format(mux.Vars(r)["format"])

	var scale float64
	if v := r.URL.Query().Get("scale"); v != "" {
		s, err := strconv.ParseFloat(v, 64)
		if err != nil || math.IsNaN(s) || math.IsInf(s, 0) || s <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "scale must be a positive number"})
			return
		}
		scale = s
	}

	ctx := WithTarget(r.Context(), r.URL.Query().Get("name"))
	res, err := h.service.Export(ctx, format, scale)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if res == nil {
		writeResult(w, false, "exported")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "exported",
		"id":     res.ID,
		"format": res.Format,
		"bytes":  res.Bytes,
	})
}

// List handles GET /api/projects.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	projects, err := h.service.List(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if projects == nil {
		projects = []Summary{}
	}
	writeJSON(w, http.StatusOK, projects)
}

// Snapshot handles POST /api/projects/{name}/snapshots.
func (h *Handler) Snapshot(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	snap, err := h.service.Snapshot(r.Context(), name)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, snap)
}

// Restore handles POST /api/projects/{name}/restore.
func (h *Handler) Restore(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	if err := h.service.Restore(r.Context(), name); err != nil {
		handleServiceError(w, err)
		return
	}
	writeResult(w, true, "loaded")
}

func writeResult(w http.ResponseWriter, ok bool, status string) {
	if !ok {
		status = "cancelled"
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": status})
}

func handleServiceError(w http.ResponseWriter, err error) {
	var parseErr *document.ParseError
	switch {
	case errors.As(err, &parseErr):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": parseErr.Error()})
	case errors.Is(err, ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	case errors.Is(err, ErrExportPending):
		writeJSON(w, http.StatusConflict, map[string]string{"error": "export already in progress"})
	case errors.Is(err, ErrUnsupportedFormat), errors.Is(err, ErrInvalidName), errors.Is(err, render.ErrInvalidScale):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, ErrTooLarge):
		writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "project file too large"})
	case errors.Is(err, render.ErrImageTooLarge):
		writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": err.Error()})
	case errors.Is(err, ErrNoLibrary):
		writeJSON(w, http.StatusNotImplemented, map[string]string{"error": "project library not configured"})
	default:
		slog.Error("service error", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
