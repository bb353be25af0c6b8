package web

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/menuconv/internal/core"
	"github.com/JonMunkholm/menuconv/internal/export"
	"github.com/JonMunkholm/menuconv/internal/logging"
	"github.com/JonMunkholm/menuconv/internal/schema"
	"github.com/JonMunkholm/menuconv/internal/web/templates"
)

const (
	dashboardHistory = 10
	maxHistoryLimit  = 100
)

// layoutResponse describes one template layout.
type layoutResponse struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Columns     []string `json:"columns"`
	Namespaced  bool     `json:"namespaced"`
	Default     bool     `json:"default"`
}

// handleDashboard renders the upload page.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logging.FromContext(ctx)

	usage, err := s.service.Usage(ctx)
	if err != nil {
		log.Warn("usage counter unavailable", "error", err)
	}
	history, err := s.service.History(ctx, dashboardHistory)
	if err != nil {
		log.Warn("conversion history unavailable", "error", err)
	}

	def := s.service.DefaultLayout().Name
	var layouts []templates.LayoutOption
	for _, l := range schema.All() {
		layouts = append(layouts, templates.LayoutOption{
			Name:        l.Name,
			Description: l.Description,
			Selected:    l.Name == def,
		})
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	page := templates.Page("Convert", templates.Dashboard(templates.DashboardData{
		Layouts:     layouts,
		Usage:       usage,
		History:     history,
		MaxFileSize: s.cfg.Upload.MaxFileSize,
	}))
	if err := page.Render(ctx, w); err != nil {
		log.Error("render dashboard", "error", err)
	}
}

// handleConversionPage renders a stored conversion.
func (s *Server) handleConversionPage(w http.ResponseWriter, r *http.Request) {
	res, err := s.service.Result(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	page := templates.Page("Conversion", templates.ConversionResult(templates.ResultData{
		Result:  res,
		Preview: res.Preview(core.PreviewLines),
	}))
	if err := page.Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render conversion page", "error", err)
	}
}

// handleGetConversion returns a stored conversion as JSON.
func (s *Server) handleGetConversion(w http.ResponseWriter, r *http.Request) {
	res, err := s.service.Result(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, newConversionResponse(res))
}

// handleDownload streams the import template as TSV or XLSX.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}

	res, err := s.service.Result(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	body := res.TSV
	if format == export.FormatXLSX {
		layout, err := schema.Lookup(res.Layout)
		if err != nil {
			respondError(w, r, err, http.StatusInternalServerError)
			return
		}
		var buf bytes.Buffer
		if err := export.WriteXLSX(&buf, layout, res.Rows); err != nil {
			respondError(w, r, fmt.Errorf("render workbook: %w", err), http.StatusInternalServerError)
			return
		}
		body = buf.Bytes()
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", format.FileName()))
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	if _, err := w.Write(body); err != nil {
		logging.FromContext(r.Context()).Warn("download interrupted", "error", err)
	}
}

// handleHistory lists recent conversions. ?limit= caps the result.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			respondErrorJSON(w, core.UserMessage{
				Message: "limit must be a positive number",
				Code:    "ERR000",
			}, http.StatusBadRequest)
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	records, err := s.service.History(r.Context(), limit)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	if records == nil {
		records = []core.ConversionRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"conversions": records})
}

// handleUsage returns the usage counter and conversion slot usage.
func (s *Server) handleUsage(w http.ResponseWriter, r *http.Request) {
	total, err := s.service.Usage(r.Context())
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"total":   total,
		"limiter": s.service.LimiterStatus(),
	})
}

// handleLayouts lists the available template layouts.
func (s *Server) handleLayouts(w http.ResponseWriter, r *http.Request) {
	def := s.service.DefaultLayout().Name
	var out []layoutResponse
	for _, l := range schema.All() {
		out = append(out, layoutResponse{
			Name:        l.Name,
			Description: l.Description,
			Columns:     l.Headers(),
			Namespaced:  l.Namespaced,
			Default:     l.Name == def,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"layouts": out})
}

// handleHealth reports liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"limiter": s.service.LimiterStatus(),
	})
}
