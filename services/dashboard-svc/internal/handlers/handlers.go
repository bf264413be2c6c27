// Package handlers реализует JSON API панели поверх net/http.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"energidash/pkg/apperror"
	"energidash/pkg/config"
	"energidash/pkg/domain"
	"energidash/pkg/logger"
	"energidash/services/dashboard-svc/internal/export"
	"energidash/services/dashboard-svc/internal/mapview"
	"energidash/services/dashboard-svc/internal/service"
)

// DashboardHandler обработчики HTTP API панели
type DashboardHandler struct {
	svc *service.DashboardService
	cfg *config.Config
}

// NewDashboardHandler создаёт обработчик
func NewDashboardHandler(svc *service.DashboardService, cfg *config.Config) *DashboardHandler {
	return &DashboardHandler{svc: svc, cfg: cfg}
}

// RegisterRoutes регистрирует маршруты API на mux
func (h *DashboardHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/filters", h.handleFilters)
	mux.HandleFunc("GET /api/v1/summary", h.handleSummary)
	mux.HandleFunc("GET /api/v1/buildings", h.handleBuildings)
	mux.HandleFunc("GET /api/v1/map/markers", h.handleMapMarkers)
	mux.HandleFunc("GET /api/v1/map/cities", h.handleMapCities)
	mux.HandleFunc("GET /api/v1/charts/monthly", h.handleMonthly)
	mux.HandleFunc("GET /api/v1/charts/top-consumers", h.handleTopConsumers)
	mux.HandleFunc("GET /api/v1/charts/efficiency", h.handleEfficiency)
	mux.HandleFunc("GET /api/v1/charts/climate", h.handleClimate)
	mux.HandleFunc("GET /api/v1/comparison", h.handleComparison)
	mux.HandleFunc("GET /api/v1/export", h.handleExport)
	mux.HandleFunc("POST /api/v1/datasets/reload", h.handleReload)
}

// parseFilter извлекает фильтры city/project/year из query-параметров
func parseFilter(r *http.Request) (domain.Filter, error) {
	q := r.URL.Query()

	scope, err := domain.ParseYearScope(q.Get("year"))
	if err != nil {
		return domain.Filter{}, apperror.Wrap(err, apperror.CodeInvalidYear,
			fmt.Sprintf("invalid year %q", q.Get("year")))
	}

	return domain.Filter{
		City:    domain.NormalizeCity(q.Get("city")),
		Project: q.Get("project"),
		Scope:   scope,
	}, nil
}

func (h *DashboardHandler) handleFilters(w http.ResponseWriter, r *http.Request) {
	opts, err := h.svc.Filters(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, filtersResponse{
		Cities:   opts.Cities,
		Projects: opts.Projects,
		Years:    opts.Years,
	})
}

func (h *DashboardHandler) handleSummary(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		writeError(w, err)
		return
	}

	summary, err := h.svc.Summary(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSummaryResponse(summary))
}

func (h *DashboardHandler) handleBuildings(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		writeError(w, err)
		return
	}

	rows, err := h.svc.Merged(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, buildingsResponse{
		Count:     len(rows),
		Buildings: toBuildingRows(rows),
	})
}

func (h *DashboardHandler) handleMapMarkers(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		writeError(w, err)
		return
	}

	metric, err := mapview.ParseMetric(r.URL.Query().Get("metric"))
	if err != nil {
		writeError(w, err)
		return
	}

	data, err := h.svc.MapMarkers(r.Context(), filter, metric)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toMapResponse(data))
}

func (h *DashboardHandler) handleMapCities(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		writeError(w, err)
		return
	}

	markers, err := h.svc.CityOverview(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCityMarkers(markers))
}

func (h *DashboardHandler) handleMonthly(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		writeError(w, err)
		return
	}

	totals, err := h.svc.MonthlyTotals(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toMonthlyTotals(totals))
}

func (h *DashboardHandler) handleTopConsumers(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		writeError(w, err)
		return
	}

	totals, err := h.svc.TopConsumers(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProjectTotals(totals))
}

func (h *DashboardHandler) handleEfficiency(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		writeError(w, err)
		return
	}

	rows, err := h.svc.Efficiency(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBuildingRows(rows))
}

func (h *DashboardHandler) handleClimate(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		writeError(w, err)
		return
	}

	points, err := h.svc.ClimateCorrelation(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCorrelationPoints(points))
}

func (h *DashboardHandler) handleComparison(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		writeError(w, err)
		return
	}

	cmp, err := h.svc.Comparison(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, comparisonResponse{
		Top:    toBuildingRows(cmp.Top),
		Bottom: toBuildingRows(cmp.Bottom),
	})
}

func (h *DashboardHandler) handleExport(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		writeError(w, err)
		return
	}

	format, err := export.ParseFormat(r.URL.Query().Get("format"), h.cfg.Export.DefaultFormat)
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := h.svc.Export(r.Context(), filter, format)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", result.ContentType)
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", result.Filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(result.Body); err != nil {
		logger.Warn("export write failed", "error", err)
	}
}

func (h *DashboardHandler) handleReload(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.Reload(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reloadResponse{
		SnapshotID:  result.SnapshotID,
		LoadedAt:    result.LoadedAt,
		Buildings:   result.Buildings,
		Consumption: result.Consumption,
		Climate:     result.Climate,
		Warnings:    result.Warnings,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Заголовки уже отправлены, остаётся только залогировать
		logger.Warn("response encoding failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	resp := errorResponse{
		Code:    string(apperror.CodeInternal),
		Message: "internal server error",
	}

	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		resp.Code = string(appErr.Code)
		resp.Message = appErr.Message
		if len(appErr.Details) > 0 {
			resp.Details = appErr.Details
		}
	} else {
		logger.Error("unhandled error", "error", err)
	}

	writeJSON(w, apperror.HTTPStatus(err), resp)
}
