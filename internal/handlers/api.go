package handlers

import (
	"bytes"
	"log/slog"
	"net/http"
	"time"

	"retail-dashboard/internal/errors"
	"retail-dashboard/internal/services"
)

const (
	cacheControl = "public, max-age=300"
	xlsxMIME     = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type APIHandlers struct {
	analytics *services.Analytics
	logger    *slog.Logger
}

func NewAPIHandlers(analytics *services.Analytics, logger *slog.Logger) *APIHandlers {
	return &APIHandlers{
		analytics: analytics,
		logger:    logger,
	}
}

func querySelection(r *http.Request) selection {
	q := r.URL.Query()
	return selection{
		Start:    q.Get("start"),
		End:      q.Get("end"),
		Category: q.Get("category"),
		Channel:  q.Get("channel"),
		Day:      q.Get("day"),
	}
}

func (h *APIHandlers) writeData(w http.ResponseWriter, data any) {
	errors.WriteSuccessWithHeaders(w, data, map[string]string{
		"Cache-Control": cacheControl,
	})
}

func (h *APIHandlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	errors.WriteError(w, r, h.logger, err)
}

func (h *APIHandlers) HandleOptions(w http.ResponseWriter, r *http.Request) {
	h.writeData(w, h.analytics.Options())
}

func (h *APIHandlers) HandleMonthlySales(w http.ResponseWriter, r *http.Request) {
	start, end, err := querySelection(r).dateRange(h.analytics.Options())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeData(w, h.analytics.MonthlyRevenue(r.Context(), start, end))
}

func (h *APIHandlers) HandleCountrySales(w http.ResponseWriter, r *http.Request) {
	start, end, err := querySelection(r).dateRange(h.analytics.Options())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeData(w, h.analytics.CountryRevenue(r.Context(), start, end))
}

func (h *APIHandlers) HandleSubcategories(w http.ResponseWriter, r *http.Request) {
	category := querySelection(r).category(h.analytics.Options())
	h.writeData(w, h.analytics.SubcategoryRevenue(r.Context(), category))
}

func (h *APIHandlers) HandleWeekdaySales(w http.ResponseWriter, r *http.Request) {
	channel := querySelection(r).channel(h.analytics.Options())
	h.writeData(w, h.analytics.WeekdaySales(r.Context(), channel))
}

func (h *APIHandlers) HandleCustomerGenders(w http.ResponseWriter, r *http.Request) {
	channel := querySelection(r).channel(h.analytics.Options())
	h.writeData(w, h.analytics.CustomerGenders(r.Context(), channel))
}

func (h *APIHandlers) HandleChannelSplit(w http.ResponseWriter, r *http.Request) {
	h.writeData(w, h.analytics.ChannelSplit(r.Context(), querySelection(r).day()))
}

func (h *APIHandlers) HandleExport(w http.ResponseWriter, r *http.Request) {
	sel := querySelection(r)
	opts := h.analytics.Options()

	start, end, err := sel.dateRange(opts)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	// Buffer so a failure can still produce a JSON error.
	var buf bytes.Buffer
	err = h.analytics.ExportWorkbook(r.Context(), &buf, services.ExportParams{
		Start:    start,
		End:      end,
		Category: sel.category(opts),
		Channel:  sel.channel(opts),
		Weekday:  sel.day(),
	})
	if err != nil {
		h.fail(w, r, errors.InternalWrap(err, "export failed"))
		return
	}

	w.Header().Set("Content-Type", xlsxMIME)
	w.Header().Set("Content-Disposition", `attachment; filename="retail-dashboard.xlsx"`)
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Warn("write export", "error", err)
	}
}

func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	healthData := map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   "1.0.0",
	}

	errors.WriteSuccess(w, healthData)
}

func (h *APIHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccess(w, h.analytics.Stats())
}
