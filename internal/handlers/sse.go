package handlers

import (
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/starfederation/datastar-go/datastar"

	"retail-dashboard/internal/errors"
	"retail-dashboard/internal/models"
	"retail-dashboard/internal/services"
)

const maxTableRows = 50

var countryTableTemplate = template.Must(template.New("countryTable").Parse(`
<div id="country-content">
<table class="modern-table">
<thead><tr><th>Country</th><th>Revenue</th></tr></thead>
<tbody>
{{range $i, $p := .Data}}{{if lt $i $.MaxRows}}<tr>
<td>{{$p.Label}}</td>
<td><strong>{{printf "%.2f" $p.Value}}</strong></td>
</tr>{{end}}{{end}}
</tbody>
</table>
</div>`))

var statusTemplate = template.Must(template.New("status").Parse(
	`<div id="{{.ID}}">{{.Message}}</div>`))

type SSEHandlers struct {
	analytics *services.Analytics
	logger    *slog.Logger
}

func NewSSEHandlers(analytics *services.Analytics, logger *slog.Logger) *SSEHandlers {
	return &SSEHandlers{
		analytics: analytics,
		logger:    logger,
	}
}

type templateData struct {
	Data    []models.Point
	MaxRows int
}

func (h *SSEHandlers) renderCountryTable(points []models.Point) (string, error) {
	var buf strings.Builder

	if len(points) > maxTableRows {
		points = points[:maxTableRows]
	}

	err := countryTableTemplate.Execute(&buf, templateData{Data: points, MaxRows: maxTableRows})
	return buf.String(), err
}

func renderStatus(id, message string) (string, error) {
	var buf strings.Builder
	err := statusTemplate.Execute(&buf, struct{ ID, Message string }{id, message})
	return buf.String(), err
}

// readSelection must run before the SSE stream starts so a bad request can
// still be answered with a JSON error.
func (h *SSEHandlers) readSelection(w http.ResponseWriter, r *http.Request) (selection, bool) {
	var sel selection
	if err := datastar.ReadSignals(r, &sel); err != nil {
		errors.WriteError(w, r, h.logger, errors.InvalidParam("datastar", err))
		return sel, false
	}
	return sel, true
}

// patch sends signals and a status element on a fresh SSE stream.
func (h *SSEHandlers) patch(w http.ResponseWriter, r *http.Request, signals map[string]any, statusID, status string, extra ...string) {
	jsonData, err := json.Marshal(signals)
	if err != nil {
		h.logger.Error("marshal signals", "error", err)
		return
	}

	html, err := renderStatus(statusID, status)
	if err != nil {
		h.logger.Error("render status", "error", err)
		return
	}

	sse := datastar.NewSSE(w, r)
	sse.PatchSignals(jsonData)
	sse.PatchElements(html)
	for _, fragment := range extra {
		sse.PatchElements(fragment)
	}

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func (h *SSEHandlers) HandleSales(w http.ResponseWriter, r *http.Request) {
	sel, ok := h.readSelection(w, r)
	if !ok {
		return
	}

	start, end, err := sel.dateRange(h.analytics.Options())
	if err != nil {
		errors.WriteError(w, r, h.logger, err)
		return
	}

	monthly := h.analytics.MonthlyRevenue(r.Context(), start, end)
	countries := h.analytics.CountryRevenue(r.Context(), start, end)

	table, err := h.renderCountryTable(countries.Points)
	if err != nil {
		h.logger.Error("render country table", "error", err)
		return
	}

	h.patch(w, r, map[string]any{
		"monthlySales": monthly,
		"countrySales": countries,
	}, "sales-status", "Sales data loaded", table)
}

func (h *SSEHandlers) HandleProducts(w http.ResponseWriter, r *http.Request) {
	sel, ok := h.readSelection(w, r)
	if !ok {
		return
	}

	category := sel.category(h.analytics.Options())
	h.patch(w, r, map[string]any{
		"subcategorySales": h.analytics.SubcategoryRevenue(r.Context(), category),
	}, "products-status", "Products loaded for "+category)
}

func (h *SSEHandlers) HandleChannels(w http.ResponseWriter, r *http.Request) {
	sel, ok := h.readSelection(w, r)
	if !ok {
		return
	}

	channel := sel.channel(h.analytics.Options())
	h.patch(w, r, map[string]any{
		"weekdaySales":    h.analytics.WeekdaySales(r.Context(), channel),
		"customerGenders": h.analytics.CustomerGenders(r.Context(), channel),
	}, "channels-status", "Channel data loaded for "+channel)
}

func (h *SSEHandlers) HandleChannelSplit(w http.ResponseWriter, r *http.Request) {
	sel, ok := h.readSelection(w, r)
	if !ok {
		return
	}

	day := sel.day()
	h.patch(w, r, map[string]any{
		"channelSplit": h.analytics.ChannelSplit(r.Context(), day),
	}, "split-status", "Channel split loaded for "+day)
}
