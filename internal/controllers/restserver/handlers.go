package restserver

import (
	"bytes"
	"errors"
	htmltemplate "html/template"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/mux"

	"github.com/chrissnell/bikedash/internal/analysis"
	"github.com/chrissnell/bikedash/internal/charts"
	"github.com/chrissnell/bikedash/internal/constants"
	"github.com/chrissnell/bikedash/internal/dataset"
	"github.com/chrissnell/bikedash/internal/export"
	"github.com/chrissnell/bikedash/internal/log"
	"github.com/chrissnell/bikedash/pkg/responseformat"
)

// Handlers contains all HTTP handlers for the dashboard server
type Handlers struct {
	controller *Controller
	formatter  *responseformat.Formatter
}

// NewHandlers creates a new handlers instance
func NewHandlers(ctrl *Controller) *Handlers {
	return &Handlers{
		controller: ctrl,
		formatter:  responseformat.NewFormatter(),
	}
}

var templateFuncs = htmltemplate.FuncMap{
	"factorLabel": analysis.FactorLabel,
}

// userTypeNotes are shown beside the user-type charts
var userTypeNotes = []string{
	"Casual users generally prefer biking in summer and fall.",
	"Registered users are more consistent across all seasons, with a slight drop in winter.",
	"Use the charts to see how bike usage changes seasonally between user types.",
}

type option struct {
	Value    string
	Label    string
	Selected bool
}

type chartView struct {
	Title string
	URL   string
}

type pageData struct {
	PageTitle  string
	Version    string
	Selection  analysis.Selection
	Heading    string
	Modes      []option
	Seasons    []option
	Factors    []option
	ShowFactor bool
	Charts     []chartView
	Notes      []string
	Result     *analysis.Result
	ExportURL  string
	APIURL     string
}

// render parses the selection from the query string and runs one pipeline pass
func (h *Handlers) render(req *http.Request) (*analysis.Result, error) {
	sel, err := analysis.ParseSelection(req.URL.Query())
	if err != nil {
		return nil, err
	}

	start := time.Now()
	result, err := h.controller.pipeline.Render(sel)
	if err != nil {
		return nil, err
	}
	h.controller.metrics.observeRender(string(sel.Mode), time.Since(start))

	log.Debugw("render pass",
		"mode", sel.Mode,
		"seasons", sel.Seasons,
		"factor", sel.Factor,
		"rows", result.FilteredRows,
		"request_id", requestIDFromContext(req.Context()),
	)
	return result, nil
}

func statusFor(err error) int {
	if errors.Is(err, analysis.ErrInvalidSelection) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// ServeDashboard renders the dashboard page for the selection in the query string
func (h *Handlers) ServeDashboard(w http.ResponseWriter, req *http.Request) {
	result, err := h.render(req)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	var buf bytes.Buffer
	if err := h.controller.index.Execute(&buf, h.page(result)); err != nil {
		log.Error("error executing dashboard template: ", err)
		http.Error(w, "error rendering dashboard", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

func (h *Handlers) page(result *analysis.Result) pageData {
	sel := result.Selection
	query := sel.Query()

	data := pageData{
		PageTitle:  h.controller.dashConfig.PageTitle,
		Version:    constants.Version,
		Selection:  sel,
		Heading:    sel.Mode.Title(),
		ShowFactor: sel.Mode == analysis.ModeFactors,
		Result:     result,
		ExportURL:  "/export/view.xlsx?" + query.Encode(),
		APIURL:     "/api/dashboard?" + query.Encode(),
	}

	for _, m := range analysis.Modes {
		data.Modes = append(data.Modes, option{Value: string(m), Label: m.Title(), Selected: m == sel.Mode})
	}
	for _, s := range dataset.Seasons {
		data.Seasons = append(data.Seasons, option{Value: string(s), Label: string(s), Selected: sel.HasSeason(s)})
	}
	for _, f := range dataset.Factors {
		data.Factors = append(data.Factors, option{Value: string(f), Label: analysis.FactorLabel(f), Selected: f == sel.Factor})
	}

	format := h.controller.chartOptions.Format
	for _, c := range charts.ForMode(sel.Mode) {
		data.Charts = append(data.Charts, chartView{
			Title: charts.Title(c, sel.Factor),
			URL:   chartURL(c, format, query),
		})
	}
	if sel.Mode == analysis.ModeUsers {
		data.Notes = userTypeNotes
	}

	return data
}

func chartURL(c charts.Chart, format string, query url.Values) string {
	return "/charts/" + string(c) + "." + format + "?" + query.Encode()
}

// ServeChart renders one chart image for the selection in the query string
func (h *Handlers) ServeChart(w http.ResponseWriter, req *http.Request) {
	vars := mux.Vars(req)
	chart := charts.Chart(vars["chart"])

	contentType, ok := charts.Formats[vars["format"]]
	if !ok {
		http.NotFound(w, req)
		return
	}

	result, err := h.render(req)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	opts := h.controller.chartOptions
	opts.Format = vars["format"]

	var buf bytes.Buffer
	if err := charts.Render(&buf, chart, result, opts); err != nil {
		if errors.Is(err, charts.ErrUnknownChart) || errors.Is(err, charts.ErrNotInMode) {
			http.NotFound(w, req)
			return
		}
		log.Errorf("error rendering chart %s: %v", chart, err)
		http.Error(w, "error rendering chart", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "no-cache")
	w.Write(buf.Bytes())
}

// GetDashboard returns the render result as JSON or MessagePack
func (h *Handlers) GetDashboard(w http.ResponseWriter, req *http.Request) {
	result, err := h.render(req)
	if err != nil {
		h.formatter.WriteError(w, req, statusFor(err), err.Error())
		return
	}

	if err := h.formatter.WriteResponse(w, req, result, nil); err != nil {
		log.Error("error encoding dashboard response: ", err)
	}
}

// DatasetSummary describes the loaded table
type DatasetSummary struct {
	Path         string          `json:"path"`
	Rows         int             `json:"rows"`
	Columns      []string        `json:"columns"`
	Mapping      dataset.Columns `json:"mapping"`
	SeasonCounts map[string]int  `json:"season_counts"`
}

// GetDataset returns the dataset summary
func (h *Handlers) GetDataset(w http.ResponseWriter, req *http.Request) {
	table := h.controller.table

	counts := make(map[string]int)
	for season, n := range table.SeasonCounts() {
		counts[string(season)] = n
	}

	summary := DatasetSummary{
		Path:         table.Path(),
		Rows:         table.Len(),
		Columns:      table.Names(),
		Mapping:      table.Columns(),
		SeasonCounts: counts,
	}

	if err := h.formatter.WriteResponse(w, req, summary, nil); err != nil {
		log.Error("error encoding dataset summary: ", err)
	}
}

// ExportView returns the filtered view and its aggregates as an Excel workbook
func (h *Handlers) ExportView(w http.ResponseWriter, req *http.Request) {
	result, err := h.render(req)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	view, err := h.controller.table.Where(result.Selection.Seasons)
	if err != nil {
		log.Errorf("error building export view: %v", err)
		http.Error(w, "error building export", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, view, result); err != nil {
		log.Errorf("error writing export: %v", err)
		http.Error(w, "error building export", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="bike-sharing-view.xlsx"`)
	w.Write(buf.Bytes())
}

// Healthz reports that the server is up and the dataset is loaded
func (h *Handlers) Healthz(w http.ResponseWriter, req *http.Request) {
	h.formatter.WriteResponse(w, req, map[string]any{
		"status":  "ok",
		"rows":    h.controller.table.Len(),
		"version": constants.Version,
	}, nil)
}
