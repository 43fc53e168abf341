package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ginjaninja78/branch-dashboard/internal/config"
	"github.com/ginjaninja78/branch-dashboard/internal/fetcher"
	"github.com/ginjaninja78/branch-dashboard/internal/metrics"
	"github.com/ginjaninja78/branch-dashboard/internal/types"
	"github.com/ginjaninja78/branch-dashboard/internal/validation"
	"github.com/ginjaninja78/branch-dashboard/internal/view"
	"github.com/ginjaninja78/branch-dashboard/internal/xlsxexport"
	"github.com/ginjaninja78/branch-dashboard/pkg/utils"
)

// =============================================================================
// RESPONSE TYPES
// =============================================================================

type datasetSummary struct {
	Code      string     `json:"code"`
	Title     string     `json:"title"`
	Records   int        `json:"records"`
	UpdatedAt string     `json:"updated_at,omitempty"`
	Loading   bool       `json:"loading"`
	Stale     bool       `json:"stale"`
	Error     string     `json:"error,omitempty"`
	LoadedAt  *time.Time `json:"loaded_at,omitempty"`
}

type datasetDetail struct {
	datasetSummary
	Headers    []string                      `json:"headers"`
	Identities []string                      `json:"identities"`
	Selection  string                        `json:"selection"`
	Rows       []types.Record                `json:"rows"`
	RowTiers   []rowTiers                    `json:"row_tiers,omitempty"`
	Warnings   []*validation.ValidationError `json:"warnings"`
}

// rowTiers classifies one collection row for the branch table.
type rowTiers struct {
	Identity   string       `json:"identity"`
	Collection metrics.Tier `json:"collection"`
	Overdue    metrics.Tier `json:"overdue"`
}

type cardsResponse struct {
	Code    string         `json:"code"`
	Scope   string         `json:"scope"`
	Label   string         `json:"label"`
	Records int            `json:"records"`
	Theme   config.Theme   `json:"theme"`
	Cards   []metrics.Card `json:"cards"`
}

// =============================================================================
// HANDLERS
// =============================================================================

func (s *Server) handlePreferences(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"theme": config.ThemeFrom(r.Context())})
}

func (s *Server) handleListDatasets(w http.ResponseWriter, r *http.Request) {
	views := s.registry.Views()
	out := make([]datasetSummary, 0, len(views))
	for _, v := range views {
		out = append(out, summarize(v.State()))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDataset(w http.ResponseWriter, r *http.Request) {
	v := viewFrom(r)
	st := v.State()
	if st.Result == nil {
		writeViewError(w, st)
		return
	}

	ds := st.Result.Dataset
	detail := datasetDetail{
		datasetSummary: summarize(st),
		Headers:        ds.Headers,
		Identities:     ds.Identities(),
		Selection:      st.Selection.String(),
		Rows:           ds.Records,
	}
	if st.Result.Validation != nil {
		detail.Warnings = st.Result.Validation.Errors
	}
	if v.Spec().Code == metrics.CollectionSpec.Code {
		for _, r := range ds.Records {
			collection, overdue := metrics.RecordTiers(r)
			detail.RowTiers = append(detail.RowTiers, rowTiers{Identity: r.Identity(), Collection: collection, Overdue: overdue})
		}
	}
	writeJSON(w, http.StatusOK, detail)
}

func (s *Server) handleCombined(w http.ResponseWriter, r *http.Request) {
	s.writeCards(w, r, types.CombinedScope())
}

func (s *Server) handleRecord(w http.ResponseWriter, r *http.Request) {
	identity := chi.URLParam(r, "identity")
	if unescaped, err := url.PathUnescape(identity); err == nil {
		identity = unescaped
	}
	s.writeCards(w, r, types.SingleScope(identity))
}

func (s *Server) writeCards(w http.ResponseWriter, r *http.Request, scope types.Scope) {
	v := viewFrom(r)
	m, cards, err := v.Cards(scope)
	if err != nil {
		if errors.Is(err, view.ErrUnknownRecord) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeViewError(w, v.State())
		return
	}

	writeJSON(w, http.StatusOK, cardsResponse{
		Code:    v.Spec().Code,
		Scope:   scope.String(),
		Label:   m.Label,
		Records: m.Records,
		Theme:   config.ThemeFrom(r.Context()),
		Cards:   cards,
	})
}

func (s *Server) handleSpread(w http.ResponseWriter, r *http.Request) {
	v := viewFrom(r)
	ds, err := v.Dataset()
	if err != nil {
		writeViewError(w, v.State())
		return
	}

	fields := metrics.PairFields(v.Spec())
	out := make([]metrics.Spread, 0, len(fields))
	for _, f := range fields {
		out = append(out, metrics.PercentageSpread(ds, v.Spec(), f))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	v := viewFrom(r)
	if !v.Spec().PlazaExport {
		writeError(w, http.StatusNotFound, "export not available for "+v.Spec().Code)
		return
	}
	ds, err := v.Dataset()
	if err != nil {
		writeViewError(w, v.State())
		return
	}
	if ds.Len() == 0 {
		writeError(w, http.StatusConflict, "no data available to export")
		return
	}

	name := utils.GenerateOutputFileName(s.cfg.ExportFileFormat, ".xlsx", map[string]string{"dataset": v.Spec().Code})
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))

	report := xlsxexport.BuildPlazaReport(ds, v.Spec().Title)
	if _, err := report.WriteTo(w); err != nil {
		s.logger.Error("export %s: %v", v.Spec().Code, err)
	}
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	v := viewFrom(r)
	if err := v.Refresh(r.Context()); err != nil {
		s.logger.Warn("refresh %s: %v", v.Spec().Code, err)
		writeJSON(w, http.StatusBadGateway, summarize(v.State()))
		return
	}
	writeJSON(w, http.StatusOK, summarize(v.State()))
}

func (s *Server) handleSalesKPIs(w http.ResponseWriter, r *http.Request) {
	v, ok := s.registry.Get(metrics.SalesSpec.Code)
	if !ok {
		writeError(w, http.StatusNotFound, "sales dataset not registered")
		return
	}
	ds, err := v.Dataset()
	if err != nil {
		writeViewError(w, v.State())
		return
	}
	writeJSON(w, http.StatusOK, metrics.ComputeSalesKPIs(ds))
}

func (s *Server) handleCollectionKPIs(w http.ResponseWriter, r *http.Request) {
	v, ok := s.registry.Get(metrics.CollectionSpec.Code)
	if !ok {
		writeError(w, http.StatusNotFound, "collection dataset not registered")
		return
	}
	ds, err := v.Dataset()
	if err != nil {
		writeViewError(w, v.State())
		return
	}
	writeJSON(w, http.StatusOK, metrics.ComputeCollectionKPIs(ds))
}

// =============================================================================
// HELPERS
// =============================================================================

func summarize(st view.State) datasetSummary {
	out := datasetSummary{
		Code:    st.Code,
		Title:   st.Title,
		Loading: st.Loading,
		Stale:   st.Stale,
	}
	if st.Err != nil {
		out.Error = fetcher.Message(st.Err)
	}
	if st.Result != nil {
		out.Records = st.Result.Dataset.Len()
		out.UpdatedAt = st.Result.Dataset.UpdatedAt
		loaded := st.LoadedAt
		out.LoadedAt = &loaded
	}
	return out
}

func writeViewError(w http.ResponseWriter, st view.State) {
	if st.Err != nil {
		writeJSON(w, http.StatusServiceUnavailable, summarize(st))
		return
	}
	writeError(w, http.StatusServiceUnavailable, view.ErrNotLoaded.Error())
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
