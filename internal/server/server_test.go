package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/branch-dashboard/internal/config"
	"github.com/ginjaninja78/branch-dashboard/internal/fetcher"
	"github.com/ginjaninja78/branch-dashboard/internal/metrics"
	"github.com/ginjaninja78/branch-dashboard/internal/pipeline"
	"github.com/ginjaninja78/branch-dashboard/internal/view"
)

type staticFetcher struct {
	text string
	err  error
}

func (f staticFetcher) Fetch(ctx context.Context, url string) (string, error) {
	return f.text, f.err
}

const salesCSV = "Branch Name,Total Target,Total Ach,Retail Target,Retial Ach\n" +
	"Dhaka North,1000,900,500,250\n" +
	"Khulna,1000,300,500,500\n" +
	"Area,2000,1200,1000,750\n"

const dealerCSV = "S/N,Branch Name,Plaza Name,Dealer Qty,Dealer Due\n" +
	"1,Dhaka,North Plaza,10,1000\n" +
	"2,Khulna,South Plaza,5,500\n"

func newTestServer(t *testing.T) *Server {
	t.Helper()

	newView := func(spec metrics.DatasetSpec, f fetcher.Fetcher) *view.View {
		return view.New(pipeline.New(spec, config.DatasetConfig{Code: spec.Code, URL: "http://sheet/" + spec.Code}, f, nil))
	}

	sales := newView(metrics.SalesSpec, staticFetcher{text: salesCSV})
	dealer := newView(metrics.DealerSpec, staticFetcher{text: dealerCSV})
	collection := newView(metrics.CollectionSpec, staticFetcher{err: fetcher.ErrFetch})

	registry := view.NewRegistryFromViews(sales, collection, dealer)
	registry.RefreshAll(context.Background())

	cfg := config.Default()
	cfg.Theme = config.ThemeDark
	return New(cfg, registry, nil)
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rec.Body).Decode(v))
}

func TestPreferences(t *testing.T) {
	rec := get(t, newTestServer(t), "/api/preferences")

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	decode(t, rec, &body)
	assert.Equal(t, "dark", body["theme"])
}

func TestListDatasets(t *testing.T) {
	rec := get(t, newTestServer(t), "/api/datasets")

	require.Equal(t, http.StatusOK, rec.Code)
	var body []datasetSummary
	decode(t, rec, &body)
	require.Len(t, body, 3)

	assert.Equal(t, "sales", body[0].Code)
	assert.Equal(t, 3, body[0].Records)
	assert.Empty(t, body[0].Error)

	assert.Equal(t, "collection", body[1].Code)
	assert.Equal(t, "failed to load data", body[1].Error)
	assert.False(t, body[1].Stale)
}

func TestDatasetDetail(t *testing.T) {
	rec := get(t, newTestServer(t), "/api/datasets/sales")

	require.Equal(t, http.StatusOK, rec.Code)
	var body datasetDetail
	decode(t, rec, &body)
	assert.Equal(t, []string{"Dhaka North", "Khulna", "Area"}, body.Identities)
	assert.Equal(t, "Dhaka North", body.Selection)
	assert.Len(t, body.Rows, 3)
}

func TestDatasetDetail_Errors(t *testing.T) {
	s := newTestServer(t)

	assert.Equal(t, http.StatusNotFound, get(t, s, "/api/datasets/nope").Code)
	assert.Equal(t, http.StatusServiceUnavailable, get(t, s, "/api/datasets/collection").Code)
}

func TestCombinedCards(t *testing.T) {
	rec := get(t, newTestServer(t), "/api/datasets/sales/combined")

	require.Equal(t, http.StatusOK, rec.Code)
	var body cardsResponse
	decode(t, rec, &body)
	assert.Equal(t, "All Branches (Combined)", body.Label)
	assert.Equal(t, config.ThemeDark, body.Theme)
	require.NotEmpty(t, body.Cards)

	total := body.Cards[0]
	assert.Equal(t, "Total", total.Title)
	require.NotNil(t, total.Fields[0].Percent)
	assert.Equal(t, 60, *total.Fields[0].Percent)
	assert.True(t, total.Highlighted)
}

func TestRecordCards(t *testing.T) {
	s := newTestServer(t)

	rec := get(t, s, "/api/datasets/sales/records/Dhaka%20North")
	require.Equal(t, http.StatusOK, rec.Code)
	var body cardsResponse
	decode(t, rec, &body)
	assert.Equal(t, "Dhaka North", body.Label)
	assert.False(t, body.Cards[0].Highlighted)

	assert.Equal(t, http.StatusNotFound, get(t, s, "/api/datasets/sales/records/Rajshahi").Code)
}

func TestKPIs(t *testing.T) {
	s := newTestServer(t)

	rec := get(t, s, "/api/kpis/sales")
	require.Equal(t, http.StatusOK, rec.Code)
	var kpis metrics.SalesKPIs
	decode(t, rec, &kpis)
	assert.Equal(t, 60, kpis.TotalPct)

	assert.Equal(t, http.StatusServiceUnavailable, get(t, s, "/api/kpis/collection").Code)
}

func TestSpread(t *testing.T) {
	rec := get(t, newTestServer(t), "/api/datasets/sales/spread")

	require.Equal(t, http.StatusOK, rec.Code)
	var body []metrics.Spread
	decode(t, rec, &body)
	assert.NotEmpty(t, body)
}

func TestExport(t *testing.T) {
	s := newTestServer(t)

	assert.Equal(t, http.StatusNotFound, get(t, s, "/api/datasets/sales/export.xlsx").Code)

	rec := get(t, s, "/api/datasets/dealer/export.xlsx")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), ".xlsx")

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	assert.Contains(t, f.GetSheetList(), "North Plaza")
}

func TestRefresh(t *testing.T) {
	s := newTestServer(t)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/datasets/sales/refresh", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/datasets/collection/refresh", nil))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	var body datasetSummary
	decode(t, rec, &body)
	assert.Equal(t, "failed to load data", body.Error)
}

func TestDatasetDetail_CollectionRowTiers(t *testing.T) {
	collection := view.New(pipeline.New(metrics.CollectionSpec,
		config.DatasetConfig{Code: "collection", URL: "http://sheet/collection"},
		staticFetcher{text: "Branch Name,Collection Qty %,Overdue %\nA,35%,5%\nB,10%,25%\n"}, nil))
	registry := view.NewRegistryFromViews(collection)
	registry.RefreshAll(context.Background())
	s := New(config.Default(), registry, nil)

	rec := get(t, s, "/api/datasets/collection")
	require.Equal(t, http.StatusOK, rec.Code)
	var body datasetDetail
	decode(t, rec, &body)

	assert.Equal(t, []rowTiers{
		{Identity: "A", Collection: metrics.TierGood, Overdue: metrics.TierGood},
		{Identity: "B", Collection: metrics.TierBad, Overdue: metrics.TierBad},
	}, body.RowTiers)
}

func TestDatasetDetail_NoRowTiersOutsideCollection(t *testing.T) {
	rec := get(t, newTestServer(t), "/api/datasets/sales")
	require.Equal(t, http.StatusOK, rec.Code)
	var body datasetDetail
	decode(t, rec, &body)
	assert.Empty(t, body.RowTiers)
}
