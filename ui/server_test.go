package ui

import (
	"bytes"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loanlens/domain/loan"
	"loanlens/internal/aggregate"
	"loanlens/internal/charts"
	"loanlens/internal/dashboard"
	"loanlens/internal/errors"
	"loanlens/internal/testkit"
)

type datasetStub struct {
	ds  *loan.Dataset
	err error
}

func (d datasetStub) Current() (*loan.Dataset, error) { return d.ds, d.err }
func (d datasetStub) Ready() bool                      { return d.ds != nil }
func (d datasetStub) LastError() error                 { return d.err }

func newTestServer(t *testing.T, stub datasetStub, opts dashboard.Options) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	svc := dashboard.NewService(stub, dashboard.NewMemoryCache(32), opts, nil)
	s, err := NewServer(Config{GinMode: gin.TestMode}, svc, charts.NewBuilder("/assets/"), nil, nil)
	require.NoError(t, err)
	return s
}

func threeLoanServer(t *testing.T) *Server {
	return newTestServer(t, datasetStub{ds: testkit.NewDataset(testkit.ThreeLoans())}, dashboard.Options{})
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	h.ServeHTTP(w, req)
	return w
}

func TestOverviewPage(t *testing.T) {
	w := get(t, threeLoanServer(t).Handler(), "/")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()

	assert.Contains(t, body, "Financial Insight Dashboard : Loan Performance &amp; Trends")
	assert.Contains(t, body, "<strong>Overview</strong>")
	assert.Contains(t, body, "Total Loans")
	assert.Contains(t, body, "$6,000")
	assert.Contains(t, body, "$2,000")
	assert.Contains(t, body, "12%")
	assert.Contains(t, body, "Loans Issued Over Time")
	assert.Contains(t, body, "Issue Date Analysis")
	assert.Contains(t, body, `id="chart_condition"`)
	assert.Contains(t, body, `id="chart_grade"`)
	assert.Contains(t, body, "/assets/echarts.min.js")
	// distribution section is off on the overview page by default
	assert.NotContains(t, body, `id="chart_histogram"`)
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
}

func TestOverviewPageWithDistribution(t *testing.T) {
	s := newTestServer(t, datasetStub{ds: testkit.NewDataset(testkit.ThreeLoans())}, dashboard.Options{OverviewDistribution: true})
	w := get(t, s.Handler(), "/")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `id="chart_histogram"`)
	assert.Contains(t, w.Body.String(), `id="chart_box_plot"`)
}

func TestPerformancePage(t *testing.T) {
	h := threeLoanServer(t).Handler()

	w := get(t, h, "/performance")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Select Loan Condition")
	assert.Contains(t, body, `<option value="Good Loan" selected>`)
	assert.Contains(t, body, "Loan Amount Distribution by Condition")
	assert.Contains(t, body, "Loan Amount Distribution by Purpose")
	assert.NotContains(t, body, "No loans match the selected condition.")

	w = get(t, h, "/performance?condition=Bad+Loan")
	require.Equal(t, http.StatusOK, w.Code)
	body = w.Body.String()
	assert.Contains(t, body, `<option value="Bad Loan" selected>`)
	assert.Contains(t, body, "No loans match the selected condition.")
	assert.Contains(t, body, charts.NoData)
}

func TestPerformancePageInvalidCondition(t *testing.T) {
	w := get(t, threeLoanServer(t).Handler(), "/performance?condition=Meh")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "unknown loan condition")
	assert.Contains(t, body, errors.CodeInvalidInput)
	assert.NotContains(t, body, `id="chart_histogram"`)
}

func TestPagesWithoutDataset(t *testing.T) {
	stub := datasetStub{err: errors.DatasetNotFound("data_input/loan_clean")}
	h := newTestServer(t, stub, dashboard.Options{}).Handler()

	for _, path := range []string{"/", "/performance"} {
		w := get(t, h, path)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code, path)
		assert.Contains(t, w.Body.String(), "dataset file not found: data_input/loan_clean")
		assert.Contains(t, w.Body.String(), errors.CodeDatasetNotFound)
		assert.NotContains(t, w.Body.String(), "Total Loans")
	}
}

func TestAPI(t *testing.T) {
	h := threeLoanServer(t).Handler()

	w := get(t, h, "/api/v1/summary")
	require.Equal(t, http.StatusOK, w.Code)
	var summary aggregate.Summary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))
	assert.Equal(t, aggregate.Summary{TotalLoans: 3, TotalAmount: 6000, AvgInterestRate: 12, AvgLoanAmount: 2000, HasData: true}, summary)

	w = get(t, h, "/api/v1/trends/count")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"date":"2020-01-01","value":2},{"date":"2020-01-02","value":1}]`, w.Body.String())

	w = get(t, h, "/api/v1/trends/amount")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"date":"2020-01-01","value":3000},{"date":"2020-01-02","value":3000}]`, w.Body.String())

	w = get(t, h, "/api/v1/weekdays")
	require.Equal(t, http.StatusOK, w.Code)
	var weekdays []aggregate.CategoryCount
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &weekdays))
	require.Len(t, weekdays, 7)
	assert.Equal(t, "Monday", weekdays[0].Category)

	w = get(t, h, "/api/v1/grades")
	require.Equal(t, http.StatusOK, w.Code)
	var grades []aggregate.CategoryCount
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &grades))
	assert.Equal(t, "B", grades[0].Category)

	w = get(t, h, "/api/v1/conditions")
	require.Equal(t, http.StatusOK, w.Code)

	w = get(t, h, "/api/v1/dataset")
	require.Equal(t, http.StatusOK, w.Code)
	var info loan.Info
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
	assert.Equal(t, 3, info.Records)

	w = get(t, h, "/api/v1/distribution?condition=good+loan")
	require.Equal(t, http.StatusOK, w.Code)
	var dist dashboard.DistributionView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &dist))
	assert.Equal(t, loan.ConditionGood, dist.Condition)
	assert.Equal(t, 3, dist.Records)
}

func TestAPIErrors(t *testing.T) {
	h := threeLoanServer(t).Handler()

	w := get(t, h, "/api/v1/distribution?condition=nope")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":{"code":"INVALID_INPUT","message":"unknown loan condition \"nope\": choose one of Good Loan, Bad Loan"}}`, w.Body.String())

	w = get(t, h, "/api/v1/nothing")
	assert.Equal(t, http.StatusNotFound, w.Code)
	var body map[string]apiError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, errors.CodeNotFound, body["error"].Code)

	stub := datasetStub{err: errors.DatasetNotLoaded()}
	w = get(t, newTestServer(t, stub, dashboard.Options{}).Handler(), "/api/v1/summary")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, errors.CodeDatasetNotLoaded, body["error"].Code)
}

func TestChartPNG(t *testing.T) {
	h := threeLoanServer(t).Handler()

	for _, name := range charts.PNGNames {
		w := get(t, h, "/charts/"+name+".png")
		require.Equal(t, http.StatusOK, w.Code, name)
		assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
		_, err := png.Decode(bytes.NewReader(w.Body.Bytes()))
		assert.NoError(t, err, name)
	}

	w := get(t, h, "/charts/histogram.png?condition=Bad+Loan")
	assert.Equal(t, http.StatusOK, w.Code)

	w = get(t, h, "/charts/radar.png")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = get(t, h, "/charts/weekday")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = get(t, h, "/charts/histogram.png?condition=nope")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRequestIDPropagates(t *testing.T) {
	h := threeLoanServer(t).Handler()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/dataset", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	h.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

func TestStaticAssets(t *testing.T) {
	w := get(t, threeLoanServer(t).Handler(), "/static/dashboard.css")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAdminServer(t *testing.T) {
	ready := NewAdminServer(AdminConfig{Port: "0"}, datasetStub{ds: testkit.NewDataset(testkit.ThreeLoans())}, nil).Handler()
	w := get(t, ready, "/healthz")
	assert.Equal(t, http.StatusOK, w.Code)
	w = get(t, ready, "/readyz")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ready"}`, w.Body.String())

	notReady := NewAdminServer(AdminConfig{Port: "0"}, datasetStub{err: errors.DatasetNotLoaded()}, nil).Handler()
	w = get(t, notReady, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), errors.CodeDatasetNotLoaded)

	w = get(t, ready, "/debug/pprof/")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminServerProfiling(t *testing.T) {
	admin := NewAdminServer(AdminConfig{Host: "127.0.0.1", Port: "0", Profiling: true}, datasetStub{}, nil)
	assert.Equal(t, "127.0.0.1:0", admin.httpServer.Addr)

	w := get(t, admin.Handler(), "/debug/pprof/")
	assert.Equal(t, http.StatusOK, w.Code)
}
