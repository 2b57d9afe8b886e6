package restapi

import (
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartbizmap.kr/internal/lookup"
)

func TestCurrentTimeHandler(t *testing.T) {
	_, resp, model := serveAndRetrieveEndpoint(t, "/api/v1/current-time?key=TEST")

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	entry := entryOf(t, model)
	now := time.Now().UnixMilli()
	assert.InDelta(t, now, entry["time"].(float64), 5000)
	_, err := time.Parse(time.RFC3339, entry["readableTime"].(string))
	assert.NoError(t, err)
}

func TestStatusHandler(t *testing.T) {
	_, resp, model := serveAndRetrieveEndpoint(t, "/api/v1/status?key=TEST")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	entry := entryOf(t, model)
	assert.Equal(t, "test", entry["env"])
	assert.Equal(t, 0.0, entry["sessions"])

	pipeline := entry["pipeline"].(map[string]interface{})
	assert.Equal(t, 1.0, pipeline["dataVersion"])
	sources := pipeline["sources"].([]interface{})
	assert.Len(t, sources, 5)
	for _, s := range sources {
		src := s.(map[string]interface{})
		assert.NotContains(t, src, "error", src["name"])
		assert.Positive(t, src["records"], src["name"])
	}
}

func TestRankingsHandler(t *testing.T) {
	api, resp, model := serveAndRetrieveEndpoint(t, "/api/v1/rankings?key=TEST&budget=8000")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	list := listOf(t, model)
	require.Len(t, list, len(api.Registry.Entities()))

	prev := 101.0
	for i, item := range list {
		e := item.(map[string]interface{})
		assert.Equal(t, float64(i+1), e["rank"])
		total := e["totalScore"].(float64)
		assert.LessOrEqual(t, total, prev)
		prev = total
	}
}

func TestIndustriesHandler(t *testing.T) {
	api := createTestApi(t)
	server := newTestServer(t, api)

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{name: "all industries with sales", query: "", want: []string{"한식음식점", "커피-음료"}},
		{name: "category code", query: "&category=food", want: []string{"한식음식점", "커피-음료"}},
		{name: "category label", query: "&category=" + url.QueryEscape("외식업"), want: []string{"한식음식점", "커피-음료"}},
		{name: "other category", query: "&category=retail", want: []string{}},
		{name: "search", query: "&q=" + url.QueryEscape("커피"), want: []string{"커피-음료"}},
		{name: "minimum startup cost", query: "&minCost=1000000", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, model := requestEndpoint(t, server, http.MethodGet, "/api/v1/industries?key=TEST"+tt.query)
			require.Equal(t, http.StatusOK, resp.StatusCode)

			names := []string{}
			for _, item := range listOf(t, model) {
				m := item.(map[string]interface{})
				names = append(names, m["name"].(string))
				assert.Len(t, m["radar"], 5)
			}
			assert.ElementsMatch(t, tt.want, names)
		})
	}
}

func TestIndustriesHandlerValidation(t *testing.T) {
	api := createTestApi(t)
	server := newTestServer(t, api)

	resp, body := rawRequest(t, server, http.MethodGet, "/api/v1/industries?key=TEST&category=spaceships&minSales=-1")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	errs := fieldErrorsOf(t, body)
	assert.Contains(t, errs, "category")
	assert.Contains(t, errs, "minSales")
}

func TestTrendsHandlerFallback(t *testing.T) {
	_, resp, model := serveAndRetrieveEndpoint(t, "/api/v1/trends?key=TEST")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	list := listOf(t, model)
	require.Len(t, list, len(lookup.FallbackTrends))
	assert.Equal(t, lookup.FallbackTrends[0].Title, list[0].(map[string]interface{})["title"])
}

func TestTrendsHandlerUsesFetcher(t *testing.T) {
	api := createTestApi(t)
	trends := api.Trends.(*stubTrends)
	trends.trends = []lookup.Trend{{ID: "abc", Title: "카페 창업 브이로그"}}

	resp, model := serveApiAndRetrieveEndpoint(t, api, "/api/v1/trends?key=TEST&q="+url.QueryEscape("카페 창업"))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	list := listOf(t, model)
	require.Len(t, list, 1)
	assert.Equal(t, "카페 창업 브이로그", list[0].(map[string]interface{})["title"])
	assert.EqualValues(t, 1, trends.calls.Load())
}

func TestMetricsEndpointSkipsApiKey(t *testing.T) {
	api := createTestApi(t)
	server := newTestServer(t, api)

	_, _ = requestEndpoint(t, server, http.MethodGet, "/api/v1/rankings?key=TEST")

	resp, body := rawRequest(t, server, http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "bizmap_pipeline_runs_total")
	assert.Contains(t, string(body), "bizmap_ingest_rows_total")
}

func TestUnknownRouteReturnsNotFound(t *testing.T) {
	_, resp, model := serveAndRetrieveEndpoint(t, "/api/v1/nothing-here?key=TEST")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, http.StatusNotFound, model.Code)
}
