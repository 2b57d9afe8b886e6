package restapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/require"

	"smartbizmap.kr/internal/app"
	"smartbizmap.kr/internal/appconf"
	"smartbizmap.kr/internal/cache"
	"smartbizmap.kr/internal/ingest"
	"smartbizmap.kr/internal/logging"
	"smartbizmap.kr/internal/lookup"
	"smartbizmap.kr/internal/models"
	"smartbizmap.kr/internal/pipeline"
	"smartbizmap.kr/internal/registry"
	"smartbizmap.kr/internal/scoring"
	"smartbizmap.kr/internal/session"
	"smartbizmap.kr/internal/telemetry"
)

type stubTrends struct {
	trends []lookup.Trend
	calls  atomic.Int32
}

func (s *stubTrends) FetchTrendingTitles(ctx context.Context, query string) []lookup.Trend {
	s.calls.Add(1)
	return s.trends
}

type stubNarrator struct {
	mu           sync.Mutex
	lastName     string
	lastIndustry string
}

func (s *stubNarrator) FetchNarrative(ctx context.Context, name string, m scoring.EntityMetrics, industry string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastName = name
	s.lastIndustry = industry
	return name + " 상권은 유동인구가 많습니다."
}

func (s *stubNarrator) last() (string, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastName, s.lastIndustry
}

// createTestApi creates a RestAPI backed by a pipeline loaded from the
// fixtures in testdata.
func createTestApi(t *testing.T) *RestAPI {
	t.Helper()
	return &RestAPI{Application: createTestApplication(t)}
}

func createTestApplication(t *testing.T) *app.Application {
	t.Helper()
	dataDir, err := filepath.Abs(filepath.Join("..", "..", "testdata"))
	require.NoError(t, err)
	cat, err := appconf.LoadCatalog(filepath.Join(dataDir, "catalog.toml"))
	require.NoError(t, err)
	overrides, err := registry.DefaultOverrides()
	require.NoError(t, err)

	reg := registry.New(overrides)
	metrics := telemetry.New()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	config := pipeline.Config{
		Registry: reg,
		Loader: &ingest.Loader{
			Fetcher:   ingest.FileFetcher{BaseDir: dataDir},
			Cache:     cache.NewMemory(),
			Namespace: cat.Version,
			Metrics:   metrics,
		},
		Logger:  logger,
		Metrics: metrics,
	}
	config.ApplyCatalog(cat)

	manager, err := pipeline.New(config)
	require.NoError(t, err)
	t.Cleanup(manager.Shutdown)
	require.NoError(t, manager.Start(context.Background()))

	sessions := session.NewStore(reg, manager.Run, logger, metrics)
	t.Cleanup(sessions.Close)

	return &app.Application{
		Config: appconf.Config{
			Env:     appconf.EnvFlagToEnvironment("test"),
			ApiKeys: []string{"TEST"},
		},
		Logger:   logger,
		Registry: reg,
		Pipeline: manager,
		Sessions: sessions,
		Trends:   &stubTrends{},
		Narrator: &stubNarrator{},
		Metrics:  metrics,
	}
}

func newTestServer(t *testing.T, api *RestAPI) *httptest.Server {
	t.Helper()
	router := httprouter.New()
	api.SetRoutes(router)
	server := httptest.NewServer(api.Handler(router))
	t.Cleanup(server.Close)
	return server
}

// serveAndRetrieveEndpoint sets up a test server, makes a GET request to the
// specified endpoint, and returns the response and decoded model.
func serveAndRetrieveEndpoint(t *testing.T, endpoint string) (*RestAPI, *http.Response, models.ResponseModel) {
	api := createTestApi(t)
	resp, model := serveApiAndRetrieveEndpoint(t, api, endpoint)
	return api, resp, model
}

func serveApiAndRetrieveEndpoint(t *testing.T, api *RestAPI, endpoint string) (*http.Response, models.ResponseModel) {
	return requestEndpoint(t, newTestServer(t, api), http.MethodGet, endpoint)
}

func requestEndpoint(t *testing.T, server *httptest.Server, method, endpoint string) (*http.Response, models.ResponseModel) {
	t.Helper()
	resp, body := rawRequest(t, server, method, endpoint)

	var response models.ResponseModel
	require.NoError(t, json.Unmarshal(body, &response), string(body))
	return resp, response
}

func rawRequest(t *testing.T, server *httptest.Server, method, endpoint string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequest(method, server.URL+endpoint, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer logging.SafeCloseWithLogging(resp.Body,
		slog.Default().With(slog.String("component", "test")),
		"http_response_body")

	var buf bytes.Buffer
	_, err = io.Copy(&buf, resp.Body)
	require.NoError(t, err)
	return resp, buf.Bytes()
}

func fieldErrorsOf(t *testing.T, body []byte) map[string][]string {
	t.Helper()
	var response struct {
		FieldErrors map[string][]string `json:"fieldErrors"`
	}
	require.NoError(t, json.Unmarshal(body, &response), string(body))
	return response.FieldErrors
}

func dataMap(t *testing.T, model models.ResponseModel) map[string]interface{} {
	t.Helper()
	data, ok := model.Data.(map[string]interface{})
	require.True(t, ok, "data should be an object")
	return data
}

func listOf(t *testing.T, model models.ResponseModel) []interface{} {
	t.Helper()
	list, ok := dataMap(t, model)["list"].([]interface{})
	require.True(t, ok, "data.list should be an array")
	return list
}

func entryOf(t *testing.T, model models.ResponseModel) map[string]interface{} {
	t.Helper()
	entry, ok := dataMap(t, model)["entry"].(map[string]interface{})
	require.True(t, ok, "data.entry should be an object")
	return entry
}

func entityID(t *testing.T, api *RestAPI, name string) string {
	t.Helper()
	e, ok := api.Registry.EntityByName(name)
	require.True(t, ok, name)
	return e.ID
}
