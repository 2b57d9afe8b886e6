package restapi

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartbizmap.kr/internal/app"
	"smartbizmap.kr/internal/logging"
	"smartbizmap.kr/internal/models"
)

func TestSecurityHeaders(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("test response"))
	})

	rec := httptest.NewRecorder()
	securityHeaders(handler).ServeHTTP(rec, httptest.NewRequest("GET", "/test", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "test response", rec.Body.String())

	headers := rec.Header()
	assert.Equal(t, "nosniff", headers.Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", headers.Get("X-Frame-Options"))
	assert.Equal(t, "max-age=31536000; includeSubDomains", headers.Get("Strict-Transport-Security"))
	assert.Equal(t, "1; mode=block", headers.Get("X-XSS-Protection"))
	assert.Equal(t, "strict-origin-when-cross-origin", headers.Get("Referrer-Policy"))
	assert.Equal(t, "default-src 'none'; frame-ancestors 'none';", headers.Get("Content-Security-Policy"))
	assert.Empty(t, headers.Get("Access-Control-Allow-Origin"), "CORS headers need an Origin")
}

func TestSecurityHeadersWithCORS(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Origin", "https://map.example.kr")
	securityHeaders(okHandler).ServeHTTP(rec, req)

	headers := rec.Header()
	assert.Equal(t, "*", headers.Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "GET, POST, PUT, DELETE, OPTIONS", headers.Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "Content-Type, Authorization", headers.Get("Access-Control-Allow-Headers"))
	assert.Equal(t, "86400", headers.Get("Access-Control-Max-Age"))
}

func TestSecurityHeadersOPTIONSRequest(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("Handler should not be called for OPTIONS request")
	})

	req := httptest.NewRequest("OPTIONS", "/api/v1/sessions", nil)
	req.Header.Set("Origin", "https://map.example.kr")
	rec := httptest.NewRecorder()
	securityHeaders(handler).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestWithSecurityHeaders(t *testing.T) {
	api := &RestAPI{Application: &app.Application{}}
	rec := httptest.NewRecorder()
	api.WithSecurityHeaders(okHandler).ServeHTTP(rec, httptest.NewRequest("GET", "/test", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func TestRequestLoggingMiddleware(t *testing.T) {
	t.Run("logs HTTP request details", func(t *testing.T) {
		var buf bytes.Buffer
		logger := logging.NewStructuredLogger(&buf, slog.LevelInfo)

		handler := NewRequestLoggingMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusCreated)
		}))

		req := httptest.NewRequest("POST", "/api/v1/sessions?key=secret", nil)
		req.Header.Set("User-Agent", "test-client/1.0")
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, req)

		assert.Equal(t, http.StatusCreated, recorder.Code)

		output := buf.String()
		assert.Contains(t, output, `"level":"INFO"`)
		assert.Contains(t, output, `"msg":"http_request"`)
		assert.Contains(t, output, `"method":"POST"`)
		assert.Contains(t, output, `"path":"/api/v1/sessions"`)
		assert.Contains(t, output, `"status":201`)
		assert.Contains(t, output, `"user_agent":"test-client/1.0"`)
		assert.Contains(t, output, `"duration_ms":`)
		assert.Contains(t, output, `"component":"http_server"`)
		assert.NotContains(t, output, "secret")
	})

	t.Run("default status is 200", func(t *testing.T) {
		var buf bytes.Buffer
		logger := logging.NewStructuredLogger(&buf, slog.LevelInfo)

		handler := NewRequestLoggingMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("ok"))
		}))
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/test", nil))

		assert.Contains(t, buf.String(), `"status":200`)
	})

	t.Run("logger is available in request context", func(t *testing.T) {
		var buf bytes.Buffer
		logger := logging.NewStructuredLogger(&buf, slog.LevelInfo)

		handler := NewRequestLoggingMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logging.FromContext(r.Context()).Info("handler called", slog.String("test", "value"))
			w.WriteHeader(http.StatusOK)
		}))
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/test", nil))

		output := buf.String()
		assert.Contains(t, output, `"msg":"handler called"`)
		assert.Contains(t, output, `"msg":"http_request"`)
		assert.Len(t, strings.Split(strings.TrimSpace(output), "\n"), 2)
	})
}

func TestRequestLoggingIntegration(t *testing.T) {
	var buf bytes.Buffer
	api := createTestApi(t)
	api.Logger = logging.NewStructuredLogger(&buf, slog.LevelInfo)

	router := httprouter.New()
	api.SetRoutes(router)
	handler := api.Handler(router)

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest("GET", "/api/v1/current-time", nil))

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	output := buf.String()
	assert.Contains(t, output, `"status":401`)
	assert.Contains(t, output, `"path":"/api/v1/current-time"`)
	assert.Equal(t, "nosniff", recorder.Header().Get("X-Content-Type-Options"))
}

func TestCompressionMiddleware(t *testing.T) {
	largeResponse := strings.Repeat(`{"name": "역삼1동"}`, 1000)
	testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(largeResponse))
	})

	t.Run("compresses response when gzip accepted", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set("Accept-Encoding", "gzip")
		recorder := httptest.NewRecorder()

		CompressionMiddleware(testHandler).ServeHTTP(recorder, req)

		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Equal(t, "gzip", recorder.Header().Get("Content-Encoding"))

		reader, err := gzip.NewReader(bytes.NewReader(recorder.Body.Bytes()))
		require.NoError(t, err)
		defer func() { _ = reader.Close() }()

		decompressed, err := io.ReadAll(reader)
		require.NoError(t, err)
		assert.Equal(t, largeResponse, string(decompressed))
		assert.Less(t, recorder.Body.Len(), len(largeResponse))
	})

	t.Run("does not compress when gzip not accepted", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		CompressionMiddleware(testHandler).ServeHTTP(recorder, httptest.NewRequest("GET", "/test", nil))

		assert.Empty(t, recorder.Header().Get("Content-Encoding"))
		assert.Equal(t, largeResponse, recorder.Body.String())
	})

	t.Run("does not compress small responses", func(t *testing.T) {
		small := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"code":200}`))
		})
		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set("Accept-Encoding", "gzip")
		recorder := httptest.NewRecorder()

		CompressionMiddleware(small).ServeHTTP(recorder, req)

		assert.Empty(t, recorder.Header().Get("Content-Encoding"))
		assert.Equal(t, `{"code":200}`, recorder.Body.String())
	})

	t.Run("skips content types outside the configured set", func(t *testing.T) {
		binary := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write(bytes.Repeat([]byte{0x89}, 4096))
		})
		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set("Accept-Encoding", "gzip")
		recorder := httptest.NewRecorder()

		CompressionMiddleware(binary).ServeHTTP(recorder, req)

		assert.Empty(t, recorder.Header().Get("Content-Encoding"))
	})
}

func TestServerErrorResponse(t *testing.T) {
	api := &RestAPI{Application: &app.Application{}}

	rr := httptest.NewRecorder()
	api.serverErrorResponse(rr, httptest.NewRequest("GET", "/test", nil), errors.New("test server error"))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var response models.ResponseModel
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
	assert.Equal(t, http.StatusInternalServerError, response.Code)
	assert.Equal(t, "internal server error", response.Text)
	assert.Equal(t, models.ResponseVersion, response.Version)
	assert.InDelta(t, time.Now().UnixMilli(), response.CurrentTime, 5000)
}

func TestValidationErrorResponse(t *testing.T) {
	api := &RestAPI{Application: &app.Application{}}

	rr := httptest.NewRecorder()
	api.validationErrorResponse(rr, httptest.NewRequest("GET", "/test", nil),
		map[string][]string{"budget": {"budget must be non-negative"}})

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"fieldErrors":{"budget":["budget must be non-negative"]}}`, rr.Body.String())
}
