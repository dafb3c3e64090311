package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/koskimas/typeshift/internal/pipeline"
	"github.com/koskimas/typeshift/internal/store"
	assert "github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newServer(t *testing.T, opts Options) (*Server, http.Handler) {
	log := zaptest.NewLogger(t).Sugar()
	p := pipeline.New(log, pipeline.Options{Format: true})

	s, err := New(log, p, store.NewMemorySettings(), opts)
	assert.NoError(t, err)
	return s, s.Handler()
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	var v T
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestTransform(t *testing.T) {
	_, h := newServer(t, Options{})

	rec := do(t, h, "POST", "/api/transform", `{"source": "export type A = { a: string }", "target": "zod"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Header().Get(headerRequestID))

	res := decode[transformResponse](t, rec)
	assert.Empty(t, res.Error)
	assert.Contains(t, res.Output, "export const A = z.object(")
	assert.Empty(t, res.Unsupported)
}

func TestTransformUsesTargetSetting(t *testing.T) {
	_, h := newServer(t, Options{DefaultTarget: "typescript"})

	rec := do(t, h, "POST", "/api/transform", `{"source": "type A = string"}`)
	res := decode[transformResponse](t, rec)
	assert.Contains(t, res.Output, "export type A = string")

	rec = do(t, h, "PUT", "/api/settings/target", `{"value": " JSONSchema "}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, "POST", "/api/transform", `{"source": "type A = string"}`)
	res = decode[transformResponse](t, rec)
	assert.Contains(t, res.Output, `"$defs"`)
}

func TestTransformReportsErrors(t *testing.T) {
	_, h := newServer(t, Options{})

	rec := do(t, h, "POST", "/api/transform", `{"source": "type A = {", "target": "sql"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	res := decode[transformResponse](t, rec)
	assert.NotEmpty(t, res.Error)
	assert.True(t, strings.HasPrefix(res.Output, "-- error: "))

	rec = do(t, h, "POST", "/api/transform", `{"source": "type A = string", "target": "flow"}`)
	res = decode[transformResponse](t, rec)
	assert.Contains(t, res.Error, "unknown target")
}

func TestTransformInvalidBody(t *testing.T) {
	_, h := newServer(t, Options{})

	rec := do(t, h, "POST", "/api/transform", `{"source": `)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[map[string]string](t, rec)["error"], "invalid request body")
}

func TestRateLimit(t *testing.T) {
	_, h := newServer(t, Options{RateLimit: 0.001, Burst: 2})

	body := `{"source": "type A = string", "target": "zod"}`
	assert.Equal(t, http.StatusOK, do(t, h, "POST", "/api/transform", body).Code)
	assert.Equal(t, http.StatusOK, do(t, h, "POST", "/api/transform", body).Code)
	assert.Equal(t, http.StatusTooManyRequests, do(t, h, "POST", "/api/transform", body).Code)

	// Other routes are not limited.
	assert.Equal(t, http.StatusOK, do(t, h, "GET", "/api/targets", "").Code)
}

func TestTargets(t *testing.T) {
	_, h := newServer(t, Options{})

	rec := do(t, h, "GET", "/api/targets", "")
	targets := decode[[]string](t, rec)
	assert.Len(t, targets, 16)
	assert.Equal(t, "typebox", targets[0])
	assert.Contains(t, targets, "sql")
}

func TestSettings(t *testing.T) {
	_, h := newServer(t, Options{})

	rec := do(t, h, "GET", "/api/settings/target", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, setting{Key: "target", Value: "zod"}, decode[setting](t, rec))

	assert.Equal(t, http.StatusNotFound, do(t, h, "GET", "/api/settings/theme", "").Code)

	rec = do(t, h, "PUT", "/api/settings/theme", `{"value": "dark"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, "GET", "/api/settings/theme", "")
	assert.Equal(t, "dark", decode[setting](t, rec).Value)

	rec = do(t, h, "PUT", "/api/settings/target", `{"value": "flow"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMethodNotAllowed(t *testing.T) {
	_, h := newServer(t, Options{})
	assert.Equal(t, http.StatusMethodNotAllowed, do(t, h, "GET", "/api/transform", "").Code)
}

func TestRequestIDIsKept(t *testing.T) {
	_, h := newServer(t, Options{})

	req := httptest.NewRequest("GET", "/api/targets", nil)
	req.Header.Set(headerRequestID, "abc")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "abc", rec.Header().Get(headerRequestID))
}

func TestMetrics(t *testing.T) {
	_, h := newServer(t, Options{})

	do(t, h, "POST", "/api/transform", `{"source": "type A = string", "target": "yup"}`)

	rec := do(t, h, "GET", "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `typeshift_transform_total{outcome="ok",target="yup"} 1`)
}
