package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wbrown/janus-quads/quads/annotations"
	"github.com/wbrown/janus-quads/quads/store"
	"github.com/wbrown/janus-quads/quads/term"
)

const facts = `
[alice knows bob]
[alice knows carol <http://ex/g1>]
[bob knows alice <http://ex/g1>]
[carol age 30 <http://ex/g2>]
`

func setupTestServer(t *testing.T) (*Server, *annotations.Collector) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c := annotations.NewCollector(nil)
	srv := NewServer(store.NewShared(store.NewIndexedDataset(term.Compare)), c)

	w := do(srv, "POST", "/v1/quads", facts)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return srv, c
}

func do(srv *Server, method, target, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(method, target, strings.NewReader(body))
	srv.Handler().ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestHealthCheck(t *testing.T) {
	srv, _ := setupTestServer(t)
	w := do(srv, "GET", "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestInsertReportsDuplicates(t *testing.T) {
	srv, _ := setupTestServer(t)
	w := do(srv, "POST", "/v1/quads", "[alice knows bob] [dave knows bob]")
	require.Equal(t, http.StatusOK, w.Code)

	body := decode[map[string]int](t, w)
	assert.Equal(t, 2, body["parsed"])
	assert.Equal(t, 1, body["inserted"])
	assert.Equal(t, 5, body["total"])

	w = do(srv, "POST", "/v1/quads", "[alice knows")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMatch(t *testing.T) {
	srv, _ := setupTestServer(t)

	tests := []struct {
		name  string
		query string
		count int
	}{
		{"everything", "", 4},
		{"by predicate", "p=knows", 3},
		{"default graph", "g=default", 1},
		{"named graph", "g=" + url.QueryEscape("<http://ex/g1>"), 2},
		{"pattern", "pattern=" + url.QueryEscape("[?x knows ?y <http://ex/g1>]"), 2},
		{"same as", "pattern=" + url.QueryEscape("[?x knows ?x]"), 0},
		{"limit", "limit=1", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(srv, "GET", "/v1/quads?"+tt.query, "")
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
			resp := decode[MatchResponse](t, w)
			assert.Equal(t, tt.count, resp.Count)
			assert.Len(t, resp.Quads, tt.count)
		})
	}

	w := do(srv, "GET", "/v1/quads?g=default", "")
	resp := decode[MatchResponse](t, w)
	assert.Equal(t, QuadJSON{Subject: "<alice>", Predicate: "<knows>", Object: "<bob>"}, resp.Quads[0])

	w = do(srv, "GET", "/v1/quads?pattern=%5Bbroken", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = do(srv, "GET", "/v1/quads?limit=-2", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExtract(t *testing.T) {
	srv, _ := setupTestServer(t)
	w := do(srv, "DELETE", "/v1/quads?p=knows&g="+url.QueryEscape("<http://ex/g1>"), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, decode[MatchResponse](t, w).Count)

	w = do(srv, "GET", "/v1/stats", "")
	stats := decode[StatsResponse](t, w)
	assert.Equal(t, 2, stats.Quads)
	assert.Equal(t, 1, stats.NamedGraphs)
}

func TestRemoveGraph(t *testing.T) {
	srv, c := setupTestServer(t)

	w := do(srv, "DELETE", "/v1/graphs?g="+url.QueryEscape("<http://ex/g1>"), "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode[map[string]any](t, w)
	assert.EqualValues(t, 2, body["count"])

	w = do(srv, "DELETE", "/v1/graphs?g="+url.QueryEscape("<http://ex/g1>"), "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(srv, "DELETE", "/v1/graphs?g=default", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode[map[string]any](t, w)["count"])

	w = do(srv, "DELETE", "/v1/graphs", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	stats := decode[StatsResponse](t, do(srv, "GET", "/v1/stats", ""))
	assert.Equal(t, StatsResponse{
		Quads:       1,
		NamedGraphs: 1,
		Resources:   4,
		Subjects:    1,
		Predicates:  1,
		Objects:     1,
	}, stats)

	served := c.Named(annotations.RequestServed)
	require.NotEmpty(t, served)
	last := served[len(served)-1]
	assert.Equal(t, "GET", last.Data["method"])
	assert.Equal(t, "/v1/stats", last.Data["path"])
	assert.Equal(t, http.StatusOK, last.Data["status"])
}
