package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	da "github.com/lintang-b-s/gridnav/pkg/datastructure"
	"github.com/lintang-b-s/gridnav/pkg/engine"
	"github.com/lintang-b-s/gridnav/pkg/engine/search"
	"github.com/lintang-b-s/gridnav/pkg/gridmap"
	"github.com/lintang-b-s/gridnav/pkg/http/usecases"
	"github.com/lintang-b-s/gridnav/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type pathResponse struct {
	Data struct {
		Found bool    `json:"found"`
		Cost  float64 `json:"cost"`
		Path  []struct {
			X int `json:"x"`
			Y int `json:"y"`
		} `json:"path"`
	} `json:"data"`
}

type batchResponse struct {
	Data []struct {
		Result *struct {
			Found bool    `json:"found"`
			Cost  float64 `json:"cost"`
		} `json:"result"`
		Error string `json:"error"`
	} `json:"data"`
}

type errResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func newTestHandler(t *testing.T, useRateLimit bool, config Config) http.Handler {
	t.Helper()
	g, err := gridmap.BuildMapFromRows(gridmap.KIND_BITPACKED, []string{
		".....",
		"..@..",
		"..@..",
		"..@.@",
		"..@@.",
	})
	require.NoError(t, err)
	e, err := engine.NewEngine(context.Background(), g, engine.DefaultConfig(), zaptest.NewLogger(t))
	require.NoError(t, err)

	log := zaptest.NewLogger(t)
	return NewAPI(log).Handler(config, useRateLimit, usecases.NewPathService(log, e))
}

func TestShortestPathEndpoint(t *testing.T) {
	h := newTestHandler(t, false, Config{})

	t.Run("found", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/path?sx=0&sy=4&gx=3&gy=3", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		// around the wall through the only gap in row 0, no corner cutting at (2,1).
		var resp pathResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, resp.Data.Found)
		assert.InDelta(t, 8+1.4142135623730951, resp.Data.Cost, 1e-9)
		assert.Equal(t, 0, resp.Data.Path[0].X)
		assert.Equal(t, 4, resp.Data.Path[0].Y)
		last := resp.Data.Path[len(resp.Data.Path)-1]
		assert.Equal(t, 3, last.X)
		assert.Equal(t, 3, last.Y)
	})

	t.Run("unpacked path has one cell per step", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/path?sx=0&sy=0&gx=4&gy=0&unpack=true", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var resp pathResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.InDelta(t, 4.0, resp.Data.Cost, 1e-9)
		assert.Len(t, resp.Data.Path, 5)
	})

	t.Run("no path", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/path?sx=0&sy=0&gx=4&gy=4", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var resp pathResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.False(t, resp.Data.Found)
		assert.Empty(t, resp.Data.Path)
	})

	tests := []struct {
		name  string
		query string
	}{
		{"missing param", "/api/path?sx=0&sy=0&gx=1"},
		{"not a number", "/api/path?sx=a&sy=0&gx=1&gy=1"},
		{"negative coordinate", "/api/path?sx=-1&sy=0&gx=1&gy=1"},
		{"bad unpack", "/api/path?sx=0&sy=0&gx=1&gy=1&unpack=maybe"},
		{"blocked start", "/api/path?sx=2&sy=1&gx=0&gy=0"},
		{"outside the map", "/api/path?sx=0&sy=0&gx=5&gy=0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.query, nil))
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var resp errResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, "BAD_REQUEST", resp.Error.Code)
		})
	}
}

func TestShortestPathsEndpoint(t *testing.T) {
	h := newTestHandler(t, false, Config{})

	body := `{"queries":[{"sx":0,"sy":0,"gx":4,"gy":0},{"sx":2,"sy":2,"gx":0,"gy":0},{"sx":1,"sy":1,"gx":1,"gy":1}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/paths", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp batchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 3)

	require.NotNil(t, resp.Data[0].Result)
	assert.InDelta(t, 4.0, resp.Data[0].Result.Cost, 1e-9)

	assert.Nil(t, resp.Data[1].Result)
	assert.NotEmpty(t, resp.Data[1].Error)

	require.NotNil(t, resp.Data[2].Result)
	assert.True(t, resp.Data[2].Result.Found)
	assert.Equal(t, 0.0, resp.Data[2].Result.Cost)
}

func TestShortestPathsEndpointRejectsBadBodies(t *testing.T) {
	h := newTestHandler(t, false, Config{})

	tests := []struct {
		name        string
		contentType string
		body        string
		status      int
	}{
		{"empty queries", "application/json", `{"queries":[]}`, http.StatusBadRequest},
		{"negative coordinate", "application/json", `{"queries":[{"sx":-3,"sy":0,"gx":1,"gy":1}]}`, http.StatusBadRequest},
		{"malformed json", "application/json", `{"queries":`, http.StatusBadRequest},
		{"not json", "text/plain", `sx=1`, http.StatusUnsupportedMediaType},
		{"body over limit", "application/json",
			`{"queries":[` + strings.Repeat(`{"sx":0,"sy":0,"gx":1,"gy":0},`, 40000) + `{"sx":0,"sy":0,"gx":1,"gy":0}]}`,
			http.StatusRequestEntityTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/paths", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", tt.contentType)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestAuxiliaryEndpoints(t *testing.T) {
	h := newTestHandler(t, false, Config{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, ".", rec.Body.String())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/map", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":{"width":5,"height":5}}`, rec.Body.String())

	// one query first so the query counters have a sample.
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/path?sx=0&sy=0&gx=1&gy=0", nil))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "gridnav_path_queries_total")

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/unknown", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRateLimit(t *testing.T) {
	h := newTestHandler(t, true, Config{RateLimit: 0.001, RateBurst: 1})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/map", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/map", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

type failingService struct {
	err error
}

func (s failingService) ShortestPath(ctx context.Context, start, goal da.Coordinate, unpack bool) (*search.Solution, error) {
	if s.err == nil {
		panic("boom")
	}
	return nil, s.err
}

func (s failingService) ShortestPaths(ctx context.Context, queries []engine.Query, unpack bool) []engine.QueryResult {
	return nil
}

func (s failingService) MapSize() (int, int) {
	return 0, 0
}

func TestErrorStatusMapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{util.WrapErrorf(nil, util.ErrTimeBudgetExceeded, "slow"), http.StatusRequestTimeout, "TIME_BUDGET_EXCEEDED"},
		{util.WrapErrorf(nil, util.ErrSearchCancelled, "gone"), http.StatusServiceUnavailable, "SEARCH_CANCELLED"},
		{util.WrapErrorf(nil, util.ErrInvalidQuery, "bad"), http.StatusBadRequest, "BAD_REQUEST"},
		{util.WrapErrorf(nil, util.ErrInternal, "oops"), http.StatusInternalServerError, "INTERNAL_SERVER_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			h := NewAPI(zaptest.NewLogger(t)).Handler(Config{}, false, failingService{err: tt.err})
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/path?sx=0&sy=0&gx=1&gy=1", nil))
			assert.Equal(t, tt.status, rec.Code)

			var resp errResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
}

func TestRecoverPanic(t *testing.T) {
	h := NewAPI(zaptest.NewLogger(t)).Handler(Config{}, false, failingService{})
	rec := httptest.NewRecorder()
	assert.NotPanics(t, func() {
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/path?sx=0&sy=0&gx=1&gy=1", nil))
	})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "close", rec.Header().Get("Connection"))
}

func TestRunStopsOnCancel(t *testing.T) {
	h := newTestHandler(t, false, Config{})
	srv := httptest.NewServer(h)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/path?sx=0&sy=0&gx=4&gy=0")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = NewAPI(zaptest.NewLogger(t)).Run(ctx, Config{Port: 0}, false, failingService{})
	assert.NoError(t, err)
}
