package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"roadnet/config"
	"roadnet/internal/delivery/api/router"
	"roadnet/internal/delivery/api/router/handler"
	deliverycontext "roadnet/internal/delivery/context"
	domainerrors "roadnet/internal/domain/errors"
	"roadnet/internal/errors"
	"roadnet/internal/infra/metrics"
	"roadnet/internal/infra/routing/graph"
	"roadnet/internal/infra/routing/traversal"
	mockUsecase "roadnet/internal/mocks/usecase"
	"roadnet/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
)

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details any    `json:"details"`
	} `json:"error"`
	Meta struct {
		RequestID string `json:"request_id"`
	} `json:"meta"`
}

func newTestServer(t *testing.T, uc *mockUsecase.MockRouteUsecase) (http.Handler, *metrics.Metrics) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := metrics.New("test")

	d, err := NewServer(ServerParams{
		Lc:      fxtest.NewLifecycle(t),
		Cfg:     &config.Config{},
		Logger:  logger,
		Metrics: m,
		RouterParams: router.RouterParams{
			RouteHandler:  handler.NewRouteHandler(handler.RouteHandlerParams{RouteUC: uc, Logger: logger}),
			HealthHandler: handler.NewHealthHandler(uc),
			Metrics:       m,
		},
	})
	require.NoError(t, err)

	return d.(*apiServer).server, m
}

func do(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}

	return rec, env
}

const twoWaypoints = `{
	"metric": "time",
	"waypoints": [
		{"point": {"latitude": 59.33, "longitude": 18.06}, "radius": 50},
		{"point": {"latitude": 59.34, "longitude": 18.07}, "heading": {"from": -45, "to": 45}}
	]
}`

func TestServer_Route(t *testing.T) {
	uc := mockUsecase.NewMockRouteUsecase(t)
	h, _ := newTestServer(t, uc)

	var got usecase.RouteRequest
	uc.EXPECT().
		Route(mock.Anything, mock.AnythingOfType("usecase.RouteRequest")).
		Run(func(_ context.Context, req usecase.RouteRequest) { got = req }).
		Return(&usecase.RouteResult{
			Metric:   traversal.Time,
			Cost:     1234.5,
			Unit:     traversal.Time.Unit(),
			Nodes:    []graph.NodeID{4, 7, 9},
			Complete: true,
		}, nil).
		Once()

	rec, env := do(t, h, http.MethodPost, "/api/v1/route", twoWaypoints)
	require.Equal(t, http.StatusOK, rec.Code)

	var res usecase.RouteResult
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, traversal.Time, res.Metric)
	assert.Equal(t, "s", res.Unit)
	assert.Equal(t, []graph.NodeID{4, 7, 9}, res.Nodes)

	assert.NotEmpty(t, env.Meta.RequestID)
	assert.Equal(t, env.Meta.RequestID, rec.Header().Get(deliverycontext.HeaderXRequestID))

	assert.Equal(t, traversal.Time, got.Metric)
	require.Len(t, got.Waypoints, 2)
	assert.Equal(t, 50.0, got.Waypoints[0].Radius)
	assert.True(t, math.IsNaN(got.Waypoints[1].Radius), "missing radius is unbounded")
	require.NotNil(t, got.Waypoints[1].Heading)
	assert.Equal(t, 45.0, got.Waypoints[1].Heading.To)
}

func TestServer_RouteRequestErrors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		ucErr      error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "malformed json",
			body:       `{"waypoints": [`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_INPUT",
		},
		{
			name:       "unknown metric",
			body:       `{"metric": "speed", "waypoints": []}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_INPUT",
		},
		{
			name:       "single waypoint",
			body:       `{"waypoints": [{"point": {"latitude": 59.33, "longitude": 18.06}}]}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_QUERY",
		},
		{
			name:       "waypoint not found",
			body:       twoWaypoints,
			ucErr:      domainerrors.ErrWaypointNotFound.WithDetails("unresolved waypoints [1]"),
			wantStatus: http.StatusNotFound,
			wantCode:   "WAYPOINT_NOT_FOUND",
		},
		{
			name:       "no path",
			body:       twoWaypoints,
			ucErr:      domainerrors.ErrNoPath,
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "NO_PATH",
		},
		{
			name:       "unexpected failure",
			body:       twoWaypoints,
			ucErr:      errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "INTERNAL_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := mockUsecase.NewMockRouteUsecase(t)
			if tt.ucErr != nil {
				uc.EXPECT().Route(mock.Anything, mock.Anything).Return(nil, tt.ucErr).Once()
			}
			h, _ := newTestServer(t, uc)

			rec, env := do(t, h, http.MethodPost, "/api/v1/route", tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.wantCode, env.Error.Code)
		})
	}
}

func TestServer_ValidationDetailsNameTheField(t *testing.T) {
	h, _ := newTestServer(t, mockUsecase.NewMockRouteUsecase(t))

	_, env := do(t, h, http.MethodPost, "/api/v1/route", `{"waypoints": []}`)
	require.NotNil(t, env.Error)
	details, ok := env.Error.Details.(string)
	require.True(t, ok)
	assert.Contains(t, details, "waypoints")
}

func TestServer_InternalErrorHidesDetails(t *testing.T) {
	uc := mockUsecase.NewMockRouteUsecase(t)
	uc.EXPECT().
		TravelTime(mock.Anything, mock.Anything).
		Return(nil, domainerrors.NewStoreError(errors.New("dial tcp"), "reading live sensor data")).
		Once()
	h, _ := newTestServer(t, uc)

	rec, env := do(t, h, http.MethodPost, "/api/v1/travel-time", twoWaypoints)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "SENSOR_STORE_FAILED", env.Error.Code)
	assert.Nil(t, env.Error.Details)
}

func TestServer_TravelTime(t *testing.T) {
	uc := mockUsecase.NewMockRouteUsecase(t)
	h, _ := newTestServer(t, uc)

	uc.EXPECT().
		TravelTime(mock.Anything, mock.MatchedBy(func(req usecase.TravelTimeRequest) bool {
			return req.Live && req.MaxAgeSeconds == 600 && len(req.Waypoints) == 2 &&
				req.At.Equal(time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC))
		})).
		Return(&usecase.TravelTimeResult{Route: &usecase.RouteResult{Nodes: []graph.NodeID{1, 2}}, Seconds: 90}, nil).
		Once()

	body := `{
		"live": true,
		"at": "2024-03-01T08:00:00Z",
		"max_age_seconds": 600,
		"vehicle_type": "car",
		"waypoints": [
			{"point": {"latitude": 59.33, "longitude": 18.06}},
			{"point": {"latitude": 59.34, "longitude": 18.07}}
		]
	}`
	rec, env := do(t, h, http.MethodPost, "/api/v1/travel-time", body)
	require.Equal(t, http.StatusOK, rec.Code)

	var res usecase.TravelTimeResult
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, 90.0, res.Seconds)

	rec, env = do(t, h, http.MethodPost, "/api/v1/travel-time", `{"max_age_seconds": -1, "waypoints": [
		{"point": {"latitude": 59.33, "longitude": 18.06}},
		{"point": {"latitude": 59.34, "longitude": 18.07}}
	]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "INVALID_QUERY", env.Error.Code)
}

func TestServer_ResolveAndReachable(t *testing.T) {
	uc := mockUsecase.NewMockRouteUsecase(t)
	h, _ := newTestServer(t, uc)

	uc.EXPECT().
		ResolveWaypoints(mock.Anything, mock.MatchedBy(func(queries []traversal.PointQuery) bool {
			return len(queries) == 1 && queries[0].Radius == 10
		})).
		Return([]usecase.ResolvedWaypoint{{Index: 0, Found: true, Node: 3}}, nil).
		Once()
	uc.EXPECT().
		Reachable(mock.Anything, mock.MatchedBy(func(req usecase.ReachableRequest) bool {
			return req.MaxCost == 300 && req.Metric == traversal.Time
		})).
		Return(&usecase.ReachableResult{Start: 3, Metric: traversal.Time, Unit: traversal.Time.Unit()}, nil).
		Once()

	rec, _ := do(t, h, http.MethodPost, "/api/v1/waypoints/resolve",
		`{"waypoints": [{"point": {"latitude": 59.33, "longitude": 18.06}, "radius": 10}]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = do(t, h, http.MethodPost, "/api/v1/waypoints/resolve", `{"waypoints": []}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(t, h, http.MethodPost, "/api/v1/reachable",
		`{"from": {"point": {"latitude": 59.33, "longitude": 18.06}}, "max_cost": 300, "metric": "time"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = do(t, h, http.MethodPost, "/api/v1/reachable",
		`{"from": {"point": {"latitude": 59.33, "longitude": 18.06}}, "max_cost": 0}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_HealthAndStats(t *testing.T) {
	uc := mockUsecase.NewMockRouteUsecase(t)
	h, m := newTestServer(t, uc)

	uc.EXPECT().IsReady().Return(false).Twice()
	uc.EXPECT().GraphStats(mock.Anything).Return(graph.Stats{}, domainerrors.ErrGraphNotLoaded).Once()

	rec, env := do(t, h, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status": "ok", "graph_loaded": false}`, string(env.Data))

	rec, env = do(t, h, http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "GRAPH_NOT_LOADED", env.Error.Code)

	rec, _ = do(t, h, http.MethodGet, "/api/v1/graph/stats", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	uc.EXPECT().IsReady().Return(true).Once()
	uc.EXPECT().GraphStats(mock.Anything).Return(graph.Stats{Nodes: 10, Edges: 12}, nil).Once()

	rec, _ = do(t, h, http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, env = do(t, h, http.MethodGet, "/api/v1/graph/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var stats graph.Stats
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.Equal(t, 10, stats.Nodes)

	rec, _ = do(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "test_total_requests")
	assert.NotNil(t, m)
}

func TestServer_UnknownRoute(t *testing.T) {
	h, _ := newTestServer(t, mockUsecase.NewMockRouteUsecase(t))

	rec, env := do(t, h, http.MethodGet, "/api/v2/nothing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "HTTP_ERROR", env.Error.Code)
}
