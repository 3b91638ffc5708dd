package handler

import (
	"log/slog"
	"net/http"

	"roadnet/internal/delivery/api/response"
	"roadnet/internal/infra/routing/traversal"
	"roadnet/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// RouteHandlerParams holds dependencies for RouteHandler, injected by Fx.
type RouteHandlerParams struct {
	fx.In

	RouteUC usecase.RouteUsecase
	Logger  *slog.Logger
}

// RouteHandler serves route, travel-time and graph queries
type RouteHandler struct {
	routeUC usecase.RouteUsecase
	logger  *slog.Logger
}

// NewRouteHandler is the constructor for RouteHandler
func NewRouteHandler(params RouteHandlerParams) *RouteHandler {
	return &RouteHandler{
		routeUC: params.RouteUC,
		logger:  params.Logger,
	}
}

// ResolveWaypointsRequest represents the request body for resolving waypoints
type ResolveWaypointsRequest struct {
	Waypoints []traversal.PointQuery `json:"waypoints" validate:"min=1,dive"`
}

// Route handles multi-waypoint route queries
func (h *RouteHandler) Route(c echo.Context) error {
	var req usecase.RouteRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Invalid route request")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	res, err := h.routeUC.Route(c.Request().Context(), req)
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, res)
}

// TravelTime handles route queries with a travel-time estimate
func (h *RouteHandler) TravelTime(c echo.Context) error {
	var req usecase.TravelTimeRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Invalid travel time request")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	res, err := h.routeUC.TravelTime(c.Request().Context(), req)
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, res)
}

// ResolveWaypoints snaps point queries to graph nodes
func (h *RouteHandler) ResolveWaypoints(c echo.Context) error {
	var req ResolveWaypointsRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Invalid waypoint request")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	res, err := h.routeUC.ResolveWaypoints(c.Request().Context(), req.Waypoints)
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, res)
}

// Reachable lists the nodes within a cost budget of a waypoint
func (h *RouteHandler) Reachable(c echo.Context) error {
	var req usecase.ReachableRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Invalid reachable request")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	res, err := h.routeUC.Reachable(c.Request().Context(), req)
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, res)
}

// GraphStats summarises the loaded graph
func (h *RouteHandler) GraphStats(c echo.Context) error {
	stats, err := h.routeUC.GraphStats(c.Request().Context())
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, stats)
}
