// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"roadnet/internal/delivery/api/router/handler"
	"roadnet/internal/infra/metrics"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	RouteHandler  *handler.RouteHandler
	HealthHandler *handler.HealthHandler
	Metrics       *metrics.Metrics `optional:"true"`
}

// router holds all the handlers that need to be registered.
type router struct {
	routeHandler  *handler.RouteHandler
	healthHandler *handler.HealthHandler
	metrics       *metrics.Metrics
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		routeHandler:  params.RouteHandler,
		healthHandler: params.HealthHandler,
		metrics:       params.Metrics,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	// Health check endpoints
	e.GET("/health", r.healthHandler.Health)
	e.GET("/ready", r.healthHandler.Ready)

	if r.metrics != nil {
		e.GET("/metrics", echo.WrapHandler(r.metrics.Handler()))
	}

	// API v1 routes
	apiV1 := e.Group("/api/v1")
	{
		apiV1.POST("/route", r.routeHandler.Route)
		apiV1.POST("/travel-time", r.routeHandler.TravelTime)
		apiV1.POST("/waypoints/resolve", r.routeHandler.ResolveWaypoints)
		apiV1.POST("/reachable", r.routeHandler.Reachable)
		apiV1.GET("/graph/stats", r.routeHandler.GraphStats)
	}
}
