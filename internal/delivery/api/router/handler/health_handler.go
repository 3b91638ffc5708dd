package handler

import (
	"net/http"

	"roadnet/internal/delivery/api/response"
	"roadnet/internal/usecase"

	"github.com/labstack/echo/v4"
)

// HealthHandler reports liveness and whether the road graph is loaded
type HealthHandler struct {
	routeUC usecase.RouteUsecase
}

// NewHealthHandler creates a new HealthHandler instance
func NewHealthHandler(routeUC usecase.RouteUsecase) *HealthHandler {
	return &HealthHandler{routeUC: routeUC}
}

// Health always answers while the process is serving
func (h *HealthHandler) Health(c echo.Context) error {
	return response.Success(c, http.StatusOK, map[string]any{
		"status":       "ok",
		"graph_loaded": h.routeUC.IsReady(),
	})
}

// Ready answers 503 until the road graph is loaded
func (h *HealthHandler) Ready(c echo.Context) error {
	if !h.routeUC.IsReady() {
		return response.ServiceUnavailable(c, "GRAPH_NOT_LOADED", "The road graph is not loaded")
	}

	return response.Success(c, http.StatusOK, map[string]string{"status": "ready"})
}
