package handler

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// HealthHandler reports service and store connectivity for load balancers
// and monitoring systems.
type HealthHandler struct {
	DB *sql.DB
}

// Health handles GET /health.  The database state is probed with a short
// ping so a broken pool reports "disconnected" instead of failing the
// request.
func (h *HealthHandler) Health(c echo.Context) error {
	dbStatus := "connected"
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()
	if h.DB == nil || h.DB.PingContext(ctx) != nil {
		dbStatus = "disconnected"
	}
	return c.JSON(http.StatusOK, echo.Map{
		"status":    "OK",
		"database":  dbStatus,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// APIInfo handles GET /api and identifies the service.
func APIInfo(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"name":    "Movie Ticket Booking API",
		"version": "1.0.0",
		"status":  "running",
	})
}
