package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// ConnectionTester checks connectivity to the identity provider.
type ConnectionTester interface {
	TestConnection(ctx context.Context) error
}

// StreamCounter reports how many live chat list streams are open.
type StreamCounter interface {
	Count() int
}

type HealthHandler struct {
	firebaseAuth ConnectionTester
	streams      StreamCounter
}

func NewHealthHandler(firebaseAuth ConnectionTester, streams StreamCounter) *HealthHandler {
	return &HealthHandler{
		firebaseAuth: firebaseAuth,
		streams:      streams,
	}
}

func (h *HealthHandler) CheckHealth(c echo.Context) error {
	body := map[string]interface{}{
		"status": "Server is running",
		"time":   time.Now().Format(time.RFC3339),
	}
	if h.streams != nil {
		body["chat_list_streams"] = h.streams.Count()
	}
	return c.JSON(http.StatusOK, body)
}

func (h *HealthHandler) CheckFirebaseHealth(c echo.Context) error {
	err := h.firebaseAuth.TestConnection(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status": "Firebase Auth connection failed",
			"error":  err.Error(),
		})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"status": "Firebase Auth connected successfully",
	})
}
