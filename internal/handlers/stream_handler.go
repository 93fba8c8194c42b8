package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/campusquest/backend/internal/services"
	"github.com/campusquest/backend/internal/watch"
	"github.com/labstack/echo/v4"
)

// StreamHandler serves live views over Server-Sent Events. Each connection
// holds one hub subscription; a fresh snapshot is emitted on connect and
// then once per change signal. The subscription is cancelled when the
// client disconnects, so nothing queues after teardown.
type StreamHandler struct {
	hub                 *watch.Hub
	taskService         *services.TaskService
	notificationService *services.NotificationService
}

// NewStreamHandler creates a new StreamHandler
func NewStreamHandler(hub *watch.Hub, taskService *services.TaskService, notifService *services.NotificationService) *StreamHandler {
	return &StreamHandler{hub: hub, taskService: taskService, notificationService: notifService}
}

// RegisterStreamRoutes registers the SSE endpoints
func (h *StreamHandler) RegisterStreamRoutes(g *echo.Group) {
	g.GET("/tasks/stream", h.StreamOpenTasks)
	g.GET("/notifications/stream", h.StreamNotifications)
}

func sseHeaders(c echo.Context) {
	c.Response().Header().Set(echo.HeaderContentType, "text/event-stream")
	c.Response().Header().Set("Cache-Control", "no-cache")
	c.Response().Header().Set("Connection", "keep-alive")
	c.Response().WriteHeader(http.StatusOK)
}

func sseWrite(c echo.Context, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(c.Response(), "data: %s\n\n", data); err != nil {
		return err
	}
	c.Response().Flush()
	return nil
}

// StreamOpenTasks re-emits the open-task listing on every task change, so a
// task leaving open status disappears without a manual refresh.
func (h *StreamHandler) StreamOpenTasks(c echo.Context) error {
	viewer, err := principal(c)
	if err != nil {
		return err
	}

	sub := h.hub.Subscribe(watch.TopicTasks)
	defer sub.Cancel()
	sseHeaders(c)

	emit := func() error {
		tasks, err := h.taskService.ListOpenFor(c.Request().Context(), viewer)
		if err != nil {
			return err
		}
		return sseWrite(c, echo.Map{"tasks": tasks})
	}
	if err := emit(); err != nil {
		return nil
	}
	for {
		select {
		case <-c.Request().Context().Done():
			return nil
		case <-sub.C:
			if err := emit(); err != nil {
				return nil
			}
		}
	}
}

// StreamNotifications re-emits the caller's notification list and unread
// count on every notification change.
func (h *StreamHandler) StreamNotifications(c echo.Context) error {
	email, err := principal(c)
	if err != nil {
		return err
	}

	sub := h.hub.Subscribe(watch.TopicNotifications)
	defer sub.Cancel()
	sseHeaders(c)

	emit := func() error {
		notifications, err := h.notificationService.List(email)
		if err != nil {
			return err
		}
		unread, err := h.notificationService.UnreadCount(email)
		if err != nil {
			return err
		}
		return sseWrite(c, echo.Map{"notifications": notifications, "unread_count": unread})
	}
	if err := emit(); err != nil {
		return nil
	}
	for {
		select {
		case <-c.Request().Context().Done():
			return nil
		case <-sub.C:
			if err := emit(); err != nil {
				return nil
			}
		}
	}
}
