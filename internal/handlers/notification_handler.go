package handlers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/campusquest/backend/internal/models"
	"github.com/campusquest/backend/internal/services"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// NotificationHandler handles notification and rating HTTP requests
type NotificationHandler struct {
	notificationService *services.NotificationService
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notifService *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notifService}
}

// RegisterNotificationRoutes registers notification routes
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group) {
	g.GET("/notifications", h.List)
	g.GET("/notifications/unread-count", h.GetUnreadCount)
	g.PUT("/notifications/:id/read", h.MarkAsRead)
	g.DELETE("/notifications/:id", h.Delete)
	g.DELETE("/notifications", h.ClearAll)
	g.POST("/ratings", h.RecordRating)
}

func notificationID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "Invalid notification ID")
	}
	return uint(id), nil
}

// List returns the caller's notifications, newest first
func (h *NotificationHandler) List(c echo.Context) error {
	email, err := principal(c)
	if err != nil {
		return err
	}
	notifications, err := h.notificationService.List(email)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"notifications": notifications}})
}

// GetUnreadCount returns the unread notification count
func (h *NotificationHandler) GetUnreadCount(c echo.Context) error {
	email, err := principal(c)
	if err != nil {
		return err
	}
	count, err := h.notificationService.UnreadCount(email)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"count": count}})
}

// MarkAsRead marks a notification as read
func (h *NotificationHandler) MarkAsRead(c echo.Context) error {
	email, err := principal(c)
	if err != nil {
		return err
	}
	id, err := notificationID(c)
	if err != nil {
		return err
	}
	if err := h.notificationService.MarkRead(email, id); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// Delete removes one notification
func (h *NotificationHandler) Delete(c echo.Context) error {
	email, err := principal(c)
	if err != nil {
		return err
	}
	id, err := notificationID(c)
	if err != nil {
		return err
	}
	if err := h.notificationService.Delete(email, id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ClearAll deletes every notification owned by the caller
func (h *NotificationHandler) ClearAll(c echo.Context) error {
	email, err := principal(c)
	if err != nil {
		return err
	}
	count, err := h.notificationService.ClearAll(email)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"deleted": count}})
}

// RecordRating submits a star rating for a counterpart and consumes the
// prompting notification. The rating stands even if the consume fails.
func (h *NotificationHandler) RecordRating(c echo.Context) error {
	email, err := principal(c)
	if err != nil {
		return err
	}
	var req models.RecordRatingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.notificationService.RecordRating(req.TargetEmail, req.Role, req.Value); err != nil {
		return httpError(err)
	}
	if req.NotificationID != 0 {
		if err := h.notificationService.MarkRead(email, req.NotificationID); err != nil {
			log.Printf("Failed to consume rate prompt %d: %v", req.NotificationID, err)
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Thanks for rating!"})
}
