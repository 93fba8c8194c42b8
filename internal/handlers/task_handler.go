package handlers

import (
	"net/http"

	"github.com/campusquest/backend/internal/models"
	"github.com/campusquest/backend/internal/services"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// TaskHandler handles task lifecycle HTTP requests
type TaskHandler struct {
	taskService *services.TaskService
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

// RegisterTaskRoutes registers task-related routes
func (h *TaskHandler) RegisterTaskRoutes(g *echo.Group) {
	g.GET("/tasks", h.ListOpen)
	g.POST("/tasks", h.Create)
	g.PUT("/tasks/:id", h.Update)
	g.DELETE("/tasks/:id", h.Delete)
	g.POST("/tasks/:id/apply", h.Apply)
	g.POST("/tasks/:id/assign", h.Assign)
	g.POST("/tasks/:id/complete", h.Complete)
	g.GET("/tasks/history/questmaster", h.QuestmasterHistory)
	g.GET("/tasks/history/voyager", h.VoyagerHistory)
}

// ListOpen returns the live open-task listing as a snapshot
func (h *TaskHandler) ListOpen(c echo.Context) error {
	viewer, err := principal(c)
	if err != nil {
		return err
	}
	tasks, err := h.taskService.ListOpenFor(c.Request().Context(), viewer)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"tasks": tasks}})
}

// Create posts a new task
func (h *TaskHandler) Create(c echo.Context) error {
	creator, err := principal(c)
	if err != nil {
		return err
	}
	var req models.CreateTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	task, err := h.taskService.Create(c.Request().Context(), creator, &req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, task)
}

// Update edits descriptive fields of an owned task
func (h *TaskHandler) Update(c echo.Context) error {
	requester, err := principal(c)
	if err != nil {
		return err
	}
	var req models.UpdateTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.taskService.Update(c.Request().Context(), c.Param("id"), requester, &req); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// Delete removes an owned task
func (h *TaskHandler) Delete(c echo.Context) error {
	requester, err := principal(c)
	if err != nil {
		return err
	}
	if err := h.taskService.Delete(c.Request().Context(), c.Param("id"), requester); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Apply records the caller's application to an open task
func (h *TaskHandler) Apply(c echo.Context) error {
	applicant, err := principal(c)
	if err != nil {
		return err
	}
	if err := h.taskService.Apply(c.Request().Context(), c.Param("id"), applicant); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Your application has been sent successfully!"})
}

// Assign closes an open task on one of its applicants
func (h *TaskHandler) Assign(c echo.Context) error {
	assigner, err := principal(c)
	if err != nil {
		return err
	}
	var req models.AssignTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.taskService.Assign(c.Request().Context(), c.Param("id"), assigner, req.Applicant, req.NotificationID); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Task assigned to " + req.Applicant + " successfully!"})
}

// Complete marks an assigned task as done
func (h *TaskHandler) Complete(c echo.Context) error {
	completer, err := principal(c)
	if err != nil {
		return err
	}
	if err := h.taskService.Complete(c.Request().Context(), c.Param("id"), completer); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// QuestmasterHistory lists the caller's posted tasks
func (h *TaskHandler) QuestmasterHistory(c echo.Context) error {
	email, err := principal(c)
	if err != nil {
		return err
	}
	tasks, err := h.taskService.QuestmasterHistory(c.Request().Context(), email)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"tasks": tasks}})
}

// VoyagerHistory lists tasks assigned to the caller
func (h *TaskHandler) VoyagerHistory(c echo.Context) error {
	email, err := principal(c)
	if err != nil {
		return err
	}
	tasks, err := h.taskService.VoyagerHistory(c.Request().Context(), email)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"tasks": tasks}})
}
