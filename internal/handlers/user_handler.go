package handlers

import (
	"net/http"

	"github.com/campusquest/backend/internal/models"
	"github.com/campusquest/backend/internal/repositories"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// UserHandler handles profile HTTP requests
type UserHandler struct {
	userRepository repositories.UserRepository
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userRepo repositories.UserRepository) *UserHandler {
	return &UserHandler{userRepository: userRepo}
}

// RegisterProfileRoutes registers user profile-related routes
func (h *UserHandler) RegisterProfileRoutes(g *echo.Group) {
	g.GET("/users/me", h.GetProfile)
	g.PUT("/users/me", h.UpdateProfile)
	g.GET("/users/:email/averages", h.GetAverages)
}

// GetProfile returns the caller's profile with both rating averages
func (h *UserHandler) GetProfile(c echo.Context) error {
	email, err := principal(c)
	if err != nil {
		return err
	}
	averages, err := h.userRepository.GetAverages(email)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": averages})
}

// UpdateProfile changes the caller's display name
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	email, err := principal(c)
	if err != nil {
		return err
	}
	var req models.UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.userRepository.UpdateUsername(email, req.Username); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Username updated successfully!"})
}

// GetAverages returns another user's display name and rating averages,
// e.g. to show an applicant's voyager rating next to their application.
func (h *UserHandler) GetAverages(c echo.Context) error {
	if _, err := principal(c); err != nil {
		return err
	}
	averages, err := h.userRepository.GetAverages(c.Param("email"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": averages})
}
