package handlers

import (
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/campusquest/backend/internal/apperr"
	"github.com/campusquest/backend/internal/models"
	"github.com/campusquest/backend/internal/repositories"
	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
)

// AuthHandler handles registration and login. Credential custody lives in
// Firebase Auth; this handler only creates accounts there and exchanges a
// verified Firebase ID token for a local session JWT.
type AuthHandler struct {
	userRepository repositories.UserRepository
	firebaseAuth   *auth.Client
	jwtSecret      string
	emailDomain    string
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(userRepo repositories.UserRepository, firebaseAuthClient *auth.Client) *AuthHandler {
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = "supersecretjwtkey"
	}
	emailDomain := os.Getenv("ALLOWED_EMAIL_DOMAIN")
	if emailDomain == "" {
		emailDomain = "iitj.ac.in"
	}
	return &AuthHandler{
		userRepository: userRepo,
		firebaseAuth:   firebaseAuthClient,
		jwtSecret:      jwtSecret,
		emailDomain:    emailDomain,
	}
}

// RegisterAuthRoutes registers authentication-related routes
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group) {
	g.POST("/register", h.Register)
	g.POST("/firebase-login", h.FirebaseLogin)
}

// Register creates the Firebase account and the profile row. Only
// institutional email addresses are accepted; the account stays unusable
// until the emailed verification link is followed.
func (h *AuthHandler) Register(c echo.Context) error {
	var req models.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if !strings.HasSuffix(req.Email, "@"+h.emailDomain) {
		return echo.NewHTTPError(http.StatusBadRequest, "Only "+h.emailDomain+" email accounts are allowed")
	}

	if _, err := h.userRepository.GetUserByEmail(req.Email); err == nil {
		return echo.NewHTTPError(http.StatusConflict, "User with this email already registered")
	} else if !apperr.IsKind(err, apperr.NotFound) {
		return httpError(err)
	}

	params := (&auth.UserToCreate{}).
		Email(req.Email).
		Password(req.Password).
		DisplayName(req.Username).
		EmailVerified(false)
	record, err := h.firebaseAuth.CreateUser(c.Request().Context(), params)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Failed to create account: "+err.Error())
	}

	user := &models.User{
		Email:       req.Email,
		Username:    req.Username,
		FirebaseUID: record.UID,
	}
	if err := h.userRepository.CreateUser(user); err != nil {
		return httpError(err)
	}

	link, err := h.firebaseAuth.EmailVerificationLink(c.Request().Context(), req.Email)
	if err != nil {
		log.Printf("Failed to generate verification link for %s: %v", req.Email, err)
	} else {
		log.Printf("Verification link for %s: %s", req.Email, link)
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Account created! Please check your " + h.emailDomain + " email to verify your account before logging in.",
		"user":    user,
	})
}

// FirebaseLoginRequest defines the request body for Firebase login
type FirebaseLoginRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}

// FirebaseLogin verifies a Firebase ID token, requires a verified email,
// ensures the profile row exists, and issues a local session JWT.
func (h *AuthHandler) FirebaseLogin(c echo.Context) error {
	var req FirebaseLoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	token, err := h.firebaseAuth.VerifyIDToken(c.Request().Context(), req.IDToken)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid Firebase ID token")
	}
	if verified, ok := token.Claims["email_verified"].(bool); !ok || !verified {
		return echo.NewHTTPError(http.StatusForbidden, "Your account is not verified. Please check your inbox for the verification link.")
	}
	email, _ := token.Claims["email"].(string)
	if email == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "Token carries no email claim")
	}

	user, err := h.userRepository.GetUserByFirebaseUID(token.UID)
	if err != nil {
		if !apperr.IsKind(err, apperr.NotFound) {
			return httpError(err)
		}
		// Profile row missing (e.g. account predates this backend); create it.
		user = &models.User{
			Email:       email,
			Username:    models.EmailLocalPart(email),
			FirebaseUID: token.UID,
		}
		if name, ok := token.Claims["name"].(string); ok && name != "" {
			user.Username = name
		}
		if err := h.userRepository.CreateUser(user); err != nil {
			return httpError(err)
		}
	}

	localJWT, err := h.generateJWT(user)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate token")
	}
	return c.JSON(http.StatusOK, echo.Map{"token": localJWT})
}

// generateJWT generates a session token for a given user
func (h *AuthHandler) generateJWT(user *models.User) (string, error) {
	claims := &models.JwtCustomClaims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour * 72)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.jwtSecret))
}
