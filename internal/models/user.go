package models

import (
	"strings"

	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"
)

// Rating roles: a questmaster posts tasks, a voyager carries them out.
const (
	RoleQuestmaster = "questmaster"
	RoleVoyager     = "voyager"
)

// User represents a registered student (PostgreSQL)
type User struct {
	gorm.Model  `json:"-"`
	ID          uint   `json:"id" gorm:"primaryKey"`
	Email       string `json:"email" gorm:"uniqueIndex"` // institutional email, the principal identifier
	Username    string `json:"username"`
	FirebaseUID string `json:"firebase_uid,omitempty" gorm:"uniqueIndex"`
}

// Rating is one star rating given to a user in a role (PostgreSQL).
// Rows are append-only; insertion order is the rating sequence.
type Rating struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	UserEmail string `json:"user_email" gorm:"index"`
	Role      string `json:"role" gorm:"size:20;index"` // questmaster or voyager
	Value     int    `json:"value"`
}

// DisplayName returns the username, falling back to the email local part.
func (u *User) DisplayName() string {
	if u.Username != "" {
		return u.Username
	}
	return EmailLocalPart(u.Email)
}

// EmailLocalPart returns everything before the @ of an email address.
func EmailLocalPart(email string) string {
	if i := strings.Index(email, "@"); i >= 0 {
		return email[:i]
	}
	return email
}

// RatingAverage is the arithmetic mean of a rating sequence, 0 if empty.
func RatingAverage(values []int) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0
	for _, v := range values {
		sum += v
	}
	return float64(sum) / float64(len(values))
}

// UserAverages carries a user's display name and derived rating averages
type UserAverages struct {
	Email              string  `json:"email"`
	Username           string  `json:"username"`
	QuestmasterAverage float64 `json:"questmaster_average"`
	VoyagerAverage     float64 `json:"voyager_average"`
}

// RegisterRequest defines the request body for account registration
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,min=3"`
	Password string `json:"password" validate:"required,min=6,max=128"`
}

// UpdateProfileRequest defines the request body for profile edits
type UpdateProfileRequest struct {
	Username string `json:"username" validate:"required,min=3"`
}

// RecordRatingRequest defines the request body for submitting a rating
type RecordRatingRequest struct {
	TargetEmail    string `json:"target_email" validate:"required,email"`
	Role           string `json:"role" validate:"required,oneof=questmaster voyager"`
	Value          int    `json:"value" validate:"required"`
	NotificationID uint   `json:"notification_id,omitempty"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}
