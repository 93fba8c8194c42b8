package models

import (
	"fmt"
	"time"
)

// Notification kinds
const (
	NotificationApplication = "application"
	NotificationAssignment  = "assignment"
	NotificationRejection   = "rejection"
	NotificationRate        = "rate"
	NotificationGeneral     = "general"
)

// Notification represents a user notification (PostgreSQL). The optional
// columns are populated per kind; use the typed constructors below rather
// than filling fields ad hoc, and Validate at the store boundary.
type Notification struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	User            string    `json:"user" gorm:"index"` // recipient email, exclusive owner
	Message         string    `json:"message"`
	Type            string    `json:"type" gorm:"size:20;index"`
	TaskID          string    `json:"task_id,omitempty"`
	ApplicantEmail  string    `json:"applicant_email,omitempty"`
	RatingType      string    `json:"rating_type,omitempty" gorm:"size:20"`
	RateTargetEmail string    `json:"rate_target_email,omitempty"`
	Read            bool      `json:"read" gorm:"default:false;index"`
	Timestamp       time.Time `json:"timestamp" gorm:"index"`
}

// NewApplicationNotification notifies a creator that someone applied.
func NewApplicationNotification(creator, applicant, taskID, title string) *Notification {
	return &Notification{
		User:           creator,
		Message:        fmt.Sprintf("%s has applied to your task: %q", applicant, title),
		Type:           NotificationApplication,
		TaskID:         taskID,
		ApplicantEmail: applicant,
	}
}

// NewAssignmentNotification congratulates the chosen applicant.
func NewAssignmentNotification(assignee, taskID, title string, reward int) *Notification {
	return &Notification{
		User:    assignee,
		Message: fmt.Sprintf("Congratulations! You have been assigned the task: %q. Reward: ₹%d", title, reward),
		Type:    NotificationAssignment,
		TaskID:  taskID,
	}
}

// NewRejectionNotification tells a passed-over applicant the task was taken.
func NewRejectionNotification(applicant, taskID, title string) *Notification {
	return &Notification{
		User:    applicant,
		Message: fmt.Sprintf("The task %q has been assigned to another applicant.", title),
		Type:    NotificationRejection,
		TaskID:  taskID,
	}
}

// NewRatePrompt asks a recipient to rate their counterpart in the given role.
func NewRatePrompt(recipient, taskID, title, role, targetEmail string) *Notification {
	roleLabel := "Voyager"
	message := fmt.Sprintf("Please rate the Voyager for %q", title)
	if role == RoleQuestmaster {
		roleLabel = "Questmaster"
		message = fmt.Sprintf("Please rate your %s for %q", roleLabel, title)
	}
	return &Notification{
		User:            recipient,
		Message:         message,
		Type:            NotificationRate,
		TaskID:          taskID,
		RatingType:      role,
		RateTargetEmail: targetEmail,
	}
}

// NewGeneralNotification carries a plain informational message.
func NewGeneralNotification(recipient, message string) *Notification {
	return &Notification{
		User:    recipient,
		Message: message,
		Type:    NotificationGeneral,
	}
}

// Validate checks that the notification carries the fields its kind needs.
func (n *Notification) Validate() error {
	if n.User == "" {
		return fmt.Errorf("notification has no recipient")
	}
	switch n.Type {
	case NotificationApplication:
		if n.TaskID == "" || n.ApplicantEmail == "" {
			return fmt.Errorf("application notification missing task or applicant")
		}
	case NotificationRate:
		if n.RatingType != RoleQuestmaster && n.RatingType != RoleVoyager {
			return fmt.Errorf("rate notification has unknown rating type %q", n.RatingType)
		}
		if n.RateTargetEmail == "" {
			return fmt.Errorf("rate notification missing target email")
		}
	case NotificationAssignment, NotificationRejection, NotificationGeneral:
	default:
		return fmt.Errorf("unknown notification type %q", n.Type)
	}
	return nil
}
