package services

import (
	"log"

	"github.com/campusquest/backend/internal/apperr"
	"github.com/campusquest/backend/internal/models"
	"github.com/campusquest/backend/internal/repositories"
)

// NotificationService owns the Notification entity: event records, read
// tracking, bulk clearing and rating bookkeeping. Lifecycle transitions call
// Send as a side effect; notifications are advisory, so a delivery failure
// is logged and swallowed, never propagated to the transition that caused it.
type NotificationService struct {
	notifications repositories.NotificationRepository
	users         repositories.UserRepository
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(notifRepo repositories.NotificationRepository, userRepo repositories.UserRepository) *NotificationService {
	return &NotificationService{notifications: notifRepo, users: userRepo}
}

// Send appends a notification record. A missing type is defaulted:
// application when both a task and an applicant are attached, general
// otherwise. Never fails the caller's enclosing operation.
func (s *NotificationService) Send(n *models.Notification) {
	if n.Type == "" {
		if n.TaskID != "" && n.ApplicantEmail != "" {
			n.Type = models.NotificationApplication
		} else {
			n.Type = models.NotificationGeneral
		}
	}
	if err := s.notifications.CreateNotification(n); err != nil {
		log.Printf("Failed to send %s notification to %s: %v", n.Type, n.User, err)
	}
}

// List returns the recipient's notifications, newest first.
func (s *NotificationService) List(recipient string) ([]models.Notification, error) {
	return s.notifications.ListByRecipient(recipient)
}

// UnreadCount returns how many of the recipient's notifications are unread.
func (s *NotificationService) UnreadCount(recipient string) (int64, error) {
	return s.notifications.UnreadCount(recipient)
}

// MarkRead flips a notification to read. Idempotent: re-marking, or marking
// one that no longer exists, is not an error. Only the recipient may mark.
func (s *NotificationService) MarkRead(requester string, id uint) error {
	n, err := s.notifications.GetByID(id)
	if err != nil {
		if apperr.IsKind(err, apperr.NotFound) {
			return nil
		}
		return err
	}
	if n.User != requester {
		return apperr.Authorizationf("you are not allowed to modify this notification")
	}
	return s.notifications.MarkAsRead(id)
}

// Delete removes a notification. Idempotent, recipient-only.
func (s *NotificationService) Delete(requester string, id uint) error {
	n, err := s.notifications.GetByID(id)
	if err != nil {
		if apperr.IsKind(err, apperr.NotFound) {
			return nil
		}
		return err
	}
	if n.User != requester {
		return apperr.Authorizationf("you are not allowed to delete this notification")
	}
	return s.notifications.Delete(id)
}

// ClearTaskApplications removes the recipient's application notifications
// for a task whose assignment just superseded them.
func (s *NotificationService) ClearTaskApplications(recipient, taskID string) error {
	_, err := s.notifications.DeleteApplications(recipient, taskID)
	return err
}

// ClearAll deletes every notification owned by the recipient and reports
// how many were removed.
func (s *NotificationService) ClearAll(recipient string) (int64, error) {
	return s.notifications.ClearAll(recipient)
}

// RecordRating appends a star rating to the target user's sequence for the
// given role. The caller pairs this with marking the originating rate prompt
// read; if that mark fails the rating still stands and must not be
// re-collected by re-showing the same prompt.
func (s *NotificationService) RecordRating(targetEmail, role string, value int) error {
	if role != models.RoleQuestmaster && role != models.RoleVoyager {
		return apperr.Validationf("role", "must be %q or %q", models.RoleQuestmaster, models.RoleVoyager)
	}
	if value < 1 || value > 5 {
		return apperr.Validationf("value", "rating must be between 1 and 5")
	}
	return s.users.AddRating(targetEmail, role, value)
}
