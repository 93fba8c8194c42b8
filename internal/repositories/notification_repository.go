package repositories

import (
	"errors"
	"time"

	"github.com/campusquest/backend/internal/apperr"
	"github.com/campusquest/backend/internal/models"
	"github.com/campusquest/backend/internal/watch"
	"gorm.io/gorm"
)

// clearBatchSize is the store's maximum batch-mutation size. ClearAll
// commits each chunk, so partial progress survives a mid-operation failure.
const clearBatchSize = 500

// NotificationRepository defines the interface for notification operations
type NotificationRepository interface {
	CreateNotification(notification *models.Notification) error
	GetByID(id uint) (*models.Notification, error)
	ListByRecipient(email string) ([]models.Notification, error)
	UnreadCount(email string) (int64, error)
	MarkAsRead(id uint) error
	Delete(id uint) error
	DeleteApplications(email, taskID string) (int64, error)
	ClearAll(email string) (int64, error)
}

type postgresNotificationRepository struct {
	db  *gorm.DB
	hub *watch.Hub
}

// NewPostgresNotificationRepository creates a NotificationRepository backed
// by PostgreSQL. Mutations signal the notifications topic on the hub.
func NewPostgresNotificationRepository(db *gorm.DB, hub *watch.Hub) NotificationRepository {
	return &postgresNotificationRepository{db: db, hub: hub}
}

func (r *postgresNotificationRepository) CreateNotification(notification *models.Notification) error {
	if err := notification.Validate(); err != nil {
		return apperr.Validationf("notification", "%v", err)
	}
	notification.Read = false
	notification.Timestamp = time.Now()
	if err := r.db.Create(notification).Error; err != nil {
		return apperr.Unavailable(err)
	}
	r.hub.Signal(watch.TopicNotifications)
	return nil
}

func (r *postgresNotificationRepository) GetByID(id uint) (*models.Notification, error) {
	var n models.Notification
	if err := r.db.First(&n, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("notification not found")
		}
		return nil, apperr.Unavailable(err)
	}
	return &n, nil
}

func (r *postgresNotificationRepository) ListByRecipient(email string) ([]models.Notification, error) {
	var notifications []models.Notification
	err := r.db.Where("\"user\" = ?", email).
		Order("timestamp DESC").
		Find(&notifications).Error
	if err != nil {
		return nil, apperr.Unavailable(err)
	}
	return notifications, nil
}

func (r *postgresNotificationRepository) UnreadCount(email string) (int64, error) {
	var count int64
	err := r.db.Model(&models.Notification{}).
		Where("\"user\" = ? AND read = false", email).
		Count(&count).Error
	if err != nil {
		return 0, apperr.Unavailable(err)
	}
	return count, nil
}

// MarkAsRead flips the read flag. Idempotent: a missing or already-read
// notification is not an error.
func (r *postgresNotificationRepository) MarkAsRead(id uint) error {
	err := r.db.Model(&models.Notification{}).Where("id = ?", id).Update("read", true).Error
	if err != nil {
		return apperr.Unavailable(err)
	}
	r.hub.Signal(watch.TopicNotifications)
	return nil
}

// Delete removes one notification. Idempotent.
func (r *postgresNotificationRepository) Delete(id uint) error {
	if err := r.db.Delete(&models.Notification{}, id).Error; err != nil {
		return apperr.Unavailable(err)
	}
	r.hub.Signal(watch.TopicNotifications)
	return nil
}

// DeleteApplications removes the recipient's application notifications for
// one task. Called when an assignment supersedes them.
func (r *postgresNotificationRepository) DeleteApplications(email, taskID string) (int64, error) {
	res := r.db.Where("\"user\" = ? AND task_id = ? AND type = ?", email, taskID, models.NotificationApplication).
		Delete(&models.Notification{})
	if res.Error != nil {
		return 0, apperr.Unavailable(res.Error)
	}
	if res.RowsAffected > 0 {
		r.hub.Signal(watch.TopicNotifications)
	}
	return res.RowsAffected, nil
}

// ClearAll deletes every notification owned by the recipient, chunked at the
// store's batch limit, and reports how many were removed.
func (r *postgresNotificationRepository) ClearAll(email string) (int64, error) {
	var total int64
	for {
		var ids []uint
		err := r.db.Model(&models.Notification{}).
			Where("\"user\" = ?", email).
			Limit(clearBatchSize).
			Pluck("id", &ids).Error
		if err != nil {
			return total, apperr.Unavailable(err)
		}
		if len(ids) == 0 {
			break
		}
		res := r.db.Delete(&models.Notification{}, ids)
		if res.Error != nil {
			return total, apperr.Unavailable(res.Error)
		}
		total += res.RowsAffected
		if len(ids) < clearBatchSize {
			break
		}
	}
	if total > 0 {
		r.hub.Signal(watch.TopicNotifications)
	}
	return total, nil
}
