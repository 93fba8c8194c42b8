package repositories

import (
	"fmt"
	"testing"

	"github.com/campusquest/backend/internal/apperr"
	"github.com/campusquest/backend/internal/models"
	"github.com/campusquest/backend/internal/watch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const inboxOwner = "dana@iitj.ac.in"

func newNotificationRepo(t *testing.T) NotificationRepository {
	t.Helper()
	return NewPostgresNotificationRepository(newTestDB(t), watch.NewHub())
}

func TestCreateAndListNotifications(t *testing.T) {
	repo := newNotificationRepo(t)

	require.NoError(t, repo.CreateNotification(models.NewGeneralNotification(inboxOwner, "first")))
	require.NoError(t, repo.CreateNotification(models.NewGeneralNotification(inboxOwner, "second")))
	require.NoError(t, repo.CreateNotification(models.NewGeneralNotification("someone-else@iitj.ac.in", "not yours")))

	got, err := repo.ListByRecipient(inboxOwner)
	require.NoError(t, err)
	require.Len(t, got, 2)
	for _, n := range got {
		assert.Equal(t, inboxOwner, n.User)
		assert.False(t, n.Read)
		assert.False(t, n.Timestamp.IsZero())
	}
}

func TestCreateNotificationRejectsInvalid(t *testing.T) {
	repo := newNotificationRepo(t)

	// a rate prompt without its target cannot be stored
	err := repo.CreateNotification(&models.Notification{
		User:    inboxOwner,
		Message: "rate someone",
		Type:    models.NotificationRate,
	})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.Validation))

	got, err := repo.ListByRecipient(inboxOwner)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestGetByID(t *testing.T) {
	repo := newNotificationRepo(t)
	n := models.NewGeneralNotification(inboxOwner, "hello")
	require.NoError(t, repo.CreateNotification(n))

	got, err := repo.GetByID(n.ID)
	require.NoError(t, err)
	assert.Equal(t, "hello", got.Message)

	_, err = repo.GetByID(n.ID + 100)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.NotFound))
}

func TestMarkAsReadIdempotent(t *testing.T) {
	repo := newNotificationRepo(t)
	n := models.NewGeneralNotification(inboxOwner, "hello")
	require.NoError(t, repo.CreateNotification(n))

	require.NoError(t, repo.MarkAsRead(n.ID))
	require.NoError(t, repo.MarkAsRead(n.ID))
	require.NoError(t, repo.MarkAsRead(n.ID+100))

	got, err := repo.GetByID(n.ID)
	require.NoError(t, err)
	assert.True(t, got.Read)
}

func TestUnreadCount(t *testing.T) {
	repo := newNotificationRepo(t)
	var ids []uint
	for i := 0; i < 4; i++ {
		n := models.NewGeneralNotification(inboxOwner, fmt.Sprintf("message %d", i))
		require.NoError(t, repo.CreateNotification(n))
		ids = append(ids, n.ID)
	}
	require.NoError(t, repo.MarkAsRead(ids[0]))

	count, err := repo.UnreadCount(inboxOwner)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestDeleteNotificationIdempotent(t *testing.T) {
	repo := newNotificationRepo(t)
	n := models.NewGeneralNotification(inboxOwner, "hello")
	require.NoError(t, repo.CreateNotification(n))

	require.NoError(t, repo.Delete(n.ID))
	require.NoError(t, repo.Delete(n.ID))

	_, err := repo.GetByID(n.ID)
	assert.True(t, apperr.IsKind(err, apperr.NotFound))
}

func TestDeleteApplicationsOnlyTouchesSupersededOnes(t *testing.T) {
	repo := newNotificationRepo(t)

	require.NoError(t, repo.CreateNotification(models.NewApplicationNotification(inboxOwner, "a@iitj.ac.in", "t1", "Fetch coffee")))
	require.NoError(t, repo.CreateNotification(models.NewApplicationNotification(inboxOwner, "b@iitj.ac.in", "t1", "Fetch coffee")))
	require.NoError(t, repo.CreateNotification(models.NewApplicationNotification(inboxOwner, "c@iitj.ac.in", "t2", "Other task")))
	require.NoError(t, repo.CreateNotification(models.NewGeneralNotification(inboxOwner, "unrelated")))

	removed, err := repo.DeleteApplications(inboxOwner, "t1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	got, err := repo.ListByRecipient(inboxOwner)
	require.NoError(t, err)
	require.Len(t, got, 2)
	for _, n := range got {
		assert.NotEqual(t, "t1", n.TaskID)
	}
}

func TestClearAllChunksLargeInboxes(t *testing.T) {
	repo := newNotificationRepo(t)

	// more than two full chunks, plus a partial one
	const toCreate = 2*clearBatchSize + 200
	for i := 0; i < toCreate; i++ {
		require.NoError(t, repo.CreateNotification(models.NewGeneralNotification(inboxOwner, fmt.Sprintf("noise %d", i))))
	}
	require.NoError(t, repo.CreateNotification(models.NewGeneralNotification("bystander@iitj.ac.in", "still here")))

	removed, err := repo.ClearAll(inboxOwner)
	require.NoError(t, err)
	assert.Equal(t, int64(toCreate), removed)

	got, err := repo.ListByRecipient(inboxOwner)
	require.NoError(t, err)
	assert.Empty(t, got)

	kept, err := repo.ListByRecipient("bystander@iitj.ac.in")
	require.NoError(t, err)
	assert.Len(t, kept, 1)

	removed, err = repo.ClearAll(inboxOwner)
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestMutationsSignalWatchers(t *testing.T) {
	hub := watch.NewHub()
	repo := NewPostgresNotificationRepository(newTestDB(t), hub)

	sub := hub.Subscribe(watch.TopicNotifications)
	defer sub.Cancel()

	require.NoError(t, repo.CreateNotification(models.NewGeneralNotification(inboxOwner, "ping")))

	select {
	case <-sub.C:
	default:
		t.Fatal("expected a change signal after creating a notification")
	}
}
