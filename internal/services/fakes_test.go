package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/campusquest/backend/internal/apperr"
	"github.com/campusquest/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeTaskRepository is an in-memory TaskRepository with the same
// conditional-write semantics as the Mongo implementation.
type fakeTaskRepository struct {
	mu    sync.Mutex
	tasks map[string]*models.Task
}

func newFakeTaskRepository() *fakeTaskRepository {
	return &fakeTaskRepository{tasks: make(map[string]*models.Task)}
}

func (r *fakeTaskRepository) CreateTask(_ context.Context, task *models.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	task.ID = primitive.NewObjectID()
	task.CreatedAt = time.Now()
	task.UpdatedAt = task.CreatedAt
	cp := *task
	r.tasks[task.ID.Hex()] = &cp
	return nil
}

func (r *fakeTaskRepository) GetTaskByID(_ context.Context, id string) (*models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok {
		return nil, apperr.NotFoundf("task not found")
	}
	cp := *t
	cp.Applicants = append([]string(nil), t.Applicants...)
	return &cp, nil
}

func (r *fakeTaskRepository) list(match func(*models.Task) bool) []models.Task {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Task
	for _, t := range r.tasks {
		if match(t) {
			out = append(out, *t)
		}
	}
	// newest first, like the backing store
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *fakeTaskRepository) ListOpen(_ context.Context) ([]models.Task, error) {
	return r.list(func(t *models.Task) bool { return t.Status == models.TaskStatusOpen }), nil
}

func (r *fakeTaskRepository) ListByCreator(_ context.Context, email string) ([]models.Task, error) {
	return r.list(func(t *models.Task) bool { return t.Creator == email }), nil
}

func (r *fakeTaskRepository) ListByAssignee(_ context.Context, email string) ([]models.Task, error) {
	return r.list(func(t *models.Task) bool { return t.AssignedTo == email }), nil
}

func (r *fakeTaskRepository) AddApplicant(_ context.Context, id, applicant string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok || t.Status != models.TaskStatusOpen || t.Creator == applicant || t.HasApplicant(applicant) {
		return false, nil
	}
	t.Applicants = append(t.Applicants, applicant)
	return true, nil
}

func (r *fakeTaskRepository) Assign(_ context.Context, id, applicant string, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok || t.Status != models.TaskStatusOpen {
		return false, nil
	}
	t.Status = models.TaskStatusClosed
	t.AssignedTo = applicant
	t.AssignedAt = &at
	t.UpdatedAt = at
	return true, nil
}

func (r *fakeTaskRepository) Complete(_ context.Context, id, completer string, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok || t.Status != models.TaskStatusClosed || t.AssignedTo != completer {
		return false, nil
	}
	t.Status = models.TaskStatusCompleted
	t.CompletedAt = &at
	t.UpdatedAt = at
	return true, nil
}

func (r *fakeTaskRepository) UpdateDetails(_ context.Context, id string, upd *models.UpdateTaskRequest) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok || t.Status == models.TaskStatusCompleted {
		return false, nil
	}
	if upd.Title != "" {
		t.Title = upd.Title
	}
	if upd.Description != "" {
		t.Description = upd.Description
	}
	if upd.Venue != "" {
		t.Venue = upd.Venue
	}
	if upd.Reward != 0 {
		t.Reward = upd.Reward
	}
	if upd.Deadline != nil {
		t.Deadline = *upd.Deadline
	}
	t.UpdatedAt = time.Now()
	return true, nil
}

func (r *fakeTaskRepository) DeleteTask(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tasks[id]; !ok {
		return apperr.NotFoundf("task not found")
	}
	delete(r.tasks, id)
	return nil
}

// fakeNotificationRepository is an in-memory NotificationRepository.
type fakeNotificationRepository struct {
	mu            sync.Mutex
	nextID        uint
	notifications map[uint]*models.Notification
}

func newFakeNotificationRepository() *fakeNotificationRepository {
	return &fakeNotificationRepository{notifications: make(map[uint]*models.Notification)}
}

func (r *fakeNotificationRepository) CreateNotification(n *models.Notification) error {
	if err := n.Validate(); err != nil {
		return apperr.Validationf("notification", "%v", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	n.ID = r.nextID
	n.Read = false
	n.Timestamp = time.Now()
	cp := *n
	r.notifications[n.ID] = &cp
	return nil
}

func (r *fakeNotificationRepository) GetByID(id uint) (*models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.notifications[id]
	if !ok {
		return nil, apperr.NotFoundf("notification not found")
	}
	cp := *n
	return &cp, nil
}

func (r *fakeNotificationRepository) ListByRecipient(email string) ([]models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Notification
	for _, n := range r.notifications {
		if n.User == email {
			out = append(out, *n)
		}
	}
	// newest first, like the backing store
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *fakeNotificationRepository) UnreadCount(email string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, n := range r.notifications {
		if n.User == email && !n.Read {
			count++
		}
	}
	return count, nil
}

func (r *fakeNotificationRepository) MarkAsRead(id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n, ok := r.notifications[id]; ok {
		n.Read = true
	}
	return nil
}

func (r *fakeNotificationRepository) Delete(id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.notifications, id)
	return nil
}

func (r *fakeNotificationRepository) DeleteApplications(email, taskID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for id, n := range r.notifications {
		if n.User == email && n.TaskID == taskID && n.Type == models.NotificationApplication {
			delete(r.notifications, id)
			count++
		}
	}
	return count, nil
}

func (r *fakeNotificationRepository) ClearAll(email string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for id, n := range r.notifications {
		if n.User == email {
			delete(r.notifications, id)
			count++
		}
	}
	return count, nil
}

// byType filters a recipient's notifications by kind.
func (r *fakeNotificationRepository) byType(email, kind string) []models.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Notification
	for _, n := range r.notifications {
		if n.User == email && n.Type == kind {
			out = append(out, *n)
		}
	}
	return out
}

// fakeUserRepository is an in-memory UserRepository.
type fakeUserRepository struct {
	mu      sync.Mutex
	users   map[string]*models.User
	ratings []models.Rating
}

func newFakeUserRepository() *fakeUserRepository {
	return &fakeUserRepository{users: make(map[string]*models.User)}
}

func (r *fakeUserRepository) CreateUser(user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *user
	r.users[user.Email] = &cp
	return nil
}

func (r *fakeUserRepository) GetUserByEmail(email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[email]
	if !ok {
		return nil, apperr.NotFoundf("user not found")
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepository) GetUserByFirebaseUID(uid string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.FirebaseUID == uid {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperr.NotFoundf("user not found")
}

func (r *fakeUserRepository) UpdateUsername(email, username string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[email]
	if !ok {
		return apperr.NotFoundf("user not found")
	}
	u.Username = username
	return nil
}

func (r *fakeUserRepository) AddRating(email, role string, value int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ratings = append(r.ratings, models.Rating{UserEmail: email, Role: role, Value: value})
	return nil
}

func (r *fakeUserRepository) GetRatings(email, role string) ([]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var values []int
	for _, rating := range r.ratings {
		if rating.UserEmail == email && rating.Role == role {
			values = append(values, rating.Value)
		}
	}
	return values, nil
}

func (r *fakeUserRepository) GetAverages(email string) (*models.UserAverages, error) {
	out := &models.UserAverages{Email: email, Username: models.EmailLocalPart(email)}
	if u, err := r.GetUserByEmail(email); err == nil {
		out.Username = u.DisplayName()
	}
	qm, _ := r.GetRatings(email, models.RoleQuestmaster)
	vy, _ := r.GetRatings(email, models.RoleVoyager)
	out.QuestmasterAverage = models.RatingAverage(qm)
	out.VoyagerAverage = models.RatingAverage(vy)
	return out, nil
}
