package services

import (
	"context"
	"log"
	"time"

	"github.com/campusquest/backend/internal/apperr"
	"github.com/campusquest/backend/internal/models"
	"github.com/campusquest/backend/internal/repositories"
)

// TaskService owns the task lifecycle state machine:
//
//	open --apply--> open(+applicant) --assign--> closed --complete--> completed
//
// Every operation validates locally first and fails fast before touching the
// store, so a rejected call never produces partial state. Transitions are
// conditional writes in the repository; notification dispatch is best-effort
// and never rolls back the transition that triggered it.
type TaskService struct {
	tasks    repositories.TaskRepository
	users    repositories.UserRepository
	notifier *NotificationService
}

// NewTaskService creates a new TaskService
func NewTaskService(taskRepo repositories.TaskRepository, userRepo repositories.UserRepository, notifier *NotificationService) *TaskService {
	return &TaskService{tasks: taskRepo, users: userRepo, notifier: notifier}
}

func validateCreate(req *models.CreateTaskRequest) error {
	if l := len(req.Title); l < 1 || l > 100 {
		return apperr.Validationf("title", "must be between 1 and 100 characters")
	}
	if l := len(req.Description); l < 1 || l > 500 {
		return apperr.Validationf("description", "must be between 1 and 500 characters")
	}
	if req.Venue == "" {
		return apperr.Validationf("venue", "please specify a venue")
	}
	if req.Reward < 1 || req.Reward > 10000 {
		return apperr.Validationf("reward", "must be between ₹1 and ₹10,000")
	}
	if !req.Deadline.After(time.Now()) {
		return apperr.Validationf("deadline", "must be in the future")
	}
	return nil
}

// Create validates and posts a new open task with no applicants.
func (s *TaskService) Create(ctx context.Context, creator string, req *models.CreateTaskRequest) (*models.Task, error) {
	if err := validateCreate(req); err != nil {
		return nil, err
	}
	task := &models.Task{
		Title:       req.Title,
		Description: req.Description,
		Venue:       req.Venue,
		Reward:      req.Reward,
		Creator:     creator,
		Applicants:  []string{},
		Status:      models.TaskStatusOpen,
		Deadline:    req.Deadline,
	}
	if err := s.tasks.CreateTask(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// Apply records an application. The precondition checks fail fast; the
// applicant append itself is an atomic set-add in the store, so two
// simultaneous applications from different users both land.
func (s *TaskService) Apply(ctx context.Context, taskID, applicant string) error {
	task, err := s.tasks.GetTaskByID(ctx, taskID)
	if err != nil {
		return err
	}
	if task.Status != models.TaskStatusOpen {
		return apperr.Conflictf("this task is no longer accepting applications")
	}
	if task.Creator == applicant {
		return apperr.Conflictf("you cannot apply to your own task")
	}
	if task.HasApplicant(applicant) {
		return apperr.Conflictf("you have already applied to this task")
	}

	ok, err := s.tasks.AddApplicant(ctx, taskID, applicant)
	if err != nil {
		return err
	}
	if !ok {
		// Lost a race between the read above and the conditional write.
		return s.classifyApplyConflict(ctx, taskID, applicant)
	}

	s.notifier.Send(models.NewApplicationNotification(task.Creator, applicant, taskID, task.Title))
	return nil
}

func (s *TaskService) classifyApplyConflict(ctx context.Context, taskID, applicant string) error {
	task, err := s.tasks.GetTaskByID(ctx, taskID)
	if err != nil {
		return err
	}
	if task.HasApplicant(applicant) {
		return apperr.Conflictf("you have already applied to this task")
	}
	return apperr.Conflictf("this task is no longer accepting applications")
}

// Assign closes an open task on a chosen applicant. Only the creator may
// assign, and the applicant must actually have applied. Side effects run in
// order after the transition and are best-effort: removing the triggering
// notification and the other now-superseded application notifications,
// congratulating the assignee, rejecting the other applicants, confirming to
// the creator.
func (s *TaskService) Assign(ctx context.Context, taskID, assigner, applicant string, triggeringNotificationID uint) error {
	task, err := s.tasks.GetTaskByID(ctx, taskID)
	if err != nil {
		return err
	}
	if task.Creator != assigner {
		return apperr.Authorizationf("only the task creator can assign tasks")
	}
	if task.Status != models.TaskStatusOpen {
		return apperr.Conflictf("this task has already been assigned")
	}
	if !task.HasApplicant(applicant) {
		return apperr.Conflictf("%s has not applied to this task", applicant)
	}

	ok, err := s.tasks.Assign(ctx, taskID, applicant, time.Now())
	if err != nil {
		return err
	}
	if !ok {
		return apperr.Conflictf("this task has already been assigned")
	}

	if triggeringNotificationID != 0 {
		if err := s.notifier.Delete(assigner, triggeringNotificationID); err != nil {
			log.Printf("Failed to remove triggering notification %d: %v", triggeringNotificationID, err)
		}
	}
	// The remaining application notifications for this task are superseded.
	if err := s.notifier.ClearTaskApplications(assigner, taskID); err != nil {
		log.Printf("Failed to clear superseded applications for task %s: %v", taskID, err)
	}
	s.notifier.Send(models.NewAssignmentNotification(applicant, taskID, task.Title, task.Reward))
	for _, other := range task.Applicants {
		if other == applicant {
			continue
		}
		s.notifier.Send(models.NewRejectionNotification(other, taskID, task.Title))
	}
	s.notifier.Send(models.NewGeneralNotification(assigner,
		"Task \""+task.Title+"\" has been assigned to "+applicant))
	return nil
}

// Complete marks a closed task as done. Only the assignee completes. Both
// parties then get a one-shot rate prompt naming the counterpart and role.
// A completion after the deadline is recorded, never blocked.
func (s *TaskService) Complete(ctx context.Context, taskID, completer string) error {
	task, err := s.tasks.GetTaskByID(ctx, taskID)
	if err != nil {
		return err
	}
	if task.Status != models.TaskStatusClosed {
		if task.Status == models.TaskStatusCompleted {
			return apperr.Conflictf("this task is already completed")
		}
		return apperr.Conflictf("this task has not been assigned yet")
	}
	if task.AssignedTo != completer {
		return apperr.Authorizationf("only the assigned voyager can mark this task complete")
	}

	ok, err := s.tasks.Complete(ctx, taskID, completer, time.Now())
	if err != nil {
		return err
	}
	if !ok {
		return apperr.Conflictf("this task is already completed")
	}

	s.notifier.Send(models.NewRatePrompt(task.AssignedTo, taskID, task.Title, models.RoleQuestmaster, task.Creator))
	s.notifier.Send(models.NewRatePrompt(task.Creator, taskID, task.Title, models.RoleVoyager, task.AssignedTo))
	return nil
}

// Update edits descriptive fields of an owned, not-yet-completed task.
func (s *TaskService) Update(ctx context.Context, taskID, requester string, req *models.UpdateTaskRequest) error {
	task, err := s.tasks.GetTaskByID(ctx, taskID)
	if err != nil {
		return err
	}
	if task.Creator != requester {
		return apperr.Authorizationf("only the task creator can edit this task")
	}
	if task.Status == models.TaskStatusCompleted {
		return apperr.Conflictf("a completed task can no longer be edited")
	}
	if req.Deadline != nil && !req.Deadline.After(time.Now()) {
		return apperr.Validationf("deadline", "must be in the future")
	}
	if req.Reward != 0 && (req.Reward < 1 || req.Reward > 10000) {
		return apperr.Validationf("reward", "must be between ₹1 and ₹10,000")
	}
	ok, err := s.tasks.UpdateDetails(ctx, taskID, req)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.Conflictf("a completed task can no longer be edited")
	}
	return nil
}

// Delete removes a task. Creator only, and never once completed.
// Notifications referencing the task are left in place; orphans render
// gracefully.
func (s *TaskService) Delete(ctx context.Context, taskID, requester string) error {
	task, err := s.tasks.GetTaskByID(ctx, taskID)
	if err != nil {
		return err
	}
	if task.Creator != requester {
		return apperr.Authorizationf("only the task creator can delete this task")
	}
	if task.Status == models.TaskStatusCompleted {
		return apperr.Conflictf("a completed task can no longer be deleted")
	}
	return s.tasks.DeleteTask(ctx, taskID)
}

// ListOpenFor produces the open-task listing, newest first, each task
// augmented with the creator's display name and questmaster average. Viewer
// identity does not filter the list; button affordances are a rendering
// concern.
func (s *TaskService) ListOpenFor(ctx context.Context, viewer string) ([]models.TaskView, error) {
	tasks, err := s.tasks.ListOpen(ctx)
	if err != nil {
		return nil, err
	}
	return s.augment(tasks), nil
}

// QuestmasterHistory lists the tasks a user has posted, newest first.
func (s *TaskService) QuestmasterHistory(ctx context.Context, email string) ([]models.TaskView, error) {
	tasks, err := s.tasks.ListByCreator(ctx, email)
	if err != nil {
		return nil, err
	}
	return s.augment(tasks), nil
}

// VoyagerHistory lists the tasks assigned to a user, newest first.
func (s *TaskService) VoyagerHistory(ctx context.Context, email string) ([]models.TaskView, error) {
	tasks, err := s.tasks.ListByAssignee(ctx, email)
	if err != nil {
		return nil, err
	}
	return s.augment(tasks), nil
}

func (s *TaskService) augment(tasks []models.Task) []models.TaskView {
	views := make([]models.TaskView, len(tasks))
	avgCache := make(map[string]*models.UserAverages)
	for i, t := range tasks {
		views[i] = models.TaskView{
			Task:           t,
			CreatorDisplay: models.EmailLocalPart(t.Creator),
			Tier:           models.RewardTier(t.Reward),
			ApplicantCount: len(t.Applicants),
			CompletedLate:  t.CompletedLate(),
		}
		avg, ok := avgCache[t.Creator]
		if !ok {
			var err error
			avg, err = s.users.GetAverages(t.Creator)
			if err != nil {
				log.Printf("Failed to resolve creator %s: %v", t.Creator, err)
				continue
			}
			avgCache[t.Creator] = avg
		}
		views[i].CreatorDisplay = avg.Username
		views[i].CreatorQuestmasterAvg = avg.QuestmasterAverage
	}
	return views
}
