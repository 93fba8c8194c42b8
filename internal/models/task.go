package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Task statuses. Assignment and closure are a single transition: a task
// becomes "closed" the moment the creator picks an applicant.
const (
	TaskStatusOpen      = "open"
	TaskStatusClosed    = "closed"
	TaskStatusCompleted = "completed"
)

// TaskTransitions lists the allowed status transitions. "completed" is final.
var TaskTransitions = map[string]map[string]bool{
	TaskStatusOpen:      {TaskStatusClosed: true},
	TaskStatusClosed:    {TaskStatusCompleted: true},
	TaskStatusCompleted: {},
}

// CanTransition reports whether a task may move from one status to another.
func CanTransition(from, to string) bool {
	nexts, ok := TaskTransitions[from]
	if !ok {
		return false
	}
	return nexts[to]
}

// Task represents a posted quest stored in MongoDB
type Task struct {
	ID          primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Title       string             `json:"title" bson:"title"`
	Description string             `json:"description" bson:"description"`
	Venue       string             `json:"venue" bson:"venue"`
	Reward      int                `json:"reward" bson:"reward"`
	Creator     string             `json:"creator" bson:"creator"` // email of the poster, immutable
	Applicants  []string           `json:"applicants" bson:"applicants"`
	Status      string             `json:"status" bson:"status"`
	AssignedTo  string             `json:"assigned_to,omitempty" bson:"assigned_to,omitempty"`
	CreatedAt   time.Time          `json:"created_at" bson:"created_at"`
	Deadline    time.Time          `json:"deadline" bson:"deadline"`
	AssignedAt  *time.Time         `json:"assigned_at,omitempty" bson:"assigned_at,omitempty"`
	CompletedAt *time.Time         `json:"completed_at,omitempty" bson:"completed_at,omitempty"`
	UpdatedAt   time.Time          `json:"updated_at" bson:"updated_at"`
}

// HasApplicant reports whether the given email has already applied.
func (t *Task) HasApplicant(email string) bool {
	for _, a := range t.Applicants {
		if a == email {
			return true
		}
	}
	return false
}

// CompletedLate reports whether the task was completed after its deadline.
// Display-only; a late completion is never blocked.
func (t *Task) CompletedLate() bool {
	return t.CompletedAt != nil && !t.Deadline.IsZero() && t.CompletedAt.After(t.Deadline)
}

// Reward incentive tiers shown on task listings
const (
	TierBronze    = "Bronze"
	TierSilver    = "Silver"
	TierGold      = "Gold"
	TierLegendary = "Legendary"
)

// RewardTier maps a reward amount to its incentive tier.
func RewardTier(reward int) string {
	switch {
	case reward > 100:
		return TierLegendary
	case reward >= 50:
		return TierGold
	case reward >= 20:
		return TierSilver
	default:
		return TierBronze
	}
}

// TaskView is a Task augmented with creator details for listings
type TaskView struct {
	Task
	CreatorDisplay        string  `json:"creator_display"`
	CreatorQuestmasterAvg float64 `json:"creator_questmaster_avg"`
	Tier                  string  `json:"tier"`
	ApplicantCount        int     `json:"applicant_count"`
	CompletedLate         bool    `json:"completed_late,omitempty"`
}

// CreateTaskRequest defines the request body for posting a new task
type CreateTaskRequest struct {
	Title       string    `json:"title" validate:"required,min=1,max=100"`
	Description string    `json:"description" validate:"required,min=1,max=500"`
	Venue       string    `json:"venue" validate:"required"`
	Reward      int       `json:"reward" validate:"required,min=1,max=10000"`
	Deadline    time.Time `json:"deadline" validate:"required"`
}

// UpdateTaskRequest defines the request body for editing an owned task
type UpdateTaskRequest struct {
	Title       string     `json:"title,omitempty" validate:"omitempty,min=1,max=100"`
	Description string     `json:"description,omitempty" validate:"omitempty,min=1,max=500"`
	Venue       string     `json:"venue,omitempty"`
	Reward      int        `json:"reward,omitempty" validate:"omitempty,min=1,max=10000"`
	Deadline    *time.Time `json:"deadline,omitempty"`
}

// AssignTaskRequest defines the request body for assigning an applicant
type AssignTaskRequest struct {
	Applicant      string `json:"applicant" validate:"required,email"`
	NotificationID uint   `json:"notification_id,omitempty"`
}
