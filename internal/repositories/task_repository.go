package repositories

import (
	"context"
	"time"

	"github.com/campusquest/backend/internal/apperr"
	"github.com/campusquest/backend/internal/models"
	"github.com/campusquest/backend/internal/watch"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// TaskRepository defines the interface for task data operations. The
// conditional mutations (AddApplicant, Assign, Complete) return false when
// the document no longer satisfies the precondition filter, so callers can
// turn a lost race into a conflict instead of a lost update.
type TaskRepository interface {
	CreateTask(ctx context.Context, task *models.Task) error
	GetTaskByID(ctx context.Context, id string) (*models.Task, error)
	ListOpen(ctx context.Context) ([]models.Task, error)
	ListByCreator(ctx context.Context, email string) ([]models.Task, error)
	ListByAssignee(ctx context.Context, email string) ([]models.Task, error)
	AddApplicant(ctx context.Context, id, applicant string) (bool, error)
	Assign(ctx context.Context, id, applicant string, at time.Time) (bool, error)
	Complete(ctx context.Context, id, completer string, at time.Time) (bool, error)
	UpdateDetails(ctx context.Context, id string, upd *models.UpdateTaskRequest) (bool, error)
	DeleteTask(ctx context.Context, id string) error
}

// MongoTaskRepository implements TaskRepository for MongoDB
type MongoTaskRepository struct {
	collection *mongo.Collection
	hub        *watch.Hub
}

// NewMongoTaskRepository creates a new MongoTaskRepository. Every successful
// mutation signals the tasks topic on the hub so live views re-evaluate.
func NewMongoTaskRepository(db *mongo.Database, hub *watch.Hub) *MongoTaskRepository {
	return &MongoTaskRepository{collection: db.Collection("tasks"), hub: hub}
}

func taskObjectID(id string) (primitive.ObjectID, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, apperr.Validationf("taskId", "invalid task ID format")
	}
	return objID, nil
}

// CreateTask inserts a new open task.
func (r *MongoTaskRepository) CreateTask(ctx context.Context, task *models.Task) error {
	task.ID = primitive.NewObjectID()
	task.CreatedAt = time.Now()
	task.UpdatedAt = task.CreatedAt
	if _, err := r.collection.InsertOne(ctx, task); err != nil {
		return apperr.Unavailable(err)
	}
	r.hub.Signal(watch.TopicTasks)
	return nil
}

// GetTaskByID retrieves a task by ID.
func (r *MongoTaskRepository) GetTaskByID(ctx context.Context, id string) (*models.Task, error) {
	objID, err := taskObjectID(id)
	if err != nil {
		return nil, err
	}
	var task models.Task
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&task)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperr.NotFoundf("task not found")
		}
		return nil, apperr.Unavailable(err)
	}
	return &task, nil
}

func (r *MongoTaskRepository) find(ctx context.Context, filter bson.M) ([]models.Task, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, apperr.Unavailable(err)
	}
	defer cursor.Close(ctx)

	var tasks []models.Task
	if err = cursor.All(ctx, &tasks); err != nil {
		return nil, apperr.Unavailable(err)
	}
	return tasks, nil
}

// ListOpen retrieves all open tasks, newest first.
func (r *MongoTaskRepository) ListOpen(ctx context.Context) ([]models.Task, error) {
	return r.find(ctx, bson.M{"status": models.TaskStatusOpen})
}

// ListByCreator retrieves a user's posted tasks, newest first.
func (r *MongoTaskRepository) ListByCreator(ctx context.Context, email string) ([]models.Task, error) {
	return r.find(ctx, bson.M{"creator": email})
}

// ListByAssignee retrieves tasks assigned to a user, newest first.
func (r *MongoTaskRepository) ListByAssignee(ctx context.Context, email string) ([]models.Task, error) {
	return r.find(ctx, bson.M{"assigned_to": email})
}

// AddApplicant atomically appends an applicant with set semantics. The
// $addToSet under a status filter makes two concurrent applications both
// land without reading and writing back the whole list.
func (r *MongoTaskRepository) AddApplicant(ctx context.Context, id, applicant string) (bool, error) {
	objID, err := taskObjectID(id)
	if err != nil {
		return false, err
	}
	filter := bson.M{
		"_id":        objID,
		"status":     models.TaskStatusOpen,
		"creator":    bson.M{"$ne": applicant},
		"applicants": bson.M{"$ne": applicant},
	}
	update := bson.M{
		"$addToSet": bson.M{"applicants": applicant},
		"$set":      bson.M{"updated_at": time.Now()},
	}
	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, apperr.Unavailable(err)
	}
	if res.MatchedCount == 0 {
		return false, nil
	}
	r.hub.Signal(watch.TopicTasks)
	return true, nil
}

// Assign moves a task from open to closed with a check-and-set on the
// current status, so a second assignment attempt matches nothing.
func (r *MongoTaskRepository) Assign(ctx context.Context, id, applicant string, at time.Time) (bool, error) {
	objID, err := taskObjectID(id)
	if err != nil {
		return false, err
	}
	filter := bson.M{"_id": objID, "status": models.TaskStatusOpen}
	update := bson.M{"$set": bson.M{
		"status":      models.TaskStatusClosed,
		"assigned_to": applicant,
		"assigned_at": at,
		"updated_at":  at,
	}}
	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, apperr.Unavailable(err)
	}
	if res.MatchedCount == 0 {
		return false, nil
	}
	r.hub.Signal(watch.TopicTasks)
	return true, nil
}

// Complete moves a task from closed to completed, only for its assignee.
func (r *MongoTaskRepository) Complete(ctx context.Context, id, completer string, at time.Time) (bool, error) {
	objID, err := taskObjectID(id)
	if err != nil {
		return false, err
	}
	filter := bson.M{
		"_id":         objID,
		"status":      models.TaskStatusClosed,
		"assigned_to": completer,
	}
	update := bson.M{"$set": bson.M{
		"status":       models.TaskStatusCompleted,
		"completed_at": at,
		"updated_at":   at,
	}}
	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, apperr.Unavailable(err)
	}
	if res.MatchedCount == 0 {
		return false, nil
	}
	r.hub.Signal(watch.TopicTasks)
	return true, nil
}

// UpdateDetails edits descriptive fields of a not-yet-completed task.
func (r *MongoTaskRepository) UpdateDetails(ctx context.Context, id string, upd *models.UpdateTaskRequest) (bool, error) {
	objID, err := taskObjectID(id)
	if err != nil {
		return false, err
	}
	set := bson.M{"updated_at": time.Now()}
	if upd.Title != "" {
		set["title"] = upd.Title
	}
	if upd.Description != "" {
		set["description"] = upd.Description
	}
	if upd.Venue != "" {
		set["venue"] = upd.Venue
	}
	if upd.Reward != 0 {
		set["reward"] = upd.Reward
	}
	if upd.Deadline != nil {
		set["deadline"] = *upd.Deadline
	}
	filter := bson.M{"_id": objID, "status": bson.M{"$ne": models.TaskStatusCompleted}}
	res, err := r.collection.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return false, apperr.Unavailable(err)
	}
	if res.MatchedCount == 0 {
		return false, nil
	}
	r.hub.Signal(watch.TopicTasks)
	return true, nil
}

// DeleteTask removes a task by ID.
func (r *MongoTaskRepository) DeleteTask(ctx context.Context, id string) error {
	objID, err := taskObjectID(id)
	if err != nil {
		return err
	}
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return apperr.Unavailable(err)
	}
	if res.DeletedCount == 0 {
		return apperr.NotFoundf("task not found")
	}
	r.hub.Signal(watch.TopicTasks)
	return nil
}
