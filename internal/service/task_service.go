package service

import (
	"context"
	"log/slog"

	"github.com/mmynk/homebase/internal/models"
	"github.com/mmynk/homebase/internal/storage"
	"github.com/mmynk/homebase/internal/validate"
)

const taskNotFound = "Task not found"

// TaskInput is the writable part of a task.
type TaskInput struct {
	Label       string
	Description string
}

// TaskService manages the caller's tasks.
type TaskService struct {
	store storage.TaskStore
}

// NewTaskService creates a new TaskService with the given storage backend.
func NewTaskService(store storage.TaskStore) *TaskService {
	return &TaskService{store: store}
}

func (in TaskInput) validate() error {
	if err := validate.Required(
		validate.Field{Name: "label", Value: in.Label},
		validate.Field{Name: "description", Value: in.Description},
	); err != nil {
		return err
	}
	if err := validate.Label(in.Label, models.TaskLabelMaxLen); err != nil {
		return err
	}
	return validate.MaxLen("description", in.Description, models.TaskDescriptionMaxLen)
}

// List returns every task owned by userID.
func (s *TaskService) List(ctx context.Context, userID int64) ([]models.Task, error) {
	tasks, err := s.store.ListTasks(ctx, userID)
	if err != nil {
		return nil, storeError("ListTasks", err, taskNotFound)
	}
	return tasks, nil
}

// Create validates in and stores a new task owned by userID.
func (s *TaskService) Create(ctx context.Context, userID int64, in TaskInput) (*models.Task, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	task := &models.Task{
		Label:       in.Label,
		Description: in.Description,
		CreatedBy:   userID,
	}
	if err := s.store.CreateTask(ctx, task); err != nil {
		return nil, storeError("CreateTask", err, taskNotFound)
	}

	slog.Info("Task created", "task_id", task.ID, "user_id", userID)
	return task, nil
}

// Update overwrites label and description of a task owned by userID.
func (s *TaskService) Update(ctx context.Context, userID, taskID int64, in TaskInput) (*models.Task, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	task := &models.Task{
		ID:          taskID,
		Label:       in.Label,
		Description: in.Description,
		CreatedBy:   userID,
	}
	if err := s.store.UpdateTask(ctx, task); err != nil {
		return nil, storeError("UpdateTask", err, taskNotFound)
	}

	slog.Info("Task updated", "task_id", task.ID, "user_id", userID)
	return task, nil
}

// Delete removes a task owned by userID.
func (s *TaskService) Delete(ctx context.Context, userID, taskID int64) error {
	if err := s.store.DeleteTask(ctx, userID, taskID); err != nil {
		return storeError("DeleteTask", err, taskNotFound)
	}

	slog.Info("Task deleted", "task_id", taskID, "user_id", userID)
	return nil
}
