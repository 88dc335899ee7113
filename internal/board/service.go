// Package board orchestrates every task mutation: policy gate, store write,
// then event publish. Handlers never touch the store or the hub directly.
package board

import (
	"context"
	"errors"
	"time"

	"mentorhub-api/internal/logger"
	"mentorhub-api/internal/models"
	"mentorhub-api/internal/policy"
	"mentorhub-api/internal/realtime"
	"mentorhub-api/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Actor is the authenticated identity performing an operation, resolved by
// the auth middleware from the request token.
type Actor struct {
	UserID string
	Role   models.Role
}

// Service validates, persists and broadcasts task state changes.
type Service struct {
	store *store.TaskStore
	hub   *realtime.Hub
}

// NewService wires the synchronization service to its store and event bus.
func NewService(taskStore *store.TaskStore, hub *realtime.Hub) *Service {
	return &Service{store: taskStore, hub: hub}
}

// CreateTaskInput carries the client-supplied fields for a new task.
// Status and priority default to "To Do" / "Medium" when empty.
type CreateTaskInput struct {
	Title       string
	Description string
	AssigneeID  string
	Status      models.TaskStatus
	Priority    models.TaskPriority
	Deadline    *time.Time
	ProjectID   string
}

// UpdateTaskInput carries the replacement fields for an existing task.
// Empty description/assignee/deadline keep the current value.
type UpdateTaskInput struct {
	Title       string
	Description string
	AssigneeID  string
	Status      models.TaskStatus
	Priority    models.TaskPriority
	Deadline    *time.Time
	ProjectID   string
}

// CreateTask validates the assignment against the policy engine, persists
// the task and publishes taskCreated. On policy denial nothing is written.
func (s *Service) CreateTask(ctx context.Context, actor Actor, in CreateTaskInput) (*models.Task, error) {
	assignee, err := s.store.ResolveUser(ctx, in.AssigneeID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, &store.ValidationError{Field: "assignee", Reason: "assignee not found"}
		}
		return nil, err
	}

	if err := policy.Check(actor.Role, assignee.Role, policy.OpAssign); err != nil {
		return nil, err
	}

	status := in.Status
	if status == "" {
		status = models.StatusToDo
	}
	priority := in.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}

	task := &models.Task{
		Title:       in.Title,
		Description: in.Description,
		AssigneeID:  in.AssigneeID,
		Status:      status,
		Priority:    priority,
		Deadline:    in.Deadline,
		ProjectID:   in.ProjectID,
		CreatedByID: actor.UserID,
	}
	if err := s.store.Create(ctx, task); err != nil {
		return nil, err
	}

	s.publishTask(realtime.EventTaskCreated, task)
	return task, nil
}

// GetTask returns a single task.
func (s *Service) GetTask(ctx context.Context, id string) (*models.Task, error) {
	return s.store.Get(ctx, id)
}

// ListTasks returns tasks matching the filter, newest first.
func (s *Service) ListTasks(ctx context.Context, filter store.TaskFilter) ([]models.Task, error) {
	return s.store.List(ctx, filter)
}

// UpdateTask replaces the task's mutable fields and publishes taskUpdated.
// The policy engine is re-run only when the assignee changes to a different
// user, using the new assignee's role.
func (s *Service) UpdateTask(ctx context.Context, actor Actor, id string, in UpdateTaskInput) (*models.Task, error) {
	task, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.AssigneeID != "" && in.AssigneeID != task.AssigneeID {
		assignee, err := s.store.ResolveUser(ctx, in.AssigneeID)
		if err != nil {
			if errors.Is(err, store.ErrUserNotFound) {
				return nil, &store.ValidationError{Field: "assignee", Reason: "assignee not found"}
			}
			return nil, err
		}
		if err := policy.Check(actor.Role, assignee.Role, policy.OpAssign); err != nil {
			return nil, err
		}
		task.AssigneeID = in.AssigneeID
	}

	task.Title = in.Title
	if in.Description != "" {
		task.Description = in.Description
	}
	task.Status = in.Status
	task.Priority = in.Priority
	if in.Deadline != nil {
		task.Deadline = in.Deadline
	}
	if in.ProjectID != "" {
		task.ProjectID = in.ProjectID
	}

	if err := s.store.Update(ctx, task); err != nil {
		return nil, err
	}

	s.publishTask(realtime.EventTaskUpdated, task)
	return task, nil
}

// MoveTask changes only the task's status. Any authenticated actor may move
// any task to any column; there is no role check and no transition order.
func (s *Service) MoveTask(ctx context.Context, actor Actor, id string, status models.TaskStatus) (*models.Task, error) {
	task, err := s.store.Move(ctx, id, status)
	if err != nil {
		return nil, err
	}

	s.publishTask(realtime.EventTaskMoved, task)
	return task, nil
}

// DeleteTask removes the task and publishes taskDeleted with just the id.
func (s *Service) DeleteTask(ctx context.Context, actor Actor, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}

	evt, err := realtime.NewDeletedEvent(id)
	if err != nil {
		logger.Error("encode taskDeleted event", err, zap.String("task_id", id))
		return nil
	}
	s.hub.Publish(evt)
	return nil
}

// AddAttachment appends attachment metadata to a task and publishes
// taskUpdated. The file bytes live in external storage.
func (s *Service) AddAttachment(ctx context.Context, actor Actor, id string, att models.Attachment) (*models.Task, error) {
	task, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if att.ID == "" {
		att.ID = uuid.NewString()
	}
	if att.UploadedAt.IsZero() {
		att.UploadedAt = time.Now()
	}
	task.Attachments = append(task.Attachments, att)

	if err := s.store.Update(ctx, task); err != nil {
		return nil, err
	}
	s.publishTask(realtime.EventTaskUpdated, task)
	return task, nil
}

// RemoveAttachment deletes one attachment record by id.
func (s *Service) RemoveAttachment(ctx context.Context, actor Actor, id, attachmentID string) (*models.Task, error) {
	task, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	kept := task.Attachments[:0]
	found := false
	for _, att := range task.Attachments {
		if att.ID == attachmentID {
			found = true
			continue
		}
		kept = append(kept, att)
	}
	if !found {
		return nil, &store.ValidationError{Field: "attachmentId", Reason: "attachment not found"}
	}
	task.Attachments = kept

	if err := s.store.Update(ctx, task); err != nil {
		return nil, err
	}
	s.publishTask(realtime.EventTaskUpdated, task)
	return task, nil
}

// AddVoiceNote appends voice-note metadata to a task, stamping the uploader.
func (s *Service) AddVoiceNote(ctx context.Context, actor Actor, id string, note models.VoiceNote) (*models.Task, error) {
	task, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	note.UploadedBy = actor.UserID
	if note.UploadedAt.IsZero() {
		note.UploadedAt = time.Now()
	}
	task.VoiceNotes = append(task.VoiceNotes, note)

	if err := s.store.Update(ctx, task); err != nil {
		return nil, err
	}
	s.publishTask(realtime.EventTaskUpdated, task)
	return task, nil
}

// DashboardStats summarizes a user's board for the dashboard widgets.
type DashboardStats struct {
	ActiveTasks    int64              `json:"activeTasks"`
	CompletionRate int64              `json:"completionRate"`
	Counts         store.StatusCounts `json:"counts"`
}

// Stats computes active-task and completion numbers for one user.
func (s *Service) Stats(ctx context.Context, userID string) (DashboardStats, error) {
	counts, err := s.store.CountByStatus(ctx, userID)
	if err != nil {
		return DashboardStats{}, err
	}

	stats := DashboardStats{
		ActiveTasks: counts.Total - counts.Done,
		Counts:      counts,
	}
	if counts.Total > 0 {
		stats.CompletionRate = counts.Done * 100 / counts.Total
	}
	return stats, nil
}

// publishTask broadcasts a full-task event. Publishing happens only after a
// successful store write and never fails the operation.
func (s *Service) publishTask(eventType realtime.EventType, task *models.Task) {
	evt, err := realtime.NewTaskEvent(eventType, task)
	if err != nil {
		logger.Error("encode task event", err, zap.String("task_id", task.ID), zap.String("event", string(eventType)))
		return
	}
	s.hub.Publish(evt)
}
