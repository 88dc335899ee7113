// Package store owns the persisted task and user records. It is the only
// layer that talks to the database; everything above it sees tasks, users
// and the error taxonomy in errors.go.
package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"mentorhub-api/internal/cache"
	"mentorhub-api/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// userCacheTTL bounds how long a resolved user may be served from memory.
// Role changes are rare; a short TTL keeps the write path cheap without
// letting stale roles linger.
const userCacheTTL = 30 * time.Second

// TaskFilter holds the optional equality filters for List. Zero values mean
// "no filter"; filters combine with AND.
type TaskFilter struct {
	Status     models.TaskStatus
	AssigneeID string
	Priority   models.TaskPriority
}

// TaskStore is the durable task repository backed by gorm.
type TaskStore struct {
	db    *gorm.DB
	users *cache.SimpleCache[string, models.User]
}

// NewTaskStore constructs a TaskStore over the given database handle.
func NewTaskStore(db *gorm.DB) *TaskStore {
	return &TaskStore{
		db:    db,
		users: cache.NewSimpleCache[string, models.User](),
	}
}

func validateTask(t *models.Task) error {
	if strings.TrimSpace(t.Title) == "" {
		return invalidField("title", "must not be empty")
	}
	if !t.Status.Valid() {
		return invalidField("status", "must be one of To Do, In Progress, Review, Done")
	}
	if !t.Priority.Valid() {
		return invalidField("priority", "must be one of Low, Medium, High, Critical")
	}
	return nil
}

// Create persists a new task. The id and timestamps are assigned here; the
// assignee must resolve to an existing user.
func (s *TaskStore) Create(ctx context.Context, task *models.Task) error {
	if err := validateTask(task); err != nil {
		return err
	}
	if _, err := s.ResolveUser(ctx, task.AssigneeID); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return invalidField("assignee", "assignee not found")
		}
		return err
	}

	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	now := time.Now()
	task.CreatedAt = now
	task.UpdatedAt = now

	if err := s.db.WithContext(ctx).Create(task).Error; err != nil {
		return err
	}
	s.enrich(ctx, task)
	return nil
}

// Get returns the task with the given id or ErrTaskNotFound.
func (s *TaskStore) Get(ctx context.Context, id string) (*models.Task, error) {
	var task models.Task
	result := s.db.WithContext(ctx).Where("id = ?", id).First(&task)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, result.Error
	}
	s.enrich(ctx, &task)
	return &task, nil
}

// Update replaces the mutable fields of an existing task and bumps
// updatedAt. The record must already exist.
func (s *TaskStore) Update(ctx context.Context, task *models.Task) error {
	if err := validateTask(task); err != nil {
		return err
	}

	var existing models.Task
	if err := s.db.WithContext(ctx).Where("id = ?", task.ID).First(&existing).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return err
	}

	// createdBy and createdAt are immutable
	task.CreatedByID = existing.CreatedByID
	task.CreatedAt = existing.CreatedAt
	task.UpdatedAt = time.Now()

	if err := s.db.WithContext(ctx).Save(task).Error; err != nil {
		return err
	}
	s.enrich(ctx, task)
	return nil
}

// Move sets only the status (and updatedAt) of an existing task.
func (s *TaskStore) Move(ctx context.Context, id string, status models.TaskStatus) (*models.Task, error) {
	if !status.Valid() {
		return nil, invalidField("status", "must be one of To Do, In Progress, Review, Done")
	}

	var task models.Task
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&task).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}

	updatedAt := time.Now()
	err := s.db.WithContext(ctx).Model(&task).Updates(map[string]any{
		"status":     status,
		"updated_at": updatedAt,
	}).Error
	if err != nil {
		return nil, err
	}
	task.Status = status
	task.UpdatedAt = updatedAt
	s.enrich(ctx, &task)
	return &task, nil
}

// Delete removes the task permanently. Deleting an absent id is an error,
// not a no-op.
func (s *TaskStore) Delete(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Task{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// List returns all tasks matching the filter, newest first with a stable
// id tie-break.
func (s *TaskStore) List(ctx context.Context, filter TaskFilter) ([]models.Task, error) {
	query := s.db.WithContext(ctx).Model(&models.Task{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.AssigneeID != "" {
		query = query.Where("assignee_id = ?", filter.AssigneeID)
	}
	if filter.Priority != "" {
		query = query.Where("priority = ?", filter.Priority)
	}

	var tasks []models.Task
	if err := query.Order("created_at DESC, id DESC").Find(&tasks).Error; err != nil {
		return nil, err
	}
	for i := range tasks {
		s.enrich(ctx, &tasks[i])
	}
	return tasks, nil
}

// StatusCounts holds the per-column totals for one assignee.
type StatusCounts struct {
	ToDo       int64 `json:"toDo"`
	InProgress int64 `json:"inProgress"`
	Review     int64 `json:"review"`
	Done       int64 `json:"done"`
	Total      int64 `json:"total"`
}

// CountByStatus returns how many tasks are assigned to userID in each column.
func (s *TaskStore) CountByStatus(ctx context.Context, userID string) (StatusCounts, error) {
	type row struct {
		Status models.TaskStatus
		Count  int64
	}

	var rows []row
	err := s.db.WithContext(ctx).Model(&models.Task{}).
		Select("status, COUNT(*) as count").
		Where("assignee_id = ?", userID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return StatusCounts{}, err
	}

	var counts StatusCounts
	for _, r := range rows {
		switch r.Status {
		case models.StatusToDo:
			counts.ToDo = r.Count
		case models.StatusInProgress:
			counts.InProgress = r.Count
		case models.StatusReview:
			counts.Review = r.Count
		case models.StatusDone:
			counts.Done = r.Count
		}
		counts.Total += r.Count
	}
	return counts, nil
}

// ResolveUser looks up a user by id, serving repeated lookups from a short
// TTL cache. Returns ErrUserNotFound for unknown ids.
func (s *TaskStore) ResolveUser(ctx context.Context, id string) (*models.User, error) {
	if id == "" {
		return nil, ErrUserNotFound
	}
	if u, ok := s.users.Get(id); ok {
		return &u, nil
	}

	var user models.User
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	s.users.Set(id, user, userCacheTTL)
	return &user, nil
}

// FindUserByEmail looks up a user by email for login.
func (s *TaskStore) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// CreateUser persists a new user, assigning an id when absent.
func (s *TaskStore) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	return s.db.WithContext(ctx).Create(user).Error
}

// ListUsers returns all users, for assignee pickers.
func (s *TaskStore) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := s.db.WithContext(ctx).Order("name").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// enrich fills the assignee/createdBy projections on a task read. A dangling
// reference (deleted user) leaves the projection empty rather than failing
// the read.
func (s *TaskStore) enrich(ctx context.Context, task *models.Task) {
	if u, err := s.ResolveUser(ctx, task.AssigneeID); err == nil {
		task.Assignee = u.Ref()
	}
	if u, err := s.ResolveUser(ctx, task.CreatedByID); err == nil {
		task.CreatedBy = u.Ref()
	}
}
