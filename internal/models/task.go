package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// TaskStatus represents the board column a task sits in
type TaskStatus string

const (
	StatusToDo       TaskStatus = "To Do"
	StatusInProgress TaskStatus = "In Progress"
	StatusReview     TaskStatus = "Review"
	StatusDone       TaskStatus = "Done"
)

// Statuses lists the four board columns in display order.
var Statuses = []TaskStatus{StatusToDo, StatusInProgress, StatusReview, StatusDone}

// Valid reports whether s is one of the four column values.
func (s TaskStatus) Valid() bool {
	switch s {
	case StatusToDo, StatusInProgress, StatusReview, StatusDone:
		return true
	}
	return false
}

// TaskPriority represents the priority of a task
type TaskPriority string

const (
	PriorityLow      TaskPriority = "Low"
	PriorityMedium   TaskPriority = "Medium"
	PriorityHigh     TaskPriority = "High"
	PriorityCritical TaskPriority = "Critical"
)

// Valid reports whether p is one of the four priority values.
func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

// Attachment is metadata for a file attached to a task. The bytes live in
// external blob storage; only the reference is persisted here.
type Attachment struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	URL         string    `json:"url"`
	ContentType string    `json:"contentType"`
	Size        int64     `json:"size"`
	UploadedAt  time.Time `json:"uploadedAt"`
}

// VoiceNote is metadata for a recorded voice note on a task.
type VoiceNote struct {
	URL        string    `json:"url"`
	Duration   int       `json:"duration"`
	UploadedBy string    `json:"uploadedBy"`
	UploadedAt time.Time `json:"uploadedAt"`
	Transcript string    `json:"transcript"`
}

// Attachments is stored as a JSON text column.
type Attachments []Attachment

func (a Attachments) Value() (driver.Value, error) {
	if len(a) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(a)
	return string(b), err
}

func (a *Attachments) Scan(value any) error {
	return scanJSON(value, a)
}

// VoiceNotes is stored as a JSON text column.
type VoiceNotes []VoiceNote

func (v VoiceNotes) Value() (driver.Value, error) {
	if len(v) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(v)
	return string(b), err
}

func (v *VoiceNotes) Scan(value any) error {
	return scanJSON(value, v)
}

func scanJSON(value, dest any) error {
	switch src := value.(type) {
	case nil:
		return nil
	case []byte:
		if len(src) == 0 {
			return nil
		}
		return json.Unmarshal(src, dest)
	case string:
		if src == "" {
			return nil
		}
		return json.Unmarshal([]byte(src), dest)
	default:
		return fmt.Errorf("unsupported column type %T", value)
	}
}

// Task represents a unit of assigned work on the board
type Task struct {
	ID          string       `json:"id" gorm:"primaryKey"`
	Title       string       `json:"title" gorm:"not null"`
	Description string       `json:"description"`
	AssigneeID  string       `json:"-" gorm:"column:assignee_id;index"`
	Assignee    UserRef      `json:"assignee" gorm:"-"`
	Status      TaskStatus   `json:"status" gorm:"not null;default:'To Do';index"`
	Priority    TaskPriority `json:"priority" gorm:"default:'Medium';index"`
	Deadline    *time.Time   `json:"deadline,omitempty"`
	ProjectID   string       `json:"project,omitempty" gorm:"column:project_id"`
	Attachments Attachments  `json:"attachments" gorm:"type:text"`
	VoiceNotes  VoiceNotes   `json:"voiceNotes" gorm:"type:text"`
	CreatedByID string       `json:"-" gorm:"column:created_by_id;index"`
	CreatedBy   UserRef      `json:"createdBy" gorm:"-"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// TableName specifies the table name for the Task model
func (Task) TableName() string {
	return "tasks"
}
