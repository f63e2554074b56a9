package models

import "time"

type TaskStatus string

const (
	TaskStatusBacklog    TaskStatus = "backlog"
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in-progress"
	TaskStatusDone       TaskStatus = "done"
	TaskStatusCanceled   TaskStatus = "canceled"
)

// TaskStatuses lists every status in board order.
var TaskStatuses = []TaskStatus{
	TaskStatusBacklog,
	TaskStatusTodo,
	TaskStatusInProgress,
	TaskStatusDone,
	TaskStatusCanceled,
}

// Valid reports whether s is one of the known statuses.
func (s TaskStatus) Valid() bool {
	return s.Rank() >= 0
}

// Rank is the position of s in board order, or -1 for unknown values.
func (s TaskStatus) Rank() int {
	for i, status := range TaskStatuses {
		if status == s {
			return i
		}
	}
	return -1
}

type Task struct {
	ID          uint64     `gorm:"primarykey" json:"id"`
	ProjectID   uint64     `gorm:"not null;index:idx_tasks_project_status,priority:1;index:idx_tasks_project_assignee,priority:1" json:"project_id"`
	Title       string     `gorm:"type:varchar(255);not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	AssigneeID  uint64     `gorm:"not null;index:idx_tasks_project_assignee,priority:2" json:"assignee_id"`
	ReporterID  uint64     `gorm:"not null" json:"reporter_id"`
	Status      TaskStatus `gorm:"type:varchar(20);not null;default:'todo';index:idx_tasks_project_status,priority:2;index:idx_tasks_status_due,priority:1" json:"status"`
	IsImportant bool       `gorm:"not null;default:false" json:"is_important"`
	IsUrgent    bool       `gorm:"not null;default:false" json:"is_urgent"`
	DueAt       *time.Time `gorm:"index:idx_tasks_status_due,priority:2" json:"due_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	// Relations
	Assignee *User `gorm:"foreignKey:AssigneeID" json:"assignee,omitempty"`
	Reporter *User `gorm:"foreignKey:ReporterID" json:"reporter,omitempty"`
}

// Quadrant returns the Eisenhower bucket the task falls into.
func (t Task) Quadrant() Quadrant {
	return QuadrantOf(t.IsImportant, t.IsUrgent)
}
