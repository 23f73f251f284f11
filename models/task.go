package models

import (
	"time"

	"gorm.io/gorm"
)

// Task statuses
const (
	TaskStatusTodo       = "todo"
	TaskStatusInProgress = "in_progress"
	TaskStatusComplete   = "complete"
)

// Task is an action item under an objective.
type Task struct {
	gorm.Model
	ObjectiveID uint       `gorm:"not null;index" json:"objective_id"`
	Title       string     `gorm:"not null" json:"title"`
	Description string     `json:"description"`
	Status      string     `gorm:"default:'todo'" json:"status"` // todo, in_progress, complete
	DueDate     *time.Time `json:"due_date,omitempty"`

	// Relations
	Objective   Objective        `json:"-"`
	Assignments []TaskAssignment `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE" json:"assignments,omitempty"`
}

// TaskAssignment links a task to a team member. One row per (task, member).
type TaskAssignment struct {
	gorm.Model
	TaskID       uint `gorm:"not null;index:idx_task_member,unique" json:"task_id"`
	TeamMemberID uint `gorm:"not null;index;index:idx_task_member,unique" json:"team_member_id"`

	// Relations
	Task       Task       `json:"-"`
	TeamMember TeamMember `json:"-"`
}
