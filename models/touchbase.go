package models

import (
	"time"

	"gorm.io/gorm"
)

// TouchbaseEditWindow bounds creator edits: a touchbase freezes 24 hours
// after creation. Deletion by objective_owner-or-above is not time-boxed.
const TouchbaseEditWindow = 24 * time.Hour

// Touchbase is a point-in-time status report about one member, authored by
// the member or by a manager on their behalf.
type Touchbase struct {
	gorm.Model
	ObjectiveID uint `gorm:"not null;index" json:"objective_id"`
	SubjectID   uint `gorm:"not null;index" json:"subject_id"` // the member the report is about
	CreatorID   uint `gorm:"not null;index" json:"creator_id"` // the member who wrote it

	Status    string `json:"status"`
	Progress  string `json:"progress"`
	Blockers  string `json:"blockers"`
	NextSteps string `json:"next_steps"`

	// Relations
	Objective Objective  `json:"-"`
	Subject   TeamMember `gorm:"foreignKey:SubjectID" json:"-"`
	Creator   TeamMember `gorm:"foreignKey:CreatorID" json:"-"`
}

// EditableAt reports whether the touchbase is still inside its edit window.
// Editability is derived from age, never stored.
func (t *Touchbase) EditableAt(now time.Time) bool {
	return now.Sub(t.CreatedAt) < TouchbaseEditWindow
}
