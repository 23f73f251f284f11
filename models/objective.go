package models

import "gorm.io/gorm"

// Journey statuses
const (
	JourneyStatusDraft    = "draft"
	JourneyStatusComplete = "complete"
)

// Journey module boundaries. A journey walks 17 fixed steps split across
// three modules: Brainstorm (1-5), Choose (6-10), Objectives (11-17).
const (
	StepBrainstormStart = 1
	StepChooseStart     = 6
	StepObjectivesStart = 11
	StepFinal           = 17
)

// StepData holds the free-form answers captured for one journey module.
type StepData map[string]interface{}

// Objective is one guided planning journey inside a project.
type Objective struct {
	gorm.Model
	ProjectID uint   `gorm:"not null;index" json:"project_id"`
	Title     string `gorm:"not null" json:"title"`

	CurrentStep   int    `gorm:"default:1" json:"current_step"`
	JourneyStatus string `gorm:"default:'draft'" json:"journey_status"` // draft, complete

	// Module payloads stay empty until their module is reached
	BrainstormData StepData `gorm:"type:jsonb;serializer:json" json:"brainstorm_data,omitempty"`
	ChooseData     StepData `gorm:"type:jsonb;serializer:json" json:"choose_data,omitempty"`
	ObjectivesData StepData `gorm:"type:jsonb;serializer:json" json:"objectives_data,omitempty"`

	// Incremented on every update; clients may send it back for
	// conflict detection
	Version int `gorm:"default:1" json:"version"`

	// Relations
	Project    Project     `json:"-"`
	Tasks      []Task      `gorm:"foreignKey:ObjectiveID;constraint:OnDelete:CASCADE" json:"tasks,omitempty"`
	Touchbases []Touchbase `gorm:"foreignKey:ObjectiveID;constraint:OnDelete:CASCADE" json:"touchbases,omitempty"`
}

// InitialStep returns the journey entry point: step 1 when the journey
// starts with the Brainstorm module, otherwise straight to Objectives.
func InitialStep(startWithBrainstorm bool) int {
	if startWithBrainstorm {
		return StepBrainstormStart
	}
	return StepObjectivesStart
}

// ModuleForStep names the module a step belongs to.
func ModuleForStep(step int) string {
	switch {
	case step >= StepObjectivesStart:
		return "objectives"
	case step >= StepChooseStart:
		return "choose"
	default:
		return "brainstorm"
	}
}
