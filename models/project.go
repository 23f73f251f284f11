package models

import "gorm.io/gorm"

// ProjectVision is the structured vision payload captured during planning.
type ProjectVision struct {
	Purpose string   `json:"purpose,omitempty"`
	Mission string   `json:"mission,omitempty"`
	Values  []string `json:"values,omitempty"`
}

// Project groups objectives inside a team. Names are unique per team.
type Project struct {
	gorm.Model
	TeamID uint   `gorm:"not null;index;index:idx_team_project_name,unique" json:"team_id"`
	Name   string `gorm:"not null;index:idx_team_project_name,unique" json:"name"`

	Description      string        `json:"description"`
	VisionData       ProjectVision `gorm:"type:jsonb;serializer:json" json:"vision_data"`
	CompletionStatus string        `gorm:"default:'active'" json:"completion_status"` // active, completed, archived

	// Relations
	Team       Team        `json:"-"`
	Objectives []Objective `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"objectives,omitempty"`
}
