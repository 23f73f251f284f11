package models

import "gorm.io/gorm"

// Team is the tenant boundary: it owns members, projects and billing state.
type Team struct {
	gorm.Model
	Name string `gorm:"not null" json:"name"`

	BillingStatus    string  `gorm:"default:'trial'" json:"billing_status"` // trial, active, past_due, canceled
	SeatPlan         string  `gorm:"default:'starter'" json:"seat_plan"`    // starter, growth, enterprise
	StripeCustomerID *string `json:"-"`

	// Relations
	Members  []TeamMember `gorm:"foreignKey:TeamID;constraint:OnDelete:CASCADE" json:"members,omitempty"`
	Projects []Project    `gorm:"foreignKey:TeamID;constraint:OnDelete:CASCADE" json:"projects,omitempty"`
}

// TeamMember is a person inside a team: either a real user or a virtual
// persona managed on someone's behalf. IsVirtual implies UserID == nil.
type TeamMember struct {
	gorm.Model
	TeamID uint  `gorm:"not null;index;index:idx_team_user,unique" json:"team_id"`
	UserID *uint `gorm:"index:idx_team_user,unique" json:"user_id,omitempty"`

	DisplayName string `gorm:"not null" json:"display_name"`
	Role        string `gorm:"default:'team_member'" json:"role"` // account_owner, account_manager, project_owner, objective_owner, team_member
	IsVirtual   bool   `gorm:"default:false" json:"is_virtual"`

	// Relations
	Team Team  `json:"-"`
	User *User `json:"-"`
}
