package models

import "gorm.io/gorm"

// RRGT item kinds and column layout. Column 0 holds the "rabbit" (the one
// thing being chased right now); columns 1-5 hold the subtask slots across
// the priority bands.
const (
	ItemKindRabbit  = "rabbit"
	ItemKindSubtask = "subtask"

	RabbitColumn   = 0
	SubtaskColumns = 5
)

// RrgtPlan is the per-(task, member) prioritization sheet, provisioned
// lazily the first time the member's dashboard touches the task.
type RrgtPlan struct {
	gorm.Model
	TaskID       uint `gorm:"not null;index:idx_plan_task_member,unique" json:"task_id"`
	TeamMemberID uint `gorm:"not null;index;index:idx_plan_task_member,unique" json:"team_member_id"`

	// Relations
	Task  Task       `json:"-"`
	Items []RrgtItem `gorm:"foreignKey:PlanID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

// RrgtItem is a single cell on a plan, owned by exactly one member.
type RrgtItem struct {
	gorm.Model
	PlanID       uint   `gorm:"not null;index" json:"plan_id"`
	TeamMemberID uint   `gorm:"not null;index" json:"team_member_id"`
	Kind         string `gorm:"not null" json:"kind"` // rabbit, subtask
	ColumnIndex  int    `gorm:"not null" json:"column_index"`
	Content      string `json:"content"`

	// Relations
	Plan RrgtPlan `json:"-"`
}

// DialState is the single pairwise-comparison row per member. Both item
// references must belong to the same member as the dial.
type DialState struct {
	gorm.Model
	TeamMemberID uint  `gorm:"not null;uniqueIndex" json:"team_member_id"`
	LeftItemID   *uint `json:"left_item_id,omitempty"`
	RightItemID  *uint `json:"right_item_id,omitempty"`

	HideFromDashboard bool `gorm:"default:false" json:"hide_from_dashboard"`
	HideFromManager   bool `gorm:"default:false" json:"hide_from_manager"`

	// Relations
	TeamMember TeamMember `json:"-"`
}

// DefaultPlanItems builds the initial cell set for a fresh plan: a rabbit
// at column 0 plus one blank subtask per band column.
func DefaultPlanItems(planID, memberID uint) []RrgtItem {
	items := []RrgtItem{
		{PlanID: planID, TeamMemberID: memberID, Kind: ItemKindRabbit, ColumnIndex: RabbitColumn},
	}
	for col := 1; col <= SubtaskColumns; col++ {
		items = append(items, RrgtItem{
			PlanID:       planID,
			TeamMemberID: memberID,
			Kind:         ItemKindSubtask,
			ColumnIndex:  col,
		})
	}
	return items
}
