package controller

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"arrowhead/middleware"
	"arrowhead/models"
	"arrowhead/permissions"
	"arrowhead/utils"
)

type DashboardController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewDashboardController(db *gorm.DB, logger *log.Logger) *DashboardController {
	return &DashboardController{
		DB:     db,
		Logger: logger,
	}
}

type MemberSummary struct {
	Member           models.TeamMember `json:"member"`
	TasksTodo        int64             `json:"tasks_todo"`
	TasksInProgress  int64             `json:"tasks_in_progress"`
	TasksComplete    int64             `json:"tasks_complete"`
	RecentTouchbases []touchbaseView   `json:"recent_touchbases"`
	OpenJourneys     int64             `json:"open_journeys"`
}

// GetSummary returns the caller's own dashboard cards, or another member's
// when member_id is supplied by a caller allowed to view it.
func (dc *DashboardController) GetSummary(c *fiber.Ctx) error {
	rc := middleware.Context(c)
	member := rc.EffectiveMember()

	if raw := c.Query("member_id"); raw != "" {
		targetID := utils.ParseUint(raw)
		if targetID != member.ID {
			if !permissions.HasPermission(rc.Role(), permissions.ActionViewOtherDashboard) {
				return utils.ForbiddenResponse(c, "You cannot view another member's dashboard", rc.Role())
			}
			target, err := findMemberInTeam(dc.DB, rc.TeamID(), targetID)
			if err != nil {
				return utils.ErrorResponse(c, fiber.StatusNotFound, "Team member not found", nil)
			}
			member = target
		}
	}

	summary := MemberSummary{Member: *member}

	statusCounts := []struct {
		status string
		dest   *int64
	}{
		{models.TaskStatusTodo, &summary.TasksTodo},
		{models.TaskStatusInProgress, &summary.TasksInProgress},
		{models.TaskStatusComplete, &summary.TasksComplete},
	}
	for _, sc := range statusCounts {
		err := dc.DB.Model(&models.Task{}).
			Joins("JOIN task_assignments ON task_assignments.task_id = tasks.id AND task_assignments.deleted_at IS NULL").
			Where("task_assignments.team_member_id = ? AND tasks.status = ?", member.ID, sc.status).
			Count(sc.dest).Error
		if err != nil {
			return utils.InternalError(c, "Failed to count tasks", err)
		}
	}

	var touchbases []models.Touchbase
	err := dc.DB.Where("subject_id = ?", member.ID).
		Order("created_at DESC").Limit(5).Find(&touchbases).Error
	if err != nil {
		return utils.InternalError(c, "Failed to load touchbases", err)
	}
	now := time.Now()
	for _, tb := range touchbases {
		summary.RecentTouchbases = append(summary.RecentTouchbases, touchbaseView{
			Touchbase: tb,
			Editable:  tb.EditableAt(now),
		})
	}

	err = dc.DB.Model(&models.Objective{}).
		Joins("JOIN projects ON projects.id = objectives.project_id").
		Where("projects.team_id = ? AND objectives.journey_status = ?", rc.TeamID(), models.JourneyStatusDraft).
		Count(&summary.OpenJourneys).Error
	if err != nil {
		return utils.InternalError(c, "Failed to count journeys", err)
	}

	return c.JSON(utils.SuccessResponse(summary))
}
