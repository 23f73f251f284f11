package controller

import (
	"log"
	"sort"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"arrowhead/middleware"
	"arrowhead/models"
	"arrowhead/permissions"
	"arrowhead/utils"
)

type RrgtController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewRrgtController(db *gorm.DB, logger *log.Logger) *RrgtController {
	return &RrgtController{DB: db, Logger: logger}
}

// planEntry is one row of the "my work" view: the plan joined with its task,
// parent objective and cells sorted by column.
type planEntry struct {
	Plan      models.RrgtPlan   `json:"plan"`
	Task      models.Task       `json:"task"`
	Objective models.Objective  `json:"objective"`
	Rabbit    *models.RrgtItem  `json:"rabbit"`
	Subtasks  []models.RrgtItem `json:"subtasks"`
}

// targetMember resolves whose dashboard is being read. A member_id query
// param targets someone else and is restricted to managers.
func (rg *RrgtController) targetMember(c *fiber.Ctx) (*models.TeamMember, error) {
	rc := middleware.Context(c)
	member := rc.EffectiveMember()

	if raw := c.Query("member_id"); raw != "" {
		targetID := utils.ParseUint(raw)
		if targetID != member.ID {
			if !permissions.HasPermission(rc.Role(), permissions.ActionViewOtherDashboard) {
				return nil, utils.ForbiddenResponse(c, "You cannot view another member's dashboard", rc.Role())
			}
			target, err := findMemberInTeam(rg.DB, rc.TeamID(), targetID)
			if err != nil {
				return nil, utils.ErrorResponse(c, fiber.StatusNotFound, "Team member not found", nil)
			}
			return target, nil
		}
	}
	return member, nil
}

// ensurePlan provisions the (task, member) plan with its default cells on
// first use. Idempotent: re-reads never create a second plan for the pair.
func (rg *RrgtController) ensurePlan(taskID, memberID uint) (*models.RrgtPlan, error) {
	var plan models.RrgtPlan
	err := rg.DB.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("task_id = ? AND team_member_id = ?", taskID, memberID).First(&plan).Error
		if err == nil {
			return nil
		}
		if err != gorm.ErrRecordNotFound {
			return err
		}

		plan = models.RrgtPlan{TaskID: taskID, TeamMemberID: memberID}
		if err := tx.Create(&plan).Error; err != nil {
			return err
		}
		items := models.DefaultPlanItems(plan.ID, memberID)
		return tx.Create(&items).Error
	})
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

// GetDashboard assembles the member's prioritization view across all tasks
// they are assigned to, provisioning missing plans as it goes.
func (rg *RrgtController) GetDashboard(c *fiber.Ctx) error {
	rc := middleware.Context(c)

	member, respErr := rg.targetMember(c)
	if member == nil {
		return respErr
	}

	taskQuery := rg.DB.Model(&models.Task{}).
		Joins("JOIN task_assignments ON task_assignments.task_id = tasks.id AND task_assignments.deleted_at IS NULL").
		Joins("JOIN objectives ON objectives.id = tasks.objective_id").
		Joins("JOIN projects ON projects.id = objectives.project_id").
		Where("task_assignments.team_member_id = ? AND projects.team_id = ?", member.ID, rc.TeamID())

	if projectID := c.Query("project_id"); projectID != "" {
		taskQuery = taskQuery.Where("projects.id = ?", utils.ParseUint(projectID))
	}
	if objectiveID := c.Query("objective_id"); objectiveID != "" {
		taskQuery = taskQuery.Where("objectives.id = ?", utils.ParseUint(objectiveID))
	}

	var tasks []models.Task
	if err := taskQuery.Find(&tasks).Error; err != nil {
		return utils.InternalError(c, "Failed to load assigned tasks", err)
	}

	entries := make([]planEntry, 0, len(tasks))
	for _, task := range tasks {
		plan, err := rg.ensurePlan(task.ID, member.ID)
		if err != nil {
			return utils.InternalError(c, "Failed to provision plan", err)
		}

		var objective models.Objective
		if err := rg.DB.First(&objective, task.ObjectiveID).Error; err != nil {
			return utils.InternalError(c, "Failed to load objective", err)
		}

		var items []models.RrgtItem
		if err := rg.DB.Where("plan_id = ?", plan.ID).Find(&items).Error; err != nil {
			return utils.InternalError(c, "Failed to load plan items", err)
		}
		sort.Slice(items, func(i, j int) bool {
			return items[i].ColumnIndex < items[j].ColumnIndex
		})

		entry := planEntry{Plan: *plan, Task: task, Objective: objective}
		for i := range items {
			if items[i].Kind == models.ItemKindRabbit {
				entry.Rabbit = &items[i]
			} else {
				entry.Subtasks = append(entry.Subtasks, items[i])
			}
		}
		entries = append(entries, entry)
	}

	return c.JSON(utils.SuccessResponse(entries))
}

// UpdateItem edits one owned cell (content or column placement).
func (rg *RrgtController) UpdateItem(c *fiber.Ctx) error {
	rc := middleware.Context(c)
	member := rc.EffectiveMember()

	var item models.RrgtItem
	if err := rg.DB.First(&item, utils.ParseUint(c.Params("id"))).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Item not found", nil)
	}
	if item.TeamMemberID != member.ID {
		// Same response as missing so foreign items never leak
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Item not found", nil)
	}

	var input struct {
		Content     *string `json:"content" validate:"omitempty,max=1000"`
		ColumnIndex *int    `json:"column_index" validate:"omitempty,gte=0,lte=5"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	updates := map[string]interface{}{}
	if input.Content != nil {
		updates["content"] = *input.Content
	}
	if input.ColumnIndex != nil {
		if item.Kind == models.ItemKindRabbit && *input.ColumnIndex != models.RabbitColumn {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "The rabbit stays in column 0", nil)
		}
		updates["column_index"] = *input.ColumnIndex
	}

	if len(updates) > 0 {
		if err := rg.DB.Model(&item).Updates(updates).Error; err != nil {
			return utils.InternalError(c, "Failed to update item", err)
		}
	}

	return c.JSON(utils.SuccessResponse(item))
}

// UpdateDial upserts the member's single dial row. Referenced items must
// belong to the member or the request fails with 400.
func (rg *RrgtController) UpdateDial(c *fiber.Ctx) error {
	rc := middleware.Context(c)
	member := rc.EffectiveMember()

	var input struct {
		LeftItemID        *uint `json:"left_item_id"`
		RightItemID       *uint `json:"right_item_id"`
		HideFromDashboard *bool `json:"hide_from_dashboard"`
		HideFromManager   *bool `json:"hide_from_manager"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	for _, itemID := range []*uint{input.LeftItemID, input.RightItemID} {
		if itemID == nil {
			continue
		}
		var item models.RrgtItem
		if err := rg.DB.First(&item, *itemID).Error; err != nil || item.TeamMemberID != member.ID {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "Referenced item does not belong to you", nil)
		}
	}

	var dial models.DialState
	err := rg.DB.Where("team_member_id = ?", member.ID).First(&dial).Error
	if err == gorm.ErrRecordNotFound {
		dial = models.DialState{TeamMemberID: member.ID}
		if err := rg.DB.Create(&dial).Error; err != nil {
			return utils.InternalError(c, "Failed to create dial state", err)
		}
	} else if err != nil {
		return utils.InternalError(c, "Failed to load dial state", err)
	}

	updates := map[string]interface{}{}
	if input.LeftItemID != nil {
		updates["left_item_id"] = *input.LeftItemID
	}
	if input.RightItemID != nil {
		updates["right_item_id"] = *input.RightItemID
	}
	if input.HideFromDashboard != nil {
		updates["hide_from_dashboard"] = *input.HideFromDashboard
	}
	if input.HideFromManager != nil {
		updates["hide_from_manager"] = *input.HideFromManager
	}

	if len(updates) > 0 {
		if err := rg.DB.Model(&dial).Updates(updates).Error; err != nil {
			return utils.InternalError(c, "Failed to update dial state", err)
		}
	}

	return c.JSON(utils.SuccessResponse(dial))
}

// GetDial returns the member's dial, honoring the privacy flags when a
// manager is looking at someone else's dial.
func (rg *RrgtController) GetDial(c *fiber.Ctx) error {
	rc := middleware.Context(c)

	member, respErr := rg.targetMember(c)
	if member == nil {
		return respErr
	}

	var dial models.DialState
	if err := rg.DB.Where("team_member_id = ?", member.ID).First(&dial).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "No dial state yet", nil)
	}

	own := rc.EffectiveMember().ID == member.ID
	if !own && dial.HideFromManager {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "No dial state yet", nil)
	}

	return c.JSON(utils.SuccessResponse(dial))
}
