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

type TaskController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewTaskController(db *gorm.DB, logger *log.Logger) *TaskController {
	return &TaskController{DB: db, Logger: logger}
}

// CreateTask creates the task and its assignments in one transaction so a
// failed assignment rolls the task back too.
func (tc *TaskController) CreateTask(c *fiber.Ctx) error {
	rc := middleware.Context(c)
	if !permissions.HasPermission(rc.Role(), permissions.ActionManageTasks) {
		return utils.ForbiddenResponse(c, "You cannot manage tasks", rc.Role())
	}

	objective, err := findObjectiveInTeam(tc.DB, rc.TeamID(), utils.ParseUint(c.Params("objectiveID")))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Objective not found", nil)
	}

	var input struct {
		Title       string     `json:"title" validate:"required,max=300"`
		Description string     `json:"description" validate:"omitempty,max=2000"`
		DueDate     *time.Time `json:"due_date"`
		AssigneeIDs []uint     `json:"assignee_ids"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	// Every assignee must exist in the caller's team
	for _, memberID := range input.AssigneeIDs {
		if _, err := findMemberInTeam(tc.DB, rc.TeamID(), memberID); err != nil {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Assignee not found", nil)
		}
	}

	var task models.Task
	err = tc.DB.Transaction(func(tx *gorm.DB) error {
		task = models.Task{
			ObjectiveID: objective.ID,
			Title:       input.Title,
			Description: input.Description,
			Status:      models.TaskStatusTodo,
			DueDate:     input.DueDate,
		}
		if err := tx.Create(&task).Error; err != nil {
			return err
		}
		for _, memberID := range input.AssigneeIDs {
			assignment := models.TaskAssignment{TaskID: task.ID, TeamMemberID: memberID}
			if err := tx.Create(&assignment).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return utils.InternalError(c, "Failed to create task", err)
	}

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(task))
}

func (tc *TaskController) GetTasks(c *fiber.Ctx) error {
	rc := middleware.Context(c)

	objective, err := findObjectiveInTeam(tc.DB, rc.TeamID(), utils.ParseUint(c.Params("objectiveID")))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Objective not found", nil)
	}

	query := tc.DB.Preload("Assignments").Where("objective_id = ?", objective.ID)
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var tasks []models.Task
	if err := query.Order("created_at").Find(&tasks).Error; err != nil {
		return utils.InternalError(c, "Failed to list tasks", err)
	}

	return c.JSON(utils.SuccessResponse(tasks))
}

func (tc *TaskController) GetTask(c *fiber.Ctx) error {
	rc := middleware.Context(c)

	task, err := findTaskInTeam(tc.DB, rc.TeamID(), utils.ParseUint(c.Params("id")))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Task not found", nil)
	}

	if err := tc.DB.Preload("Assignments").First(task, task.ID).Error; err != nil {
		return utils.InternalError(c, "Failed to load task", err)
	}

	return c.JSON(utils.SuccessResponse(task))
}

// UpdateTask authorizes by a three-way branch: managers and objective owners
// update any field; an assigned team_member may change only the status, and
// a body carrying anything else is rejected wholesale; everyone else is
// forbidden outright.
func (tc *TaskController) UpdateTask(c *fiber.Ctx) error {
	rc := middleware.Context(c)

	task, err := findTaskInTeam(tc.DB, rc.TeamID(), utils.ParseUint(c.Params("id")))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Task not found", nil)
	}

	var input struct {
		Title       *string    `json:"title" validate:"omitempty,max=300"`
		Description *string    `json:"description" validate:"omitempty,max=2000"`
		Status      *string    `json:"status" validate:"omitempty,oneof=todo in_progress complete"`
		DueDate     *time.Time `json:"due_date"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	fullAccess := permissions.HasPermission(rc.Role(), permissions.ActionManageTasks)
	if !fullAccess {
		member := rc.EffectiveMember()
		assigned, err := isAssignedToTask(tc.DB, task.ID, member.ID)
		if err != nil {
			return utils.InternalError(c, "Failed to check assignment", err)
		}
		if !assigned {
			return utils.ForbiddenResponse(c, "You are not assigned to this task", rc.Role())
		}

		fields, err := bodyFieldSet(c.Body())
		if err != nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
		}
		if !onlyStatusField(fields) {
			return utils.ForbiddenResponse(c, "Assigned members may only update the task status", rc.Role())
		}
	}

	updates := map[string]interface{}{}
	if input.Title != nil {
		updates["title"] = *input.Title
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.Status != nil {
		updates["status"] = *input.Status
	}
	if input.DueDate != nil {
		updates["due_date"] = *input.DueDate
	}

	if len(updates) > 0 {
		if err := tc.DB.Model(task).Updates(updates).Error; err != nil {
			return utils.InternalError(c, "Failed to update task", err)
		}
	}

	return c.JSON(utils.SuccessResponse(task))
}

func (tc *TaskController) DeleteTask(c *fiber.Ctx) error {
	rc := middleware.Context(c)
	if !permissions.HasPermission(rc.Role(), permissions.ActionManageTasks) {
		return utils.ForbiddenResponse(c, "You cannot manage tasks", rc.Role())
	}

	task, err := findTaskInTeam(tc.DB, rc.TeamID(), utils.ParseUint(c.Params("id")))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Task not found", nil)
	}

	err = tc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("task_id = ?", task.ID).Delete(&models.TaskAssignment{}).Error; err != nil {
			return err
		}
		return tx.Delete(task).Error
	})
	if err != nil {
		return utils.InternalError(c, "Failed to delete task", err)
	}

	return c.JSON(utils.SuccessResponse(fiber.Map{"message": "Task deleted"}))
}

func (tc *TaskController) AssignMember(c *fiber.Ctx) error {
	rc := middleware.Context(c)
	if !permissions.HasPermission(rc.Role(), permissions.ActionManageTasks) {
		return utils.ForbiddenResponse(c, "You cannot manage tasks", rc.Role())
	}

	task, err := findTaskInTeam(tc.DB, rc.TeamID(), utils.ParseUint(c.Params("id")))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Task not found", nil)
	}

	var input struct {
		TeamMemberID uint `json:"team_member_id" validate:"required"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	if _, err := findMemberInTeam(tc.DB, rc.TeamID(), input.TeamMemberID); err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Team member not found", nil)
	}

	assigned, err := isAssignedToTask(tc.DB, task.ID, input.TeamMemberID)
	if err != nil {
		return utils.InternalError(c, "Failed to check assignment", err)
	}
	if assigned {
		return utils.ErrorResponse(c, fiber.StatusConflict, "Member is already assigned", nil)
	}

	assignment := models.TaskAssignment{TaskID: task.ID, TeamMemberID: input.TeamMemberID}
	if err := tc.DB.Create(&assignment).Error; err != nil {
		return utils.InternalError(c, "Failed to assign member", err)
	}

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(assignment))
}

func (tc *TaskController) UnassignMember(c *fiber.Ctx) error {
	rc := middleware.Context(c)
	if !permissions.HasPermission(rc.Role(), permissions.ActionManageTasks) {
		return utils.ForbiddenResponse(c, "You cannot manage tasks", rc.Role())
	}

	task, err := findTaskInTeam(tc.DB, rc.TeamID(), utils.ParseUint(c.Params("id")))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Task not found", nil)
	}

	memberID := utils.ParseUint(c.Params("memberID"))
	result := tc.DB.Unscoped().Where("task_id = ? AND team_member_id = ?", task.ID, memberID).
		Delete(&models.TaskAssignment{})
	if result.Error != nil {
		return utils.InternalError(c, "Failed to unassign member", result.Error)
	}
	if result.RowsAffected == 0 {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Assignment not found", nil)
	}

	return c.JSON(utils.SuccessResponse(fiber.Map{"message": "Member unassigned"}))
}
