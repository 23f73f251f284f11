package controller

import (
	"fmt"
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"arrowhead/middleware"
	"arrowhead/models"
	"arrowhead/permissions"
	"arrowhead/utils"
)

type ProjectController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewProjectController(db *gorm.DB, logger *log.Logger) *ProjectController {
	return &ProjectController{DB: db, Logger: logger}
}

func (pc *ProjectController) CreateProject(c *fiber.Ctx) error {
	rc := middleware.Context(c)
	if !permissions.HasPermission(rc.Role(), permissions.ActionCreateProject) {
		return utils.ForbiddenResponse(c, "You cannot create projects", rc.Role())
	}

	var input struct {
		Name        string                `json:"name" validate:"required,max=200"`
		Description string                `json:"description" validate:"omitempty,max=2000"`
		VisionData  *models.ProjectVision `json:"vision_data"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	// Project names are unique per team
	var existing models.Project
	if err := pc.DB.Where("team_id = ? AND name = ?", rc.TeamID(), input.Name).First(&existing).Error; err == nil {
		return utils.ErrorResponse(c, fiber.StatusConflict, "A project with this name already exists", nil)
	}

	project := models.Project{
		TeamID:      rc.TeamID(),
		Name:        input.Name,
		Description: input.Description,
	}
	if input.VisionData != nil {
		project.VisionData = *input.VisionData
	}

	if err := pc.DB.Create(&project).Error; err != nil {
		return utils.InternalError(c, "Failed to create project", err)
	}

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(project))
}

func (pc *ProjectController) GetProjects(c *fiber.Ctx) error {
	rc := middleware.Context(c)

	// Pagination
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	if limit > 100 {
		limit = 100
	}
	offset := (page - 1) * limit

	query := pc.DB.Model(&models.Project{}).Where("team_id = ?", rc.TeamID())

	if status := c.Query("status"); status != "" {
		query = query.Where("completion_status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return utils.InternalError(c, "Failed to count projects", err)
	}

	var projects []models.Project
	if err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&projects).Error; err != nil {
		return utils.InternalError(c, "Failed to list projects", err)
	}

	return c.JSON(utils.PaginatedResponse{
		Data:  projects,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}

func (pc *ProjectController) GetProject(c *fiber.Ctx) error {
	rc := middleware.Context(c)

	project, err := findProjectInTeam(pc.DB, rc.TeamID(), utils.ParseUint(c.Params("id")))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Project not found", nil)
	}

	if err := pc.DB.Preload("Objectives").First(project, project.ID).Error; err != nil {
		return utils.InternalError(c, "Failed to load project", err)
	}

	return c.JSON(utils.SuccessResponse(project))
}

func (pc *ProjectController) UpdateProject(c *fiber.Ctx) error {
	rc := middleware.Context(c)
	if !permissions.HasPermission(rc.Role(), permissions.ActionEditProject) {
		return utils.ForbiddenResponse(c, "You cannot edit projects", rc.Role())
	}

	project, err := findProjectInTeam(pc.DB, rc.TeamID(), utils.ParseUint(c.Params("id")))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Project not found", nil)
	}

	var input struct {
		Name             *string               `json:"name" validate:"omitempty,max=200"`
		Description      *string               `json:"description" validate:"omitempty,max=2000"`
		VisionData       *models.ProjectVision `json:"vision_data"`
		CompletionStatus *string               `json:"completion_status" validate:"omitempty,oneof=active completed archived"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	updates := map[string]interface{}{}
	if input.Name != nil && *input.Name != project.Name {
		var existing models.Project
		if err := pc.DB.Where("team_id = ? AND name = ? AND id <> ?", rc.TeamID(), *input.Name, project.ID).
			First(&existing).Error; err == nil {
			return utils.ErrorResponse(c, fiber.StatusConflict, "A project with this name already exists", nil)
		}
		updates["name"] = *input.Name
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.VisionData != nil {
		updates["vision_data"] = *input.VisionData
	}
	if input.CompletionStatus != nil {
		updates["completion_status"] = *input.CompletionStatus
	}

	if len(updates) > 0 {
		if err := pc.DB.Model(project).Updates(updates).Error; err != nil {
			return utils.InternalError(c, "Failed to update project", err)
		}
	}

	return c.JSON(utils.SuccessResponse(project))
}

// DeleteProject refuses to delete a project that still has objectives or
// tasks; the error message cites both counts so the client can show them.
func (pc *ProjectController) DeleteProject(c *fiber.Ctx) error {
	rc := middleware.Context(c)
	if !permissions.HasPermission(rc.Role(), permissions.ActionDeleteProject) {
		return utils.ForbiddenResponse(c, "You cannot delete projects", rc.Role())
	}

	project, err := findProjectInTeam(pc.DB, rc.TeamID(), utils.ParseUint(c.Params("id")))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Project not found", nil)
	}

	var objectiveCount int64
	if err := pc.DB.Model(&models.Objective{}).Where("project_id = ?", project.ID).Count(&objectiveCount).Error; err != nil {
		return utils.InternalError(c, "Failed to count objectives", err)
	}

	var taskCount int64
	err = pc.DB.Model(&models.Task{}).
		Joins("JOIN objectives ON objectives.id = tasks.objective_id").
		Where("objectives.project_id = ?", project.ID).
		Count(&taskCount).Error
	if err != nil {
		return utils.InternalError(c, "Failed to count tasks", err)
	}

	if objectiveCount > 0 || taskCount > 0 {
		msg := fmt.Sprintf("Project still contains %d objectives and %d tasks; delete or move them first",
			objectiveCount, taskCount)
		return utils.ErrorResponse(c, fiber.StatusBadRequest, msg, nil)
	}

	if err := pc.DB.Delete(project).Error; err != nil {
		return utils.InternalError(c, "Failed to delete project", err)
	}

	pc.Logger.Printf("project %d deleted by user %d", project.ID, rc.User.ID)
	return c.JSON(utils.SuccessResponse(fiber.Map{"message": "Project deleted"}))
}
