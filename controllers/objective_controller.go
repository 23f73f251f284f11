package controller

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"arrowhead/locks"
	"arrowhead/middleware"
	"arrowhead/models"
	"arrowhead/permissions"
	"arrowhead/utils"
)

type ObjectiveController struct {
	DB     *gorm.DB
	Locker locks.Locker
	Logger *log.Logger
}

func NewObjectiveController(db *gorm.DB, locker locks.Locker, logger *log.Logger) *ObjectiveController {
	return &ObjectiveController{DB: db, Locker: locker, Logger: logger}
}

func (oc *ObjectiveController) CreateObjective(c *fiber.Ctx) error {
	rc := middleware.Context(c)
	if !permissions.HasPermission(rc.Role(), permissions.ActionCreateObjective) {
		return utils.ForbiddenResponse(c, "You cannot create objectives", rc.Role())
	}

	project, err := findProjectInTeam(oc.DB, rc.TeamID(), utils.ParseUint(c.Params("projectID")))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Project not found", nil)
	}

	var input struct {
		Title               string `json:"title" validate:"required,max=300"`
		StartWithBrainstorm *bool  `json:"start_with_brainstorm"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	startWithBrainstorm := true
	if input.StartWithBrainstorm != nil {
		startWithBrainstorm = *input.StartWithBrainstorm
	}

	objective := models.Objective{
		ProjectID:     project.ID,
		Title:         input.Title,
		CurrentStep:   models.InitialStep(startWithBrainstorm),
		JourneyStatus: models.JourneyStatusDraft,
	}
	if err := oc.DB.Create(&objective).Error; err != nil {
		return utils.InternalError(c, "Failed to create objective", err)
	}

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(objective))
}

func (oc *ObjectiveController) GetObjectives(c *fiber.Ctx) error {
	rc := middleware.Context(c)

	project, err := findProjectInTeam(oc.DB, rc.TeamID(), utils.ParseUint(c.Params("projectID")))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Project not found", nil)
	}

	var objectives []models.Objective
	if err := oc.DB.Where("project_id = ?", project.ID).Order("created_at").Find(&objectives).Error; err != nil {
		return utils.InternalError(c, "Failed to list objectives", err)
	}

	return c.JSON(utils.SuccessResponse(objectives))
}

func (oc *ObjectiveController) GetObjective(c *fiber.Ctx) error {
	rc := middleware.Context(c)

	objective, err := findObjectiveInTeam(oc.DB, rc.TeamID(), utils.ParseUint(c.Params("id")))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Objective not found", nil)
	}

	if err := oc.DB.Preload("Tasks").First(objective, objective.ID).Error; err != nil {
		return utils.InternalError(c, "Failed to load objective", err)
	}

	return c.JSON(utils.SuccessResponse(objective))
}

// requireUnlocked gates a mutating handler on the objective's edit lock.
// When another member holds a live lock it writes the 423 response and
// reports handled; callers must return the accompanying error as-is.
func (oc *ObjectiveController) requireUnlocked(c *fiber.Ctx, objectiveID, memberID uint) (bool, error) {
	if err := oc.Locker.Check(locks.ResourceObjective, objectiveID, memberID); err != nil {
		var locked *locks.ErrLocked
		if errors.As(err, &locked) {
			return true, utils.LockedResponse(c, locked.Lease)
		}
		return true, utils.InternalError(c, "Lock check failed", err)
	}
	return false, nil
}

// UpdateObjective applies journey edits. Two concurrency mechanisms run here
// side by side: the advisory edit lock always gates the write (423 when held
// elsewhere), and when the client echoes a version the row version is
// compared too (409 on mismatch). They are distinct and neither implies the
// other.
func (oc *ObjectiveController) UpdateObjective(c *fiber.Ctx) error {
	rc := middleware.Context(c)
	if !permissions.HasPermission(rc.Role(), permissions.ActionEditObjective) {
		return utils.ForbiddenResponse(c, "You cannot edit objectives", rc.Role())
	}

	objective, err := findObjectiveInTeam(oc.DB, rc.TeamID(), utils.ParseUint(c.Params("id")))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Objective not found", nil)
	}

	member := rc.EffectiveMember()
	if handled, resp := oc.requireUnlocked(c, objective.ID, member.ID); handled {
		return resp
	}

	var input struct {
		Title          *string          `json:"title" validate:"omitempty,max=300"`
		CurrentStep    *int             `json:"current_step" validate:"omitempty,gte=1,lte=17"`
		BrainstormData *models.StepData `json:"brainstorm_data"`
		ChooseData     *models.StepData `json:"choose_data"`
		ObjectivesData *models.StepData `json:"objectives_data"`
		Version        *int             `json:"version"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	if input.Version != nil && *input.Version != objective.Version {
		return utils.ErrorResponse(c, fiber.StatusConflict,
			"Objective was modified by someone else; reload and retry", nil)
	}

	updates := map[string]interface{}{}
	if input.Title != nil {
		updates["title"] = *input.Title
	}
	if input.CurrentStep != nil {
		updates["current_step"] = *input.CurrentStep
	}
	if input.BrainstormData != nil {
		updates["brainstorm_data"] = *input.BrainstormData
	}
	if input.ChooseData != nil {
		updates["choose_data"] = *input.ChooseData
	}
	if input.ObjectivesData != nil {
		updates["objectives_data"] = *input.ObjectivesData
	}

	if len(updates) > 0 {
		updates["version"] = gorm.Expr("version + 1")
		if err := oc.DB.Model(objective).Updates(updates).Error; err != nil {
			return utils.InternalError(c, "Failed to update objective", err)
		}
		if err := oc.DB.First(objective, objective.ID).Error; err != nil {
			return utils.InternalError(c, "Failed to reload objective", err)
		}
	}

	return c.JSON(utils.SuccessResponse(objective))
}

// AdvanceStep moves the journey forward one step; at step 17 the journey
// completes.
func (oc *ObjectiveController) AdvanceStep(c *fiber.Ctx) error {
	rc := middleware.Context(c)
	if !permissions.HasPermission(rc.Role(), permissions.ActionEditObjective) {
		return utils.ForbiddenResponse(c, "You cannot edit objectives", rc.Role())
	}

	objective, err := findObjectiveInTeam(oc.DB, rc.TeamID(), utils.ParseUint(c.Params("id")))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Objective not found", nil)
	}

	member := rc.EffectiveMember()
	if handled, resp := oc.requireUnlocked(c, objective.ID, member.ID); handled {
		return resp
	}

	if objective.JourneyStatus == models.JourneyStatusComplete {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Journey is already complete", nil)
	}

	updates := map[string]interface{}{"version": gorm.Expr("version + 1")}
	if objective.CurrentStep >= models.StepFinal {
		updates["journey_status"] = models.JourneyStatusComplete
	} else {
		updates["current_step"] = objective.CurrentStep + 1
	}

	if err := oc.DB.Model(objective).Updates(updates).Error; err != nil {
		return utils.InternalError(c, "Failed to advance journey", err)
	}
	if err := oc.DB.First(objective, objective.ID).Error; err != nil {
		return utils.InternalError(c, "Failed to reload objective", err)
	}

	return c.JSON(utils.SuccessResponse(objective))
}

func (oc *ObjectiveController) CompleteJourney(c *fiber.Ctx) error {
	rc := middleware.Context(c)
	if !permissions.HasPermission(rc.Role(), permissions.ActionEditObjective) {
		return utils.ForbiddenResponse(c, "You cannot edit objectives", rc.Role())
	}

	objective, err := findObjectiveInTeam(oc.DB, rc.TeamID(), utils.ParseUint(c.Params("id")))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Objective not found", nil)
	}

	member := rc.EffectiveMember()
	if handled, resp := oc.requireUnlocked(c, objective.ID, member.ID); handled {
		return resp
	}

	err = oc.DB.Model(objective).Updates(map[string]interface{}{
		"journey_status": models.JourneyStatusComplete,
		"current_step":   models.StepFinal,
		"version":        gorm.Expr("version + 1"),
	}).Error
	if err != nil {
		return utils.InternalError(c, "Failed to complete journey", err)
	}

	return c.JSON(utils.SuccessResponse(fiber.Map{"message": "Journey complete"}))
}

// LockObjective takes or renews the caller's edit lock.
func (oc *ObjectiveController) LockObjective(c *fiber.Ctx) error {
	rc := middleware.Context(c)

	objective, err := findObjectiveInTeam(oc.DB, rc.TeamID(), utils.ParseUint(c.Params("id")))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Objective not found", nil)
	}

	member := rc.EffectiveMember()
	lease, err := oc.Locker.Acquire(locks.ResourceObjective, objective.ID, member.ID)
	if err != nil {
		var locked *locks.ErrLocked
		if errors.As(err, &locked) {
			return utils.LockedResponse(c, locked.Lease)
		}
		return utils.InternalError(c, "Failed to acquire lock", err)
	}

	return c.JSON(utils.SuccessResponse(lease))
}

func (oc *ObjectiveController) UnlockObjective(c *fiber.Ctx) error {
	rc := middleware.Context(c)

	objective, err := findObjectiveInTeam(oc.DB, rc.TeamID(), utils.ParseUint(c.Params("id")))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Objective not found", nil)
	}

	member := rc.EffectiveMember()
	if err := oc.Locker.Release(locks.ResourceObjective, objective.ID, member.ID); err != nil {
		return utils.InternalError(c, "Failed to release lock", err)
	}

	return c.JSON(utils.SuccessResponse(fiber.Map{"message": "Lock released"}))
}

func (oc *ObjectiveController) DeleteObjective(c *fiber.Ctx) error {
	rc := middleware.Context(c)
	if !permissions.AtLeast(rc.Role(), permissions.RoleProjectOwner) {
		return utils.ForbiddenResponse(c, "You cannot delete objectives", rc.Role())
	}

	objective, err := findObjectiveInTeam(oc.DB, rc.TeamID(), utils.ParseUint(c.Params("id")))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Objective not found", nil)
	}

	if err := oc.DB.Select("Tasks", "Touchbases").Delete(objective).Error; err != nil {
		return utils.InternalError(c, "Failed to delete objective", err)
	}

	oc.Logger.Printf("objective %d deleted by user %d", objective.ID, rc.User.ID)
	return c.JSON(utils.SuccessResponse(fiber.Map{"message": "Objective deleted"}))
}
