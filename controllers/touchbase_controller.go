package controller

import (
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"arrowhead/locks"
	"arrowhead/middleware"
	"arrowhead/models"
	"arrowhead/permissions"
	"arrowhead/utils"
)

type TouchbaseController struct {
	DB     *gorm.DB
	Locker locks.Locker
	Logger *log.Logger
}

func NewTouchbaseController(db *gorm.DB, locker locks.Locker, logger *log.Logger) *TouchbaseController {
	return &TouchbaseController{DB: db, Locker: locker, Logger: logger}
}

// touchbaseView wraps a touchbase with its derived editability.
type touchbaseView struct {
	models.Touchbase
	Editable bool `json:"editable"`
}

// CreateTouchbase records a status report. The subject defaults to the
// creator; reporting on someone else requires a manager role.
func (tbc *TouchbaseController) CreateTouchbase(c *fiber.Ctx) error {
	rc := middleware.Context(c)
	if !permissions.HasPermission(rc.Role(), permissions.ActionCreateTouchbase) {
		return utils.ForbiddenResponse(c, "You cannot create touchbases", rc.Role())
	}

	objective, err := findObjectiveInTeam(tbc.DB, rc.TeamID(), utils.ParseUint(c.Params("objectiveID")))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Objective not found", nil)
	}

	var input struct {
		SubjectID *uint  `json:"subject_id"`
		Status    string `json:"status" validate:"required,max=100"`
		Progress  string `json:"progress" validate:"omitempty,max=5000"`
		Blockers  string `json:"blockers" validate:"omitempty,max=5000"`
		NextSteps string `json:"next_steps" validate:"omitempty,max=5000"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	creator := rc.EffectiveMember()
	subjectID := creator.ID
	if input.SubjectID != nil && *input.SubjectID != creator.ID {
		if !permissions.IsManager(rc.Role()) {
			return utils.ForbiddenResponse(c, "Only managers can report on another member", rc.Role())
		}
		subject, err := findMemberInTeam(tbc.DB, rc.TeamID(), *input.SubjectID)
		if err != nil {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Team member not found", nil)
		}
		subjectID = subject.ID
	}

	touchbase := models.Touchbase{
		ObjectiveID: objective.ID,
		SubjectID:   subjectID,
		CreatorID:   creator.ID,
		Status:      input.Status,
		Progress:    input.Progress,
		Blockers:    input.Blockers,
		NextSteps:   input.NextSteps,
	}
	if err := tbc.DB.Create(&touchbase).Error; err != nil {
		return utils.InternalError(c, "Failed to create touchbase", err)
	}

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(touchbaseView{
		Touchbase: touchbase,
		Editable:  true,
	}))
}

func (tbc *TouchbaseController) GetTouchbases(c *fiber.Ctx) error {
	rc := middleware.Context(c)

	objective, err := findObjectiveInTeam(tbc.DB, rc.TeamID(), utils.ParseUint(c.Params("objectiveID")))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Objective not found", nil)
	}

	query := tbc.DB.Where("objective_id = ?", objective.ID)
	if subject := c.Query("subject_id"); subject != "" {
		query = query.Where("subject_id = ?", utils.ParseUint(subject))
	}

	var touchbases []models.Touchbase
	if err := query.Order("created_at DESC").Find(&touchbases).Error; err != nil {
		return utils.InternalError(c, "Failed to list touchbases", err)
	}

	now := time.Now()
	views := make([]touchbaseView, 0, len(touchbases))
	for _, tb := range touchbases {
		views = append(views, touchbaseView{Touchbase: tb, Editable: tb.EditableAt(now)})
	}

	return c.JSON(utils.SuccessResponse(views))
}

func (tbc *TouchbaseController) GetTouchbase(c *fiber.Ctx) error {
	rc := middleware.Context(c)

	touchbase, err := findTouchbaseInTeam(tbc.DB, rc.TeamID(), utils.ParseUint(c.Params("id")))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Touchbase not found", nil)
	}

	return c.JSON(utils.SuccessResponse(touchbaseView{
		Touchbase: *touchbase,
		Editable:  touchbase.EditableAt(time.Now()),
	}))
}

// UpdateTouchbase is creator-only and hard-gated by the 24-hour window; the
// window applies regardless of role or lock state. The advisory lock is
// checked on top.
func (tbc *TouchbaseController) UpdateTouchbase(c *fiber.Ctx) error {
	rc := middleware.Context(c)

	touchbase, err := findTouchbaseInTeam(tbc.DB, rc.TeamID(), utils.ParseUint(c.Params("id")))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Touchbase not found", nil)
	}

	member := rc.EffectiveMember()
	if touchbase.CreatorID != member.ID {
		return utils.ForbiddenResponse(c, "Only the creator can edit a touchbase", rc.Role())
	}

	if !touchbase.EditableAt(time.Now()) {
		return utils.ForbiddenResponse(c, "Touchbase is older than 24 hours and can no longer be edited", rc.Role())
	}

	if err := tbc.Locker.Check(locks.ResourceTouchbase, touchbase.ID, member.ID); err != nil {
		var locked *locks.ErrLocked
		if errors.As(err, &locked) {
			return utils.LockedResponse(c, locked.Lease)
		}
		return utils.InternalError(c, "Lock check failed", err)
	}

	var input struct {
		Status    *string `json:"status" validate:"omitempty,max=100"`
		Progress  *string `json:"progress" validate:"omitempty,max=5000"`
		Blockers  *string `json:"blockers" validate:"omitempty,max=5000"`
		NextSteps *string `json:"next_steps" validate:"omitempty,max=5000"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	updates := map[string]interface{}{}
	if input.Status != nil {
		updates["status"] = *input.Status
	}
	if input.Progress != nil {
		updates["progress"] = *input.Progress
	}
	if input.Blockers != nil {
		updates["blockers"] = *input.Blockers
	}
	if input.NextSteps != nil {
		updates["next_steps"] = *input.NextSteps
	}

	if len(updates) > 0 {
		if err := tbc.DB.Model(touchbase).Updates(updates).Error; err != nil {
			return utils.InternalError(c, "Failed to update touchbase", err)
		}
	}

	return c.JSON(utils.SuccessResponse(touchbaseView{
		Touchbase: *touchbase,
		Editable:  true,
	}))
}

// DeleteTouchbase is open to objective_owner-or-above and is not subject to
// the 24-hour window.
func (tbc *TouchbaseController) DeleteTouchbase(c *fiber.Ctx) error {
	rc := middleware.Context(c)
	if !permissions.AtLeast(rc.Role(), permissions.RoleObjectiveOwner) {
		return utils.ForbiddenResponse(c, "You cannot delete touchbases", rc.Role())
	}

	touchbase, err := findTouchbaseInTeam(tbc.DB, rc.TeamID(), utils.ParseUint(c.Params("id")))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Touchbase not found", nil)
	}

	if err := tbc.DB.Delete(touchbase).Error; err != nil {
		return utils.InternalError(c, "Failed to delete touchbase", err)
	}

	return c.JSON(utils.SuccessResponse(fiber.Map{"message": "Touchbase deleted"}))
}

func (tbc *TouchbaseController) LockTouchbase(c *fiber.Ctx) error {
	rc := middleware.Context(c)

	touchbase, err := findTouchbaseInTeam(tbc.DB, rc.TeamID(), utils.ParseUint(c.Params("id")))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Touchbase not found", nil)
	}

	member := rc.EffectiveMember()
	lease, err := tbc.Locker.Acquire(locks.ResourceTouchbase, touchbase.ID, member.ID)
	if err != nil {
		var locked *locks.ErrLocked
		if errors.As(err, &locked) {
			return utils.LockedResponse(c, locked.Lease)
		}
		return utils.InternalError(c, "Failed to acquire lock", err)
	}

	return c.JSON(utils.SuccessResponse(lease))
}

func (tbc *TouchbaseController) UnlockTouchbase(c *fiber.Ctx) error {
	rc := middleware.Context(c)

	touchbase, err := findTouchbaseInTeam(tbc.DB, rc.TeamID(), utils.ParseUint(c.Params("id")))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Touchbase not found", nil)
	}

	member := rc.EffectiveMember()
	if err := tbc.Locker.Release(locks.ResourceTouchbase, touchbase.ID, member.ID); err != nil {
		return utils.InternalError(c, "Failed to release lock", err)
	}

	return c.JSON(utils.SuccessResponse(fiber.Map{"message": "Lock released"}))
}
