package controller

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"arrowhead/middleware"
	"arrowhead/models"
	"arrowhead/permissions"
	"arrowhead/utils"
)

type TeamController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewTeamController(db *gorm.DB, logger *log.Logger) *TeamController {
	return &TeamController{DB: db, Logger: logger}
}

// CreateTeam creates a team and makes the caller its account owner. Only
// teamless users can create a team.
func (tc *TeamController) CreateTeam(c *fiber.Ctx) error {
	rc := middleware.Context(c)
	if rc.Membership != nil {
		return utils.ErrorResponse(c, fiber.StatusConflict, "You already belong to a team", nil)
	}

	var input struct {
		Name string `json:"name" validate:"required,max=200"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	var team models.Team
	err := tc.DB.Transaction(func(tx *gorm.DB) error {
		team = models.Team{Name: input.Name}
		if err := tx.Create(&team).Error; err != nil {
			return err
		}

		displayName := rc.User.Email
		if rc.User.Name != nil && *rc.User.Name != "" {
			displayName = *rc.User.Name
		}
		member := models.TeamMember{
			TeamID:      team.ID,
			UserID:      &rc.User.ID,
			DisplayName: displayName,
			Role:        permissions.RoleAccountOwner,
		}
		return tx.Create(&member).Error
	})
	if err != nil {
		return utils.InternalError(c, "Failed to create team", err)
	}

	tc.Logger.Printf("team %d created by user %d", team.ID, rc.User.ID)
	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(team))
}

func (tc *TeamController) GetTeam(c *fiber.Ctx) error {
	rc := middleware.Context(c)

	var team models.Team
	if err := tc.DB.Preload("Members").First(&team, rc.TeamID()).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Team not found", nil)
	}

	return c.JSON(utils.SuccessResponse(team))
}

func (tc *TeamController) ListMembers(c *fiber.Ctx) error {
	rc := middleware.Context(c)

	var members []models.TeamMember
	if err := tc.DB.Where("team_id = ?", rc.TeamID()).Order("id").Find(&members).Error; err != nil {
		return utils.InternalError(c, "Failed to list members", err)
	}

	return c.JSON(utils.SuccessResponse(members))
}

// InviteMember attaches an existing user account to the team.
func (tc *TeamController) InviteMember(c *fiber.Ctx) error {
	rc := middleware.Context(c)
	if !permissions.HasPermission(rc.Role(), permissions.ActionManageTeam) {
		return utils.ForbiddenResponse(c, "You cannot manage team members", rc.Role())
	}

	var input struct {
		Email       string `json:"email" validate:"required,email"`
		DisplayName string `json:"display_name" validate:"omitempty,max=100"`
		Role        string `json:"role" validate:"required"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}
	if !permissions.ValidRole(input.Role) {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Unknown role", nil)
	}

	var user models.User
	if err := tc.DB.Where("email = ?", input.Email).First(&user).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "No account with that email", nil)
	}

	var existing models.TeamMember
	if err := tc.DB.Where("user_id = ?", user.ID).First(&existing).Error; err == nil {
		return utils.ErrorResponse(c, fiber.StatusConflict, "User already belongs to a team", nil)
	}

	displayName := input.DisplayName
	if displayName == "" {
		displayName = user.Email
	}
	member := models.TeamMember{
		TeamID:      rc.TeamID(),
		UserID:      &user.ID,
		DisplayName: displayName,
		Role:        input.Role,
	}
	if err := tc.DB.Create(&member).Error; err != nil {
		return utils.InternalError(c, "Failed to add member", err)
	}

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(member))
}

// CreateVirtualMember creates a persona with no login. Managers act on its
// behalf through the persona header.
func (tc *TeamController) CreateVirtualMember(c *fiber.Ctx) error {
	rc := middleware.Context(c)
	if !permissions.HasPermission(rc.Role(), permissions.ActionManageTeam) {
		return utils.ForbiddenResponse(c, "You cannot manage team members", rc.Role())
	}

	var input struct {
		DisplayName string `json:"display_name" validate:"required,max=100"`
		Role        string `json:"role" validate:"omitempty"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	role := input.Role
	if role == "" {
		role = permissions.RoleTeamMember
	}
	if !permissions.ValidRole(role) {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Unknown role", nil)
	}

	member := models.TeamMember{
		TeamID:      rc.TeamID(),
		DisplayName: input.DisplayName,
		Role:        role,
		IsVirtual:   true,
	}
	if err := tc.DB.Create(&member).Error; err != nil {
		return utils.InternalError(c, "Failed to create virtual member", err)
	}

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(member))
}

func (tc *TeamController) UpdateMemberRole(c *fiber.Ctx) error {
	rc := middleware.Context(c)
	if !permissions.HasPermission(rc.Role(), permissions.ActionManageTeam) {
		return utils.ForbiddenResponse(c, "You cannot manage team members", rc.Role())
	}

	member, err := findMemberInTeam(tc.DB, rc.TeamID(), utils.ParseUint(c.Params("id")))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Team member not found", nil)
	}

	var input struct {
		Role string `json:"role" validate:"required"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if !permissions.ValidRole(input.Role) {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Unknown role", nil)
	}

	if input.Role != permissions.RoleAccountOwner && wouldOrphanTeam(member.Role, tc.countOwners(rc.TeamID())) {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "A team must keep at least one account owner", nil)
	}

	if err := tc.DB.Model(member).Update("role", input.Role).Error; err != nil {
		return utils.InternalError(c, "Failed to update role", err)
	}

	return c.JSON(utils.SuccessResponse(member))
}

func (tc *TeamController) RemoveMember(c *fiber.Ctx) error {
	rc := middleware.Context(c)
	if !permissions.HasPermission(rc.Role(), permissions.ActionManageTeam) {
		return utils.ForbiddenResponse(c, "You cannot manage team members", rc.Role())
	}

	member, err := findMemberInTeam(tc.DB, rc.TeamID(), utils.ParseUint(c.Params("id")))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Team member not found", nil)
	}

	if member.ID == rc.Membership.ID {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "You cannot remove yourself", nil)
	}

	if wouldOrphanTeam(member.Role, tc.countOwners(rc.TeamID())) {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "A team must keep at least one account owner", nil)
	}

	err = tc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("team_member_id = ?", member.ID).Delete(&models.TaskAssignment{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("team_member_id = ?", member.ID).Delete(&models.DialState{}).Error; err != nil {
			return err
		}
		return tx.Delete(member).Error
	})
	if err != nil {
		return utils.InternalError(c, "Failed to remove member", err)
	}

	tc.Logger.Printf("member %d removed from team %d by user %d", member.ID, rc.TeamID(), rc.User.ID)
	return c.JSON(utils.SuccessResponse(fiber.Map{"message": "Member removed"}))
}

func (tc *TeamController) countOwners(teamID uint) int64 {
	var owners int64
	tc.DB.Model(&models.TeamMember{}).
		Where("team_id = ? AND role = ?", teamID, permissions.RoleAccountOwner).
		Count(&owners)
	return owners
}

// wouldOrphanTeam reports whether demoting or removing a member with the
// given role would leave the team with no account owner. Applies equally to
// role changes and removals.
func wouldOrphanTeam(role string, owners int64) bool {
	return role == permissions.RoleAccountOwner && owners <= 1
}
