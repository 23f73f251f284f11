package controller

import (
	"encoding/json"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"

	"arrowhead/config"
	"arrowhead/middleware"
	"arrowhead/models"
	"arrowhead/permissions"
	"arrowhead/utils"
)

func InitStripe() {
	stripe.Key = config.AppConfig.StripeSecretKey
}

type UpgradeRequest struct {
	PlanName string `json:"plan_name" validate:"required,oneof=starter growth enterprise"`
	Seats    int    `json:"seats" validate:"required,gte=1"`
}

// GetSeatPlans lists the plan catalog.
func GetSeatPlans(c *fiber.Ctx) error {
	var plans []models.SeatPlan
	if err := config.DB.Order("seat_price").Find(&plans).Error; err != nil {
		return utils.InternalError(c, "Failed to load plans", err)
	}
	return c.JSON(utils.SuccessResponse(plans))
}

// CreateUpgradeIntent creates a Stripe Payment Intent for a seat plan
// upgrade. manage_team gated: only account owners and managers pay.
func CreateUpgradeIntent(c *fiber.Ctx) error {
	rc := middleware.Context(c)
	if !permissions.HasPermission(rc.Role(), permissions.ActionManageTeam) {
		return utils.ForbiddenResponse(c, "You cannot manage billing", rc.Role())
	}

	var req UpgradeRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	var plan models.SeatPlan
	if err := config.DB.Where("name = ?", req.PlanName).First(&plan).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Plan not found", nil)
	}
	if plan.MaxSeats > 0 && req.Seats > plan.MaxSeats {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Seat count exceeds the plan limit", nil)
	}

	var team models.Team
	if err := config.DB.First(&team, rc.TeamID()).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Team not found", nil)
	}

	customerID, err := utils.GetOrCreateStripeCustomer(&team, rc.User)
	if err != nil {
		return utils.InternalError(c, "Failed to create billing customer", err)
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(int64(plan.SeatPrice * req.Seats)),
		Currency: stripe.String(string(stripe.CurrencyUSD)),
		Customer: stripe.String(customerID),
		Metadata: map[string]string{
			"team_id":   strconv.Itoa(int(team.ID)),
			"plan_name": plan.Name,
			"seats":     strconv.Itoa(req.Seats),
		},
		Description: stripe.String("Arrowhead " + plan.Name + " plan"),
	}
	params.SetupFutureUsage = stripe.String("off_session")

	pi, err := paymentintent.New(params)
	if err != nil {
		return utils.InternalError(c, "Failed to create payment intent", err)
	}

	return c.JSON(utils.SuccessResponse(fiber.Map{
		"client_secret": pi.ClientSecret,
		"amount":        pi.Amount,
	}))
}

// HandleBillingWebhook applies verified Stripe events to team billing state.
func HandleBillingWebhook(c *fiber.Ctx) error {
	event, err := utils.ConstructStripeEvent(c)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid webhook", err)
	}

	switch event.Type {
	case "payment_intent.succeeded":
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "Malformed event payload", err)
		}
		teamID := utils.ParseUint(pi.Metadata["team_id"])
		planName := pi.Metadata["plan_name"]
		if teamID == 0 || planName == "" {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "Missing metadata", nil)
		}
		err := config.DB.Model(&models.Team{}).Where("id = ?", teamID).
			Updates(map[string]interface{}{
				"billing_status": "active",
				"seat_plan":      planName,
			}).Error
		if err != nil {
			return utils.InternalError(c, "Failed to apply payment", err)
		}

	case "payment_intent.payment_failed":
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "Malformed event payload", err)
		}
		if teamID := utils.ParseUint(pi.Metadata["team_id"]); teamID != 0 {
			if err := config.DB.Model(&models.Team{}).Where("id = ?", teamID).
				Update("billing_status", "past_due").Error; err != nil {
				return utils.InternalError(c, "Failed to record failed payment", err)
			}
		}
	}

	return c.JSON(utils.SuccessResponse(fiber.Map{"received": true}))
}
