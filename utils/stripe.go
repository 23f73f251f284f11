package utils

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/customer"
	"github.com/stripe/stripe-go/v76/webhook"

	"arrowhead/config"
	"arrowhead/models"
)

// ConstructStripeEvent verifies and parses a Stripe webhook event.
func ConstructStripeEvent(c *fiber.Ctx) (stripe.Event, error) {
	payload := c.Body()

	signature := c.Get("Stripe-Signature")
	if signature == "" {
		return stripe.Event{}, fiber.NewError(fiber.StatusBadRequest, "Missing Stripe-Signature header")
	}

	// Tolerance covers clock drift between Stripe and this host
	event, err := webhook.ConstructEventWithTolerance(
		payload,
		signature,
		config.AppConfig.StripeWebhookSecret,
		5*time.Minute,
	)
	if err != nil {
		return stripe.Event{}, fiber.NewError(fiber.StatusBadRequest, "Invalid webhook signature")
	}

	return event, nil
}

// GetOrCreateStripeCustomer resolves the Stripe customer for a team,
// creating one keyed to the billing user's email on first use.
func GetOrCreateStripeCustomer(team *models.Team, billingUser *models.User) (string, error) {
	if team.StripeCustomerID != nil {
		return *team.StripeCustomerID, nil
	}

	params := &stripe.CustomerParams{
		Email: stripe.String(billingUser.Email),
		Name:  stripe.String(team.Name),
		Metadata: map[string]string{
			"team_id": strconv.Itoa(int(team.ID)),
		},
	}

	cust, err := customer.New(params)
	if err != nil {
		return "", err
	}

	team.StripeCustomerID = &cust.ID
	if err := config.DB.Model(team).Update("stripe_customer_id", cust.ID).Error; err != nil {
		return "", err
	}
	return cust.ID, nil
}
