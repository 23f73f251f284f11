package models

import "gorm.io/gorm"

// SeatPlan represents a purchasable team plan.
type SeatPlan struct {
	gorm.Model
	Name        string `gorm:"not null;uniqueIndex" json:"name"` // starter, growth, enterprise
	Description string `json:"description"`

	SeatPrice   int `gorm:"not null" json:"seat_price"` // per seat per month, in cents
	MaxSeats    int `gorm:"default:5" json:"max_seats"`
	MaxProjects int `gorm:"default:3" json:"max_projects"`

	// For display purposes
	DisplayPrice string `gorm:"-" json:"display_price"` // e.g. "$8"
	IsPopular    bool   `gorm:"default:false" json:"is_popular"`

	StripePriceID   string `json:"stripe_price_id"`
	BillingInterval string `json:"billing_interval" gorm:"default:'monthly'"` // monthly, yearly
}

// CreateDefaultSeatPlans seeds the plan catalog on first boot.
func CreateDefaultSeatPlans(db *gorm.DB) error {
	defaultPlans := []SeatPlan{
		{
			Name:        "starter",
			Description: "Up to 5 seats and 3 projects",
			SeatPrice:   0,
			MaxSeats:    5,
			MaxProjects: 3,
		},
		{
			Name:         "growth",
			Description:  "Up to 25 seats, unlimited projects",
			SeatPrice:    800, // $8
			MaxSeats:     25,
			MaxProjects:  0, // unlimited
			DisplayPrice: "$8",
			IsPopular:    true,
		},
		{
			Name:         "enterprise",
			Description:  "Unlimited seats and projects",
			SeatPrice:    1500, // $15
			MaxSeats:     0,
			MaxProjects:  0,
			DisplayPrice: "$15",
		},
	}
	for _, plan := range defaultPlans {
		if err := db.FirstOrCreate(&plan, "name = ?", plan.Name).Error; err != nil {
			return err
		}
	}
	return nil
}
