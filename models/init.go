package models

import "gorm.io/gorm"

// Migrate creates or updates the full schema. Called once at startup.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Team{},
		&TeamMember{},
		&Project{},
		&Objective{},
		&Task{},
		&TaskAssignment{},
		&RrgtPlan{},
		&RrgtItem{},
		&DialState{},
		&Touchbase{},
		&SeatPlan{},
	)
}
