package routes

import (
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"gorm.io/gorm"

	controller "arrowhead/controllers"
	"arrowhead/locks"
	"arrowhead/middleware"
)

func SetupAuthRoutes(app *fiber.App, db *gorm.DB) {
	authLogger := log.New(os.Stdout, "AUTH: ", log.Ldate|log.Ltime|log.Lshortfile)

	auth := app.Group("/auth", logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	// Public auth endpoints (no authentication required)
	auth.Post("/register", controller.Register)
	auth.Post("/login", controller.Login)
	auth.Post("/refresh", controller.RefreshToken)

	// Protected auth endpoints (require valid JWT)
	protectedAuth := auth.Group("", middleware.Protected())
	protectedAuth.Post("/logout", controller.Logout)
	protectedAuth.Post("/change-password", controller.ChangePassword)
	protectedAuth.Get("/me", controller.GetCurrentUser)

	authLogger.Println("Authentication routes initialized successfully")
}

func SetupAPIRoutes(app *fiber.App, db *gorm.DB, locker locks.Locker) {
	teamController := controller.NewTeamController(db, log.New(os.Stdout, "TEAM: ", log.LstdFlags))
	projectController := controller.NewProjectController(db, log.New(os.Stdout, "PROJECT: ", log.LstdFlags))
	objectiveController := controller.NewObjectiveController(db, locker, log.New(os.Stdout, "OBJECTIVE: ", log.LstdFlags))
	taskController := controller.NewTaskController(db, log.New(os.Stdout, "TASK: ", log.LstdFlags))
	touchbaseController := controller.NewTouchbaseController(db, locker, log.New(os.Stdout, "TOUCHBASE: ", log.LstdFlags))
	rrgtController := controller.NewRrgtController(db, log.New(os.Stdout, "RRGT: ", log.LstdFlags))
	dashboardController := controller.NewDashboardController(db, log.New(os.Stdout, "DASHBOARD: ", log.LstdFlags))

	// API group with auth, persona resolution and mutation rate limiting
	api := app.Group("/api/v1", middleware.Protected(), middleware.WithPersona(),
		middleware.MutationRateLimiter(),
		logger.New(logger.Config{
			Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
		}))

	// Team routes; creation is open to teamless users, the rest needs a team
	api.Post("/teams", teamController.CreateTeam)
	team := api.Group("/teams", middleware.RequireMembership())
	team.Get("/current", teamController.GetTeam)
	team.Get("/current/members", teamController.ListMembers)
	team.Post("/current/members", teamController.InviteMember)
	team.Post("/current/members/virtual", teamController.CreateVirtualMember)
	team.Put("/current/members/:id/role", teamController.UpdateMemberRole)
	team.Delete("/current/members/:id", teamController.RemoveMember)

	scoped := api.Group("", middleware.RequireMembership())

	// Project routes
	project := scoped.Group("/projects")
	project.Post("/", projectController.CreateProject)
	project.Get("/", projectController.GetProjects)
	project.Get("/:id", projectController.GetProject)
	project.Put("/:id", projectController.UpdateProject)
	project.Delete("/:id", projectController.DeleteProject)

	// Objectives nest under projects for create/list, flat for the rest
	project.Post("/:projectID/objectives", objectiveController.CreateObjective)
	project.Get("/:projectID/objectives", objectiveController.GetObjectives)

	objective := scoped.Group("/objectives")
	objective.Get("/:id", objectiveController.GetObjective)
	objective.Put("/:id", objectiveController.UpdateObjective)
	objective.Delete("/:id", objectiveController.DeleteObjective)
	objective.Post("/:id/advance", objectiveController.AdvanceStep)
	objective.Post("/:id/complete", objectiveController.CompleteJourney)
	objective.Post("/:id/lock", objectiveController.LockObjective)
	objective.Delete("/:id/lock", objectiveController.UnlockObjective)

	// Task routes
	objective.Post("/:objectiveID/tasks", taskController.CreateTask)
	objective.Get("/:objectiveID/tasks", taskController.GetTasks)

	task := scoped.Group("/tasks")
	task.Get("/:id", taskController.GetTask)
	task.Put("/:id", taskController.UpdateTask)
	task.Delete("/:id", taskController.DeleteTask)
	task.Post("/:id/assignments", taskController.AssignMember)
	task.Delete("/:id/assignments/:memberID", taskController.UnassignMember)

	// Touchbase routes
	objective.Post("/:objectiveID/touchbases", touchbaseController.CreateTouchbase)
	objective.Get("/:objectiveID/touchbases", touchbaseController.GetTouchbases)

	touchbase := scoped.Group("/touchbases")
	touchbase.Get("/:id", touchbaseController.GetTouchbase)
	touchbase.Put("/:id", touchbaseController.UpdateTouchbase)
	touchbase.Delete("/:id", touchbaseController.DeleteTouchbase)
	touchbase.Post("/:id/lock", touchbaseController.LockTouchbase)
	touchbase.Delete("/:id/lock", touchbaseController.UnlockTouchbase)

	// RRGT routes
	rrgt := scoped.Group("/rrgt")
	rrgt.Get("/dashboard", rrgtController.GetDashboard)
	rrgt.Put("/items/:id", rrgtController.UpdateItem)
	rrgt.Get("/dial", rrgtController.GetDial)
	rrgt.Put("/dial", rrgtController.UpdateDial)

	// Dashboard routes
	dashboard := scoped.Group("/dashboard")
	dashboard.Get("/summary", dashboardController.GetSummary)

	// Billing routes
	billing := scoped.Group("/billing")
	billing.Get("/plans", controller.GetSeatPlans)
	billing.Post("/upgrade-intent", controller.CreateUpgradeIntent)

	log.Println("API routes initialized successfully")
}

func SetupRoutes(app *fiber.App, db *gorm.DB, locker locks.Locker) {
	// Initialize Stripe
	controller.InitStripe()

	// Setup health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Stripe webhook stays outside the authenticated group; Stripe signs it
	app.Post("/webhooks/stripe", controller.HandleBillingWebhook)

	SetupAuthRoutes(app, db)
	SetupAPIRoutes(app, db, locker)

	// Setup 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":   "Not Found",
			"message": "The requested resource was not found",
		})
	})
}
