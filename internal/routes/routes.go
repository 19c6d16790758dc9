package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/mwhite/stratplan-api/internal/handlers"
	"github.com/mwhite/stratplan-api/internal/middleware"
)

func Setup(app *fiber.App) {
	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", handlers.Register)
	auth.Post("/login", handlers.Login)

	// Reads are public (the community dashboard has no login); every
	// mutation sits behind the admin JWT.
	districts := api.Group("/districts")
	districts.Get("/", handlers.GetDistricts)
	districts.Get("/with-summaries", handlers.GetDistrictsWithSummaries)
	districts.Post("/", middleware.Protected(), handlers.CreateDistrict)
	districts.Delete("/", middleware.Protected(), handlers.DeleteDistrict)

	districts.Get("/:slug", handlers.GetDistrict)
	districts.Put("/:slug/update", middleware.Protected(), handlers.UpdateDistrict)
	districts.Get("/:slug/hierarchy", handlers.GetHierarchy)

	districts.Get("/:slug/goals", handlers.GetGoals)
	districts.Get("/:slug/goals/next-number", handlers.NextGoalNumber)
	districts.Post("/:slug/goals", middleware.Protected(), handlers.CreateGoal)
	districts.Put("/:slug/goals", middleware.Protected(), handlers.UpdateGoal)
	districts.Delete("/:slug/goals", middleware.Protected(), handlers.DeleteGoal)

	districts.Get("/:slug/metrics", handlers.GetMetrics)
	districts.Post("/:slug/metrics", middleware.Protected(), handlers.CreateMetric)
	districts.Put("/:slug/metrics", middleware.Protected(), handlers.UpdateMetric)
	districts.Delete("/:slug/metrics", middleware.Protected(), handlers.DeleteMetric)
	districts.Post("/:slug/metrics/reorder", middleware.Protected(), handlers.ReorderMetrics)
	districts.Post("/:slug/metrics/batch", middleware.Protected(), handlers.BatchReplaceMetrics)

	// File upload for objective card images
	api.Post("/upload", middleware.Protected(), handlers.UploadImage)
}
