package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/mwhite/stratplan-api/internal/database"
	"github.com/mwhite/stratplan-api/internal/models"
)

func GetDistricts(c *fiber.Ctx) error {
	var districts []models.District
	if err := database.DB.Order("name ASC").Find(&districts).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch districts",
		})
	}

	return c.JSON(fiber.Map{
		"districts": districts,
		"count":     len(districts),
	})
}

func GetDistrictsWithSummaries(c *fiber.Ctx) error {
	var districts []models.District
	if err := database.DB.Order("name ASC").Find(&districts).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch districts",
		})
	}

	// Batch-load goal counts per district and level
	type levelCount struct {
		DistrictID uuid.UUID
		Level      int
		Count      int
	}
	var levelCounts []levelCount
	database.DB.Model(&models.Goal{}).
		Select("district_id, level, COUNT(*) as count").
		Group("district_id, level").
		Find(&levelCounts)

	goalCounts := make(map[uuid.UUID]map[int]int)
	for _, lc := range levelCounts {
		if goalCounts[lc.DistrictID] == nil {
			goalCounts[lc.DistrictID] = make(map[int]int)
		}
		goalCounts[lc.DistrictID][lc.Level] = lc.Count
	}

	// Batch-load metric counts per district
	type metricCount struct {
		DistrictID uuid.UUID
		Count      int
	}
	var metricCounts []metricCount
	database.DB.Model(&models.Metric{}).
		Select("goals.district_id as district_id, COUNT(*) as count").
		Joins("JOIN goals ON goals.id = metrics.goal_id").
		Group("goals.district_id").
		Find(&metricCounts)

	metricMap := make(map[uuid.UUID]int)
	for _, mc := range metricCounts {
		metricMap[mc.DistrictID] = mc.Count
	}

	summaries := make([]models.DistrictSummary, len(districts))
	for i, d := range districts {
		summaries[i] = models.DistrictSummary{
			ID:             d.ID,
			Name:           d.Name,
			Slug:           d.Slug,
			ObjectiveCount: goalCounts[d.ID][models.LevelObjective],
			GoalCount:      goalCounts[d.ID][models.LevelGoal],
			SubGoalCount:   goalCounts[d.ID][models.LevelSubGoal],
			MetricCount:    metricMap[d.ID],
		}
	}

	return c.JSON(fiber.Map{"districts": summaries})
}

// findDistrictBySlug resolves the :slug route param. The second return is
// false when no district carries the slug; the caller answers 404.
func findDistrictBySlug(c *fiber.Ctx) (*models.District, bool) {
	slug := c.Params("slug")
	var district models.District
	if err := database.DB.Where("slug = ?", slug).First(&district).Error; err != nil {
		return nil, false
	}
	return &district, true
}

func districtNotFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"error": "District not found",
	})
}

// GetDistrict returns the district together with its decorated goal
// forest, so the public dashboard loads in one request.
func GetDistrict(c *fiber.Ctx) error {
	district, ok := findDistrictBySlug(c)
	if !ok {
		return districtNotFound(c)
	}

	goals, err := districtForest(district.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch goals",
		})
	}

	return c.JSON(fiber.Map{
		"district": district,
		"goals":    goals,
	})
}

func CreateDistrict(c *fiber.Ctx) error {
	var req models.CreateDistrictRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.Name == "" || req.Slug == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Name and slug are required",
		})
	}

	var existing models.District
	if err := database.DB.Where("slug = ?", req.Slug).First(&existing).Error; err == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Slug already in use",
		})
	}

	district := models.District{
		Name:           req.Name,
		Slug:           req.Slug,
		SecondaryColor: req.SecondaryColor,
		LogoURL:        req.LogoURL,
		AdminEmail:     req.AdminEmail,
		IsPublic:       true,
	}
	if req.PrimaryColor != nil {
		district.PrimaryColor = *req.PrimaryColor
	}
	if req.IsPublic != nil {
		district.IsPublic = *req.IsPublic
	}

	if err := database.DB.Create(&district).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create district",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"district": district})
}

func UpdateDistrict(c *fiber.Ctx) error {
	district, ok := findDistrictBySlug(c)
	if !ok {
		return districtNotFound(c)
	}

	var req models.UpdateDistrictRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.Name != nil {
		if *req.Name == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Name cannot be empty",
			})
		}
		district.Name = *req.Name
	}
	if req.PrimaryColor != nil {
		district.PrimaryColor = *req.PrimaryColor
	}
	if req.SecondaryColor != nil {
		district.SecondaryColor = req.SecondaryColor
	}
	if req.LogoURL != nil {
		district.LogoURL = req.LogoURL
	}
	if req.AdminEmail != nil {
		district.AdminEmail = *req.AdminEmail
	}
	if req.IsPublic != nil {
		district.IsPublic = *req.IsPublic
	}

	if err := database.DB.Save(district).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update district",
		})
	}

	return c.JSON(fiber.Map{"district": district})
}

type deleteDistrictRequest struct {
	DistrictID uuid.UUID `json:"districtId"`
}

func DeleteDistrict(c *fiber.Ctx) error {
	var req deleteDistrictRequest
	if err := c.BodyParser(&req); err != nil || req.DistrictID == uuid.Nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "District ID is required",
		})
	}

	var district models.District
	if err := database.DB.First(&district, "id = ?", req.DistrictID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "District not found",
		})
	}

	// Goals and metrics go with it via FK cascade
	if err := database.DB.Delete(&district).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete district",
		})
	}

	return c.SendStatus(fiber.StatusNoContent)
}
