package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/mwhite/stratplan-api/internal/database"
	"github.com/mwhite/stratplan-api/internal/models"
	"github.com/mwhite/stratplan-api/internal/plan"
	"gorm.io/gorm"
)

// Two editors can race for the same sibling number; the unique index on
// (district_id, goal_number) rejects the loser and we recompute.
const createGoalAttempts = 3

func GetGoals(c *fiber.Ctx) error {
	district, ok := findDistrictBySlug(c)
	if !ok {
		return districtNotFound(c)
	}

	var goals []models.Goal
	if err := database.DB.Where("district_id = ?", district.ID).
		Order("goal_number ASC").
		Find(&goals).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch goals",
		})
	}

	return c.JSON(fiber.Map{"goals": goals})
}

func NextGoalNumber(c *fiber.Ctx) error {
	district, ok := findDistrictBySlug(c)
	if !ok {
		return districtNotFound(c)
	}

	parentParam := c.Query("parentId")
	if parentParam == "" {
		var roots []models.Goal
		database.DB.Where("district_id = ? AND parent_id IS NULL", district.ID).Find(&roots)
		return c.JSON(fiber.Map{"goalNumber": plan.NextNumber("", roots)})
	}

	parentID, err := uuid.Parse(parentParam)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid parent ID",
		})
	}

	var parent models.Goal
	if err := database.DB.Where("id = ? AND district_id = ?", parentID, district.ID).
		First(&parent).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Parent goal not found",
		})
	}

	var siblings []models.Goal
	database.DB.Where("parent_id = ?", parent.ID).Find(&siblings)

	return c.JSON(fiber.Map{"goalNumber": plan.NextNumber(parent.GoalNumber, siblings)})
}

func CreateGoal(c *fiber.Ctx) error {
	district, ok := findDistrictBySlug(c)
	if !ok {
		return districtNotFound(c)
	}

	var req models.CreateGoalRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.GoalData.Title == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Title is required",
		})
	}

	var parent *models.Goal
	level := models.LevelObjective
	if req.ParentID != nil {
		var p models.Goal
		if err := database.DB.Where("id = ? AND district_id = ?", *req.ParentID, district.ID).
			First(&p).Error; err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Parent goal not found",
			})
		}
		if p.Level >= models.LevelSubGoal {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Sub-goals cannot have children",
			})
		}
		parent = &p
		level = p.Level + 1
	}

	goal := models.Goal{
		DistrictID:     district.ID,
		ParentID:       req.ParentID,
		Title:          req.GoalData.Title,
		Description:    req.GoalData.Description,
		Level:          level,
		IndicatorText:  req.GoalData.IndicatorText,
		IndicatorColor: req.GoalData.IndicatorColor,
		ImageURL:       req.GoalData.ImageURL,
		HeaderColor:    req.GoalData.HeaderColor,
	}
	if req.GoalData.OrderPosition != nil {
		goal.OrderPosition = *req.GoalData.OrderPosition
	}

	// The goal number is assigned here, not taken from the client: compute
	// it from the persisted sibling set inside a transaction and retry when
	// a concurrent create wins the unique index race.
	var lastErr error
	for attempt := 0; attempt < createGoalAttempts; attempt++ {
		lastErr = database.DB.Transaction(func(tx *gorm.DB) error {
			var siblings []models.Goal
			if parent == nil {
				if err := tx.Where("district_id = ? AND parent_id IS NULL", district.ID).
					Find(&siblings).Error; err != nil {
					return err
				}
				goal.GoalNumber = plan.NextNumber("", siblings)
			} else {
				if err := tx.Where("parent_id = ?", parent.ID).Find(&siblings).Error; err != nil {
					return err
				}
				goal.GoalNumber = plan.NextNumber(parent.GoalNumber, siblings)
			}
			return tx.Create(&goal).Error
		})
		if lastErr == nil {
			return c.Status(fiber.StatusCreated).JSON(fiber.Map{"goal": goal})
		}
		if !isUniqueViolation(lastErr) {
			break
		}
		goal.ID = uuid.Nil
	}

	if isUniqueViolation(lastErr) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Goal number conflict, please retry",
		})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "Failed to create goal",
	})
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}

func UpdateGoal(c *fiber.Ctx) error {
	district, ok := findDistrictBySlug(c)
	if !ok {
		return districtNotFound(c)
	}

	var req models.UpdateGoalRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.GoalID == uuid.Nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Goal ID is required",
		})
	}

	var goal models.Goal
	if err := database.DB.Where("id = ? AND district_id = ?", req.GoalID, district.ID).
		First(&goal).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Goal not found in this district",
		})
	}

	if req.Updates.Title != nil {
		if *req.Updates.Title == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Title cannot be empty",
			})
		}
		goal.Title = *req.Updates.Title
	}
	if req.Updates.Description != nil {
		goal.Description = req.Updates.Description
	}
	if req.Updates.OrderPosition != nil {
		goal.OrderPosition = *req.Updates.OrderPosition
	}
	if req.Updates.IndicatorText != nil {
		goal.IndicatorText = req.Updates.IndicatorText
	}
	if req.Updates.IndicatorColor != nil {
		goal.IndicatorColor = req.Updates.IndicatorColor
	}
	if req.Updates.ImageURL != nil {
		goal.ImageURL = req.Updates.ImageURL
	}
	if req.Updates.HeaderColor != nil {
		goal.HeaderColor = req.Updates.HeaderColor
	}

	if err := database.DB.Save(&goal).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update goal",
		})
	}

	return c.JSON(fiber.Map{"goal": goal})
}

func DeleteGoal(c *fiber.Ctx) error {
	district, ok := findDistrictBySlug(c)
	if !ok {
		return districtNotFound(c)
	}

	goalID, err := uuid.Parse(c.Query("goalId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid goal ID",
		})
	}

	var goal models.Goal
	if err := database.DB.Where("id = ? AND district_id = ?", goalID, district.ID).
		First(&goal).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Goal not found in this district",
		})
	}

	// Descendant goals and all attached metrics go with it via FK cascade
	if err := database.DB.Delete(&goal).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete goal",
		})
	}

	return c.SendStatus(fiber.StatusNoContent)
}
