package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/mwhite/stratplan-api/internal/database"
	"github.com/mwhite/stratplan-api/internal/models"
	"gorm.io/gorm"
)

// districtGoalIDs returns the ids of every goal in the district. Metrics
// have no district column, so district-wide metric queries go through the
// goal set.
func districtGoalIDs(districtID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := database.DB.Model(&models.Goal{}).
		Where("district_id = ?", districtID).
		Pluck("id", &ids).Error
	return ids, err
}

func GetMetrics(c *fiber.Ctx) error {
	district, ok := findDistrictBySlug(c)
	if !ok {
		return districtNotFound(c)
	}

	goalIDs, err := districtGoalIDs(district.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch metrics",
		})
	}
	if len(goalIDs) == 0 {
		return c.JSON(fiber.Map{"metrics": []models.Metric{}})
	}

	var metrics []models.Metric
	if err := database.DB.Where("goal_id IN ?", goalIDs).
		Order("display_order ASC").
		Find(&metrics).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch metrics",
		})
	}

	return c.JSON(fiber.Map{"metrics": metrics})
}

// findDistrictMetric loads a metric and checks it hangs off one of the
// district's goals. Cross-district ids read as not found; the returned
// error carries the message for the caller's 404 response.
func findDistrictMetric(district *models.District, metricID uuid.UUID) (*models.Metric, error) {
	var metric models.Metric
	if err := database.DB.First(&metric, "id = ?", metricID).Error; err != nil {
		return nil, errors.New("Metric not found")
	}

	var goal models.Goal
	if err := database.DB.Where("id = ? AND district_id = ?", metric.GoalID, district.ID).
		First(&goal).Error; err != nil {
		return nil, errors.New("Metric not found in this district")
	}

	return &metric, nil
}

// clearPrimary unsets the primary flag on the goal's other metrics so at
// most one stays flagged. The flagged metric itself is already saved, so
// a failure here only leaves stale flags; log it and move on.
func clearPrimary(goalID uuid.UUID, keep uuid.UUID) {
	err := database.DB.Model(&models.Metric{}).
		Where("goal_id = ? AND id != ?", goalID, keep).
		Update("is_primary", false).Error
	if err != nil {
		log.Printf("failed to clear primary flags for goal %s: %v", goalID, err)
	}
}

// metricFromData maps the client payload onto a fresh row, applying the
// column defaults for the optional fields.
func metricFromData(goalID uuid.UUID, data models.MetricData) models.Metric {
	metric := models.Metric{
		GoalID:                goalID,
		Name:                  data.Name,
		Description:           data.Description,
		MetricType:            models.MetricTypeNumber,
		CurrentValue:          data.CurrentValue,
		TargetValue:           data.TargetValue,
		IsHigherBetter:        data.IsHigherBetter,
		RiskThresholdCritical: data.RiskThresholdCritical,
		RiskThresholdOffTrack: data.RiskThresholdOffTrack,
		DataPoints:            data.DataPoints,
		VisualizationConfig:   data.VisualizationConfig,
	}
	if data.MetricType != nil {
		metric.MetricType = *data.MetricType
	}
	if data.Unit != nil {
		metric.Unit = *data.Unit
	}
	if data.IsPrimary != nil {
		metric.IsPrimary = *data.IsPrimary
	}
	if data.DisplayOrder != nil {
		metric.DisplayOrder = *data.DisplayOrder
	}
	return metric
}

func CreateMetric(c *fiber.Ctx) error {
	district, ok := findDistrictBySlug(c)
	if !ok {
		return districtNotFound(c)
	}

	var req models.CreateMetricRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.MetricData.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Name is required",
		})
	}

	var goal models.Goal
	if err := database.DB.Where("id = ? AND district_id = ?", req.GoalID, district.ID).
		First(&goal).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Goal not found in this district",
		})
	}

	metric := metricFromData(goal.ID, req.MetricData)

	if err := database.DB.Create(&metric).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create metric",
		})
	}

	if metric.IsPrimary {
		clearPrimary(goal.ID, metric.ID)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"metric": metric})
}

func UpdateMetric(c *fiber.Ctx) error {
	district, ok := findDistrictBySlug(c)
	if !ok {
		return districtNotFound(c)
	}

	var req models.UpdateMetricRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.MetricID == uuid.Nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Metric ID is required",
		})
	}

	metric, err := findDistrictMetric(district, req.MetricID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}

	if req.Updates.Name != nil {
		if *req.Updates.Name == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Name cannot be empty",
			})
		}
		metric.Name = *req.Updates.Name
	}
	if req.Updates.Description != nil {
		metric.Description = req.Updates.Description
	}
	if req.Updates.MetricType != nil {
		metric.MetricType = *req.Updates.MetricType
	}
	if req.Updates.CurrentValue != nil {
		metric.CurrentValue = req.Updates.CurrentValue
	}
	if req.Updates.TargetValue != nil {
		metric.TargetValue = req.Updates.TargetValue
	}
	if req.Updates.Unit != nil {
		metric.Unit = *req.Updates.Unit
	}
	if req.Updates.IsPrimary != nil {
		metric.IsPrimary = *req.Updates.IsPrimary
	}
	if req.Updates.DisplayOrder != nil {
		metric.DisplayOrder = *req.Updates.DisplayOrder
	}
	if req.Updates.IsHigherBetter != nil {
		metric.IsHigherBetter = req.Updates.IsHigherBetter
	}
	if req.Updates.RiskThresholdCritical != nil {
		metric.RiskThresholdCritical = req.Updates.RiskThresholdCritical
	}
	if req.Updates.RiskThresholdOffTrack != nil {
		metric.RiskThresholdOffTrack = req.Updates.RiskThresholdOffTrack
	}
	if req.Updates.DataPoints != nil {
		metric.DataPoints = req.Updates.DataPoints
	}
	if req.Updates.VisualizationConfig != nil {
		metric.VisualizationConfig = req.Updates.VisualizationConfig
	}

	if err := database.DB.Save(metric).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update metric",
		})
	}

	if metric.IsPrimary {
		clearPrimary(metric.GoalID, metric.ID)
	}

	return c.JSON(fiber.Map{"metric": metric})
}

func DeleteMetric(c *fiber.Ctx) error {
	district, ok := findDistrictBySlug(c)
	if !ok {
		return districtNotFound(c)
	}

	metricID, err := uuid.Parse(c.Query("metricId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid metric ID",
		})
	}

	metric, lookupErr := findDistrictMetric(district, metricID)
	if lookupErr != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": lookupErr.Error()})
	}

	if err := database.DB.Delete(metric).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete metric",
		})
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// ReorderMetrics applies a batch of display_order changes in one request,
// so dragging cards around the editor costs one round trip. Ids outside
// the district are skipped rather than rejected.
func ReorderMetrics(c *fiber.Ctx) error {
	district, ok := findDistrictBySlug(c)
	if !ok {
		return districtNotFound(c)
	}

	var req models.ReorderMetricsRequest
	if err := c.BodyParser(&req); err != nil || req.Updates == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Updates array is required",
		})
	}

	goalIDs, err := districtGoalIDs(district.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to reorder metrics",
		})
	}

	txErr := database.DB.Transaction(func(tx *gorm.DB) error {
		for _, u := range req.Updates {
			if err := tx.Model(&models.Metric{}).
				Where("id = ? AND goal_id IN ?", u.ID, goalIDs).
				Update("display_order", u.DisplayOrder).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to reorder metrics",
		})
	}

	return c.JSON(fiber.Map{"success": true})
}

// BatchReplaceMetrics swaps out a goal's entire metric set atomically:
// the editor saves the whole list instead of diffing row by row.
func BatchReplaceMetrics(c *fiber.Ctx) error {
	district, ok := findDistrictBySlug(c)
	if !ok {
		return districtNotFound(c)
	}

	var req models.BatchMetricsRequest
	// An empty metrics array clears the goal; a missing one is a bad request.
	if err := c.BodyParser(&req); err != nil || req.GoalID == uuid.Nil || req.Metrics == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Goal ID and metrics are required",
		})
	}

	var goal models.Goal
	if err := database.DB.Where("id = ? AND district_id = ?", req.GoalID, district.ID).
		First(&goal).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Goal not found in this district",
		})
	}

	metrics := make([]models.Metric, 0, len(req.Metrics))
	primarySeen := false
	for _, data := range req.Metrics {
		if data.Name == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Name is required",
			})
		}
		metric := metricFromData(goal.ID, data)
		// At most one primary survives a replace; first flagged wins.
		if metric.IsPrimary {
			if primarySeen {
				metric.IsPrimary = false
			}
			primarySeen = true
		}
		metrics = append(metrics, metric)
	}

	txErr := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("goal_id = ?", goal.ID).Delete(&models.Metric{}).Error; err != nil {
			return err
		}
		if len(metrics) == 0 {
			return nil
		}
		return tx.Create(&metrics).Error
	})
	if txErr != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to replace metrics",
		})
	}

	return c.JSON(fiber.Map{"metrics": metrics})
}
