package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/mwhite/stratplan-api/internal/database"
	"github.com/mwhite/stratplan-api/internal/models"
	"github.com/mwhite/stratplan-api/internal/plan"
)

// DecoratedGoal is a hierarchy node with the roll-ups the dashboard cards
// need precomputed: goal progress, overall status, and the headline metric
// display.
type DecoratedGoal struct {
	models.Goal
	Metrics        []models.Metric      `json:"metrics"`
	Children       []*DecoratedGoal     `json:"children"`
	Progress       float64              `json:"progress"`
	HasMetricData  bool                 `json:"hasMetricData"`
	Status         plan.Status          `json:"status"`
	PrimaryDisplay *plan.PrimaryDisplay `json:"primaryDisplay,omitempty"`
}

func decorate(node *plan.GoalNode) *DecoratedGoal {
	progress, hasData := plan.Progress(node)
	out := &DecoratedGoal{
		Goal:          node.Goal,
		Metrics:       node.Metrics,
		Children:      []*DecoratedGoal{},
		Progress:      progress,
		HasMetricData: hasData,
		Status:        plan.OverallStatus(node),
	}
	if display, ok := plan.Display(node); ok {
		out.PrimaryDisplay = &display
	}
	for _, child := range node.Children {
		out.Children = append(out.Children, decorate(child))
	}
	return out
}

// districtForest loads the district's goals and metrics and rebuilds the
// decorated tree from the flat rows.
func districtForest(districtID uuid.UUID) ([]*DecoratedGoal, error) {
	var goals []models.Goal
	if err := database.DB.Where("district_id = ?", districtID).Find(&goals).Error; err != nil {
		return nil, err
	}

	var metrics []models.Metric
	if len(goals) > 0 {
		goalIDs := make([]uuid.UUID, len(goals))
		for i, g := range goals {
			goalIDs[i] = g.ID
		}
		if err := database.DB.Where("goal_id IN ?", goalIDs).Find(&metrics).Error; err != nil {
			return nil, err
		}
	}

	forest := plan.Build(goals, metrics)
	decorated := make([]*DecoratedGoal, 0, len(forest))
	for _, root := range forest {
		decorated = append(decorated, decorate(root))
	}
	return decorated, nil
}

// GetHierarchy returns the district's full goal forest with metrics
// attached and progress/status decorations applied.
func GetHierarchy(c *fiber.Ctx) error {
	district, ok := findDistrictBySlug(c)
	if !ok {
		return districtNotFound(c)
	}

	decorated, err := districtForest(district.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch goals",
		})
	}

	return c.JSON(fiber.Map{
		"district":  district,
		"hierarchy": decorated,
	})
}
