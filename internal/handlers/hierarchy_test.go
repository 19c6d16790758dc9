package handlers_test

import (
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/mwhite/stratplan-api/internal/handlers"
	"github.com/mwhite/stratplan-api/internal/models"
	"github.com/mwhite/stratplan-api/internal/plan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHierarchy(t *testing.T) {
	app := setupApp(t)
	token := adminToken(t)
	createDistrict(t, app, token, "plan")

	objective := createGoal(t, app, token, "plan", nil, "Student success")
	goal := createGoal(t, app, token, "plan", &objective.ID, "Early literacy")
	sub := createGoal(t, app, token, "plan", &goal.ID, "Third grade reading")
	other := createGoal(t, app, token, "plan", nil, "Community trust")

	cur, target := 75.0, 100.0
	mtype := models.MetricTypePercent
	yes := true
	createMetric(t, app, token, "plan", sub.ID, models.MetricData{
		Name:         "Reading at grade level",
		MetricType:   &mtype,
		CurrentValue: &cur,
		TargetValue:  &target,
		IsPrimary:    &yes,
	})

	resp := doJSON(t, app, fiber.MethodGet, "/api/districts/plan/hierarchy", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		District  models.District           `json:"district"`
		Hierarchy []*handlers.DecoratedGoal `json:"hierarchy"`
	}
	decode(t, resp, &body)

	assert.Equal(t, "plan", body.District.Slug)
	require.Len(t, body.Hierarchy, 2)
	assert.Equal(t, objective.ID, body.Hierarchy[0].ID)
	assert.Equal(t, other.ID, body.Hierarchy[1].ID)

	// objective -> goal -> sub-goal chain intact
	require.Len(t, body.Hierarchy[0].Children, 1)
	require.Len(t, body.Hierarchy[0].Children[0].Children, 1)
	leaf := body.Hierarchy[0].Children[0].Children[0]
	assert.Equal(t, sub.ID, leaf.ID)

	// leaf decorations from its own metric
	assert.InDelta(t, 75, leaf.Progress, 1e-9)
	assert.True(t, leaf.HasMetricData)
	assert.Equal(t, plan.StatusAtRisk, leaf.Status)
	require.NotNil(t, leaf.PrimaryDisplay)
	assert.Equal(t, "75%", leaf.PrimaryDisplay.Value)
	assert.Equal(t, "Reading at grade level", leaf.PrimaryDisplay.Description)

	// the objective rolls the descendant metric up for status but has no
	// direct or immediate-child metric data for progress
	top := body.Hierarchy[0]
	assert.Equal(t, plan.StatusAtRisk, top.Status)
	assert.False(t, top.HasMetricData)
	assert.Zero(t, top.Progress)

	// goal with no metrics anywhere reports no data
	assert.Equal(t, plan.StatusNoData, body.Hierarchy[1].Status)
	assert.False(t, body.Hierarchy[1].HasMetricData)
}

func TestGetHierarchy_EmptyDistrict(t *testing.T) {
	app := setupApp(t)
	token := adminToken(t)
	createDistrict(t, app, token, "blank")

	resp := doJSON(t, app, fiber.MethodGet, "/api/districts/blank/hierarchy", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Hierarchy []*handlers.DecoratedGoal `json:"hierarchy"`
	}
	decode(t, resp, &body)
	assert.Empty(t, body.Hierarchy)
}
