package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/mwhite/stratplan-api/internal/config"
	"github.com/mwhite/stratplan-api/internal/database"
	"github.com/mwhite/stratplan-api/internal/middleware"
	"github.com/mwhite/stratplan-api/internal/models"
	"github.com/mwhite/stratplan-api/internal/routes"
	"github.com/stretchr/testify/require"
)

var testSeq int

// setupApp wires the full stack against a private in-memory SQLite
// database, one per test so state never leaks between them.
func setupApp(t *testing.T) *fiber.App {
	t.Helper()

	testSeq++
	cfg := &config.Config{
		DatabaseURL: fmt.Sprintf("file:handlers_test_%s_%d?mode=memory&cache=shared",
			strings.ReplaceAll(t.Name(), "/", "_"), testSeq),
	}

	require.NoError(t, database.Connect(cfg))
	require.NoError(t, database.Migrate())

	app := fiber.New()
	routes.Setup(app)
	return app
}

// adminToken mints a valid bearer token; route protection only verifies
// the signature, so no user row is needed.
func adminToken(t *testing.T) string {
	t.Helper()
	token, err := middleware.GenerateToken(uuid.New(), "admin@district.test")
	require.NoError(t, err)
	return token
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body interface{}) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(buf)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

// createDistrict is shared setup for the goal/metric tests.
func createDistrict(t *testing.T, app *fiber.App, token, slug string) models.District {
	t.Helper()
	resp := doJSON(t, app, fiber.MethodPost, "/api/districts", token, models.CreateDistrictRequest{
		Name:       "Test District " + slug,
		Slug:       slug,
		AdminEmail: "admin@district.test",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var body struct {
		District models.District `json:"district"`
	}
	decode(t, resp, &body)
	return body.District
}

func createGoal(t *testing.T, app *fiber.App, token, slug string, parentID *uuid.UUID, title string) models.Goal {
	t.Helper()
	resp := doJSON(t, app, fiber.MethodPost, "/api/districts/"+slug+"/goals", token, models.CreateGoalRequest{
		ParentID: parentID,
		GoalData: models.GoalData{Title: title},
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var body struct {
		Goal models.Goal `json:"goal"`
	}
	decode(t, resp, &body)
	return body.Goal
}

func createMetric(t *testing.T, app *fiber.App, token, slug string, goalID uuid.UUID, data models.MetricData) models.Metric {
	t.Helper()
	resp := doJSON(t, app, fiber.MethodPost, "/api/districts/"+slug+"/metrics", token, models.CreateMetricRequest{
		GoalID:     goalID,
		MetricData: data,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var body struct {
		Metric models.Metric `json:"metric"`
	}
	decode(t, resp, &body)
	return body.Metric
}
