package classes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	classsvc "carbon-backend/internal/application/classes"
	"carbon-backend/internal/domain"
	"carbon-backend/internal/ledger"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupClassesTest(t *testing.T) (*fiber.App, *domain.Project) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.Org{}, &domain.Project{}, &domain.CreditClass{},
	))
	store := ledger.New(db)
	ctx := context.Background()

	org := &domain.Org{Name: "Forest Co", Role: domain.RoleIssuer}
	require.NoError(t, store.CreateOrg(ctx, org))
	project := &domain.Project{Code: "VCS-0008", Type: "FORESTRY", OrgID: org.OrgID}
	require.NoError(t, store.CreateProject(ctx, project))

	h := &Handlers{Service: &classsvc.Service{Ledger: store}}
	app := fiber.New()
	app.Post("/classes", h.CreateClass)
	app.Get("/classes", h.ListClasses)
	app.Get("/classes/:id", h.ViewClass)
	return app, project
}

func TestCreateClass_Created(t *testing.T) {
	app, project := setupClassesTest(t)

	body, _ := json.Marshal(map[string]interface{}{
		"project_id": project.ID.String(),
		"vintage":    2024,
		"quantity":   10000,
	})
	req := httptest.NewRequest("POST", "/classes", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 201, resp.StatusCode)

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	assert.Equal(t, "success", result["status"])
	data, _ := result["data"].(map[string]interface{})
	assert.Equal(t, float64(1), data["serial_base"])
	assert.Equal(t, float64(10000), data["serial_top"])
	assert.Nil(t, data["token_id"])
}

func TestCreateClass_ValidationError(t *testing.T) {
	app, project := setupClassesTest(t)

	body, _ := json.Marshal(map[string]interface{}{
		"project_id": project.ID.String(),
		"vintage":    2024,
		"quantity":   0,
	})
	req := httptest.NewRequest("POST", "/classes", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	assert.Equal(t, "error", result["status"])
}

func TestViewClass_InvalidUUID(t *testing.T) {
	app, _ := setupClassesTest(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/classes/not-a-uuid", nil))
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestViewClass_NotFound(t *testing.T) {
	app, _ := setupClassesTest(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/classes/"+uuid.New().String(), nil))
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)
}

func TestListClasses_FilterByProject(t *testing.T) {
	app, project := setupClassesTest(t)

	body, _ := json.Marshal(map[string]interface{}{
		"project_id": project.ID.String(), "vintage": 2024, "quantity": 100,
	})
	req := httptest.NewRequest("POST", "/classes", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	_, err := app.Test(req)
	require.NoError(t, err)

	resp, err := app.Test(httptest.NewRequest("GET", "/classes?project_id="+project.ID.String(), nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	data, _ := result["data"].([]interface{})
	assert.Len(t, data, 1)

	resp, err = app.Test(httptest.NewRequest("GET", "/classes?project_id="+uuid.New().String(), nil))
	require.NoError(t, err)
	var empty map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&empty)
	emptyData, _ := empty["data"].([]interface{})
	assert.Empty(t, emptyData)
}
