package chainops

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	bridgesvc "carbon-backend/internal/application/bridge"
	"carbon-backend/internal/application/certificates"
	"carbon-backend/internal/chain"
	"carbon-backend/internal/domain"
	"carbon-backend/internal/ledger"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupChainopsTest(t *testing.T) (*fiber.App, *ledger.Store, *domain.CreditClass) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.Org{}, &domain.Project{}, &domain.CreditClass{},
		&domain.Holding{}, &domain.Transfer{}, &domain.Retirement{},
		&domain.TokenMint{}, &domain.EvidenceAnchor{},
	))
	store := ledger.New(db)
	ctx := context.Background()

	org := &domain.Org{Name: "Forest Co", Role: domain.RoleIssuer}
	require.NoError(t, store.CreateOrg(ctx, org))
	project := &domain.Project{Code: "VCS-0009", Type: "FORESTRY", OrgID: org.OrgID}
	require.NoError(t, store.CreateProject(ctx, project))
	class := &domain.CreditClass{
		ProjectID: project.ID, Vintage: 2024,
		Quantity: 1000, SerialBase: 1, SerialTop: 1000,
	}
	require.NoError(t, store.CreateClass(ctx, class))

	gateway := chain.NewMockGateway()
	certs := &certificates.Generator{Ledger: store, ChainID: 31337}
	bridge := &bridgesvc.Service{
		Ledger:             store,
		Gateway:            gateway,
		Certs:              certs,
		ChainID:            31337,
		DefaultMintAddress: "0x1111111111111111111111111111111111111111",
	}
	h := &Handlers{Bridge: bridge, Certs: certs, Gateway: gateway}

	app := fiber.New()
	app.Post("/chain/finalize-mint", h.FinalizeMint)
	app.Get("/chain/status", h.Status)
	app.Get("/certificates/:type/:id", h.Certificate)
	return app, store, class
}

func postJSON(t *testing.T, app *fiber.App, path string, payload map[string]interface{}) *json.Decoder {
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest("POST", path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	require.Equal(t, 200, resp.StatusCode)
	return json.NewDecoder(resp.Body)
}

func TestFinalizeMint_EndToEnd(t *testing.T) {
	app, store, class := setupChainopsTest(t)

	var result map[string]interface{}
	postJSON(t, app, "/chain/finalize-mint", map[string]interface{}{
		"class_id": class.ID.String(),
	}).Decode(&result)
	assert.Equal(t, "success", result["status"])
	data, _ := result["data"].(map[string]interface{})
	assert.NotEmpty(t, data["tx_hash"])

	got, err := store.ClassByID(context.Background(), class.ID)
	require.NoError(t, err)
	assert.True(t, got.Minted())
}

func TestFinalizeMint_SecondCallConflicts(t *testing.T) {
	app, _, class := setupChainopsTest(t)

	body, _ := json.Marshal(map[string]interface{}{"class_id": class.ID.String()})
	req := httptest.NewRequest("POST", "/chain/finalize-mint", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	req = httptest.NewRequest("POST", "/chain/finalize-mint", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 409, resp.StatusCode)
}

func TestFinalizeMint_BadInputs(t *testing.T) {
	app, _, _ := setupChainopsTest(t)

	body, _ := json.Marshal(map[string]interface{}{})
	req := httptest.NewRequest("POST", "/chain/finalize-mint", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)

	body, _ = json.Marshal(map[string]interface{}{"class_id": uuid.New().String()})
	req = httptest.NewRequest("POST", "/chain/finalize-mint", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)
}

func TestStatus_ReportsMockDisconnected(t *testing.T) {
	app, _, _ := setupChainopsTest(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/chain/status", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	data, _ := result["data"].(map[string]interface{})
	assert.Equal(t, false, data["connected"])
}

func TestCertificate_MintLookup(t *testing.T) {
	app, _, class := setupChainopsTest(t)

	var mint map[string]interface{}
	postJSON(t, app, "/chain/finalize-mint", map[string]interface{}{
		"class_id": class.ID.String(),
	}).Decode(&mint)

	resp, err := app.Test(httptest.NewRequest("GET", "/certificates/mint/"+class.ID.String(), nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	data, _ := result["data"].(map[string]interface{})
	assert.Equal(t, "MINT", data["type"])
	assert.Equal(t, class.ID.String(), data["class_id"])
}

func TestCertificate_UnknownType(t *testing.T) {
	app, _, _ := setupChainopsTest(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/certificates/bogus/"+uuid.New().String(), nil))
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}
