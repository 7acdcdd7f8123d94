package category

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/estatedesk/estatedesk/internal/auth"
	"github.com/estatedesk/estatedesk/internal/config"
	"github.com/estatedesk/estatedesk/internal/db/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to open sqlite in-memory db")

	err = db.AutoMigrate(
		&models.Category{},
		&models.PropertyType{},
		&models.Permission{},
		&models.Role{},
		&models.RolePermission{},
		&models.User{},
		&models.UserRole{},
	)
	require.NoError(t, err, "failed to migrate test database")

	return db
}

func newTestConfig() *config.Config {
	return &config.Config{
		Title: "test",
		Webserver: config.Webserver{
			URL:  "http://localhost",
			Port: 3000,
		},
		Auth: config.Auth{Secret: "test-secret", TokenTTLHours: 1},
	}
}

// setupHandler wires the handler into a fresh app and returns a bearer
// token for a user holding the given permissions.
func setupHandler(t *testing.T, permissions []string) (*fiber.App, string) {
	t.Helper()

	db := newTestDB(t)
	cfg := newTestConfig()
	app := fiber.New()
	authService := auth.NewService(db, cfg.Auth.Secret, time.Hour)

	role := models.Role{Name: "Tester"}
	require.NoError(t, db.Create(&role).Error)

	for _, name := range permissions {
		p := models.Permission{Name: name, GuardName: "api"}
		require.NoError(t, db.Create(&p).Error)
		require.NoError(t, db.Create(&models.RolePermission{RoleID: role.ID, PermissionID: p.ID}).Error)
	}

	user := models.User{
		Name:     "Tester",
		Email:    "tester@example.com",
		Password: models.HashPassword("secret123"),
		Status:   models.StatusActive,
	}
	require.NoError(t, db.Create(&user).Error)
	require.NoError(t, db.Create(&models.UserRole{UserID: user.ID, RoleID: role.ID}).Error)

	var s Service
	s.Init(app, cfg, db, authService)

	token, err := authService.IssueToken(user.ID, user.Email)
	require.NoError(t, err)

	return app, token
}

func doRequest(t *testing.T, app *fiber.App, method, target, token string, form url.Values) *http.Response {
	t.Helper()

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err, "app.Test failed")

	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()

	defer resp.Body.Close()

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))

	return out
}

func allCategoryPermissions() []string {
	return []string{
		auth.PermCategoryList,
		auth.PermCategoryCreate,
		auth.PermCategoryEdit,
		auth.PermCategoryDelete,
	}
}

func TestUnauthenticated(t *testing.T) {
	app, _ := setupHandler(t, allCategoryPermissions())

	resp := doRequest(t, app, http.MethodGet, Path, "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "error", body["status"])
	assert.Equal(t, "Unauthenticated", body["message"])
}

func TestForbiddenWithoutPermission(t *testing.T) {
	// The user can list but not create.
	app, token := setupHandler(t, []string{auth.PermCategoryList})

	resp := doRequest(t, app, http.MethodPost, Path, token, url.Values{
		"name": {"Residential"},
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "error", body["status"])
}

func TestCreateAndDuplicate(t *testing.T) {
	app, token := setupHandler(t, allCategoryPermissions())

	resp := doRequest(t, app, http.MethodPost, Path, token, url.Values{
		"name":   {"Residential"},
		"status": {"active"},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "success", body["status"])
	assert.Equal(t, "Category created successfully", body["message"])
	require.Contains(t, body, "results")

	// The same name again must be rejected with a field-keyed error.
	resp = doRequest(t, app, http.MethodPost, Path, token, url.Values{
		"name": {"Residential"},
	})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	body = decodeBody(t, resp)
	assert.Equal(t, "error", body["status"])

	errs, ok := body["errors"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, errs, "name")
}

func TestCreateValidation(t *testing.T) {
	app, token := setupHandler(t, allCategoryPermissions())

	resp := doRequest(t, app, http.MethodPost, Path, token, url.Values{
		"status": {"bogus"},
	})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	body := decodeBody(t, resp)
	errs, ok := body["errors"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, errs, "name")
	assert.Contains(t, errs, "status")
}

func TestListFilterAndPaginate(t *testing.T) {
	app, token := setupHandler(t, allCategoryPermissions())

	for _, name := range []string{"Residential", "Commercial", "Industrial"} {
		resp := doRequest(t, app, http.MethodPost, Path, token, url.Values{"name": {name}})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		resp.Body.Close()
	}

	// Unpaginated listing returns the full set, name ascending.
	resp := doRequest(t, app, http.MethodGet, Path, token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	results, ok := body["results"].([]any)
	require.True(t, ok)
	require.Len(t, results, 3)

	first, ok := results[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Commercial", first["name"])

	// Search narrows the set.
	resp = doRequest(t, app, http.MethodGet, Path+"?search=dust", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body = decodeBody(t, resp)
	results, ok = body["results"].([]any)
	require.True(t, ok)
	assert.Len(t, results, 1)

	// Asking for a page size flips the payload to paginator shape.
	resp = doRequest(t, app, http.MethodGet, Path+"?page=1&per_page=2", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body = decodeBody(t, resp)
	paged, ok := body["results"].(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 1, paged["current_page"])
	assert.EqualValues(t, 2, paged["per_page"])
	assert.EqualValues(t, 3, paged["total"])
	assert.EqualValues(t, 2, paged["last_page"])

	data, ok := paged["data"].([]any)
	require.True(t, ok)
	assert.Len(t, data, 2)

	// An explicit zero page size keeps the unpaginated array shape.
	resp = doRequest(t, app, http.MethodGet, Path+"?per_page=0", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body = decodeBody(t, resp)
	results, ok = body["results"].([]any)
	require.True(t, ok)
	assert.Len(t, results, 3)
}

func TestShowUpdateDelete(t *testing.T) {
	app, token := setupHandler(t, allCategoryPermissions())

	resp := doRequest(t, app, http.MethodPost, Path, token, url.Values{"name": {"Residential"}})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	body := decodeBody(t, resp)
	created, ok := body["results"].(map[string]any)
	require.True(t, ok)

	id := created["id"].(float64)
	target := Path + "/" + strconv.Itoa(int(id))

	// Show
	resp = doRequest(t, app, http.MethodGet, target, token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// Update
	resp = doRequest(t, app, http.MethodPut, target, token, url.Values{
		"name":   {"Housing"},
		"status": {"inactive"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body = decodeBody(t, resp)
	updated, ok := body["results"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Housing", updated["name"])
	assert.Equal(t, "inactive", updated["status"])

	// Delete
	resp = doRequest(t, app, http.MethodDelete, target, token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body = decodeBody(t, resp)
	assert.Equal(t, "Category deleted successfully", body["message"])

	// Gone now.
	resp = doRequest(t, app, http.MethodGet, target, token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}
