package login

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
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

func setupApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to open sqlite in-memory db")

	err = db.AutoMigrate(
		&models.Permission{},
		&models.Role{},
		&models.RolePermission{},
		&models.User{},
		&models.UserRole{},
	)
	require.NoError(t, err, "failed to migrate test database")

	cfg := &config.Config{
		Title: "test",
		Webserver: config.Webserver{
			URL:  "http://localhost",
			Port: 3000,
		},
		Auth: config.Auth{Secret: "test-secret", TokenTTLHours: 1},
	}

	app := fiber.New()
	authService := auth.NewService(db, cfg.Auth.Secret, time.Hour)

	var s Service
	s.Init(app, cfg, db, authService)

	return app, db
}

func seedUser(t *testing.T, db *gorm.DB, status models.Status) models.User {
	t.Helper()

	user := models.User{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: models.HashPassword("secret123"),
		Status:   status,
	}
	require.NoError(t, db.Create(&user).Error)

	return user
}

func postLogin(t *testing.T, app *fiber.App, form url.Values) *http.Response {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, LoginPath, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

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

func TestLogin(t *testing.T) {
	app, db := setupApp(t)
	seedUser(t, db, models.StatusActive)

	resp := postLogin(t, app, url.Values{
		"email":    {"alice@example.com"},
		"password": {"secret123"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	out := decodeBody(t, resp)
	assert.Equal(t, "success", out["status"])

	data, ok := out["data"].(map[string]any)
	require.True(t, ok)

	token, _ := data["token"].(string)
	assert.NotEmpty(t, token)

	user, ok := data["user"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "alice@example.com", user["email"])
	assert.NotContains(t, user, "password")

	// The issued token opens the current-user endpoint.
	req := httptest.NewRequest(http.MethodGet, MePath, nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	out = decodeBody(t, resp)
	data, ok = out["data"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, data, "permissions")
}

func TestLoginFailures(t *testing.T) {
	app, db := setupApp(t)
	seedUser(t, db, models.StatusActive)

	disabled := models.User{
		Name:     "Bob",
		Email:    "bob@example.com",
		Password: models.HashPassword("secret123"),
		Status:   models.StatusInactive,
	}
	require.NoError(t, db.Create(&disabled).Error)

	testCases := []struct {
		name           string
		form           url.Values
		expectedStatus int
	}{
		{
			name: "wrong password",
			form: url.Values{
				"email":    {"alice@example.com"},
				"password": {"wrong"},
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name: "unknown email",
			form: url.Values{
				"email":    {"nobody@example.com"},
				"password": {"secret123"},
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name: "inactive account",
			form: url.Values{
				"email":    {"bob@example.com"},
				"password": {"secret123"},
			},
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "missing fields",
			form:           url.Values{},
			expectedStatus: http.StatusUnprocessableEntity,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			resp := postLogin(t, app, tc.form)
			assert.Equal(t, tc.expectedStatus, resp.StatusCode)

			out := decodeBody(t, resp)
			assert.Equal(t, "error", out["status"])
		})
	}
}

func TestMeRequiresToken(t *testing.T) {
	app, _ := setupApp(t)

	req := httptest.NewRequest(http.MethodGet, MePath, nil)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLogout(t *testing.T) {
	app, db := setupApp(t)
	user := seedUser(t, db, models.StatusActive)

	resp := postLogin(t, app, url.Values{
		"email":    {user.Email},
		"password": {"secret123"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	out := decodeBody(t, resp)
	token := out["data"].(map[string]any)["token"].(string)

	req := httptest.NewRequest(http.MethodPost, LogoutPath, nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	out = decodeBody(t, resp)
	assert.Equal(t, "Logged out successfully", out["message"])
}
