package role

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
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

type testEnv struct {
	app   *fiber.App
	db    *gorm.DB
	auth  *auth.Service
	token string
}

func setupEnv(t *testing.T) *testEnv {
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

	// Seed every known permission so role payloads can reference them.
	role := models.Role{Name: "Tester"}
	require.NoError(t, db.Create(&role).Error)

	for _, name := range auth.All {
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

	return &testEnv{app: app, db: db, auth: authService, token: token}
}

func (e *testEnv) do(t *testing.T, method, target string, payload any) *http.Response {
	t.Helper()

	var req *http.Request
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)

		req = httptest.NewRequest(method, target, strings.NewReader(string(raw)))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}

	req.Header.Set("Authorization", "Bearer "+e.token)

	resp, err := e.app.Test(req, -1)
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

func TestCreateWithPermissions(t *testing.T) {
	env := setupEnv(t)

	resp := env.do(t, http.MethodPost, Path, fiber.Map{
		"name":        "Manager",
		"permissions": []string{auth.PermBuilderList, auth.PermBuilderCreate},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	out := decodeBody(t, resp)
	assert.Equal(t, "success", out["status"])
	assert.Equal(t, "Role created successfully", out["message"])

	data, ok := out["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Manager", data["name"])

	perms, ok := data["permissions"].([]any)
	require.True(t, ok)
	assert.Len(t, perms, 2)
}

func TestCreateRejectsBadPayloads(t *testing.T) {
	env := setupEnv(t)

	tests := []struct {
		name     string
		payload  fiber.Map
		errorKey string
	}{
		{
			name:     "missing name",
			payload:  fiber.Map{"permissions": []string{auth.PermBuilderList}},
			errorKey: "name",
		},
		{
			name:     "duplicate name",
			payload:  fiber.Map{"name": "Tester"},
			errorKey: "name",
		},
		{
			name:     "unknown permission",
			payload:  fiber.Map{"name": "Manager", "permissions": []string{"no-such-permission"}},
			errorKey: "permissions",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp := env.do(t, http.MethodPost, Path, tc.payload)
			require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

			out := decodeBody(t, resp)
			errs, ok := out["errors"].(map[string]any)
			require.True(t, ok)
			assert.Contains(t, errs, tc.errorKey)
		})
	}
}

func TestUpdateReplacesPermissionSet(t *testing.T) {
	env := setupEnv(t)

	resp := env.do(t, http.MethodPost, Path, fiber.Map{
		"name":        "Manager",
		"permissions": []string{auth.PermBuilderList, auth.PermBuilderCreate},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	out := decodeBody(t, resp)
	data := out["data"].(map[string]any)
	id := strconv.Itoa(int(data["id"].(float64)))

	resp = env.do(t, http.MethodPut, Path+"/"+id, fiber.Map{
		"name":        "Sales Manager",
		"permissions": []string{auth.PermPropertyList},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	out = decodeBody(t, resp)
	assert.Equal(t, "Role updated successfully", out["message"])

	data = out["data"].(map[string]any)
	assert.Equal(t, "Sales Manager", data["name"])

	perms, ok := data["permissions"].([]any)
	require.True(t, ok)
	require.Len(t, perms, 1)

	perm, ok := perms[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, auth.PermPropertyList, perm["name"])
}

// Granting a permission through the API must take effect without a
// process restart: the handler invalidates the permission cache.
func TestUpdateInvalidatesPermissionCache(t *testing.T) {
	env := setupEnv(t)

	resp := env.do(t, http.MethodPost, Path, fiber.Map{"name": "Manager"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	out := decodeBody(t, resp)
	data := out["data"].(map[string]any)
	roleID := uint(data["id"].(float64))
	id := strconv.Itoa(int(roleID))

	member := models.User{
		Name:     "Member",
		Email:    "member@example.com",
		Password: models.HashPassword("secret123"),
		Status:   models.StatusActive,
	}
	require.NoError(t, env.db.Create(&member).Error)
	require.NoError(t, env.db.Create(&models.UserRole{UserID: member.ID, RoleID: roleID}).Error)

	// Warm the cache with the empty permission set.
	ok, err := env.auth.HasPermission(member.ID, auth.PermBuilderList)
	require.NoError(t, err)
	assert.False(t, ok)

	resp = env.do(t, http.MethodPut, Path+"/"+id, fiber.Map{
		"name":        "Manager",
		"permissions": []string{auth.PermBuilderList},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	ok, err = env.auth.HasPermission(member.ID, auth.PermBuilderList)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestDeleteProtectsSuperAdmin(t *testing.T) {
	env := setupEnv(t)

	superAdmin := models.Role{Name: models.SuperAdminRoleName}
	require.NoError(t, env.db.Create(&superAdmin).Error)

	resp := env.do(t, http.MethodDelete, Path+"/"+strconv.Itoa(int(superAdmin.ID)), nil)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	out := decodeBody(t, resp)
	assert.Equal(t, "Super Admin role cannot be deleted", out["message"])

	var count int64
	require.NoError(t, env.db.Model(&models.Role{}).Where("name = ?", models.SuperAdminRoleName).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestDeleteRole(t *testing.T) {
	env := setupEnv(t)

	resp := env.do(t, http.MethodPost, Path, fiber.Map{
		"name":        "Temp",
		"permissions": []string{auth.PermBuilderList},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	out := decodeBody(t, resp)
	data := out["data"].(map[string]any)
	id := strconv.Itoa(int(data["id"].(float64)))

	resp = env.do(t, http.MethodDelete, Path+"/"+id, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	out = decodeBody(t, resp)
	assert.Equal(t, "Role deleted successfully", out["message"])

	resp = env.do(t, http.MethodGet, Path+"/"+id, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestListsRolesAndPermissions(t *testing.T) {
	env := setupEnv(t)

	resp := env.do(t, http.MethodGet, Path, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	out := decodeBody(t, resp)
	data, ok := out["data"].([]any)
	require.True(t, ok)
	require.Len(t, data, 1)

	first, ok := data[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Tester", first["name"])

	resp = env.do(t, http.MethodGet, PermissionsPath, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	out = decodeBody(t, resp)
	perms, ok := out["data"].([]any)
	require.True(t, ok)
	assert.Len(t, perms, len(auth.All))
}
