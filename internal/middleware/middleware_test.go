package middleware

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Bdsolutionconsulting/linkhood/internal/config"
	"github.com/Bdsolutionconsulting/linkhood/internal/identity"
	"github.com/Bdsolutionconsulting/linkhood/internal/models"
	"github.com/Bdsolutionconsulting/linkhood/internal/testutil"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func signed(t *testing.T, sub uuid.UUID, email string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   sub.String(),
		"email": email,
		"exp":   time.Now().Add(time.Hour).Unix(),
	})
	s, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func get(t *testing.T, app *fiber.App, token string, headers map[string]string) int {
	t.Helper()
	req := httptest.NewRequest("GET", "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp.StatusCode
}

func TestJWTProtected(t *testing.T) {
	cfg := &config.Config{JWTSecret: secret}
	app := fiber.New()
	app.Get("/", JWTProtected(cfg), func(c *fiber.Ctx) error {
		id, err := identity.GetUserID(c)
		if err != nil {
			return err
		}
		return c.SendString(id.String())
	})

	assert.Equal(t, fiber.StatusUnauthorized, get(t, app, "", nil))
	assert.Equal(t, fiber.StatusUnauthorized, get(t, app, "garbage", nil))
	assert.Equal(t, fiber.StatusOK, get(t, app, signed(t, uuid.New(), "a@b.sn"), nil))
}

func TestOptionalJWT(t *testing.T) {
	cfg := &config.Config{JWTSecret: secret}
	app := fiber.New()
	app.Get("/", OptionalJWT(cfg), func(c *fiber.Ctx) error {
		if identity.IsAuthenticated(c) {
			return c.SendStatus(fiber.StatusOK)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	assert.Equal(t, fiber.StatusNoContent, get(t, app, "", nil))
	assert.Equal(t, fiber.StatusNoContent, get(t, app, "garbage", nil))
	assert.Equal(t, fiber.StatusOK, get(t, app, signed(t, uuid.New(), "a@b.sn"), nil))
}

func TestAdminRequired(t *testing.T) {
	db := testutil.NewDB(t)
	admin := testutil.CreateUser(t, db, "admin@linkhood.sn", "Admin", models.RoleAdmin)
	super := testutil.CreateUser(t, db, "super@linkhood.sn", "Super", models.RoleSuperAdmin)
	resident := testutil.CreateUser(t, db, "resident@linkhood.sn", "Resident", models.RoleUser)
	listed := testutil.CreateUser(t, db, "Listed@linkhood.sn", "Listed", models.RoleUser)

	cfg := &config.Config{
		JWTSecret:   secret,
		AdminEmails: " listed@linkhood.sn ",
		AdminToken:  "ops-token",
	}
	app := fiber.New()
	app.Get("/", OptionalJWT(cfg), AdminRequired(db, cfg), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	assert.Equal(t, fiber.StatusOK, get(t, app, signed(t, admin.ID, admin.Email), nil))
	assert.Equal(t, fiber.StatusOK, get(t, app, signed(t, super.ID, super.Email), nil))
	assert.Equal(t, fiber.StatusOK, get(t, app, signed(t, listed.ID, listed.Email), nil))
	assert.Equal(t, fiber.StatusForbidden, get(t, app, signed(t, resident.ID, resident.Email), nil))
	assert.Equal(t, fiber.StatusUnauthorized, get(t, app, "", nil))
	assert.Equal(t, fiber.StatusOK, get(t, app, "", map[string]string{"X-Admin-Token": "ops-token"}))
	assert.Equal(t, fiber.StatusUnauthorized, get(t, app, "", map[string]string{"X-Admin-Token": "wrong"}))
}

func TestSecurityHeaders(t *testing.T) {
	app := fiber.New()
	app.Use(SecurityHeaders())
	app.Get("/", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", resp.Header.Get("X-Frame-Options"))
}

func TestRateLimit(t *testing.T) {
	app := fiber.New()
	app.Use(RateLimit(2))
	app.Get("/", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	assert.Equal(t, fiber.StatusOK, get(t, app, "", nil))
	assert.Equal(t, fiber.StatusOK, get(t, app, "", nil))
	assert.Equal(t, fiber.StatusTooManyRequests, get(t, app, "", nil))
}
