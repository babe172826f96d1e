package identity

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/Bdsolutionconsulting/linkhood/internal/models"
	"github.com/Bdsolutionconsulting/linkhood/internal/testutil"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runWithClaims(t *testing.T, claims jwt.MapClaims, fn func(c *fiber.Ctx) error) {
	t.Helper()
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		if claims != nil {
			c.Locals(LocalsKey, jwt.NewWithClaims(jwt.SigningMethodHS256, claims))
		}
		return fn(c)
	})
	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestGetUserID(t *testing.T) {
	id := uuid.New()
	runWithClaims(t, jwt.MapClaims{"sub": id.String(), "email": "a@b.sn"}, func(c *fiber.Ctx) error {
		got, err := GetUserID(c)
		assert.NoError(t, err)
		assert.Equal(t, id, got)
		assert.Equal(t, "a@b.sn", GetEmail(c))
		assert.True(t, IsAuthenticated(c))
		return nil
	})
}

func TestGetUserID_NoToken(t *testing.T) {
	runWithClaims(t, nil, func(c *fiber.Ctx) error {
		_, err := GetUserID(c)
		assert.ErrorIs(t, err, ErrNoToken)
		assert.Equal(t, "", GetEmail(c))
		assert.False(t, IsAuthenticated(c))
		return nil
	})
}

func TestGetUserID_BadSub(t *testing.T) {
	runWithClaims(t, jwt.MapClaims{"sub": 42}, func(c *fiber.Ctx) error {
		_, err := GetUserID(c)
		assert.Error(t, err)
		return nil
	})
}

func TestLoadActor_ReadsRoleFromDatabase(t *testing.T) {
	db := testutil.NewDB(t)
	admin := testutil.CreateUser(t, db, "admin@linkhood.sn", "Admin", models.RoleSuperAdmin)

	actor, err := LoadActor(context.Background(), db, admin.ID, AdminList{})
	require.NoError(t, err)
	assert.Equal(t, models.RoleSuperAdmin, actor.Role)
	assert.True(t, actor.IsAdmin())

	_, err = LoadActor(context.Background(), db, uuid.New(), AdminList{})
	assert.ErrorIs(t, err, ErrUnknownActor)
}

func TestLoadActor_ConfiguredAdmins(t *testing.T) {
	db := testutil.NewDB(t)
	byEmail := testutil.CreateUser(t, db, "ops@linkhood.sn", "Ops", models.RoleUser)
	byID := testutil.CreateUser(t, db, "support@linkhood.sn", "Support", models.RoleUser)
	resident := testutil.CreateUser(t, db, "resident@linkhood.sn", "Resident", models.RoleUser)
	super := testutil.CreateUser(t, db, "super@linkhood.sn", "Super", models.RoleSuperAdmin)

	admins := ParseAdminList(" OPS@linkhood.sn ,", byID.ID.String()+","+super.ID.String())

	actor, err := LoadActor(context.Background(), db, byEmail.ID, admins)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, actor.Role)
	assert.True(t, actor.CanModify(resident.ID))

	actor, err = LoadActor(context.Background(), db, byID.ID, admins)
	require.NoError(t, err)
	assert.True(t, actor.IsAdmin())

	actor, err = LoadActor(context.Background(), db, resident.ID, admins)
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, actor.Role)

	actor, err = LoadActor(context.Background(), db, super.ID, admins)
	require.NoError(t, err)
	assert.Equal(t, models.RoleSuperAdmin, actor.Role)
}

func TestAdminList(t *testing.T) {
	id := uuid.New()
	list := ParseAdminList(" A@b.sn ,, c@d.sn", id.String())

	assert.True(t, list.Contains(uuid.Nil, "a@B.sn"))
	assert.True(t, list.Contains(id, ""))
	assert.False(t, list.Contains(uuid.New(), "x@y.sn"))
	assert.False(t, list.Contains(uuid.Nil, ""))
	assert.False(t, list.Empty())
	assert.True(t, ParseAdminList("", " , ").Empty())
}

func TestActor_CanModify(t *testing.T) {
	owner := uuid.New()
	other := uuid.New()

	assert.True(t, Actor{ID: owner, Role: models.RoleUser}.CanModify(owner))
	assert.False(t, Actor{ID: other, Role: models.RoleUser}.CanModify(owner))
	assert.True(t, Actor{ID: other, Role: models.RoleAdmin}.CanModify(owner))
	assert.False(t, Actor{Role: models.RoleUser}.CanModify(uuid.Nil))

	assert.ErrorIs(t, Actor{ID: other}.Authorize(owner), ErrForbidden)
	assert.NoError(t, Actor{ID: owner}.Authorize(owner))
}
