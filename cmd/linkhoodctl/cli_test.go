package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/Bdsolutionconsulting/linkhood/internal/apps"
	"github.com/Bdsolutionconsulting/linkhood/internal/apps/markers"
	"github.com/Bdsolutionconsulting/linkhood/internal/config"
	"github.com/Bdsolutionconsulting/linkhood/internal/geo"
	"github.com/Bdsolutionconsulting/linkhood/internal/models"
	"github.com/Bdsolutionconsulting/linkhood/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

func testEnv(t *testing.T) (*env, *gorm.DB) {
	t.Helper()
	db := testutil.NewDB(t, &markers.Marker{})
	return &env{
		cfg:    &config.Config{},
		openDB: func(*config.Config) (*gorm.DB, error) { return db, nil },
		migrate: func(context.Context, *gorm.DB, []apps.Plugin) error {
			return nil
		},
	}, db
}

func run(t *testing.T, e *env, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd(e)
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestPromote(t *testing.T) {
	e, db := testEnv(t)
	user := testutil.CreateUser(t, db, "awa@example.com", "Awa", models.RoleUser)

	out, err := run(t, e, "promote", "--email", "AWA@example.com", "--role", "admin")
	require.NoError(t, err)
	assert.Contains(t, out, "awa@example.com is now admin")

	var stored models.User
	require.NoError(t, db.First(&stored, "id = ?", user.ID).Error)
	assert.Equal(t, models.RoleAdmin, stored.Role)
}

func TestPromoteRejectsUnknownRoleAndUser(t *testing.T) {
	e, _ := testEnv(t)

	_, err := run(t, e, "promote", "--email", "awa@example.com", "--role", "owner")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown role")

	_, err = run(t, e, "promote", "--email", "nobody@example.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no user registered")
}

func TestMarkerLifecycle(t *testing.T) {
	e, db := testEnv(t)
	center := geo.DefaultArea().Center()

	out, err := run(t, e, "marker", "add",
		"--title", "Marché",
		"--category", "commerce",
		"--lat", formatFloat(center.Lat),
		"--lng", formatFloat(center.Lng),
	)
	require.NoError(t, err)
	assert.Contains(t, out, `"Marché"`)

	var marker markers.Marker
	require.NoError(t, db.First(&marker).Error)
	assert.Nil(t, marker.CreatedBy)

	out, err = run(t, e, "marker", "list")
	require.NoError(t, err)
	assert.Contains(t, out, marker.ID.String())
	assert.Contains(t, out, "commerce")

	out, err = run(t, e, "marker", "rm", marker.ID.String())
	require.NoError(t, err)
	assert.Contains(t, out, "removed")

	out, err = run(t, e, "marker", "list")
	require.NoError(t, err)
	assert.NotContains(t, out, marker.ID.String())
}

func TestMarkerAddOutsideArea(t *testing.T) {
	e, _ := testEnv(t)

	_, err := run(t, e, "marker", "add", "--title", "Loin", "--lat", "48.85", "--lng", "2.35")
	require.Error(t, err)
}

func TestMarkerRmUnknown(t *testing.T) {
	e, _ := testEnv(t)

	_, err := run(t, e, "marker", "rm", "9b2f7c8e-0000-4000-8000-000000000000")
	require.ErrorIs(t, err, apps.ErrNotFound)

	_, err = run(t, e, "marker", "rm", "not-a-uuid")
	require.Error(t, err)
}

func TestAreasShow(t *testing.T) {
	e, _ := testEnv(t)

	out, err := run(t, e, "areas", "show")
	require.NoError(t, err)

	var area geo.Area
	require.NoError(t, yaml.Unmarshal([]byte(out), &area))
	assert.Equal(t, geo.DefaultArea(), area)
}

func TestAreasShowFromFile(t *testing.T) {
	e, _ := testEnv(t)
	path := filepath.Join(t.TempDir(), "area.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: Médina\nzoom: 15\n"), 0o600))
	e.cfg.AreaConfigPath = path

	out, err := run(t, e, "areas", "show")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "name: Médina"))
	assert.Contains(t, out, "zoom: 15")
}

func TestMigrate(t *testing.T) {
	e, _ := testEnv(t)
	var got int
	e.migrate = func(_ context.Context, _ *gorm.DB, plugins []apps.Plugin) error {
		got = len(plugins)
		return nil
	}

	out, err := run(t, e, "migrate")
	require.NoError(t, err)
	assert.Equal(t, 5, got)
	assert.Contains(t, out, "5 plugins")
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
