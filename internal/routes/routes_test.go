package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/Bdsolutionconsulting/linkhood/internal/apps"
	"github.com/Bdsolutionconsulting/linkhood/internal/apps/apptest"
	"github.com/Bdsolutionconsulting/linkhood/internal/apps/reports"
	"github.com/Bdsolutionconsulting/linkhood/internal/bootstrap"
	"github.com/Bdsolutionconsulting/linkhood/internal/config"
	"github.com/Bdsolutionconsulting/linkhood/internal/dto"
	"github.com/Bdsolutionconsulting/linkhood/internal/geo"
	"github.com/Bdsolutionconsulting/linkhood/internal/handlers"
	"github.com/Bdsolutionconsulting/linkhood/internal/identity"
	"github.com/Bdsolutionconsulting/linkhood/internal/models"
	"github.com/Bdsolutionconsulting/linkhood/internal/notify"
	"github.com/Bdsolutionconsulting/linkhood/internal/realtime"
	"github.com/Bdsolutionconsulting/linkhood/internal/retry"
	"github.com/Bdsolutionconsulting/linkhood/internal/services"
	"github.com/Bdsolutionconsulting/linkhood/internal/storage"
	"github.com/Bdsolutionconsulting/linkhood/internal/testutil"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type server struct {
	*apptest.Env
	config *handlers.SiteConfigHandler
}

func newServer(t *testing.T) *server {
	t.Helper()

	plugins := bootstrap.Plugins()
	var extra []interface{}
	for _, p := range plugins {
		extra = append(extra, p.Models()...)
	}
	db := testutil.NewDB(t, extra...)

	cfg := &config.Config{
		JWTSecret:                apptest.Secret,
		JWTAccessExpiry:          15 * time.Minute,
		JWTRefreshExpiry:         time.Hour,
		RequireEmailConfirmation: true,
		ConfirmationExpiry:       time.Hour,
		PublicAppURL:             "https://app.linkhood.test",
		SupportEmail:             "support@linkhood.test",
		AdminEmails:              "ops@linkhood.test",
		MaxUploadBytes:           1024,
	}
	store := storage.NewMemoryStore("http://files.test/storage")
	mailer := &testutil.Mailer{}
	dispatcher := notify.NewDispatcher(db, mailer, cfg.PublicAppURL)
	admins := identity.ParseAdminList(cfg.AdminEmails, cfg.AdminUserIDs)
	area := geo.DefaultArea()
	hub := realtime.NewHub(0)
	t.Cleanup(hub.Close)

	authService := services.NewAuthService(db, cfg, dispatcher)
	profileService := services.NewProfileService(db, store, int64(cfg.MaxUploadBytes))
	configHandler := handlers.NewSiteConfigHandler(db)

	h := Handlers{
		Auth:      handlers.NewAuthHandler(authService),
		Profile:   handlers.NewProfileHandler(profileService),
		Health:    handlers.NewHealthHandler(db, area, hub),
		Legal:     handlers.NewLegalHandler(cfg.SupportEmail),
		Help:      handlers.NewHelpHandler(cfg.SupportEmail),
		Config:    configHandler,
		Session:   handlers.NewSessionHandler(profileService),
		Functions: handlers.NewFunctionsHandler(db, dispatcher, admins),
		Realtime:  handlers.NewRealtimeHandler(hub),
		Storage:   handlers.NewStorageHandler(store),
	}
	deps := &apps.Deps{
		DB:       db,
		Config:   cfg,
		Area:     area,
		Store:    store,
		Notifier: dispatcher,
		Filter:   services.NewContentFilter(true),
		Retry:    retry.Policy{Attempts: 1, Delay: time.Millisecond},
		Admins:   admins,
	}

	app := fiber.New()
	Setup(app, cfg, h, deps, plugins)

	return &server{
		Env:    &apptest.Env{App: app, DB: db, Deps: deps, Store: store, Mailer: mailer},
		config: configHandler,
	}
}

// withToken sends a JSON request carrying a raw bearer token.
func (s *server) withToken(t *testing.T, method, path string, body interface{}, token string) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.App.Test(req, -1)
	require.NoError(t, err)
	return resp
}

var confirmToken = regexp.MustCompile(`/confirm\?token=([A-Za-z0-9_-]+)`)

func TestPublicEndpoints(t *testing.T) {
	s := newServer(t)

	resp := s.Do(t, "GET", "/api/health", nil, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var health dto.HealthResponse
	apptest.Decode(t, resp, &health)
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, "ok", health.DB)
	assert.Equal(t, geo.DefaultArea().Name, health.Area)

	resp = s.Do(t, "GET", "/api/help", nil, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var help handlers.HelpResponse
	apptest.Decode(t, resp, &help)
	assert.Len(t, help.FAQ, 3)
	assert.Equal(t, "support@linkhood.test", help.SupportEmail)

	for _, path := range []string{"/api/legal/privacy", "/api/legal/terms"} {
		resp = s.Do(t, "GET", path, nil, nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode, path)
		assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newServer(t)

	for _, path := range []string{"/api/me", "/api/me/settings", "/api/reports", "/api/events", "/api/forum/categories", "/api/map", "/api/auth/me"} {
		resp := s.Do(t, "GET", path, nil, nil)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode, path)
	}
}

func TestRegisterConfirmLogin(t *testing.T) {
	s := newServer(t)

	resp := s.Do(t, "POST", "/api/auth/register", dto.RegisterRequest{Email: "Fatou@Example.com", Password: "secret1"}, nil)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var registered dto.RegisterResponse
	apptest.Decode(t, resp, &registered)
	assert.Equal(t, "fatou@example.com", registered.User.Email)
	assert.Equal(t, "fatou", registered.User.Name)
	assert.False(t, registered.User.EmailConfirmed)
	assert.Nil(t, registered.Auth)

	require.Equal(t, 1, s.Mailer.Count())
	mail := s.Mailer.Last()
	assert.Equal(t, "fatou@example.com", mail.To)
	assert.Equal(t, "Confirmez votre inscription", mail.Subject)
	m := confirmToken.FindStringSubmatch(mail.HTML)
	require.Len(t, m, 2)

	resp = s.Do(t, "POST", "/api/auth/login", dto.LoginRequest{Email: "fatou@example.com", Password: "secret1"}, nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = s.Do(t, "POST", "/api/auth/confirm", dto.ConfirmRequest{Token: "bogus"}, nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = s.Do(t, "POST", "/api/auth/confirm", dto.ConfirmRequest{Token: m[1]}, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var confirmed dto.AuthResponse
	apptest.Decode(t, resp, &confirmed)
	assert.NotEmpty(t, confirmed.AccessToken)
	assert.True(t, confirmed.User.EmailConfirmed)

	resp = s.Do(t, "POST", "/api/auth/login", dto.LoginRequest{Email: "fatou@example.com", Password: "wrong!"}, nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp = s.Do(t, "POST", "/api/auth/login", dto.LoginRequest{Email: "fatou@example.com", Password: "secret1"}, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var login dto.AuthResponse
	apptest.Decode(t, resp, &login)

	resp = s.withToken(t, "GET", "/api/auth/me", nil, login.AccessToken)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var me dto.UserResponse
	apptest.Decode(t, resp, &me)
	assert.Equal(t, registered.User.ID, me.ID)

	resp = s.Do(t, "POST", "/api/auth/refresh", dto.RefreshRequest{RefreshToken: login.RefreshToken}, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = s.Do(t, "POST", "/api/auth/refresh", dto.RefreshRequest{RefreshToken: login.RefreshToken}, nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestProfileEndpoints(t *testing.T) {
	s := newServer(t)
	user := s.User(t, "awa@example.com", "Awa", models.RoleUser)

	name, phone := "Awa Diop", "771234567"
	resp := s.Do(t, "PUT", "/api/me", dto.UpdateProfileRequest{Name: &name, Phone: &phone}, user)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var updated dto.UserResponse
	apptest.Decode(t, resp, &updated)
	assert.Equal(t, "Awa Diop", updated.Name)
	assert.NotEmpty(t, updated.Phone)

	bad := "A"
	resp = s.Do(t, "PUT", "/api/me", dto.UpdateProfileRequest{Name: &bad}, user)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	var invalid dto.ErrorResponse
	apptest.Decode(t, resp, &invalid)
	assert.Equal(t, "name", invalid.Field)

	center := geo.DefaultArea().Center()
	resp = s.Do(t, "PUT", "/api/me/location", dto.LocationRequest{Lat: &center.Lat, Lng: &center.Lng}, user)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var loc dto.LocationResponse
	apptest.Decode(t, resp, &loc)
	assert.True(t, loc.Updated)

	resp = s.Do(t, "PUT", "/api/me/location", dto.LocationRequest{Lat: &center.Lat, Lng: &center.Lng}, user)
	apptest.Decode(t, resp, &loc)
	assert.False(t, loc.Updated)

	resp = s.Do(t, "GET", "/api/me/settings", nil, user)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var settings models.UserSettings
	apptest.Decode(t, resp, &settings)
	assert.True(t, settings.NotificationsEnabled)
	assert.Equal(t, models.MapStyleStreets, settings.MapStyle)

	off, style := false, models.MapStylePastel
	resp = s.Do(t, "PUT", "/api/me/settings", dto.UpdateSettingsRequest{NotificationsEnabled: &off, MapStyle: &style}, user)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	apptest.Decode(t, resp, &settings)
	assert.False(t, settings.NotificationsEnabled)
	assert.Equal(t, models.MapStylePastel, settings.MapStyle)

	unknown := "satellite"
	resp = s.Do(t, "PUT", "/api/me/settings", dto.UpdateSettingsRequest{MapStyle: &unknown}, user)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestProfilePhotoIsServedFromMemoryStore(t *testing.T) {
	s := newServer(t)
	user := s.User(t, "awa@example.com", "Awa", models.RoleUser)

	resp := s.Multipart(t, "POST", "/api/me/photo", nil, &apptest.File{
		Field: "photo", Filename: "me.jpg", ContentType: "image/jpeg", Data: []byte("jpeg-bytes"),
	}, user)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var photo dto.PhotoResponse
	apptest.Decode(t, resp, &photo)
	assert.Contains(t, photo.PhotoURL, "/profile-pictures/"+user.ID.String()+".jpeg?t=")

	path := strings.TrimPrefix(photo.PhotoURL, "http://files.test")
	path = path[:strings.Index(path, "?")]
	resp = s.Do(t, "GET", path, nil, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/jpeg", resp.Header.Get("Content-Type"))
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes", string(body))

	resp = s.Do(t, "GET", "/storage/profile-pictures/missing.jpeg", nil, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp = s.Multipart(t, "POST", "/api/me/photo", nil, &apptest.File{
		Field: "photo", Filename: "me.gif", ContentType: "image/gif", Data: []byte("gif"),
	}, user)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestSiteConfig(t *testing.T) {
	s := newServer(t)
	admin := s.User(t, "admin@example.com", "Admin", models.RoleAdmin)
	user := s.User(t, "awa@example.com", "Awa", models.RoleUser)

	require.NoError(t, s.config.SeedDefaults(context.Background(), "support@linkhood.test", reports.Categories))

	var cfg map[string]interface{}
	resp := s.Do(t, "GET", "/api/config", nil, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	apptest.Decode(t, resp, &cfg)
	assert.Equal(t, false, cfg["maintenance_mode"])
	assert.Equal(t, "support@linkhood.test", cfg["support_email"])
	assert.Len(t, cfg["report_categories"], 3)
	assert.Len(t, cfg["map_styles"], len(models.MapStyles))

	body := map[string]string{"value": "true", "type": "bool"}
	resp = s.Do(t, "PUT", "/api/admin/config/maintenance_mode", body, user)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = s.Do(t, "PUT", "/api/admin/config/maintenance_mode", map[string]string{"value": "maybe", "type": "bool"}, admin)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = s.Do(t, "PUT", "/api/admin/config/maintenance_mode", map[string]string{"value": "1", "type": "float"}, admin)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = s.Do(t, "PUT", "/api/admin/config/maintenance_mode", body, admin)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = s.Do(t, "PUT", "/api/admin/config/max_reports", map[string]string{"value": "12", "type": "int"}, admin)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	// Seeding again keeps the edited value.
	require.NoError(t, s.config.SeedDefaults(context.Background(), "support@linkhood.test", reports.Categories))

	resp = s.Do(t, "GET", "/api/config", nil, nil)
	cfg = nil
	apptest.Decode(t, resp, &cfg)
	assert.Equal(t, true, cfg["maintenance_mode"])
	assert.Equal(t, float64(12), cfg["max_reports"])

	resp = s.Do(t, "DELETE", "/api/admin/config/max_reports", nil, admin)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp = s.Do(t, "DELETE", "/api/admin/config/max_reports", nil, admin)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestSendReportEmail(t *testing.T) {
	s := newServer(t)
	user := s.User(t, "awa@example.com", "Awa", models.RoleUser)

	msg := notify.Message{Type: notify.KindStatusUpdate, ReportID: "r-1", UserEmail: "awa@example.com", Title: "Lampadaire", Status: "résolu"}

	resp := s.Do(t, "POST", "/api/functions/send-report-email", msg, nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp = s.Do(t, "POST", "/api/functions/send-report-email", notify.Message{Type: notify.KindNewReport, UserEmail: "awa@example.com"}, user)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	var failed map[string]string
	apptest.Decode(t, resp, &failed)
	assert.Equal(t, notify.ErrMissingReportID.Error(), failed["error"])

	resp = s.Do(t, "POST", "/api/functions/send-report-email", msg, user)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var ok map[string]interface{}
	apptest.Decode(t, resp, &ok)
	assert.Equal(t, true, ok["success"])
	assert.Equal(t, "Email envoyé avec succès", ok["message"])

	require.Equal(t, 1, s.Mailer.Count())
	assert.Equal(t, "Mise à jour du statut de votre signalement", s.Mailer.Last().Subject)
	assert.Contains(t, s.Mailer.Last().HTML, "https://app.linkhood.test/report/r-1")
}

func TestSendReportEmail_RecipientMustBeCaller(t *testing.T) {
	s := newServer(t)
	resident := s.User(t, "awa@example.com", "Awa", models.RoleUser)
	ops := s.User(t, "ops@linkhood.test", "Ops", models.RoleUser)
	admin := s.User(t, "admin@linkhood.test", "Admin", models.RoleAdmin)

	msg := notify.Message{Type: notify.KindNewReport, ReportID: "r-1", UserEmail: "moussa@example.com", Title: "Nid de poule"}

	resp := s.Do(t, "POST", "/api/functions/send-report-email", msg, resident)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	assert.Equal(t, 0, s.Mailer.Count())

	msg.UserEmail = "AWA@example.com"
	resp = s.Do(t, "POST", "/api/functions/send-report-email", msg, resident)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	msg.UserEmail = "moussa@example.com"
	resp = s.Do(t, "POST", "/api/functions/send-report-email", msg, admin)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = s.Do(t, "POST", "/api/functions/send-report-email", msg, ops)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	require.Equal(t, 3, s.Mailer.Count())
	assert.Equal(t, "moussa@example.com", s.Mailer.Last().To)
}

func TestSessionBootstrap(t *testing.T) {
	s := newServer(t)
	user := s.User(t, "awa@example.com", "Awa", models.RoleUser)

	var boot dto.BootstrapResponse
	resp := s.Do(t, "GET", "/api/session/bootstrap?path=/report/42", nil, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	apptest.Decode(t, resp, &boot)
	assert.False(t, boot.Authenticated)
	assert.Nil(t, boot.User)
	assert.Equal(t, "/(auth)/sign-in?redirect=%2Freport%2F42", boot.Redirect)

	boot = dto.BootstrapResponse{}
	resp = s.Do(t, "GET", "/api/session/bootstrap?path=/report/42&can_go_back=false", nil, user)
	apptest.Decode(t, resp, &boot)
	assert.True(t, boot.Authenticated)
	require.NotNil(t, boot.User)
	assert.Equal(t, user.ID, boot.User.ID)
	assert.Equal(t, "/report/42", boot.Redirect)

	boot = dto.BootstrapResponse{}
	resp = s.Do(t, "GET", "/api/session/bootstrap?path=/events&can_go_back=true", nil, user)
	apptest.Decode(t, resp, &boot)
	assert.Equal(t, "", boot.Redirect)

	boot = dto.BootstrapResponse{}
	resp = s.withToken(t, "GET", "/api/session/bootstrap?path=/menu", nil, "not-a-jwt")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	apptest.Decode(t, resp, &boot)
	assert.False(t, boot.Authenticated)

	require.NoError(t, s.DB.Delete(user).Error)
	boot = dto.BootstrapResponse{}
	resp = s.Do(t, "GET", "/api/session/bootstrap?path=/menu", nil, user)
	apptest.Decode(t, resp, &boot)
	assert.False(t, boot.Authenticated)
	assert.Equal(t, "/(auth)/sign-in?redirect=%2Fmenu", boot.Redirect)
}

func TestRealtimeValidatesBeforeUpgrade(t *testing.T) {
	s := newServer(t)

	resp := s.Do(t, "GET", "/api/realtime", nil, nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = s.Do(t, "GET", "/api/realtime?table=users", nil, nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = s.Do(t, "GET", "/api/realtime?table=reports&filter=status", nil, nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = s.Do(t, "GET", "/api/realtime?table=reports&table=events&filter=status%3Deq.signal%C3%A9", nil, nil)
	assert.Equal(t, fiber.StatusUpgradeRequired, resp.StatusCode)
}

func TestPluginsAreMounted(t *testing.T) {
	s := newServer(t)
	admin := s.User(t, "admin@example.com", "Admin", models.RoleAdmin)
	user := s.User(t, "awa@example.com", "Awa", models.RoleUser)

	for _, path := range []string{"/api/reports", "/api/events", "/api/forum/categories", "/api/markers", "/api/map"} {
		resp := s.Do(t, "GET", path, nil, user)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode, path)
	}

	center := geo.DefaultArea().Center()
	marker := map[string]interface{}{"title": "Pharmacie", "lat": center.Lat, "lng": center.Lng}
	resp := s.Do(t, "POST", "/api/admin/markers", marker, user)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	resp = s.Do(t, "POST", "/api/admin/markers", marker, admin)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
}
