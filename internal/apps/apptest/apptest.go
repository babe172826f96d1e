// Package apptest mounts a feature plugin on a throwaway Fiber app backed
// by SQLite, an in-memory object store and a recording mailer.
package apptest

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/Bdsolutionconsulting/linkhood/internal/apps"
	"github.com/Bdsolutionconsulting/linkhood/internal/config"
	"github.com/Bdsolutionconsulting/linkhood/internal/geo"
	"github.com/Bdsolutionconsulting/linkhood/internal/identity"
	"github.com/Bdsolutionconsulting/linkhood/internal/middleware"
	"github.com/Bdsolutionconsulting/linkhood/internal/models"
	"github.com/Bdsolutionconsulting/linkhood/internal/notify"
	"github.com/Bdsolutionconsulting/linkhood/internal/retry"
	"github.com/Bdsolutionconsulting/linkhood/internal/services"
	"github.com/Bdsolutionconsulting/linkhood/internal/storage"
	"github.com/Bdsolutionconsulting/linkhood/internal/testutil"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// Secret signs the tokens Token issues.
const Secret = "apptest-secret"

// ListedAdminEmail is granted admin rights through ADMIN_EMAILS only.
const ListedAdminEmail = "ops@linkhood.test"

type Env struct {
	App    *fiber.App
	DB     *gorm.DB
	Deps   *apps.Deps
	Store  *storage.MemoryStore
	Mailer *testutil.Mailer
}

// New mounts plugins under /api (JWT) and /api/admin (JWT plus admin).
func New(t *testing.T, plugins ...apps.Plugin) *Env {
	t.Helper()

	var extra []interface{}
	for _, p := range plugins {
		extra = append(extra, p.Models()...)
	}
	db := testutil.NewDB(t, extra...)

	cfg := &config.Config{
		JWTSecret:            Secret,
		PublicAppURL:         "https://app.linkhood.test",
		MaxUploadBytes:       1024,
		ContentFilterEnabled: true,
		AdminEmails:          ListedAdminEmail,
	}
	store := storage.NewMemoryStore("http://files.test/storage")
	mailer := &testutil.Mailer{}

	deps := &apps.Deps{
		DB:       db,
		Config:   cfg,
		Area:     geo.DefaultArea(),
		Store:    store,
		Notifier: notify.NewDispatcher(db, mailer, cfg.PublicAppURL),
		Filter:   services.NewContentFilter(true),
		Retry:    retry.Policy{Attempts: 2, Delay: time.Millisecond},
		Admins:   identity.ParseAdminList(cfg.AdminEmails, cfg.AdminUserIDs),
	}

	app := fiber.New()
	api := app.Group("/api", middleware.JWTProtected(cfg))
	admin := api.Group("/admin", middleware.AdminRequired(db, cfg))
	for _, p := range plugins {
		p.RegisterRoutes(api, deps)
		if ap, ok := p.(apps.AdminPlugin); ok {
			ap.RegisterAdminRoutes(admin, deps)
		}
	}

	return &Env{App: app, DB: db, Deps: deps, Store: store, Mailer: mailer}
}

// User creates a confirmed account with role.
func (e *Env) User(t *testing.T, email, name, role string) *models.User {
	t.Helper()
	return testutil.CreateUser(t, e.DB, email, name, role)
}

// Token signs an access token for user.
func Token(t *testing.T, user *models.User) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   user.ID.String(),
		"email": user.Email,
		"role":  user.Role,
		"exp":   time.Now().Add(time.Hour).Unix(),
	})
	s, err := token.SignedString([]byte(Secret))
	require.NoError(t, err)
	return s
}

// Do sends a JSON request (body may be nil) as user (nil for anonymous).
func (e *Env) Do(t *testing.T, method, path string, body interface{}, user *models.User) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return e.send(t, req, user)
}

// File is one part of a multipart request.
type File struct {
	Field       string
	Filename    string
	ContentType string
	Data        []byte
}

// Multipart sends form fields and an optional file as user.
func (e *Env) Multipart(t *testing.T, method, path string, fields map[string]string, file *File, user *models.User) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if file != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+file.Field+`"; filename="`+file.Filename+`"`)
		h.Set("Content-Type", file.ContentType)
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(file.Data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return e.send(t, req, user)
}

func (e *Env) send(t *testing.T, req *http.Request, user *models.User) *http.Response {
	t.Helper()
	if user != nil {
		req.Header.Set("Authorization", "Bearer "+Token(t, user))
	}
	resp, err := e.App.Test(req, -1)
	require.NoError(t, err)
	return resp
}

// Decode reads a JSON response body into v.
func Decode(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}
