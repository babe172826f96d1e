// Package testutil builds throwaway databases and fakes for package tests.
package testutil

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Bdsolutionconsulting/linkhood/internal/models"
	"github.com/Bdsolutionconsulting/linkhood/internal/notify"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a private in-memory SQLite database with the shared models
// plus extra migrated.
func NewDB(t testing.TB, extra ...interface{}) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	all := append([]interface{}{
		&models.User{},
		&models.UserSettings{},
		&models.RefreshToken{},
		&models.EmailConfirmation{},
		&models.SiteConfig{},
	}, extra...)
	require.NoError(t, db.AutoMigrate(all...))
	return db
}

// CreateUser inserts a confirmed user with the given role.
func CreateUser(t testing.TB, db *gorm.DB, email, name, role string) *models.User {
	t.Helper()

	confirmed := time.Now()
	user := &models.User{
		Email:            email,
		Password:         "x",
		Name:             name,
		Role:             role,
		EmailConfirmedAt: &confirmed,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// Mailer records every email and optionally fails.
type Mailer struct {
	mu   sync.Mutex
	Sent []notify.Email
	Err  error
}

func (m *Mailer) Send(_ context.Context, email notify.Email) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Sent = append(m.Sent, email)
	return nil
}

func (m *Mailer) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Sent)
}

func (m *Mailer) Last() notify.Email {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Sent) == 0 {
		return notify.Email{}
	}
	return m.Sent[len(m.Sent)-1]
}
