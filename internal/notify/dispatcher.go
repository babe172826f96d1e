package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Bdsolutionconsulting/linkhood/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Outcome tells the caller how the side-effect email went. The parent
// operation never fails because of it.
type Outcome string

const (
	OutcomeSent    Outcome = "sent"
	OutcomeSkipped Outcome = "skipped"
	OutcomeFailed  Outcome = "failed"
)

type Dispatcher struct {
	db      *gorm.DB
	mailer  Mailer
	baseURL string
}

func NewDispatcher(db *gorm.DB, mailer Mailer, baseURL string) *Dispatcher {
	return &Dispatcher{db: db, mailer: mailer, baseURL: baseURL}
}

// Send renders and delivers msg to msg.UserEmail without consulting any
// preference.
func (d *Dispatcher) Send(ctx context.Context, msg Message) error {
	subject, html, err := msg.Render(d.baseURL)
	if err != nil {
		return err
	}
	return d.mailer.Send(ctx, Email{To: msg.UserEmail, Subject: subject, HTML: html})
}

// Notify emails the user identified by recipientID unless they switched
// notifications off. Failures are logged and reported as OutcomeFailed.
func (d *Dispatcher) Notify(ctx context.Context, recipientID uuid.UUID, msg Message) Outcome {
	var user models.User
	if err := d.db.WithContext(ctx).First(&user, "id = ?", recipientID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return OutcomeSkipped
		}
		slog.Error("notification recipient lookup failed", "action", string(msg.Type), "user_id", recipientID.String(), "error", err)
		return OutcomeFailed
	}

	enabled, err := d.notificationsEnabled(ctx, recipientID)
	if err != nil {
		slog.Error("notification settings lookup failed", "action", string(msg.Type), "user_id", recipientID.String(), "error", err)
		return OutcomeFailed
	}
	if !enabled {
		return OutcomeSkipped
	}

	msg.UserEmail = user.Email
	if err := d.Send(ctx, msg); err != nil {
		if errors.Is(err, ErrNotConfigured) {
			slog.Warn("email skipped, provider not configured", "action", string(msg.Type))
			return OutcomeSkipped
		}
		slog.Error("notification email failed", "action", string(msg.Type), "user_id", recipientID.String(), "error", err)
		return OutcomeFailed
	}

	slog.Info("notification email sent", "action", string(msg.Type), "user_id", recipientID.String())
	return OutcomeSent
}

func (d *Dispatcher) notificationsEnabled(ctx context.Context, userID uuid.UUID) (bool, error) {
	var settings models.UserSettings
	err := d.db.WithContext(ctx).First(&settings, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.DefaultSettings(userID).NotificationsEnabled, nil
	}
	if err != nil {
		return false, fmt.Errorf("load settings: %w", err)
	}
	return settings.NotificationsEnabled, nil
}
