package notify_test

import (
	"context"
	"errors"
	"testing"

	"github.com/Bdsolutionconsulting/linkhood/internal/models"
	"github.com/Bdsolutionconsulting/linkhood/internal/notify"
	"github.com/Bdsolutionconsulting/linkhood/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newReportMessage() notify.Message {
	return notify.Message{Type: notify.KindNewReport, ReportID: uuid.NewString(), Title: "Trou"}
}

func TestNotify_SendsToRecipientEmail(t *testing.T) {
	db := testutil.NewDB(t)
	user := testutil.CreateUser(t, db, "awa@example.sn", "Awa", models.RoleUser)
	mailer := &testutil.Mailer{}
	d := notify.NewDispatcher(db, mailer, "https://app.example")

	outcome := d.Notify(context.Background(), user.ID, newReportMessage())

	assert.Equal(t, notify.OutcomeSent, outcome)
	require.Equal(t, 1, mailer.Count())
	assert.Equal(t, "awa@example.sn", mailer.Last().To)
	assert.Equal(t, "Nouveau signalement créé", mailer.Last().Subject)
}

func TestNotify_SkipsWhenDisabled(t *testing.T) {
	db := testutil.NewDB(t)
	user := testutil.CreateUser(t, db, "awa@example.sn", "Awa", models.RoleUser)
	settings := models.DefaultSettings(user.ID)
	settings.NotificationsEnabled = false
	require.NoError(t, db.Create(&settings).Error)

	mailer := &testutil.Mailer{}
	d := notify.NewDispatcher(db, mailer, "https://app.example")

	assert.Equal(t, notify.OutcomeSkipped, d.Notify(context.Background(), user.ID, newReportMessage()))
	assert.Zero(t, mailer.Count())
}

func TestNotify_FailureIsReportedNotRaised(t *testing.T) {
	db := testutil.NewDB(t)
	user := testutil.CreateUser(t, db, "awa@example.sn", "Awa", models.RoleUser)
	mailer := &testutil.Mailer{Err: errors.New("provider down")}
	d := notify.NewDispatcher(db, mailer, "https://app.example")

	assert.Equal(t, notify.OutcomeFailed, d.Notify(context.Background(), user.ID, newReportMessage()))
}

func TestNotify_UnconfiguredProviderIsSkipped(t *testing.T) {
	db := testutil.NewDB(t)
	user := testutil.CreateUser(t, db, "awa@example.sn", "Awa", models.RoleUser)
	mailer := &testutil.Mailer{Err: notify.ErrNotConfigured}
	d := notify.NewDispatcher(db, mailer, "https://app.example")

	assert.Equal(t, notify.OutcomeSkipped, d.Notify(context.Background(), user.ID, newReportMessage()))
}

func TestNotify_UnknownRecipientIsSkipped(t *testing.T) {
	db := testutil.NewDB(t)
	d := notify.NewDispatcher(db, &testutil.Mailer{}, "https://app.example")

	assert.Equal(t, notify.OutcomeSkipped, d.Notify(context.Background(), uuid.New(), newReportMessage()))
}

func TestSend_ValidatesMessage(t *testing.T) {
	db := testutil.NewDB(t)
	mailer := &testutil.Mailer{}
	d := notify.NewDispatcher(db, mailer, "https://app.example")

	err := d.Send(context.Background(), notify.Message{Type: notify.KindNewEvent, UserEmail: "a@b.sn"})
	assert.ErrorIs(t, err, notify.ErrMissingEventID)
	assert.Zero(t, mailer.Count())
}
