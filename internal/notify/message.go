// Package notify renders and sends the transactional emails residents get
// when their reports and events change.
package notify

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"strings"
)

type Kind string

const (
	KindNewReport          Kind = "new_report"
	KindStatusUpdate       Kind = "status_update"
	KindReportDeleted      Kind = "report_deleted"
	KindNewEvent           Kind = "new_event"
	KindEventDeleted       Kind = "event_deleted"
	KindSignupConfirmation Kind = "signup_confirmation"
)

var (
	ErrMissingParams   = errors.New("missing required parameters: type and userEmail are required")
	ErrMissingReportID = errors.New("missing required parameter: reportId is required for report-related types")
	ErrMissingEventID  = errors.New("missing required parameter: eventId is required for event-related types")
	ErrMissingStatus   = errors.New(`missing required parameter: status is required for type "status_update"`)
	ErrMissingLink     = errors.New("missing required parameter: link is required for signup confirmation")
	ErrUnknownKind     = errors.New(`invalid notification type. Must be "new_report", "status_update", "report_deleted", "new_event", or "event_deleted"`)
)

// Message is the payload accepted by the send-report-email function.
type Message struct {
	Type      Kind   `json:"type"`
	ReportID  string `json:"reportId,omitempty"`
	EventID   string `json:"eventId,omitempty"`
	UserEmail string `json:"userEmail"`
	Title     string `json:"title"`
	Status    string `json:"status,omitempty"`

	// Link is only set internally for sign-up confirmation.
	Link string `json:"-"`
}

// Validate applies the same parameter rules as the hosted function did.
func (m Message) Validate() error {
	if m.Type == "" || strings.TrimSpace(m.UserEmail) == "" {
		return ErrMissingParams
	}
	if strings.Contains(string(m.Type), "report") && m.ReportID == "" {
		return ErrMissingReportID
	}
	if strings.Contains(string(m.Type), "event") && m.EventID == "" {
		return ErrMissingEventID
	}
	return nil
}

type emailTemplate struct {
	subject string
	body    *template.Template
}

var templates = map[Kind]emailTemplate{
	KindNewReport: {
		subject: "Nouveau signalement créé",
		body: template.Must(template.New("new_report").Parse(`
<h2>Votre signalement a été créé avec succès</h2>
<p>Titre: {{.Title}}</p>
<p>Nous vous tiendrons informé des mises à jour de votre signalement.</p>
<p>Consultez les détails ici : <a href="{{.BaseURL}}/report/{{.ReportID}}">Voir le signalement</a></p>
`)),
	},
	KindStatusUpdate: {
		subject: "Mise à jour du statut de votre signalement",
		body: template.Must(template.New("status_update").Parse(`
<h2>Le statut de votre signalement a été mis à jour</h2>
<p>Titre: {{.Title}}</p>
<p>Nouveau statut: {{.Status}}</p>
<p>Consultez les détails ici : <a href="{{.BaseURL}}/report/{{.ReportID}}">Voir le signalement</a></p>
`)),
	},
	KindReportDeleted: {
		subject: "Signalement supprimé",
		body: template.Must(template.New("report_deleted").Parse(`
<h2>Votre signalement a été supprimé</h2>
<p>Titre: {{.Title}}</p>
<p>Ce signalement a été supprimé de notre système.</p>
`)),
	},
	KindNewEvent: {
		subject: "Nouvel événement créé",
		body: template.Must(template.New("new_event").Parse(`
<h2>Votre événement a été créé avec succès</h2>
<p>Titre: {{.Title}}</p>
<p>Consultez les détails ici : <a href="{{.BaseURL}}/event/{{.EventID}}">Voir l’événement</a></p>
`)),
	},
	KindEventDeleted: {
		subject: "Événement supprimé",
		body: template.Must(template.New("event_deleted").Parse(`
<h2>Votre événement a été supprimé</h2>
<p>Titre: {{.Title}}</p>
<p>Cet événement a été supprimé de notre système.</p>
`)),
	},
	KindSignupConfirmation: {
		subject: "Confirmez votre inscription",
		body: template.Must(template.New("signup_confirmation").Parse(`
<h2>Bienvenue sur Linkhood</h2>
<p>Confirmez votre adresse e-mail pour activer votre compte.</p>
<p><a href="{{.Link}}">Confirmer mon inscription</a></p>
`)),
	},
}

// Render validates m and returns the subject and HTML body. Links point
// at baseURL, the public web client.
func (m Message) Render(baseURL string) (string, string, error) {
	if err := m.Validate(); err != nil {
		return "", "", err
	}

	tpl, ok := templates[m.Type]
	if !ok {
		return "", "", ErrUnknownKind
	}
	if m.Type == KindStatusUpdate && m.Status == "" {
		return "", "", ErrMissingStatus
	}
	if m.Type == KindSignupConfirmation && m.Link == "" {
		return "", "", ErrMissingLink
	}

	var buf bytes.Buffer
	data := struct {
		Message
		BaseURL template.URL
	}{Message: m, BaseURL: template.URL(strings.TrimRight(baseURL, "/"))}
	if err := tpl.body.Execute(&buf, data); err != nil {
		return "", "", fmt.Errorf("render %s: %w", m.Type, err)
	}
	return tpl.subject, buf.String(), nil
}
