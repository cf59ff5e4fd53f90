package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"terrasite_backend/internal/notification/message"
)

//go:embed templates/*.html
var templateFS embed.FS

type baseEmailData struct {
	Title   string
	Heading string
}

type leadNotificationEmailData struct {
	baseEmailData
	message.Message
}

func renderLeadNotification(msg message.Message) (string, error) {
	return renderEmailTemplate("lead_notification.html", leadNotificationEmailData{
		baseEmailData: baseEmailData{
			Title:   msg.Subject,
			Heading: "Новая заявка с сайта Terrasite!",
		},
		Message: msg,
	})
}

func renderEmailTemplate(name string, data any) (string, error) {
	templates := []string{"templates/base.html", "templates/" + name}
	tmpl, err := template.New("base.html").ParseFS(templateFS, templates...)
	if err != nil {
		return "", fmt.Errorf("parse email template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "email", data); err != nil {
		return "", fmt.Errorf("execute email template %s: %w", name, err)
	}
	return buf.String(), nil
}
