package notifications

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"leadrouter.backend/internal/domain/gateways"
)

//go:embed templates/*.html
var templateFS embed.FS

var subjects = map[string]string{
	gateways.TemplateLeadAssigned: "You have a new lead",
	gateways.TemplateLeadAccepted: "Your request was accepted",
	gateways.TemplateLeadRejected: "Update on your request",
}

func subjectFor(n gateways.Notification) string {
	if n.Subject != "" {
		return n.Subject
	}
	return subjects[n.Template]
}

func renderTemplate(name string, data map[string]interface{}) (string, error) {
	if _, ok := subjects[name]; !ok {
		return "", fmt.Errorf("unknown email template %s", name)
	}
	tmpl, err := template.New("base.html").ParseFS(templateFS, "templates/base.html", "templates/"+name+".html")
	if err != nil {
		return "", fmt.Errorf("parse email template %s: %w", name, err)
	}

	payload := map[string]interface{}{"Title": subjects[name]}
	for k, v := range data {
		payload[k] = v
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "email", payload); err != nil {
		return "", fmt.Errorf("execute email template %s: %w", name, err)
	}
	return buf.String(), nil
}

// FormatUSD renders cents as a dollar amount.
func FormatUSD(cents int64) string {
	return fmt.Sprintf("$%.2f", float64(cents)/100)
}
