package notifications

import (
	"bytes"
	"html/template"

	"gurukul-backend/internal/forms"
)

const formNotificationTemplate = `<!DOCTYPE html>
<html>
<body>
  <h3>New website enquiry</h3>
  <p><strong>Name:</strong> {{.Name}}</p>
  <p><strong>Email:</strong> {{.Email}}</p>
  {{if .Phone}}<p><strong>Phone:</strong> {{.Phone}}</p>{{end}}
  {{if .Subject}}<p><strong>Subject:</strong> {{.Subject}}</p>{{end}}
  <p><strong>Received:</strong> {{.CreatedAt.Format "02 Jan 2006 15:04"}}</p>
  <p><strong>ID:</strong> {{.ID}}</p>
  <p><strong>Message:</strong><br/>{{.Message}}</p>
</body>
</html>`

const formConfirmationTemplate = `<!DOCTYPE html>
<html>
<body>
  <p>Namaste {{.Name}},</p>
  <p>Thank you for contacting us. A counsellor will get back to you shortly.</p>
  <p>Your message:</p>
  <p>{{.Message}}</p>
  <p>Reference: {{.ID}}</p>
</body>
</html>`

var (
	formNotificationTmpl = template.Must(template.New("form_notification").Parse(formNotificationTemplate))
	formConfirmationTmpl = template.Must(template.New("form_confirmation").Parse(formConfirmationTemplate))
)

func buildFormNotificationHTML(sub forms.Submission) (string, error) {
	var buf bytes.Buffer
	if err := formNotificationTmpl.Execute(&buf, sub); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func buildFormConfirmationHTML(sub forms.Submission) (string, error) {
	var buf bytes.Buffer
	if err := formConfirmationTmpl.Execute(&buf, sub); err != nil {
		return "", err
	}
	return buf.String(), nil
}
