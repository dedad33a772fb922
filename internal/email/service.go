// Package email sends collaboration invitations via SMTP.
package email

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"
	"strings"

	"scenecraft-backend/internal/config"
)

// Service sends invitation mail
type Service struct {
	config config.EmailConfig
	server string
	auth   smtp.Auth
}

// NewService creates an email service from SMTP settings
func NewService(cfg config.EmailConfig) *Service {
	return &Service{
		config: cfg,
		server: cfg.Host + ":" + cfg.Port,
		auth:   smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host),
	}
}

// IsConfigured reports whether mail can actually be sent
func (s *Service) IsConfigured() bool {
	return s.config.Host != "" && s.config.Port != "" && s.config.Username != "" && s.config.Password != ""
}

// InvitationData fills the invitation template
type InvitationData struct {
	AppName     string
	InviterName string
	ProjectName string
	AcceptURL   string
	Email       string
}

// SendInvitation mails a project collaboration invite
func (s *Service) SendInvitation(to, inviterName, projectName, acceptURL string) error {
	if inviterName == "" {
		inviterName = "A team member"
	}
	if projectName == "" {
		projectName = "a project"
	}

	data := InvitationData{
		AppName:     s.config.FromName,
		InviterName: inviterName,
		ProjectName: projectName,
		AcceptURL:   acceptURL,
		Email:       to,
	}

	subject := fmt.Sprintf("You've been invited to collaborate on %s", projectName)
	html, err := renderTemplate(invitationTemplate, data)
	if err != nil {
		return fmt.Errorf("render invitation template: %w", err)
	}

	return s.sendHTML([]string{to}, subject, html)
}

func (s *Service) sendHTML(to []string, subject, htmlBody string) error {
	if !s.IsConfigured() {
		return fmt.Errorf("email not configured")
	}

	from := s.config.From
	if s.config.FromName != "" {
		from = fmt.Sprintf("%s <%s>", s.config.FromName, s.config.From)
	}

	var msg bytes.Buffer
	fmt.Fprintf(&msg, "To: %s\r\n", strings.Join(to, ", "))
	fmt.Fprintf(&msg, "From: %s\r\n", from)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	fmt.Fprintf(&msg, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&msg, "Content-Type: text/html; charset=UTF-8\r\n")
	fmt.Fprintf(&msg, "\r\n")
	fmt.Fprintf(&msg, "%s\r\n", htmlBody)

	return smtp.SendMail(s.server, s.auth, s.config.From, to, msg.Bytes())
}

func renderTemplate(tmpl string, data interface{}) (string, error) {
	t := template.Must(template.New("email").Parse(tmpl))
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

const invitationTemplate = `<!DOCTYPE html>
<html>
<head>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: linear-gradient(135deg, #0B2545 0%, #1a3a5c 100%); color: white; padding: 30px; text-align: center; border-radius: 10px 10px 0 0; }
        .header h1 { margin: 0; color: #ffd700; }
        .content { background: #f9f9f9; padding: 30px; border-radius: 0 0 10px 10px; }
        .button { display: inline-block; background: linear-gradient(135deg, #ffd700 0%, #ffed4e 100%); color: #0B2545; padding: 15px 30px; text-decoration: none; border-radius: 8px; font-weight: bold; margin: 20px 0; }
        .footer { text-align: center; margin-top: 20px; color: #666; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>🎬 {{.AppName}} Invitation</h1>
        </div>
        <div class="content">
            <h2>You've been invited to collaborate!</h2>
            <p><strong>{{.InviterName}}</strong> has invited you to collaborate on <strong>{{.ProjectName}}</strong> on {{.AppName}}.</p>

            <p>{{.AppName}} is a collaborative storyboard editor that lets you create, edit, and share storyboards in real-time with your team.</p>

            <center>
                <a href="{{.AcceptURL}}" class="button">
                    Accept Invitation
                </a>
            </center>

            <p>If you don't have an account yet, you'll be able to create one when you click the button above.</p>

            <p>Happy collaborating!</p>
            <p>- The {{.AppName}} Team</p>
        </div>
        <div class="footer">
            <p>This invitation was sent to {{.Email}}. If you didn't expect this email, you can safely ignore it.</p>
        </div>
    </div>
</body>
</html>`
