package mailer

import "embed"

const (
	FromName        = "HonHonji"
	maxRetries      = 3
	WelcomeTemplate = "welcome.tmpl"
)

//go:embed "templates"
var FS embed.FS

type Client interface {
	Send(templateFile, username, email string, data any) (int, error)
}
