package mailer

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"text/template"
	"time"

	gomail "gopkg.in/mail.v2"
)

type smtpMailer struct {
	fromEmail string
	host      string
	port      int
	username  string
	password  string
}

func NewSMTPClient(host string, port int, username, password, fromEmail string) (Client, error) {
	if host == "" {
		return nil, errors.New("mailer: SMTP host is required")
	}
	if fromEmail == "" {
		return nil, errors.New("mailer: from email is required")
	}

	return &smtpMailer{
		fromEmail: fromEmail,
		host:      host,
		port:      port,
		username:  username,
		password:  password,
	}, nil
}

func (m *smtpMailer) Send(templateFile, username, email string, data any) (int, error) {
	tmpl, err := template.ParseFS(FS, "templates/"+templateFile)
	if err != nil {
		return -1, err
	}

	subject := new(bytes.Buffer)
	if err := tmpl.ExecuteTemplate(subject, "subject", data); err != nil {
		return -1, err
	}

	body := new(bytes.Buffer)
	if err := tmpl.ExecuteTemplate(body, "body", data); err != nil {
		return -1, err
	}

	message := gomail.NewMessage()
	message.SetHeader("From", message.FormatAddress(m.fromEmail, FromName))
	message.SetHeader("To", email)
	message.SetHeader("Subject", subject.String())
	message.SetBody("text/html", body.String())

	dialer := gomail.NewDialer(m.host, m.port, m.username, m.password)

	var retryErr error
	for i := 0; i < maxRetries; i++ {
		retryErr = dialer.DialAndSend(message)
		if retryErr == nil {
			return http.StatusOK, nil
		}
		// backoff before the next attempt
		time.Sleep(time.Second * time.Duration(i+1))
	}

	return -1, fmt.Errorf("failed to send email after %d attempts: %w", maxRetries, retryErr)
}
