// Package content renders the user-facing messages shared by the modules
// that deliver them.
package content

import (
	"bytes"
	"text/template"

	"github.com/carventure/sellerhub/internal/pkg/mail"
)

const (
	otpEmailSubject = "Your OTP Code"
	otpEmailBody    = "Your OTP code is: {{ .code }}"
)

var otpEmailTemplate = template.Must(template.New("otp_email").Option("missingkey=zero").Parse(otpEmailBody))

// OtpEmail builds the message carrying code to the address to.
func OtpEmail(to, code string) (mail.Message, error) {
	var buf bytes.Buffer
	if err := otpEmailTemplate.Execute(&buf, map[string]any{"code": code}); err != nil {
		return mail.Message{}, err
	}

	return mail.Message{
		To:       []string{to},
		Subject:  otpEmailSubject,
		TextBody: buf.String(),
	}, nil
}
