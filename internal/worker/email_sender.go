package worker

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"

	"github.com/vibe-gaming/publisher/internal/config"
	emailProvider "github.com/vibe-gaming/publisher/pkg/email"
)

const (
	confirmationSubject = "Confirm your registration"
	recoverySubject     = "Password recovery"

	confirmationPath = "/confirm-email"
	recoveryPath     = "/password-recovery"
)

type emailSender struct {
	sender emailProvider.Sender
	config config.EmailConfig
}

func newEmailSender(
	sender emailProvider.Sender,
	config config.EmailConfig,
) *emailSender {
	return &emailSender{
		sender: sender,
		config: config,
	}
}

type codeEmailInput struct {
	Link string
	Code string
}

func (s *emailSender) SendConfirmationEmail(ctx context.Context, email string, code string) error {
	return s.send(email, confirmationSubject, s.config.Templates.Confirmation, codeEmailInput{
		Link: s.link(confirmationPath, "code", code),
		Code: code,
	})
}

func (s *emailSender) SendRecoveryEmail(ctx context.Context, email string, code string) error {
	return s.send(email, recoverySubject, s.config.Templates.Recovery, codeEmailInput{
		Link: s.link(recoveryPath, "recoveryCode", code),
		Code: code,
	})
}

func (s *emailSender) send(email string, subject string, templateFile string, data codeEmailInput) error {
	sendInput := emailProvider.SendEmailInput{Subject: subject, To: email}

	if err := sendInput.GenerateBodyFromHTML(filepath.Join(s.config.TemplatesDir, templateFile), data); err != nil {
		return fmt.Errorf("generate email failed: %w", err)
	}

	if err := s.sender.Send(sendInput); err != nil {
		return fmt.Errorf("send email failed: %w", err)
	}

	return nil
}

func (s *emailSender) link(path string, param string, code string) string {
	return s.config.FrontendURL + path + "?" + url.Values{param: []string{code}}.Encode()
}
