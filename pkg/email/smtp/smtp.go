package smtp

import (
	"github.com/go-gomail/gomail"
	"github.com/pkg/errors"
	"github.com/vibe-gaming/publisher/pkg/email"
)

type SMTPSender struct {
	from   string
	dialer gomailDialer
}

type gomailDialer interface {
	DialAndSend(m ...*gomail.Message) error
}

func NewSMTPSender(from, pass, host string, port int) (*SMTPSender, error) {
	if !email.IsEmailValid(from) {
		return nil, errors.New("invalid from email")
	}

	return &SMTPSender{from: from, dialer: gomail.NewDialer(host, port, from, pass)}, nil
}

func (s *SMTPSender) Send(input email.SendEmailInput) error {
	if err := input.Validate(); err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", s.from)
	msg.SetHeader("To", input.To)
	msg.SetHeader("Subject", input.Subject)
	msg.SetBody("text/html", input.Body)

	if err := s.dialer.DialAndSend(msg); err != nil {
		return errors.Wrap(err, "failed to sent email via smtp")
	}

	return nil
}
