package worker

import (
	"context"

	"github.com/vibe-gaming/publisher/internal/config"
	emailProvider "github.com/vibe-gaming/publisher/pkg/email"
)

type Workers struct {
	EmailSender EmailSender
}

type Deps struct {
	EmailProvider emailProvider.Sender
	Config        *config.Config
}

type EmailSender interface {
	SendConfirmationEmail(ctx context.Context, email string, code string) error
	SendRecoveryEmail(ctx context.Context, email string, code string) error
}

func NewWorkers(deps Deps) *Workers {
	return &Workers{
		EmailSender: newEmailSender(deps.EmailProvider, deps.Config.Email),
	}
}
