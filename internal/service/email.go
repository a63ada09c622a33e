package service

import (
	"context"

	"github.com/vibe-gaming/publisher/internal/config"
	"github.com/vibe-gaming/publisher/internal/queue/task"
	"github.com/vibe-gaming/publisher/pkg/logger"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// TaskEnqueuer is satisfied by *asynq.Client.
type TaskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// EmailService hands codes to the email queue. Delivery is best effort: a
// failed enqueue is logged and never undoes the code that was issued.
type EmailService struct {
	enqueuer TaskEnqueuer
	config   config.EmailConfig
	enabled  bool
}

func newEmailService(enqueuer TaskEnqueuer, config config.EmailConfig) *EmailService {
	return &EmailService{
		enabled:  config.Enabled && enqueuer != nil,
		enqueuer: enqueuer,
		config:   config,
	}
}

func (s *EmailService) SendConfirmation(ctx context.Context, email string, code string) {
	s.enqueue(ctx, email, task.EmailKindConfirmation, code)
}

func (s *EmailService) SendRecovery(ctx context.Context, email string, code string) {
	s.enqueue(ctx, email, task.EmailKindRecovery, code)
}

func (s *EmailService) enqueue(ctx context.Context, email string, kind task.EmailKind, code string) {
	if !s.enabled {
		return
	}

	t, err := task.NewSendEmailTask(email, kind, code)
	if err != nil {
		logger.Error("create send email task failed", zap.Error(err), zap.String("kind", string(kind)))
		return
	}

	info, err := s.enqueuer.EnqueueContext(ctx, t)
	if err != nil {
		logger.Error("enqueue send email task failed", zap.Error(err), zap.String("kind", string(kind)))
		return
	}

	logger.Debug("send email task enqueued", zap.String("task_id", info.ID), zap.String("kind", string(kind)))
}
