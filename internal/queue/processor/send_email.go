package processor

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/vibe-gaming/publisher/internal/queue/task"
	"github.com/vibe-gaming/publisher/internal/worker"

	"github.com/hibiken/asynq"
)

type sendEmailProcessor struct {
	workers *worker.Workers
}

func NewSendEmailProcessor(workers *worker.Workers) *sendEmailProcessor {
	return &sendEmailProcessor{
		workers: workers,
	}
}

func (p *sendEmailProcessor) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var data task.SendEmail
	err := json.Unmarshal(t.Payload(), &data)
	if err != nil {
		return fmt.Errorf("process send email task json unmarshal failed: %w: %w", err, asynq.SkipRetry)
	}

	switch data.Kind {
	case task.EmailKindConfirmation:
		err = p.workers.EmailSender.SendConfirmationEmail(ctx, data.Email, data.Code)
	case task.EmailKindRecovery:
		err = p.workers.EmailSender.SendRecoveryEmail(ctx, data.Email, data.Code)
	default:
		return fmt.Errorf("unknown email kind %q: %w", data.Kind, asynq.SkipRetry)
	}
	if err != nil {
		return fmt.Errorf("send %s email failed: %w", data.Kind, err)
	}

	return nil
}
