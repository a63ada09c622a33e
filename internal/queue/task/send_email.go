package task

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

const (
	SendEmailTaskName  = "sendEmailTask"
	SendEmailQueueName = "sendEmailQueue"
)

type EmailKind string

const (
	EmailKindConfirmation EmailKind = "confirmation"
	EmailKindRecovery     EmailKind = "recovery"
)

type SendEmail struct {
	Email string    `json:"email"`
	Kind  EmailKind `json:"kind"`
	Code  string    `json:"code"`
}

func NewSendEmailTask(email string, kind EmailKind, code string) (*asynq.Task, error) {
	var data SendEmail
	data.Email = email
	data.Kind = kind
	data.Code = code

	payload, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("json data marshal failed: %w", err)
	}

	return asynq.NewTask(
		SendEmailTaskName,
		payload,
		asynq.MaxRetry(5),
		asynq.Queue(SendEmailQueueName),
	), nil
}
