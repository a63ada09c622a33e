package service

import "errors"

var (
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrSessionNotFound     = errors.New("session not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrLoginTaken          = errors.New("login already taken")
	ErrEmailTaken          = errors.New("email already taken")
	ErrCodeNotFound        = errors.New("code not found")
	ErrCodeExpired         = errors.New("code expired")
	ErrAlreadyConfirmed    = errors.New("email already confirmed")
	ErrInvalidRecoveryCode = errors.New("invalid recovery code")
)
