package service

import "errors"

var (
	// ErrValidation помечает ошибки входных данных; детали добавляются через %w
	ErrValidation = errors.New("validation error")

	ErrInvalidCredentials = errors.New("invalid credentials")
)
