package domain

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrInvalidInput   = errors.New("invalid input")
	ErrTimeout        = errors.New("timed out waiting for worker confirmation")
	ErrWorkerRejected = errors.New("worker rejected the command")
	ErrUnauthorized   = errors.New("unauthorized")
)
