package domain

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrInvalidInput        = errors.New("invalid input")
	ErrProviderUnavailable = errors.New("provider unavailable")
	ErrProviderRejected    = errors.New("provider rejected request")
	ErrProviderTimeout     = errors.New("provider timed out")
	ErrTemplateNotFound    = errors.New("composite template not found")
)
