package services

import "errors"

var (
	ErrSurveyNotFound     = errors.New("survey not found")
	ErrInvalidSurvey      = errors.New("invalid survey")
	ErrUnknownQuestion    = errors.New("question not found")
	ErrMissingOrderID     = errors.New("orderId is required")
	ErrResponseNotFound   = errors.New("response not found")
	ErrExportNotFound     = errors.New("export job not found")
	ErrUnsupportedFormat  = errors.New("unsupported export format")
	ErrInvalidFilter      = errors.New("invalid filter")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)
