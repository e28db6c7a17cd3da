package domain

import "errors"

var (
	ErrSurveyNotFound   = errors.New("survey not found")
	ErrInvalidFieldname = errors.New("invalid field name")
)
