package model

import "errors"

var (
	// ErrTaskNotFound covers both an absent task and a task owned by
	// someone else; callers cannot tell the two apart.
	ErrTaskNotFound = errors.New("task not found")

	ErrValidation  = errors.New("validation error")
	ErrInvalidDate = errors.New("invalid date format")

	// ErrOracleUnavailable means the assistant credential is missing.
	ErrOracleUnavailable = errors.New("assistant is not configured")
	// ErrOracleFailure is a transient assistant failure.
	ErrOracleFailure = errors.New("assistant request failed")
)
