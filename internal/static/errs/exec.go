package errs

import "errors"

var (
	ErrEmptyTestCases      = errors.New("at least one test case is required")
	ErrUnsupportedLanguage = errors.New("unsupported language")
	ErrCapacityExhausted   = errors.New("execution capacity exhausted")
	ErrJudgementNotFound   = errors.New("judgement not found")
)

var ErrInvalidToken = errors.New("invalid token")
