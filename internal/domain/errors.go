package domain

import "errors"

// Error classes for the three pipeline stages. Stage errors wrap exactly one
// of these sentinels so callers can classify failures with errors.Is.
var (
	// ErrSourceUnavailable covers network and HTTP failures talking to the
	// weather API. Retryable unless marked Permanent.
	ErrSourceUnavailable = errors.New("weather source unavailable")

	// ErrMalformedRecord covers missing or out-of-range fields in the API
	// response. Never retried; it signals an upstream contract break.
	ErrMalformedRecord = errors.New("malformed weather record")

	// ErrSinkUnavailable covers database connection and statement failures.
	// Retryable unless marked Permanent.
	ErrSinkUnavailable = errors.New("weather sink unavailable")
)

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }

func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as non-retryable without changing its error class.
// Used for well-formed 4xx client responses, which indicate a configuration
// fault that no amount of retrying will fix.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// Retryable reports whether the pipeline may retry the stage that produced err.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	var pe *permanentError
	if errors.As(err, &pe) {
		return false
	}
	return !errors.Is(err, ErrMalformedRecord)
}
