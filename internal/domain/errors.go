package domain

import "errors"

// Domain errors
var (
	ErrInvalidTimestamp = errors.New("invalid ISO-8601 timestamp")
	ErrMissingScore     = errors.New("share text matched but carries no score token")
	ErrNoMessages       = errors.New("no messages found")
	ErrAlreadyPosted    = errors.New("scoreboard already posted")
	ErrUnknownGame      = errors.New("unknown game key")
	ErrInvalidRequest   = errors.New("invalid request")
	ErrInternalError    = errors.New("internal server error")
)

// IsClassificationError checks if an error came from classifying a single
// message, where the caller may choose to skip rather than abort the run.
func IsClassificationError(err error) bool {
	return errors.Is(err, ErrInvalidTimestamp) || errors.Is(err, ErrMissingScore)
}
