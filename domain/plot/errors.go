package plot

import (
	"errors"

	pkgerrors "plotbot/pkg/errors"
)

// FailureKind classifies why a command could not be plotted.
type FailureKind string

const (
	KindMalformedCommand    FailureKind = "MALFORMED_COMMAND"
	KindInvalidRange        FailureKind = "INVALID_RANGE"
	KindUnsupportedFunction FailureKind = "UNSUPPORTED_FUNCTION"
)

// Sentinels for errors.Is. Never mutate them; call Clone before adding details.
var (
	ErrMalformedCommand = pkgerrors.NewDomainError(
		pkgerrors.DomainValidationError,
		string(KindMalformedCommand),
		"command must be [min:max] followed by a line with name(x)",
	)

	ErrInvalidRange = pkgerrors.NewDomainError(
		pkgerrors.DomainValidationError,
		string(KindInvalidRange),
		"range bounds are not valid finite numbers with min <= max",
	)

	ErrUnsupportedFunction = pkgerrors.NewDomainError(
		pkgerrors.DomainValidationError,
		string(KindUnsupportedFunction),
		"function is not in the supported set",
	)
)

// KindOf reports which failure kind err carries, if any.
func KindOf(err error) (FailureKind, bool) {
	switch {
	case errors.Is(err, ErrMalformedCommand):
		return KindMalformedCommand, true
	case errors.Is(err, ErrInvalidRange):
		return KindInvalidRange, true
	case errors.Is(err, ErrUnsupportedFunction):
		return KindUnsupportedFunction, true
	default:
		return "", false
	}
}
