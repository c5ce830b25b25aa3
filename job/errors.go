package job

import "errors"

var (
	// ErrFatalConfiguration aborts an execution before any rendition is attempted.
	ErrFatalConfiguration = errors.New("fatal configuration error")
	ErrMissingDimensions  = wrapFatal("missing dimensions argument")
	ErrInvalidQuality     = wrapFatal("invalid quality argument")

	// ErrMissingPayloadAsset means the work item's payload path did not resolve.
	ErrMissingPayloadAsset = errors.New("payload asset not found")
)

type fatalConfigError struct{ msg string }

func (e *fatalConfigError) Error() string { return e.msg }
func (e *fatalConfigError) Unwrap() error { return ErrFatalConfiguration }

func wrapFatal(msg string) error {
	return &fatalConfigError{msg: msg}
}
