package domain

import (
	"errors"
	"fmt"
)

// ErrNoArtifacts is returned when a batch finishes without a single file in
// its workspace. A job only counts as successful if something was produced.
var ErrNoArtifacts = errors.New("no videos could be downloaded")

// InvalidInputError reports a request that failed validation before any job
// resources were allocated. Its message is safe to show to the caller.
type InvalidInputError struct {
	Message string
}

func (e *InvalidInputError) Error() string {
	return e.Message
}

// NewInvalidInput creates an InvalidInputError with a formatted message.
func NewInvalidInput(format string, args ...interface{}) *InvalidInputError {
	return &InvalidInputError{Message: fmt.Sprintf(format, args...)}
}

// FetchError reports a single URL that could not be fetched after the
// adapter's internal retries. It is recorded in the job summary and never
// fails the batch on its own.
type FetchError struct {
	URL    string
	Reason string
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %s", e.URL, e.Reason)
}

// FetchReason extracts the human-readable failure reason from an error
// returned by a fetcher. Unexpected error types fall back to Error().
func FetchReason(err error) string {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Reason
	}
	return err.Error()
}
