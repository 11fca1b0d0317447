package controller

import "fmt"

// Submission stages reported by SubmissionError
const (
	StageUpload = "upload"
	StageCreate = "create"
)

// ValidationError is a locally rejected input. It never reaches the store
// and is shown inline on the form.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// SubmissionError is a failed upload or creation call after a valid file was
// staged. It is not retried here; the host surfaces it.
type SubmissionError struct {
	Stage string
	Err   error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("bill submission failed at %s: %v", e.Stage, e.Err)
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}
