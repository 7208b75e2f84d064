package wizard

import "fmt"

// Code classifies a validation error.
type Code int

const (
	CodeInvalidArgument Code = iota
	CodeFailedPrecondition
)

func (c Code) String() string {
	switch c {
	case CodeInvalidArgument:
		return "INVALID_ARGUMENT"
	case CodeFailedPrecondition:
		return "FAILED_PRECONDITION"
	default:
		return "UNKNOWN"
	}
}

// Error is a user-facing validation failure. It never indicates corrupted
// state: the session is unchanged when one is returned.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func newInvalidArgument(message string) *Error {
	return &Error{Code: CodeInvalidArgument, Message: message}
}

func newFailedPrecondition(message string) *Error {
	return &Error{Code: CodeFailedPrecondition, Message: message}
}

var (
	ErrClientRequired      = newFailedPrecondition("Select a client before continuing")
	ErrArticlesRequired    = newFailedPrecondition("Add at least one article before continuing")
	ErrTransitionInFlight  = newFailedPrecondition("A step transition is already in progress")
	ErrNoPendingTransition = newFailedPrecondition("No step transition is pending")
	ErrNotAtConfirm        = newFailedPrecondition("The credit can only be confirmed from the last step")
	ErrAlreadyConfirmed    = newFailedPrecondition("This credit has already been confirmed")
	ErrFirstStep           = newFailedPrecondition("Already at the first step")
	ErrUnknownClient       = newInvalidArgument("Unknown client")
	ErrUnknownArticle      = newInvalidArgument("Unknown article")
	ErrNegativeDownPayment = newInvalidArgument("Down payment cannot be negative")
	ErrTermNotOffered      = newInvalidArgument("Term is not offered for the selected articles")
	ErrUnknownFrequency    = newInvalidArgument("Unknown payment frequency")
)

// withID annotates a sentinel with the offending id while keeping it
// matchable with errors.Is.
func withID(err *Error, id string) error {
	return fmt.Errorf("%w: %s", err, id)
}
