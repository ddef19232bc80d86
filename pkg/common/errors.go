package common

import "github.com/cockroachdb/errors"

var (
	ErrAuthExpired         = errors.New("authorization expired, user re-consent required")
	ErrTransientProvider   = errors.New("provider temporarily unavailable")
	ErrMalformedRecord     = errors.New("malformed record")
	ErrDuplicate           = errors.New("duplicate record")
	ErrSignatureInvalid    = errors.New("invalid webhook signature")
	ErrNotFound            = errors.New("not found")
	ErrDanglingReference   = errors.New("referenced record does not exist")
	ErrJobCancelled        = errors.New("job cancelled")
	ErrJobInterrupted      = errors.New("job interrupted by restart")
	ErrSyncInProgress      = errors.New("sync already in progress")
	ErrInvalidTransition   = errors.New("invalid job state transition")
	ErrUnsupportedSource   = errors.New("unsupported source type")
	ErrConfirmationMissing = errors.New("cost confirmation required")
)

// UserMessage turns an error chain into a short summary that is safe to show
// to end users. Provider bodies and stack traces never leak through it.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrJobCancelled):
		return "cancelled by user"
	case errors.Is(err, ErrJobInterrupted):
		return "interrupted by a server restart, please resubmit"
	case errors.Is(err, ErrAuthExpired):
		return "connection needs to be re-authorized"
	case errors.Is(err, ErrTransientProvider):
		return "provider is unavailable right now, please retry later"
	case errors.Is(err, ErrSyncInProgress):
		return "a sync for this connection is already running"
	case errors.Is(err, ErrNotFound):
		return "referenced item was not found"
	case errors.Is(err, ErrDanglingReference):
		return "records reference an unknown bank account"
	case errors.Is(err, ErrUnsupportedSource):
		return "unsupported source type"
	case errors.Is(err, ErrConfirmationMissing):
		return "processing cost must be confirmed"
	case errors.Is(err, ErrMalformedRecord):
		return "record could not be parsed"
	case errors.Is(err, ErrSignatureInvalid):
		return "signature verification failed"
	}

	return "internal error"
}
