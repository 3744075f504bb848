package domain

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrNetwork            = errors.New("network failure")
	ErrUploadFailed       = errors.New("file upload failed")
	ErrSubmissionRejected = errors.New("submission rejected")
	ErrSubmissionInFlight = errors.New("submission already in flight")

	ErrMissingTransactionID = errors.New("transaction id is required")
	ErrMissingDate          = errors.New("payment date is required")
	ErrInvalidMonthsPaid    = errors.New("months paid must be positive")
)
