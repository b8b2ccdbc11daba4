package errs

import (
	"errors"
)

var (
	ErrMissingField      = errors.New("name, date and time are required")
	ErrBlankName         = errors.New("name must not be blank")
	ErrNameTooLong       = errors.New("name must be at most 50 characters")
	ErrMalformedDateTime = errors.New("date or time is malformed")
	ErrPastDateTime      = errors.New("cannot book a date and time in the past")
	ErrDuplicateSlot     = errors.New("another reservation already holds this date and time")
	ErrRecordMissing     = errors.New("reservation not found")

	// ErrNotFound is the store level miss; the service reports it as ErrRecordMissing.
	ErrNotFound = errors.New("not found")
)

const (
	ReasonMissingField      = "MissingField"
	ReasonBlankName         = "BlankName"
	ReasonNameTooLong       = "NameTooLong"
	ReasonMalformedDateTime = "MalformedDateTime"
	ReasonPastDateTime      = "PastDateTime"
	ReasonDuplicateSlot     = "DuplicateSlot"
	ReasonRecordMissing     = "RecordMissing"
)

var reasons = []struct {
	err    error
	reason string
}{
	{ErrMissingField, ReasonMissingField},
	{ErrBlankName, ReasonBlankName},
	{ErrNameTooLong, ReasonNameTooLong},
	{ErrMalformedDateTime, ReasonMalformedDateTime},
	{ErrPastDateTime, ReasonPastDateTime},
	{ErrDuplicateSlot, ReasonDuplicateSlot},
	{ErrRecordMissing, ReasonRecordMissing},
}

// Reason returns the rejection code carried by err, or "" for errors that
// are not rejections.
func Reason(err error) string {
	for _, r := range reasons {
		if errors.Is(err, r.err) {
			return r.reason
		}
	}
	return ""
}

// IsValidation reports whether err is a user-correctable input error.
func IsValidation(err error) bool {
	switch Reason(err) {
	case ReasonMissingField, ReasonBlankName, ReasonNameTooLong, ReasonMalformedDateTime, ReasonPastDateTime:
		return true
	}
	return false
}

type ErrorResponse struct {
	Message string `json:"message"`
	Reason  string `json:"reason,omitempty"`
}
