package hostabi

import (
	"fmt"
	"strconv"
)

// Status is the result code returned by every legacy host call.
type Status uint32

const (
	StatusOK                Status = 0
	StatusErr               Status = 1
	StatusInvalid           Status = 2
	StatusBadF              Status = 3
	StatusBufLen            Status = 4
	StatusUnsupported       Status = 5
	StatusBadAlign          Status = 6
	StatusHTTPInvalid       Status = 7
	StatusHTTPUser          Status = 8
	StatusHTTPIncomplete    Status = 9
	StatusNone              Status = 10
	StatusHTTPHeadTooLarge  Status = 11
	StatusHTTPInvalidStatus Status = 12
	StatusLimitExceeded     Status = 13
	StatusAgain             Status = 14
)

var statusNames = [...]string{
	StatusOK:                "ok",
	StatusErr:               "error",
	StatusInvalid:           "invalid argument",
	StatusBadF:              "bad handle",
	StatusBufLen:            "buffer too small",
	StatusUnsupported:       "unsupported",
	StatusBadAlign:          "bad alignment",
	StatusHTTPInvalid:       "invalid HTTP",
	StatusHTTPUser:          "HTTP user error",
	StatusHTTPIncomplete:    "incomplete HTTP message",
	StatusNone:              "none",
	StatusHTTPHeadTooLarge:  "HTTP head too large",
	StatusHTTPInvalidStatus: "invalid HTTP status",
	StatusLimitExceeded:     "limit exceeded",
	StatusAgain:             "try again",
}

func (s Status) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return "status " + strconv.FormatUint(uint64(s), 10)
}

// StatusError reports a failed host call.
type StatusError struct {
	Err    error
	Op     string
	Status Status
}

func (e *StatusError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Status)
}

func (e *StatusError) Unwrap() error {
	return e.Err
}

// Is matches another *StatusError with the same status.
func (e *StatusError) Is(target error) bool {
	t, ok := target.(*StatusError)
	return ok && t.Status == e.Status
}

func fail(op string, s Status) error {
	return &StatusError{Op: op, Status: s}
}
