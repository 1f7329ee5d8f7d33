package errors

// Contract violations are not returned. They abort the current operation by
// panicking with an *Error and are recovered only at invocation boundaries.

// Raise aborts the current operation with err.
func Raise(err *Error) {
	panic(err)
}

// IsFault reports whether err is a contract violation.
func IsFault(err error) bool {
	e, ok := err.(*Error)
	if !ok {
		return false
	}
	return e.Kind == KindUnknownHandle || e.Kind == KindIdentityMismatch
}

// Catch recovers a raised *Error into *errp. Any other panic value is re-raised.
// It must be called directly by a deferred statement:
//
//	defer errors.Catch(&err)
func Catch(errp *error) {
	r := recover()
	if r == nil {
		return
	}
	if e, ok := r.(*Error); ok {
		*errp = e
		return
	}
	panic(r)
}
