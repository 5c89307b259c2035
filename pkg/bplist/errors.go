package bplist

import "fmt"

// DecodeError is returned for every failure described in §4.1's Failure
// modes: a too-short stream, a bad header or trailer, a bad marker byte, an
// unsupported integer/real/date width, or a root object that isn't a dict.
// pkg/webarchive wraps every DecodeError as its own InvalidFile error kind.
type DecodeError struct {
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("bplist: %s", e.Reason)
}

func errorf(format string, args ...any) error {
	return &DecodeError{Reason: fmt.Sprintf(format, args...)}
}
