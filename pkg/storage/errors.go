package storage

import "github.com/pkg/errors"

var (
	// ErrMalformedHeader is returned at open time when the file or graph header cannot be trusted.
	ErrMalformedHeader = errors.New("malformed graph header")
	// ErrDecodeInconsistency means a block decoded but its contents contradict the format.
	ErrDecodeInconsistency = errors.New("graph decode inconsistency")
	ErrIOFailure           = errors.New("graph file io failure")
)

func MalformedHeaderf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrMalformedHeader, format, args...)
}

func DecodeInconsistencyf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrDecodeInconsistency, format, args...)
}

func IOFailuref(cause error, format string, args ...interface{}) error {
	return errors.Wrapf(ErrIOFailure, format+": %v", append(args, cause)...)
}
