package pipeline

import (
	"errors"
	"fmt"
)

var (
	ErrOracleFailure         = errors.New("oracle call failed")
	ErrOracleResponseInvalid = errors.New("oracle response invalid")
	ErrNoActiveResume        = errors.New("no active resume, run extract first")
	ErrNoTailoredResume      = errors.New("no tailored resume, run tailor first")
	ErrEmptyJobDescription   = errors.New("job description is empty")
	ErrEmptyQuestion         = errors.New("question is empty")
)

// OracleResponseInvalidError carries the raw oracle text that could not be
// used. It matches ErrOracleResponseInvalid with errors.Is.
type OracleResponseInvalidError struct {
	Op  string
	Raw string
	Err error
}

func (e *OracleResponseInvalidError) Error() string {
	return fmt.Sprintf("%s: %v: %v", e.Op, ErrOracleResponseInvalid, e.Err)
}

func (e *OracleResponseInvalidError) Unwrap() error {
	return e.Err
}

func (e *OracleResponseInvalidError) Is(target error) bool {
	return target == ErrOracleResponseInvalid
}

func oracleFailure(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrOracleFailure, err)
}
