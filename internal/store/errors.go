package store

import "fmt"

// PersistenceError wraps a storage failure with the operation that caused
// it. The dialog shell surfaces these to the user as one generic failure
// message; the cause stays in the logs.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func persistErr(op string, err error) error {
	return &PersistenceError{Op: op, Err: err}
}
