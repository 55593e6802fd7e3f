package reservations

import "errors"

// ValidationError reports input the service refuses before touching storage.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}

func validationError(msg string) error {
	return &ValidationError{msg: msg}
}

var (
	ErrSlotUnavailable = errors.New("the date is not available for reservation")
	ErrNotFound        = errors.New("no reservations found")
	ErrNoAvailability  = errors.New("no available dates within the search horizon")
)

// StorageError reports a failed repository call. Err is the underlying cause.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func storageError(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}
