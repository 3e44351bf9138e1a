package resume

import "errors"

var ErrExtractionFailed = errors.New("extraction failed")

// ExtractionError reports why a document could not be turned into text.
// Permanent errors are not retried.
type ExtractionError struct {
	Permanent bool
	Err       error
}

func (e *ExtractionError) Error() string {
	if e == nil {
		return ""
	}
	kind := "transient"
	if e.Permanent {
		kind = "permanent"
	}
	if e.Err == nil {
		return ErrExtractionFailed.Error() + " (" + kind + ")"
	}
	return ErrExtractionFailed.Error() + " (" + kind + "): " + e.Err.Error()
}

func (e *ExtractionError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func (e *ExtractionError) Is(target error) bool {
	return target == ErrExtractionFailed
}

func Permanent(err error) error {
	return &ExtractionError{Permanent: true, Err: err}
}

func Transient(err error) error {
	return &ExtractionError{Permanent: false, Err: err}
}

// IsPermanent reports whether err carries a permanent ExtractionError.
func IsPermanent(err error) bool {
	var ee *ExtractionError
	if errors.As(err, &ee) {
		return ee.Permanent
	}
	return false
}
