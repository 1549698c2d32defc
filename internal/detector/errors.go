package detector

import "errors"

var (
	ErrDetectorUnavailable = errors.New("detector unavailable")
	ErrDetectorTimeout     = errors.New("detector timeout")
	ErrInvalidResponse     = errors.New("detector returned invalid response")
)
