package renderer

import "errors"

var (
	ErrInvalidOption      = errors.New("renderer: invalid option")
	ErrTooManyFrameErrors = errors.New("renderer: too many consecutive frame errors")
	ErrFrameSizeMismatch  = errors.New("renderer: frame data does not match frame dimensions")
)
