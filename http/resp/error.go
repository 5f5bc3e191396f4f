package resp

import "errors"

var (
	ErrDone          = errors.New("response is done")
	ErrDoubleSend    = errors.New("headers already sent")
	ErrInvalid       = errors.New("invalid")
	ErrNotFound      = errors.New("not found")
	ErrStreamAborted = errors.New("stream aborted")
	ErrTerminated    = errors.New("response terminated")
	ErrUnknownCodec  = errors.New("unknown codec")
)
