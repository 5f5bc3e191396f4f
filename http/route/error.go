package route

import "errors"

var (
	ErrNilView = errors.New("matched route has no view")
	ErrNoRoute = errors.New("no route matched and no error route declared")
)
