package resp

import (
	"fmt"
	"net/http"
)

// A Fn is a functional option that mutates the state of the Response.
type Fn func(*Response) error

// A Response is the internal object a Writer send method builds while applying all
// functional options.
type Response struct {
	code        int
	contentType string
	header      http.Header
}

func newResponse(code int, opts []Fn) (*Response, error) {
	rr := &Response{code: code, header: make(http.Header)}
	for _, opt := range opts {
		if err := opt(rr); err != nil {
			return nil, err
		}
	}

	return rr, nil
}

// Code sets the response status code.
func Code(c int) Fn {
	return func(r *Response) error {
		if c < 100 || c > 599 {
			return fmt.Errorf("%w: status code %d", ErrInvalid, c)
		}

		r.code = c
		return nil
	}
}

// ContentType overrides the content type a send method would otherwise resolve.
func ContentType(ct string) Fn {
	return func(r *Response) error {
		if ct == "" {
			return fmt.Errorf("%w: empty content type", ErrInvalid)
		}

		r.contentType = ct
		return nil
	}
}

// Header adds the key-value pair to the response headers.
func Header(key, val string) Fn {
	return func(r *Response) error {
		r.header.Add(key, val)
		return nil
	}
}
