/*
Package history defines where a request's location comes from.

A History matches its current location against a route.Table.
On the server, the location is the request being handled and it is matched once.
In a client, the location changes as the user navigates;
listeners registered with RouteChangeListener are told about each change
and the location is matched again.
*/
package history

import (
	"errors"
	"net/http"
	"reflect"
	"sync"

	"github.com/xy-planning-network/switchback/http/route"
)

var ErrHistoryType = errors.New("history must be a non-nil History")

// A Location is where a History currently points.
type Location struct {
	Method string
	URL    string
}

// A History matches its current Location against a route.Table.
type History interface {
	MatchRoute(t *route.Table) (*route.MatchResult, error)
	RouteChangeListener(fn func(Location))
	RemoveChangeListener()
}

// Validate returns ErrHistoryType if h is nil or holds a nil pointer.
func Validate(h History) error {
	if h == nil {
		return ErrHistoryType
	}

	if v := reflect.ValueOf(h); v.Kind() == reflect.Ptr && v.IsNil() {
		return ErrHistoryType
	}

	return nil
}

// Server is the History of one HTTP request.
type Server struct {
	r *http.Request
}

// NewServer constructs the History for r.
func NewServer(r *http.Request) *Server { return &Server{r: r} }

// MatchRoute matches the request's path and method against t.
func (s *Server) MatchRoute(t *route.Table) (*route.MatchResult, error) {
	return t.Match(s.r.URL.Path, s.r.Method)
}

// RouteChangeListener is a no-op: a request's location never changes.
func (s *Server) RouteChangeListener(func(Location)) {}

// RemoveChangeListener is a no-op.
func (s *Server) RemoveChangeListener() {}

// Mock is a History whose Location changes through Navigate, standing in for a browser.
type Mock struct {
	mu       sync.Mutex
	loc      Location
	listener func(Location)
}

// NewMock constructs a Mock pointing at url.
// An empty method defaults to GET.
func NewMock(method, url string) *Mock {
	if method == "" {
		method = http.MethodGet
	}

	return &Mock{loc: Location{Method: method, URL: url}}
}

// Location returns where m currently points.
func (m *Mock) Location() Location {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loc
}

// MatchRoute matches the current Location against t.
// Unlike Server, it is meant to be called again after every navigation.
func (m *Mock) MatchRoute(t *route.Table) (*route.MatchResult, error) {
	loc := m.Location()
	return t.Match(loc.URL, loc.Method)
}

// RouteChangeListener registers fn, replacing any listener registered before.
func (m *Mock) RouteChangeListener(fn func(Location)) {
	m.mu.Lock()
	m.listener = fn
	m.mu.Unlock()
}

// RemoveChangeListener unregisters the listener.
func (m *Mock) RemoveChangeListener() {
	m.mu.Lock()
	m.listener = nil
	m.mu.Unlock()
}

// Navigate points m at url with a GET and notifies the listener, if any.
func (m *Mock) Navigate(url string) {
	m.mu.Lock()
	m.loc = Location{Method: http.MethodGet, URL: url}
	loc, fn := m.loc, m.listener
	m.mu.Unlock()

	if fn != nil {
		fn(loc)
	}
}
