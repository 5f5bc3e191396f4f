package pipeline_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
	"github.com/xy-planning-network/switchback"
	"github.com/xy-planning-network/switchback/http/history"
	"github.com/xy-planning-network/switchback/http/pipeline"
	"github.com/xy-planning-network/switchback/http/render"
	"github.com/xy-planning-network/switchback/http/render/rendertest"
	"github.com/xy-planning-network/switchback/http/resp"
	"github.com/xy-planning-network/switchback/http/route"
	"github.com/xy-planning-network/switchback/logger"
)

func newTable(t *testing.T, routes ...route.Route) *route.Table {
	t.Helper()
	table, err := route.NewTable(routes...)
	require.NoError(t, err)
	return table
}

func newLogger(b *bytes.Buffer) logger.Logger {
	return logger.New(slog.New(slog.NewJSONHandler(b, &slog.HandlerOptions{Level: slog.LevelDebug})))
}

// stateLog records every State requests enter.
type stateLog struct {
	mu     sync.Mutex
	states []pipeline.State
}

func (sl *stateLog) observe(_ *http.Request, s pipeline.State) {
	sl.mu.Lock()
	sl.states = append(sl.states, s)
	sl.mu.Unlock()
}

func echo(markup string) render.Renderer {
	return render.RenderFunc(func(context.Context, route.View, render.Context) (string, error) {
		return markup, nil
	})
}

func TestNew(t *testing.T) {
	table := newTable(t)
	tcs := []struct {
		name  string
		table *route.Table
		rr    render.Renderer
		opts  []pipeline.ControllerOptFn
		err   error
	}{
		{"Valid", table, echo(""), nil, nil},
		{"Nil-Table", nil, echo(""), nil, switchback.ErrBadConfig},
		{"Nil-Renderer", table, nil, nil, switchback.ErrBadConfig},
		{"Nil-Unit", table, echo(""), []pipeline.ControllerOptFn{pipeline.WithUnits(nil)}, switchback.ErrBadConfig},
		{"Nil-Logger", table, echo(""), []pipeline.ControllerOptFn{pipeline.WithLogger(nil)}, switchback.ErrBadConfig},
		{"Nil-Error-Handler", table, echo(""), []pipeline.ControllerOptFn{pipeline.WithErrorHandler(nil)}, switchback.ErrBadConfig},
		{"Nil-History-Factory", table, echo(""), []pipeline.ControllerOptFn{pipeline.WithHistory(nil)}, history.ErrHistoryType},
		{
			"Nil-History",
			table,
			echo(""),
			[]pipeline.ControllerOptFn{pipeline.WithHistory(func(*http.Request) history.History { return nil })},
			history.ErrHistoryType,
		},
		{
			"Typed-Nil-History",
			table,
			echo(""),
			[]pipeline.ControllerOptFn{pipeline.WithHistory(func(*http.Request) history.History {
				var m *history.Mock
				return m
			})},
			history.ErrHistoryType,
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			// Act
			c, err := pipeline.New(tc.table, tc.rr, tc.opts...)

			// Assert
			require.ErrorIs(t, err, tc.err)
			if tc.err != nil {
				require.Nil(t, c)
			}
		})
	}
}

func TestControllerScenarioA(t *testing.T) {
	// Arrange
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	rr := rendertest.NewMockRenderer(ctrl)
	rr.EXPECT().
		Render(gomock.Any(), "V1", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ route.View, rc render.Context) (string, error) {
			require.Equal(t, http.StatusOK, rc.StatusCode)
			require.Equal(t, "/", rc.URL)
			require.Equal(t, "8080", rc.Port)
			require.NotNil(t, rc.Response)
			return "<p>hi</p>", nil
		}).
		Times(1)

	table := newTable(t, route.Route{Pattern: "/", Method: http.MethodGet, View: "V1"})
	c, err := pipeline.New(table, rr, pipeline.WithPort("8080"))
	require.NoError(t, err)

	rec := httptest.NewRecorder()

	// Act
	c.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	// Assert
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "<p>hi</p>", rec.Body.String())
	require.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
}

func TestControllerScenarioB(t *testing.T) {
	// Arrange
	var rendered route.View
	rr := render.RenderFunc(func(_ context.Context, v route.View, rc render.Context) (string, error) {
		rendered = v
		require.Equal(t, http.StatusNotFound, rc.StatusCode)
		return "<p>lost</p>", nil
	})

	table := newTable(t,
		route.Route{Pattern: "/a", Method: http.MethodGet, View: "V1"},
		route.Route{ErrorHandler: true, View: "VErr"},
	)
	c, err := pipeline.New(table, rr)
	require.NoError(t, err)

	rec := httptest.NewRecorder()

	// Act
	c.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/b", nil))

	// Assert
	require.Equal(t, "VErr", rendered)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "<p>lost</p>", rec.Body.String())
}

func TestControllerScenarioC(t *testing.T) {
	// Arrange
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	rr := rendertest.NewMockRenderer(ctrl)
	rr.EXPECT().Render(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	states := new(stateLog)
	ran := 0
	terminate := func(w *resp.Writer, _ *http.Request) error {
		ran++
		if err := w.Text("handled"); err != nil {
			return err
		}

		w.Terminate()
		w.Terminate()
		return nil
	}
	after := func(*resp.Writer, *http.Request) error {
		ran++
		return nil
	}

	table := newTable(t, route.Route{Pattern: "/", View: "V1"})
	c, err := pipeline.New(table, rr,
		pipeline.WithUnits(terminate, after),
		pipeline.WithStateObserver(states.observe),
	)
	require.NoError(t, err)

	rec := httptest.NewRecorder()

	// Act
	err = c.Serve(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	// Assert
	require.NoError(t, err)
	require.Equal(t, 1, ran)
	require.Equal(t, "handled", rec.Body.String())
	require.Equal(t, []pipeline.State{
		pipeline.Decorating,
		pipeline.RunningHandlers,
		pipeline.Terminated,
		pipeline.Done,
	}, states.states)
}

func TestControllerStates(t *testing.T) {
	// Arrange
	states := new(stateLog)
	table := newTable(t, route.Route{Pattern: "/", View: "V1"})
	c, err := pipeline.New(table, echo("<p>hi</p>"), pipeline.WithStateObserver(states.observe))
	require.NoError(t, err)

	// Act
	c.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	// Assert
	require.Equal(t, []pipeline.State{
		pipeline.Decorating,
		pipeline.RunningHandlers,
		pipeline.Matching,
		pipeline.Rendering,
		pipeline.Done,
	}, states.states)
}

func TestControllerTerminateDuringRender(t *testing.T) {
	// Arrange
	rr := render.RenderFunc(func(_ context.Context, _ route.View, rc render.Context) (string, error) {
		if err := rc.Response.Text("rendered elsewhere"); err != nil {
			return "", err
		}

		rc.Response.Terminate()
		return "<p>ignored</p>", nil
	})

	table := newTable(t, route.Route{Pattern: "/", View: "V1"})
	c, err := pipeline.New(table, rr)
	require.NoError(t, err)

	rec := httptest.NewRecorder()

	// Act
	err = c.Serve(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	// Assert
	require.NoError(t, err)
	require.Equal(t, "rendered elsewhere", rec.Body.String())
}

func TestControllerLogsMisuse(t *testing.T) {
	// Arrange
	logs := new(bytes.Buffer)
	unit := func(w *resp.Writer, _ *http.Request) error {
		defer w.Terminate()
		w.WriteHeader(http.StatusAccepted)
		w.WriteHeader(http.StatusTeapot)
		return nil
	}

	table := newTable(t, route.Route{Pattern: "/", View: "V1"})
	c, err := pipeline.New(table, echo("<p>unreached</p>"), pipeline.WithUnits(unit), pipeline.WithLogger(newLogger(logs)))
	require.NoError(t, err)

	rec := httptest.NewRecorder()

	// Act
	err = c.Serve(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	// Assert
	require.NoError(t, err)
	require.Equal(t, http.StatusAccepted, rec.Code)
	require.Contains(t, logs.String(), `"level":"WARN"`)
	require.Contains(t, logs.String(), "response mutated after it was settled")
}

func TestControllerEmptyMarkup(t *testing.T) {
	table := newTable(t, route.Route{Pattern: "/", View: "V1"})
	c, err := pipeline.New(table, echo(""))
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	require.NoError(t, c.Serve(rec, httptest.NewRequest(http.MethodGet, "/", nil)))

	require.Empty(t, rec.Body.String())
}

func TestControllerErrors(t *testing.T) {
	boom := errors.New("boom")
	tcs := []struct {
		name   string
		routes []route.Route
		rr     render.Renderer
		opts   []pipeline.ControllerOptFn
		err    error
		code   int
		body   string
	}{
		{
			"No-Route",
			[]route.Route{{Pattern: "/a", View: "V1"}},
			echo("<p>hi</p>"),
			nil,
			route.ErrNoRoute,
			http.StatusNotFound,
			"",
		},
		{
			"Nil-View",
			[]route.Route{{Pattern: "/", View: nil}},
			echo("<p>hi</p>"),
			nil,
			route.ErrNilView,
			http.StatusInternalServerError,
			"",
		},
		{
			"Wrapper-Returns-Nil",
			[]route.Route{{Pattern: "/", View: "V1"}},
			echo("<p>hi</p>"),
			[]pipeline.ControllerOptFn{pipeline.WithWrapper(func(route.View) route.View { return nil })},
			route.ErrNilView,
			http.StatusInternalServerError,
			"",
		},
		{
			"Render-Error",
			[]route.Route{{Pattern: "/", View: "V1"}},
			render.RenderFunc(func(context.Context, route.View, render.Context) (string, error) { return "", boom }),
			nil,
			boom,
			http.StatusInternalServerError,
			"",
		},
		{
			"Route-Controller-Error",
			[]route.Route{{Pattern: "/", View: "V1", Controller: func(*http.Request, route.Props) error { return boom }}},
			echo("<p>hi</p>"),
			nil,
			boom,
			http.StatusInternalServerError,
			"",
		},
		{
			"Unit-Error",
			[]route.Route{{Pattern: "/", View: "V1"}},
			echo("<p>hi</p>"),
			[]pipeline.ControllerOptFn{pipeline.WithUnits(func(*resp.Writer, *http.Request) error { return boom })},
			boom,
			http.StatusInternalServerError,
			"",
		},
		{
			"Double-Send",
			[]route.Route{{Pattern: "/", View: "V1"}},
			echo("<p>hi</p>"),
			[]pipeline.ControllerOptFn{pipeline.WithUnits(func(w *resp.Writer, _ *http.Request) error {
				return w.Text("forgot to terminate")
			})},
			resp.ErrDoubleSend,
			http.StatusOK,
			"forgot to terminate",
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			logs := new(bytes.Buffer)
			opts := append([]pipeline.ControllerOptFn{pipeline.WithLogger(newLogger(logs))}, tc.opts...)
			c, err := pipeline.New(newTable(t, tc.routes...), tc.rr, opts...)
			require.NoError(t, err)

			// Act
			serveErr := c.Serve(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

			rec := httptest.NewRecorder()
			c.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

			// Assert
			require.ErrorIs(t, serveErr, tc.err)
			require.Equal(t, tc.code, rec.Code)
			require.Equal(t, tc.body, rec.Body.String())
			require.Contains(t, logs.String(), `"level":"ERROR"`)
		})
	}
}

func TestControllerErrorHandler(t *testing.T) {
	// Arrange
	var got error
	var st resp.State
	handler := func(w http.ResponseWriter, _ *http.Request, s resp.State, err error) {
		got, st = err, s
		w.WriteHeader(http.StatusTeapot)
	}

	c, err := pipeline.New(newTable(t), echo(""), pipeline.WithErrorHandler(handler))
	require.NoError(t, err)

	rec := httptest.NewRecorder()

	// Act
	c.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	// Assert
	require.ErrorIs(t, got, route.ErrNoRoute)
	require.False(t, st.HeadersSent)
	require.True(t, st.Done)
	require.Equal(t, http.StatusTeapot, rec.Code)
}

func TestControllerPropsAndWrapper(t *testing.T) {
	// Arrange
	ctrlFn := func(r *http.Request, props route.Props) error {
		m, ok := route.FromContext(r.Context())
		if !ok {
			return errors.New("no match in context")
		}

		props["title"] = "Post " + m.Params["id"] + "." + r.URL.Query().Get("v")
		return nil
	}
	wrapper := func(v route.View) route.View { return []string{"layout.tmpl", v.(string)} }

	var gotView route.View
	var gotCtx render.Context
	rr := render.RenderFunc(func(_ context.Context, v route.View, rc render.Context) (string, error) {
		gotView, gotCtx = v, rc
		return "<p>ok</p>", nil
	})

	table := newTable(t, route.Route{Pattern: "/posts/{id}", View: "post.tmpl", Controller: ctrlFn})
	c, err := pipeline.New(table, rr, pipeline.WithWrapper(wrapper))
	require.NoError(t, err)

	// Act
	err = c.Serve(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/posts/9?v=2", nil))

	// Assert
	require.NoError(t, err)
	require.Equal(t, []string{"layout.tmpl", "post.tmpl"}, gotView)
	require.Equal(t, route.Props{"title": "Post 9.2"}, gotCtx.Props)
	require.Equal(t, "9", gotCtx.Params["id"])
	require.Equal(t, "/posts/9", gotCtx.URL)
}

func TestControllerRenderObserver(t *testing.T) {
	// Arrange
	var observed []string
	obs := func(_ *http.Request, m *route.MatchResult, d time.Duration) {
		observed = append(observed, m.Pattern)
		require.GreaterOrEqual(t, d, time.Duration(0))
	}

	table := newTable(t, route.Route{Pattern: "/", View: "V1"})
	c, err := pipeline.New(table, echo("<p>hi</p>"), pipeline.WithRenderObserver(obs))
	require.NoError(t, err)

	// Act
	c.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	// Assert
	require.Equal(t, []string{"/"}, observed)
}

func TestControllerHistory(t *testing.T) {
	// Arrange
	mock := history.NewMock("", "/about")
	table := newTable(t,
		route.Route{Pattern: "/", View: "home"},
		route.Route{Pattern: "/about", View: "about"},
	)

	var views []route.View
	rr := render.RenderFunc(func(_ context.Context, v route.View, _ render.Context) (string, error) {
		views = append(views, v)
		return "", nil
	})

	c, err := pipeline.New(table, rr, pipeline.WithHistory(func(*http.Request) history.History { return mock }))
	require.NoError(t, err)

	// Act
	require.NoError(t, c.Serve(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil)))
	mock.Navigate("/")
	require.NoError(t, c.Serve(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil)))

	// Assert
	require.Equal(t, []route.View{"about", "home"}, views)
}

func TestControllerConcurrentTermination(t *testing.T) {
	// Arrange
	table := newTable(t, route.Route{Pattern: "/{n}", View: "V1"})
	maybeTerminate := func(w *resp.Writer, r *http.Request) error {
		if r.URL.Path == "/stop" {
			w.Terminate()
		}
		return nil
	}

	c, err := pipeline.New(table, echo("<p>rendered</p>"), pipeline.WithUnits(maybeTerminate))
	require.NoError(t, err)

	// Act
	bodies := make([]string, 20)
	var wg sync.WaitGroup
	for i := range bodies {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			target := "/go"
			if i%2 == 0 {
				target = "/stop"
			}

			rec := httptest.NewRecorder()
			c.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
			bodies[i] = rec.Body.String()
		}(i)
	}
	wg.Wait()

	// Assert
	for i, body := range bodies {
		if i%2 == 0 {
			require.Empty(t, body)
		} else {
			require.Equal(t, "<p>rendered</p>", body)
		}
	}
}

// echoView renders a view, which must be a string, inside a paragraph.
func echoView() render.Renderer {
	return render.RenderFunc(func(_ context.Context, v route.View, _ render.Context) (string, error) {
		return "<p>" + v.(string) + "</p>", nil
	})
}
