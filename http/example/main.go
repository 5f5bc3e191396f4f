/*
Package main provides a toy example use of switchback's http stack,
focusing on the basics of:

(1) constructing a default Ranger;
(2) declaring routes whose views are templates or templ components;
(3) computing props for a view with a route.Controller;
(4) and terminating requests early with pipeline units.
*/
package main

import (
	"context"
	"embed"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"

	"github.com/a-h/templ"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/xy-planning-network/switchback/http/pipeline"
	"github.com/xy-planning-network/switchback/http/render"
	"github.com/xy-planning-network/switchback/http/resp"
	"github.com/xy-planning-network/switchback/http/route"
	"github.com/xy-planning-network/switchback/ranger"
)

//go:embed tmpl/*.tmpl
var files embed.FS

//go:embed public
var public embed.FS

const (
	// these refer to templates available for rendering
	dir     string = "tmpl/"
	layout  string = dir + "layout.tmpl"
	home    string = dir + "home.tmpl"
	trail   string = dir + "trail.tmpl"
	missing string = dir + "missing.tmpl"
)

type Trail struct {
	Slug        string  `json:"slug"`
	Name        string  `json:"name"`
	Miles       float64 `json:"miles"`
	Switchbacks int     `json:"switchbacks"`
}

var trails = []Trail{
	{Slug: "bright-angel", Name: "Bright Angel", Miles: 9.5, Switchbacks: 37},
	{Slug: "south-kaibab", Name: "South Kaibab", Miles: 7.1, Switchbacks: 24},
	{Slug: "half-dome", Name: "Half Dome", Miles: 16.4, Switchbacks: 52},
}

// listTrails adds every trail to the props of the home page.
func listTrails(_ *http.Request, props route.Props) error {
	props["trails"] = trails
	return nil
}

// findTrail adds the trail named by the slug in the path, if any.
func findTrail(r *http.Request, props route.Props) error {
	m, ok := route.FromContext(r.Context())
	if !ok {
		return nil
	}

	for _, t := range trails {
		if t.Slug == m.Params["slug"] {
			props["trail"] = t
		}
	}

	return nil
}

// about is a templ component; components read the render.Context from their context.
func about() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		rc, _ := render.FromContext(ctx)
		_, err := fmt.Fprintf(w, "<main><h1>About</h1><p>Served from %s on port %s.</p></main>",
			templ.EscapeString(rc.URL), templ.EscapeString(rc.Port))
		return err
	})
}

// withLayout renders template views inside the layout.
// Other views pass through untouched.
func withLayout(v route.View) route.View {
	if name, ok := v.(string); ok {
		return []string{layout, name}
	}

	return v
}

// trailsAPI answers /api/trails with JSON and terminates.
func trailsAPI(w *resp.Writer, r *http.Request) error {
	if r.URL.Path != "/api/trails" {
		return nil
	}

	defer w.Terminate()
	return w.Json(trails)
}

// oldHome redirects the retired home page and terminates.
func oldHome(w *resp.Writer, r *http.Request) error {
	if r.URL.Path != "/home" {
		return nil
	}

	defer w.Terminate()
	return w.Redirect("/", resp.Code(http.StatusMovedPermanently))
}

// healthz shows how any http.Handler becomes a unit.
var healthz = pipeline.HandlerUnit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/healthz" {
		w.WriteHeader(http.StatusNoContent)
	}
}))

// newApp constructs the example app; opts override the example's own.
func newApp(opts ...ranger.RangerOption) (*ranger.Ranger, error) {
	static, err := fs.Sub(public, "public")
	if err != nil {
		return nil, err
	}

	base := []ranger.RangerOption{
		ranger.WithTemplates(files),
		ranger.WithStatic(static),
		ranger.WithWrapper(withLayout),
		ranger.WithUnits(healthz, oldHome, trailsAPI),
		ranger.WithRoutes(
			route.Route{Pattern: "/", View: home, Controller: listTrails},
			route.Route{Pattern: "/trails/{slug:[a-z-]+}", View: trail, Controller: findTrail},
			route.Route{Pattern: "/about", View: about(), CaseInsensitive: true},
		),
		ranger.WithNotFound(missing, nil),
	}

	return ranger.New(append(base, opts...)...)
}

func main() {
	// construct a Ranger using defaults read from the environment,
	// recording metrics served at /metrics.
	rng, err := newApp(ranger.WithMetrics(prometheus.NewRegistry()))
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	// start the web server until receiving a signal to stop.
	if err := rng.Guide(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
