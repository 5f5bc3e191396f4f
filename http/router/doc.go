/*
Package router is where a switchback app declares its routes and the HTTP entry point serving them.

A [Router] collects [route.Route] declarations in order.
The first time it serves a request, or when [Router.Freeze] is called,
those declarations become an immutable [route.Table] and a [pipeline.Controller]
running every request through the rendering state machine.
Declaring anything after that panics; routes cannot change while requests are in flight.

A Router wraps two layers around routing:
units, added with [Router.Use], run inside the pipeline and may terminate a request before it is matched,
while adapters, added with [Router.OnEveryRequest], wrap the pipeline as ordinary [http.Handler] middleware.

Subrouters share their parent's declarations, adding their prefix to every route declared through them:

	r := router.New(env, rr)
	r.Handle(route.Route{Pattern: "/", View: "tmpl/home.tmpl"})

	api := r.Subrouter("/docs")
	api.Handle(route.Route{Pattern: "/{page}", View: "tmpl/docs.tmpl"}) // matches /docs/{page}

	r.HandleNotFound(template.NotFound, nil)
*/
package router
