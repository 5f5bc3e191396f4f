/*
The middleware package defines what a middleware is in switchback and a set of basic middlewares.

The available middlewares are:
- CacheControl
- CORS
- ForceHTTPS
- InjectIPAddress
- LogRequest
- ProxyHeaders
- RateLimit
- ReportPanic
- RequestID

Middlewares wrap the whole request pipeline, so they run before any pipeline unit or route.
middleware does not provide a default chain; the following can be copy-pasted:

	vs := middleware.NewVisitors()
	adpts := []middleware.Adapter{
		middleware.ReportPanic(env),
		middleware.ProxyHeaders(),
		middleware.RateLimit(vs),
		middleware.ForceHTTPS(env),
		middleware.RequestID(),
		middleware.InjectIPAddress(),
		middleware.LogRequest(log),
	}
*/
package middleware
