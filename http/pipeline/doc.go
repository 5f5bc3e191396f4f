/*
Package pipeline runs each request through the rendering state machine:

	Decorating -> RunningHandlers -> (Terminated | Matching) -> Rendering -> Done

The response is decorated once. Units run in order, each awaited;
after every Unit the Controller checks whether the response was terminated
and, if so, skips the remaining Units and rendering altogether.
Otherwise the request's History matches it against the route.Table,
the matched route's Controller merges its props,
the Renderer turns the view into markup and the markup is sent with the route's status.

Errors abort the request where they happen and are handed to the ErrorHandler.
A client disconnecting mid-stream is only logged.
*/
package pipeline
