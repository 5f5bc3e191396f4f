/*
Package switchback holds the values shared by every package of a switchback app:
the Environment it runs in, the keys it stashes in a [context.Context]
and the errors common to configuring its parts.

The rendering core lives under http/:
routes are declared in http/route, responses are decorated in http/resp
and each request flows through the state machine in http/pipeline.
*/
package switchback
