/*
Package resp decorates an http.ResponseWriter for the life of one request.

A Writer sends exactly one body per response. Text, Html, Json and Xml resolve a content type,
write the status and headers once and write the body; File and Stream do the same for
a byte sequence, optionally compressed with gzip or deflate, and keep streaming it
in the background until Finish.

A Writer also carries the request's termination flag.
Any handler holding the Writer may call Terminate to stop whatever would run after it;
once set, the flag stays set and the Writer refuses further writes.

Calling a send method after headers have been sent returns ErrDoubleSend.
A client going away mid-stream surfaces as ErrStreamAborted from Wait or Finish.
*/
package resp
