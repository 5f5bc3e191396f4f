/*
Package template parses html/template files out of one or more fs.FS.

A Parser looks for each file in the filesystems it was given, in order,
and finally in the templates embedded in this package.
NotFound names the embedded page an error route can render
when an app declares no error view of its own.
*/
package template
