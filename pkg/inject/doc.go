/*
Package inject post-processes HTML responses so every page picks up the
site's responsive viewport, stylesheet and script without each template
having to include them.

The head fragment is placed right before the first "</head>" (or at the very
start of the document when there is none) and the body fragment right before
the first "</body>" (or at the very end). Only successful text/html responses
are touched. Splicing is a fallible operation that never propagates: on any
failure the original bytes are served and the failure is logged.
*/
package inject
