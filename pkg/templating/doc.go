/*
Package templating provides a filesystem-based html/template engine for the
site's pages.

Full page templates (*.tmpl.html) and shared partials (*.part.html) are
discovered anywhere under the template directory and parsed into one set, so
pages can call each other's blocks. Delimiters are configurable, which lets
templates written for a "{{% ... %}}" style keep working unchanged. The set
can be reloaded on demand with Refresh, or automatically while developing with
Watch.
*/
package templating
