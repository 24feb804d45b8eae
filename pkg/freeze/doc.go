/*
Package freeze turns the dynamic site into a static file tree.

A Freezer runs a fixed, strictly sequential pipeline:

	clean_output -> render_routes -> copy_static -> generate_music_pages -> generate_image_pages

Routes are rendered through an injected Renderer, normally a HandlerRenderer
wrapping the site's http.Handler, so no server has to be running. A route
that does not render with status 200 is skipped with a warning. A missing
static tree is logged and skipped. Any write failure, on the other hand,
aborts the run: a partial export must never be deployed.

The output root is owned by a single run. Concurrent runs against the same
output directory are not guarded against.
*/
package freeze
