/*
Package assets lists the media files that back the site's pages and encodes
their names for use as URL path segments.

Listing is deliberately forgiving: a category folder that is missing or
unreadable is reported as having no files, so pages and the freezer simply
render an empty list for it.
*/
package assets
