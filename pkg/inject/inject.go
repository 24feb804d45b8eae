package inject

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"
)

var (
	// ErrInvalidEncoding is returned by Splice when the body is not valid UTF-8.
	ErrInvalidEncoding = errors.New("inject: response body is not valid UTF-8")

	headClose = []byte("</head>")
	bodyClose = []byte("</body>")
)

// Fragments holds the markup inserted into HTML documents.
type Fragments struct {
	Head string `json:"head"`
	Body string `json:"body"`
}

// DefaultFragments builds the viewport meta tag, stylesheet link and script tag
// for assets served under staticPrefix (e.g. "/static/").
func DefaultFragments(staticPrefix, cssPath, jsPath string) Fragments {
	if !strings.HasSuffix(staticPrefix, "/") {
		staticPrefix += "/"
	}
	return Fragments{
		Head: `<meta name="viewport" content="width=device-width, initial-scale=1">` + "\n" +
			`<link rel="stylesheet" href="` + staticPrefix + cssPath + `" />` + "\n",
		Body: `<script src="` + staticPrefix + jsPath + `"></script>` + "\n",
	}
}

// Applies reports whether a response with this status and header should be
// post-processed: status 200 and a Content-Type containing "text/html".
func Applies(status int, header http.Header) bool {
	if status != http.StatusOK {
		return false
	}
	return strings.Contains(strings.ToLower(header.Get("Content-Type")), "text/html")
}

// Splice returns a copy of body with the fragments inserted. Only the first
// "</head>" and the first "</body>" are targeted.
func Splice(body []byte, f Fragments) ([]byte, error) {
	if !utf8.Valid(body) {
		return nil, ErrInvalidEncoding
	}

	out := make([]byte, 0, len(body)+len(f.Head)+len(f.Body))
	if i := bytes.Index(body, headClose); i >= 0 {
		out = append(out, body[:i]...)
		out = append(out, f.Head...)
		out = append(out, body[i:]...)
	} else {
		out = append(out, f.Head...)
		out = append(out, body...)
	}

	if i := bytes.Index(out, bodyClose); i >= 0 {
		spliced := make([]byte, 0, len(out)+len(f.Body))
		spliced = append(spliced, out[:i]...)
		spliced = append(spliced, f.Body...)
		spliced = append(spliced, out[i:]...)
		return spliced, nil
	}
	return append(out, f.Body...), nil
}

// Injector applies Fragments to responses.
type Injector struct {
	fragments Fragments
	logger    *slog.Logger
	observe   func(applied bool, err error)
}

// New creates an Injector that logs splice failures to logger.
func New(logger *slog.Logger, fragments Fragments) *Injector {
	return &Injector{
		fragments: fragments,
		logger:    logger,
	}
}

// Observe registers a callback invoked after every response the injector
// inspects. applied is false for responses that were passed through.
func (in *Injector) Observe(fn func(applied bool, err error)) {
	in.observe = fn
}

// Fragments returns the markup this injector inserts.
func (in *Injector) Fragments() Fragments {
	return in.fragments
}

// Apply post-processes a complete response and returns the body to send.
// It never fails: if splicing goes wrong the original body is returned and
// the error is logged.
func (in *Injector) Apply(status int, header http.Header, body []byte) []byte {
	if !Applies(status, header) {
		in.notify(false, nil)
		return body
	}
	out, err := Splice(body, in.fragments)
	if err != nil {
		in.logger.Error("Failed to inject responsive fragments, serving original response", "error", err)
		in.notify(false, err)
		return body
	}
	header.Set("Content-Length", strconv.Itoa(len(out)))
	in.notify(true, nil)
	return out
}

func (in *Injector) notify(applied bool, err error) {
	if in.observe != nil {
		in.observe(applied, err)
	}
}
