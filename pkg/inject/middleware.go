package inject

import (
	"bytes"
	"net/http"
	"strconv"
)

// Middleware wraps next so that its HTML responses are post-processed.
// Responses that do not qualify are streamed through without buffering.
func (in *Injector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		iw := &injectWriter{w: w, head: r.Method == http.MethodHead}
		next.ServeHTTP(iw, r)
		iw.finish(in)
	})
}

// injectWriter decides at header time whether the response must be buffered.
type injectWriter struct {
	w           http.ResponseWriter
	head        bool
	status      int
	wroteHeader bool
	buffering   bool
	buf         bytes.Buffer
}

func (iw *injectWriter) Header() http.Header {
	return iw.w.Header()
}

func (iw *injectWriter) WriteHeader(code int) {
	if iw.wroteHeader {
		return
	}
	iw.wroteHeader = true
	iw.status = code
	iw.buffering = Applies(code, iw.w.Header())
	if !iw.buffering {
		iw.w.WriteHeader(code)
	}
}

func (iw *injectWriter) Write(p []byte) (int, error) {
	if !iw.wroteHeader {
		// Mirror net/http, which sniffs the type of untyped bodies on first write.
		if iw.w.Header().Get("Content-Type") == "" {
			iw.w.Header().Set("Content-Type", http.DetectContentType(p))
		}
		iw.WriteHeader(http.StatusOK)
	}
	if iw.buffering {
		return iw.buf.Write(p)
	}
	return iw.w.Write(p)
}

func (iw *injectWriter) finish(in *Injector) {
	if !iw.buffering {
		if iw.wroteHeader {
			in.notify(false, nil)
		}
		return
	}
	header := iw.w.Header()
	if iw.head && iw.buf.Len() == 0 {
		// The handler skipped the body, so its length cannot be recomputed.
		header.Del("Content-Length")
		in.notify(false, nil)
		iw.w.WriteHeader(iw.status)
		return
	}
	body := in.Apply(iw.status, header, iw.buf.Bytes())
	header.Set("Content-Length", strconv.Itoa(len(body)))
	iw.w.WriteHeader(iw.status)
	_, _ = iw.w.Write(body)
}
