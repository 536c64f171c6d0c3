package xhttp

import "github.com/valyala/fasthttp"

// Status codes used by the engine, re-exported so engine code stays on the
// xhttp import alone.
const (
	StatusNotFound            = fasthttp.StatusNotFound
	StatusRequestTimeout      = fasthttp.StatusRequestTimeout
	StatusInternalServerError = fasthttp.StatusInternalServerError
)

func StatusText(code int) string {
	return fasthttp.StatusMessage(code)
}
