package logger

import "net/http"

// ResponseLogger wraps a http.ResponseWriter and records the status
// code and body size of the response as the handlers produce it.
type ResponseLogger struct {
	w           http.ResponseWriter
	status      int
	bytes       int
	wroteHeader bool
}

func New(w http.ResponseWriter) *ResponseLogger {
	return &ResponseLogger{w: w, status: http.StatusOK}
}

func (l *ResponseLogger) WriteHeader(code int) {
	if !l.wroteHeader {
		l.status = code
		l.wroteHeader = true
	}
	l.w.WriteHeader(code)
}

func (l *ResponseLogger) Write(b []byte) (int, error) {
	// A handler that writes without calling WriteHeader commits an
	// implicit 200, same as net/http.
	l.wroteHeader = true
	n, err := l.w.Write(b)
	l.bytes += n
	return n, err
}

func (l *ResponseLogger) Header() http.Header {
	return l.w.Header()
}

func (l *ResponseLogger) Status() int {
	return l.status
}

// BytesWritten returns the number of response body bytes written so far.
func (l *ResponseLogger) BytesWritten() int {
	return l.bytes
}
