package middleware

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"
)

// BodyLimit caps request body size. Oversized bodies surface as read errors
// in the handler's JSON decoding.
func BodyLimit(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}

// Timeout answers 408 when a handler exceeds the wall-clock deadline. The
// handler keeps running against a discarded writer; in-flight store calls
// are abandoned, not cancelled, and may still complete after the client has
// its timeout response.
func Timeout(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tw := &timeoutWriter{w: w, h: make(http.Header)}
			done := make(chan struct{})

			go func() {
				defer func() {
					if v := recover(); v != nil {
						log.Printf("[API] Panic in handler: %v", v)
					}
					close(done)
				}()
				next.ServeHTTP(tw, r)
			}()

			select {
			case <-done:
			case <-time.After(d):
				tw.timeout()
			}
		})
	}
}

// timeoutWriter isolates the handler from the real ResponseWriter. The
// handler writes headers into a private map that is only copied to the
// underlying writer while holding the mutex, so an abandoned handler can
// keep mutating its headers without racing the 408 path. Once the deadline
// has passed all handler writes are discarded.
type timeoutWriter struct {
	w http.ResponseWriter
	h http.Header

	mu          sync.Mutex
	timedOut    bool
	wroteHeader bool
}

// Header returns the handler's private header map. Only the handler
// goroutine touches it; the underlying writer's headers are never exposed.
func (w *timeoutWriter) Header() http.Header {
	return w.h
}

func (w *timeoutWriter) WriteHeader(status int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timedOut || w.wroteHeader {
		return
	}
	w.wroteHeader = true
	w.copyHeader()
	w.w.WriteHeader(status)
}

func (w *timeoutWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timedOut {
		return len(p), nil
	}
	if !w.wroteHeader {
		w.wroteHeader = true
		w.copyHeader()
		w.w.WriteHeader(http.StatusOK)
	}
	return w.w.Write(p)
}

func (w *timeoutWriter) copyHeader() {
	dst := w.w.Header()
	for key, values := range w.h {
		dst[key] = append([]string(nil), values...)
	}
}

func (w *timeoutWriter) timeout() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timedOut || w.wroteHeader {
		return
	}
	w.timedOut = true
	w.w.Header().Set("Content-Type", "application/json")
	w.w.WriteHeader(http.StatusRequestTimeout)
	json.NewEncoder(w.w).Encode(map[string]string{"error": "Request timeout"})
}
