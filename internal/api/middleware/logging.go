package middleware

import (
	"log"
	"net/http"
)

// Logging logs every request with the component prefix of the service.
func Logging(component string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log.Printf("[%s] %s %s", component, r.Method, r.URL.Path)
			next.ServeHTTP(w, r)
		})
	}
}
