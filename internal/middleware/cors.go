package middleware

import (
	"net/http"
)

// EnableCORS allows the listed origins to call the JSON views from another
// host. A "*" entry admits any origin without credentials. With no origins
// configured the handler is returned unchanged.
func EnableCORS(next http.Handler, origins []string) http.Handler {
	if len(origins) == 0 {
		return next
	}
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[o] = true
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		switch {
		case origin == "":
		case origin != "*" && allowed[origin]:
			// Only explicitly listed origins may send the session cookie.
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			setCORSMethods(w)
		case allowed["*"]:
			w.Header().Set("Access-Control-Allow-Origin", "*")
			setCORSMethods(w)
		}

		// Handle preflight
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func setCORSMethods(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
}
