package shield

import "net/http"

// HeadToGet routes HEAD like GET so chi's r.Get handlers answer it;
// net/http discards the body.
func HeadToGet(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			r.Method = http.MethodGet
		}
		next.ServeHTTP(w, r)
	})
}
