package handlers

import "net/http"

// WASMIsolation adds the cross-origin isolation headers the browser-side
// engine needs: SharedArrayBuffer-backed WASM only runs in a
// cross-origin-isolated context.
func WASMIsolation(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cross-Origin-Embedder-Policy", "require-corp")
		w.Header().Set("Cross-Origin-Opener-Policy", "same-origin")
		next.ServeHTTP(w, r)
	})
}
