package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"sqldrill/internal/security"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const LearnerContextKey ContextKey = "learner"

// Middleware holds dependencies for middleware functions
type Middleware struct {
	tokenSecret []byte
	limiter     *security.RateLimiter
}

// NewMiddleware creates a new middleware instance
func NewMiddleware(tokenSecret []byte, limiter *security.RateLimiter) *Middleware {
	return &Middleware{
		tokenSecret: tokenSecret,
		limiter:     limiter,
	}
}

// RequireLearner validates the bearer token and injects the learner id
// into the request context. Token issuance belongs to the identity layer;
// here the token is only verified and decoded.
func (m *Middleware) RequireLearner(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			respondWithError(w, http.StatusUnauthorized, ErrUnauthorized, "", nil)
			return
		}

		learnerID, err := security.ParseLearnerToken(m.tokenSecret, token)
		if err != nil {
			respondWithError(w, http.StatusUnauthorized, ErrUnauthorized, "rejected learner token", err)
			return
		}

		ctx := context.WithValue(r.Context(), LearnerContextKey, learnerID)
		next(w, r.WithContext(ctx))
	}
}

// RateLimit applies per-IP rate limiting to a handler
func (m *Middleware) RateLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !m.limiter.Allow(security.GetClientIP(r)) {
			respondWithError(w, http.StatusTooManyRequests, "Too many requests", "", nil)
			return
		}
		next(w, r)
	}
}

// Logging middleware logs HTTP requests
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Call next handler
		next.ServeHTTP(w, r)

		// Log request
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}

// GetLearnerFromContext retrieves the learner id from the request context
func GetLearnerFromContext(ctx context.Context) (int64, bool) {
	learnerID, ok := ctx.Value(LearnerContextKey).(int64)
	return learnerID, ok
}
