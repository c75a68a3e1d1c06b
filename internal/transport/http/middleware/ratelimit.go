package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/httprate"

	"schoolhr/internal/transport/http/api"
	"schoolhr/internal/transport/http/shared"
)

type RateLimitKeyFunc = httprate.KeyFunc

// RateLimit throttles per authenticated actor, falling back to client IP.
func RateLimit(limit int, window time.Duration) func(http.Handler) http.Handler {
	return newLimiter(limit, window, actorOrIPKey)
}

// SensitiveMutationRateLimit applies tighter budgets to login and to the
// commands that lock months or move money. Other requests pass through.
func SensitiveMutationRateLimit(baseLimit int, window time.Duration) func(http.Handler) http.Handler {
	authLimit := max(baseLimit/4, 1)
	mutationLimit := max(baseLimit/2, 1)
	authByIP := newLimiter(authLimit, window, clientIPKey)
	authByEmail := newLimiter(authLimit, window, AuthEmailOrIPKey("email"))
	sensitiveByActor := newLimiter(mutationLimit, window, actorOrIPKey)

	return func(next http.Handler) http.Handler {
		authChain := authByIP(authByEmail(next))
		actorChain := sensitiveByActor(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch sensitiveRateScope(r) {
			case sensitiveScopeAuth:
				authChain.ServeHTTP(w, r)
			case sensitiveScopeActor:
				actorChain.ServeHTTP(w, r)
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}

func newLimiter(limit int, window time.Duration, keyFn RateLimitKeyFunc) func(http.Handler) http.Handler {
	if limit <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(limit, window,
		httprate.WithKeyFuncs(keyFn),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			slog.Warn("rate limit exceeded",
				"path", r.URL.Path,
				"method", r.Method,
				"limit", limit,
				"windowSec", int(window.Seconds()),
			)
			api.Fail(w, http.StatusTooManyRequests, "rate_limited", "too many requests", GetRequestID(r.Context()))
		}),
	)
}

func AuthEmailOrIPKey(field string) RateLimitKeyFunc {
	normalizedField := strings.TrimSpace(field)
	if normalizedField == "" {
		normalizedField = "email"
	}
	return func(r *http.Request) (string, error) {
		email := extractJSONField(r, normalizedField)
		if email == "" {
			return clientIPKey(r)
		}
		return "email:" + strings.ToLower(email), nil
	}
}

func actorOrIPKey(r *http.Request) (string, error) {
	if user, ok := GetUser(r.Context()); ok && user.UserID != "" {
		return "user:" + user.SchoolID + ":" + user.UserID, nil
	}
	return clientIPKey(r)
}

func clientIPKey(r *http.Request) (string, error) {
	return "ip:" + shared.ClientIP(r), nil
}

func extractJSONField(r *http.Request, field string) string {
	if r == nil || r.Body == nil {
		return ""
	}
	contentType := strings.ToLower(strings.TrimSpace(r.Header.Get("Content-Type")))
	if !strings.Contains(contentType, "application/json") {
		return ""
	}
	raw, err := io.ReadAll(io.LimitReader(r.Body, 64*1024))
	if err != nil {
		return ""
	}
	r.Body = io.NopCloser(bytes.NewReader(raw))
	if len(raw) == 0 {
		return ""
	}
	payload := map[string]any{}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return ""
	}
	value, _ := payload[field].(string)
	return strings.TrimSpace(value)
}

type sensitiveScope string

const (
	sensitiveScopeNone  sensitiveScope = ""
	sensitiveScopeAuth  sensitiveScope = "auth"
	sensitiveScopeActor sensitiveScope = "actor"
)

func sensitiveRateScope(r *http.Request) sensitiveScope {
	if r == nil {
		return sensitiveScopeNone
	}
	path := normalizedAPIPath(r.URL.Path)
	method := strings.ToUpper(strings.TrimSpace(r.Method))

	if method == http.MethodGet && path == "/payroll/bank-file" {
		return sensitiveScopeActor
	}
	if method != http.MethodPost && method != http.MethodPut && method != http.MethodPatch && method != http.MethodDelete {
		return sensitiveScopeNone
	}
	switch path {
	case "/auth/login":
		return sensitiveScopeAuth
	case "/attendance/review", "/payroll/adjustments":
		return sensitiveScopeActor
	}
	return sensitiveScopeNone
}

func normalizedAPIPath(path string) string {
	cleaned := strings.TrimSpace(path)
	cleaned = strings.TrimPrefix(cleaned, "/api/v1")
	if cleaned == "" {
		return "/"
	}
	if !strings.HasPrefix(cleaned, "/") {
		return "/" + cleaned
	}
	return cleaned
}
