package middleware

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"schoolhr/internal/platform/idempotency"
	"schoolhr/internal/transport/http/api"
)

const (
	HeaderIdempotencyKey = "Idempotency-Key"
	HeaderReplayed       = "Idempotent-Replayed"
	maxIdempotencyKey    = 255
)

type captureWriter struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (c *captureWriter) WriteHeader(code int) {
	c.status = code
	c.ResponseWriter.WriteHeader(code)
}

func (c *captureWriter) Write(p []byte) (int, error) {
	c.body.Write(p)
	return c.ResponseWriter.Write(p)
}

// Idempotency replays the stored response when an authenticated caller
// repeats a mutating request with the same Idempotency-Key and body. Only
// successful responses are stored.
func Idempotency(store idempotency.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if store == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := strings.TrimSpace(r.Header.Get(HeaderIdempotencyKey))
			if key == "" || (r.Method != http.MethodPost && r.Method != http.MethodPut) {
				next.ServeHTTP(w, r)
				return
			}
			user, ok := GetUser(r.Context())
			if !ok {
				next.ServeHTTP(w, r)
				return
			}
			requestID := GetRequestID(r.Context())
			if len(key) > maxIdempotencyKey {
				api.Fail(w, http.StatusBadRequest, "invalid_idempotency_key", "idempotency key must be at most "+strconv.Itoa(maxIdempotencyKey)+" characters", requestID)
				return
			}

			raw, err := io.ReadAll(r.Body)
			if err != nil {
				api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(raw))

			scope := user.SchoolID + ":" + user.UserID + ":" + r.Method + " " + r.URL.Path
			hash := idempotency.RequestHash(raw)
			stored, err := store.Check(r.Context(), scope, key, hash)
			switch {
			case errors.Is(err, idempotency.ErrConflict):
				api.Fail(w, http.StatusConflict, "idempotency_conflict", "idempotency key was used with a different request", requestID)
				return
			case err != nil:
				slog.Warn("idempotency check failed", "err", err, "requestId", requestID)
			case stored != nil:
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set(HeaderReplayed, "true")
				w.WriteHeader(stored.Status)
				_, _ = w.Write(stored.Body)
				return
			}

			capture := &captureWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(capture, r)
			if capture.status >= http.StatusMultipleChoices {
				return
			}
			response := idempotency.Response{RequestHash: hash, Status: capture.status, Body: capture.body.Bytes()}
			if err := store.Save(r.Context(), scope, key, response); err != nil {
				slog.Warn("idempotency save failed", "err", err, "requestId", requestID)
			}
		})
	}
}
