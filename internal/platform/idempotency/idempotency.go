package idempotency

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
)

var ErrConflict = errors.New("idempotency key conflicts with existing request")

// Response is the stored outcome replayed for a repeated key.
type Response struct {
	RequestHash string          `json:"requestHash"`
	Status      int             `json:"status"`
	Body        json.RawMessage `json:"body"`
}

// Store remembers responses per scope and key. Check returns ErrConflict
// when the key was first used with a different request body.
type Store interface {
	Check(ctx context.Context, scope, key, requestHash string) (*Response, error)
	Save(ctx context.Context, scope, key string, response Response) error
}

func RequestHash(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

func compare(stored *Response, requestHash string) (*Response, error) {
	if stored == nil {
		return nil, nil
	}
	if stored.RequestHash != requestHash {
		return nil, ErrConflict
	}
	return stored, nil
}
