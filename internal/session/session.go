// Package session reads the Valkey-backed sessions issued by the
// back-office login service. Sessions are identified by a cookie (or the
// X-Session-ID header for non-browser clients) and stored as JSON in Valkey.
// Every successful lookup slides the expiry forward.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// CookieName is the name of the session cookie shared with the back-office.
	CookieName = "sp_session"

	// HeaderName carries the session ID for clients that cannot send cookies.
	HeaderName = "X-Session-ID"

	// DefaultTTL is the idle time after which a session expires.
	DefaultTTL = 24 * time.Hour

	// keyPrefix namespaces session keys in Valkey to avoid collisions.
	keyPrefix = "session:"

	// idLength is the byte length of the random session ID (32 bytes = 64 hex chars).
	idLength = 32
)

// Data holds the session payload stored in Valkey: who the user is and
// which tenant (company) they are working in.
type Data struct {
	UserID      uuid.UUID `json:"user_id"`
	TenantID    uuid.UUID `json:"tenant_id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	Title       string    `json:"title"`
	Role        string    `json:"role"`
	CreatedAt   time.Time `json:"created_at"`
}

// Store looks sessions up in Valkey.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStore creates a session store backed by the given Valkey client.
// A non-positive ttl means DefaultTTL.
func NewStore(client *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{client: client, ttl: ttl}
}

// Issue stores a new session and returns its ID. Production sessions come
// from the login service; this serves development and tests.
func (s *Store) Issue(ctx context.Context, data *Data) (string, error) {
	id, err := generateID()
	if err != nil {
		return "", fmt.Errorf("session issue: %w", err)
	}

	data.CreatedAt = time.Now().UTC()
	payload, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("session marshal: %w", err)
	}

	if err := s.client.Set(ctx, keyPrefix+id, payload, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("session store: %w", err)
	}
	return id, nil
}

// Get returns the session of the request and refreshes its expiry.
// Returns nil without an error when the request carries no session or the
// session has expired.
func (s *Store) Get(ctx context.Context, r *http.Request) (*Data, error) {
	id := requestID(r)
	if !validID(id) {
		return nil, nil
	}

	payload, err := s.client.GetEx(ctx, keyPrefix+id, s.ttl).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("session get: %w", err)
	}

	var data Data
	if err := json.Unmarshal(payload, &data); err != nil {
		return nil, fmt.Errorf("session unmarshal: %w", err)
	}
	return &data, nil
}

func requestID(r *http.Request) string {
	if id := r.Header.Get(HeaderName); id != "" {
		return id
	}
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// validID rejects anything that is not a session ID before it reaches
// Valkey as part of a key.
func validID(id string) bool {
	if len(id) != idLength*2 {
		return false
	}
	_, err := hex.DecodeString(id)
	return err == nil
}

// generateID creates a cryptographically random session identifier.
func generateID() (string, error) {
	b := make([]byte, idLength)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
