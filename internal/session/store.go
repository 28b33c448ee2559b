package session

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"linkeats/console/internal/model"
)

// CookieName is read by the edge guard without touching the durable store.
const CookieName = "auth-token"

const keyPrefix = "session:"

// Store persists the session: a durable record plus the auth-token cookie,
// both written by the same call.
type Store interface {
	Save(ctx context.Context, w http.ResponseWriter, token string, user model.User) error
	Token(ctx context.Context, r *http.Request) (string, bool)
	User(ctx context.Context, r *http.Request) (*model.User, error)
	IsAuthenticated(ctx context.Context, r *http.Request) bool
	Clear(ctx context.Context, w http.ResponseWriter, r *http.Request) error
}

// Backend is the durable key-value projection.
type Backend interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

type Options struct {
	TTL    time.Duration
	Secure bool
}

type record struct {
	Token string     `json:"token"`
	User  model.User `json:"user"`
}

type cookieStore struct {
	backend Backend
	opts    Options
}

// NewStore returns a Store over backend. A nil backend gives a store whose
// writes do nothing and whose reads are always absent.
func NewStore(backend Backend, opts Options) Store {
	if opts.TTL <= 0 {
		opts.TTL = 7 * 24 * time.Hour
	}
	return &cookieStore{backend: backend, opts: opts}
}

func key(token string) string {
	sum := sha256.Sum256([]byte(token))
	return keyPrefix + hex.EncodeToString(sum[:])
}

func (s *cookieStore) Save(ctx context.Context, w http.ResponseWriter, token string, user model.User) error {
	if s.backend == nil {
		return nil
	}
	if token == "" {
		return errors.New("empty session token")
	}
	payload, err := json.Marshal(record{Token: token, User: user})
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.backend.Set(ctx, key(token), string(payload), s.opts.TTL); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	http.SetCookie(w, s.cookie(token, int(s.opts.TTL/time.Second)))
	return nil
}

func (s *cookieStore) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (s *cookieStore) lookup(ctx context.Context, r *http.Request) (string, bool, error) {
	if s.backend == nil || r == nil {
		return "", false, nil
	}
	token, ok := CookieToken(r)
	if !ok {
		return "", false, nil
	}
	raw, ok, err := s.backend.Get(ctx, key(token))
	if err != nil || !ok {
		return "", false, err
	}
	return raw, true, nil
}

func (s *cookieStore) Token(ctx context.Context, r *http.Request) (string, bool) {
	raw, ok, err := s.lookup(ctx, r)
	if err != nil || !ok {
		return "", false
	}
	var rec record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil || rec.Token == "" {
		return "", false
	}
	return rec.Token, true
}

// User returns nil when no session is stored and the decode error when the
// stored record is corrupt.
func (s *cookieStore) User(ctx context.Context, r *http.Request) (*model.User, error) {
	raw, ok, err := s.lookup(ctx, r)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	var rec record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, fmt.Errorf("decode session user: %w", err)
	}
	return &rec.User, nil
}

func (s *cookieStore) IsAuthenticated(ctx context.Context, r *http.Request) bool {
	_, ok := s.Token(ctx, r)
	return ok
}

func (s *cookieStore) Clear(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	if s.backend == nil {
		return nil
	}
	var err error
	if token, ok := CookieToken(r); ok {
		if delErr := s.backend.Del(ctx, key(token)); delErr != nil {
			err = fmt.Errorf("clear session: %w", delErr)
		}
	}
	expired := s.cookie("", -1)
	expired.Expires = time.Unix(0, 0)
	http.SetCookie(w, expired)
	return err
}

// CookieToken reads the auth-token cookie. It never consults the durable
// store.
func CookieToken(r *http.Request) (string, bool) {
	if r == nil {
		return "", false
	}
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}
