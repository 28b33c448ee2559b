package auth

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"linkeats/console/internal/api"
	"linkeats/console/internal/model"
	"linkeats/console/internal/session"
)

// Gateway is the slice of the API client the auth context needs.
type Gateway interface {
	Login(ctx context.Context, email, password string) (*api.AuthResponse, error)
	Logout(ctx context.Context, token string) error
}

// Service is what screens consume.
type Service interface {
	User() *model.User
	IsAuthenticated() bool
	IsLoading() bool
	Login(ctx context.Context, email, password string) error
	Logout(ctx context.Context) error
}

// Provider builds one Context per request.
type Provider struct {
	store   session.Store
	gateway Gateway
	logger  *slog.Logger
}

func NewProvider(store session.Store, gateway Gateway, logger *slog.Logger) *Provider {
	if logger == nil {
		logger = slog.Default()
	}
	return &Provider{store: store, gateway: gateway, logger: logger}
}

type contextKey struct{}

func (p *Provider) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ac := p.New(w, r)
		ac.Init(r.Context())
		ctx := context.WithValue(r.Context(), contextKey{}, ac)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// New returns an uninitialised Context bound to w and r. It reports loading
// until Init runs.
func (p *Provider) New(w http.ResponseWriter, r *http.Request) *Context {
	return &Context{provider: p, w: w, r: r, loading: true}
}

// FromContext returns the request's auth context. It panics when the provider
// middleware did not run.
func FromContext(ctx context.Context) *Context {
	ac, ok := ctx.Value(contextKey{}).(*Context)
	if !ok || ac == nil {
		panic("auth: FromContext called outside of Provider.Middleware")
	}
	return ac
}

// WithContext attaches ac to ctx.
func WithContext(ctx context.Context, ac *Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ac)
}

type Context struct {
	provider *Provider
	w        http.ResponseWriter
	r        *http.Request

	mu      sync.Mutex
	user    *model.User
	token   string
	loading bool
}

var _ Service = (*Context)(nil)

// Init adopts the stored session when both token and user are present. The
// token is not validated against the backend.
func (c *Context) Init(ctx context.Context) {
	token, hasToken := c.provider.store.Token(ctx, c.r)
	user, err := c.provider.store.User(ctx, c.r)
	if err != nil {
		c.provider.logger.Warn("stored session unreadable", slog.String("error", err.Error()))
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if hasToken && err == nil && user != nil {
		c.token = token
		c.user = user
	}
	c.loading = false
}

func (c *Context) User() *model.User {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.user == nil {
		return nil
	}
	u := *c.user
	return &u
}

func (c *Context) IsAuthenticated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.user != nil
}

func (c *Context) IsLoading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

func (c *Context) Token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

// Credentials is what resource services attach to upstream requests.
func (c *Context) Credentials() api.Credentials {
	c.mu.Lock()
	defer c.mu.Unlock()
	creds := api.Credentials{Token: c.token}
	if c.user != nil {
		creds.TenantID = c.user.TenantID()
	}
	return creds
}

func (c *Context) setLoading(v bool) {
	c.mu.Lock()
	c.loading = v
	c.mu.Unlock()
}

func (c *Context) Login(ctx context.Context, email, password string) error {
	c.setLoading(true)
	defer c.setLoading(false)

	resp, err := c.provider.gateway.Login(ctx, email, password)
	if err != nil {
		return err
	}
	principal := resp.Principal()
	if principal == nil {
		return api.ErrUserDataNotFound
	}
	if err := c.provider.store.Save(ctx, c.w, resp.Token, *principal); err != nil {
		return err
	}

	c.mu.Lock()
	c.user = principal
	c.token = resp.Token
	c.mu.Unlock()
	return nil
}

// Logout always ends the local session; a failing backend logout is only
// logged.
func (c *Context) Logout(ctx context.Context) error {
	c.setLoading(true)
	defer c.setLoading(false)

	token := c.Token()
	if token == "" {
		token, _ = c.provider.store.Token(ctx, c.r)
	}
	if token != "" {
		if err := c.provider.gateway.Logout(ctx, token); err != nil {
			c.provider.logger.Warn("backend logout failed", slog.String("error", err.Error()))
		}
	}

	err := c.provider.store.Clear(ctx, c.w, c.r)

	c.mu.Lock()
	c.user = nil
	c.token = ""
	c.mu.Unlock()
	return err
}
