package recovery

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

const CookieName = "recovery-flow"

// Registry keeps the in-process flows, one per browser, keyed by the id in
// the recovery-flow cookie.
type Registry struct {
	newFlow func() *Flow
	ttl     time.Duration
	secure  bool

	mu    sync.Mutex
	flows map[string]*Flow
}

func NewRegistry(ttl time.Duration, secure bool, newFlow func() *Flow) *Registry {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &Registry{
		newFlow: newFlow,
		ttl:     ttl,
		secure:  secure,
		flows:   make(map[string]*Flow),
	}
}

func (r *Registry) Get(id string) (*Flow, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.flows[id]
	return f, ok
}

func (r *Registry) Create() (string, *Flow) {
	id := uuid.NewString()
	f := r.newFlow()
	r.mu.Lock()
	r.flows[id] = f
	r.mu.Unlock()
	return id, f
}

// Lookup returns the flow named by the request cookie, if it is still live.
func (r *Registry) Lookup(req *http.Request) (string, *Flow, bool) {
	c, err := req.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return "", nil, false
	}
	if _, err := uuid.Parse(c.Value); err != nil {
		return "", nil, false
	}
	f, ok := r.Get(c.Value)
	if !ok {
		return "", nil, false
	}
	return c.Value, f, true
}

// Ensure returns the request's flow, starting a new one and setting its
// cookie when there is none.
func (r *Registry) Ensure(w http.ResponseWriter, req *http.Request) (string, *Flow) {
	if id, f, ok := r.Lookup(req); ok {
		return id, f
	}
	id, f := r.Create()
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(r.ttl / time.Second),
		HttpOnly: true,
		Secure:   r.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return id, f
}

// Remove discards a flow and expires its cookie.
func (r *Registry) Remove(w http.ResponseWriter, id string) {
	r.mu.Lock()
	f, ok := r.flows[id]
	delete(r.flows, id)
	r.mu.Unlock()
	if ok {
		f.Close()
	}
	if w != nil {
		http.SetCookie(w, &http.Cookie{
			Name:     CookieName,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			Expires:  time.Unix(0, 0),
			HttpOnly: true,
			Secure:   r.secure,
			SameSite: http.SameSiteLaxMode,
		})
	}
}

// Sweep drops flows idle for longer than the registry TTL.
func (r *Registry) Sweep(now time.Time) int {
	var expired []*Flow
	r.mu.Lock()
	for id, f := range r.flows {
		if now.Sub(f.LastActive()) > r.ttl {
			expired = append(expired, f)
			delete(r.flows, id)
		}
	}
	r.mu.Unlock()
	for _, f := range expired {
		f.Close()
	}
	return len(expired)
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.flows)
}
