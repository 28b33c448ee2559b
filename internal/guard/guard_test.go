package guard

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"linkeats/console/internal/auth"
	"linkeats/console/internal/model"
	"linkeats/console/internal/session"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestEdgeRedirectsWithoutCookie(t *testing.T) {
	handler := Edge(DefaultPaths())(okHandler)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/produtos", nil))
	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", rec.Code)
	}
	if got := rec.Header().Get("Location"); got != "/login?redirect=%2Fprodutos" {
		t.Fatalf("unexpected location %q", got)
	}

	req := httptest.NewRequest(http.MethodGet, "/produtos", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: "anything"})
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected cookie presence to pass the edge, got %d", rec.Code)
	}
}

func TestEdgeLetsPublicAndBypassThrough(t *testing.T) {
	handler := Edge(DefaultPaths())(okHandler)
	for _, path := range []string{"/login", "/register", "/forgot-password", "/health", "/metrics", "/assets/app.css"} {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, rec.Code)
		}
	}
}

func TestEdgeRejectsEmptyCookie(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/clientes", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: ""})
	rec := httptest.NewRecorder()
	Edge(DefaultPaths())(okHandler).ServeHTTP(rec, req)
	if rec.Code != http.StatusFound {
		t.Fatalf("expected empty cookie to redirect, got %d", rec.Code)
	}
}

func gateRequest(t *testing.T, path string, authenticated bool, loading bool) *httptest.ResponseRecorder {
	t.Helper()
	backend := session.NewMemoryBackend()
	store := session.NewStore(backend, session.Options{})
	provider := auth.NewProvider(store, nil, nil)

	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authenticated {
		rec := httptest.NewRecorder()
		if err := store.Save(req.Context(), rec, "tok", model.User{ID: 1, CompanyID: 2}); err != nil {
			t.Fatalf("save: %v", err)
		}
		for _, c := range rec.Result().Cookies() {
			req.AddCookie(c)
		}
	}
	rec := httptest.NewRecorder()
	ac := provider.New(rec, req)
	if !loading {
		ac.Init(req.Context())
	}
	req = req.WithContext(auth.WithContext(req.Context(), ac))

	loadingView := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})
	Gate(DefaultPaths(), loadingView)(okHandler).ServeHTTP(rec, req)
	return rec
}

func TestGate(t *testing.T) {
	if rec := gateRequest(t, "/clientes", false, true); rec.Code != http.StatusAccepted {
		t.Fatalf("expected loading view, got %d", rec.Code)
	}
	if rec := gateRequest(t, "/login", false, false); rec.Code != http.StatusOK {
		t.Fatalf("expected public page to render, got %d", rec.Code)
	}
	rec := gateRequest(t, "/clientes?term=ana", false, false)
	if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/login?redirect=%2Fclientes%3Fterm%3Dana" {
		t.Fatalf("expected redirect to login, got %d %q", rec.Code, rec.Header().Get("Location"))
	}
	if rec := gateRequest(t, "/clientes", true, false); rec.Code != http.StatusOK {
		t.Fatalf("expected authenticated render, got %d", rec.Code)
	}
}

func TestRedirectTarget(t *testing.T) {
	cases := map[string]string{
		"":                     "/",
		"/produtos":            "/produtos",
		"/clientes?term=ana":   "/clientes?term=ana",
		"//evil.example":       "/",
		"https://evil.example": "/",
		"produtos":             "/",
		"/\\evil.example":      "/",
	}
	for raw, want := range cases {
		if got := RedirectTarget(raw); got != want {
			t.Fatalf("RedirectTarget(%q) = %q, want %q", raw, got, want)
		}
	}
}
