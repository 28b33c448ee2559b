package guard

import (
	"net/http"
	"net/url"
	"strings"

	"linkeats/console/internal/auth"
	"linkeats/console/internal/session"
)

const LoginPath = "/login"

// Paths is the single source of public routes for both the edge check and the
// in-tree gate.
type Paths struct {
	Public []string
	Bypass []string
}

func DefaultPaths() Paths {
	return Paths{
		Public: []string{"/login", "/register", "/forgot-password"},
		Bypass: []string{"/health", "/metrics", "/assets/", "/favicon.ico"},
	}
}

func hasPrefix(path string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if path == prefix || strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func (p Paths) IsPublic(path string) bool {
	return hasPrefix(path, p.Public)
}

func (p Paths) IsBypassed(path string) bool {
	return hasPrefix(path, p.Bypass)
}

// LoginURL is the login screen carrying target as the post-login redirect.
func LoginURL(target string) string {
	if target == "" {
		return LoginPath
	}
	return LoginPath + "?redirect=" + url.QueryEscape(target)
}

// RedirectTarget accepts only same-site absolute paths and falls back to "/".
func RedirectTarget(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") || strings.HasPrefix(raw, "/\\") {
		return "/"
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return "/"
	}
	return raw
}

func requestTarget(r *http.Request) string {
	return r.URL.RequestURI()
}

// Edge redirects protected requests that carry no auth-token cookie. It does
// not validate the token.
func Edge(paths Paths) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if paths.IsBypassed(r.URL.Path) || paths.IsPublic(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}
			if _, ok := session.CookieToken(r); !ok {
				http.Redirect(w, r, LoginURL(requestTarget(r)), http.StatusFound)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Gate is the in-tree check over the auth context. While the context is
// loading it renders loading and never navigates.
func Gate(paths Paths, loading http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if paths.IsBypassed(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}
			ac := auth.FromContext(r.Context())
			switch {
			case ac.IsLoading():
				loading.ServeHTTP(w, r)
			case paths.IsPublic(r.URL.Path):
				next.ServeHTTP(w, r)
			case !ac.IsAuthenticated():
				http.Redirect(w, r, LoginURL(requestTarget(r)), http.StatusFound)
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}
