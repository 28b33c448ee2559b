package http

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"

	"linkeats/console/internal/api"
	"linkeats/console/internal/auth"
	"linkeats/console/internal/guard"
	"linkeats/console/internal/recovery"
	"linkeats/console/internal/resources"
)

const (
	msgLoginFailed = "Erro ao fazer login"

	forgotPasswordPath = "/forgot-password"
	inlineRecoveryPath = guard.LoginPath + "?forgot=1"
)

var errUnknownAction = errors.New("unknown recovery action")

type loginView struct {
	Email    string
	Redirect string
	Error    string
	Forgot   bool
	Recovery recovery.State
}

type recoveryView struct {
	Recovery recovery.State
	// Action is where the recovery forms post.
	Action string
}

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	ac := auth.FromContext(r.Context())
	redirect := r.URL.Query().Get("redirect")
	forgot := r.URL.Query().Get("forgot") == "1"

	if !forgot && ac.IsAuthenticated() {
		http.Redirect(w, r, guard.RedirectTarget(redirect), http.StatusFound)
		return
	}

	view := loginView{Redirect: redirect, Forgot: forgot}
	p := page{Title: "Login"}
	if forgot {
		id, flow := s.flows.Ensure(w, r)
		if flow.Complete() {
			s.flows.Remove(w, id)
			http.Redirect(w, r, guard.LoginPath, http.StatusFound)
			return
		}
		view.Recovery = flow.Snapshot()
		if view.Recovery.Done {
			p.Refresh = refreshAfter(flow, inlineRecoveryPath)
		}
	}
	p.Data = view
	s.render(w, r, http.StatusOK, "login", p)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_form")
		return
	}
	action := r.PostForm.Get("action")
	if action != "" && action != "login" {
		s.handleRecoveryAction(w, r, action, inlineRecoveryPath, guard.LoginPath)
		return
	}

	email := strings.TrimSpace(r.PostForm.Get("email"))
	password := r.PostForm.Get("password")
	redirect := r.PostForm.Get("redirect")
	view := loginView{Email: email, Redirect: redirect}

	if email == "" || password == "" {
		view.Error = resources.MsgRequiredFields
		s.render(w, r, http.StatusUnprocessableEntity, "login", page{Title: "Login", Data: view})
		return
	}

	ac := auth.FromContext(r.Context())
	if err := ac.Login(r.Context(), email, password); err != nil {
		s.logger.Info("login failed", "email", email, "error", err)
		view.Error = api.Message(err, msgLoginFailed)
		s.render(w, r, loginFailureStatus(err), "login", page{Title: "Login", Data: view})
		return
	}
	http.Redirect(w, r, guard.RedirectTarget(redirect), http.StatusSeeOther)
}

func loginFailureStatus(err error) int {
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500 {
		return apiErr.Status
	}
	if errors.Is(err, api.ErrUserDataNotFound) {
		return http.StatusUnauthorized
	}
	return http.StatusBadGateway
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	ac := auth.FromContext(r.Context())
	if err := ac.Logout(r.Context()); err != nil {
		s.logger.Warn("session clear failed", "error", err)
	}
	http.Redirect(w, r, guard.LoginPath, http.StatusSeeOther)
}

func (s *Server) handleForgotPasswordPage(w http.ResponseWriter, r *http.Request) {
	id, flow := s.flows.Ensure(w, r)
	if flow.Complete() {
		s.flows.Remove(w, id)
		http.Redirect(w, r, guard.LoginPath, http.StatusFound)
		return
	}
	view := recoveryView{Recovery: flow.Snapshot(), Action: forgotPasswordPath}
	p := page{Title: "Recuperar senha", Data: view}
	if view.Recovery.Done {
		p.Refresh = refreshAfter(flow, forgotPasswordPath)
	}
	s.render(w, r, http.StatusOK, "forgot_password", p)
}

func (s *Server) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_form")
		return
	}
	s.handleRecoveryAction(w, r, r.PostForm.Get("action"), forgotPasswordPath, guard.LoginPath)
}

// handleRecoveryAction runs one recovery submission and redirects to back.
// The outcome, including any error, stays in the flow for the next render.
// cancel discards the flow and goes to exit.
func (s *Server) handleRecoveryAction(w http.ResponseWriter, r *http.Request, action, back, exit string) {
	id, flow := s.flows.Ensure(w, r)
	if action == "cancel" {
		s.flows.Remove(w, id)
		http.Redirect(w, r, exit, http.StatusSeeOther)
		return
	}

	err := applyRecovery(r, flow, action)
	switch {
	case errors.Is(err, errUnknownAction):
		writeError(w, http.StatusBadRequest, "unknown_action")
		return
	case err != nil:
		s.logger.Debug("recovery step rejected", "action", action, "error", err)
	}
	http.Redirect(w, r, back, http.StatusSeeOther)
}

func applyRecovery(r *http.Request, flow *recovery.Flow, action string) error {
	ctx := r.Context()
	switch action {
	case "request-code":
		return flow.RequestCode(ctx, r.PostForm.Get("email"))
	case "verify-code":
		return flow.VerifyCode(ctx, r.PostForm.Get("code"))
	case "reset-password":
		return flow.ResetPassword(ctx, r.PostForm.Get("password"), r.PostForm.Get("confirm"))
	case "resend":
		return flow.Resend()
	default:
		return fmt.Errorf("%w: %q", errUnknownAction, action)
	}
}

// refreshAfter is the meta refresh that reloads target once the success
// message has been shown for the flow's delay.
func refreshAfter(flow *recovery.Flow, target string) string {
	seconds := int(math.Ceil(flow.SuccessDelay().Seconds()))
	return fmt.Sprintf("%d;url=%s", seconds, target)
}
