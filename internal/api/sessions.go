package api

import (
	"context"
	"net/http"

	"linkeats/console/internal/model"
)

type AuthResponse struct {
	Client *model.User `json:"client,omitempty"`
	User   *model.User `json:"user,omitempty"`
	Token  string      `json:"token"`
}

// Principal returns the authenticated profile; the backend keys it under
// either "client" or "user".
func (r *AuthResponse) Principal() *model.User {
	if r == nil {
		return nil
	}
	if r.Client != nil {
		return r.Client
	}
	return r.User
}

type MessageResponse struct {
	Message string `json:"message"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type emailRequest struct {
	Email string `json:"email"`
}

type verifyCodeRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type resetPasswordRequest struct {
	Email       string `json:"email"`
	Code        string `json:"code"`
	NewPassword string `json:"newPassword"`
}

func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	var resp AuthResponse
	err := c.Do(ctx, Request{
		Operation:      "login",
		Method:         http.MethodPost,
		Path:           "/sessions",
		Body:           loginRequest{Email: email, Password: password},
		DefaultMessage: MsgInvalidLogin,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Logout(ctx context.Context, token string) error {
	return c.Do(ctx, Request{
		Operation:      "logout",
		Method:         http.MethodDelete,
		Path:           "/sessions",
		Token:          token,
		DefaultMessage: MsgLogout,
	}, nil)
}

func (c *Client) RequestPasswordReset(ctx context.Context, email string) (*MessageResponse, error) {
	var resp MessageResponse
	err := c.Do(ctx, Request{
		Operation:      "request_password_reset",
		Method:         http.MethodPost,
		Path:           "/sessions/request-password-reset",
		Body:           emailRequest{Email: email},
		DefaultMessage: MsgRequestReset,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) VerifyCode(ctx context.Context, email, code string) (*MessageResponse, error) {
	var resp MessageResponse
	err := c.Do(ctx, Request{
		Operation:      "verify_code",
		Method:         http.MethodPost,
		Path:           "/sessions/verify-code",
		Body:           verifyCodeRequest{Email: email, Code: code},
		DefaultMessage: MsgInvalidCode,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) ResetPassword(ctx context.Context, email, code, newPassword string) (*MessageResponse, error) {
	var resp MessageResponse
	err := c.Do(ctx, Request{
		Operation:      "reset_password",
		Method:         http.MethodPost,
		Path:           "/sessions/reset-password",
		Body:           resetPasswordRequest{Email: email, Code: code, NewPassword: newPassword},
		DefaultMessage: MsgResetPassword,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}
