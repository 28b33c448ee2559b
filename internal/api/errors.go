package api

import (
	"encoding/json"
	"errors"
	"net/http"
)

// User-facing messages, in the product's language.
const (
	MsgConnection       = "Erro de conexão"
	MsgInvalidLogin     = "Email ou senha incorretos"
	MsgLogout           = "Erro ao fazer logout"
	MsgRequestReset     = "Erro ao solicitar recuperação de senha"
	MsgInvalidCode      = "Código inválido"
	MsgResetPassword    = "Erro ao resetar senha"
	MsgUserDataNotFound = "Dados do usuário não encontrados"
)

var (
	// ErrNotFound matches any *Error carrying a 404 status.
	ErrNotFound = errors.New("not_found")
	// ErrUserDataNotFound is returned when a login response has neither a
	// client nor a user profile.
	ErrUserDataNotFound = errors.New(MsgUserDataNotFound)
)

// Error is the single failure shape for non-success responses and transport
// failures. Status is zero when no response was received.
type Error struct {
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	return target == ErrNotFound && e.Status == http.StatusNotFound
}

type errorBody struct {
	Message string `json:"message"`
}

func newError(status int, raw []byte, fallback string) *Error {
	var body errorBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return &Error{Status: status, Message: MsgConnection}
	}
	if body.Message == "" {
		body.Message = fallback
	}
	if body.Message == "" {
		body.Message = http.StatusText(status)
	}
	return &Error{Status: status, Message: body.Message}
}

// Message extracts the user-facing message from err, falling back to fallback
// for errors that did not come from the backend.
func Message(err error, fallback string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if errors.Is(err, ErrUserDataNotFound) {
		return MsgUserDataNotFound
	}
	if fallback != "" {
		return fallback
	}
	if err != nil {
		return err.Error()
	}
	return ""
}
