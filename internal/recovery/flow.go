package recovery

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"linkeats/console/internal/api"
)

type Step string

const (
	StepEmail       Step = "email"
	StepCode        Step = "code"
	StepNewPassword Step = "newPassword"
)

type event string

const (
	eventCodeSent     event = "code_sent"
	eventCodeVerified event = "code_verified"
	eventResend       event = "resend"
)

// transitions is the whole flow: anything not listed is rejected.
var transitions = map[Step]map[event]Step{
	StepEmail: {
		eventCodeSent: StepCode,
	},
	StepCode: {
		eventCodeVerified: StepNewPassword,
		eventResend:       StepEmail,
	},
	StepNewPassword: {
		eventResend: StepEmail,
	},
}

const (
	MsgEmailRequired   = "Por favor, informe seu email"
	MsgCodeLength      = "O código deve ter 6 dígitos"
	MsgCodeExpired     = "Código expirado. Solicite um novo código."
	MsgPasswordsDiffer = "As senhas não coincidem"
	MsgPasswordLength  = "A senha deve ter pelo menos 6 caracteres"
	MsgPasswordChanged = "Senha alterada com sucesso!"
	MsgRequestCode     = "Erro ao solicitar código"
	MsgVerifyCode      = "Erro ao verificar código"
	MsgResetPassword   = "Erro ao resetar senha"
)

var (
	ErrEmailRequired   = errors.New(MsgEmailRequired)
	ErrCodeLength      = errors.New(MsgCodeLength)
	ErrCodeExpired     = errors.New(MsgCodeExpired)
	ErrPasswordsDiffer = errors.New(MsgPasswordsDiffer)
	ErrPasswordLength  = errors.New(MsgPasswordLength)
	ErrInvalidStep     = errors.New("recovery: action not allowed in current step")
)

// Gateway is the part of the API client the flow calls.
type Gateway interface {
	RequestPasswordReset(ctx context.Context, email string) (*api.MessageResponse, error)
	VerifyCode(ctx context.Context, email, code string) (*api.MessageResponse, error)
	ResetPassword(ctx context.Context, email, code, newPassword string) (*api.MessageResponse, error)
}

type Options struct {
	CodeTTL           time.Duration
	CodeLength        int
	MinPasswordLength int
	// VerifyRemotely checks the code with the backend before moving on to
	// the new password step.
	VerifyRemotely bool
	SuccessDelay   time.Duration
	// TickInterval drives the countdown; zero means it only moves on Tick.
	TickInterval time.Duration
}

func DefaultOptions() Options {
	return Options{
		CodeTTL:           30 * time.Second,
		CodeLength:        6,
		MinPasswordLength: 6,
		VerifyRemotely:    true,
		SuccessDelay:      2 * time.Second,
		TickInterval:      time.Second,
	}
}

// State is a copy of the flow for rendering.
type State struct {
	Step     Step
	Email    string
	Code     string
	TimeLeft int
	Error    string
	Success  string
	Loading  bool
	Done     bool
}

// Flow is one password recovery interaction.
type Flow struct {
	gateway   Gateway
	opts      Options
	countdown *Countdown
	now       func() time.Time

	// busy serialises submissions; mu guards the fields below.
	busy sync.Mutex

	mu          sync.Mutex
	step        Step
	email       string
	code        string
	errMsg      string
	success     string
	loading     bool
	completedAt time.Time
	lastActive  time.Time
}

func NewFlow(gateway Gateway, opts Options) *Flow {
	if opts.CodeTTL <= 0 {
		opts.CodeTTL = 30 * time.Second
	}
	if opts.CodeLength <= 0 {
		opts.CodeLength = 6
	}
	if opts.MinPasswordLength <= 0 {
		opts.MinPasswordLength = 6
	}
	f := &Flow{
		gateway:   gateway,
		opts:      opts,
		countdown: NewCountdown(opts.TickInterval),
		now:       time.Now,
		step:      StepEmail,
	}
	f.lastActive = f.now()
	return f
}

func (f *Flow) codeSeconds() int {
	return int(f.opts.CodeTTL / time.Second)
}

// begin clears the single error slot and checks that ev is allowed.
func (f *Flow) begin(ev event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errMsg = ""
	f.success = ""
	f.lastActive = f.now()
	if ev == "" {
		return nil
	}
	if _, ok := transitions[f.step][ev]; !ok {
		return ErrInvalidStep
	}
	return nil
}

func (f *Flow) fail(err error) error {
	f.mu.Lock()
	f.errMsg = err.Error()
	f.mu.Unlock()
	return err
}

func (f *Flow) failRemote(err error, fallback string) error {
	f.mu.Lock()
	f.errMsg = api.Message(err, fallback)
	f.mu.Unlock()
	return err
}

func (f *Flow) setLoading(v bool) {
	f.mu.Lock()
	f.loading = v
	f.mu.Unlock()
}

func (f *Flow) apply(ev event) {
	if next, ok := transitions[f.step][ev]; ok {
		f.step = next
	}
}

// RequestCode asks the backend to send a code to email and starts the code
// validity countdown.
func (f *Flow) RequestCode(ctx context.Context, email string) error {
	f.busy.Lock()
	defer f.busy.Unlock()

	if err := f.begin(eventCodeSent); err != nil {
		return f.fail(err)
	}
	email = strings.TrimSpace(email)
	if email == "" {
		return f.fail(ErrEmailRequired)
	}

	f.setLoading(true)
	_, err := f.gateway.RequestPasswordReset(ctx, email)
	f.setLoading(false)
	if err != nil {
		return f.failRemote(err, MsgRequestCode)
	}

	f.mu.Lock()
	f.email = email
	f.code = ""
	f.apply(eventCodeSent)
	f.mu.Unlock()
	f.countdown.Start(f.codeSeconds())
	return nil
}

// VerifyCode accepts the code while the countdown is running.
func (f *Flow) VerifyCode(ctx context.Context, code string) error {
	f.busy.Lock()
	defer f.busy.Unlock()

	if err := f.begin(eventCodeVerified); err != nil {
		return f.fail(err)
	}
	code = strings.TrimSpace(code)
	if utf8.RuneCountInString(code) != f.opts.CodeLength {
		return f.fail(ErrCodeLength)
	}
	if f.countdown.Remaining() <= 0 {
		return f.fail(ErrCodeExpired)
	}

	if f.opts.VerifyRemotely {
		f.mu.Lock()
		email := f.email
		f.mu.Unlock()

		f.setLoading(true)
		_, err := f.gateway.VerifyCode(ctx, email, code)
		f.setLoading(false)
		if err != nil {
			return f.failRemote(err, MsgVerifyCode)
		}
	}

	f.mu.Lock()
	f.code = code
	f.apply(eventCodeVerified)
	f.mu.Unlock()
	f.countdown.Stop()
	return nil
}

// ResetPassword confirms the new password with the verified code.
func (f *Flow) ResetPassword(ctx context.Context, newPassword, confirm string) error {
	f.busy.Lock()
	defer f.busy.Unlock()

	if err := f.begin(""); err != nil {
		return f.fail(err)
	}
	f.mu.Lock()
	step, email, code, done := f.step, f.email, f.code, !f.completedAt.IsZero()
	f.mu.Unlock()
	if step != StepNewPassword || done {
		return f.fail(ErrInvalidStep)
	}
	if newPassword != confirm {
		return f.fail(ErrPasswordsDiffer)
	}
	if utf8.RuneCountInString(newPassword) < f.opts.MinPasswordLength {
		return f.fail(ErrPasswordLength)
	}

	f.setLoading(true)
	_, err := f.gateway.ResetPassword(ctx, email, code, newPassword)
	f.setLoading(false)
	if err != nil {
		return f.failRemote(err, MsgResetPassword)
	}

	f.mu.Lock()
	f.success = MsgPasswordChanged
	f.completedAt = f.now()
	f.mu.Unlock()
	return nil
}

// Resend goes back to the email step so a new code can be requested.
func (f *Flow) Resend() error {
	f.busy.Lock()
	defer f.busy.Unlock()

	if err := f.begin(eventResend); err != nil {
		return f.fail(err)
	}
	f.mu.Lock()
	f.code = ""
	f.apply(eventResend)
	f.mu.Unlock()
	f.countdown.Stop()
	return nil
}

// Reset discards everything, as when the inline flow is collapsed.
func (f *Flow) Reset() {
	f.busy.Lock()
	defer f.busy.Unlock()
	f.countdown.Stop()
	f.mu.Lock()
	f.step = StepEmail
	f.email = ""
	f.code = ""
	f.errMsg = ""
	f.success = ""
	f.loading = false
	f.completedAt = time.Time{}
	f.lastActive = f.now()
	f.mu.Unlock()
}

// Close stops the countdown timer.
func (f *Flow) Close() {
	f.countdown.Stop()
}

// Tick advances a manual countdown by one second.
func (f *Flow) Tick() int {
	return f.countdown.Tick()
}

// Complete reports whether the success message has been shown for the
// configured delay, after which the surface leaves the flow.
func (f *Flow) Complete() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.completedAt.IsZero() {
		return false
	}
	return !f.now().Before(f.completedAt.Add(f.opts.SuccessDelay))
}

func (f *Flow) SuccessDelay() time.Duration {
	return f.opts.SuccessDelay
}

func (f *Flow) LastActive() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastActive
}

func (f *Flow) Snapshot() State {
	remaining := f.countdown.Remaining()
	f.mu.Lock()
	defer f.mu.Unlock()
	return State{
		Step:     f.step,
		Email:    f.email,
		Code:     f.code,
		TimeLeft: remaining,
		Error:    f.errMsg,
		Success:  f.success,
		Loading:  f.loading,
		Done:     !f.completedAt.IsZero(),
	}
}
