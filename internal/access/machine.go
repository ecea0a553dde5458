package access

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/docuvault/shareview-go/internal/session"
	"github.com/docuvault/shareview-go/internal/shareapi"
)

// ErrInvalidTransition reports an event applied in a state that does not
// accept it, e.g. SubmitOTP before any email was submitted.
var ErrInvalidTransition = errors.New("access: invalid transition")

// API is the slice of the share client the machine needs.
type API interface {
	RequestAccess(ctx context.Context, token, viewerEmail string) error
	VerifyAccess(ctx context.Context, token, viewerEmail, otp string) (*shareapi.VerifyResult, error)
}

// SessionStore persists verified identities between runs.
type SessionStore interface {
	Read(ctx context.Context, token string) (*session.Session, error)
	Write(ctx context.Context, token string, sess session.Session) error
	Clear(ctx context.Context, token string) error
}

// Probe validates a cached identity by actually loading content with it.
// The machine treats any probe failure as a stale session: the local entry
// is cleared silently and the flow falls back to fresh verification.
type Probe func(ctx context.Context, sess session.Session) error

// Machine drives the verification flow for one token. It is event-driven
// and strictly serial: no two requests of the same kind are ever in flight,
// so the one-shot auto-send flag is the only de-duplication guard needed.
type Machine struct {
	token  string
	info   *shareapi.ShareInfo
	api    API
	store  SessionStore
	logger *slog.Logger

	// allowedDomain is the client-side email domain policy. Empty allows
	// any domain; the server check is authoritative either way.
	allowedDomain string

	// autoSent guards the automatic OTP request so repeated Start calls
	// cannot dispatch a second code.
	autoSent bool

	state State
}

// NewMachine creates a machine for one resolved share. info must be the
// already-fetched share metadata: a failed resolution pre-empts the machine
// entirely.
func NewMachine(token string, info *shareapi.ShareInfo, api API, store SessionStore, allowedDomain string, logger *slog.Logger) *Machine {
	if logger == nil {
		logger = slog.Default()
	}

	return &Machine{
		token:         token,
		info:          info,
		api:           api,
		store:         store,
		allowedDomain: allowedDomain,
		logger:        logger,
	}
}

// State returns the machine's current state, or nil before Start.
func (m *Machine) State() State {
	return m.state
}

// Start establishes the initial state:
//
//  1. A cached session that passes the probe short-circuits to Success.
//     Any probe failure clears the session silently and falls through.
//  2. A restricted share with a single known recipient auto-requests a
//     code for that email, exactly once, and lands in OTPInput.
//  3. Otherwise the viewer must supply an email in EmailInput.
//
// Start is idempotent: once a state exists it is returned unchanged, so
// re-entry cannot re-trigger the automatic code dispatch.
func (m *Machine) Start(ctx context.Context, probe Probe) (State, error) {
	if m.state != nil {
		return m.state, nil
	}

	if st, ok := m.tryRestore(ctx, probe); ok {
		m.state = st
		return m.state, nil
	}

	if m.info.IsRestricted && m.info.TargetEmail != "" && !m.autoSent {
		m.autoSent = true

		if err := m.api.RequestAccess(ctx, m.token, m.info.TargetEmail); err != nil {
			m.logger.Warn("automatic code request failed",
				slog.String("error", err.Error()),
			)

			m.state = EmailInput{Hint: m.info.TargetEmailHint, ErrMsg: shareapi.UserMessage(err)}

			return m.state, nil
		}

		m.state = OTPInput{Email: m.info.TargetEmail, AutoSent: true}

		return m.state, nil
	}

	m.state = EmailInput{Hint: m.info.TargetEmailHint}

	return m.state, nil
}

// tryRestore attempts the silent session restore. Returns (state, true)
// only when a cached session exists and the probe accepted it.
func (m *Machine) tryRestore(ctx context.Context, probe Probe) (State, bool) {
	sess, err := m.store.Read(ctx, m.token)
	if err != nil {
		m.logger.Warn("reading stored session failed", slog.String("error", err.Error()))
		return nil, false
	}

	if sess == nil {
		return nil, false
	}

	if err := probe(ctx, *sess); err != nil {
		// Stale session: clear and demote to fresh verification. Never
		// surfaced as an error; the viewer simply re-verifies.
		m.logger.Debug("cached session rejected, clearing",
			slog.String("error", err.Error()),
		)

		if clearErr := m.store.Clear(ctx, m.token); clearErr != nil {
			m.logger.Warn("clearing stale session failed", slog.String("error", clearErr.Error()))
		}

		return nil, false
	}

	return Success{
		Email:     sess.Email,
		ShareType: sess.ShareType,
		FolderID:  sess.FolderID,
		Restored:  true,
	}, true
}

// Apply is the single transition function. It validates the (state, event)
// pair, performs the one network call the transition needs, and returns the
// next state. Recoverable failures keep the current phase with an inline
// error message; only programming errors (illegal pairs) return an error.
func (m *Machine) Apply(ctx context.Context, ev Event) (State, error) {
	if m.state == nil {
		return nil, fmt.Errorf("%w: machine not started", ErrInvalidTransition)
	}

	switch st := m.state.(type) {
	case EmailInput:
		e, ok := ev.(SubmitEmail)
		if !ok {
			return nil, fmt.Errorf("%w: %T in email entry", ErrInvalidTransition, ev)
		}

		m.state = m.submitEmail(ctx, st, e.Email)

	case OTPInput:
		switch e := ev.(type) {
		case SubmitOTP:
			m.state = m.submitOTP(ctx, st, e.Code)
		case ChangeEmail:
			m.state = EmailInput{Hint: m.info.TargetEmailHint}
		default:
			return nil, fmt.Errorf("%w: %T in code entry", ErrInvalidTransition, ev)
		}

	case Success:
		return nil, fmt.Errorf("%w: %T after success", ErrInvalidTransition, ev)
	}

	return m.state, nil
}

// submitEmail validates the claimed email locally, then asks the server to
// dispatch a code. Local policy failures and server rejections both keep
// the flow in EmailInput with an inline message.
func (m *Machine) submitEmail(ctx context.Context, st EmailInput, email string) State {
	email = strings.TrimSpace(email)

	if err := m.checkEmailPolicy(email); err != nil {
		return EmailInput{Hint: st.Hint, ErrMsg: err.Error()}
	}

	if err := m.api.RequestAccess(ctx, m.token, email); err != nil {
		return EmailInput{Hint: st.Hint, ErrMsg: shareapi.UserMessage(err)}
	}

	return OTPInput{Email: email}
}

// submitOTP verifies the code. On success the identity is persisted and the
// machine reaches Success; on rejection the flow stays in OTPInput with the
// server's message verbatim; the server's wording is not reinterpreted.
func (m *Machine) submitOTP(ctx context.Context, st OTPInput, code string) State {
	code = strings.TrimSpace(code)

	if !isNumericCode(code) {
		return OTPInput{Email: st.Email, AutoSent: st.AutoSent, ErrMsg: "the code is numeric, check for typos"}
	}

	result, err := m.api.VerifyAccess(ctx, m.token, st.Email, code)
	if err != nil {
		return OTPInput{Email: st.Email, AutoSent: st.AutoSent, ErrMsg: shareapi.UserMessage(err)}
	}

	if err := m.store.Write(ctx, m.token, session.Session{
		Email:     st.Email,
		ShareType: result.ShareType,
		FolderID:  result.FolderID,
	}); err != nil {
		// Persistence failure does not block access: the viewer is
		// verified, they just will not get silent re-entry next time.
		m.logger.Warn("persisting session failed", slog.String("error", err.Error()))
	}

	return Success{
		Email:     st.Email,
		ShareType: result.ShareType,
		FolderID:  result.FolderID,
		Document:  result.Document,
	}
}

// checkEmailPolicy applies the client-side checks: a parseable address on
// the allowed domain. The server may still reject for other reasons.
func (m *Machine) checkEmailPolicy(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return errors.New("enter a valid email address")
	}

	if m.allowedDomain == "" {
		return nil
	}

	at := strings.LastIndex(email, "@")
	if !strings.EqualFold(email[at+1:], m.allowedDomain) {
		return fmt.Errorf("email must be on the %s domain", m.allowedDomain)
	}

	return nil
}

// isNumericCode reports whether s is a non-empty all-digit string.
func isNumericCode(s string) bool {
	if s == "" {
		return false
	}

	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}

	return true
}
