// Package access drives the email→OTP→success verification flow for one
// share token. States are an explicit tagged union with a single transition
// function, so illegal combinations (an OTP prompt with no email recorded)
// are unrepresentable.
package access

// State is the current position in the verification flow. Exactly one of
// EmailInput, OTPInput, or Success. LinkInvalid is not a machine state: it
// is decided by share-info resolution before the machine ever starts.
type State interface {
	isState()
}

// EmailInput waits for the viewer to claim an email address.
type EmailInput struct {
	// Hint is the masked recipient hint for restricted shares, e.g.
	// "f***e@org.com". Empty for open shares.
	Hint string

	// ErrMsg is the inline error from the previous attempt, if any.
	ErrMsg string
}

// OTPInput waits for the one-time code sent to Email.
type OTPInput struct {
	Email string

	// AutoSent is true when the code was dispatched without user
	// interaction (restricted share with a single known recipient).
	AutoSent bool

	// ErrMsg is the server's rejection message from the previous attempt,
	// surfaced verbatim.
	ErrMsg string
}

// Success is terminal: the viewer is verified and content may load.
type Success struct {
	Email     string
	ShareType string
	FolderID  string
	Document  string

	// Restored is true when verification was skipped entirely because a
	// cached session passed server re-validation.
	Restored bool
}

func (EmailInput) isState() {}
func (OTPInput) isState()   {}
func (Success) isState()    {}

// Event is an input to the transition function.
type Event interface {
	isEvent()
}

// SubmitEmail claims an email address and requests an OTP for it.
type SubmitEmail struct {
	Email string
}

// SubmitOTP submits the one-time code for verification.
type SubmitOTP struct {
	Code string
}

// ChangeEmail abandons the pending OTP and returns to email entry,
// clearing the code and any error.
type ChangeEmail struct{}

func (SubmitEmail) isEvent() {}
func (SubmitOTP) isEvent()   {}
func (ChangeEmail) isEvent() {}
