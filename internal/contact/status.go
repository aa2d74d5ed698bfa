package contact

type Kind string

const (
	Idle    Kind = "idle"
	Loading Kind = "loading"
	Success Kind = "success"
	Error   Kind = "error"
)

// User-facing messages. Failure causes are never shown.
const (
	MsgSending = "Sending..."
	MsgSent    = "Email sent successfully! I will get back to you soon."
	MsgFailed  = "Failed to send email. Please try again."
)

// Status is the state of the current submission attempt.
type Status struct {
	Kind    Kind   `json:"type"`
	Message string `json:"message"`
}

var (
	StatusIdle    = Status{Kind: Idle}
	StatusLoading = Status{Kind: Loading, Message: MsgSending}
	StatusSuccess = Status{Kind: Success, Message: MsgSent}
	StatusError   = Status{Kind: Error, Message: MsgFailed}
)

func (s Status) Busy() bool { return s.Kind == Loading }
