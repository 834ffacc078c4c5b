package domain

// Recipient is a single addressee of a send request.
type Recipient struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
}

// ResumeAttachment is an optional base64-encoded PDF attached to every
// email in a batch.
type ResumeAttachment struct {
	FileName string `json:"fileName" validate:"required"`
	Base64   string `json:"base64" validate:"required"`
}

// SendRequest is the body of one POST /send-emails call.
// Template and Subject may contain {Name}, {Role}, {Company}, {JobLink}
// and {UserName} placeholders; subjects never substitute {Name}.
type SendRequest struct {
	UserName   string            `json:"userName" validate:"required"`
	Role       string            `json:"role" validate:"required"`
	Company    string            `json:"company" validate:"required"`
	JobLink    string            `json:"joblink"`
	Subject    string            `json:"subject"`
	Template   string            `json:"template" validate:"required"`
	Recipients []Recipient       `json:"recipients" validate:"required,min=1,dive"`
	Resume     *ResumeAttachment `json:"resume,omitempty"`
}

// Recipient result statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// RecipientResult records the outcome of one recipient within a batch.
// Exactly one of MessageID and Error is set.
type RecipientResult struct {
	Recipient string `json:"recipient"`
	Status    string `json:"status"`
	MessageID string `json:"messageId,omitempty"`
	Error     string `json:"error,omitempty"`
}

// DispatchResult aggregates the per-recipient outcomes of one send request.
// Results are ordered exactly as the request's recipients.
type DispatchResult struct {
	Results []RecipientResult `json:"results"`
}

// Succeeded reports how many recipients were accepted by the transport.
func (d *DispatchResult) Succeeded() int {
	n := 0
	for _, r := range d.Results {
		if r.Status == StatusSuccess {
			n++
		}
	}
	return n
}

// AnySuccess reports whether at least one recipient succeeded.
// One success is enough for the whole call to report success; this mirrors
// long-standing product behavior and is intentionally not "all succeeded".
func (d *DispatchResult) AnySuccess() bool {
	return d.Succeeded() > 0
}
