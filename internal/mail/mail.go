package mail

import (
	"context"
	"time"
)

// Message represents an email message to be sent.
type Message struct {
	To          string       // Recipient email address
	From        string       // Sender email address
	Subject     string       // Email subject
	HTMLBody    string       // HTML body
	TextBody    string       // Plain text body (optional)
	Attachments []Attachment // File attachments (optional)
}

// Attachment represents a file attachment for an email.
type Attachment struct {
	Filename    string // Name of the file
	ContentType string // MIME type
	Content     []byte // File content
}

// Credentials are the per-user OAuth tokens a transport sends on behalf of.
type Credentials struct {
	Email        string // Authenticated sender address
	AccessToken  string
	RefreshToken string
	Expiry       time.Time
}

// Sender sends a single email message.
// Implementations are single-shot and bounded by ctx; they never retry.
type Sender interface {
	// Send sends an email message.
	// Returns the message ID assigned by the provider (if available).
	Send(ctx context.Context, msg *Message) (string, error)
}

// Transport builds Senders bound to a user's credentials.
// The Gmail transport sends through the user's own mailbox; the SMTP
// transport ignores the tokens and relays through a configured server.
type Transport interface {
	Sender(creds Credentials) Sender
}
