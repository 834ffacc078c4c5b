package mail

import (
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"strings"

	"golang.org/x/oauth2"
	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// GmailTransport sends mail through the Gmail API with the user's own
// OAuth tokens. Each Sender is bound to one user's credentials; Gmail
// refreshes the access token transparently through the token source when
// it has expired, using the session's refresh token.
type GmailTransport struct {
	oauthConfig *oauth2.Config
}

// NewGmailTransport creates a Gmail transport from the application's OAuth
// client configuration.
func NewGmailTransport(oauthConfig *oauth2.Config) *GmailTransport {
	return &GmailTransport{oauthConfig: oauthConfig}
}

// Sender returns a Sender that sends as the credentialed user.
func (t *GmailTransport) Sender(creds Credentials) Sender {
	return &gmailSender{
		oauthConfig: t.oauthConfig,
		creds:       creds,
	}
}

type gmailSender struct {
	oauthConfig *oauth2.Config
	creds       Credentials
}

// Send sends one message via the Gmail API and returns the provider-assigned
// message id. Single attempt; the API call is bounded by ctx.
func (g *gmailSender) Send(ctx context.Context, msg *Message) (string, error) {
	token := &oauth2.Token{
		AccessToken:  g.creds.AccessToken,
		RefreshToken: g.creds.RefreshToken,
		Expiry:       g.creds.Expiry,
	}
	client := oauth2.NewClient(ctx, g.oauthConfig.TokenSource(ctx, token))

	svc, err := gmail.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return "", fmt.Errorf("gmail: failed to create service: %w", err)
	}

	raw, err := EncodeMIME(msg)
	if err != nil {
		return "", fmt.Errorf("gmail: failed to encode message: %w", err)
	}

	sent, err := svc.Users.Messages.Send("me", &gmail.Message{Raw: raw}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("gmail: failed to send email: %w", err)
	}

	return sent.Id, nil
}

// EncodeMIME builds an RFC 2822 message for the Gmail API and returns it
// base64url-encoded. Messages with attachments are multipart/mixed; plain
// HTML messages are a single text/html part.
func EncodeMIME(msg *Message) (string, error) {
	if msg.To == "" {
		return "", fmt.Errorf("message has no recipient")
	}

	headers := []string{
		"From: " + msg.From,
		"To: " + msg.To,
		"Subject: " + mime.QEncoding.Encode("utf-8", msg.Subject),
		"MIME-Version: 1.0",
	}

	var b strings.Builder

	if len(msg.Attachments) == 0 {
		headers = append(headers, "Content-Type: text/html; charset=UTF-8", "", "")
		b.WriteString(strings.Join(headers, "\r\n"))
		b.WriteString(msg.HTMLBody)
		return base64.URLEncoding.EncodeToString([]byte(b.String())), nil
	}

	const boundary = "coldsend_mime_boundary"
	headers = append(headers, "Content-Type: multipart/mixed; boundary="+boundary, "", "")
	b.WriteString(strings.Join(headers, "\r\n"))

	b.WriteString("--" + boundary + "\r\n")
	b.WriteString("Content-Type: text/html; charset=UTF-8\r\n\r\n")
	b.WriteString(msg.HTMLBody)
	b.WriteString("\r\n")

	for _, att := range msg.Attachments {
		contentType := att.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		b.WriteString("--" + boundary + "\r\n")
		b.WriteString("Content-Type: " + contentType + "; name=\"" + att.Filename + "\"\r\n")
		b.WriteString("Content-Disposition: attachment; filename=\"" + att.Filename + "\"\r\n")
		b.WriteString("Content-Transfer-Encoding: base64\r\n\r\n")
		b.WriteString(base64.StdEncoding.EncodeToString(att.Content))
		b.WriteString("\r\n")
	}
	b.WriteString("--" + boundary + "--")

	return base64.URLEncoding.EncodeToString([]byte(b.String())), nil
}
