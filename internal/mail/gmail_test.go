package mail

import (
	"encoding/base64"
	"strings"
	"testing"
)

func TestEncodeMIME_PlainHTML(t *testing.T) {
	msg := &Message{
		From:     "sender@example.com",
		To:       "rcpt@example.com",
		Subject:  "Hello",
		HTMLBody: "<p>Hi there</p>",
	}

	raw, err := EncodeMIME(msg)
	if err != nil {
		t.Fatalf("EncodeMIME() error = %v", err)
	}

	decoded, err := base64.URLEncoding.DecodeString(raw)
	if err != nil {
		t.Fatalf("raw message is not base64url: %v", err)
	}

	text := string(decoded)
	for _, want := range []string{
		"From: sender@example.com",
		"To: rcpt@example.com",
		"Content-Type: text/html",
		"<p>Hi there</p>",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("encoded message missing %q:\n%s", want, text)
		}
	}
	if strings.Contains(text, "multipart/mixed") {
		t.Error("message without attachments should not be multipart")
	}
}

func TestEncodeMIME_WithAttachment(t *testing.T) {
	content := []byte("%PDF-1.4 fake resume bytes")
	msg := &Message{
		From:     "sender@example.com",
		To:       "rcpt@example.com",
		Subject:  "With resume",
		HTMLBody: "<p>See attached</p>",
		Attachments: []Attachment{
			{Filename: "resume.pdf", ContentType: "application/pdf", Content: content},
		},
	}

	raw, err := EncodeMIME(msg)
	if err != nil {
		t.Fatalf("EncodeMIME() error = %v", err)
	}

	decoded, _ := base64.URLEncoding.DecodeString(raw)
	text := string(decoded)

	for _, want := range []string{
		"multipart/mixed",
		`filename="resume.pdf"`,
		"Content-Type: application/pdf",
		base64.StdEncoding.EncodeToString(content),
	} {
		if !strings.Contains(text, want) {
			t.Errorf("encoded message missing %q", want)
		}
	}
}

func TestEncodeMIME_MissingRecipient(t *testing.T) {
	if _, err := EncodeMIME(&Message{From: "a@b.c", Subject: "x"}); err == nil {
		t.Error("EncodeMIME() should fail without a recipient")
	}
}
