package dispatch

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coldsend/coldsend/internal/domain"
	"github.com/coldsend/coldsend/internal/mail"
)

// fakeSender records every message it is asked to send and fails for
// addresses listed in failFor.
type fakeSender struct {
	sent    []*mail.Message
	failFor map[string]error
}

func (f *fakeSender) Send(ctx context.Context, msg *mail.Message) (string, error) {
	f.sent = append(f.sent, msg)
	if err, ok := f.failFor[msg.To]; ok {
		return "", err
	}
	return fmt.Sprintf("msg-%d", len(f.sent)), nil
}

func newTestService() *Service {
	return NewService(nil, nil, slog.New(slog.DiscardHandler))
}

func validRequest() *domain.SendRequest {
	return &domain.SendRequest{
		UserName: "Sam Carter",
		Role:     "Backend Engineer",
		Company:  "Initech",
		JobLink:  "https://example.com/jobs/42",
		Template: "Hi {Name}, I am interested in the {Role} role at {Company}.\n{UserName}",
		Recipients: []domain.Recipient{
			{Name: "Ada", Email: "ada@example.com"},
			{Name: "Grace", Email: "grace@example.com"},
		},
	}
}

func TestDispatch_AllSucceed(t *testing.T) {
	svc := newTestService()
	sender := &fakeSender{}

	result, err := svc.Dispatch(context.Background(), sender, "sam@example.com", validRequest())
	require.NoError(t, err)
	require.Len(t, result.Results, 2)

	assert.Equal(t, "ada@example.com", result.Results[0].Recipient)
	assert.Equal(t, "grace@example.com", result.Results[1].Recipient)
	for _, r := range result.Results {
		assert.Equal(t, domain.StatusSuccess, r.Status)
		assert.NotEmpty(t, r.MessageID)
		assert.Empty(t, r.Error)
	}
}

func TestDispatch_PartialFailureDoesNotAbortBatch(t *testing.T) {
	svc := newTestService()
	sender := &fakeSender{failFor: map[string]error{
		"ada@example.com": errors.New("550 mailbox unavailable"),
	}}

	result, err := svc.Dispatch(context.Background(), sender, "sam@example.com", validRequest())

	// One success is enough for the overall call to succeed.
	require.NoError(t, err)
	require.Len(t, result.Results, 2)

	assert.Equal(t, domain.StatusError, result.Results[0].Status)
	assert.Contains(t, result.Results[0].Error, "mailbox unavailable")
	assert.Equal(t, domain.StatusSuccess, result.Results[1].Status)

	// The failing recipient did not stop the second send.
	assert.Len(t, sender.sent, 2)
}

func TestDispatch_TotalFailure(t *testing.T) {
	svc := newTestService()
	sender := &fakeSender{failFor: map[string]error{
		"ada@example.com":   errors.New("bounced"),
		"grace@example.com": errors.New("bounced"),
	}}

	result, err := svc.Dispatch(context.Background(), sender, "sam@example.com", validRequest())

	require.Error(t, err)
	assert.Equal(t, domain.ESENDFAILED, domain.ErrorCode(err))

	// Per-recipient detail is still reported alongside the error.
	require.NotNil(t, result)
	require.Len(t, result.Results, 2)
	for _, r := range result.Results {
		assert.Equal(t, domain.StatusError, r.Status)
	}
}

func TestDispatch_PersonalizesPerRecipient(t *testing.T) {
	svc := newTestService()
	sender := &fakeSender{}

	_, err := svc.Dispatch(context.Background(), sender, "sam@example.com", validRequest())
	require.NoError(t, err)
	require.Len(t, sender.sent, 2)

	assert.Contains(t, sender.sent[0].HTMLBody, "Hi Ada,")
	assert.Contains(t, sender.sent[1].HTMLBody, "Hi Grace,")
	// Newlines become markup in the HTML body.
	assert.Contains(t, sender.sent[0].HTMLBody, "<br>")
	assert.Equal(t, "sam@example.com", sender.sent[0].From)
}

func TestDispatch_DefaultSubject(t *testing.T) {
	svc := newTestService()
	sender := &fakeSender{}

	req := validRequest()
	req.Subject = ""

	_, err := svc.Dispatch(context.Background(), sender, "sam@example.com", req)
	require.NoError(t, err)
	assert.Equal(t, "Regarding Backend Engineer at Initech", sender.sent[0].Subject)
}

func TestDispatch_SubjectIgnoresRecipientName(t *testing.T) {
	svc := newTestService()
	sender := &fakeSender{}

	req := validRequest()
	req.Subject = "{Name} - {Role} at {Company}"

	_, err := svc.Dispatch(context.Background(), sender, "sam@example.com", req)
	require.NoError(t, err)
	assert.Equal(t, "{Name} - Backend Engineer at Initech", sender.sent[0].Subject)
}

func TestDispatch_AttachmentSizeCeiling(t *testing.T) {
	tests := []struct {
		name      string
		size      int
		wantSends int
		wantCode  string
	}{
		{name: "exactly 10 MiB is accepted", size: MaxAttachmentSize, wantSends: 2},
		{name: "one byte over is rejected pre-flight", size: MaxAttachmentSize + 1, wantSends: 0, wantCode: domain.ETOOLARGE},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService()
			sender := &fakeSender{}

			req := validRequest()
			req.Resume = &domain.ResumeAttachment{
				FileName: "resume.pdf",
				Base64:   base64.StdEncoding.EncodeToString(make([]byte, tt.size)),
			}

			_, err := svc.Dispatch(context.Background(), sender, "sam@example.com", req)

			if tt.wantCode != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, domain.ErrorCode(err))
			} else {
				require.NoError(t, err)
				require.Len(t, sender.sent[0].Attachments, 1)
				assert.Equal(t, "resume.pdf", sender.sent[0].Attachments[0].Filename)
			}
			// Rejection happens before any recipient is processed.
			assert.Len(t, sender.sent, tt.wantSends)
		})
	}
}

func TestDispatch_InvalidBase64Attachment(t *testing.T) {
	svc := newTestService()
	sender := &fakeSender{}

	req := validRequest()
	req.Resume = &domain.ResumeAttachment{FileName: "resume.pdf", Base64: "not*base64*"}

	_, err := svc.Dispatch(context.Background(), sender, "sam@example.com", req)
	require.Error(t, err)
	assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
	assert.Empty(t, sender.sent)
}

func TestValidate_FieldErrors(t *testing.T) {
	svc := newTestService()

	tests := []struct {
		name      string
		mutate    func(*domain.SendRequest)
		wantField string
	}{
		{
			name:      "missing user name",
			mutate:    func(r *domain.SendRequest) { r.UserName = "" },
			wantField: "userName",
		},
		{
			name:      "missing template",
			mutate:    func(r *domain.SendRequest) { r.Template = "" },
			wantField: "template",
		},
		{
			name:      "empty recipients",
			mutate:    func(r *domain.SendRequest) { r.Recipients = nil },
			wantField: "recipients",
		},
		{
			name: "bad recipient email",
			mutate: func(r *domain.SendRequest) {
				r.Recipients[1].Email = "not-an-address"
			},
			wantField: "recipients[1].email",
		},
		{
			name: "missing recipient name",
			mutate: func(r *domain.SendRequest) {
				r.Recipients[0].Name = ""
			},
			wantField: "recipients[0].name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(req)

			err := svc.Validate(req)
			require.Error(t, err)
			require.True(t, domain.IsValidationError(err), "want ValidationError, got %T", err)

			fields := domain.GetValidationFields(err)
			if _, ok := fields[tt.wantField]; !ok {
				keys := make([]string, 0, len(fields))
				for k := range fields {
					keys = append(keys, k)
				}
				t.Errorf("field %q not reported, got: %s", tt.wantField, strings.Join(keys, ", "))
			}
		})
	}
}

func TestDispatch_ValidationFailureHasNoSideEffects(t *testing.T) {
	svc := newTestService()
	sender := &fakeSender{}

	req := validRequest()
	req.Recipients[0].Email = "broken"

	_, err := svc.Dispatch(context.Background(), sender, "sam@example.com", req)
	require.Error(t, err)
	assert.Empty(t, sender.sent, "no recipient may be processed when validation fails")
}
