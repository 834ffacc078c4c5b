// Package dispatch orchestrates one send request: validation, the
// attachment pre-flight, per-recipient rendering, and the delegated send,
// aggregating the per-recipient outcomes.
package dispatch

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/coldsend/coldsend/internal/domain"
	"github.com/coldsend/coldsend/internal/events"
	"github.com/coldsend/coldsend/internal/mail"
)

// MaxAttachmentSize is the decoded size ceiling for the resume attachment.
// Checked once before any recipient is processed; exactly this size is
// accepted, one byte more rejects the whole request.
const MaxAttachmentSize = 10 * 1024 * 1024

// Service runs the dispatch workflow.
type Service struct {
	validate *validator.Validate
	events   events.Publisher
	metrics  *Metrics
	logger   *slog.Logger
}

// NewService creates a dispatch service. publisher and metrics may be nil.
func NewService(publisher events.Publisher, metrics *Metrics, logger *slog.Logger) *Service {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		validate: validator.New(validator.WithRequiredStructEnabled()),
		events:   publisher,
		metrics:  metrics,
		logger:   logger,
	}
}

// Validate checks a send request against its field constraints. Returns a
// domain.ValidationError carrying field-level detail so handlers can build
// a 400 response without side effects.
func (s *Service) Validate(req *domain.SendRequest) error {
	err := s.validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return domain.WrapError(err, domain.EINVALID, "dispatch.validate", "invalid request body")
	}

	var out error
	for _, fe := range verrs {
		out = domain.AddFieldError(out, fieldPath(fe), fieldMessage(fe))
	}
	return out
}

// Dispatch processes one validated send request with the given sender.
//
// Recipients are processed strictly sequentially, in input order; a
// transport failure for one recipient is recorded in its result entry and
// never aborts the batch. The returned result always has one entry per
// recipient. If every recipient failed, the error is a domain error with
// code ESENDFAILED and the result still carries the per-recipient detail.
func (s *Service) Dispatch(ctx context.Context, sender mail.Sender, from string, req *domain.SendRequest) (*domain.DispatchResult, error) {
	if err := s.Validate(req); err != nil {
		return nil, err
	}

	// Attachment pre-flight: one check for the whole batch.
	attachments, err := s.decodeAttachment(req.Resume)
	if err != nil {
		return nil, err
	}

	subjectTemplate := req.Subject
	if strings.TrimSpace(subjectTemplate) == "" {
		subjectTemplate = "Regarding {Role} at {Company}"
	}

	result := &domain.DispatchResult{
		Results: make([]domain.RecipientResult, 0, len(req.Recipients)),
	}

	for _, recipient := range req.Recipients {
		vars := mail.Vars{
			Name:     recipient.Name,
			Role:     req.Role,
			Company:  req.Company,
			JobLink:  req.JobLink,
			UserName: req.UserName,
		}

		msg := &mail.Message{
			From:        from,
			To:          recipient.Email,
			Subject:     mail.RenderSubject(subjectTemplate, vars),
			HTMLBody:    mail.NewlinesToBreaks(mail.Render(req.Template, vars)),
			Attachments: attachments,
		}

		messageID, err := sender.Send(ctx, msg)
		if err != nil {
			s.logger.Warn("dispatch: send failed",
				"recipient", recipient.Email,
				"error", err,
			)
			s.metrics.recordFailed()
			result.Results = append(result.Results, domain.RecipientResult{
				Recipient: recipient.Email,
				Status:    domain.StatusError,
				Error:     err.Error(),
			})
			continue
		}

		s.metrics.recordSent()
		result.Results = append(result.Results, domain.RecipientResult{
			Recipient: recipient.Email,
			Status:    domain.StatusSuccess,
			MessageID: messageID,
		})
	}

	s.publishCompleted(ctx, from, req, result)

	if !result.AnySuccess() {
		return result, domain.Errorf(domain.ESENDFAILED, "dispatch.send",
			"all %d recipients failed", len(req.Recipients))
	}

	s.logger.Info("dispatch: batch completed",
		"sender", from,
		"recipients", len(req.Recipients),
		"succeeded", result.Succeeded(),
	)

	return result, nil
}

// decodeAttachment decodes the optional resume and enforces the size
// ceiling. Returns nil attachments when no resume is present.
func (s *Service) decodeAttachment(resume *domain.ResumeAttachment) ([]mail.Attachment, error) {
	if resume == nil {
		return nil, nil
	}

	content, err := base64.StdEncoding.DecodeString(resume.Base64)
	if err != nil {
		return nil, domain.WrapError(err, domain.EINVALID, "dispatch.attachment",
			"resume is not valid base64")
	}

	if len(content) > MaxAttachmentSize {
		return nil, domain.Errorf(domain.ETOOLARGE, "dispatch.attachment",
			"resume exceeds the %d MB attachment limit", MaxAttachmentSize/(1024*1024))
	}

	return []mail.Attachment{{
		Filename:    resume.FileName,
		ContentType: "application/pdf",
		Content:     content,
	}}, nil
}

func (s *Service) publishCompleted(ctx context.Context, from string, req *domain.SendRequest, result *domain.DispatchResult) {
	event := events.DispatchCompleted{
		Sender:      from,
		Company:     req.Company,
		Role:        req.Role,
		Recipients:  len(req.Recipients),
		Succeeded:   result.Succeeded(),
		Failed:      len(result.Results) - result.Succeeded(),
		Results:     result.Results,
		CompletedAt: time.Now(),
	}
	if err := s.events.PublishDispatchCompleted(ctx, event); err != nil {
		s.logger.Warn("dispatch: failed to publish event", "error", err)
	}
}

// fieldPath strips the struct name from a validator namespace, leaving a
// caller-friendly path like "recipients[0].email".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		ns = ns[i+1:]
	}
	return lowerFirstSegments(ns)
}

func lowerFirstSegments(path string) string {
	parts := strings.Split(path, ".")
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToLower(p[:1]) + p[1:]
	}
	return strings.Join(parts, ".")
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must contain at least %s entries", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
