package document

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"baryo/internal/audit"
	"baryo/internal/document/placeholder"
	"baryo/internal/notify"
	"baryo/internal/platform/metrics"
	"baryo/internal/submission"
	dErrors "baryo/pkg/domain-errors"
)

const submitPath = "/api/document-requests"

// Forwarder sends the assembled request upstream.
type Forwarder interface {
	Forward(ctx context.Context, path, bearerToken string, payload *submission.Payload) (*submission.Result, error)
}

// Service owns the document request lifecycle: prepare a placeholder form,
// collect values and requirement uploads, submit upstream as one multipart
// request.
type Service struct {
	store     Store
	forwarder Forwarder
	notifier  notify.Notifier
	publisher *audit.Publisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(
	store Store,
	forwarder Forwarder,
	notifier notify.Notifier,
	publisher *audit.Publisher,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Service {
	return &Service{
		store:     store,
		forwarder: forwarder,
		notifier:  notifier,
		publisher: publisher,
		metrics:   m,
		logger:    logger,
		now:       time.Now,
	}
}

// Prepare resolves the template tokens into a fresh request session.
func (s *Service) Prepare(ctx context.Context, userID, documentType string, tokens []string, requirements []Requirement) (*Session, error) {
	if documentType == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "document type is required")
	}
	if len(tokens) == 0 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "template has no placeholders")
	}
	now := s.now()
	session := &Session{
		ID:           uuid.NewString(),
		UserID:       userID,
		DocumentType: documentType,
		Form:         placeholder.NewForm(tokens, now),
		Requirements: requirements,
		Uploads:      make(map[string]*Upload),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.Save(ctx, session); err != nil {
		return nil, err
	}
	s.metrics.DocumentFormsPrepared.Inc()
	s.publisher.Emit(ctx, audit.Event{
		UserID:   userID,
		Action:   audit.ActionDocumentPrepared,
		Resource: documentType,
	})
	s.logger.InfoContext(ctx, "document form prepared",
		slog.String("session_id", session.ID),
		slog.String("document_type", documentType),
	)
	return session, nil
}

// Get loads a session the caller owns.
func (s *Service) Get(ctx context.Context, userID, sessionID string) (*Session, error) {
	return s.load(ctx, userID, sessionID)
}

// SetValue writes one placeholder value and persists the session.
func (s *Service) SetValue(ctx context.Context, userID, sessionID, token, value string) (*Session, error) {
	session, err := s.load(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if err := session.Form.SetValue(token, value, s.now()); err != nil {
		return nil, err
	}
	session.UpdatedAt = s.now()
	if err := s.store.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// SetChecked toggles one checkbox member and persists the session.
func (s *Service) SetChecked(ctx context.Context, userID, sessionID, token string, checked bool) (*Session, error) {
	session, err := s.load(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if err := session.Form.SetChecked(token, checked); err != nil {
		return nil, err
	}
	session.UpdatedAt = s.now()
	if err := s.store.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// AttachRequirement stores the upload for one requirement. PDF only, size
// capped, and a second upload under the same id replaces the first.
func (s *Service) AttachRequirement(ctx context.Context, userID, sessionID, requirementID string, upload *Upload) (*Session, error) {
	session, err := s.load(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if !hasRequirement(session.Requirements, requirementID) {
		return nil, dErrors.Newf(dErrors.CodeNotFound, "unknown requirement %s", requirementID)
	}
	if err := validateUpload(upload); err != nil {
		s.notifier.Notify(ctx, dErrors.MessageOf(err), notify.KindError)
		return nil, err
	}
	session.Uploads[requirementID] = upload
	session.UpdatedAt = s.now()
	if err := s.store.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// SubmitResult reports a successful forward.
type SubmitResult struct {
	DocumentType string
	StatusCode   int
	Response     []byte
}

// Submit validates everything at once, then assembles and forwards the
// request. Blocking problems come back as a single error naming every
// offender so the requestor fixes the form in one pass.
func (s *Service) Submit(ctx context.Context, userID, sessionID, bearerToken string) (*SubmitResult, error) {
	session, err := s.load(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	var offenders []string
	for _, issue := range session.Form.Validate(now) {
		offenders = append(offenders, issue.Message)
	}
	for _, requirement := range session.Requirements {
		if _, ok := session.Uploads[requirement.ID]; !ok {
			offenders = append(offenders, fmt.Sprintf("%s is required", requirement.Label))
		}
	}
	if len(offenders) > 0 {
		message := "Please complete the following: " + strings.Join(offenders, "; ")
		s.notifier.Notify(ctx, message, notify.KindError)
		return nil, dErrors.New(dErrors.CodeUnprocessable, message)
	}

	fields := session.Form.Finalize(now)
	fields["document_type"] = session.DocumentType

	files := make([]submission.FilePart, 0, len(session.Uploads))
	for _, requirement := range session.Requirements {
		upload := session.Uploads[requirement.ID]
		files = append(files, submission.FilePart{
			Field:       "requirements[" + requirement.ID + "]",
			Filename:    upload.Filename,
			ContentType: upload.ContentType,
			Data:        upload.Data,
		})
	}

	payload, err := submission.Build(fields, files)
	if err != nil {
		return nil, err
	}
	result, err := s.forwarder.Forward(ctx, submitPath, bearerToken, payload)
	if err != nil {
		s.notifier.Notify(ctx, "Submission failed, please try again", notify.KindError)
		return nil, err
	}

	if err := s.store.Delete(ctx, sessionID); err != nil {
		s.logger.WarnContext(ctx, "delete submitted document session",
			slog.String("session_id", sessionID),
			slog.Any("error", err),
		)
	}
	s.metrics.DocumentSubmissions.Inc()
	s.publisher.Emit(ctx, audit.Event{
		UserID:   userID,
		Action:   audit.ActionDocumentSubmitted,
		Resource: session.DocumentType,
	})
	s.notifier.Notify(ctx, "Document request submitted", notify.KindSuccess)
	s.logger.InfoContext(ctx, "document request submitted",
		slog.String("session_id", sessionID),
		slog.String("document_type", session.DocumentType),
	)
	return &SubmitResult{
		DocumentType: session.DocumentType,
		StatusCode:   result.StatusCode,
		Response:     result.Body,
	}, nil
}

func (s *Service) load(ctx context.Context, userID, sessionID string) (*Session, error) {
	session, err := s.store.Find(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.UserID != userID {
		return nil, dErrors.New(dErrors.CodeForbidden, "document request belongs to another user")
	}
	return session, nil
}

func validateUpload(upload *Upload) error {
	if upload == nil || len(upload.Data) == 0 {
		return dErrors.New(dErrors.CodeBadRequest, "upload is empty")
	}
	if upload.ContentType != "application/pdf" || !strings.HasSuffix(strings.ToLower(upload.Filename), ".pdf") {
		return dErrors.New(dErrors.CodeUnprocessable, "Only PDF files are accepted")
	}
	if len(upload.Data) > maxRequirementBytes {
		return dErrors.New(dErrors.CodeUnprocessable, "File exceeds the 5MB limit")
	}
	return nil
}

func hasRequirement(requirements []Requirement, id string) bool {
	for _, requirement := range requirements {
		if requirement.ID == id {
			return true
		}
	}
	return false
}
