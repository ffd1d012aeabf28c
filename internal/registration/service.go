// Package registration wires the wizard state machine to storage, auditing
// and the upstream submission path.
package registration

import (
	"context"
	"log/slog"

	"baryo/internal/audit"
	"baryo/internal/notify"
	"baryo/internal/platform/config"
	"baryo/internal/platform/metrics"
	"baryo/internal/registration/models"
	"baryo/internal/registration/validate"
	"baryo/internal/registration/wizard"
	"baryo/internal/submission"
	dErrors "baryo/pkg/domain-errors"
)

const submitPath = "/api/residents"

// Forwarder sends the assembled registration upstream.
type Forwarder interface {
	Forward(ctx context.Context, path, bearerToken string, payload *submission.Payload) (*submission.Result, error)
}

// Service owns registration wizard sessions end to end.
type Service struct {
	store     wizard.Store
	forwarder Forwarder
	notifier  notify.Notifier
	publisher *audit.Publisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
	locality  config.Locality
}

func NewService(
	store wizard.Store,
	forwarder Forwarder,
	notifier notify.Notifier,
	publisher *audit.Publisher,
	m *metrics.Metrics,
	logger *slog.Logger,
	locality config.Locality,
) *Service {
	return &Service{
		store:     store,
		forwarder: forwarder,
		notifier:  notifier,
		publisher: publisher,
		metrics:   m,
		logger:    logger,
		locality:  locality,
	}
}

// Start creates a fresh wizard session at step one.
func (s *Service) Start(ctx context.Context, userID string) (*wizard.Session, error) {
	session := wizard.NewSession(userID, s.locality.Barangay, s.locality.Municipality, s.locality.ZipCode)
	if err := s.store.Save(ctx, session); err != nil {
		return nil, err
	}
	s.metrics.WizardSessionsStarted.Inc()
	s.publisher.Emit(ctx, audit.Event{
		UserID:   userID,
		Action:   audit.ActionWizardStarted,
		Resource: session.ID,
	})
	s.logger.InfoContext(ctx, "wizard session started", slog.String("session_id", session.ID))
	return session, nil
}

// Get loads a session the caller owns.
func (s *Service) Get(ctx context.Context, userID, sessionID string) (*wizard.Session, error) {
	return s.load(ctx, userID, sessionID)
}

// UpdateField applies one field edit and persists the session.
func (s *Service) UpdateField(ctx context.Context, userID, sessionID, field, value string) (*wizard.Session, error) {
	session, err := s.load(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	w := wizard.New(session, s.notifier)
	if err := w.UpdateField(field, value); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// NextResult reports one advance attempt.
type NextResult struct {
	Advanced bool
	Session  *wizard.Session
}

// Next validates the current step and advances on success.
func (s *Service) Next(ctx context.Context, userID, sessionID string) (*NextResult, error) {
	session, err := s.load(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	w := wizard.New(session, s.notifier)
	step := wizard.StepAt(session.Step)

	advanced, _ := w.Next(ctx)
	if !advanced {
		s.metrics.WizardStepRejections.WithLabelValues(step.Name).Inc()
	}
	if err := s.store.Save(ctx, session); err != nil {
		return nil, err
	}
	return &NextResult{Advanced: advanced, Session: session}, nil
}

// Prev moves back one step unconditionally.
func (s *Service) Prev(ctx context.Context, userID, sessionID string) (*wizard.Session, error) {
	session, err := s.load(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	wizard.New(session, s.notifier).Prev()
	if err := s.store.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Reset returns the session to step one and clears previews and errors.
func (s *Service) Reset(ctx context.Context, userID, sessionID string) (*wizard.Session, error) {
	session, err := s.load(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	wizard.New(session, s.notifier).Reset()
	if err := s.store.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Attach stores one identity photo and waits for its preview before the
// session is persisted.
func (s *Service) Attach(ctx context.Context, userID, sessionID, field, filename, contentType string, data []byte) (*wizard.Session, error) {
	session, err := s.load(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if msg := validate.ImageFile(filename, int64(len(data))); msg != "" {
		s.notifier.Notify(ctx, msg, notify.KindError)
		return nil, dErrors.New(dErrors.CodeUnprocessable, msg)
	}

	w := wizard.New(session, s.notifier)
	if err := w.Attach(ctx, field, filename, contentType, data); err != nil {
		// The wizard already cleared the field; persist that outcome.
		if saveErr := s.store.Save(ctx, session); saveErr != nil {
			s.logger.WarnContext(ctx, "persist rejected attachment state",
				slog.String("session_id", sessionID),
				slog.Any("error", saveErr),
			)
		}
		return nil, err
	}
	w.FlushPreviews()
	if err := s.store.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// SubmitResult reports a successful registration forward.
type SubmitResult struct {
	StatusCode int
	Response   []byte
}

// Submit finalizes the record from the review step and forwards it as one
// multipart request. The optional profile picture is omitted entirely when
// absent.
func (s *Service) Submit(ctx context.Context, userID, sessionID, bearerToken string) (*SubmitResult, error) {
	session, err := s.load(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	w := wizard.New(session, s.notifier)
	record, attachments, err := w.Finalize()
	if err != nil {
		s.notifier.Notify(ctx, dErrors.MessageOf(err), notify.KindError)
		return nil, err
	}

	fields := make(map[string]string, len(record))
	for key, value := range record {
		fields[key] = value
	}
	delete(fields, models.FieldPasswordConfirm)

	files := make([]submission.FilePart, 0, len(attachments))
	for _, field := range models.FileFields {
		attachment := attachments[field]
		if attachment == nil {
			continue
		}
		files = append(files, submission.FilePart{
			Field:       field,
			Filename:    attachment.Filename,
			ContentType: attachment.ContentType,
			Data:        attachment.Data,
		})
	}

	payload, err := submission.Build(fields, files)
	if err != nil {
		return nil, err
	}
	result, err := s.forwarder.Forward(ctx, submitPath, bearerToken, payload)
	if err != nil {
		s.notifier.Notify(ctx, "Registration failed, please try again", notify.KindError)
		return nil, err
	}

	if err := s.store.Delete(ctx, sessionID); err != nil {
		s.logger.WarnContext(ctx, "delete submitted wizard session",
			slog.String("session_id", sessionID),
			slog.Any("error", err),
		)
	}
	s.metrics.WizardSubmissions.Inc()
	s.publisher.Emit(ctx, audit.Event{
		UserID:   userID,
		Action:   audit.ActionWizardSubmitted,
		Resource: sessionID,
	})
	s.notifier.Notify(ctx, "Registration submitted", notify.KindSuccess)
	s.logger.InfoContext(ctx, "registration submitted", slog.String("session_id", sessionID))
	return &SubmitResult{StatusCode: result.StatusCode, Response: result.Body}, nil
}

func (s *Service) load(ctx context.Context, userID, sessionID string) (*wizard.Session, error) {
	session, err := s.store.Find(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.UserID != userID {
		return nil, dErrors.New(dErrors.CodeForbidden, "wizard session belongs to another user")
	}
	return session, nil
}
