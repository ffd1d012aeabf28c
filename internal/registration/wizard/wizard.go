// Package wizard implements the six-step registration state machine:
// Account → Personal → Address → Additional → Proof-of-Identity → Review.
// Advancing is gated by the current step's validation; moving back never is.
package wizard

import (
	"context"
	"strings"
	"time"

	"baryo/internal/notify"
	"baryo/internal/registration/models"
	dErrors "baryo/pkg/domain-errors"
)

// previewMIMETypes is the allowlist for identity photo uploads.
var previewMIMETypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
}

// fixedFields are injected from deployment config and never user-editable.
var fixedFields = map[string]bool{
	models.FieldBarangay:     true,
	models.FieldMunicipality: true,
	models.FieldZipCode:      true,
}

var fileFields = map[string]bool{
	models.FieldProfilePicture: true,
	models.FieldIDFront:        true,
	models.FieldIDBack:         true,
	models.FieldSelfieWithID:   true,
}

// Wizard is the step controller for one session. Construct one per request
// around the loaded session; all mutations land on the session in place.
type Wizard struct {
	session  *Session
	notifier notify.Notifier
	previews *previewEncoder
}

func New(session *Session, notifier notify.Notifier) *Wizard {
	if notifier == nil {
		notifier = notify.Discard{}
	}
	return &Wizard{
		session:  session,
		notifier: notifier,
		previews: newPreviewEncoder(),
	}
}

// Session returns the underlying session.
func (w *Wizard) Session() *Session { return w.session }

// UpdateField applies one field edit to the live record.
func (w *Wizard) UpdateField(field, value string) error {
	if fileFields[field] {
		return dErrors.Newf(dErrors.CodeBadRequest, "%s is a file field", field)
	}
	if fixedFields[field] {
		return dErrors.Newf(dErrors.CodeBadRequest, "%s is fixed for this barangay", field)
	}
	known := false
	for _, step := range Steps {
		for _, f := range step.Fields {
			if f == field {
				known = true
			}
		}
	}
	if !known {
		return dErrors.Newf(dErrors.CodeBadRequest, "unknown field %s", field)
	}
	w.session.Record[field] = value
	w.touch()
	return nil
}

// Next validates the current step and advances on success. On failure the
// step error map is replaced with this attempt's errors, the first owned
// field's message is surfaced through the notifier, and the step does not
// change.
func (w *Wizard) Next(ctx context.Context) (bool, map[string]string) {
	step := StepAt(w.session.Step)
	errors := step.Validate(w.session)
	w.session.StepErrors = errors
	w.touch()

	if len(errors) > 0 {
		if first := firstError(step, errors); first != "" {
			w.notifier.Notify(ctx, first, notify.KindError)
		}
		return false, errors
	}

	if w.session.Step < LastStep {
		w.session.Step++
	}
	return true, errors
}

// Prev moves back one step unconditionally. Errors from the abandoned
// attempt are left in place; re-entering the step re-validates anyway.
func (w *Wizard) Prev() {
	if w.session.Step > FirstStep {
		w.session.Step--
		w.touch()
	}
}

// Reset handles the external reset signal: back to step one, previews gone.
// The record itself is the caller's to clear or keep.
func (w *Wizard) Reset() {
	w.session.ResetCount++
	w.session.Step = FirstStep
	w.session.Previews = map[string]string{}
	w.session.StepErrors = map[string]string{}
	w.touch()
}

// Attach validates and stores an uploaded file and kicks off its preview
// encode. Rejected files clear the field so an invalid attachment can never
// ride along silently.
func (w *Wizard) Attach(ctx context.Context, field, filename, contentType string, data []byte) error {
	if !fileFields[field] {
		return dErrors.Newf(dErrors.CodeBadRequest, "%s is not a file field", field)
	}
	if !previewMIMETypes[strings.ToLower(contentType)] {
		delete(w.session.Attachments, field)
		w.previews.Drop(field)
		delete(w.session.Previews, field)
		w.touch()
		msg := "Only JPG and PNG images are allowed"
		w.notifier.Notify(ctx, msg, notify.KindError)
		return dErrors.New(dErrors.CodeUnprocessable, msg)
	}

	w.session.Attachments[field] = &models.Attachment{
		Filename:    filename,
		ContentType: contentType,
		Data:        data,
	}
	w.previews.Encode(field, contentType, data)
	w.touch()
	return nil
}

// FlushPreviews waits for in-flight preview encodes and folds the results
// into the session. Call before persisting the session.
func (w *Wizard) FlushPreviews() {
	w.previews.Wait()
	for field, url := range w.previews.Snapshot() {
		w.session.Previews[field] = url
	}
}

// Finalize freezes the record for submission. Only reachable from the review
// step; callers invoke it explicitly, never via Next.
func (w *Wizard) Finalize() (models.Record, map[string]*models.Attachment, error) {
	if w.session.Step != LastStep {
		return nil, nil, dErrors.New(dErrors.CodeUnprocessable, "complete all steps before submitting")
	}
	attachments := make(map[string]*models.Attachment, len(w.session.Attachments))
	for k, v := range w.session.Attachments {
		attachments[k] = v
	}
	return w.session.Record.Clone(), attachments, nil
}

func (w *Wizard) touch() {
	w.session.UpdatedAt = time.Now().UTC()
}

// firstError picks the message to surface: the first owned field, in step
// order, that failed. Map iteration order would make toasts flicker between
// attempts.
func firstError(step Step, errors map[string]string) string {
	for _, field := range step.Fields {
		if msg, ok := errors[field]; ok {
			return msg
		}
	}
	for _, msg := range errors {
		return msg
	}
	return ""
}
