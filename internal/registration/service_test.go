package registration

import (
	"bytes"
	"context"
	"log/slog"
	"mime"
	"mime/multipart"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"baryo/internal/audit"
	"baryo/internal/notify"
	"baryo/internal/platform/config"
	"baryo/internal/platform/metrics"
	"baryo/internal/registration/models"
	"baryo/internal/registration/wizard"
	"baryo/internal/submission"
	dErrors "baryo/pkg/domain-errors"
)

type fakeForwarder struct {
	lastBearer  string
	lastPayload *submission.Payload
	calls       int
	err         error
}

func (f *fakeForwarder) Forward(_ context.Context, _, bearer string, payload *submission.Payload) (*submission.Result, error) {
	f.calls++
	f.lastBearer = bearer
	f.lastPayload = payload
	if f.err != nil {
		return nil, f.err
	}
	return &submission.Result{StatusCode: 201, Body: []byte(`{"id":"9"}`)}, nil
}

type recordingNotifier struct {
	messages []string
	kinds    []notify.Kind
}

func (n *recordingNotifier) Notify(_ context.Context, message string, kind notify.Kind) {
	n.messages = append(n.messages, message)
	n.kinds = append(n.kinds, kind)
}

type fixture struct {
	service   *Service
	store     *wizard.InMemoryStore
	forwarder *fakeForwarder
	notifier  *recordingNotifier
	publisher *audit.Publisher
	metrics   *metrics.Metrics
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	m := metrics.NewWith(prometheus.NewRegistry())
	logger := slog.New(slog.DiscardHandler)
	f := &fixture{
		store:     wizard.NewInMemoryStore(),
		forwarder: &fakeForwarder{},
		notifier:  &recordingNotifier{},
		publisher: audit.NewPublisher(16, logger, m),
		metrics:   m,
	}
	f.service = NewService(f.store, f.forwarder, f.notifier, f.publisher, m, logger, config.Locality{
		Barangay:     "San Isidro",
		Municipality: "Rodriguez",
		ZipCode:      "1860",
	})
	return f
}

func jpeg(size int) []byte {
	return bytes.Repeat([]byte("j"), size)
}

func TestStart_SeedsLocality(t *testing.T) {
	f := newFixture(t)
	session, err := f.service.Start(context.Background(), "user-1")
	require.NoError(t, err)

	assert.Equal(t, wizard.FirstStep, session.Step)
	assert.Equal(t, "San Isidro", session.Record[models.FieldBarangay])
	assert.Equal(t, "Rodriguez", session.Record[models.FieldMunicipality])
	assert.Equal(t, "1860", session.Record[models.FieldZipCode])

	event := <-f.publisher.Inbox()
	assert.Equal(t, audit.ActionWizardStarted, event.Action)
	assert.Equal(t, "user-1", event.UserID)
}

func TestGet_OwnershipEnforced(t *testing.T) {
	f := newFixture(t)
	session, err := f.service.Start(context.Background(), "user-1")
	require.NoError(t, err)

	_, err = f.service.Get(context.Background(), "intruder", session.ID)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))
}

func TestUpdateField_RejectsFixedLocality(t *testing.T) {
	f := newFixture(t)
	session, err := f.service.Start(context.Background(), "user-1")
	require.NoError(t, err)

	_, err = f.service.UpdateField(context.Background(), "user-1", session.ID, models.FieldBarangay, "Elsewhere")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
}

func TestNext_BlockedAttemptCountsAndPersists(t *testing.T) {
	f := newFixture(t)
	session, err := f.service.Start(context.Background(), "user-1")
	require.NoError(t, err)

	result, err := f.service.Next(context.Background(), "user-1", session.ID)
	require.NoError(t, err)
	assert.False(t, result.Advanced)
	assert.Equal(t, wizard.FirstStep, result.Session.Step)

	count := promtestutil.ToFloat64(f.metrics.WizardStepRejections.WithLabelValues("account"))
	assert.Equal(t, 1.0, count)

	reloaded, err := f.store.Find(context.Background(), session.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, reloaded.StepErrors)
}

func TestAttach_RejectsBadExtensionBeforeWizard(t *testing.T) {
	f := newFixture(t)
	session, err := f.service.Start(context.Background(), "user-1")
	require.NoError(t, err)

	_, err = f.service.Attach(context.Background(), "user-1", session.ID,
		models.FieldIDFront, "scan.tiff", "image/jpeg", jpeg(64))
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnprocessable))
	require.NotEmpty(t, f.notifier.kinds)
	assert.Equal(t, notify.KindError, f.notifier.kinds[0])
}

func TestAttach_MIMERejectionPersistsClearedField(t *testing.T) {
	f := newFixture(t)
	session, err := f.service.Start(context.Background(), "user-1")
	require.NoError(t, err)

	_, err = f.service.Attach(context.Background(), "user-1", session.ID,
		models.FieldIDFront, "front.jpg", "image/jpeg", jpeg(64))
	require.NoError(t, err)

	// gif passes the extension allowlist but not the preview MIME list.
	_, err = f.service.Attach(context.Background(), "user-1", session.ID,
		models.FieldIDFront, "front.gif", "image/gif", jpeg(64))
	require.Error(t, err)

	reloaded, err := f.store.Find(context.Background(), session.ID)
	require.NoError(t, err)
	assert.Nil(t, reloaded.Attachments[models.FieldIDFront])
}

func TestAttach_StoresPreviewBeforeSave(t *testing.T) {
	f := newFixture(t)
	session, err := f.service.Start(context.Background(), "user-1")
	require.NoError(t, err)

	_, err = f.service.Attach(context.Background(), "user-1", session.ID,
		models.FieldSelfieWithID, "selfie.png", "image/png", jpeg(32))
	require.NoError(t, err)

	reloaded, err := f.store.Find(context.Background(), session.ID)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(reloaded.Previews[models.FieldSelfieWithID], "data:image/png;base64,"))
}

func TestSubmit_OnlyFromReviewStep(t *testing.T) {
	f := newFixture(t)
	session, err := f.service.Start(context.Background(), "user-1")
	require.NoError(t, err)

	_, err = f.service.Submit(context.Background(), "user-1", session.ID, "token")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnprocessable))
	assert.Zero(t, f.forwarder.calls)
}

func reviewReadySession(t *testing.T, f *fixture) *wizard.Session {
	t.Helper()
	session, err := f.service.Start(context.Background(), "user-1")
	require.NoError(t, err)

	session.Step = wizard.LastStep
	session.Record[models.FieldFirstName] = "Juan"
	session.Record[models.FieldLastName] = "Dela Cruz"
	session.Record[models.FieldEmail] = "juan@example.com"
	session.Record[models.FieldPassword] = "Abc123!x"
	session.Record[models.FieldPasswordConfirm] = "Abc123!x"
	for _, field := range []string{models.FieldIDFront, models.FieldIDBack, models.FieldSelfieWithID} {
		session.Attachments[field] = &models.Attachment{
			Filename:    field + ".jpg",
			ContentType: "image/jpeg",
			Data:        jpeg(16),
		}
	}
	require.NoError(t, f.store.Save(context.Background(), session))
	return session
}

func TestSubmit_AssemblesAndForwards(t *testing.T) {
	f := newFixture(t)
	session := reviewReadySession(t, f)

	result, err := f.service.Submit(context.Background(), "user-1", session.ID, "token-abc")
	require.NoError(t, err)
	assert.Equal(t, 201, result.StatusCode)
	assert.Equal(t, "token-abc", f.forwarder.lastBearer)

	fields, files := parseMultipart(t, f.forwarder.lastPayload)
	assert.Equal(t, "Juan", fields[models.FieldFirstName])
	assert.Equal(t, "San Isidro", fields[models.FieldBarangay])
	_, hasConfirm := fields[models.FieldPasswordConfirm]
	assert.False(t, hasConfirm)

	// Required identity photos present, optional profile picture omitted.
	assert.Contains(t, files, models.FieldIDFront)
	assert.Contains(t, files, models.FieldIDBack)
	assert.Contains(t, files, models.FieldSelfieWithID)
	assert.NotContains(t, files, models.FieldProfilePicture)

	_, err = f.store.Find(context.Background(), session.ID)
	assert.ErrorIs(t, err, wizard.ErrNotFound)
	assert.Contains(t, f.notifier.messages, "Registration submitted")
}

func TestSubmit_ForwardFailureKeepsSession(t *testing.T) {
	f := newFixture(t)
	session := reviewReadySession(t, f)

	f.forwarder.err = dErrors.New(dErrors.CodeUnavailable, "upstream API unreachable")
	_, err := f.service.Submit(context.Background(), "user-1", session.ID, "token")
	require.Error(t, err)

	_, err = f.store.Find(context.Background(), session.ID)
	assert.NoError(t, err)
}

func parseMultipart(t *testing.T, payload *submission.Payload) (map[string]string, map[string]*multipart.FileHeader) {
	t.Helper()
	require.NotNil(t, payload)
	_, params, err := mime.ParseMediaType(payload.ContentType)
	require.NoError(t, err)
	reader := multipart.NewReader(bytes.NewReader(payload.Body), params["boundary"])
	form, err := reader.ReadForm(10 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })

	fields := map[string]string{}
	for key, values := range form.Value {
		fields[key] = values[0]
	}
	files := map[string]*multipart.FileHeader{}
	for key, headers := range form.File {
		files[key] = headers[0]
	}
	return fields, files
}
