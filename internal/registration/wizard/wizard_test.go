package wizard

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"baryo/internal/notify"
	"baryo/internal/registration/models"
	dErrors "baryo/pkg/domain-errors"
)

type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
	kinds    []notify.Kind
}

func (n *recordingNotifier) Notify(_ context.Context, message string, kind notify.Kind) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, message)
	n.kinds = append(n.kinds, kind)
}

func newTestWizard(t *testing.T) (*Wizard, *recordingNotifier) {
	t.Helper()
	session := NewSession("user-1", "San Isidro", "Rodriguez", "1860")
	notifier := &recordingNotifier{}
	return New(session, notifier), notifier
}

func fillAccount(t *testing.T, w *Wizard) {
	t.Helper()
	require.NoError(t, w.UpdateField(models.FieldEmail, "juan@example.com"))
	require.NoError(t, w.UpdateField(models.FieldPassword, "Abc123!x"))
	require.NoError(t, w.UpdateField(models.FieldPasswordConfirm, "Abc123!x"))
}

func fillPersonal(t *testing.T, w *Wizard) {
	t.Helper()
	birthday := time.Now().UTC().AddDate(-30, 0, 0).Format("2006-01-02")
	for field, value := range map[string]string{
		models.FieldFirstName:     "Juan",
		models.FieldLastName:      "Dela Cruz",
		models.FieldSex:           "male",
		models.FieldBirthday:      birthday,
		models.FieldNationality:   "Filipino",
		models.FieldCivilStatus:   "single",
		models.FieldBirthPlace:    "Quezon City",
		models.FieldContactNumber: "09171234567",
	} {
		require.NoError(t, w.UpdateField(field, value))
	}
}

func TestNext_BlockedOnInvalidStep(t *testing.T) {
	w, notifier := newTestWizard(t)

	advanced, errs := w.Next(context.Background())
	assert.False(t, advanced)
	assert.Equal(t, FirstStep, w.Session().Step)
	assert.Contains(t, errs, models.FieldEmail)

	// First owned field's message is surfaced, exactly once.
	require.Len(t, notifier.messages, 1)
	assert.Equal(t, errs[models.FieldEmail], notifier.messages[0])
	assert.Equal(t, notify.KindError, notifier.kinds[0])
}

func TestNext_AdvancesThroughValidSteps(t *testing.T) {
	w, _ := newTestWizard(t)
	ctx := context.Background()

	fillAccount(t, w)
	advanced, _ := w.Next(ctx)
	require.True(t, advanced)
	assert.Equal(t, StepPersonal, w.Session().Step)

	fillPersonal(t, w)
	advanced, _ = w.Next(ctx)
	require.True(t, advanced)
	assert.Equal(t, StepAddress, w.Session().Step)

	// Address step: locality fields are prefilled, only house/street needed.
	require.NoError(t, w.UpdateField(models.FieldHouseNumber, "123"))
	require.NoError(t, w.UpdateField(models.FieldStreet, "Mabini St."))
	advanced, _ = w.Next(ctx)
	require.True(t, advanced)
	assert.Equal(t, StepAdditional, w.Session().Step)
}

func TestNext_ErrorMapReplacedWholesale(t *testing.T) {
	w, _ := newTestWizard(t)
	ctx := context.Background()

	w.Next(ctx)
	require.Contains(t, w.Session().StepErrors, models.FieldPassword)

	fillAccount(t, w)
	require.NoError(t, w.UpdateField(models.FieldEmail, "broken"))
	_, errs := w.Next(ctx)
	assert.Contains(t, errs, models.FieldEmail)
	assert.NotContains(t, errs, models.FieldPassword, "stale errors must not accumulate")
	assert.Equal(t, errs, w.Session().StepErrors)
}

func TestConditionalRequiredness_PWDNumber(t *testing.T) {
	w, _ := newTestWizard(t)
	w.Session().Step = StepAdditional
	require.NoError(t, w.UpdateField(models.FieldIsPWD, models.FlagTrue))

	advanced, errs := w.Next(context.Background())
	assert.False(t, advanced)
	assert.Equal(t, StepAdditional, w.Session().Step)
	assert.Contains(t, errs, models.FieldPWDNumber)

	require.NoError(t, w.UpdateField(models.FieldPWDNumber, "PWD-1234"))
	advanced, _ = w.Next(context.Background())
	assert.True(t, advanced)
}

func TestConditionalRequiredness_SingleParent(t *testing.T) {
	w, _ := newTestWizard(t)
	w.Session().Step = StepAdditional
	require.NoError(t, w.UpdateField(models.FieldIsSingleParent, models.FlagTrue))

	_, errs := w.Next(context.Background())
	assert.Contains(t, errs, models.FieldSingleParentNum)
}

func TestPrev_UnconditionalAndBounded(t *testing.T) {
	w, _ := newTestWizard(t)
	w.Session().Step = StepAddress
	w.Session().StepErrors = map[string]string{models.FieldStreet: "bad"}

	w.Prev()
	assert.Equal(t, StepPersonal, w.Session().Step)
	// Prev neither re-validates nor clears errors.
	assert.Equal(t, map[string]string{models.FieldStreet: "bad"}, w.Session().StepErrors)

	w.Prev()
	w.Prev()
	assert.Equal(t, FirstStep, w.Session().Step)
}

func TestProofOfIdentity_RequiresAllThree(t *testing.T) {
	w, _ := newTestWizard(t)
	w.Session().Step = StepProofOfID
	ctx := context.Background()

	_, errs := w.Next(ctx)
	assert.Len(t, errs, 3)

	png := []byte{0x89, 'P', 'N', 'G'}
	require.NoError(t, w.Attach(ctx, models.FieldIDFront, "front.png", "image/png", png))
	require.NoError(t, w.Attach(ctx, models.FieldIDBack, "back.png", "image/png", png))
	require.NoError(t, w.Attach(ctx, models.FieldSelfieWithID, "selfie.jpg", "image/jpeg", png))

	advanced, _ := w.Next(ctx)
	assert.True(t, advanced)
	assert.Equal(t, StepReview, w.Session().Step)
}

func TestAttach_RejectedMIMEClearsField(t *testing.T) {
	w, notifier := newTestWizard(t)
	ctx := context.Background()

	png := []byte{0x89, 'P', 'N', 'G'}
	require.NoError(t, w.Attach(ctx, models.FieldIDFront, "front.png", "image/png", png))
	w.FlushPreviews()
	require.NotNil(t, w.Session().Attachments[models.FieldIDFront])

	err := w.Attach(ctx, models.FieldIDFront, "malware.gif", "image/gif", []byte("GIF89a"))
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnprocessable))
	assert.Nil(t, w.Session().Attachments[models.FieldIDFront], "rejected upload must clear the field")
	require.NotEmpty(t, notifier.messages)
	assert.Contains(t, notifier.messages[len(notifier.messages)-1], "JPG")
}

func TestAttach_PreviewDataURL(t *testing.T) {
	w, _ := newTestWizard(t)
	data := []byte("fake image bytes")

	require.NoError(t, w.Attach(context.Background(), models.FieldProfilePicture, "me.jpg", "image/jpeg", data))
	w.FlushPreviews()

	url := w.Session().Previews[models.FieldProfilePicture]
	require.NotEmpty(t, url)
	assert.True(t, strings.HasPrefix(url, "data:image/jpeg;base64,"))
}

func TestReset_BackToStartPreviewsCleared(t *testing.T) {
	w, _ := newTestWizard(t)
	ctx := context.Background()
	w.Session().Step = StepReview
	require.NoError(t, w.Attach(ctx, models.FieldProfilePicture, "me.png", "image/png", []byte("img")))
	w.FlushPreviews()
	require.NotEmpty(t, w.Session().Previews)

	w.Reset()
	assert.Equal(t, 1, w.Session().ResetCount)
	assert.Equal(t, FirstStep, w.Session().Step)
	assert.Empty(t, w.Session().Previews)
	// The record survives; clearing it is the caller's call.
	assert.Equal(t, "San Isidro", w.Session().Record[models.FieldBarangay])
}

func TestUpdateField_Rejections(t *testing.T) {
	w, _ := newTestWizard(t)

	err := w.UpdateField(models.FieldBarangay, "Somewhere Else")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))

	err = w.UpdateField(models.FieldIDFront, "value")
	require.Error(t, err)

	err = w.UpdateField("favorite_color", "blue")
	require.Error(t, err)
}

func TestFinalize_OnlyFromReview(t *testing.T) {
	w, _ := newTestWizard(t)

	_, _, err := w.Finalize()
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnprocessable))

	w.Session().Step = StepReview
	record, attachments, err := w.Finalize()
	require.NoError(t, err)
	assert.NotNil(t, attachments)

	// Finalize snapshots; later edits must not leak into the frozen record.
	require.NoError(t, w.UpdateField(models.FieldFirstName, "Changed"))
	assert.NotEqual(t, "Changed", record[models.FieldFirstName])
}
