package validate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"baryo/internal/registration/models"
)

func validPersonal() models.Record {
	return models.Record{
		models.FieldFirstName:     "Juan",
		models.FieldLastName:      "Dela Cruz",
		models.FieldSex:           "male",
		models.FieldBirthday:      time.Now().UTC().AddDate(-30, 0, 0).Format("2006-01-02"),
		models.FieldNationality:   "Filipino",
		models.FieldCivilStatus:   "single",
		models.FieldBirthPlace:    "Quezon City",
		models.FieldContactNumber: "09171234567",
	}
}

func TestAggregate_ValidRecord(t *testing.T) {
	res := Aggregate(validPersonal(), Options{})
	assert.True(t, res.IsValid)
	assert.Empty(t, res.Errors)
}

func TestAggregate_OnlyPresentKeysValidated(t *testing.T) {
	// A record carrying just an email must not be penalized for every other
	// required field; steps rely on this for scoped validation.
	res := Aggregate(models.Record{models.FieldEmail: "juan@example.com"}, Options{})
	assert.True(t, res.IsValid)

	res = Aggregate(models.Record{models.FieldEmail: "nope"}, Options{})
	assert.False(t, res.IsValid)
	assert.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors, models.FieldEmail)
}

func TestAggregate_Idempotent(t *testing.T) {
	record := validPersonal()
	record[models.FieldContactNumber] = "not-a-phone"

	first := Aggregate(record, Options{})
	second := Aggregate(record, Options{})
	assert.Equal(t, first.IsValid, second.IsValid)
	assert.Equal(t, first.Errors, second.Errors)
}

func TestAggregate_SexLeniency(t *testing.T) {
	record := models.Record{models.FieldSex: ""}

	strict := Aggregate(record, Options{})
	require.False(t, strict.IsValid)
	assert.Contains(t, strict.Errors, models.FieldSex)

	lenient := Aggregate(record, Options{SexUnset: true})
	assert.True(t, lenient.IsValid)

	// Leniency only tolerates emptiness; a bad value still fails.
	record[models.FieldSex] = "other-value"
	res := Aggregate(record, Options{SexUnset: true})
	assert.False(t, res.IsValid)
}

func TestAggregate_ConfirmPasswordReachesSibling(t *testing.T) {
	record := models.Record{
		models.FieldPassword:        "Abc123!x",
		models.FieldPasswordConfirm: "Abc123!y",
	}
	res := Aggregate(record, Options{})
	assert.False(t, res.IsValid)
	assert.Equal(t, "Passwords do not match", res.Errors[models.FieldPasswordConfirm])

	record[models.FieldPasswordConfirm] = "Abc123!x"
	assert.True(t, Aggregate(record, Options{}).IsValid)
}

func TestFields_MissingKeysTreatedAsEmpty(t *testing.T) {
	// Step-owned validation: a field the step owns but the record lacks must
	// fail its required rule.
	res := Fields(models.Record{}, []string{models.FieldEmail, models.FieldPassword}, Options{})
	assert.False(t, res.IsValid)
	assert.Contains(t, res.Errors, models.FieldEmail)
	assert.Contains(t, res.Errors, models.FieldPassword)
}

func TestFields_UnknownFieldSkipped(t *testing.T) {
	res := Fields(models.Record{}, []string{"no_such_field"}, Options{})
	assert.True(t, res.IsValid)
}
