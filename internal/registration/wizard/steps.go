package wizard

import (
	"strings"

	"baryo/internal/registration/models"
	"baryo/internal/registration/validate"
)

// Step count and bounds. The wizard is a fixed linear sequence.
const (
	StepAccount = iota + 1
	StepPersonal
	StepAddress
	StepAdditional
	StepProofOfID
	StepReview

	FirstStep = StepAccount
	LastStep  = StepReview
)

// Step declares one wizard page: the record fields it owns and the
// validation that gates advancing past it.
type Step struct {
	Name   string
	Fields []string
	// Validate returns a field→message map for this step's fields only.
	Validate func(s *Session) map[string]string
}

// Steps is the ordered step table, indexed by step number minus one.
var Steps = []Step{
	{
		Name:     "account",
		Fields:   []string{models.FieldEmail, models.FieldPassword, models.FieldPasswordConfirm},
		Validate: fieldsStep([]string{models.FieldEmail, models.FieldPassword, models.FieldPasswordConfirm}),
	},
	{
		Name: "personal",
		Fields: []string{
			models.FieldFirstName, models.FieldMiddleName, models.FieldLastName,
			models.FieldSuffix, models.FieldSex, models.FieldBirthday,
			models.FieldNationality, models.FieldCivilStatus, models.FieldBirthPlace,
			models.FieldContactNumber,
		},
		Validate: fieldsStep([]string{
			models.FieldFirstName, models.FieldMiddleName, models.FieldLastName,
			models.FieldSuffix, models.FieldSex, models.FieldBirthday,
			models.FieldNationality, models.FieldCivilStatus, models.FieldBirthPlace,
			models.FieldContactNumber,
		}),
	},
	{
		Name: "address",
		Fields: []string{
			models.FieldHouseNumber, models.FieldStreet, models.FieldBarangay,
			models.FieldMunicipality, models.FieldZipCode,
		},
		Validate: fieldsStep([]string{
			models.FieldHouseNumber, models.FieldStreet, models.FieldBarangay,
			models.FieldMunicipality, models.FieldZipCode,
		}),
	},
	{
		Name: "additional",
		Fields: []string{
			models.FieldIsPWD, models.FieldPWDNumber,
			models.FieldIsSingleParent, models.FieldSingleParentNum,
			models.FieldVotersID,
		},
		Validate: validateAdditional,
	},
	{
		Name:     "proof_of_identity",
		Fields:   []string{models.FieldIDFront, models.FieldIDBack, models.FieldSelfieWithID},
		Validate: validateProofOfIdentity,
	},
	{
		// Review aggregates the optional profile picture; nothing to gate.
		Name:     "review",
		Fields:   []string{models.FieldProfilePicture},
		Validate: func(*Session) map[string]string { return map[string]string{} },
	},
}

func fieldsStep(fields []string) func(*Session) map[string]string {
	return func(s *Session) map[string]string {
		return validate.Fields(s.Record, fields, validate.Options{}).Errors
	}
}

// validateAdditional enforces the conditional-requiredness invariants that
// only this step owns: a set flag requires its paired number.
func validateAdditional(s *Session) map[string]string {
	errors := validate.Fields(s.Record, []string{models.FieldVotersID}, validate.Options{}).Errors

	if s.Record.Flag(models.FieldIsPWD) && strings.TrimSpace(s.Record[models.FieldPWDNumber]) == "" {
		errors[models.FieldPWDNumber] = "PWD ID number is required"
	}
	if s.Record.Flag(models.FieldIsSingleParent) && strings.TrimSpace(s.Record[models.FieldSingleParentNum]) == "" {
		errors[models.FieldSingleParentNum] = "Solo parent ID number is required"
	}
	return errors
}

// validateProofOfIdentity requires all three identity attachments.
func validateProofOfIdentity(s *Session) map[string]string {
	errors := map[string]string{}
	required := map[string]string{
		models.FieldIDFront:      "Front photo of your ID is required",
		models.FieldIDBack:       "Back photo of your ID is required",
		models.FieldSelfieWithID: "A selfie holding your ID is required",
	}
	for field, msg := range required {
		if s.Attachments[field] == nil {
			errors[field] = msg
		}
	}
	return errors
}

// StepAt returns the step definition for a 1-based step number.
func StepAt(n int) Step {
	return Steps[n-1]
}
