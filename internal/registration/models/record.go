// Package models defines the registration record and its field vocabulary.
// The record stays a flat field→value map because that is the wire shape the
// SPA and the upstream API both speak; typing lives in the validation rule
// table instead.
package models

import "strings"

// Field names of the registration record. Handlers, validators, steps and
// the assembler all key off these.
const (
	FieldFirstName        = "first_name"
	FieldMiddleName       = "middle_name"
	FieldLastName         = "last_name"
	FieldSuffix           = "suffix"
	FieldEmail            = "email"
	FieldPassword         = "password"
	FieldPasswordConfirm  = "password_confirmation"
	FieldSex              = "sex"
	FieldBirthday         = "birthday"
	FieldNationality      = "nationality"
	FieldCivilStatus      = "civil_status"
	FieldBirthPlace       = "birth_place"
	FieldContactNumber    = "contact_number"
	FieldHouseNumber      = "house_number"
	FieldStreet           = "street"
	FieldBarangay         = "barangay"
	FieldMunicipality     = "municipality"
	FieldZipCode          = "zip_code"
	FieldIsPWD            = "is_pwd"
	FieldPWDNumber        = "pwd_number"
	FieldIsSingleParent   = "is_single_parent"
	FieldSingleParentNum  = "single_parent_number"
	FieldVotersID         = "voters_id"
	FieldProfilePicture   = "profile_picture"
	FieldIDFront          = "id_front"
	FieldIDBack           = "id_back"
	FieldSelfieWithID     = "selfie_with_id"
)

// FileFields are the attachment-bearing fields, in submission order.
var FileFields = []string{FieldProfilePicture, FieldIDFront, FieldIDBack, FieldSelfieWithID}

// FlagTrue marks a boolean flag field as set. Flags travel as strings like
// every other record value.
const FlagTrue = "true"

// Record is one prospective resident's registration, field by field.
type Record map[string]string

// Get returns the trimmed value of a field.
func (r Record) Get(field string) string {
	return strings.TrimSpace(r[field])
}

// Has reports whether the field key is present at all, set or not. The
// aggregator validates only present keys.
func (r Record) Has(field string) bool {
	_, ok := r[field]
	return ok
}

// Flag reports whether a boolean flag field is set.
func (r Record) Flag(field string) bool {
	return r.Get(field) == FlagTrue
}

// Clone copies the record so wizard snapshots never alias live state.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Attachment is an uploaded file held in memory until submission.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Size returns the attachment size in bytes.
func (a *Attachment) Size() int64 {
	if a == nil {
		return 0
	}
	return int64(len(a.Data))
}
