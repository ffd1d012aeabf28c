package validate

import (
	"baryo/internal/registration/models"
)

// Result is the outcome of aggregating field validators over a record.
type Result struct {
	IsValid bool
	Errors  map[string]string
}

// Options adjusts aggregation behavior for one call.
type Options struct {
	// SexUnset signals that the sex field has never been touched. The sex
	// validator normally requires a value; tolerating emptiness here keeps
	// the form from flagging the field before first interaction. This is a
	// deliberate deviation for this one field, owned by the aggregator so
	// the validator itself stays strict.
	SexUnset bool
}

// rule validates one field. Most rules ignore the record; confirm-password
// needs it to reach its sibling field.
type rule func(value string, r models.Record) string

func plain(fn func(string) string) rule {
	return func(value string, _ models.Record) string { return fn(value) }
}

// ruleTable binds each record field to its validator. The aggregator is a
// table walker; adding a field means adding one row here.
var ruleTable = map[string]rule{
	models.FieldFirstName:   plain(Name),
	models.FieldMiddleName:  plain(OptionalName),
	models.FieldLastName:    plain(Name),
	models.FieldSuffix:      plain(Suffix),
	models.FieldEmail:       plain(Email),
	models.FieldPassword:    plain(Password),
	models.FieldPasswordConfirm: func(value string, r models.Record) string {
		return ConfirmPassword(value, r[models.FieldPassword])
	},
	models.FieldSex:           plain(Sex),
	models.FieldBirthday:      plain(Birthday),
	models.FieldNationality:   plain(Nationality),
	models.FieldCivilStatus:   plain(CivilStatus),
	models.FieldBirthPlace:    plain(BirthPlace),
	models.FieldContactNumber: plain(Phone),
	models.FieldHouseNumber:   plain(HouseNumber),
	models.FieldStreet:        plain(Street),
	models.FieldBarangay:      plain(Barangay),
	models.FieldMunicipality:  plain(Municipality),
	models.FieldZipCode:       plain(ZipCode),
	models.FieldVotersID:      plain(VotersID),
}

// Aggregate runs the matching validator for every key present in the record.
// Keys without a rule row and keys absent from the record are skipped, which
// is what lets each wizard step reuse this over its own field subset. Pure:
// identical input yields identical output.
func Aggregate(record models.Record, opts Options) Result {
	errors := make(map[string]string)
	for field, fn := range ruleTable {
		if !record.Has(field) {
			continue
		}
		if field == models.FieldSex && opts.SexUnset && record.Get(field) == "" {
			continue
		}
		if msg := fn(record[field], record); msg != "" {
			errors[field] = msg
		}
	}
	return Result{IsValid: len(errors) == 0, Errors: errors}
}

// Fields validates only the listed fields, treating missing keys as empty
// values so required-field rules still fire. Step validators use this to own
// their subset strictly.
func Fields(record models.Record, fields []string, opts Options) Result {
	errors := make(map[string]string)
	for _, field := range fields {
		fn, ok := ruleTable[field]
		if !ok {
			continue
		}
		if field == models.FieldSex && opts.SexUnset && record.Get(field) == "" {
			continue
		}
		if msg := fn(record[field], record); msg != "" {
			errors[field] = msg
		}
	}
	return Result{IsValid: len(errors) == 0, Errors: errors}
}
