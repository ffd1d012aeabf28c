package placeholder

import "time"

// Checked is the marker stored for a selected checkbox member; cleared
// members hold the empty string.
const Checked = "✓"

// CheckboxPrefix is the reserved token prefix for checkbox members.
const CheckboxPrefix = "CHECK_"

// AgePrefix marks tokens derived from a paired birthdate token.
const AgePrefix = "AGE"

// systemKeywords maps read-only tokens to their value functions. Values are
// recomputed at submit time so a form left open overnight still carries the
// issuing date, not the rendering date.
var systemKeywords = map[string]func(now time.Time) string{
	"CURRENT_DATE": func(now time.Time) string { return now.Format("January 2, 2006") },
	"CURRENT_YEAR": func(now time.Time) string { return now.Format("2006") },
}

// checkboxGroups assigns each known checkbox token to its exclusive group.
// Tokens outside this table form their own singleton group and behave as
// independent toggles.
var checkboxGroups = map[string]string{
	"CHECK_SINGLE":        "civil_status",
	"CHECK_MARRIED":       "civil_status",
	"CHECK_WIDOWED":       "civil_status",
	"CHECK_SEPARATED":     "civil_status",
	"CHECK_MALE":          "sex",
	"CHECK_FEMALE":        "sex",
	"CHECK_EMPLOYED":      "employment",
	"CHECK_UNEMPLOYED":    "employment",
	"CHECK_SELF_EMPLOYED": "employment",
}

// titleTokens are closed-option dropdown selectors.
var titleTokens = map[string][]string{
	"TITLE": {"Mr.", "Mrs.", "Ms.", "Dr."},
}

// SystemValue computes a system keyword's value, reporting whether the token
// is one.
func SystemValue(token string, now time.Time) (string, bool) {
	fn, ok := systemKeywords[token]
	if !ok {
		return "", false
	}
	return fn(now), true
}
