package placeholder

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	dErrors "baryo/pkg/domain-errors"
	"baryo/pkg/platform/dates"
)

const (
	minSubjectMonths = 1
	maxSubjectYears  = 75
	maxDerivedAge    = 120
)

// Form is a resolved template in progress: the ordered placeholders plus the
// current value of each token. One owner per form; no concurrent writers.
type Form struct {
	Placeholders []Placeholder     `json:"placeholders"`
	Values       map[string]string `json:"values"`
}

// NewForm resolves tokens and seeds initial values: system keywords are
// computed for display, everything else starts empty.
func NewForm(tokens []string, now time.Time) *Form {
	resolved := Resolve(tokens)
	values := make(map[string]string, len(resolved))
	for _, p := range resolved {
		if p.Kind == KindSystem {
			value, _ := SystemValue(p.Token, now)
			values[p.Token] = value
		} else {
			values[p.Token] = ""
		}
	}
	return &Form{Placeholders: resolved, Values: values}
}

func (f *Form) find(token string) (Placeholder, bool) {
	for _, p := range f.Placeholders {
		if p.Token == token {
			return p, true
		}
	}
	return Placeholder{}, false
}

// SetValue assigns a user-supplied value to a token. System keywords, age
// derivations and checkbox members are not settable this way. Setting a
// birthdate recomputes every age token derived from it in the same update,
// rendered or not.
func (f *Form) SetValue(token, value string, now time.Time) error {
	p, ok := f.find(token)
	if !ok {
		return dErrors.Newf(dErrors.CodeNotFound, "unknown placeholder %s", token)
	}
	switch p.Kind {
	case KindSystem:
		return dErrors.Newf(dErrors.CodeBadRequest, "%s is computed automatically", token)
	case KindDerivedAge:
		return dErrors.Newf(dErrors.CodeBadRequest, "%s is derived from %s", token, p.Source)
	case KindCheckbox:
		return dErrors.Newf(dErrors.CodeBadRequest, "%s is a checkbox", token)
	case KindBirthDate:
		if err := validateBirthDate(value, now); err != nil {
			return err
		}
		f.Values[token] = value
		f.recomputeAges(token, now)
		return nil
	case KindTitle:
		if value != "" && !contains(p.Options, value) {
			return dErrors.Newf(dErrors.CodeBadRequest, "%s must be one of %s", token, strings.Join(p.Options, ", "))
		}
		f.Values[token] = value
		return nil
	default:
		f.Values[token] = value
		return nil
	}
}

// SetChecked selects or clears a checkbox member. Selecting clears every
// sibling in the same group, so at most one member holds the marker.
func (f *Form) SetChecked(token string, checked bool) error {
	p, ok := f.find(token)
	if !ok {
		return dErrors.Newf(dErrors.CodeNotFound, "unknown placeholder %s", token)
	}
	if p.Kind != KindCheckbox {
		return dErrors.Newf(dErrors.CodeBadRequest, "%s is not a checkbox", token)
	}
	if !checked {
		f.Values[token] = ""
		return nil
	}
	for _, sibling := range f.Placeholders {
		if sibling.Kind == KindCheckbox && sibling.Group == p.Group && sibling.Token != token {
			f.Values[sibling.Token] = ""
		}
	}
	f.Values[token] = Checked
	return nil
}

func (f *Form) recomputeAges(birthToken string, now time.Time) {
	birth, err := dates.ParseISO(f.Values[birthToken])
	if err != nil {
		return
	}
	for _, p := range f.Placeholders {
		if p.Kind == KindDerivedAge && p.Source == birthToken {
			f.Values[p.Token] = strconv.Itoa(dates.Age(birth, now))
		}
	}
}

// Issue names one field blocking submission.
type Issue struct {
	Token   string
	Message string
}

// Validate checks the form ahead of submission: free-text and title tokens
// must be non-empty after trimming, birthdates must parse with a derived age
// between 0 and 120, system keywords and checkboxes are exempt (a group may
// legitimately have nothing selected).
func (f *Form) Validate(now time.Time) []Issue {
	var issues []Issue
	for _, p := range f.Placeholders {
		value := strings.TrimSpace(f.Values[p.Token])
		switch p.Kind {
		case KindSystem, KindCheckbox, KindDerivedAge:
			continue
		case KindBirthDate:
			birth, err := dates.ParseISO(value)
			if err != nil {
				issues = append(issues, Issue{p.Token, fmt.Sprintf("%s must be a valid date", p.Token)})
				continue
			}
			if age := dates.Age(birth, now); age < 0 || age > maxDerivedAge {
				issues = append(issues, Issue{p.Token, fmt.Sprintf("%s yields an impossible age", p.Token)})
			}
		default:
			if value == "" {
				issues = append(issues, Issue{p.Token, fmt.Sprintf("%s is required", p.Token)})
			}
		}
	}
	return issues
}

// Finalize produces the flat submission map. System keywords are overwritten
// with freshly computed values and derived ages are recomputed from their
// sources, whatever the stored values say; submit-time truth wins over
// render-time leftovers.
func (f *Form) Finalize(now time.Time) map[string]string {
	out := make(map[string]string, len(f.Values))
	for _, p := range f.Placeholders {
		switch p.Kind {
		case KindSystem:
			value, _ := SystemValue(p.Token, now)
			out[p.Token] = value
		case KindDerivedAge:
			out[p.Token] = ""
			if birth, err := dates.ParseISO(f.Values[p.Source]); err == nil {
				out[p.Token] = strconv.Itoa(dates.Age(birth, now))
			}
		default:
			out[p.Token] = f.Values[p.Token]
		}
	}
	return out
}

func validateBirthDate(value string, now time.Time) error {
	birth, err := dates.ParseISO(value)
	if err != nil {
		return dErrors.New(dErrors.CodeBadRequest, "Please enter a valid date")
	}
	yesterday := dates.StartOfDay(now).AddDate(0, 0, -1)
	if birth.After(yesterday) {
		return dErrors.New(dErrors.CodeBadRequest, "Date must be before today")
	}
	if dates.MonthsSince(birth, now) < minSubjectMonths {
		return dErrors.New(dErrors.CodeBadRequest, "Subject must be at least 1 month old")
	}
	if birth.Before(now.AddDate(-maxSubjectYears, 0, 0)) {
		return dErrors.New(dErrors.CodeBadRequest, "Date cannot be more than 75 years ago")
	}
	return nil
}

func contains(options []string, value string) bool {
	for _, o := range options {
		if o == value {
			return true
		}
	}
	return false
}
