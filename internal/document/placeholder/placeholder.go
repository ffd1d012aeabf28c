// Package placeholder resolves a document template's placeholder tokens into
// a typed, fillable form and back into the flat map the upstream API expects.
// Tokens are classified exactly once at load; nothing re-sniffs prefixes at
// edit time.
package placeholder

import (
	"regexp"
	"strings"
)

// Kind is the resolved classification of one placeholder token.
type Kind string

const (
	// KindSystem values are computed, never user-editable.
	KindSystem Kind = "system"
	// KindCheckbox members belong to exactly one exclusive group.
	KindCheckbox Kind = "checkbox"
	// KindBirthDate tokens take a bounded calendar date.
	KindBirthDate Kind = "birth_date"
	// KindDerivedAge tokens mirror a paired birthdate token.
	KindDerivedAge Kind = "derived_age"
	// KindTitle tokens offer a closed option list.
	KindTitle Kind = "title"
	// KindFreeText tokens take a required user string.
	KindFreeText Kind = "free_text"
)

var birthDateRe = regexp.MustCompile(`(?i)birth_?date`)

// Placeholder is one resolved template token.
type Placeholder struct {
	Token   string   `json:"token"`
	Kind    Kind     `json:"kind"`
	Group   string   `json:"group,omitempty"`   // checkbox group
	Source  string   `json:"source,omitempty"`  // birthdate token an age derives from
	Options []string `json:"options,omitempty"` // title choices
}

// Resolve classifies an ordered token list. First match wins, in priority
// order: system keyword, checkbox prefix, birthdate pattern, age prefix,
// title selector, free text.
func Resolve(tokens []string) []Placeholder {
	out := make([]Placeholder, 0, len(tokens))
	for _, token := range tokens {
		out = append(out, classify(token, tokens))
	}
	return out
}

func classify(token string, all []string) Placeholder {
	if _, ok := systemKeywords[token]; ok {
		return Placeholder{Token: token, Kind: KindSystem}
	}
	if strings.HasPrefix(token, CheckboxPrefix) {
		group, ok := checkboxGroups[token]
		if !ok {
			group = token // singleton group: an independent toggle
		}
		return Placeholder{Token: token, Kind: KindCheckbox, Group: group}
	}
	if birthDateRe.MatchString(token) {
		return Placeholder{Token: token, Kind: KindBirthDate}
	}
	if strings.HasPrefix(token, AgePrefix) {
		return Placeholder{Token: token, Kind: KindDerivedAge, Source: ageSource(token, all)}
	}
	if options, ok := titleTokens[token]; ok {
		return Placeholder{Token: token, Kind: KindTitle, Options: options}
	}
	return Placeholder{Token: token, Kind: KindFreeText}
}

// ageSource pairs an age token with its birthdate source. A suffix-matched
// token wins (AGE_CHILD pairs with BIRTH_DATE_CHILD); otherwise the first
// birthdate token in the set is the source.
func ageSource(ageToken string, all []string) string {
	suffix := strings.TrimPrefix(ageToken, AgePrefix)
	var first string
	for _, token := range all {
		if token == ageToken || !birthDateRe.MatchString(token) {
			continue
		}
		if first == "" {
			first = token
		}
		if suffix != "" && strings.HasSuffix(token, suffix) {
			return token
		}
	}
	return first
}
