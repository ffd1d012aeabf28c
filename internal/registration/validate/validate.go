// Package validate implements the field validators and the form validation
// aggregator for resident registration. Every validator is a pure function
// from a raw value to a user-facing message; the empty string means pass and
// callers surface non-empty returns verbatim.
package validate

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"baryo/pkg/platform/dates"
)

const (
	minRegistrationAge = 13
	maxRegistrationAge = 150
	maxImageBytes      = 5 << 20
)

var (
	// Letters plus space, apostrophe and hyphen; covers extended Latin and ñ.
	nameRe     = regexp.MustCompile(`^[A-Za-zÀ-ÖØ-öø-ÿÑñ' -]+$`)
	emailRe    = regexp.MustCompile(`^[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}$`)
	mobileRe   = regexp.MustCompile(`^09\d{9}$`)
	intlRe     = regexp.MustCompile(`^\+639\d{9}$`)
	landlineRe = regexp.MustCompile(`^(0\d{1,2}-)?\d{3,4}-\d{4}$`)
	houseRe    = regexp.MustCompile(`^[A-Za-z0-9/\- ]{1,10}$`)
	streetRe   = regexp.MustCompile(`^[A-Za-z0-9À-ÖØ-öø-ÿÑñ.,'# -]{2,100}$`)
	placeRe    = regexp.MustCompile(`^[A-Za-z0-9À-ÖØ-öø-ÿÑñ.,' -]{2,100}$`)
	zipRe      = regexp.MustCompile(`^\d{4}$`)
	suffixRe   = regexp.MustCompile(`^[A-Za-z.]{1,10}$`)
	votersRe   = regexp.MustCompile(`^[A-Za-z0-9\-]{5,25}$`)

	passwordSymbols = "@$!%*?&#^_.,+-"
)

// Name validates a required name part (first or last name).
func Name(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "This field is required"
	}
	if len([]rune(value)) < 2 || len([]rune(value)) > 50 {
		return "Name must be 2 to 50 characters long"
	}
	if !nameRe.MatchString(value) {
		return "Name may only contain letters, spaces, apostrophes and hyphens"
	}
	return ""
}

// OptionalName validates a name part that may be left blank (middle name).
func OptionalName(value string) string {
	if strings.TrimSpace(value) == "" {
		return ""
	}
	return Name(value)
}

// Suffix validates the optional name suffix (Jr., Sr., III).
func Suffix(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if !suffixRe.MatchString(value) {
		return "Suffix may only contain letters and periods"
	}
	return ""
}

// Email validates a required local@domain.tld address.
func Email(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "Email is required"
	}
	if !emailRe.MatchString(value) {
		return "Please enter a valid email address"
	}
	return ""
}

// Phone validates PH mobile (09 + 9 digits), international (+639...) and
// landline-with-separator formats.
func Phone(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "Contact number is required"
	}
	if mobileRe.MatchString(value) || intlRe.MatchString(value) || landlineRe.MatchString(value) {
		return ""
	}
	return "Please enter a valid contact number (e.g. 09171234567)"
}

// Password validates length and composition: at least one uppercase letter,
// one lowercase letter, one digit and one symbol from the allowed set.
func Password(value string) string {
	if value == "" {
		return "Password is required"
	}
	if len(value) < 8 {
		return "Password must be at least 8 characters long"
	}
	switch {
	case !strings.ContainsAny(value, "ABCDEFGHIJKLMNOPQRSTUVWXYZ"):
		return "Password must contain at least one uppercase letter"
	case !strings.ContainsAny(value, "abcdefghijklmnopqrstuvwxyz"):
		return "Password must contain at least one lowercase letter"
	case !strings.ContainsAny(value, "0123456789"):
		return "Password must contain at least one number"
	case !strings.ContainsAny(value, passwordSymbols):
		return fmt.Sprintf("Password must contain at least one symbol (%s)", passwordSymbols)
	}
	return ""
}

// ConfirmPassword requires byte-for-byte equality with the password field.
func ConfirmPassword(value, password string) string {
	if value == "" {
		return "Please confirm your password"
	}
	if value != password {
		return "Passwords do not match"
	}
	return ""
}

// Birthday validates an ISO date against the registration age policy using
// calendar-aware subtraction.
func Birthday(value string) string {
	return birthdayAt(value, time.Now().UTC())
}

func birthdayAt(value string, now time.Time) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "Birth date is required"
	}
	birth, err := dates.ParseISO(value)
	if err != nil {
		return "Please enter a valid date"
	}
	if !birth.Before(dates.StartOfDay(now)) {
		return "Birth date cannot be in the future"
	}
	age := dates.Age(birth, now)
	if age < minRegistrationAge {
		return fmt.Sprintf("You must be at least %d years old to register", minRegistrationAge)
	}
	if age > maxRegistrationAge {
		return "Please enter a valid birth date"
	}
	return ""
}

// Sex validates the closed sex option set.
func Sex(value string) string {
	switch strings.TrimSpace(value) {
	case "male", "female":
		return ""
	case "":
		return "Please select your sex"
	default:
		return "Please select a valid option"
	}
}

// CivilStatus validates the closed civil status option set.
func CivilStatus(value string) string {
	switch strings.TrimSpace(value) {
	case "single", "married", "widowed", "separated":
		return ""
	case "":
		return "Civil status is required"
	default:
		return "Please select a valid civil status"
	}
}

// Nationality validates a required nationality.
func Nationality(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "Nationality is required"
	}
	if !nameRe.MatchString(value) || len([]rune(value)) < 2 || len([]rune(value)) > 50 {
		return "Please enter a valid nationality"
	}
	return ""
}

// BirthPlace validates a required place name.
func BirthPlace(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "Birth place is required"
	}
	if !placeRe.MatchString(value) {
		return "Please enter a valid birth place"
	}
	return ""
}

// HouseNumber validates the house/lot/block part of the address.
func HouseNumber(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "House number is required"
	}
	if !houseRe.MatchString(value) {
		return "Please enter a valid house number"
	}
	return ""
}

// Street validates the street part of the address.
func Street(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "Street is required"
	}
	if !streetRe.MatchString(value) {
		return "Please enter a valid street"
	}
	return ""
}

// Barangay validates the barangay name.
func Barangay(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "Barangay is required"
	}
	if !placeRe.MatchString(value) {
		return "Please enter a valid barangay"
	}
	return ""
}

// Municipality validates the municipality name.
func Municipality(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "Municipality is required"
	}
	if !placeRe.MatchString(value) {
		return "Please enter a valid municipality"
	}
	return ""
}

// ZipCode requires exactly four digits.
func ZipCode(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "Zip code is required"
	}
	if !zipRe.MatchString(value) {
		return "Zip code must be exactly 4 digits"
	}
	return ""
}

// VotersID validates the optional voter's ID number.
func VotersID(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if !votersRe.MatchString(value) {
		return "Please enter a valid voter's ID number"
	}
	return ""
}

// ImageFile validates optional image attachments by extension allowlist and
// size bound. An empty filename passes; images are never required per se.
func ImageFile(filename string, size int64) string {
	if filename == "" {
		return ""
	}
	ext := strings.ToLower(strings.TrimPrefix(filenameExt(filename), "."))
	switch ext {
	case "jpg", "jpeg", "png", "gif":
	default:
		return "Image must be a JPG, JPEG, PNG or GIF file"
	}
	if size > maxImageBytes {
		return "Image must be 5MB or smaller"
	}
	return ""
}

func filenameExt(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[i:]
	}
	return ""
}
