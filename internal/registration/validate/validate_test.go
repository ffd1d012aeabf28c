package validate

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func isoDaysAgo(days int) string {
	return time.Now().UTC().AddDate(0, 0, -days).Format("2006-01-02")
}

func isoYearsAgo(years int) string {
	return time.Now().UTC().AddDate(-years, 0, 0).Format("2006-01-02")
}

func TestName(t *testing.T) {
	assert.Empty(t, Name("Juan"))
	assert.Empty(t, Name("Mary Grace"))
	assert.Empty(t, Name("Peña"))
	assert.Empty(t, Name("O'Brien-Santos"))
	assert.Empty(t, Name("José"))

	assert.NotEmpty(t, Name(""))
	assert.NotEmpty(t, Name("J"))
	assert.NotEmpty(t, Name("Juan123"))
	assert.NotEmpty(t, Name("Juan_Cruz"))
	assert.NotEmpty(t, Name("a 51-char name padded aaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"))
}

func TestEmail(t *testing.T) {
	assert.Empty(t, Email("juan.delacruz@example.com"))
	assert.Empty(t, Email("a+b@sub.domain.ph"))

	assert.NotEmpty(t, Email(""))
	assert.NotEmpty(t, Email("not-an-email"))
	assert.NotEmpty(t, Email("missing@tld"))
	assert.NotEmpty(t, Email("@example.com"))
}

func TestPhone(t *testing.T) {
	assert.Empty(t, Phone("09171234567"))
	assert.Empty(t, Phone("+639171234567"))
	assert.Empty(t, Phone("8888-1234"))
	assert.Empty(t, Phone("02-8888-1234"))

	assert.NotEmpty(t, Phone(""))
	assert.NotEmpty(t, Phone("0917123456"))    // 10 digits
	assert.NotEmpty(t, Phone("091712345678"))  // 12 digits
	assert.NotEmpty(t, Phone("12345"))
	assert.NotEmpty(t, Phone("+449171234567")) // wrong country prefix
}

func TestPassword_Composition(t *testing.T) {
	assert.Empty(t, Password("Abc123!x"))

	// Missing uppercase and symbol, per the canonical scenario.
	assert.NotEmpty(t, Password("abc12345"))
	assert.NotEmpty(t, Password(""))
	assert.NotEmpty(t, Password("Ab1!"))          // too short
	assert.NotEmpty(t, Password("ALLUPPER123!"))  // no lowercase
	assert.NotEmpty(t, Password("alllower123!"))  // no uppercase
	assert.NotEmpty(t, Password("NoDigitsHere!")) // no digit
	assert.NotEmpty(t, Password("NoSymbol123a"))  // no symbol
}

func TestConfirmPassword(t *testing.T) {
	assert.Empty(t, ConfirmPassword("Abc123!x", "Abc123!x"))
	assert.NotEmpty(t, ConfirmPassword("", "Abc123!x"))
	assert.NotEmpty(t, ConfirmPassword("Abc123!y", "Abc123!x"))
}

func TestBirthday_ValidRange(t *testing.T) {
	// All ages strictly between the policy bounds pass.
	for _, years := range []int{14, 21, 45, 90, 149} {
		assert.Empty(t, Birthday(isoYearsAgo(years)), "age %d", years)
	}
}

func TestBirthday_TooYoung(t *testing.T) {
	msg := Birthday(isoYearsAgo(12))
	assert.NotEmpty(t, msg)
	assert.Contains(t, msg, "13")
}

func TestBirthday_FutureAndToday(t *testing.T) {
	today := time.Now().UTC().Format("2006-01-02")
	assert.Equal(t, "Birth date cannot be in the future", Birthday(today))

	tomorrow := time.Now().UTC().AddDate(0, 0, 1).Format("2006-01-02")
	assert.Equal(t, "Birth date cannot be in the future", Birthday(tomorrow))
}

func TestBirthday_SanityBound(t *testing.T) {
	assert.NotEmpty(t, Birthday(isoYearsAgo(151)))
}

func TestBirthday_Malformed(t *testing.T) {
	assert.NotEmpty(t, Birthday(""))
	assert.NotEmpty(t, Birthday("01/02/1990"))
	assert.NotEmpty(t, Birthday("1990-13-40"))
}

func TestBirthday_FixedClock(t *testing.T) {
	now := time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)
	// 2015-01-01 is under 13 relative to 2024; 2010-01-01 is over 13.
	assert.NotEmpty(t, birthdayAt("2015-01-01", now))
	assert.Empty(t, birthdayAt("2010-01-01", now))
	// Birthday later today still counts as not-yet-reached for the year.
	assert.NotEmpty(t, birthdayAt("2011-06-16", now))
}

func TestAddressParts(t *testing.T) {
	assert.Empty(t, HouseNumber("123-B"))
	assert.Empty(t, Street("Mabini St."))
	assert.Empty(t, Barangay("San Isidro"))
	assert.Empty(t, Municipality("Rodriguez"))
	assert.Empty(t, ZipCode("1860"))

	assert.NotEmpty(t, HouseNumber(""))
	assert.NotEmpty(t, HouseNumber("12345678901")) // over 10 chars
	assert.NotEmpty(t, Street("x"))
	assert.NotEmpty(t, ZipCode("186"))
	assert.NotEmpty(t, ZipCode("18600"))
	assert.NotEmpty(t, ZipCode("18a0"))
}

func TestOptionalFields(t *testing.T) {
	assert.Empty(t, OptionalName(""))
	assert.NotEmpty(t, OptionalName("9"))
	assert.Empty(t, Suffix(""))
	assert.Empty(t, Suffix("Jr."))
	assert.NotEmpty(t, Suffix("Jr!"))
	assert.Empty(t, VotersID(""))
	assert.Empty(t, VotersID("1234-5678-9012"))
	assert.NotEmpty(t, VotersID("ab"))
}

func TestImageFile(t *testing.T) {
	assert.Empty(t, ImageFile("", 0))
	assert.Empty(t, ImageFile("photo.jpg", 1024))
	assert.Empty(t, ImageFile("photo.PNG", 4<<20))

	assert.NotEmpty(t, ImageFile("document.pdf", 1024))
	assert.NotEmpty(t, ImageFile("noextension", 1024))
	assert.NotEmpty(t, ImageFile("big.png", 6<<20))
}

func ExamplePassword() {
	fmt.Println(Password("Abc123!x") == "")
	// Output: true
}
