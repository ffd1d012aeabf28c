package dates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAge_BirthdayNotYetReached(t *testing.T) {
	now := date(2024, time.June, 15)
	assert.Equal(t, 29, Age(date(1994, time.December, 1), now))
	assert.Equal(t, 29, Age(date(1994, time.June, 16), now))
}

func TestAge_BirthdayReached(t *testing.T) {
	now := date(2024, time.June, 15)
	assert.Equal(t, 30, Age(date(1994, time.June, 15), now))
	assert.Equal(t, 30, Age(date(1994, time.January, 2), now))
}

func TestAge_LeapDayBirth(t *testing.T) {
	birth := date(2000, time.February, 29)
	// In a non-leap year Feb 28 still counts as "not yet reached".
	assert.Equal(t, 22, Age(birth, date(2023, time.February, 28)))
	assert.Equal(t, 23, Age(birth, date(2023, time.March, 1)))
}

func TestMonthsSince(t *testing.T) {
	now := date(2024, time.June, 15)
	assert.Equal(t, 0, MonthsSince(date(2024, time.May, 20), now))
	assert.Equal(t, 1, MonthsSince(date(2024, time.May, 15), now))
	assert.Equal(t, 12, MonthsSince(date(2023, time.June, 1), now))
}

func TestParseISO(t *testing.T) {
	got, err := ParseISO("1999-12-31")
	require.NoError(t, err)
	assert.Equal(t, date(1999, time.December, 31), got)

	_, err = ParseISO("31/12/1999")
	assert.Error(t, err)
}
