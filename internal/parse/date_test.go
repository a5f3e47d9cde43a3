package parse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseDate(t *testing.T) {
	testCases := []struct {
		name      string
		raw       string
		expected  time.Time
		expectErr bool
	}{
		{
			name:     "Date only",
			raw:      "2023-01-15",
			expected: time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "RFC3339 UTC",
			raw:      "2024-12-16T10:30:00Z",
			expected: time.Date(2024, 12, 16, 10, 30, 0, 0, time.UTC),
		},
		{
			name:     "RFC3339 with offset is normalised to UTC",
			raw:      "2024-12-16T10:30:00+02:00",
			expected: time.Date(2024, 12, 16, 8, 30, 0, 0, time.UTC),
		},
		{
			name:     "JavaScript toISOString output",
			raw:      "2025-01-15T00:00:00.000Z",
			expected: time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "No zone",
			raw:      "2024-03-01T08:00:00",
			expected: time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC),
		},
		{
			name:     "Surrounding whitespace",
			raw:      "  2024-03-01 ",
			expected: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "Empty",
			raw:       "",
			expectErr: true,
		},
		{
			name:      "Garbage",
			raw:       "next tuesday",
			expectErr: true,
		},
		{
			name:      "Impossible day",
			raw:       "2024-02-31",
			expectErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			parsed, err := ParseDate(tc.raw)
			if tc.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.True(t, tc.expected.Equal(parsed), "expected %s, got %s", tc.expected, parsed)
			}
		})
	}
}

func TestParseOptionalDate(t *testing.T) {
	got, err := ParseOptionalDate("")
	assert.NoError(t, err)
	assert.Nil(t, got)

	got, err = ParseOptionalDate("2024-05-01")
	assert.NoError(t, err)
	if assert.NotNil(t, got) {
		assert.Equal(t, 2024, got.Year())
	}

	_, err = ParseOptionalDate("nope")
	assert.Error(t, err)
}

func TestNonNegativeInt(t *testing.T) {
	n, err := NonNegativeInt("")
	assert.NoError(t, err)
	assert.Equal(t, 0, n)

	n, err = NonNegativeInt("15")
	assert.NoError(t, err)
	assert.Equal(t, 15, n)

	_, err = NonNegativeInt("-1")
	assert.Error(t, err)

	_, err = NonNegativeInt("ten")
	assert.Error(t, err)
}
