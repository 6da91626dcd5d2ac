package postgres

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func TestDecimalNumericRoundTrip(t *testing.T) {
	for _, s := range []string{"0", "100.00", "0.01", "-42.50", "99999999.99"} {
		t.Run(s, func(t *testing.T) {
			d := mustDecimal(t, s)

			n, err := decimalToPgNumeric(d)
			require.NoError(t, err)

			back, err := pgNumericToDecimal(n)
			require.NoError(t, err)
			assert.True(t, back.Equal(d), "got %s, want %s", back, d)
		})
	}
}

func TestNullTextHelpers(t *testing.T) {
	assert.False(t, nullText("").Valid)
	assert.True(t, nullText("x").Valid)

	assert.Nil(t, textPtr(nullTextPtr(nil)))

	s := "reason"
	got := textPtr(nullTextPtr(&s))
	require.NotNil(t, got)
	assert.Equal(t, "reason", *got)
}

func TestNullTimestamptzHelpers(t *testing.T) {
	assert.Nil(t, timePtr(nullTimestamptz(nil)))

	at := time.Date(2025, 6, 3, 12, 0, 0, 0, time.UTC)
	got := timePtr(nullTimestamptz(&at))
	require.NotNil(t, got)
	assert.True(t, got.Equal(at))
}
