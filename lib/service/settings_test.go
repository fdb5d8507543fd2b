package service

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestParseBoolSetting(t *testing.T) {
	assert.True(t, parseBoolSetting(strPtr("true"), false))
	assert.True(t, parseBoolSetting(strPtr(" TRUE "), false))
	assert.True(t, parseBoolSetting(strPtr("1"), false))
	assert.False(t, parseBoolSetting(strPtr("false"), true))

	// absent and unparseable fall back
	assert.True(t, parseBoolSetting(nil, true))
	assert.False(t, parseBoolSetting(nil, false))
	assert.True(t, parseBoolSetting(strPtr("yes please"), true))
}

func TestParseDateSetting(t *testing.T) {
	date := parseDateSetting(strPtr("2025-07-01"))
	assert.Equal(t, time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), date)

	assert.True(t, parseDateSetting(nil).IsZero())
	assert.True(t, parseDateSetting(strPtr("01.07.2025")).IsZero())
}

func TestParseDecimalSetting(t *testing.T) {
	assert.True(t, decimal.RequireFromString("5.5").Equal(parseDecimalSetting(strPtr("5.5"))))
	assert.True(t, parseDecimalSetting(nil).IsZero())
	assert.True(t, parseDecimalSetting(strPtr("five")).IsZero())
}
