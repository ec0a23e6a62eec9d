package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNights(t *testing.T) {
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	n, err := Nights(base, base.AddDate(0, 0, 3))
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	// partial days round up
	n, err = Nights(base, base.Add(25*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = Nights(base, base)
	requireKind(t, err, KindValidation, "error.invalidDates")
	_, err = Nights(base, base.AddDate(0, 0, -1))
	requireKind(t, err, KindValidation, "error.invalidDates")
}

func TestTotalAmount_Exact(t *testing.T) {
	assert.True(t, dec("300").Equal(TotalAmount(dec("100"), 3)))
	// 0.1 * 3 drifts in float64, not here
	assert.Equal(t, "0.30", TotalAmount(dec("0.1"), 3).StringFixed(2))
	assert.True(t, dec("1.11").Equal(TotalAmount(dec("0.37"), 3)))
}

func TestLineTax(t *testing.T) {
	assert.True(t, dec("30").Equal(LineTax(dec("300"), dec("10"))))
	assert.True(t, dec("0.83").Equal(LineTax(dec("11.05"), dec("7.5"))))
	assert.True(t, LineTax(dec("50"), dec("0")).IsZero())
}

func TestValidRate(t *testing.T) {
	assert.NoError(t, validRate(dec("0"), "room_rate"))
	assert.NoError(t, validRate(dec("100.5"), "room_rate"))
	assert.NoError(t, validRate(dec("100.500"), "room_rate"))
	requireKind(t, validRate(dec("100.505"), "room_rate"), KindValidation, "error.invalidRate")
	requireKind(t, validRate(dec("-0.01"), "room_rate"), KindValidation, "error.invalidRate")
}
