package grid

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatValue_TrimsTrailingZeros(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{12.50, "12.5"},
		{10.00, "10"},
		{0.01, "0.01"},
		{123.456, "123.46"},
		{99, "99"},
		{7.999, "8"},
	}
	for _, tt := range tests {
		got, ok := FormatValue(tt.in, 0.01)
		assert.True(t, ok, "%v must be valid", tt.in)
		assert.Equal(t, tt.want, got, "FormatValue(%v)", tt.in)
	}
}

func TestFormatValue_RejectsBelowFloor(t *testing.T) {
	_, ok := FormatValue(0.004, 0.01)
	assert.False(t, ok)

	_, ok = FormatValue(-5, 0.01)
	assert.False(t, ok)

	_, ok = FormatValue(0, 0.01)
	assert.False(t, ok)
}

func TestFormatValue_RejectsNonFinite(t *testing.T) {
	_, ok := FormatValue(math.NaN(), 0.01)
	assert.False(t, ok)

	_, ok = FormatValue(math.Inf(1), 0.01)
	assert.False(t, ok)
}
