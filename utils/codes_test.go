package utils

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateKeyCodes(t *testing.T) {
	codes, err := GenerateKeyCodes(10)
	require.NoError(t, err)
	require.Len(t, codes, 10)

	pattern := regexp.MustCompile(`^[A-HJ-NP-Z2-9]{4}-[A-HJ-NP-Z2-9]{4}$`)
	seen := map[string]bool{}
	for _, c := range codes {
		assert.Regexp(t, pattern, c)
		assert.False(t, seen[c], "duplicate %s", c)
		seen[c] = true
	}

	_, err = GenerateKeyCode(0)
	assert.Error(t, err)
}

func TestDisplayNumber(t *testing.T) {
	assert.Equal(t, "RSV-000042", DisplayNumber("RSV", 42))
	assert.Equal(t, "INV-1234567", DisplayNumber("INV", 1234567))
}

func TestMaskEmail(t *testing.T) {
	assert.Equal(t, "j**n@e******.com", MaskEmail("john@example.com"))
	assert.Equal(t, "a*@e******.com", MaskEmail("ab@example.com"))
	assert.Equal(t, "not-an-email", MaskEmail("not-an-email"))
}
