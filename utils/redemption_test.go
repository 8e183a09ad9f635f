package utils

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateRedemptionCodeFormat(t *testing.T) {
	re := regexp.MustCompile(`^ECO-\d+-[0-9A-F]{6}$`)

	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		code := GenerateRedemptionCode()
		assert.Regexp(t, re, code)
		assert.False(t, seen[code], "codes must not repeat: %s", code)
		seen[code] = true
	}
}
