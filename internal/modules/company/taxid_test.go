package company

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidTaxID(t *testing.T) {
	cases := []struct {
		iso, taxID string
		ok         bool
	}{
		{"KZ", "123456789012", true},
		{"KZ", "12345678901", false},
		{"KZ", "12345678901X", false},
		{"US", "12-3456789", true},
		{"US", "123456789", true},
		{"US", "1234-56789", false},
		{"GB", "GB123456789", true},
		{"GB", "123456789", true},
		{"DE", "DE123456789", true},
		{"IN", "22AAAAA0000A1Z5", true},
		{"IN", "22AAAA", false},
		// unlisted jurisdictions use the permissive fallback
		{"FR", "FR-123456", true},
		{"FR", "ab", false},
		// empty identifiers are always fine, verification comes later
		{"KZ", "", true},
		{"", "", true},
	}
	for _, c := range cases {
		assert.Equal(t, c.ok, ValidTaxID(c.iso, c.taxID), "%s %q", c.iso, c.taxID)
	}
}
