package ledger_test

import (
	"testing"

	"eoq-backend/internal/ledger"

	"github.com/stretchr/testify/assert"
)

func TestNextCode(t *testing.T) {
	cases := []struct {
		name   string
		prefix string
		last   string
		want   string
	}{
		{"empty history", "BRG", "", "BRG-001"},
		{"simple increment", "BRG", "BRG-001", "BRG-002"},
		{"keeps zero padding", "BRG", "BRG-009", "BRG-010"},
		{"grows past the padding", "BRG", "BRG-999", "BRG-1000"},
		{"sales prefix", "PJL", "PJL-041", "PJL-042"},
		{"shipping prefix", "SHP", "SHP-007", "SHP-008"},
		{"garbage suffix resets", "BRG", "BRG-abc", "BRG-001"},
		{"missing separator resets", "BRG", "BRG001", "BRG-001"},
		{"non-positive suffix resets", "BRG", "BRG-0", "BRG-001"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ledger.NextCode(tc.prefix, tc.last))
		})
	}
}
