package shopping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomPickupCodeGenerator(t *testing.T) {
	gen := RandomPickupCodeGenerator{}
	seen := make(map[string]struct{})

	for i := 0; i < 200; i++ {
		code, err := gen.Generate()
		require.NoError(t, err)
		assert.True(t, ValidPickupCode(code), code)
		seen[code] = struct{}{}
	}
	// 36^6 codes; 200 draws colliding more than once would point at a broken generator
	assert.GreaterOrEqual(t, len(seen), 199)
}

func TestValidPickupCode(t *testing.T) {
	tests := []struct {
		code string
		want bool
	}{
		{"AB12CD", true},
		{"000000", true},
		{"ZZZZZZ", true},
		{"AB12C", false},
		{"AB12CDE", false},
		{"ab12cd", false},
		{"AB-2CD", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidPickupCode(tt.code))
		})
	}
}
