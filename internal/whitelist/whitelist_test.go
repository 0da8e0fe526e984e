package whitelist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestChecker_IsWhitelisted(t *testing.T) {
	checker := NewChecker([]string{" Example.COM ", "trusted.org", ""}, zap.NewNop())

	tests := []struct {
		from string
		want bool
	}{
		{"alice@example.com", true},
		{"Alice <alice@EXAMPLE.com>", true},
		{"bob@mail.trusted.org", true},
		{"eve@example.com.evil.net", false},
		{"eve@notexample.com", false},
		{"no-at-sign", false},
		{"trailing@", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.from, func(t *testing.T) {
			assert.Equal(t, tt.want, checker.IsWhitelisted(tt.from))
		})
	}
}

func TestChecker_Empty(t *testing.T) {
	assert.False(t, NewChecker(nil, nil).IsWhitelisted("alice@example.com"))

	var checker *Checker
	assert.False(t, checker.IsWhitelisted("alice@example.com"))
}
