// internal/core/domain/target_test.go
package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected TargetKind
	}{
		{"plain ip", "10.0.0.1", KindIPLiteral},
		{"zeros", "0.0.0.0", KindIPLiteral},
		{"broadcast", "255.255.255.255", KindIPLiteral},
		{"leading zeros", "010.001.000.009", KindIPLiteral},
		{"octet out of range", "999.1.1.1", KindHostname},
		{"256", "1.2.3.256", KindHostname},
		{"three parts", "1.2.3", KindHostname},
		{"five parts", "1.2.3.4.5", KindHostname},
		{"empty part", "1..3.4", KindHostname},
		{"trailing dot", "1.2.3.4.", KindHostname},
		{"sign", "+1.2.3.4", KindHostname},
		{"surrounding whitespace", " 1.2.3.4", KindHostname},
		{"ipv6", "::1", KindHostname},
		{"hostname", "example.com", KindHostname},
		{"digit hostname", "1.2.3.example", KindHostname},
		{"empty", "", KindHostname},
		{"huge octet", "1.2.3.99999999999999999999", KindHostname},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Classify(tt.input))
			// pure: same answer twice
			assert.Equal(t, Classify(tt.input), Classify(tt.input))
		})
	}
}

func TestNewTargets(t *testing.T) {
	targets := NewTargets([]string{"example.com", "10.0.0.1", "example.com"})

	assert.Len(t, targets, 3)
	assert.False(t, targets[0].IsIP())
	assert.True(t, targets[1].IsIP())
	assert.Equal(t, "ip", targets[1].Kind.String())
	assert.Equal(t, "hostname", targets[0].Kind.String())
	assert.Equal(t, []string{"example.com", "10.0.0.1", "example.com"}, TargetValues(targets))
}
