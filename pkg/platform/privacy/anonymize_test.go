package privacy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnonymizeIP(t *testing.T) {
	tests := map[string]string{
		"192.168.1.47":                 "192.168.1.0",
		"::ffff:10.0.0.9":              "10.0.0.0",
		"2001:db8:85a3::8a2e:370:7334": "2001:db8:85a3::",
		"":                             "unknown",
		"unknown":                      "unknown",
		"not-an-ip":                    "invalid",
	}
	for in, want := range tests {
		assert.Equal(t, want, AnonymizeIP(in), in)
	}
}

func TestAnonymizeIP_SameNetworkProducesSameOutput(t *testing.T) {
	assert.Equal(t, AnonymizeIP("10.1.2.3"), AnonymizeIP("10.1.2.250"))
	assert.NotEqual(t, AnonymizeIP("10.1.2.3"), AnonymizeIP("10.1.3.3"))
}

func TestMaskEmail(t *testing.T) {
	assert.Equal(t, "a***@club.fr", MaskEmail("alice@club.fr"))
	assert.Equal(t, "***", MaskEmail("no-at-sign"))
	assert.Equal(t, "***", MaskEmail("@club.fr"))
}
