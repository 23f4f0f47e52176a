package string

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrimStrings(t *testing.T) {
	a, b := "  alice ", "\tbob\n"
	TrimStrings(&a, &b)
	assert.Equal(t, "alice", a)
	assert.Equal(t, "bob", b)

	assert.NotPanics(t, func() { TrimStrings(nil, &a) })
}

func TestFold(t *testing.T) {
	assert.Equal(t, "elodie", Fold("Élodie"))
	assert.Equal(t, "francois", Fold("  FRANÇOIS "))
	assert.Equal(t, Fold("Gaël"), Fold("gael"))
}

func TestContainsFolded(t *testing.T) {
	assert.True(t, ContainsFolded("Hélène Dupré", "dupre"))
	assert.True(t, ContainsFolded("helene@example.org", "HÉLÈNE"))
	assert.False(t, ContainsFolded("Marc", "luc"))
	assert.True(t, ContainsFolded("anything", ""))
}
