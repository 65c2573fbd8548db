package env

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetEnvPrefersLoadedFile(t *testing.T) {
	t.Setenv("PORTAL_TEST_KEY", "from-os")
	Env = map[string]string{"PORTAL_TEST_KEY": "from-file"}
	t.Cleanup(func() { Env = nil })

	assert.Equal(t, "from-file", GetEnv("PORTAL_TEST_KEY", "def"))
}

func TestGetEnvFallsBack(t *testing.T) {
	Env = nil
	t.Setenv("PORTAL_TEST_KEY", "from-os")

	assert.Equal(t, "from-os", GetEnv("PORTAL_TEST_KEY", "def"))
	assert.Equal(t, "def", GetEnv("PORTAL_TEST_MISSING", "def"))
}

func TestGetEnvInt(t *testing.T) {
	Env = map[string]string{"N": "42", "BAD": "abc"}
	t.Cleanup(func() { Env = nil })

	assert.Equal(t, 42, GetEnvInt("N", 1))
	assert.Equal(t, 7, GetEnvInt("BAD", 7))
	assert.Equal(t, 3, GetEnvInt("MISSING_INT", 3))
}

func TestGetEnvBool(t *testing.T) {
	Env = map[string]string{"A": "yes", "B": "0", "C": "maybe"}
	t.Cleanup(func() { Env = nil })

	assert.True(t, GetEnvBool("A", false))
	assert.False(t, GetEnvBool("B", true))
	assert.True(t, GetEnvBool("C", true))
}
