package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBuildsLoggerForEachEnv(t *testing.T) {
	for _, env := range []string{"development", "production"} {
		t.Run(env, func(t *testing.T) {
			log, err := New(env)
			require.NoError(t, err)
			require.NotNil(t, log)

			// Must not panic on use.
			log.Info("logger smoke test")
		})
	}
}

func TestNewWithDefaultsNeverReturnsNil(t *testing.T) {
	log := NewWithDefaults()
	assert.NotNil(t, log)
}
