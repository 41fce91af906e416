package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv(baseURLEnv, "")
	t.Setenv(timeoutEnv, "")
	t.Setenv(keyParamEnv, "")

	cfg, err := Load(NewEnv())
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, cfg.BaseURL)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
	assert.Empty(t, cfg.KeyParam)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv(baseURLEnv, "http://127.0.0.1:8080")
	t.Setenv(timeoutEnv, "5s")
	t.Setenv(keyParamEnv, "/ideo/api-key")

	cfg, err := Load(NewEnv())
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:8080", cfg.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, "/ideo/api-key", cfg.KeyParam)
}

func TestLoadInvalid(t *testing.T) {
	tests := map[string]map[string]string{
		"bad url":          {baseURLEnv: "not a url"},
		"zero timeout":     {timeoutEnv: "0s"},
		"negative timeout": {timeoutEnv: "-1s"},
		"garbage timeout":  {timeoutEnv: "soon"},
	}
	for name, vars := range tests {
		t.Run(name, func(t *testing.T) {
			for k, v := range vars {
				t.Setenv(k, v)
			}
			_, err := Load(NewEnv())
			assert.Error(t, err)
		})
	}
}
