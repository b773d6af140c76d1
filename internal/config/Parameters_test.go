package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultOptimizerParametersAreValid(t *testing.T) {
	require.NoError(t, DefaultOptimizerParameters.Validate())
}

func TestDefaultConfigIdentity(t *testing.T) {
	assert.NotEmpty(t, DEFAULT_CONFIG_NAME)
	assert.Positive(t, DEFAULT_CONFIG_VERSION)
}
