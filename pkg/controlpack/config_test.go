package controlpack

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "cp-default", cfg.DefaultPackID)
	assert.Equal(t, "Default Control Pack", cfg.DefaultPackName)
	assert.Equal(t, DefaultAssignmentReason, cfg.DefaultReason)
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("CONTROLPACK_DEFAULT_ID", "cp-baseline")
	t.Setenv("CONTROLPACK_DEFAULT_NAME", "Baseline Controls")

	cfg := ConfigFromEnv()
	assert.Equal(t, "cp-baseline", cfg.DefaultPackID)
	assert.Equal(t, "Baseline Controls", cfg.DefaultPackName)
	assert.Equal(t, DefaultAssignmentReason, cfg.DefaultReason)
}

func TestConfigFromEnv_Defaults(t *testing.T) {
	t.Setenv("CONTROLPACK_DEFAULT_ID", "")
	t.Setenv("CONTROLPACK_DEFAULT_NAME", "")

	cfg := ConfigFromEnv()
	assert.Equal(t, "cp-default", cfg.DefaultPackID)
	assert.Equal(t, "Default Control Pack", cfg.DefaultPackName)
}
