package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "data/input", cfg.UploadDir)
	assert.Equal(t, "data/output", cfg.OutputDir)
	assert.Equal(t, "data/input/template.pptx", cfg.TemplatePath)
	assert.Equal(t, "data/input/images", cfg.IconDir)
	assert.False(t, cfg.ContinueOnError)
	assert.Equal(t, 30*time.Second, cfg.ReadTimeout)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("TEMPLATE_PATH", "/srv/acb/template.pptx")
	t.Setenv("ICON_DIR", "/srv/acb/icons")
	t.Setenv("CONTINUE_ON_ERROR", "true")
	t.Setenv("READ_TIMEOUT", "45s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "/srv/acb/template.pptx", cfg.TemplatePath)
	assert.Equal(t, "/srv/acb/icons", cfg.IconDir)
	assert.True(t, cfg.ContinueOnError)
	assert.Equal(t, 45*time.Second, cfg.ReadTimeout)
}

func TestLoadInvalidTimeout(t *testing.T) {
	t.Setenv("READ_TIMEOUT", "soon")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "READ_TIMEOUT")
}
