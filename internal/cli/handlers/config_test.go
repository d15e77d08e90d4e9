package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShowConfig(t *testing.T) {
	d := setupTestDeps(t)

	ShowConfig(d.Deps)

	out := d.stdout.String()
	assert.Contains(t, out, "Configuration")
	assert.Contains(t, out, "Using defaults (no config file)")
	assert.Contains(t, out, "week_start_day")
	assert.Contains(t, out, "UTC")
	assert.Contains(t, out, "sync_interval")
	assert.Contains(t, out, d.logPath)
	assert.NotContains(t, out, "reports")
}

func TestInitConfig(t *testing.T) {
	d := setupTestDeps(t)

	InitConfig(d.Deps)
	assert.Equal(t, 0, *d.exitCode)
	assert.Contains(t, d.stdout.String(), "Created config file:")

	d.reset()
	InitConfig(d.Deps)
	assert.Equal(t, 1, *d.exitCode)
	assert.Contains(t, d.stderr.String(), "already exists")
	assert.Contains(t, d.stderr.String(), "tt config set")
}

func TestSetConfig(t *testing.T) {
	d := setupTestDeps(t)

	SetConfig(d.Deps, "sync_interval", "30")
	assert.Equal(t, "sync_interval = 30\n", d.stdout.String())

	d.reset()
	SetConfig(d.Deps, "week_start_day", "sunday")
	assert.Equal(t, 0, *d.exitCode)
	assert.Equal(t, "sunday", d.Services.Config.Get().WeekStartDay)

	d.reset()
	SetConfig(d.Deps, "colour", "blue")
	assert.Equal(t, 1, *d.exitCode)
	assert.Contains(t, d.stderr.String(), "tt config show")
}
