package system

import (
	"testing"

	"github.com/milk9111/dunk/levels"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const reloadYAML = `
levels:
  - name: fresh
    initial_character_position: [0, 0.9, 8]
    rising_speed: 0.1
    falling_start_fraction: 0.5
    falling_speed: 0.1
    forward_speed: 0.05
    flip_speed_per_flip_input: 0.2
`

func TestReloadCatalogIdleAppliesNow(t *testing.T) {
	r := newRig(t, testCatalog(t, "old")).attach()

	applied, err := r.session.ReloadCatalog([]byte(reloadYAML))
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, "fresh", r.session.Level().Name)
	assert.InDelta(t, 8.0, r.character.Position().Z(), 1e-12)

	applied, err = r.session.ReloadCatalog([]byte(reloadYAML))
	require.NoError(t, err)
	assert.False(t, applied, "unchanged bytes are skipped")
}

func TestReloadCatalogKeepsAttemptsAndRunsOnEnter(t *testing.T) {
	r := newRig(t, testCatalog(t, "old")).attach()
	r.session.Replay()
	require.Equal(t, 2, r.session.Progress().Attempts)

	data := reloadYAML + "    on_enter: fresh.tengo\n"
	applied, err := r.session.ReloadCatalog([]byte(data))
	require.NoError(t, err)
	require.True(t, applied)
	assert.Equal(t, "fresh", r.session.Level().Name)
	assert.Equal(t, 2, r.session.Progress().Attempts, "a reload is not an attempt")
	assert.Equal(t, []string{"fresh.tengo"}, r.scripts)
}

func TestReloadCatalogMidFlightWaits(t *testing.T) {
	r := newRig(t, testCatalog(t, "old")).attach()
	r.jump()
	r.session.Tick(dt)

	applied, err := r.session.ReloadCatalog([]byte(reloadYAML))
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, "old", r.session.Level().Name)

	applied, err = r.session.ReloadCatalog([]byte(reloadYAML))
	require.NoError(t, err)
	assert.False(t, applied, "already queued")

	r.session.Replay()
	assert.Equal(t, "fresh", r.session.Level().Name)
}

func TestReloadCatalogRejectsInvalid(t *testing.T) {
	r := newRig(t, testCatalog(t, "old")).attach()
	_, err := r.session.ReloadCatalog([]byte("levels:\n  - name: broken\n    falling_start_fraction: 2\n"))
	require.ErrorIs(t, err, levels.ErrInvalidLevel)
	assert.Equal(t, "old", r.session.Level().Name)
}
