package bench_test

import (
	"strings"
	"testing"
	"time"

	"github.com/delaneyj/fiberparty/bench"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestHarness(t *testing.T) {
	cfg := bench.Config{Width: 3, Depth: 2}
	h, err := bench.NewHarness(cfg)
	require.NoError(t, err)

	assert.Equal(t, "3x2", cfg.Title())
	assert.Equal(t, 13, cfg.Nodes())
	assert.Equal(t, cfg.Nodes()+1, h.Doc.Live())
	assert.Equal(t, 3, strings.Count(h.Container.InnerHTML(), `<span class="leaf">0</span>`))

	require.NoError(t, h.UpdateLeaf(1))
	assert.Equal(t, 3, h.R.Stats().Units)
	assert.Equal(t, 1, strings.Count(h.Container.InnerHTML(), `<span class="leaf">1</span>`))

	require.NoError(t, h.RerenderRoot(7))
	// root, App, its div, then per column two units per level plus the
	// innermost Level, Leaf, span and text
	assert.Equal(t, 3+3*(2*2+4), h.R.Stats().Units)
	assert.Equal(t, 0, h.R.Stats().Placements)
	assert.Contains(t, h.Container.InnerHTML(), `<div id="app" title="run 7">`)
	assert.Equal(t, 1, strings.Count(h.Container.InnerHTML(), `<span class="leaf">1</span>`))
}

func TestHarnessSliced(t *testing.T) {
	h, err := bench.NewHarness(bench.Config{Width: 4, Depth: 3, Slice: time.Millisecond})
	require.NoError(t, err)

	for i := 0; i < 8; i++ {
		require.NoError(t, h.UpdateLeaf(i))
	}
	assert.False(t, h.R.Pending())
	assert.Equal(t, 4, strings.Count(h.Container.InnerHTML(), `<span class="leaf">2</span>`))
}

func TestHarnessRejectsBadSize(t *testing.T) {
	_, err := bench.NewHarness(bench.Config{Width: 0, Depth: 1})
	assert.Error(t, err)
}

func TestConfigYAML(t *testing.T) {
	src := `
name: wide
width: 100
depth: 2
iterations: 50
slice: 2ms
`
	var cfg bench.Config
	require.NoError(t, yaml.Unmarshal([]byte(src), &cfg))
	assert.Equal(t, bench.Config{
		Name:       "wide",
		Width:      100,
		Depth:      2,
		Iterations: 50,
		Slice:      2 * time.Millisecond,
	}, cfg)
}
