package core

import (
	"testing"

	"visualizer/internal/config"
	"visualizer/internal/logging"
	"visualizer/internal/plugin"
	"visualizer/internal/render"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddr(t *testing.T) {
	cfg := config.Default()
	cfg.Peer.Host = "::1"
	cfg.Peer.Port = 9000
	c := New(cfg, nil, logging.Discard())
	assert.Equal(t, "[::1]:9000", c.Addr())
}

func TestCloseBeforeStart(t *testing.T) {
	c := New(config.Default(), plugin.NewRegistry(4, logging.Discard()), logging.Discard())
	require.NoError(t, c.Close())
	require.NoError(t, c.Wait())

	select {
	case <-c.Done():
	default:
		t.Fatal("done not closed")
	}
}

func TestStatsBeforeStart(t *testing.T) {
	reg := plugin.NewRegistry(4, logging.Discard())
	reg.Register(func() (render.Renderable, error) { return nil, nil })
	c := New(config.Default(), reg, logging.Discard())

	s := c.Stats()
	assert.Equal(t, uint64(1), s.Plugins.Registered)
	assert.Zero(t, s.FramesSent)
	assert.Zero(t, s.Pipeline.Total())
}

func TestCursorRecordsLatest(t *testing.T) {
	c := New(config.Default(), nil, logging.Discard())
	c.setCursor(1, mgl32.Vec3{1, 2, 3})
	c.setCursor(2, mgl32.Vec3{4, 5, 6})
	assert.Equal(t, mgl32.Vec3{4, 5, 6}, c.Cursor())
}
