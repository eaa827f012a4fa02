package main

import (
	"image/color"
	"net"
	"os"
	"path/filepath"
	"testing"

	"visualizer/internal/wire"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
)

func TestToImageFlipsAndSwizzles(t *testing.T) {
	// 2x2, bottom row first: blue, green / red, white.
	payload := []byte{
		255, 0, 0, 0, 255, 0,
		0, 0, 255, 255, 255, 255,
	}
	img := toImage(2, 2, payload)
	assert.Equal(t, color.RGBA{R: 255, A: 255}, img.RGBAAt(0, 0))
	assert.Equal(t, color.RGBA{R: 255, G: 255, B: 255, A: 255}, img.RGBAAt(1, 0))
	assert.Equal(t, color.RGBA{B: 255, A: 255}, img.RGBAAt(0, 1))
	assert.Equal(t, color.RGBA{G: 255, A: 255}, img.RGBAAt(1, 1))
}

func TestDumpWritesReadableBMP(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f.bmp")
	require.NoError(t, dump(path, 3, 2, make([]byte, 18)))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	cfg, err := bmp.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Width)
	assert.Equal(t, 2, cfg.Height)
}

func TestSendSetupScript(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	o := options{width: 800, height: 600, scroll: -2, spin: 5}
	errc := make(chan error, 1)
	go func() { errc <- sendSetup(client, o) }()

	var got []wire.Input
	for range 4 {
		m, err := wire.ReadInput(server)
		require.NoError(t, err)
		got = append(got, m)
	}
	require.NoError(t, <-errc)

	assert.Equal(t, wire.Input{X: 800, Y: 600, Type: wire.Resize}, got[0])
	assert.Equal(t, wire.Scroll, got[1].Type)
	assert.Equal(t, -2.0, got[1].ScrollAmount())
	assert.Equal(t, wire.MouseMove, got[2].Type)
	assert.Equal(t, wire.MouseDown, got[3].Type)
	assert.Equal(t, int32(1), got[3].Z)
}
