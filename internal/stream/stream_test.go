package stream

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"testing"
	"time"

	"visualizer/internal/logging"
	"visualizer/internal/pipeline"
	"visualizer/internal/view"
	"visualizer/internal/wire"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fill submits a w x h frame whose color bytes count up from seed.
func fill(t *testing.T, p *pipeline.Pipeline, w, h int, seed byte) {
	t.Helper()
	ctx := context.Background()
	f, err := p.Acquire(ctx, nil)
	require.NoError(t, err)
	f.Width, f.Height = w, h
	f.View = view.New(w, h).Snapshot()
	f.Storage.Reserve(f.Pixels())
	color := f.Storage.(*pipeline.MemoryStorage).Color()
	for i := range color {
		color[i] = seed + byte(i)
	}
	require.NoError(t, p.Submit(ctx, f, nil))
}

func TestSenderWritesFramesInOrder(t *testing.T) {
	p := pipeline.New(func() pipeline.Storage { return pipeline.NewMemoryStorage() })
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	s := NewSender(server, p, logging.Discard())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	fill(t, p, 4, 3, 0)
	fill(t, p, 2, 2, 100)

	h, payload, err := wire.ReadFrame(client, nil)
	require.NoError(t, err)
	assert.Equal(t, uint16(4), h.Width)
	assert.Equal(t, uint16(3), h.Height)
	require.Len(t, payload, 36)
	assert.Equal(t, byte(0), payload[0])
	assert.Equal(t, byte(35), payload[35])

	h, payload, err = wire.ReadFrame(client, nil)
	require.NoError(t, err)
	assert.Equal(t, uint16(2), h.Width)
	require.Len(t, payload, 12)
	assert.Equal(t, byte(100), payload[0])

	require.Eventually(t, func() bool { return p.Stats().Free == pipeline.PoolSize },
		time.Second, time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("sender did not stop")
	}

	frames, n := s.Sent()
	assert.Equal(t, uint64(2), frames)
	assert.Equal(t, uint64(2*wire.HeaderSize+36+12), n)
}

func TestSenderTransmitsOnlyCapturedRegion(t *testing.T) {
	p := pipeline.New(func() pipeline.Storage { return pipeline.NewMemoryStorage() })
	ctx := context.Background()

	// Storage sized for a larger previous resolution.
	f, err := p.Acquire(ctx, nil)
	require.NoError(t, err)
	f.Storage.Reserve(100)
	f.Width, f.Height = 2, 1
	require.NoError(t, p.Submit(ctx, f, nil))

	var buf bytes.Buffer
	s := NewSender(&buf, p, logging.Discard())
	g, err := p.Receive(ctx)
	require.NoError(t, err)
	require.NoError(t, s.send(ctx, g))
	assert.Equal(t, wire.HeaderSize+6, buf.Len())
}

type failWriter struct{}

func (failWriter) Write([]byte) (int, error) { return 0, io.ErrClosedPipe }

func TestSenderStopsOnWriteError(t *testing.T) {
	p := pipeline.New(func() pipeline.Storage { return pipeline.NewMemoryStorage() })
	fill(t, p, 1, 1, 0)

	s := NewSender(failWriter{}, p, logging.Discard())
	err := s.Run(context.Background())
	require.ErrorIs(t, err, io.ErrClosedPipe)

	frames, _ := s.Sent()
	assert.Zero(t, frames)
}

type stuckStorage struct{ pipeline.MemoryStorage }

func (s *stuckStorage) Map(context.Context) ([]byte, []float32, error) {
	return nil, nil, errors.New("map failed")
}

func TestSenderStopsOnMapError(t *testing.T) {
	p := pipeline.New(func() pipeline.Storage { return &stuckStorage{} })
	f, err := p.Acquire(context.Background(), nil)
	require.NoError(t, err)
	f.Width, f.Height = 1, 1
	require.NoError(t, p.Submit(context.Background(), f, nil))

	s := NewSender(io.Discard, p, logging.Discard())
	err = s.Run(context.Background())
	assert.ErrorContains(t, err, "map failed")
}

func TestSenderReportsCursorPoint(t *testing.T) {
	p := pipeline.New(func() pipeline.Storage { return pipeline.NewMemoryStorage() })
	fill(t, p, 4, 4, 0)

	var got []uint64
	s := NewSender(io.Discard, p, logging.Discard())
	s.OnCursor = func(seq uint64, _ mgl32.Vec3) { got = append(got, seq) }

	ctx := context.Background()
	f, err := p.Receive(ctx)
	require.NoError(t, err)
	require.NoError(t, s.send(ctx, f))
	assert.Len(t, got, 1)
}

func TestCursorPointClampsToSurface(t *testing.T) {
	st := view.New(4, 4)
	st.Move(100, -5)
	f := &pipeline.Frame{Width: 4, Height: 4, View: st.Update()}

	depth := make([]float32, 16)
	depth[3] = 0.5 // (3, 0)
	want := f.View.CursorWorld(0.5)
	assert.Equal(t, want, CursorPoint(f, depth))

	assert.Equal(t, mgl32.Vec3{}, CursorPoint(f, depth[:3]))
}

func TestDecoderAppliesMessagesInOrder(t *testing.T) {
	st := view.New(500, 500)
	var buf bytes.Buffer
	for _, m := range []wire.Input{
		{X: 800, Y: 600, Type: wire.Resize},
		{X: 10, Y: 20, Z: int32(view.ButtonLeft), Type: wire.MouseDown},
		{X: 30, Y: 20, Type: wire.MouseDrag},
		{X: 30, Y: 20, Z: int32(view.ButtonLeft), Type: wire.MouseUp},
		{X: 7, Y: 8, Type: wire.MouseMove},
		wire.NewScroll(5),
		{X: 1, Y: 1, Type: wire.MouseClick},
	} {
		b, err := m.MarshalBinary()
		require.NoError(t, err)
		buf.Write(b)
	}

	d := NewDecoder(&buf, st, logging.Discard())
	err := d.Run(context.Background())
	require.ErrorIs(t, err, io.EOF)

	snap := st.Update()
	w, h := snap.Resolution()
	assert.Equal(t, 800, w)
	assert.Equal(t, 600, h)
	assert.False(t, snap.Held(view.ButtonLeft))
	assert.InDelta(t, view.DefaultYaw-20.0/400, snap.Yaw(), 1e-5)
	x, y := snap.Cursor()
	assert.Equal(t, int32(7), x)
	assert.Equal(t, int32(8), y)
	assert.InDelta(t, view.DefaultLogZoom+0.5, snap.LogZoom(), 1e-5)
}

func TestDecoderTruncatedMessageIsFatal(t *testing.T) {
	st := view.New(500, 500)
	r := bytes.NewReader(make([]byte, wire.InputSize-1))
	err := NewDecoder(r, st, logging.Discard()).Run(context.Background())
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestDecoderStopsWhenConnectionCloses(t *testing.T) {
	client, server := net.Pipe()
	st := view.New(500, 500)
	d := NewDecoder(server, st, logging.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	b, err := wire.Input{X: 640, Y: 480, Type: wire.Resize}.MarshalBinary()
	require.NoError(t, err)
	_, err = client.Write(b)
	require.NoError(t, err)

	cancel()
	server.Close()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("decoder did not stop")
	}
	w, _ := st.Snapshot().Resolution()
	assert.Equal(t, 640, w)
}
