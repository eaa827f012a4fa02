package profiling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTrackAccumulates(t *testing.T) {
	f := NewFrame()
	stop := f.Track("a")
	time.Sleep(2 * time.Millisecond)
	stop()
	f.Track("a")()
	assert.GreaterOrEqual(t, f.Get("a"), 2*time.Millisecond)

	f.Reset()
	assert.Zero(t, f.Get("a"))
}

func TestTopOrdersByDuration(t *testing.T) {
	f := NewFrame()
	f.totals["small"] = 1 * time.Millisecond
	f.totals["big"] = 4200 * time.Microsecond
	f.totals["mid"] = 2 * time.Millisecond

	assert.Equal(t, "big:4.2ms, mid:2.0ms", f.Top(2))
	assert.Equal(t, "big:4.2ms, mid:2.0ms, small:1.0ms", f.Top(10))
	assert.Equal(t, "", NewFrame().Top(3))
}
