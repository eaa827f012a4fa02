package profiling

import (
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Frame accumulates named stage durations for the current frame.
// Usage: defer prof.Track("render.opaque")()
type Frame struct {
	mu     sync.Mutex
	start  time.Time
	totals map[string]time.Duration
}

func NewFrame() *Frame {
	return &Frame{start: time.Now(), totals: make(map[string]time.Duration)}
}

// Track returns a stop function that records the elapsed time under name.
func (f *Frame) Track(name string) func() {
	start := time.Now()
	return func() {
		d := time.Since(start)
		f.mu.Lock()
		f.totals[name] += d
		f.mu.Unlock()
	}
}

// Reset clears the totals and restarts the frame clock.
func (f *Frame) Reset() {
	f.mu.Lock()
	clear(f.totals)
	f.start = time.Now()
	f.mu.Unlock()
}

// Elapsed returns the time since the last Reset.
func (f *Frame) Elapsed() time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return time.Since(f.start)
}

// Get returns the total recorded under name.
func (f *Frame) Get(name string) time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.totals[name]
}

// Top formats the n largest totals, e.g. "render.opaque:4.2ms, render.acquire:2.1ms".
func (f *Frame) Top(n int) string {
	type pair struct {
		name string
		dur  time.Duration
	}
	f.mu.Lock()
	list := make([]pair, 0, len(f.totals))
	for k, v := range f.totals {
		list = append(list, pair{k, v})
	}
	f.mu.Unlock()

	sort.Slice(list, func(i, j int) bool {
		if list[i].dur == list[j].dur {
			return list[i].name < list[j].name
		}
		return list[i].dur > list[j].dur
	})
	n = min(n, len(list))
	parts := make([]string, 0, n)
	for _, p := range list[:n] {
		ms := float64(p.dur.Microseconds()) / 1000
		parts = append(parts, p.name+":"+strconv.FormatFloat(ms, 'f', 1, 64)+"ms")
	}
	return strings.Join(parts, ", ")
}
