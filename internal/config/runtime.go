package config

import (
	"sync"
	"time"
)

// RuntimeSettings holds tunables read by the render loop every frame.
type RuntimeSettings struct {
	mu         sync.RWMutex
	clearColor [3]float32
	fpsLimit   int
	slowFrame  time.Duration
}

var globalRuntimeSettings = &RuntimeSettings{
	clearColor: [3]float32{0.1, 0.1, 0.1},
	slowFrame:  50 * time.Millisecond,
}

// Apply publishes the runtime tunables of cfg.
func Apply(cfg Config) {
	globalRuntimeSettings.mu.Lock()
	defer globalRuntimeSettings.mu.Unlock()
	globalRuntimeSettings.clearColor = cfg.Render.ClearColor
	globalRuntimeSettings.fpsLimit = cfg.Render.FPSLimit
	globalRuntimeSettings.slowFrame = time.Duration(cfg.Render.SlowFrameMS) * time.Millisecond
}

// GetClearColor returns the background color of rendered frames
func GetClearColor() [3]float32 {
	globalRuntimeSettings.mu.RLock()
	defer globalRuntimeSettings.mu.RUnlock()
	return globalRuntimeSettings.clearColor
}

// GetFPSLimit returns the frame-rate cap, 0 meaning uncapped
func GetFPSLimit() int {
	globalRuntimeSettings.mu.RLock()
	defer globalRuntimeSettings.mu.RUnlock()
	return globalRuntimeSettings.fpsLimit
}

// SetFPSLimit sets the frame-rate cap. Negative values disable the cap.
func SetFPSLimit(limit int) {
	globalRuntimeSettings.mu.Lock()
	defer globalRuntimeSettings.mu.Unlock()
	if limit < 0 {
		limit = 0
	}
	globalRuntimeSettings.fpsLimit = limit
}

// GetSlowFrameThreshold returns the frame time above which a frame is
// reported as slow. Zero disables reporting.
func GetSlowFrameThreshold() time.Duration {
	globalRuntimeSettings.mu.RLock()
	defer globalRuntimeSettings.mu.RUnlock()
	return globalRuntimeSettings.slowFrame
}
