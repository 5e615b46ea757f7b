package profiler

import (
	"fmt"
	"log"
	"runtime"
	"slices"
	"strings"
	"sync"
	"time"
)

// Profiler tracks frame rate, memory statistics and named per-interval counters.
// Outputs stats to the log at a configurable interval.
type Profiler struct {
	mu *sync.Mutex

	counters map[string]int

	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
}

// NewProfiler creates a new Profiler.
// Update interval defaults to 1 second.
//
// Parameters:
//   - options: functional options to configure the profiler
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerBuilderOption) *Profiler {
	p := &Profiler{
		mu:             &sync.Mutex{},
		counters:       make(map[string]int),
		frameCount:     0,
		lastTime:       time.Now(),
		updateInterval: time.Second,
		memStats:       runtime.MemStats{},
	}
	for _, option := range options {
		option(p)
	}
	return p
}

// Count adds n to a named counter. Counters are logged per frame on average and reset every interval.
// Safe to call from any goroutine.
//
// Parameters:
//   - name: the counter name
//   - n: the amount to add
func (p *Profiler) Count(name string, n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.counters[name] += n
}

// Counter returns the current value of a named counter within the running interval.
//
// Parameters:
//   - name: the counter name
//
// Returns:
//   - int: the accumulated value
func (p *Profiler) Counter(name string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.counters[name]
}

// flushCounters formats the counters as per-frame averages and resets them.
func (p *Profiler) flushCounters(frames int) string {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.counters) == 0 || frames == 0 {
		return ""
	}
	names := make([]string, 0, len(p.counters))
	for name := range p.counters {
		names = append(names, name)
	}
	slices.Sort(names)

	var sb strings.Builder
	for _, name := range names {
		fmt.Fprintf(&sb, " | %s: %.1f/frame", name, float64(p.counters[name])/float64(frames))
	}
	clear(p.counters)
	return sb.String()
}

// Tick should be called once per frame to track frame timing.
// Logs performance statistics when the update interval has elapsed.
// Statistics include: FPS, heap usage, allocation rate, GC count/pause times, total memory.
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick() bool {
	p.frameCount++
	currentTime := time.Now()
	elapsed := currentTime.Sub(p.lastTime)

	if elapsed >= p.updateInterval {
		fps := float64(p.frameCount) / elapsed.Seconds()

		runtime.ReadMemStats(&p.memStats)
		// Alloc: Bytes of allocated heap objects (live memory)
		// TotalAlloc: Cumulative bytes allocated for heap objects (increases forever, tracks churn)
		// Sys: Total bytes of memory obtained from the OS (actual process footprint)
		allocMB := float64(p.memStats.Alloc) / 1024 / 1024
		sysMB := float64(p.memStats.Sys) / 1024 / 1024

		// Calculate allocation rate (MB/sec)
		allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
		allocRateMB := float64(allocDelta) / 1024 / 1024 / elapsed.Seconds()

		// Calculate GC pause stats (last pause and max recent pause)
		gcCount := p.memStats.NumGC
		var lastPauseUs, maxPauseUs uint64
		if gcCount > 0 {
			// PauseNs is a circular buffer of last 256 GC pauses
			lastPauseUs = p.memStats.PauseNs[(gcCount-1)%256] / 1000

			// Find max pause since last tick
			startIdx := p.lastGCCount
			if gcCount-startIdx > 256 {
				startIdx = gcCount - 256
			}
			for i := startIdx; i < gcCount; i++ {
				pause := p.memStats.PauseNs[i%256] / 1000
				if pause > maxPauseUs {
					maxPauseUs = pause
				}
			}
		}

		log.Printf("[Profiler] FPS: %.2f | Heap: %.2f MB | Alloc Rate: %.2f MB/s | GC: %d (last: %d µs, max: %d µs) | Sys: %.2f MB%s",
			fps, allocMB, allocRateMB, gcCount, lastPauseUs, maxPauseUs, sysMB, p.flushCounters(p.frameCount))

		p.frameCount = 0
		p.lastTime = currentTime
		p.lastGCCount = gcCount
		p.lastTotalAlloc = p.memStats.TotalAlloc
		return true
	}

	return false
}
