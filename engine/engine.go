package engine

import (
	"log"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-csm/engine/profiler"
	"github.com/Carmen-Shannon/oxy-csm/engine/rendergraph"
	"github.com/Carmen-Shannon/oxy-csm/engine/scene"
	"github.com/Carmen-Shannon/oxy-csm/engine/window"
)

// maxTicksPerFrame bounds catch-up ticks after a stall so a slow frame cannot snowball.
const maxTicksPerFrame = 5

// FrameRenderer is the part of the renderer the engine drives each frame.
type FrameRenderer interface {
	Headless() bool
	Resize(width, height int)
	BeginFrame() error
	EndFrame()
	Present()
	Release()
}

// engine implements the Engine interface.
// Everything runs on the goroutine that calls Run, which must be the main thread when a window is attached.
type engine struct {
	mu *sync.Mutex

	window   window.Window
	scene    scene.Scene
	graph    rendergraph.Graph
	renderer FrameRenderer

	profiler         *profiler.Profiler
	profilingEnabled bool

	engineTickRate time.Duration
	accumulator    time.Duration
	tickCallback   func(deltaTime float32)
	renderCallback func(deltaTime float32)

	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped

	lastFrame time.Time
	running   bool
	closeOnce sync.Once
}

// Engine runs the frame loop: input, fixed-rate ticks, scene preparation, render graph and presentation.
type Engine interface {
	// Window returns the attached window, or nil when headless.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// Scene returns the scene prepared each frame.
	//
	// Returns:
	//   - scene.Scene: the scene, or nil
	Scene() scene.Scene

	// Graph returns the render graph executed each frame.
	//
	// Returns:
	//   - rendergraph.Graph: the graph, or nil
	Graph() rendergraph.Graph

	// Profiler returns the engine profiler. Passes can report counters into it.
	//
	// Returns:
	//   - *profiler.Profiler: the profiler
	Profiler() *profiler.Profiler

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetTickRate sets the engine tick rate in ticks per second.
	//
	// Parameters:
	//   - fps: target ticks per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// SetTickCallback registers the function called each fixed-rate tick.
	// Use this for game logic, camera movement and settings changes.
	//
	// Parameters:
	//   - callback: function receiving the tick length in seconds
	SetTickCallback(callback func(deltaTime float32))

	// SetRenderCallback registers the function called once per rendered frame, after the graph ran.
	//
	// Parameters:
	//   - callback: function receiving the frame delta time in seconds
	SetRenderCallback(callback func(deltaTime float32))

	// SetRenderFrameLimit sets an optional render frame rate cap in frames per second.
	//
	// Parameters:
	//   - fps: maximum render frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// Step runs one frame as if dt had elapsed since the previous one.
	//
	// Parameters:
	//   - dt: elapsed time since the previous frame
	Step(dt time.Duration)

	// Run drives frames until the window closes or Quit is called, then releases every resource.
	// Blocks the calling goroutine.
	Run()

	// Quit stops Run after the current frame. Safe to call multiple times.
	Quit()

	// Close releases the scene, graph passes, renderer and window. Safe to call multiple times.
	Close()
}

var _ Engine = &engine{}

// NewEngine creates a new Engine with the provided options and wires window resizes into the
// renderer, camera and graph.
//
// Parameters:
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		mu:             &sync.Mutex{},
		profiler:       profiler.NewProfiler(),
		engineTickRate: time.Second / 60,
	}

	for _, opt := range options {
		opt(e)
	}

	if e.window != nil {
		e.window.SetResizeCallback(e.resize)
	}
	return e
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Scene() scene.Scene {
	return e.scene
}

func (e *engine) Graph() rendergraph.Graph {
	return e.graph
}

func (e *engine) Profiler() *profiler.Profiler {
	return e.profiler
}

func (e *engine) EnableProfiler() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.profilingEnabled = true
}

func (e *engine) DisableProfiler() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.profilingEnabled = false
}

func (e *engine) SetTickRate(fps float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.engineTickRate = tickInterval(fps)
}

func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tickCallback = callback
}

func (e *engine) SetRenderCallback(callback func(deltaTime float32)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.renderCallback = callback
}

func (e *engine) SetRenderFrameLimit(fps float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.renderFrameLimit = frameInterval(fps)
}

// resize forwards the framebuffer size to the renderer surface, camera aspect and graph passes.
func (e *engine) resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	if e.renderer != nil {
		e.renderer.Resize(width, height)
	}
	if e.scene != nil {
		e.scene.Camera().SetAspect(float32(width) / float32(height))
	}
	if e.graph != nil {
		e.graph.Resize(width, height)
	}
}

func (e *engine) Step(dt time.Duration) {
	e.mu.Lock()
	tickRate := e.engineTickRate
	tick := e.tickCallback
	render := e.renderCallback
	profiling := e.profilingEnabled

	e.accumulator += dt
	ticks := 0
	for e.accumulator >= tickRate && ticks < maxTicksPerFrame {
		e.accumulator -= tickRate
		ticks++
	}
	if ticks == maxTicksPerFrame && e.accumulator >= tickRate {
		e.accumulator = 0
	}
	e.mu.Unlock()

	if tick != nil {
		for range ticks {
			tick(float32(tickRate.Seconds()))
		}
	}

	if e.scene != nil {
		e.scene.PrepareFrame()
	}
	if e.graph != nil {
		e.graph.Render()
	}
	e.present()

	if render != nil {
		render(float32(dt.Seconds()))
	}
	if profiling {
		e.profiler.Tick()
	}
}

// present clears and presents the surface when a windowed renderer is attached.
func (e *engine) present() {
	if e.renderer == nil || e.renderer.Headless() {
		return
	}
	if err := e.renderer.BeginFrame(); err != nil {
		log.Printf("[Engine] begin frame: %v", err)
		return
	}
	e.renderer.EndFrame()
	e.renderer.Present()
}

func (e *engine) Run() {
	e.mu.Lock()
	e.running = true
	e.lastFrame = time.Now()
	e.mu.Unlock()
	defer e.Close()

	if e.window != nil {
		e.window.SetUpdateCallback(e.frame)
		e.window.ProcessMessages()
		return
	}
	for e.isRunning() {
		e.frame()
	}
}

// frame measures the elapsed time, runs one Step and sleeps off any frame-limit budget.
func (e *engine) frame() {
	if !e.isRunning() {
		if e.window != nil {
			e.window.RequestClose()
		}
		return
	}

	start := time.Now()
	e.mu.Lock()
	dt := start.Sub(e.lastFrame)
	e.lastFrame = start
	limit := e.renderFrameLimit
	e.mu.Unlock()

	e.Step(dt)

	if limit > 0 {
		if remaining := limit - time.Since(start); remaining > 0 {
			time.Sleep(remaining)
		}
	}
}

func (e *engine) isRunning() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

func (e *engine) Quit() {
	e.mu.Lock()
	e.running = false
	e.mu.Unlock()
	if e.window != nil {
		e.window.RequestClose()
	}
}

func (e *engine) Close() {
	e.closeOnce.Do(func() {
		e.Quit()
		if e.graph != nil {
			for _, p := range e.graph.Passes() {
				if c, ok := p.(interface{ Close() }); ok {
					c.Close()
				}
			}
			e.graph.Release()
		}
		if e.scene != nil {
			e.scene.Close()
		}
		if e.renderer != nil {
			e.renderer.Release()
		}
		if e.window != nil {
			if err := e.window.Close(); err != nil {
				log.Printf("[Engine] close window: %v", err)
			}
		}
	})
}

func tickInterval(fps float64) time.Duration {
	if fps <= 0 {
		fps = 60
	}
	return time.Duration(float64(time.Second) / fps)
}

func frameInterval(fps float64) time.Duration {
	if fps <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / fps)
}
