package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-csm/engine/camera"
	"github.com/Carmen-Shannon/oxy-csm/engine/rendergraph"
	"github.com/Carmen-Shannon/oxy-csm/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
)

type recorder struct {
	events []string
}

func (r *recorder) add(e string) {
	r.events = append(r.events, e)
}

type fakeRenderer struct {
	rec      *recorder
	headless bool
	beginErr error
	width    int
	height   int
	released int
}

func (f *fakeRenderer) Headless() bool { return f.headless }
func (f *fakeRenderer) Resize(width, height int) {
	f.width, f.height = width, height
}
func (f *fakeRenderer) BeginFrame() error {
	f.rec.add("begin")
	return f.beginErr
}
func (f *fakeRenderer) EndFrame() { f.rec.add("end") }
func (f *fakeRenderer) Present()  { f.rec.add("present") }
func (f *fakeRenderer) Release()  { f.released++ }

type fakePass struct {
	rec    *recorder
	width  int
	height int
	closed int
}

func (p *fakePass) Name() string      { return "fake" }
func (p *fakePass) Inputs() []string  { return nil }
func (p *fakePass) Outputs() []string { return nil }
func (p *fakePass) Render()           { p.rec.add("pass") }
func (p *fakePass) SetSize(width, height int) {
	p.width, p.height = width, height
}
func (p *fakePass) Close() { p.closed++ }

type fixture struct {
	rec      *recorder
	renderer *fakeRenderer
	pass     *fakePass
	scene    scene.Scene
	engine   *engine
}

func newFixture(t *testing.T, options ...EngineBuilderOption) *fixture {
	t.Helper()
	rec := &recorder{}
	cam := camera.NewCamera(
		camera.WithNear(1),
		camera.WithFar(500),
		camera.WithController(camera.NewStaticController(mgl32.Vec3{0, 20, 40}, mgl32.Vec3{})),
	)
	s := scene.NewScene("engine-test", cam, scene.WithPrepareWorkers(1))

	g := rendergraph.NewGraph(rendergraph.WithAllocator(rendergraph.NewMemoryAllocator()))
	pass := &fakePass{rec: rec}
	if err := g.AddPass(pass); err != nil {
		t.Fatal(err)
	}

	r := &fakeRenderer{rec: rec}
	base := []EngineBuilderOption{WithScene(s), WithGraph(g), WithRenderer(r), WithTickRate(10)}
	e := NewEngine(append(base, options...)...).(*engine)
	t.Cleanup(e.Close)
	return &fixture{rec: rec, renderer: r, pass: pass, scene: s, engine: e}
}

func TestStepRunsFixedTicks(t *testing.T) {
	f := newFixture(t)
	var ticks []float32
	f.engine.SetTickCallback(func(dt float32) {
		ticks = append(ticks, dt)
	})

	f.engine.Step(250 * time.Millisecond)
	if len(ticks) != 2 {
		t.Fatalf("ticks after 250ms = %d, want 2", len(ticks))
	}
	for _, dt := range ticks {
		if dt < 0.0999 || dt > 0.1001 {
			t.Errorf("tick dt = %v, want 0.1", dt)
		}
	}

	// 50ms carried over plus 60ms crosses one more tick.
	f.engine.Step(60 * time.Millisecond)
	if len(ticks) != 3 {
		t.Errorf("ticks after carry = %d, want 3", len(ticks))
	}
}

func TestStepBoundsCatchUpTicks(t *testing.T) {
	f := newFixture(t)
	count := 0
	f.engine.SetTickCallback(func(float32) { count++ })

	f.engine.Step(10 * time.Second)
	if count != maxTicksPerFrame {
		t.Fatalf("ticks = %d, want %d", count, maxTicksPerFrame)
	}
	f.engine.Step(0)
	if count != maxTicksPerFrame {
		t.Errorf("backlog should be dropped, got %d ticks", count)
	}
}

func TestStepFrameOrder(t *testing.T) {
	f := newFixture(t)
	f.engine.SetTickCallback(func(float32) { f.rec.add("tick") })
	f.engine.SetRenderCallback(func(float32) { f.rec.add("callback") })

	f.engine.Step(100 * time.Millisecond)

	want := []string{"tick", "pass", "begin", "end", "present", "callback"}
	if len(f.rec.events) != len(want) {
		t.Fatalf("events = %v, want %v", f.rec.events, want)
	}
	for i := range want {
		if f.rec.events[i] != want[i] {
			t.Fatalf("events = %v, want %v", f.rec.events, want)
		}
	}
}

func TestStepPreparesSceneCascades(t *testing.T) {
	f := newFixture(t)
	f.engine.Step(time.Millisecond)

	c := f.scene.CSM()
	if got := len(c.CascadeCameras()); got != c.Cascades() {
		t.Errorf("cascade cameras = %d, want %d", got, c.Cascades())
	}
}

func TestHeadlessRendererSkipsPresent(t *testing.T) {
	f := newFixture(t)
	f.renderer.headless = true

	f.engine.Step(time.Millisecond)
	for _, e := range f.rec.events {
		if e == "begin" || e == "present" {
			t.Fatalf("headless renderer presented: %v", f.rec.events)
		}
	}
}

func TestBeginFrameErrorSkipsPresent(t *testing.T) {
	f := newFixture(t)
	f.renderer.beginErr = errors.New("surface lost")

	f.engine.Step(time.Millisecond)
	last := f.rec.events[len(f.rec.events)-1]
	if last != "begin" {
		t.Errorf("events = %v, want to stop after begin", f.rec.events)
	}
}

func TestResizeForwardsSize(t *testing.T) {
	f := newFixture(t)
	f.engine.resize(800, 400)

	if f.renderer.width != 800 || f.renderer.height != 400 {
		t.Errorf("renderer size = %dx%d", f.renderer.width, f.renderer.height)
	}
	if f.pass.width != 800 || f.pass.height != 400 {
		t.Errorf("pass size = %dx%d", f.pass.width, f.pass.height)
	}
	if got := f.scene.Camera().Aspect(); got != 2 {
		t.Errorf("aspect = %v, want 2", got)
	}

	f.engine.resize(0, 0)
	if f.renderer.width != 800 {
		t.Error("zero size should be ignored")
	}
}

func TestCloseReleasesOnce(t *testing.T) {
	f := newFixture(t)
	f.engine.Close()
	f.engine.Close()

	if f.pass.closed != 1 {
		t.Errorf("pass closed %d times", f.pass.closed)
	}
	if f.renderer.released != 1 {
		t.Errorf("renderer released %d times", f.renderer.released)
	}
}

func TestRunHeadlessUntilQuit(t *testing.T) {
	f := newFixture(t)
	frames := 0
	f.engine.SetRenderCallback(func(float32) {
		frames++
		if frames == 3 {
			f.engine.Quit()
		}
	})

	done := make(chan struct{})
	go func() {
		f.engine.Run()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after Quit")
	}

	if frames != 3 {
		t.Errorf("frames = %d, want 3", frames)
	}
	if f.renderer.released != 1 {
		t.Errorf("renderer released %d times", f.renderer.released)
	}
}

func TestTickInterval(t *testing.T) {
	if got := tickInterval(0); got != time.Second/60 {
		t.Errorf("default tick = %v", got)
	}
	if got := frameInterval(0); got != 0 {
		t.Errorf("uncapped frame limit = %v", got)
	}
	if got := frameInterval(50); got != 20*time.Millisecond {
		t.Errorf("50fps limit = %v", got)
	}
}
