package scene

import (
	"encoding/binary"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/Carmen-Shannon/oxy-csm/engine/camera"
	"github.com/Carmen-Shannon/oxy-csm/engine/csm"
	"github.com/Carmen-Shannon/oxy-csm/engine/model"
	"github.com/Carmen-Shannon/oxy-csm/engine/rendergraph"
	"github.com/go-gl/mathgl/mgl32"
)

func triangle(name string) model.Model {
	return model.NewModel(model.MeshData{
		Name:      name,
		Positions: []float32{0, 0, 0, 1, 0, 0, 0, 1, 0},
		Indices:   []uint32{0, 1, 2},
	})
}

func newTestScene(t *testing.T, options ...SceneBuilderOption) Scene {
	t.Helper()
	cam := camera.NewCamera(
		camera.WithNear(1),
		camera.WithFar(1000),
		camera.WithController(camera.NewStaticController(mgl32.Vec3{0, 50, 100}, mgl32.Vec3{})),
	)
	s := NewScene("test", cam, append([]SceneBuilderOption{WithPrepareWorkers(2)}, options...)...)
	t.Cleanup(s.Close)
	return s
}

// boxCascade covers x,y in [-10, 10] and z in [-100, 0].
func boxCascade() csm.CascadeCamera {
	return csm.NewCascadeCamera(0, camera.OrthoZO(-10, 10, -10, 10, 0, 100), mgl32.Ident4(), 0, 100)
}

func TestNewScenePanicsWithoutCamera(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	NewScene("x", nil)
}

func TestInstanceGroupsKeepInsertionOrder(t *testing.T) {
	s := newTestScene(t)
	s.AddInstanceGroup("rocks", triangle("rocks"))
	s.AddInstanceGroup("tree", triangle("tree"))
	s.AddInstanceGroup("", triangle("blank"))

	replacement := triangle("rocks2")
	s.AddInstanceGroup("rocks", replacement)

	groups := s.InstanceGroups()
	want := []string{"rocks", "tree", ""}
	if len(groups) != len(want) {
		t.Fatalf("got %d groups, want %d", len(groups), len(want))
	}
	for i, g := range groups {
		if g.Name() != want[i] {
			t.Errorf("group %d = %q, want %q", i, g.Name(), want[i])
		}
	}
	if groups[0].Drawable() != replacement {
		t.Error("replacing a group should keep its slot and swap the mesh")
	}
}

func TestRemoveInstanceGroupReindexes(t *testing.T) {
	s := newTestScene(t)
	s.AddInstanceGroup("a", triangle("a"))
	s.AddInstanceGroup("b", triangle("b"))
	s.AddInstanceGroup("c", triangle("c"))

	if !s.RemoveInstanceGroup("a") {
		t.Fatal("remove a returned false")
	}
	if s.RemoveInstanceGroup("a") {
		t.Error("second remove should return false")
	}
	g, ok := s.InstanceGroup("c")
	if !ok || g.Name() != "c" {
		t.Fatalf("lookup after remove = %v, %v", g, ok)
	}
	s.AddInstanceGroup("c", triangle("c2"))
	if n := len(s.InstanceGroups()); n != 2 {
		t.Errorf("got %d groups after replace, want 2", n)
	}
}

func TestIntersects(t *testing.T) {
	cascade := boxCascade()
	tests := []struct {
		name  string
		world mgl32.Mat4
		mesh  model.Model
		want  bool
	}{
		{"inside", mgl32.Translate3D(0, 0, -50), triangle("in"), true},
		{"outside", mgl32.Translate3D(100, 0, -50), triangle("out"), false},
		{"behind", mgl32.Translate3D(0, 0, 20), triangle("behind"), false},
		{"no drawable", mgl32.Translate3D(0, 0, -50), nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tl := NewTile(1, WithTileTransform(tt.world), WithBuildingMesh(tt.mesh))
			if got := tl.Building().Intersects(cascade); got != tt.want {
				t.Errorf("Intersects = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTileWithoutMeshes(t *testing.T) {
	tl := NewTile(7)
	if tl.Building() == nil || tl.Hugging() == nil {
		t.Fatal("tile items must never be nil")
	}
	if tl.Building().Drawable() != nil || tl.Hugging().Drawable() != nil {
		t.Error("expected nil drawables")
	}
	if tl.SegmentCount() != 0 {
		t.Errorf("segments = %d", tl.SegmentCount())
	}
}

func TestPrepareFrameRefreshesBounds(t *testing.T) {
	tiles := make([]Tile, 0, 16)
	for i := 0; i < 16; i++ {
		tiles = append(tiles, NewTile(i, WithBuildingMesh(triangle("b")), WithHuggingMesh(triangle("h"), 8)))
	}
	s := newTestScene(t, WithTiles(tiles...))

	for i, tl := range s.Tiles() {
		tl.SetWorldMatrix(mgl32.Translate3D(float32(i)*100, 0, 0))
	}
	s.PrepareFrame()

	for i, tl := range s.Tiles() {
		want := float32(i) * 100
		for _, it := range []GeometryItem{tl.Building(), tl.Hugging()} {
			c := it.WorldBounds().Center
			if math.Abs(float64(c.X()-want-0.5)) > 1e-3 {
				t.Errorf("tile %d center x = %v, want %v", i, c.X(), want+0.5)
			}
		}
	}
	if n := len(s.CSM().CascadeCameras()); n != s.CSM().Cascades() {
		t.Errorf("cascade cameras = %d, want %d", n, s.CSM().Cascades())
	}
}

func TestPrepareFrameUploadsChangedInstances(t *testing.T) {
	var mu sync.Mutex
	uploaded := map[string]int{}
	s := newTestScene(t, WithInstanceUploader(func(m model.Model) error {
		mu.Lock()
		defer mu.Unlock()
		uploaded[m.Name()]++
		return nil
	}))

	g := s.AddInstanceGroup("props", triangle("props"))
	s.AddAircraft("jet", triangle("jet"))
	s.PrepareFrame()
	s.PrepareFrame()

	if uploaded["props"] != 1 || uploaded["jet"] != 1 {
		t.Fatalf("uploads = %v, want one each", uploaded)
	}

	g.SetInstances([]mgl32.Mat4{mgl32.Ident4(), mgl32.Translate3D(10, 0, 0)})
	s.PrepareFrame()
	if uploaded["props"] != 2 {
		t.Errorf("props uploads = %d, want 2", uploaded["props"])
	}
	if g.InstanceCount() != 2 {
		t.Errorf("instance count = %d, want 2", g.InstanceCount())
	}
}

func TestPrepareFrameRetriesFailedUpload(t *testing.T) {
	attempts := 0
	s := newTestScene(t, WithInstanceUploader(func(m model.Model) error {
		attempts++
		if attempts == 1 {
			return errors.New("device busy")
		}
		return nil
	}))

	a := s.AddAircraft("jet", triangle("jet"))
	a.SetInstances([]mgl32.Mat4{mgl32.Ident4(), mgl32.Translate3D(0, 50, 0)})

	s.PrepareFrame()
	if attempts != 1 {
		t.Fatalf("attempts after first frame = %d, want 1", attempts)
	}
	s.PrepareFrame()
	if attempts != 2 {
		t.Fatalf("attempts after second frame = %d, want a retry", attempts)
	}
	s.PrepareFrame()
	if attempts != 2 {
		t.Errorf("attempts after success = %d, want no further uploads", attempts)
	}
	if a.InstanceCount() != 2 {
		t.Errorf("instance count = %d, want 2", a.InstanceCount())
	}
}

func TestAircraftZeroInstances(t *testing.T) {
	s := newTestScene(t)
	a := s.AddAircraft("jet", triangle("jet"))
	a.SetInstances(nil)
	if a.InstanceCount() != 0 {
		t.Errorf("instance count = %d, want 0", a.InstanceCount())
	}
	if a.Drawable() == nil {
		t.Error("aircraft keep their drawable with zero instances")
	}
	if len(s.Aircraft()) != 1 {
		t.Errorf("aircraft = %d", len(s.Aircraft()))
	}
}

func TestTerrainParams(t *testing.T) {
	tr := NewTerrain(4, 2)
	tl := NewTile(3)
	if p := tr.TileParams(tl); p != (TileParams{}) {
		t.Errorf("unknown tile params = %+v, want zero", p)
	}
	want := TileParams{Ring0: 512, LevelID: 1, Ring0Offset: mgl32.Vec2{0.25, 0.5}, Ring1Offset: mgl32.Vec2{0.125, 0.25}}
	tr.SetTileParams(3, want)
	if p := tr.TileParams(tl); p != want {
		t.Errorf("params = %+v, want %+v", p, want)
	}

	v := tr.Version()
	if err := tr.SetRingHeights(2, make([]float32, 16)); err == nil {
		t.Error("expected level range error")
	}
	if err := tr.SetRingHeights(0, make([]float32, 3)); err == nil {
		t.Error("expected length error")
	}
	if tr.Version() != v {
		t.Error("failed writes must not bump the version")
	}
	heights := make([]float32, 16)
	heights[5] = 3.5
	if err := tr.SetRingHeights(1, heights); err != nil {
		t.Fatal(err)
	}
	if tr.Version() != v+1 {
		t.Errorf("version = %d, want %d", tr.Version(), v+1)
	}
	got := tr.RingHeights(1)
	got[5] = 0
	if tr.RingHeights(1)[5] != 3.5 {
		t.Error("RingHeights must return a copy")
	}
}

type layerWrite struct {
	layer int
	data  []byte
}

type recordingWriter struct {
	writes []layerWrite
}

func (w *recordingWriter) WriteTextureLayer(att rendergraph.PhysicalAttachment, layer int, data []byte) error {
	w.writes = append(w.writes, layerWrite{layer: layer, data: data})
	return nil
}

func TestRingHeightPassUploadsOnChange(t *testing.T) {
	alloc := rendergraph.NewMemoryAllocator()
	graph := rendergraph.NewGraph(rendergraph.WithAllocator(alloc))
	tr := NewTerrain(2, 3)
	w := &recordingWriter{}
	pass := NewRingHeightPass(graph, tr, w)
	if err := graph.AddPass(pass); err != nil {
		t.Fatal(err)
	}

	graph.Render()
	graph.Render()
	if len(w.writes) != 3 {
		t.Fatalf("writes = %d, want 3 (one per level, once)", len(w.writes))
	}
	for i, wr := range w.writes {
		if wr.layer != i || len(wr.data) != 2*2*4 {
			t.Errorf("write %d = layer %d, %d bytes", i, wr.layer, len(wr.data))
		}
	}

	if err := tr.SetRingHeights(1, []float32{1, 2, 3, 4}); err != nil {
		t.Fatal(err)
	}
	graph.Render()
	if len(w.writes) != 6 {
		t.Fatalf("writes = %d after change, want 6", len(w.writes))
	}
	level1 := w.writes[4].data
	if got := math.Float32frombits(binary.LittleEndian.Uint32(level1[12:])); got != 4 {
		t.Errorf("level 1 last height = %v, want 4", got)
	}

	att, err := graph.PhysicalResource(graph.SharedResource(RingHeightResource))
	if err != nil {
		t.Fatal(err)
	}
	if att.Layers() != 3 {
		t.Errorf("layers = %d, want 3", att.Layers())
	}
	if alloc.Allocations() != 1 {
		t.Errorf("allocations = %d, want 1", alloc.Allocations())
	}
}
