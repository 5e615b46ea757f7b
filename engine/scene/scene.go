package scene

import (
	"fmt"
	"log"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-csm/engine/camera"
	"github.com/Carmen-Shannon/oxy-csm/engine/csm"
	"github.com/Carmen-Shannon/oxy-csm/engine/model"
)

// InstanceUploader pushes a model's instance transforms to the GPU.
type InstanceUploader func(m model.Model) error

// scene is the implementation of the Scene interface.
type scene struct {
	mu *sync.RWMutex

	name    string
	camera  camera.Camera
	csm     csm.CSM
	terrain Terrain

	tiles []Tile

	// instance groups keep insertion order; index maps name to position in groups
	groups     []*instancedItem
	groupIndex map[string]int

	aircraft []*instancedItem

	uploader InstanceUploader

	// computePool refreshes world bounds in parallel ahead of each frame.
	// Workers persist across frames.
	computePool    worker.DynamicWorkerPool
	computeWorkers int
}

// Scene is the geometry source for the shadow pass: streamed tiles with building and
// terrain-hugging meshes, named instance groups, aircraft and the terrain ring data,
// plus the main camera and the cascade set fitted to it.
//
// Scene state may be mutated from loader goroutines; PrepareFrame and the render
// passes run on the render thread.
type Scene interface {
	// Name returns the scene name.
	//
	// Returns:
	//   - string: the name
	Name() string

	// Camera returns the main camera.
	//
	// Returns:
	//   - camera.Camera: the camera
	Camera() camera.Camera

	// CSM returns the cascade set attached to the main camera.
	//
	// Returns:
	//   - csm.CSM: the cascade set
	CSM() csm.CSM

	// Terrain returns the terrain ring data.
	//
	// Returns:
	//   - Terrain: the terrain
	Terrain() Terrain

	// AddTile appends a tile.
	//
	// Parameters:
	//   - t: the tile
	AddTile(t Tile)

	// Tiles returns a snapshot of the tiles in insertion order.
	//
	// Returns:
	//   - []Tile: the tiles
	Tiles() []Tile

	// AddInstanceGroup registers a named instance group. Registering an existing name
	// replaces the group in place, keeping its position.
	//
	// Parameters:
	//   - name: the group name; "tree" selects the foliage material
	//   - m: the instanced mesh
	//
	// Returns:
	//   - InstancedItem: the registered group
	AddInstanceGroup(name string, m model.Model) InstancedItem

	// InstanceGroup looks up a group by name.
	//
	// Parameters:
	//   - name: the group name
	//
	// Returns:
	//   - InstancedItem: the group
	//   - bool: true if found
	InstanceGroup(name string) (InstancedItem, bool)

	// InstanceGroups returns the groups in registration order.
	//
	// Returns:
	//   - []InstancedItem: the groups
	InstanceGroups() []InstancedItem

	// RemoveInstanceGroup unregisters a group.
	//
	// Parameters:
	//   - name: the group name
	//
	// Returns:
	//   - bool: true if a group was removed
	RemoveInstanceGroup(name string) bool

	// AddAircraft appends an aircraft group.
	//
	// Parameters:
	//   - name: a label for logging
	//   - m: the instanced aircraft mesh
	//
	// Returns:
	//   - InstancedItem: the aircraft group
	AddAircraft(name string, m model.Model) InstancedItem

	// Aircraft returns the aircraft groups in insertion order.
	//
	// Returns:
	//   - []InstancedItem: the aircraft
	Aircraft() []InstancedItem

	// PrepareFrame updates the camera and cascades, refreshes every item's world bounds
	// and uploads changed instance transforms. It must complete before the graph renders.
	PrepareFrame()

	// Close stops the scene's worker pool.
	Close()
}

var _ Scene = &scene{}

// NewScene creates a scene around a main camera.
// Without options the scene gets a cascade set on the camera and flat 64x64x4 terrain.
//
// Parameters:
//   - name: the scene name
//   - cam: the main camera
//   - options: functional options to configure the scene
//
// Returns:
//   - Scene: the newly created scene
func NewScene(name string, cam camera.Camera, options ...SceneBuilderOption) Scene {
	if cam == nil {
		panic("scene: camera must not be nil")
	}

	s := &scene{
		mu:             &sync.RWMutex{},
		name:           name,
		camera:         cam,
		groupIndex:     make(map[string]int),
		computeWorkers: max(runtime.NumCPU()-1, 1),
	}

	for _, option := range options {
		option(s)
	}

	if s.csm == nil {
		s.csm = csm.NewCSM(csm.WithCamera(cam))
	}
	if s.terrain == nil {
		s.terrain = NewTerrain(64, 4)
	}

	s.computePool = worker.NewDynamicWorkerPool(s.computeWorkers, 256, 1*time.Second)
	return s
}

func (s *scene) Name() string {
	return s.name
}

func (s *scene) Camera() camera.Camera {
	return s.camera
}

func (s *scene) CSM() csm.CSM {
	return s.csm
}

func (s *scene) Terrain() Terrain {
	return s.terrain
}

func (s *scene) AddTile(t Tile) {
	if t == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tiles = append(s.tiles, t)
}

func (s *scene) Tiles() []Tile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Tile, len(s.tiles))
	copy(out, s.tiles)
	return out
}

func (s *scene) AddInstanceGroup(name string, m model.Model) InstancedItem {
	item := newInstancedItem(name, m)
	if m != nil && m.InstanceCount() > 0 {
		item.dirty = true
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if i, ok := s.groupIndex[name]; ok {
		s.groups[i] = item
		return item
	}
	s.groupIndex[name] = len(s.groups)
	s.groups = append(s.groups, item)
	return item
}

func (s *scene) InstanceGroup(name string) (InstancedItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.groupIndex[name]
	if !ok {
		return nil, false
	}
	return s.groups[i], true
}

func (s *scene) InstanceGroups() []InstancedItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]InstancedItem, len(s.groups))
	for i, g := range s.groups {
		out[i] = g
	}
	return out
}

func (s *scene) RemoveInstanceGroup(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.groupIndex[name]
	if !ok {
		return false
	}
	s.groups = append(s.groups[:i], s.groups[i+1:]...)
	delete(s.groupIndex, name)
	for j := i; j < len(s.groups); j++ {
		s.groupIndex[s.groups[j].name] = j
	}
	return true
}

func (s *scene) AddAircraft(name string, m model.Model) InstancedItem {
	item := newInstancedItem(name, m)
	if m != nil && m.InstanceCount() > 0 {
		item.dirty = true
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.aircraft = append(s.aircraft, item)
	return item
}

func (s *scene) Aircraft() []InstancedItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]InstancedItem, len(s.aircraft))
	for i, a := range s.aircraft {
		out[i] = a
	}
	return out
}

func (s *scene) PrepareFrame() {
	s.camera.Update()
	s.csm.UpdateCascades()

	s.mu.RLock()
	refreshers := make([]boundsRefresher, 0, 2*len(s.tiles)+len(s.groups)+len(s.aircraft))
	uploads := make([]instanceUploadable, 0, len(s.groups)+len(s.aircraft))
	for _, t := range s.tiles {
		for _, it := range []GeometryItem{t.Building(), t.Hugging()} {
			if r, ok := it.(boundsRefresher); ok {
				refreshers = append(refreshers, r)
			}
		}
	}
	for _, g := range s.groups {
		refreshers = append(refreshers, g)
		uploads = append(uploads, g)
	}
	for _, a := range s.aircraft {
		refreshers = append(refreshers, a)
		uploads = append(uploads, a)
	}
	s.mu.RUnlock()

	s.refreshBounds(refreshers)

	for _, u := range uploads {
		m := u.takeDirty()
		if m == nil || s.uploader == nil {
			continue
		}
		if err := s.uploader(m); err != nil {
			log.Printf("[Scene] %v", fmt.Errorf("upload instances for %s: %w", m.Name(), err))
			u.markDirty()
		}
	}
}

// refreshBounds splits the items into one chunk per worker and waits for all of them.
func (s *scene) refreshBounds(items []boundsRefresher) {
	if len(items) == 0 {
		return
	}

	chunk := (len(items) + s.computeWorkers - 1) / s.computeWorkers
	var wg sync.WaitGroup
	for id, start := 0, 0; start < len(items); id, start = id+1, start+chunk {
		end := min(start+chunk, len(items))
		batch := items[start:end]

		wg.Add(1)
		s.computePool.SubmitTask(worker.Task{
			ID: id,
			Do: func() (any, error) {
				defer wg.Done()
				for _, it := range batch {
					it.refreshBounds()
				}
				return nil, nil
			},
		})
	}
	wg.Wait()
}

func (s *scene) Close() {
	if s.computePool != nil {
		s.computePool.Stop()
	}
}
