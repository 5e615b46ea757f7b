package scene

import (
	"fmt"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// TileParams places a tile's hugging mesh on the terrain ring heightfield.
type TileParams struct {
	Ring0       float32    // world size of the finest ring
	LevelID     int32      // ring level the tile samples
	Ring0Offset mgl32.Vec2 // tile origin in ring 0 texture space
	Ring1Offset mgl32.Vec2 // tile origin in ring 1 texture space
}

// Terrain holds per-tile ring parameters and the CPU copy of the ring heightfield.
// Heights are uploaded to the TerrainRingHeight texture array by the RingHeightPass.
type Terrain interface {
	// TileParams returns the ring parameters for a tile, or the zero value for unknown tiles.
	//
	// Parameters:
	//   - t: the tile
	//
	// Returns:
	//   - TileParams: the parameters
	TileParams(t Tile) TileParams

	// SetTileParams stores the ring parameters for a tile id.
	//
	// Parameters:
	//   - tileID: the tile id
	//   - p: the parameters
	SetTileParams(tileID int, p TileParams)

	// Levels returns the number of ring levels (texture array layers).
	//
	// Returns:
	//   - int: the level count
	Levels() int

	// Resolution returns the width and height of each ring level in texels.
	//
	// Returns:
	//   - int: the resolution
	Resolution() int

	// RingHeights returns a copy of one level's heights, row-major.
	//
	// Parameters:
	//   - level: the ring level
	//
	// Returns:
	//   - []float32: resolution*resolution heights
	RingHeights(level int) []float32

	// SetRingHeights replaces one level's heights.
	//
	// Parameters:
	//   - level: the ring level
	//   - heights: resolution*resolution heights, row-major
	//
	// Returns:
	//   - error: an error if the level or length is out of range
	SetRingHeights(level int, heights []float32) error

	// Version increments every time heights change.
	//
	// Returns:
	//   - uint64: the version
	Version() uint64
}

type terrain struct {
	mu *sync.RWMutex

	resolution int
	levels     [][]float32
	params     map[int]TileParams
	version    uint64
}

var _ Terrain = &terrain{}

// NewTerrain creates flat terrain with the given ring resolution and level count.
//
// Parameters:
//   - resolution: texels per side of each ring level
//   - levels: the number of ring levels
//
// Returns:
//   - Terrain: the terrain
func NewTerrain(resolution, levels int) Terrain {
	if resolution <= 0 || levels <= 0 {
		panic(fmt.Sprintf("scene: invalid terrain size %dx%d", resolution, levels))
	}
	t := &terrain{
		mu:         &sync.RWMutex{},
		resolution: resolution,
		levels:     make([][]float32, levels),
		params:     make(map[int]TileParams),
		version:    1,
	}
	for i := range t.levels {
		t.levels[i] = make([]float32, resolution*resolution)
	}
	return t
}

func (t *terrain) TileParams(tl Tile) TileParams {
	if tl == nil {
		return TileParams{}
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.params[tl.ID()]
}

func (t *terrain) SetTileParams(tileID int, p TileParams) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.params[tileID] = p
}

func (t *terrain) Levels() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.levels)
}

func (t *terrain) Resolution() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.resolution
}

func (t *terrain) RingHeights(level int) []float32 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if level < 0 || level >= len(t.levels) {
		return nil
	}
	out := make([]float32, len(t.levels[level]))
	copy(out, t.levels[level])
	return out
}

func (t *terrain) SetRingHeights(level int, heights []float32) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if level < 0 || level >= len(t.levels) {
		return fmt.Errorf("scene: ring level %d out of range [0, %d)", level, len(t.levels))
	}
	if want := t.resolution * t.resolution; len(heights) != want {
		return fmt.Errorf("scene: ring level %d needs %d heights, got %d", level, want, len(heights))
	}
	copy(t.levels[level], heights)
	t.version++
	return nil
}

func (t *terrain) Version() uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.version
}
