package renderer

const (
	// uniformOffsetAlignment is the largest minUniformBufferOffsetAlignment WebGPU allows,
	// so ring strides are valid on every adapter.
	uniformOffsetAlignment = 256

	// uniformRingSlots is the number of blocks one uniform buffer holds before the shadow
	// frame has to submit and start over.
	uniformRingSlots = 512
)

// uniformRing places successive versions of one uniform block at increasing offsets of a
// single buffer. Draws read their version through a dynamic offset, so every draw recorded
// into one submission keeps the values it was recorded with.
//
// The ring keeps a CPU copy of the current block: a write that only covers part of the
// block still uploads a complete block to the new slot.
type uniformRing struct {
	blockSize uint64
	stride    uint64
	slots     int

	slot   int
	used   bool // a draw has read the current slot
	mirror []byte
}

// newUniformRing creates a ring of slots blocks of blockSize bytes.
//
// Parameters:
//   - blockSize: the size of the uniform block in bytes
//   - slots: the number of blocks the buffer holds
//
// Returns:
//   - *uniformRing: the ring, positioned on slot 0
func newUniformRing(blockSize uint64, slots int) *uniformRing {
	if slots < 1 {
		slots = 1
	}
	return &uniformRing{
		blockSize: blockSize,
		stride:    alignUp(blockSize, uniformOffsetAlignment),
		slots:     slots,
		mirror:    make([]byte, blockSize),
	}
}

// bufferSize is the size of the GPU buffer backing the ring.
func (r *uniformRing) bufferSize() uint64 {
	return r.stride * uint64(r.slots)
}

// stage copies data into the current block at offset. When a draw already read the current
// slot the ring first moves to the next one. It returns false, changing nothing, when every
// slot has been read since the last reset.
func (r *uniformRing) stage(offset uint64, data []byte) bool {
	if r.used {
		if r.slot+1 >= r.slots {
			return false
		}
		r.slot++
		r.used = false
	}
	copy(r.mirror[min(offset, r.blockSize):], data)
	return true
}

// offset is the byte offset of the current slot in the buffer.
func (r *uniformRing) offset() uint64 {
	return uint64(r.slot) * r.stride
}

// block is the staged content of the current slot.
func (r *uniformRing) block() []byte {
	return r.mirror
}

// markUsed records that a draw reads the current slot.
func (r *uniformRing) markUsed() {
	r.used = true
}

func (r *uniformRing) dynamicOffset() uint32 {
	return uint32(r.offset())
}

// reset rewinds to slot 0 once the draws reading the ring have been submitted.
// The mirror is kept so the next write still carries unchanged members.
func (r *uniformRing) reset() {
	r.slot = 0
	r.used = false
}

func alignUp(n, align uint64) uint64 {
	return (n + align - 1) / align * align
}
