package renderer

import (
	"bytes"
	"testing"
)

func TestUniformRingStride(t *testing.T) {
	cases := []struct {
		block  uint64
		stride uint64
	}{
		{64, 256},
		{96, 256},
		{256, 256},
		{300, 512},
	}
	for _, c := range cases {
		r := newUniformRing(c.block, 4)
		if r.stride != c.stride {
			t.Errorf("stride(%d) = %d, want %d", c.block, r.stride, c.stride)
		}
		if r.bufferSize() != 4*c.stride {
			t.Errorf("bufferSize(%d) = %d, want %d", c.block, r.bufferSize(), 4*c.stride)
		}
	}
}

func TestUniformRingRewritesUnreadSlot(t *testing.T) {
	r := newUniformRing(8, 4)
	for _, v := range []byte{1, 2, 3} {
		if !r.stage(0, []byte{v}) {
			t.Fatal("stage failed on an unread slot")
		}
		if r.offset() != 0 {
			t.Fatalf("offset = %d, want 0 while no draw read the slot", r.offset())
		}
	}
	if r.block()[0] != 3 {
		t.Errorf("block = %v, want the last write", r.block())
	}
}

// Each draw must keep the block it was recorded with, so a write after a draw moves on.
func TestUniformRingAdvancesAfterDraw(t *testing.T) {
	r := newUniformRing(8, 4)
	r.stage(0, []byte{1, 1, 1, 1, 1, 1, 1, 1})
	r.markUsed()
	if r.dynamicOffset() != 0 {
		t.Fatalf("first draw offset = %d, want 0", r.dynamicOffset())
	}

	if !r.stage(4, []byte{9, 9}) {
		t.Fatal("stage failed with free slots")
	}
	if r.offset() != 256 || r.dynamicOffset() != 256 {
		t.Errorf("offset = %d, want 256", r.offset())
	}
	want := []byte{1, 1, 1, 1, 9, 9, 1, 1}
	if !bytes.Equal(r.block(), want) {
		t.Errorf("block = %v, want %v", r.block(), want)
	}
}

func TestUniformRingFullUntilReset(t *testing.T) {
	r := newUniformRing(4, 2)
	r.stage(0, []byte{1})
	r.markUsed()
	r.stage(0, []byte{2})
	r.markUsed()

	if r.stage(0, []byte{3}) {
		t.Fatal("stage succeeded on a full ring")
	}
	if r.offset() != 256 || r.block()[0] != 2 {
		t.Errorf("failed stage changed the ring: offset %d block %v", r.offset(), r.block())
	}

	r.reset()
	if r.offset() != 0 {
		t.Errorf("offset after reset = %d", r.offset())
	}
	if !r.stage(0, []byte{3}) || r.offset() != 0 || r.block()[0] != 3 {
		t.Errorf("stage after reset: offset %d block %v", r.offset(), r.block())
	}
}

func TestUniformRingClampsOutOfRangeWrite(t *testing.T) {
	r := newUniformRing(4, 1)
	if !r.stage(2, []byte{7, 7, 7, 7}) {
		t.Fatal("stage failed")
	}
	if !bytes.Equal(r.block(), []byte{0, 0, 7, 7}) {
		t.Errorf("block = %v", r.block())
	}
	if !r.stage(10, []byte{5}) {
		t.Fatal("stage past the block failed")
	}
	if len(r.block()) != 4 {
		t.Errorf("block grew to %d bytes", len(r.block()))
	}
}
