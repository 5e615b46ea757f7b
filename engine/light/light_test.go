package light

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestNewLightNormalizesDirection(t *testing.T) {
	l := NewLight(WithDirection(0, -3, 4))
	if !l.Direction().ApproxEqual(mgl32.Vec3{0, -0.6, 0.8}) {
		t.Fatalf("direction = %v", l.Direction())
	}

	l.SetDirection(mgl32.Vec3{})
	if !l.Direction().ApproxEqual(mgl32.Vec3{0, -0.6, 0.8}) {
		t.Errorf("zero direction should be ignored, got %v", l.Direction())
	}
}

func TestCascadeShadowDataMarshalLayout(t *testing.T) {
	d := GPUCascadeShadowData{
		TexelSize:    1.0 / 2048,
		Bias:         DefaultShadowBias,
		CascadeCount: 3,
	}
	d.LightVP[1] = mgl32.Ident4()
	d.Splits = [MaxCascades]float32{10, 100, 1000, 0}

	buf := d.Marshal()
	if len(buf) != d.Size() {
		t.Fatalf("len = %d, want %d", len(buf), d.Size())
	}

	f := func(off int) float32 { return math.Float32frombits(binary.LittleEndian.Uint32(buf[off:])) }
	if f(64) != 1 || f(64+20) != 1 {
		t.Errorf("cascade 1 identity not at offset 64: %v %v", f(64), f(84))
	}
	if f(256+4) != 100 {
		t.Errorf("split 1 = %v, want 100", f(260))
	}
	if f(272) != d.TexelSize {
		t.Errorf("texel size = %v", f(272))
	}
	if got := binary.LittleEndian.Uint32(buf[284:]); got != 3 {
		t.Errorf("cascade count = %d, want 3", got)
	}
}

func TestComputeNormalBias(t *testing.T) {
	var d GPUCascadeShadowData
	d.ComputeNormalBias(2048, 2, 1024)
	if d.NormalBias != 4 {
		t.Errorf("normal bias = %v, want 4", d.NormalBias)
	}
	d.ComputeNormalBias(10, 2, 0)
	if d.NormalBias != 0 {
		t.Errorf("zero resolution should give zero bias, got %v", d.NormalBias)
	}
}
