package csm

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-csm/engine/camera"
	"github.com/Carmen-Shannon/oxy-csm/engine/light"
	"github.com/go-gl/mathgl/mgl32"
)

func newTestCSM(options ...CSMBuilderOption) CSM {
	cam := camera.NewCamera(
		camera.WithNear(1),
		camera.WithFar(10000),
		camera.WithAspect(16.0/9.0),
		camera.WithController(camera.NewStaticController(mgl32.Vec3{0, 50, 0}, mgl32.Vec3{100, 40, 100})),
	)
	sun := light.NewLight(light.WithDirection(-0.3, -1, -0.2))
	return NewCSM(append([]CSMBuilderOption{WithCamera(cam), WithLight(sun)}, options...)...)
}

func TestConfigForTier(t *testing.T) {
	tests := []struct {
		tier QualityTier
		want CascadeConfig
	}{
		{TierLow, CascadeConfig{1, 2048, 3000}},
		{TierMedium, CascadeConfig{3, 2048, 4000}},
		{TierHigh, CascadeConfig{3, 4096, 5000}},
		{QualityTier("ultra"), CascadeConfig{3, 4096, 5000}},
		{QualityTier(""), CascadeConfig{3, 4096, 5000}},
	}
	for _, tt := range tests {
		if got := ConfigForTier(tt.tier); got != tt.want {
			t.Errorf("ConfigForTier(%q) = %+v, want %+v", tt.tier, got, tt.want)
		}
	}
}

func TestParseQualityTier(t *testing.T) {
	if got := ParseQualityTier(" Medium "); got != TierMedium {
		t.Errorf("ParseQualityTier = %q, want medium", got)
	}
}

func TestApplyRejectsInvalidConfig(t *testing.T) {
	c := newTestCSM(WithTier(TierLow))
	if err := c.Apply(CascadeConfig{CascadeCount: 0, Resolution: 1024, FarDistance: 10}); err == nil {
		t.Fatal("expected error for zero cascades")
	}
	if got := c.Config(); got != ConfigForTier(TierLow) {
		t.Errorf("config changed after failed Apply: %+v", got)
	}
	if err := c.Apply(ConfigForTier(TierMedium)); err != nil {
		t.Fatalf("Apply(medium): %v", err)
	}
	if c.Cascades() != 3 || c.Resolution() != 2048 || c.Far() != 4000 {
		t.Errorf("unexpected config after Apply: %+v", c.Config())
	}
}

func TestSetCascadesPanicsOutOfRange(t *testing.T) {
	c := newTestCSM()
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	c.SetCascades(light.MaxCascades + 1)
}

func TestPracticalSplits(t *testing.T) {
	splits := PracticalSplits(1, 1000, 3, 0.5)
	if len(splits) != 3 {
		t.Fatalf("len = %d", len(splits))
	}
	if splits[2] != 1000 {
		t.Errorf("last split = %v, want 1000", splits[2])
	}
	for i := 1; i < len(splits); i++ {
		if splits[i] <= splits[i-1] {
			t.Errorf("splits not increasing: %v", splits)
		}
	}

	uniform := PracticalSplits(10, 100, 3, 0)
	if uniform[0] != 40 || uniform[1] != 70 {
		t.Errorf("uniform splits = %v", uniform)
	}
}

func TestUpdateCascadesBuildsOneCameraPerCascade(t *testing.T) {
	c := newTestCSM(WithTier(TierMedium))
	c.UpdateCascades()

	cams := c.CascadeCameras()
	if len(cams) != 3 {
		t.Fatalf("got %d cascade cameras, want 3", len(cams))
	}
	splits := c.SplitDistances()
	for i, cc := range cams {
		if cc.Index() != i {
			t.Errorf("camera %d has index %d", i, cc.Index())
		}
		if cc.Far() != splits[i] {
			t.Errorf("camera %d far = %v, want split %v", i, cc.Far(), splits[i])
		}
	}
	if splits[len(splits)-1] != 4000 {
		t.Errorf("last split = %v, want far distance", splits[len(splits)-1])
	}

	if err := c.Apply(ConfigForTier(TierLow)); err != nil {
		t.Fatal(err)
	}
	if len(c.CascadeCameras()) != 3 {
		t.Error("Apply alone must not rebuild the camera set")
	}
	c.UpdateCascades()
	if len(c.CascadeCameras()) != 1 {
		t.Errorf("got %d cascade cameras after low tier rebuild, want 1", len(c.CascadeCameras()))
	}
}

func TestCascadeCoversItsSlice(t *testing.T) {
	cam := camera.NewCamera(
		camera.WithNear(1),
		camera.WithFar(10000),
		camera.WithController(camera.NewStaticController(mgl32.Vec3{0, 10, 0}, mgl32.Vec3{0, 10, -100})),
	)
	c := NewCSM(WithCamera(cam), WithTier(TierMedium))
	c.UpdateCascades()

	for _, cc := range c.CascadeCameras() {
		f := cc.Frustum()
		for _, p := range cam.FrustumCorners(cc.Near(), cc.Far()) {
			if !f.IntersectsSphere(p, 1e-2*cc.Far()) {
				t.Errorf("cascade %d does not contain slice corner %v", cc.Index(), p)
			}
		}
	}
}

func TestShadowData(t *testing.T) {
	c := newTestCSM(WithTier(TierMedium))
	c.UpdateCascades()

	data := c.ShadowData()
	if data.CascadeCount != 3 {
		t.Errorf("cascade count = %d", data.CascadeCount)
	}
	if data.TexelSize != 1.0/2048 {
		t.Errorf("texel size = %v", data.TexelSize)
	}
	if data.Splits[2] != 4000 {
		t.Errorf("split 2 = %v", data.Splits[2])
	}
	if data.NormalBias <= 0 {
		t.Errorf("normal bias = %v, want positive", data.NormalBias)
	}
	if data.LightVP[0] != c.CascadeCameras()[0].ViewProjection() {
		t.Error("light VP 0 does not match cascade camera 0")
	}
}

func TestUpdateCascadesWithoutCameraPanics(t *testing.T) {
	c := NewCSM()
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	c.UpdateCascades()
}
