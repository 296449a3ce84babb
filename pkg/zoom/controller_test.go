package zoom

import (
	"image"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/menta2k/camera-core/pkg/cropper"
	"github.com/menta2k/camera-core/pkg/types"
)

const eps = 1e-9

var testLimits = types.SensorLimits{
	ActiveArraySize: image.Rect(0, 0, 4000, 3000),
	MaxDigitalZoom:  4.0,
}

// pair returns two contacts spacing apart on the x axis
func pair(spacing float64) []types.Point {
	return []types.Point{{X: 100, Y: 500}, {X: 100 + spacing, Y: 500}}
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < eps
}

// feed sends a spacing sequence as consecutive two-finger samples
func feed(c *Controller, limits types.SensorLimits, viewportMin int, recording bool, spacings ...float64) (float64, bool) {
	var zoom float64
	var applied bool
	for _, s := range spacings {
		zoom, applied = c.ProcessGestureSample(limits, pair(s), viewportMin, recording)
	}
	return zoom, applied
}

func TestNew(t *testing.T) {
	c := New()
	if c == nil {
		t.Fatal("New() returned nil")
	}

	s := c.State()
	if s.ZoomLevel != 1 || s.BitmapZoom != 1 {
		t.Errorf("Expected zoom 1x1, got %v x %v", s.ZoomLevel, s.BitmapZoom)
	}
	if s.LastFingerSpacing != 0 {
		t.Errorf("Expected no finger spacing, got %v", s.LastFingerSpacing)
	}
	if _, ok := c.CropRegion(); ok {
		t.Error("Expected no crop region before any gesture")
	}
	if c.Tuning() != DefaultTuning() {
		t.Errorf("Expected default tuning, got %+v", c.Tuning())
	}
}

func TestWithTuning(t *testing.T) {
	c := New(WithTuning(Tuning{OpticalStep: 0.5}))
	if c.Tuning().OpticalStep != 0.5 {
		t.Errorf("Expected optical step 0.5, got %v", c.Tuning().OpticalStep)
	}
	if c.Tuning().DigitalStepDivisor != DefaultDigitalStepDivisor {
		t.Errorf("Expected default divisor to be kept, got %v", c.Tuning().DigitalStepDivisor)
	}

	feed(c, testLimits, 1080, false, 100, 200)
	if !approx(c.ZoomLevel(), 1.5) {
		t.Errorf("Expected zoom level 1.5 with step 0.5, got %v", c.ZoomLevel())
	}
}

func TestFirstSampleRecordsBaseline(t *testing.T) {
	c := New()

	zoom, applied := c.ProcessGestureSample(testLimits, pair(150), 1080, false)
	if applied {
		t.Error("Expected baseline sample not to apply a crop")
	}
	if zoom != 1 {
		t.Errorf("Expected effective zoom 1, got %v", zoom)
	}
	if c.State().LastFingerSpacing != 150 {
		t.Errorf("Expected spacing 150 recorded, got %v", c.State().LastFingerSpacing)
	}
	if _, ok := c.CropRegion(); ok {
		t.Error("Expected no crop region after the baseline sample")
	}
}

func TestSpreadZoomsIn(t *testing.T) {
	c := New()

	zoom, applied := feed(c, testLimits, 1080, false, 100, 200)
	if !applied {
		t.Fatal("Expected crop to be applied")
	}
	if !approx(zoom, 1.8) {
		t.Errorf("Expected effective zoom 1.8, got %v", zoom)
	}

	region, ok := c.CropRegion()
	if !ok {
		t.Fatal("Expected crop region")
	}
	want := cropper.SensorRegion(testLimits.ActiveArraySize, 1.8)
	if region != want {
		t.Errorf("Expected crop %v, got %v", want, region)
	}
	if c.State().LastFingerSpacing != 200 {
		t.Errorf("Expected spacing 200, got %v", c.State().LastFingerSpacing)
	}
}

func TestSpreadPastOpticalLimitGrowsBitmapZoom(t *testing.T) {
	limits := testLimits
	limits.MaxDigitalZoom = 2.0
	c := New()

	feed(c, limits, 1080, false, 100, 110)
	if !approx(c.ZoomLevel(), 1.8) || c.CurrentBitmapZoom() != 1 {
		t.Fatalf("Expected 1.8 optical / 1 digital, got %v / %v", c.ZoomLevel(), c.CurrentBitmapZoom())
	}

	// headroom 0.2 <= 0.8: clamp optical and grow digital
	feed(c, limits, 1080, false, 120)
	if c.ZoomLevel() != 2.0 {
		t.Errorf("Expected optical zoom clamped to 2, got %v", c.ZoomLevel())
	}
	if !approx(c.CurrentBitmapZoom(), 1.04) {
		t.Errorf("Expected bitmap zoom 1.04, got %v", c.CurrentBitmapZoom())
	}

	zoom, _ := feed(c, limits, 1080, false, 130)
	if c.ZoomLevel() != 2.0 {
		t.Errorf("Expected optical zoom to stay at 2, got %v", c.ZoomLevel())
	}
	if !approx(c.CurrentBitmapZoom(), 1.04*1.04) {
		t.Errorf("Expected bitmap zoom 1.0816, got %v", c.CurrentBitmapZoom())
	}
	if !approx(zoom, 2*1.04*1.04) {
		t.Errorf("Expected effective zoom %v, got %v", 2*1.04*1.04, zoom)
	}
}

func TestRecordingBlocksBitmapZoom(t *testing.T) {
	limits := testLimits
	limits.MaxDigitalZoom = 1.5
	c := New()

	feed(c, limits, 1080, true, 100, 110, 120, 130, 140)
	if c.ZoomLevel() != 1.5 {
		t.Errorf("Expected optical zoom 1.5, got %v", c.ZoomLevel())
	}
	if c.CurrentBitmapZoom() != 1 {
		t.Errorf("Expected no bitmap zoom while recording, got %v", c.CurrentBitmapZoom())
	}
}

func TestBitmapZoomStopsWhenViewportExhausted(t *testing.T) {
	limits := testLimits
	limits.MaxDigitalZoom = 1.0
	c := New()

	// 1 / 1.04 truncates to 0: the viewport cannot shrink any further
	feed(c, limits, 1, false, 100, 110, 120)
	if c.CurrentBitmapZoom() != 1 {
		t.Errorf("Expected bitmap zoom to stay at 1, got %v", c.CurrentBitmapZoom())
	}

	// a 2px viewport allows bitmap zoom up to 2
	c = New()
	spacing := 100.0
	c.ProcessGestureSample(limits, pair(spacing), 2, false)
	for i := 0; i < 100; i++ {
		spacing++
		c.ProcessGestureSample(limits, pair(spacing), 2, false)
	}
	if c.CurrentBitmapZoom() > 2 {
		t.Errorf("Expected bitmap zoom capped by viewport at 2, got %v", c.CurrentBitmapZoom())
	}
	if c.CurrentBitmapZoom() < 1.9 {
		t.Errorf("Expected bitmap zoom to approach 2, got %v", c.CurrentBitmapZoom())
	}
}

func TestPinchUnwindsDigitalZoomFirst(t *testing.T) {
	limits := testLimits
	limits.MaxDigitalZoom = 2.0
	c := New()

	feed(c, limits, 1080, false, 100, 110, 120, 130)
	if c.ZoomLevel() != 2 || !approx(c.CurrentBitmapZoom(), 1.0816) {
		t.Fatalf("Setup: expected 2 / 1.0816, got %v / %v", c.ZoomLevel(), c.CurrentBitmapZoom())
	}

	feed(c, limits, 1080, false, 120)
	if c.ZoomLevel() != 2 {
		t.Errorf("Expected optical zoom untouched while digital zoom active, got %v", c.ZoomLevel())
	}
	if !approx(c.CurrentBitmapZoom(), 1.0816-1.0816/25) {
		t.Errorf("Expected bitmap zoom %v, got %v", 1.0816-1.0816/25, c.CurrentBitmapZoom())
	}

	// 1.038336 - 1.038336/25 < 1: floored
	feed(c, limits, 1080, false, 110)
	if c.CurrentBitmapZoom() != 1 {
		t.Errorf("Expected bitmap zoom floored at 1, got %v", c.CurrentBitmapZoom())
	}
	if c.ZoomLevel() != 2 {
		t.Errorf("Expected optical zoom still 2, got %v", c.ZoomLevel())
	}

	feed(c, limits, 1080, false, 100)
	if !approx(c.ZoomLevel(), 1.2) {
		t.Errorf("Expected optical zoom 1.2, got %v", c.ZoomLevel())
	}

	// step clamped to the remaining 0.2
	feed(c, limits, 1080, false, 90)
	if c.ZoomLevel() != 1 {
		t.Errorf("Expected optical zoom 1, got %v", c.ZoomLevel())
	}

	zoom, applied := feed(c, limits, 1080, false, 80)
	if zoom != 1 || !applied {
		t.Errorf("Expected (1, true) at the floor, got (%v, %v)", zoom, applied)
	}
	region, _ := c.CropRegion()
	if region != limits.ActiveArraySize {
		t.Errorf("Expected full sensor crop at zoom 1, got %v", region)
	}
}

func TestEqualSpacingRecomputesCrop(t *testing.T) {
	c := New()

	zoom, applied := feed(c, testLimits, 1080, false, 100, 100)
	if !applied {
		t.Error("Expected crop to be applied for a steady sample")
	}
	if zoom != 1 {
		t.Errorf("Expected zoom unchanged, got %v", zoom)
	}
	if _, ok := c.CropRegion(); !ok {
		t.Error("Expected crop region to be computed")
	}
}

func TestContactLossResetsBaseline(t *testing.T) {
	c := New()
	feed(c, testLimits, 1080, false, 100, 200)
	before := c.State()

	for _, contacts := range [][]types.Point{nil, {{X: 1, Y: 1}}, {{}, {}, {}}} {
		zoom, applied := c.ProcessGestureSample(testLimits, contacts, 1080, false)
		if applied {
			t.Errorf("%d contacts: expected no crop update", len(contacts))
		}
		if !approx(zoom, before.EffectiveZoom()) {
			t.Errorf("%d contacts: expected zoom %v, got %v", len(contacts), before.EffectiveZoom(), zoom)
		}
		if c.State().LastFingerSpacing != 0 {
			t.Errorf("%d contacts: expected spacing reset", len(contacts))
		}
	}

	region, ok := c.CropRegion()
	if !ok || region != before.CropRegion {
		t.Errorf("Expected crop region to survive contact loss, got %v", region)
	}

	// Re-establishing contact far apart must not read as a spread
	zoom, applied := c.ProcessGestureSample(testLimits, pair(900), 1080, false)
	if applied || !approx(zoom, before.EffectiveZoom()) {
		t.Errorf("Expected baseline sample, got (%v, %v)", zoom, applied)
	}

	c.ProcessGestureSample(testLimits, pair(850), 1080, false)
	if !approx(c.ZoomLevel(), 1.0) {
		t.Errorf("Expected pinch from the new baseline to zoom out to 1, got %v", c.ZoomLevel())
	}
}

func TestMissingCapabilityIsNoop(t *testing.T) {
	tests := []struct {
		name   string
		limits types.SensorLimits
	}{
		{"no active array", types.SensorLimits{MaxDigitalZoom: 4}},
		{"no max zoom", types.SensorLimits{ActiveArraySize: image.Rect(0, 0, 100, 100)}},
		{"nan max zoom", types.SensorLimits{ActiveArraySize: image.Rect(0, 0, 100, 100), MaxDigitalZoom: math.NaN()}},
		{"nothing", types.SensorLimits{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New()
			feed(c, testLimits, 1080, false, 100, 200)
			before := c.State()

			for _, s := range []float64{300, 400, 10} {
				zoom, applied := c.ProcessGestureSample(tt.limits, pair(s), 1080, false)
				if applied {
					t.Error("Expected no crop when capability is missing")
				}
				if zoom != before.EffectiveZoom() {
					t.Errorf("Expected last effective zoom %v, got %v", before.EffectiveZoom(), zoom)
				}
			}
			if c.State() != before {
				t.Errorf("Expected state untouched, got %+v", c.State())
			}
		})
	}
}

func TestNonFiniteSpacingResetsBaseline(t *testing.T) {
	c := New()
	feed(c, testLimits, 1080, false, 100)

	bad := []types.Point{{X: math.Inf(1), Y: 0}, {X: 0, Y: 0}}
	if _, applied := c.ProcessGestureSample(testLimits, bad, 1080, false); applied {
		t.Error("Expected no crop for a non-finite spacing")
	}
	if c.State().LastFingerSpacing != 0 {
		t.Errorf("Expected spacing reset, got %v", c.State().LastFingerSpacing)
	}
}

func TestApplyCropToRequest(t *testing.T) {
	c := New()
	sink := &RecordingSink{}

	zoom := c.ApplyCropToRequest(sink)
	if zoom != 1 {
		t.Errorf("Expected zoom 1, got %v", zoom)
	}
	if last, _ := sink.Last(); last != (image.Rectangle{}) {
		t.Errorf("Expected zero rectangle before any gesture, got %v", last)
	}

	feed(c, testLimits, 1080, false, 100, 200)
	want, _ := c.CropRegion()

	first := c.ApplyCropToRequest(sink)
	second := c.ApplyCropToRequest(sink)
	if first != second || !approx(first, 1.8) {
		t.Errorf("Expected idempotent zoom 1.8, got %v then %v", first, second)
	}
	if len(sink.Regions) != 3 {
		t.Fatalf("Expected 3 writes, got %d", len(sink.Regions))
	}
	if sink.Regions[1] != want || sink.Regions[2] != want {
		t.Errorf("Expected both writes to carry %v, got %v", want, sink.Regions[1:])
	}
}

func TestResetDigitalZoomToMax(t *testing.T) {
	limits := testLimits
	limits.MaxDigitalZoom = 2.0
	c := New()
	feed(c, limits, 1080, false, 100, 110, 120, 130, 140)
	if c.CurrentBitmapZoom() <= 1 {
		t.Fatalf("Setup: expected digital zoom, got %v", c.CurrentBitmapZoom())
	}
	crop, _ := c.CropRegion()

	other := types.SensorLimits{ActiveArraySize: image.Rect(0, 0, 1000, 800), MaxDigitalZoom: 8}
	var written []image.Rectangle
	optical := c.ResetDigitalZoomToMax(other, CropSinkFunc(func(r image.Rectangle) {
		written = append(written, r)
	}))

	if optical != 2 {
		t.Errorf("Expected unchanged optical zoom 2, got %v", optical)
	}
	if c.CurrentBitmapZoom() != 1 {
		t.Errorf("Expected bitmap zoom 1, got %v", c.CurrentBitmapZoom())
	}
	if len(written) != 1 || written[0] != crop {
		t.Errorf("Expected the existing crop %v to be written, got %v", crop, written)
	}
	if got, _ := c.CropRegion(); got != crop {
		t.Errorf("Expected crop region not to be recomputed, got %v", got)
	}

	// Already at 1: still 1
	c.ResetDigitalZoomToMax(other, &RecordingSink{})
	if c.CurrentBitmapZoom() != 1 {
		t.Errorf("Expected bitmap zoom 1, got %v", c.CurrentBitmapZoom())
	}
}

func TestZoomLevelClampedToNewSensor(t *testing.T) {
	small := types.SensorLimits{ActiveArraySize: image.Rect(0, 0, 1000, 800), MaxDigitalZoom: 2}

	t.Run("pinch", func(t *testing.T) {
		c := New()
		feed(c, testLimits, 1080, false, 100, 110, 120, 130, 140)
		if c.ZoomLevel() <= 2 {
			t.Fatalf("Setup: expected zoom above 2, got %v", c.ZoomLevel())
		}
		c.ResetDigitalZoomToMax(small, &RecordingSink{})

		_, applied := c.ProcessGestureSample(small, pair(130), 1080, false)
		if !applied {
			t.Fatal("Expected crop to be applied")
		}
		if !approx(c.ZoomLevel(), 1.2) {
			t.Errorf("Expected zoom to drop from the new maximum to 1.2, got %v", c.ZoomLevel())
		}
		if got, _ := c.CropRegion(); !got.In(small.ActiveArraySize) {
			t.Errorf("Expected crop inside the new sensor, got %v", got)
		}
	})

	t.Run("equal spacing", func(t *testing.T) {
		c := New()
		feed(c, testLimits, 1080, false, 100, 110, 120, 130, 140)
		c.ResetDigitalZoomToMax(small, &RecordingSink{})

		effective, _ := c.ProcessGestureSample(small, pair(140), 1080, false)
		if effective != 2 || c.ZoomLevel() != 2 {
			t.Errorf("Expected zoom clamped to 2, got %v", c.ZoomLevel())
		}
		if got, _ := c.CropRegion(); got != image.Rect(250, 200, 750, 600) {
			t.Errorf("Expected crop at 2x on the new sensor, got %v", got)
		}
	})
}

func TestReset(t *testing.T) {
	c := New()
	feed(c, testLimits, 1080, false, 100, 200, 300)
	c.Reset()

	if c.State() != (State{ZoomLevel: 1, BitmapZoom: 1}) {
		t.Errorf("Expected initial state after Reset, got %+v", c.State())
	}
}

func TestRandomGesturesKeepInvariants(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))

	for trial := 0; trial < 50; trial++ {
		limits := types.SensorLimits{
			ActiveArraySize: image.Rect(0, 0, 500+rng.IntN(4000), 500+rng.IntN(3000)),
			MaxDigitalZoom:  1 + rng.Float64()*9,
		}
		viewportMin := 1 + rng.IntN(1500)
		c := New()

		for i := 0; i < 400; i++ {
			var contacts []types.Point
			switch n := rng.IntN(10); {
			case n == 0:
				contacts = nil
			case n == 1:
				contacts = []types.Point{{X: rng.Float64() * 1000, Y: rng.Float64() * 1000}}
			default:
				contacts = []types.Point{
					{X: rng.Float64() * 1000, Y: rng.Float64() * 1000},
					{X: rng.Float64() * 1000, Y: rng.Float64() * 1000},
				}
			}

			zoom, _ := c.ProcessGestureSample(limits, contacts, viewportMin, rng.IntN(4) == 0)
			s := c.State()

			if s.ZoomLevel < 1 || s.ZoomLevel > limits.MaxDigitalZoom {
				t.Fatalf("trial %d step %d: zoom level %v outside [1, %v]", trial, i, s.ZoomLevel, limits.MaxDigitalZoom)
			}
			if s.BitmapZoom < 1 {
				t.Fatalf("trial %d step %d: bitmap zoom %v below 1", trial, i, s.BitmapZoom)
			}
			if zoom != s.EffectiveZoom() {
				t.Fatalf("trial %d step %d: returned %v, state says %v", trial, i, zoom, s.EffectiveZoom())
			}
			if s.HasCropRegion {
				if !s.CropRegion.In(limits.ActiveArraySize) || !cropper.IsCentered(s.CropRegion, limits.ActiveArraySize) {
					t.Fatalf("trial %d step %d: crop %v not centered in %v", trial, i, s.CropRegion, limits.ActiveArraySize)
				}
			}
		}
	}
}

func TestMonotonicSpreadNeverDecreasesZoom(t *testing.T) {
	for _, recording := range []bool{false, true} {
		c := New()
		prev := c.EffectiveZoom()
		for spacing := 10.0; spacing < 2000; spacing += 7 {
			zoom, _ := c.ProcessGestureSample(testLimits, pair(spacing), 1080, recording)
			if zoom < prev {
				t.Fatalf("recording=%v spacing %v: zoom dropped from %v to %v", recording, spacing, prev, zoom)
			}
			prev = zoom
		}
		if c.ZoomLevel() != testLimits.MaxDigitalZoom {
			t.Errorf("recording=%v: expected optical zoom to reach max, got %v", recording, c.ZoomLevel())
		}
	}
}

func TestMonotonicPinchNeverIncreasesZoom(t *testing.T) {
	c := New()
	feed(c, testLimits, 1080, false, 10, 20, 30, 40, 50, 60, 70, 80, 90, 100)
	if c.CurrentBitmapZoom() <= 1 {
		t.Fatalf("Setup: expected digital zoom, got %v", c.CurrentBitmapZoom())
	}
	startOptical := c.ZoomLevel()

	prev := c.EffectiveZoom()
	for spacing := 99.0; spacing > 0; spacing-- {
		zoom, _ := c.ProcessGestureSample(testLimits, pair(spacing), 1080, false)
		if zoom > prev {
			t.Fatalf("spacing %v: zoom rose from %v to %v", spacing, prev, zoom)
		}
		if c.ZoomLevel() < startOptical && c.CurrentBitmapZoom() != 1 {
			t.Fatalf("spacing %v: optical zoom dropped to %v while bitmap zoom still %v", spacing, c.ZoomLevel(), c.CurrentBitmapZoom())
		}
		prev = zoom
	}
	if c.EffectiveZoom() != 1 {
		t.Errorf("Expected pinching to unwind to 1, got %v", c.EffectiveZoom())
	}
}
