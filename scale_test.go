package docview

import (
	"math"
	"testing"
)

func TestComputeTransformNoDownsample(t *testing.T) {
	tests := []struct {
		name    string
		nativeW float64
		nativeH float64
		zoom    int
		wantW   int
		wantH   int
	}{
		{"native size", 200, 300, 100, 200, 300},
		{"half zoom", 200, 300, 50, 100, 150},
		{"double zoom under budget", 200, 300, 200, 400, 600},
		{"max zoom under budget", 200, 300, 350, 700, 1050},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := computeTransform(tt.nativeW, tt.nativeH, tt.zoom, 2048, 2048)
			if tr.width != tt.wantW || tr.height != tt.wantH {
				t.Errorf("got %dx%d, want %dx%d", tr.width, tr.height, tt.wantW, tt.wantH)
			}
			wantScale := float64(tt.zoom) / 100
			if math.Abs(tr.scale-wantScale) > 1e-9 {
				t.Errorf("got scale %f, want %f", tr.scale, wantScale)
			}
		})
	}
}

func TestComputeTransformOversizeTolerance(t *testing.T) {
	// Budget 1000x1000; requests up to 1500 wide pass untouched.
	tr := computeTransform(1400, 700, 100, 1000, 1000)
	if tr.width != 1400 {
		t.Errorf("within tolerance: expected no downsample, got width %d", tr.width)
	}

	// Past the tolerance the request shrinks to the budget.
	tr = computeTransform(1600, 700, 100, 1000, 1000)
	if tr.width != 1000 {
		t.Errorf("past tolerance: expected width 1000, got %d", tr.width)
	}
	if tr.height != int(math.Round(700*1000.0/1600)) {
		t.Errorf("expected aspect preserved, got height %d", tr.height)
	}
}

func TestComputeTransformDownsampleUsesTighterAxis(t *testing.T) {
	// Height is the constraining axis.
	tr := computeTransform(1000, 4000, 100, 1000, 1000)
	if tr.height != 1000 {
		t.Errorf("expected height clamped to 1000, got %d", tr.height)
	}
	if tr.width != 250 {
		t.Errorf("expected width scaled by the same factor, got %d", tr.width)
	}
}

func TestComputeTransformZoomDetail(t *testing.T) {
	// Zooming past 100% relaxes the downsample: at 200% the output
	// may reach 2x the budget instead of being clamped to it.
	tr := computeTransform(2000, 2000, 200, 1000, 1000)
	want := 2000 // 1000 * min(2.0, 3.5)
	if tr.width != want || tr.height != want {
		t.Errorf("expected %dx%d, got %dx%d", want, want, tr.width, tr.height)
	}

	// The detail factor caps at 3.5 no matter the zoom.
	tr = computeTransform(10000, 10000, 350, 1000, 1000)
	if float64(tr.width) > 1000*3.5+1 || float64(tr.height) > 1000*3.5+1 {
		t.Errorf("expected ceiling at 3.5x budget, got %dx%d", tr.width, tr.height)
	}
}

func TestComputeTransformNeverUpsamples(t *testing.T) {
	// The detail relaxation must never push the render past the
	// requested dimensions.
	tr := computeTransform(1200, 1200, 150, 1000, 1000)
	reqW := 1800.0
	if float64(tr.width) > reqW+1 {
		t.Errorf("expected output at most the requested %v, got %d", reqW, tr.width)
	}
	if tr.scale > 1.5+1e-9 {
		t.Errorf("expected final scale at most the base scale, got %f", tr.scale)
	}
}

func TestClampZoom(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{5, 10},
		{10, 10},
		{100, 100},
		{350, 350},
		{400, 350},
		{-50, 10},
	}

	for _, tt := range tests {
		if got := clampZoom(tt.in); got != tt.want {
			t.Errorf("clampZoom(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
