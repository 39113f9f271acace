package docview

import "math"

// Zoom bounds in percent.
const (
	// MinZoomPercent is the smallest committed zoom.
	MinZoomPercent = 10

	// MaxZoomPercent is the largest committed zoom.
	MaxZoomPercent = 350
)

const (
	// oversizeTolerance is the allowed multiple of the render budget
	// before downsampling kicks in.
	oversizeTolerance = 1.5

	// maxZoomDetail caps the extra detail granted when zoomed past
	// 100%. Combined with the detail formula it bounds output
	// dimensions to maxZoomDetail times the render budget.
	maxZoomDetail = 3.5
)

// transform is the resolved render request for one page at one zoom:
// the scale handed to the decoder and the output dimensions that scale
// produces. Callers must use the decoder's reported dimensions for the
// final buffer; width/height here exist for layout before rendering.
type transform struct {
	scale  float64
	width  int
	height int
}

// computeTransform resolves the zoom percent against the native page
// bounds and the render-buffer budget.
//
// baseScale is zoom/100. When the requested dimensions exceed the
// budget by more than the oversize tolerance, a downsample factor
// shrinks the render to fit. Zooming past 100% relaxes the downsample
// (up to maxZoomDetail times the budget) so panning around a magnified
// page still shows real detail. The downsample factor never exceeds
// 1.0: the engine shrinks oversized requests, it never upsamples them.
func computeTransform(nativeW, nativeH float64, zoom, maxW, maxH int) transform {
	base := float64(zoom) / 100.0
	reqW := nativeW * base
	reqH := nativeH * base

	budgetW := float64(maxW)
	budgetH := float64(maxH)

	down := 1.0
	if reqW > budgetW*oversizeTolerance || reqH > budgetH*oversizeTolerance {
		down = math.Min(budgetW/reqW, budgetH/reqH)

		if base > 1.0 {
			zf := math.Min(base, maxZoomDetail)
			detail := math.Min(budgetW*zf/reqW, budgetH*zf/reqH)
			down = math.Max(down, detail)
		}
		if down > 1.0 {
			down = 1.0
		}
	}

	scale := base * down
	return transform{
		scale:  scale,
		width:  int(math.Round(nativeW * scale)),
		height: int(math.Round(nativeH * scale)),
	}
}

// clampZoom clamps a zoom percent to [MinZoomPercent, MaxZoomPercent].
func clampZoom(zoom int) int {
	if zoom < MinZoomPercent {
		return MinZoomPercent
	}
	if zoom > MaxZoomPercent {
		return MaxZoomPercent
	}
	return zoom
}
