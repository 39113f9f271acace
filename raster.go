package docview

import (
	"image"
	"image/color"
	"image/png"
	"os"

	xdraw "golang.org/x/image/draw"
)

// Raster is a rectangular pixel buffer holding one rendered page.
// Pixels are packed RGBA, 4 bytes per pixel. A Raster is never mutated
// after the render that produced it completes; the cache and consumers
// share it by reference.
type Raster struct {
	width  int
	height int
	data   []uint8 // RGBA format, 4 bytes per pixel
}

// NewRaster creates a zeroed raster with the given dimensions.
func NewRaster(width, height int) *Raster {
	return &Raster{
		width:  width,
		height: height,
		data:   make([]uint8, width*height*4),
	}
}

// Width returns the width of the raster in pixels.
func (r *Raster) Width() int {
	return r.width
}

// Height returns the height of the raster in pixels.
func (r *Raster) Height() int {
	return r.height
}

// Data returns the raw pixel data (RGBA format).
func (r *Raster) Data() []uint8 {
	return r.data
}

// FromRGB builds a raster from packed 24-bit RGB pixels (3 bytes per
// pixel), the format the baseline Document contract produces. Alpha is
// set fully opaque.
func FromRGB(rgb []byte, width, height int) *Raster {
	r := NewRaster(width, height)
	n := width * height
	for i := 0; i < n; i++ {
		r.data[i*4+0] = rgb[i*3+0]
		r.data[i*4+1] = rgb[i*3+1]
		r.data[i*4+2] = rgb[i*3+2]
		r.data[i*4+3] = 0xff
	}
	return r
}

// FromImage creates a raster from an image, copying the pixels.
func FromImage(img image.Image) *Raster {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	r := NewRaster(width, height)

	// Fast path for RGBA images with the same packing.
	if rgba, ok := img.(*image.RGBA); ok && rgba.Stride == width*4 && bounds.Min == (image.Point{}) {
		copy(r.data, rgba.Pix)
		return r
	}

	dst := &image.RGBA{Pix: r.data, Stride: width * 4, Rect: image.Rect(0, 0, width, height)}
	xdraw.Draw(dst, dst.Rect, img, bounds.Min, xdraw.Src)
	return r
}

// Scaled returns a new raster resampled to the given dimensions using
// bilinear interpolation. The receiver is left untouched. Used to size a
// stale preview buffer to the current target dimensions while the exact
// render is still in flight.
func (r *Raster) Scaled(width, height int) *Raster {
	if width == r.width && height == r.height {
		return r
	}

	out := NewRaster(width, height)
	src := &image.RGBA{Pix: r.data, Stride: r.width * 4, Rect: image.Rect(0, 0, r.width, r.height)}
	dst := &image.RGBA{Pix: out.data, Stride: width * 4, Rect: image.Rect(0, 0, width, height)}
	xdraw.ApproxBiLinear.Scale(dst, dst.Rect, src, src.Rect, xdraw.Src, nil)
	return out
}

// ToImage converts the raster to an image.RGBA, copying the pixels.
func (r *Raster) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, r.width, r.height))
	copy(img.Pix, r.data)
	return img
}

// SavePNG saves the raster to a PNG file.
func (r *Raster) SavePNG(path string) error {
	f, err := os.Create(path) //nolint:gosec // path is user-provided intentionally
	if err != nil {
		return err
	}
	defer func() {
		_ = f.Close()
	}()

	return png.Encode(f, r.ToImage())
}

// At implements the image.Image interface.
func (r *Raster) At(x, y int) color.Color {
	if x < 0 || x >= r.width || y < 0 || y >= r.height {
		return color.RGBA{}
	}
	i := (y*r.width + x) * 4
	return color.RGBA{R: r.data[i+0], G: r.data[i+1], B: r.data[i+2], A: r.data[i+3]}
}

// Bounds implements the image.Image interface.
func (r *Raster) Bounds() image.Rectangle {
	return image.Rect(0, 0, r.width, r.height)
}

// ColorModel implements the image.Image interface.
func (r *Raster) ColorModel() color.Model {
	return color.RGBAModel
}
