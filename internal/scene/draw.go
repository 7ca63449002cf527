package scene

import (
	"image"
	"image/color"
	"math"
)

// Low-level raster primitives. Everything draws straight into the RGBA
// pixel buffer with clipping, matching how the rest of the pipeline
// avoids per-pixel interface calls.

func setPx(img *image.RGBA, x, y int, c color.RGBA) {
	if x < 0 || y < 0 || x >= img.Rect.Dx() || y >= img.Rect.Dy() {
		return
	}
	i := y*img.Stride + x*4
	img.Pix[i] = c.R
	img.Pix[i+1] = c.G
	img.Pix[i+2] = c.B
	img.Pix[i+3] = c.A
}

func fillCanvas(img *image.RGBA, c color.RGBA) {
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
	}
}

func fillRect(img *image.RGBA, x0, y0, x1, y1 int, c color.RGBA) {
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			setPx(img, x, y, c)
		}
	}
}

func fillDisk(img *image.RGBA, cx, cy int, r float64, c color.RGBA) {
	ri := int(math.Ceil(r))
	for dy := -ri; dy <= ri; dy++ {
		for dx := -ri; dx <= ri; dx++ {
			if float64(dx*dx+dy*dy) <= r*r {
				setPx(img, cx+dx, cy+dy, c)
			}
		}
	}
}

// drawLine stamps a thick segment from (x0,y0) to (x1,y1).
func drawLine(img *image.RGBA, x0, y0, x1, y1 int, thickness float64, c color.RGBA) {
	dx, dy := x1-x0, y1-y0
	steps := int(math.Max(math.Abs(float64(dx)), math.Abs(float64(dy))))
	if steps == 0 {
		fillDisk(img, x0, y0, thickness/2, c)
		return
	}
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		x := x0 + int(math.Round(float64(dx)*t))
		y := y0 + int(math.Round(float64(dy)*t))
		fillDisk(img, x, y, thickness/2, c)
	}
}

// fillHalfDisk fills the upper or lower half of a disk of radius r.
// The boundary row (dy == 0) belongs to both halves, as with the
// 0-180 / 180-360 degree ellipse sweeps this replaces.
func fillHalfDisk(img *image.RGBA, cx, cy, r int, upper bool, c color.RGBA) {
	for dy := -r; dy <= r; dy++ {
		if upper && dy > 0 {
			continue
		}
		if !upper && dy < 0 {
			continue
		}
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy <= r*r {
				setPx(img, cx+dx, cy+dy, c)
			}
		}
	}
}

// strokeHalfCircle outlines the upper or lower half of a circle.
func strokeHalfCircle(img *image.RGBA, cx, cy, r int, thickness float64, upper bool, c color.RGBA) {
	outer := float64(r) + thickness/2
	inner := float64(r) - thickness/2
	ri := int(math.Ceil(outer))
	for dy := -ri; dy <= ri; dy++ {
		if upper && dy > 0 {
			continue
		}
		if !upper && dy < 0 {
			continue
		}
		for dx := -ri; dx <= ri; dx++ {
			d := math.Sqrt(float64(dx*dx + dy*dy))
			if d >= inner && d <= outer {
				setPx(img, cx+dx, cy+dy, c)
			}
		}
	}
}
