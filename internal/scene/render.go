// Package scene rasterizes one frame of the animation from explicit
// parameters. Rendering is a pure function of its inputs: no internal
// state, no I/O, safe to call from any number of goroutines.
package scene

import (
	"image"
	"image/color"
	"math"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var (
	colWhite      = color.RGBA{255, 255, 255, 255}
	colBlack      = color.RGBA{0, 0, 0, 255}
	colDesertSky  = color.RGBA{255, 230, 180, 255}
	colDesertSand = color.RGBA{240, 200, 100, 255}
	colSpace      = color.RGBA{20, 20, 20, 255}
	colGround     = color.RGBA{200, 200, 200, 255}
)

// FrameParams carries everything one frame depends on. Segments hand
// these in by value; the renderer never captures per-event state.
type FrameParams struct {
	Time       float64
	Speaker    string // canonical character id, "" = nobody speaks
	MouthOpen  float64
	Background string
	Caption    string
}

// Renderer draws frames for a fixed resolution and cast.
type Renderer struct {
	width       int
	height      int
	mouthScale  float64
	mouthMaxGap int
	roster      *Roster
}

func NewRenderer(width, height int, mouthScale float64, mouthMaxGap int, roster *Roster) *Renderer {
	return &Renderer{
		width:       width,
		height:      height,
		mouthScale:  mouthScale,
		mouthMaxGap: mouthMaxGap,
		roster:      roster,
	}
}

// MouthGap maps a loudness value to the vertical head offset in pixels.
// The hard ceiling keeps loudness spikes from visually detaching the
// head halves.
func MouthGap(mouthOpen, scale float64, maxGap int) int {
	gap := int(math.Round(mouthOpen * scale))
	if gap < 0 {
		gap = 0
	}
	if gap > maxGap {
		gap = maxGap
	}
	return gap
}

// Render allocates and draws one frame.
func (r *Renderer) Render(p FrameParams) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, r.width, r.height))
	r.RenderInto(img, p)
	return img
}

// RenderInto draws one frame into an existing buffer, overwriting every
// pixel. The buffer must match the renderer's resolution; this is the
// path the encoder uses with recycled frame buffers.
func (r *Renderer) RenderInto(img *image.RGBA, p FrameParams) {
	r.drawBackground(img, p.Background)

	// Имя сравнивается по каноническому id: "bob" и "Bob" — один персонаж
	speaker, known := "", false
	if p.Speaker != "" {
		speaker, known = r.roster.Canonical(p.Speaker)
	}

	groundY := r.height - 220

	for _, ch := range r.roster.Characters() {
		gap := 0
		if id, _ := r.roster.Canonical(ch.Name); known && id == speaker {
			gap = MouthGap(p.MouthOpen, r.mouthScale, r.mouthMaxGap)
		}
		r.drawCharacter(img, ch, groundY, gap)
	}

	if p.Caption != "" {
		r.drawCaption(img, p.Caption)
	}
}

func (r *Renderer) drawBackground(img *image.RGBA, kind string) {
	k := strings.ToLower(kind)
	switch {
	case strings.Contains(k, "desert"):
		fillCanvas(img, colDesertSky)
		fillRect(img, 0, img.Rect.Dy()-220, img.Rect.Dx(), img.Rect.Dy(), colDesertSand)
	case strings.Contains(k, "space"):
		fillCanvas(img, colSpace)
	default:
		fillCanvas(img, colWhite)
		fillRect(img, 0, img.Rect.Dy()-220, img.Rect.Dx(), img.Rect.Dy(), colGround)
	}
}

func (r *Renderer) drawCharacter(img *image.RGBA, ch Character, groundY, gap int) {
	x := ch.X
	body := ch.Color.color()

	// Ноги, торс, руки
	drawLine(img, x, groundY, x-30, groundY+100, 5, colBlack)
	drawLine(img, x, groundY, x+30, groundY+100, 5, colBlack)
	drawLine(img, x, groundY, x, groundY-150, 5, colBlack)
	drawLine(img, x, groundY-120, x-40, groundY-50, 5, colBlack)
	drawLine(img, x, groundY-120, x+40, groundY-50, 5, colBlack)

	headY := groundY - 200

	// Нижняя челюсть (статичная)
	fillHalfDisk(img, x, headY, 50, false, body)
	strokeHalfCircle(img, x, headY, 50, 3, false, colBlack)

	// Верхняя половина головы, сдвинутая вверх на gap
	fillHalfDisk(img, x, headY-gap, 50, true, body)
	strokeHalfCircle(img, x, headY-gap, 50, 3, true, colBlack)

	// Глаза
	fillDisk(img, x-15, headY-10-gap, 5, colBlack)
	fillDisk(img, x+15, headY-10-gap, 5, colBlack)
}

func (r *Renderer) drawCaption(img *image.RGBA, text string) {
	face := basicfont.Face7x13
	width := font.MeasureString(face, text).Ceil()
	x := (r.width - width) / 2
	y := r.height - 40

	// Тень для читаемости на любом фоне
	shadow := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(colBlack),
		Face: face,
		Dot:  fixed.P(x+1, y+1),
	}
	shadow.DrawString(text)

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(colWhite),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}
