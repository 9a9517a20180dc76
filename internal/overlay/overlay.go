// Package overlay draws decoded barcode locations onto a copy of the source image.
package overlay

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/MeKo-Tech/pobar/internal/engine"
)

// ErrUnsupportedImage is returned for inputs the engine reads but imaging cannot, such as PDF.
var ErrUnsupportedImage = errors.New("overlay: unsupported image format")

// Suffix is appended to the source base name of every written overlay.
const Suffix = "_overlay.png"

// Render returns an RGBA copy of img with each barcode's quadrilateral outlined
// and its index and format written next to the first corner.
func Render(img image.Image, barcodes []engine.Barcode, col color.Color) *image.RGBA {
	if img == nil {
		return nil
	}
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)

	for i, bc := range barcodes {
		pts := make([]image.Point, len(bc.Points))
		for k, p := range bc.Points {
			pts[k] = image.Pt(p.X-b.Min.X, p.Y-b.Min.Y)
		}
		drawQuad(dst, pts, col, 2)
		drawLabel(dst, pts[0], fmt.Sprintf("%d %s", i+1, bc.Format), col)
	}
	return dst
}

// Write renders the overlay for srcPath into dir and returns the written path.
func Write(srcPath string, barcodes []engine.Barcode, dir string, col color.Color) (string, error) {
	if _, err := imaging.FormatFromFilename(srcPath); err != nil {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedImage, filepath.Ext(srcPath))
	}
	img, err := imaging.Open(srcPath, imaging.AutoOrientation(false))
	if err != nil {
		return "", fmt.Errorf("open %s: %w", srcPath, err)
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("create overlay dir: %w", err)
	}

	base := filepath.Base(srcPath)
	out := filepath.Join(dir, strings.TrimSuffix(base, filepath.Ext(base))+Suffix)
	if err := imaging.Save(Render(img, barcodes, col), out); err != nil {
		return "", fmt.Errorf("save overlay %s: %w", out, err)
	}
	return out, nil
}

// ParseHexColor parses #RGB or #RRGGBB into an opaque color.
func ParseHexColor(s string) (color.RGBA, error) {
	h := strings.TrimPrefix(s, "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}

func drawQuad(dst *image.RGBA, pts []image.Point, col color.Color, thickness int) {
	for i := range pts {
		drawLine(dst, pts[i], pts[(i+1)%len(pts)], col, thickness)
	}
}

func drawLabel(dst *image.RGBA, at image.Point, text string, col color.Color) {
	face := basicfont.Face7x13
	y := at.Y - 4
	if y < face.Ascent {
		y = at.Y + face.Ascent + 4
	}
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.P(at.X, y),
	}
	d.DrawString(text)
}

// drawLine is Bresenham with a square brush.
func drawLine(dst *image.RGBA, a, b image.Point, col color.Color, thickness int) {
	x0, y0 := a.X, a.Y
	dx, sx := abs(b.X-x0), sign(b.X-x0)
	dy, sy := -abs(b.Y-y0), sign(b.Y-y0)
	e := dx + dy
	for {
		plot(dst, x0, y0, col, thickness)
		if x0 == b.X && y0 == b.Y {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

func plot(dst *image.RGBA, x, y int, col color.Color, thickness int) {
	r := max(thickness-1, 0) / 2
	for yy := y - r; yy <= y+r; yy++ {
		for xx := x - r; xx <= x+r; xx++ {
			if image.Pt(xx, yy).In(dst.Bounds()) {
				dst.Set(xx, yy, col)
			}
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	if v < 0 {
		return -1
	}
	return 1
}
