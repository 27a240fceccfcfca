package preview

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/onchainnft/nftcreator/types"
)

const (
	helixBaseSize  = 300
	helixAmplitude = 100
	helixCircle    = 35
	helixStep      = 3
)

// HelixSVG draws a still frame of the triple helix template: three sine
// strands a third of a turn apart, each stroked with one hue at full
// saturation and brightness on black.
func HelixSVG(p types.ColorParameters, size int) []byte {
	if size <= 0 {
		size = helixBaseSize
	}

	scale := float64(size) / helixBaseSize
	mid := float64(size) / 2

	var buf bytes.Buffer

	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`, size, size, size, size)
	fmt.Fprintf(&buf, `<rect width="%d" height="%d" fill="#000"/>`, size, size)

	hues := [3]int{p.Hue1, p.Hue2, p.Hue3}

	for strand, hue := range hues {
		fmt.Fprintf(&buf, `<g fill="none" stroke="%s" stroke-width="%.2f">`, hsbToHex(float64(hue), 1, 1), 0.5*scale)

		phase := float64(strand) * 2 * math.Pi / 3

		for i := 0; i <= size; i += helixStep {
			theta := float64(i) / float64(size) * 2 * math.Pi
			y := mid + helixAmplitude*scale*math.Sin(theta+phase)
			r := helixCircle * scale * wobble(i) / 2

			fmt.Fprintf(&buf, `<circle cx="%.1f" cy="%.1f" r="%.2f"/>`, float64(i), y, r)
		}

		buf.WriteString(`</g>`)
	}

	buf.WriteString(`</svg>`)

	return buf.Bytes()
}

// wobble is a smooth deterministic stand-in for the animated noise, in [0,1].
func wobble(i int) float64 {
	x := float64(i) * 0.1

	return 0.5 + 0.25*math.Sin(x) + 0.25*math.Sin(2.3*x+1)
}

func hsbToHex(h, s, v float64) string {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}

	c := v * s
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := v - c

	var r, g, b float64

	switch {
	case h < 60:
		r, g, b = c, x, 0
	case h < 120:
		r, g, b = x, c, 0
	case h < 180:
		r, g, b = 0, c, x
	case h < 240:
		r, g, b = 0, x, c
	case h < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}

	to8 := func(f float64) int { return int(math.Round((f + m) * 255)) }

	return fmt.Sprintf("#%02x%02x%02x", to8(r), to8(g), to8(b))
}

// HelixRenderer writes HelixSVG frames to W.
type HelixRenderer struct {
	W    io.Writer
	Size int
}

func (h HelixRenderer) Render(p types.ColorParameters) error {
	_, err := h.W.Write(HelixSVG(p, h.Size))

	return err
}

// FileRenderer writes each rendered document to Path, replacing the previous
// one.
type FileRenderer[P any] struct {
	Path   string
	Encode func(P) []byte
}

func (f FileRenderer[P]) Render(p P) error {
	tmp := f.Path + ".tmp"

	if err := os.WriteFile(tmp, f.Encode(p), 0o644); err != nil {
		return err
	}

	return os.Rename(tmp, f.Path)
}
