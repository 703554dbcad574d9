package export

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/san-kum/dronesim/internal/sim"
)

// brailleBits maps a dot (x, y) inside a cell to its bit above U+2800.
var brailleBits = [4][2]rune{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

func brailleDots(cell rune) [][2]int {
	if cell < 0x2800 || cell > 0x28FF {
		return nil
	}
	var dots [][2]int
	for y, bits := range brailleBits {
		for x, bit := range bits {
			if (cell-0x2800)&bit != 0 {
				dots = append(dots, [2]int{x, y})
			}
		}
	}
	return dots
}

// BrailleSVG writes a grid of Braille cells as one dot per raised
// sub-pixel, scale units apart. Cells outside the Braille block are blank.
func BrailleSVG(w io.Writer, grid [][]rune, scale float64, fill string) error {
	cols := 0
	for _, row := range grid {
		cols = max(cols, len(row))
	}
	if cols == 0 {
		return errors.New("braille svg: empty grid")
	}
	if !(scale > 0) {
		return fmt.Errorf("braille svg: scale must be positive, got %g", scale)
	}

	width, height := float64(cols)*2*scale, float64(len(grid))*4*scale
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<g fill="%s">
`, width, height, width, height, fill)

	radius := scale * 0.4
	for row, cells := range grid {
		for col, cell := range cells {
			for _, d := range brailleDots(cell) {
				cx := (float64(col*2+d[0]) + 0.5) * scale
				cy := (float64(row*4+d[1]) + 0.5) * scale
				fmt.Fprintf(bw, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n", cx, cy, radius)
			}
		}
	}
	bw.WriteString("</g>\n</svg>\n")
	return bw.Flush()
}

// TrajectorySVG writes the top-down (X/Z) flight path of frames. North (-Z)
// is up. Fewer than two frames is an error.
func TrajectorySVG(w io.Writer, frames []sim.Frame, width, height int, stroke string) error {
	if len(frames) < 2 {
		return fmt.Errorf("trajectory needs at least 2 frames, got %d", len(frames))
	}

	minX, maxX := frames[0].Position.X(), frames[0].Position.X()
	minZ, maxZ := frames[0].Position.Z(), frames[0].Position.Z()
	for _, f := range frames {
		x, z := f.Position.X(), f.Position.Z()
		minX, maxX = min(minX, x), max(maxX, x)
		minZ, maxZ = min(minZ, z), max(maxZ, z)
	}

	rangeX := maxX - minX
	rangeZ := maxZ - minZ
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeZ == 0 {
		rangeZ = 1
	}
	minX -= rangeX * 0.1
	minZ -= rangeZ * 0.1
	rangeX *= 1.2
	rangeZ *= 1.2

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, stroke))

	var endX, endY float64
	for i, f := range frames {
		x := (f.Position.X() - minX) / rangeX * float64(width)
		y := (f.Position.Z() - minZ) / rangeZ * float64(height)
		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
		endX, endY = x, y
	}
	sb.WriteString("\"/>\n")
	sb.WriteString(fmt.Sprintf("<circle cx=\"%.1f\" cy=\"%.1f\" r=\"3\" fill=\"%s\"/>\n</svg>", endX, endY, stroke))

	_, err := io.WriteString(w, sb.String())
	return err
}
