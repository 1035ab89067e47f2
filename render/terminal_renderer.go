// Package render draws simulation frames onto a tcell screen
package render

import (
	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/danmaku/engine"
	"github.com/lixenwraith/danmaku/parameter"
	"github.com/lixenwraith/danmaku/vmath"
)

// octantGlyphs maps a heading octant (0 = +X, counter-clockwise) to a bullet glyph
var octantGlyphs = [8]rune{'-', '/', '|', '\\', '-', '/', '|', '\\'}

// GlyphFor returns the bullet glyph for a heading in radians
func GlyphFor(rotation float32) rune {
	return octantGlyphs[vmath.Octant(rotation)]
}

// TerminalRenderer draws frames with the world origin at the center of the play area
// World +Y is up; one column spans scale world units and one row spans twice that
type TerminalRenderer struct {
	screen tcell.Screen
	scale  float32
	width  int
	height int

	defaultStyle tcell.Style
	statusStyle  tcell.Style
	spriteStyles map[string]tcell.Style
}

// NewTerminalRenderer creates a renderer for screen; non-positive scale uses parameter.DefaultWorldScale
func NewTerminalRenderer(screen tcell.Screen, scale float32) *TerminalRenderer {
	if scale <= 0 {
		scale = parameter.DefaultWorldScale
	}
	r := &TerminalRenderer{
		screen:       screen,
		scale:        scale,
		defaultStyle: tcell.StyleDefault.Background(RgbBackground),
		statusStyle:  tcell.StyleDefault.Background(RgbBackground).Foreground(RgbStatusBar),
		spriteStyles: make(map[string]tcell.Style),
	}
	r.Resize()
	return r
}

// Resize re-reads the screen size; call on tcell.EventResize
func (r *TerminalRenderer) Resize() {
	r.width, r.height = r.screen.Size()
}

// playRows is the number of rows above the status line
func (r *TerminalRenderer) playRows() int {
	return max(r.height-parameter.StatusLineRows, 0)
}

// MapToScreen projects a world point to a cell, reporting whether it lands in the play area
func (r *TerminalRenderer) MapToScreen(p vmath.Vec2) (x, y int, visible bool) {
	rows := r.playRows()
	fx := float32(r.width)/2 + p.X/r.scale
	fy := float32(rows)/2 - p.Y/(2*r.scale)
	if fx < 0 || fy < 0 {
		return 0, 0, false
	}
	x, y = int(fx), int(fy)
	return x, y, x < r.width && y < rows
}

// Extent returns the world half-width and half-height visible in the play area
func (r *TerminalRenderer) Extent() vmath.Vec2 {
	return vmath.Vec2{
		X: float32(r.width) / 2 * r.scale,
		Y: float32(r.playRows()) * r.scale,
	}
}

func (r *TerminalRenderer) spriteStyle(sprite string) tcell.Style {
	s, ok := r.spriteStyles[sprite]
	if !ok {
		s = r.defaultStyle.Foreground(SpriteColor(sprite))
		r.spriteStyles[sprite] = s
	}
	return s
}

// RenderFrame draws bullets, the player and the status line, then shows the screen
func (r *TerminalRenderer) RenderFrame(f *engine.Frame, status string) {
	r.screen.Fill(' ', r.defaultStyle)

	if f != nil {
		for _, pf := range f.Pools {
			style := r.spriteStyle(pf.Sprite)
			for i, pos := range pf.Positions {
				x, y, ok := r.MapToScreen(pos)
				if !ok {
					continue
				}
				r.screen.SetContent(x, y, GlyphFor(pf.Rotations[i]), nil, style)
			}
		}
		r.drawPlayer(f.Player, f.Hits > 0)
	}

	r.drawStatus(status)
	r.screen.Show()
}

func (r *TerminalRenderer) drawPlayer(pos vmath.Vec2, hit bool) {
	x, y, ok := r.MapToScreen(pos)
	if !ok {
		return
	}
	color := RgbPlayer
	if hit {
		color = RgbPlayerHit
	}
	r.screen.SetContent(x, y, parameter.PlayerGlyph, nil, r.defaultStyle.Foreground(color).Bold(true))
}

func (r *TerminalRenderer) drawStatus(status string) {
	if r.height < parameter.StatusLineRows {
		return
	}
	y := r.height - parameter.StatusLineRows
	x := 0
	for _, ch := range status {
		if x >= r.width {
			break
		}
		r.screen.SetContent(x, y, ch, nil, r.statusStyle)
		x++
	}
}
