package render

import (
	"hash/fnv"

	"github.com/gdamore/tcell/v2"
)

var (
	RgbBackground = tcell.NewRGBColor(26, 27, 38)    // Tokyo Night background
	RgbStatusBar  = tcell.NewRGBColor(255, 255, 255) // White
	RgbPlayer     = tcell.NewRGBColor(255, 165, 0)   // Orange
	RgbPlayerHit  = tcell.NewRGBColor(255, 80, 80)   // Red flash on collision
)

// bulletPalette cycles per sprite so distinct pools read apart
var bulletPalette = []tcell.Color{
	tcell.NewRGBColor(255, 120, 120), // Bright Red
	tcell.NewRGBColor(140, 190, 255), // Bright Blue
	tcell.NewRGBColor(50, 255, 50),   // Bright Green
	tcell.NewRGBColor(255, 255, 0),   // Gold
	tcell.NewRGBColor(0, 200, 200),   // Cyan
	tcell.NewRGBColor(200, 120, 255), // Violet
}

// SpriteColor picks a stable palette entry for a sprite key
func SpriteColor(sprite string) tcell.Color {
	h := fnv.New32a()
	_, _ = h.Write([]byte(sprite))
	return bulletPalette[h.Sum32()%uint32(len(bulletPalette))]
}
