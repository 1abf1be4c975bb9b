// Package blockdude provides the Block Dude games for the terminal
// platform: manual play of a map, the map editor and timed showcase
// playback of a replay.
package blockdude

import (
	"fmt"

	platformcore "github.com/vovakirdan/blockdude-evo/internal/core"
	"github.com/vovakirdan/blockdude-evo/internal/games/blockdude/core"
)

// cellW is the width of one map cell in terminal columns.
const cellW = 2

// hudHeight is the number of rows above the board.
const hudHeight = 3

type glyph struct {
	text  string
	color platformcore.Color
}

var cellGlyphs = map[core.Cell]glyph{
	core.CellEmpty: {"  ", platformcore.ColorDefault},
	core.CellBrick: {"██", platformcore.ColorGray},
	core.CellBlock: {"▒▒", platformcore.ColorOrange},
	core.CellDoor:  {"▐▌", platformcore.ColorBrightGreen},
}

var (
	playerRight = glyph{"o>", platformcore.ColorBrightCyan}
	playerLeft  = glyph{"<o", platformcore.ColorBrightCyan}
)

// renderHUD draws the title line, a status line and a separator.
func renderHUD(dst *platformcore.Screen, title, status string) {
	dst.DrawTextWithColor(1, 0, title, platformcore.ColorCyan)
	dst.DrawTextWithColor(1, 1, status, platformcore.ColorGray)
	dst.DrawHLine(0, 2, dst.Width(), '─', platformcore.ColorGray)
}

// renderFooter draws a controls hint on the last row.
func renderFooter(dst *platformcore.Screen, controls string) {
	dst.DrawTextWithColor(1, dst.Height()-1, controls, platformcore.ColorGray)
}

// renderBoard draws the map inside a box below the HUD. Maps larger than
// the screen are shown through a viewport that follows the player.
// It reports false when there is no room for even one cell.
func renderBoard(dst *platformcore.Screen, s *core.State) bool {
	l, ok := layoutBoard(dst, s.Width(), s.Height(), s.Player())
	if !ok {
		return false
	}
	l.drawCells(dst, s.Cell)

	p := s.Player()
	if s.Holding() {
		l.draw(dst, p.X, p.Y-1, cellGlyphs[core.CellBlock])
	}
	l.draw(dst, p.X, p.Y, playerGlyph(s.Direction()))
	return true
}

func playerGlyph(dir core.Facing) glyph {
	if dir == core.FacingLeft {
		return playerLeft
	}
	return playerRight
}

// boardLayout is the on-screen placement of a map: its frame and the
// viewport offset into the map.
type boardLayout struct {
	box        platformcore.Rect
	offX, offY int
	cols, rows int
}

// layoutBoard fits a width x height map below the HUD and draws its
// frame. The viewport is centered on focus when the map does not fit.
func layoutBoard(dst *platformcore.Screen, width, height int, focus core.Coord) (boardLayout, bool) {
	availW := (dst.Width() - 2) / cellW
	availH := dst.Height() - hudHeight - 3
	cols := min(width, availW)
	rows := min(height, availH)
	if cols <= 0 || rows <= 0 {
		return boardLayout{}, false
	}

	l := boardLayout{
		box:  platformcore.NewRect((dst.Width()-cols*cellW-2)/2, hudHeight, cols*cellW+2, rows+2),
		offX: platformcore.Clamp(focus.X-cols/2, 0, width-cols),
		offY: platformcore.Clamp(focus.Y-rows/2, 0, height-rows),
		cols: cols,
		rows: rows,
	}
	dst.DrawBox(l.box, platformcore.ColorGray)
	return l, true
}

// screenPos returns the screen column and row of map cell (x, y), and
// whether the cell is inside the viewport.
func (l boardLayout) screenPos(x, y int) (int, int, bool) {
	vx, vy := x-l.offX, y-l.offY
	if vx < 0 || vx >= l.cols || vy < 0 || vy >= l.rows {
		return 0, 0, false
	}
	return l.box.X + 1 + vx*cellW, l.box.Y + 1 + vy, true
}

func (l boardLayout) draw(dst *platformcore.Screen, x, y int, g glyph) {
	if sx, sy, ok := l.screenPos(x, y); ok {
		dst.DrawTextWithColor(sx, sy, g.text, g.color)
	}
}

// drawCells draws every visible cell reported by cell.
func (l boardLayout) drawCells(dst *platformcore.Screen, cell func(x, y int) core.Cell) {
	for y := l.offY; y < l.offY+l.rows; y++ {
		for x := l.offX; x < l.offX+l.cols; x++ {
			g, ok := cellGlyphs[cell(x, y)]
			if !ok {
				g = glyph{"??", platformcore.ColorRed}
			}
			l.draw(dst, x, y, g)
		}
	}
}

// renderOverlay draws a centered two-line message box.
func renderOverlay(dst *platformcore.Screen, title, subtitle string) {
	w := max(len([]rune(title)), len([]rune(subtitle))) + 6
	h := 4
	if subtitle == "" {
		h = 3
	}
	box := platformcore.NewRect((dst.Width()-w)/2, (dst.Height()-h)/2, w, h)
	for y := box.Y; y < box.Bottom(); y++ {
		dst.DrawHLine(box.X, y, box.W, ' ', platformcore.ColorDefault)
	}
	dst.DrawBox(box, platformcore.ColorYellow)
	dst.DrawTextCentered(box.Y+1, title, platformcore.ColorBrightYellow)
	if subtitle != "" {
		dst.DrawTextCentered(box.Y+2, subtitle, platformcore.ColorGray)
	}
}

func statusLine(mapID string, turns int, s *core.State) string {
	holding := "no"
	if s != nil && s.Holding() {
		holding = "yes"
	}
	return fmt.Sprintf("Map: %s | Turns: %d | Holding: %s", mapID, turns, holding)
}
