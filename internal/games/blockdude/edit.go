package blockdude

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	platformcore "github.com/vovakirdan/blockdude-evo/internal/core"
	"github.com/vovakirdan/blockdude-evo/internal/games/blockdude/core"
	"github.com/vovakirdan/blockdude-evo/internal/games/blockdude/levels/formats"
)

// ModeEdit names the map editor.
const ModeEdit = "edit"

// Size of a map created from scratch.
const (
	DefaultEditWidth  = 22
	DefaultEditHeight = 8
)

// Brush is what the editor paints into the cell under the cursor.
type Brush int

const (
	BrushEmpty Brush = iota
	BrushBrick
	BrushBlock
	BrushDoor
	BrushPlayer
)

func (b Brush) String() string {
	if b == BrushPlayer {
		return "Player"
	}
	return core.Cell(b).String()
}

// BlankMap returns a width x height map with a brick floor, the player
// at the left end and the door at the right end.
func BlankMap(width, height int) core.GridMap {
	width, height = max(width, 3), max(height, 2)
	cells := make([][]core.Cell, height)
	for y := range cells {
		cells[y] = make([]core.Cell, width)
	}
	for x := range width {
		cells[height-1][x] = core.CellBrick
	}
	cells[height-2][width-2] = core.CellDoor
	return core.GridMap{Cells: cells, StartX: 0, StartY: height - 2, StartDirection: core.FacingRight}
}

// EditGame edits a map file with a keyboard cursor. The map may be
// invalid while it is edited; it is validated when saved.
type EditGame struct {
	path  string
	id    string
	name  string
	saved core.GridMap
	m     core.GridMap
	cfg   platformcore.RuntimeConfig

	cursor  core.Coord
	brush   Brush
	edits   int
	dirty   bool
	message string
}

// NewEditor edits m, saving to path. The format follows the extension of
// path: YAML for .yaml and .yml, JSON otherwise.
func NewEditor(path, name string, m core.GridMap) *EditGame {
	id := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return &EditGame{path: path, id: id, name: name, saved: m.Clone()}
}

// ID returns the map ID derived from the file name.
func (g *EditGame) ID() string { return g.id }

// Mode returns ModeEdit.
func (g *EditGame) Mode() string { return ModeEdit }

// Title returns the display name.
func (g *EditGame) Title() string { return "Map Editor - " + g.id }

// Reset discards unsaved changes.
func (g *EditGame) Reset(cfg platformcore.RuntimeConfig) {
	g.cfg = cfg
	g.m = g.saved.Clone()
	g.cursor = g.m.Start()
	g.brush = BrushBrick
	g.dirty = false
	g.message = ""
}

// Step applies at most one editor command per tick.
func (g *EditGame) Step(in platformcore.InputFrame) platformcore.StepResult {
	changed := false
	switch {
	case in.Has(platformcore.ActionRestart):
		g.Reset(g.cfg)
		g.message = "Reverted to the last saved map"
	case in.Has(platformcore.ActionSave):
		if err := g.Save(); err != nil {
			g.message = "Not saved: " + err.Error()
		} else {
			g.message = "Saved " + g.path
		}
	case in.Has(platformcore.ActionUp):
		g.moveCursor(0, -1)
	case in.Has(platformcore.ActionDown):
		g.moveCursor(0, 1)
	case in.Has(platformcore.ActionLeft):
		g.moveCursor(-1, 0)
	case in.Has(platformcore.ActionRight):
		g.moveCursor(1, 0)
	case in.Has(platformcore.ActionBrushBrick):
		g.brush = BrushBrick
	case in.Has(platformcore.ActionBrushBlock):
		g.brush = BrushBlock
	case in.Has(platformcore.ActionBrushDoor):
		g.brush = BrushDoor
	case in.Has(platformcore.ActionBrushPlayer):
		g.brush = BrushPlayer
	case in.Has(platformcore.ActionConfirm):
		g.brush = g.brushAt(g.cursor)
	case in.Has(platformcore.ActionInteract):
		changed = g.paint(g.brush)
	case in.Has(platformcore.ActionErase):
		changed = g.paint(BrushEmpty)
	case in.Has(platformcore.ActionFlip):
		g.m.StartDirection = -g.m.StartDirection
		if !g.m.StartDirection.Valid() {
			g.m.StartDirection = core.FacingRight
		}
		changed = true
	}
	if changed {
		g.edits++
		g.dirty = true
		g.message = ""
	}
	return platformcore.StepResult{State: g.State(), Moved: changed}
}

func (g *EditGame) moveCursor(dx, dy int) {
	next := g.cursor.Add(dx, dy)
	bounds := platformcore.NewRect(0, 0, g.m.Width(), g.m.Height())
	if bounds.Contains(next.X, next.Y) {
		g.cursor = next
	}
}

// brushAt returns the brush that would recreate the cell at c.
func (g *EditGame) brushAt(c core.Coord) Brush {
	if c == g.m.Start() {
		return BrushPlayer
	}
	return Brush(g.m.Cells[c.Y][c.X])
}

// paint applies b under the cursor and reports whether the map changed.
// The player spawn moves to the cursor; a door replaces the old door.
func (g *EditGame) paint(b Brush) bool {
	c := g.cursor
	cell := &g.m.Cells[c.Y][c.X]
	switch b {
	case BrushPlayer:
		if c == g.m.Start() && !cell.Solid() {
			return false
		}
		*cell = core.CellEmpty
		g.m.StartX, g.m.StartY = c.X, c.Y
		return true
	case BrushDoor:
		if *cell == core.CellDoor {
			return false
		}
		for y := range g.m.Cells {
			for x := range g.m.Cells[y] {
				if g.m.Cells[y][x] == core.CellDoor {
					g.m.Cells[y][x] = core.CellEmpty
				}
			}
		}
	case BrushBrick, BrushBlock:
		if c == g.m.Start() {
			g.message = "The player stands here"
			return false
		}
	}
	next := core.Cell(b)
	if *cell == next {
		return false
	}
	*cell = next
	return true
}

// Map returns a copy of the map being edited.
func (g *EditGame) Map() core.GridMap { return g.m.Clone() }

// Cursor returns the cell under the cursor.
func (g *EditGame) Cursor() core.Coord { return g.cursor }

// Brush returns the current brush.
func (g *EditGame) Brush() Brush { return g.brush }

// Dirty reports whether the map has edits that are not saved.
func (g *EditGame) Dirty() bool { return g.dirty }

// Save validates the map and writes it to the editor's file.
func (g *EditGame) Save() error {
	if err := core.ValidateMap(g.m); err != nil {
		return err
	}
	lvl := formats.Level{ID: g.id, Name: g.name, Map: g.m}

	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(g.path)) {
	case ".yaml", ".yml":
		data, err = formats.EncodeYAML(lvl)
	default:
		data, err = formats.EncodeJSON(lvl)
	}
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(g.path), 0o755); err != nil {
		return fmt.Errorf("create map directory: %w", err)
	}
	if err := os.WriteFile(g.path, data, 0o644); err != nil {
		return fmt.Errorf("write map: %w", err)
	}
	g.saved = g.m.Clone()
	g.dirty = false
	return nil
}

// Render draws the map, the spawn, the cursor and the last message.
func (g *EditGame) Render(dst *platformcore.Screen) {
	dst.Clear()
	status := fmt.Sprintf("Size: %dx%d | Cursor: %d,%d | Brush: %s | Facing: %s",
		g.m.Width(), g.m.Height(), g.cursor.X, g.cursor.Y, g.brush, facingName(g.m.StartDirection))
	if g.dirty {
		status += " | modified"
	}
	renderHUD(dst, g.Title(), status)
	renderFooter(dst, "Arrows: Move | 1-4: Brush | Space: Paint | Enter: Pick | X: Erase | F: Flip | O: Save | R: Revert | Esc: Quit")

	l, ok := layoutBoard(dst, g.m.Width(), g.m.Height(), g.cursor)
	if !ok {
		renderOverlay(dst, "Window too small", "Resize to continue")
		return
	}
	l.drawCells(dst, func(x, y int) core.Cell { return g.m.Cells[y][x] })
	l.draw(dst, g.m.StartX, g.m.StartY, playerGlyph(g.m.StartDirection))

	// The cursor recolors whatever is under it and brackets empty cells.
	if sx, sy, ok := l.screenPos(g.cursor.X, g.cursor.Y); ok {
		for i, mark := range []rune("[]") {
			r := dst.Get(sx+i, sy)
			if r == ' ' {
				r = mark
			}
			dst.SetWithColor(sx+i, sy, r, platformcore.ColorBrightYellow)
		}
	}

	if g.message != "" {
		dst.DrawText(1, dst.Height()-2, g.message)
	}
}

func facingName(f core.Facing) string {
	if f == core.FacingLeft {
		return "left"
	}
	return "right"
}

// State reports the number of edits. The editor never ends on its own.
func (g *EditGame) State() platformcore.GameState {
	return platformcore.GameState{
		Turns:   g.edits,
		Message: g.message,
	}
}
