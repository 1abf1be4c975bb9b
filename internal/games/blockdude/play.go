package blockdude

import (
	"errors"

	platformcore "github.com/vovakirdan/blockdude-evo/internal/core"
	"github.com/vovakirdan/blockdude-evo/internal/games/blockdude/core"
	"github.com/vovakirdan/blockdude-evo/internal/games/blockdude/levels"
)

// Play modes recorded with finished games.
const (
	ModeManual   = "manual"
	ModeShowcase = "showcase"
)

// PlayGame lets a person play one map with the keyboard.
type PlayGame struct {
	level levels.Level
	state *core.State
	cfg   platformcore.RuntimeConfig

	turns   int
	won     bool
	over    bool
	paused  bool
	message string
}

// NewPlay creates a manual game for level.
func NewPlay(level levels.Level) *PlayGame {
	return &PlayGame{level: level}
}

// ID returns the map ID.
func (g *PlayGame) ID() string { return g.level.ID }

// Mode returns ModeManual.
func (g *PlayGame) Mode() string { return ModeManual }

// Title returns the display name.
func (g *PlayGame) Title() string { return "Block Dude - " + g.level.Title() }

// Reset starts the map over from its spawn point.
func (g *PlayGame) Reset(cfg platformcore.RuntimeConfig) {
	g.cfg = cfg
	g.turns = 0
	g.won = false
	g.over = false
	g.paused = false
	g.message = ""

	s, err := g.level.NewState()
	if err != nil {
		g.state = nil
		g.over = true
		g.message = "Invalid map: " + err.Error()
		return
	}
	g.state = s
}

// Step applies at most one move per tick.
// Priority: Up, then Down/Space, then Left, then Right.
func (g *PlayGame) Step(in platformcore.InputFrame) platformcore.StepResult {
	if in.Has(platformcore.ActionRestart) && g.over {
		g.Reset(g.cfg)
		return platformcore.StepResult{State: g.State()}
	}
	if in.Has(platformcore.ActionPause) && !g.over {
		g.paused = !g.paused
	}
	if g.over || g.paused || g.state == nil {
		return platformcore.StepResult{State: g.State()}
	}

	var (
		moved bool
		err   error
	)
	switch {
	case in.Has(platformcore.ActionUp):
		moved, err = g.state.Apply(core.ActionUp)
	case in.Has(platformcore.ActionDown), in.Has(platformcore.ActionInteract):
		moved, err = g.state.Apply(core.ActionDown)
	case in.Has(platformcore.ActionLeft):
		moved, err = g.walkOrClimb(core.FacingLeft)
	case in.Has(platformcore.ActionRight):
		moved, err = g.walkOrClimb(core.FacingRight)
	}

	switch {
	case errors.Is(err, core.ErrNoFloor):
		g.over = true
		g.message = "You fell off the map"
	case err != nil:
		g.over = true
		g.message = err.Error()
	case moved:
		g.turns++
		if g.state.Won() {
			g.won = true
			g.over = true
			g.message = "You win!"
		}
	}
	return platformcore.StepResult{State: g.State(), Moved: moved}
}

// walkOrClimb walks in dir. Pushing against a climbable block while
// already facing it climbs instead.
func (g *PlayGame) walkOrClimb(dir core.Facing) (bool, error) {
	if g.state.Direction() == dir && g.state.Legal(core.ActionUp) {
		return g.state.Apply(core.ActionUp)
	}
	if dir == core.FacingLeft {
		return g.state.Apply(core.ActionLeft)
	}
	return g.state.Apply(core.ActionRight)
}

// Render draws the board, HUD and any end-of-game overlay.
func (g *PlayGame) Render(dst *platformcore.Screen) {
	dst.Clear()
	renderHUD(dst, g.Title(), statusLine(g.level.ID, g.turns, g.state))
	renderFooter(dst, "←/→: Walk | ↑: Climb | ↓/Space: Lift/Drop | R: Restart | P: Pause | Esc: Menu")

	if g.state == nil {
		renderOverlay(dst, "Cannot play this map", g.message)
		return
	}
	if !renderBoard(dst, g.state) {
		renderOverlay(dst, "Window too small", "Resize to continue")
		return
	}

	switch {
	case g.won:
		renderOverlay(dst, g.message, "Press R to play again")
	case g.over:
		renderOverlay(dst, g.message, "Press R to restart")
	case g.paused:
		renderOverlay(dst, "Paused", "Press P to continue")
	}
}

// State returns the current game state.
func (g *PlayGame) State() platformcore.GameState {
	return platformcore.GameState{
		Turns:    g.turns,
		Won:      g.won,
		GameOver: g.over,
		Paused:   g.paused,
		Message:  g.message,
	}
}

// Board returns the simulation state, nil when the map failed to load.
func (g *PlayGame) Board() *core.State { return g.state }
