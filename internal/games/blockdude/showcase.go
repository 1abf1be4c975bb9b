package blockdude

import (
	"errors"
	"fmt"
	"math"
	"time"

	platformcore "github.com/vovakirdan/blockdude-evo/internal/core"
	"github.com/vovakirdan/blockdude-evo/internal/games/blockdude/core"
	"github.com/vovakirdan/blockdude-evo/internal/policy"
	"github.com/vovakirdan/blockdude-evo/internal/replay"
)

// Showcase defaults.
const (
	DefaultActionInterval = 250 * time.Millisecond
	DefaultShowcaseTurns  = 100
)

// ShowcaseOptions controls replay playback.
type ShowcaseOptions struct {
	ActionInterval time.Duration
	MaxTurns       int
	RepeatWindow   int
	// WinnerPath, when set, is where a winning playback re-saves its replay.
	WinnerPath string
}

// ShowcaseGame plays a saved policy on its map, one move per interval.
// Moves already taken from an identical recent state are avoided.
type ShowcaseGame struct {
	rec   *replay.Record
	net   policy.Network
	opts  ShowcaseOptions
	cfg   platformcore.RuntimeConfig
	state *core.State
	trace *policy.Trace

	ticksPerMove int
	tick         int
	turns        int
	last         core.Action
	won          bool
	over         bool
	paused       bool
	message      string
}

// NewShowcase creates a showcase for rec.
func NewShowcase(rec *replay.Record, opts ShowcaseOptions) *ShowcaseGame {
	if opts.ActionInterval <= 0 {
		opts.ActionInterval = DefaultActionInterval
	}
	if opts.MaxTurns <= 0 {
		opts.MaxTurns = DefaultShowcaseTurns
	}
	if opts.RepeatWindow <= 0 {
		opts.RepeatWindow = policy.DefaultTraceSize
	}
	return &ShowcaseGame{rec: rec, opts: opts}
}

// ID returns the map ID of the replay.
func (g *ShowcaseGame) ID() string { return g.rec.MapID }

// Mode returns ModeShowcase.
func (g *ShowcaseGame) Mode() string { return ModeShowcase }

// Title returns the display name.
func (g *ShowcaseGame) Title() string { return "Showcase - " + g.rec.MapID }

// Reset restarts playback from the map spawn point.
func (g *ShowcaseGame) Reset(cfg platformcore.RuntimeConfig) {
	g.cfg = cfg
	g.tick = 0
	g.turns = 0
	g.won = false
	g.over = false
	g.paused = false
	g.message = ""

	rate := cfg.TickRate
	if rate <= 0 {
		rate = platformcore.DefaultConfig().TickRate
	}
	g.ticksPerMove = max(1, int(math.Round(g.opts.ActionInterval.Seconds()*float64(rate))))
	if g.net == nil {
		net, err := g.rec.Net()
		if err != nil {
			g.state = nil
			g.over = true
			g.message = "Invalid replay: " + err.Error()
			return
		}
		g.net = net
	}

	s, err := core.NewState(g.rec.Map, true)
	if err != nil {
		g.state = nil
		g.over = true
		g.message = "Invalid map: " + err.Error()
		return
	}
	g.state = s
	g.trace = policy.NewTrace(g.opts.RepeatWindow)
	g.trace.Push(s.Snapshot())
}

// Step waits out the action interval, then lets the policy move once.
func (g *ShowcaseGame) Step(in platformcore.InputFrame) platformcore.StepResult {
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

	g.tick++
	if g.tick < g.ticksPerMove {
		return platformcore.StepResult{State: g.State()}
	}
	g.tick = 0
	return platformcore.StepResult{State: g.State(), Moved: g.move()}
}

// move takes one policy turn and reports whether an action was applied.
func (g *ShowcaseGame) move() bool {
	a, ok, err := policy.DecideAvoiding(g.net, g.state, g.trace)
	if err != nil {
		g.over = true
		g.message = "Policy error: " + err.Error()
		return false
	}

	applied := false
	if ok {
		g.trace.Tag(a)
		applied, err = g.state.Apply(a)
		if errors.Is(err, core.ErrNoFloor) {
			g.over = true
			g.message = "It fell off the map..."
			return false
		}
		if err != nil {
			g.over = true
			g.message = err.Error()
			return false
		}
		g.last = a
	}
	g.turns++
	g.trace.Push(g.state.Snapshot())

	switch {
	case g.state.Won():
		g.won = true
		g.over = true
		g.message = "GG!"
		if err := g.saveWinner(); err != nil {
			g.message = fmt.Sprintf("GG! (winner not saved: %v)", err)
		}
	case g.turns >= g.opts.MaxTurns:
		g.over = true
		g.message = "It ran out of time..."
	}
	return applied
}

// saveWinner writes the replay as the winner record.
func (g *ShowcaseGame) saveWinner() error {
	if g.opts.WinnerPath == "" {
		return nil
	}
	rec := *g.rec
	rec.Won = true
	rec.Created = time.Now()
	return replay.Save(g.opts.WinnerPath, &rec)
}

// Render draws the board, HUD and any end-of-playback overlay.
func (g *ShowcaseGame) Render(dst *platformcore.Screen) {
	dst.Clear()
	status := statusLine(g.rec.MapID, g.turns, g.state) +
		fmt.Sprintf(" | Fitness: %.1f", g.rec.Fitness)
	if g.turns > 0 {
		status += " | Last: " + g.last.String()
	}
	renderHUD(dst, g.Title(), status)
	renderFooter(dst, "R: Replay | P: Pause | Esc: Menu | Q: Quit")

	if g.state == nil {
		renderOverlay(dst, "Cannot play this replay", g.message)
		return
	}
	if !renderBoard(dst, g.state) {
		renderOverlay(dst, "Window too small", "Resize to continue")
		return
	}

	switch {
	case g.over:
		renderOverlay(dst, g.message, "Press R to watch again")
	case g.paused:
		renderOverlay(dst, "Paused", "Press P to continue")
	}
}

// State returns the current playback state.
func (g *ShowcaseGame) State() platformcore.GameState {
	return platformcore.GameState{
		Turns:    g.turns,
		Won:      g.won,
		GameOver: g.over,
		Paused:   g.paused,
		Message:  g.message,
	}
}

// Board returns the simulation state.
func (g *ShowcaseGame) Board() *core.State { return g.state }
