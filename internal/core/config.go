package core

// RuntimeConfig contains configuration passed to games at initialization.
// Games use this to adapt to screen size and to time their own animations.
type RuntimeConfig struct {
	ScreenW  int // Screen width in characters
	ScreenH  int // Screen height in characters
	TickRate int // Simulation ticks per second
}

// DefaultConfig returns a RuntimeConfig with sensible defaults.
func DefaultConfig() RuntimeConfig {
	return RuntimeConfig{
		ScreenW:  80,
		ScreenH:  24,
		TickRate: 30,
	}
}

// GameState represents the current state of a game.
// Returned by Game.State() to communicate status to the platform.
type GameState struct {
	Turns    int    // Moves made so far
	Won      bool   // Whether the player reached the door
	GameOver bool   // Whether the game has ended
	Paused   bool   // Whether the game is paused
	Message  string // End-of-game message, if any
}

// StepResult is returned by Game.Step() after each simulation tick.
type StepResult struct {
	State GameState
	// Moved is true when the tick applied a move.
	Moved bool
}

// Game is the interface the terminal platform drives.
// Games contain pure logic with no Bubble Tea dependency.
// The platform handles input mapping, timing, and rendering.
type Game interface {
	// ID identifies what is being played (the map ID).
	// Used for play records in storage.
	ID() string

	// Mode names the kind of game ("manual" or "showcase").
	Mode() string

	// Title returns a human-readable name for display.
	Title() string

	// Reset initializes or restarts the game.
	Reset(cfg RuntimeConfig)

	// Step advances the game by one tick.
	Step(in InputFrame) StepResult

	// Render draws the current game state into the provided screen buffer.
	Render(dst *Screen)

	// State returns the current game state.
	State() GameState
}
