package core

// Action represents a semantic input action, abstracted from physical key presses.
// This allows games to work with high-level intents rather than raw input.
type Action int

const (
	ActionNone     Action = iota
	ActionUp              // W, Up arrow - climb
	ActionDown            // S, Down arrow - pick up or put down a block
	ActionLeft            // A, Left arrow - walk left
	ActionRight           // D, Right arrow - walk right
	ActionInteract        // Space - same as Down
	ActionConfirm         // Enter - confirm selection in menu
	ActionBack            // B, Escape - go back to menu
	ActionRestart         // R key - restart after the game is over
	ActionQuit            // Q, Ctrl+C - exit game/session
	ActionPause           // P - pause/unpause

	// Map editor actions.
	ActionBrushBrick  // 1
	ActionBrushBlock  // 2
	ActionBrushDoor   // 3
	ActionBrushPlayer // 4
	ActionErase       // X, 0, Delete - clear the cell under the cursor
	ActionFlip        // F - flip the spawn direction
	ActionSave        // O, Ctrl+S - write the map file
)

// String returns a human-readable name for the action.
func (a Action) String() string {
	switch a {
	case ActionNone:
		return "None"
	case ActionUp:
		return "Up"
	case ActionDown:
		return "Down"
	case ActionLeft:
		return "Left"
	case ActionRight:
		return "Right"
	case ActionInteract:
		return "Interact"
	case ActionConfirm:
		return "Confirm"
	case ActionBack:
		return "Back"
	case ActionRestart:
		return "Restart"
	case ActionQuit:
		return "Quit"
	case ActionPause:
		return "Pause"
	case ActionBrushBrick:
		return "BrushBrick"
	case ActionBrushBlock:
		return "BrushBlock"
	case ActionBrushDoor:
		return "BrushDoor"
	case ActionBrushPlayer:
		return "BrushPlayer"
	case ActionErase:
		return "Erase"
	case ActionFlip:
		return "Flip"
	case ActionSave:
		return "Save"
	default:
		return "Unknown"
	}
}

// InputFrame represents the input state during one simulation tick.
// It contains all actions that were triggered during this frame.
type InputFrame struct {
	// Actions maps action types to whether they were triggered this frame.
	Actions map[Action]bool
}

// NewInputFrame creates an empty input frame.
func NewInputFrame() InputFrame {
	return InputFrame{
		Actions: make(map[Action]bool),
	}
}

// Set marks an action as triggered for this frame.
func (f *InputFrame) Set(a Action) {
	if f.Actions == nil {
		f.Actions = make(map[Action]bool)
	}
	f.Actions[a] = true
}

// Has returns true if the given action was triggered this frame.
func (f InputFrame) Has(a Action) bool {
	if f.Actions == nil {
		return false
	}
	return f.Actions[a]
}

// Clear resets all actions for the next frame.
func (f *InputFrame) Clear() {
	for k := range f.Actions {
		delete(f.Actions, k)
	}
}
