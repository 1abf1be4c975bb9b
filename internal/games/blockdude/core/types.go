// Package core provides the rules engine for the Block Dude puzzle.
// This package is UI-agnostic and deterministic.
package core

import "fmt"

// Cell is the kind of a single grid cell.
// The numeric values are the ones used in map files.
type Cell uint8

const (
	CellEmpty Cell = iota
	CellBrick
	CellBlock
	CellDoor
)

// cellCount is the number of valid cell kinds.
const cellCount = 4

// String returns the string representation of a cell kind.
func (c Cell) String() string {
	switch c {
	case CellEmpty:
		return "Empty"
	case CellBrick:
		return "Brick"
	case CellBlock:
		return "Block"
	case CellDoor:
		return "Door"
	default:
		return fmt.Sprintf("Cell(%d)", uint8(c))
	}
}

// Valid reports whether c is one of the known cell kinds.
func (c Cell) Valid() bool {
	return c < cellCount
}

// Solid reports whether the player (or a falling block) cannot pass through c.
// Only bricks and blocks are solid; the door is walkable.
func (c Cell) Solid() bool {
	return c == CellBrick || c == CellBlock
}

// Action is one of the four moves available to the player.
// The ordinal order is the tie-break priority used by policies.
type Action uint8

const (
	ActionDown Action = iota
	ActionUp
	ActionLeft
	ActionRight
)

// ActionCount is the number of actions.
const ActionCount = 4

// Actions lists every action in priority order.
var Actions = [ActionCount]Action{ActionDown, ActionUp, ActionLeft, ActionRight}

// String returns the string representation of an action.
func (a Action) String() string {
	switch a {
	case ActionDown:
		return "Down"
	case ActionUp:
		return "Up"
	case ActionLeft:
		return "Left"
	case ActionRight:
		return "Right"
	default:
		return "Unknown"
	}
}

// Facing is the horizontal direction the player looks at: -1 (left) or +1 (right).
type Facing int

const (
	FacingLeft  Facing = -1
	FacingRight Facing = 1
)

// Valid reports whether f is -1 or +1.
func (f Facing) Valid() bool {
	return f == FacingLeft || f == FacingRight
}

// Coord is a grid position. X grows to the right, Y grows downward.
type Coord struct {
	X int
	Y int
}

// C is a convenience constructor for Coord.
func C(x, y int) Coord {
	return Coord{X: x, Y: y}
}

// String returns a string representation of the coordinate.
func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// Add returns a new Coord offset by (dx, dy).
func (c Coord) Add(dx, dy int) Coord {
	return Coord{X: c.X + dx, Y: c.Y + dy}
}
