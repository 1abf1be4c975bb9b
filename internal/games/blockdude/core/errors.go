package core

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidMap is matched by every map validation or parse failure.
	ErrInvalidMap = errors.New("invalid map")

	// ErrNoFloor is returned when the player or a dropped block would fall
	// out of the grid. It indicates a map without a boundary floor.
	ErrNoFloor = errors.New("no floor detected")
)

// Validation error codes.
const (
	CodeEmptyGrid      = "EMPTY_GRID"
	CodeNotRectangular = "NOT_RECTANGULAR"
	CodeBadCell        = "BAD_CELL"
	CodeDoorCount      = "DOOR_COUNT"
	CodeBadSpawn       = "BAD_SPAWN"
	CodeBadDirection   = "BAD_DIRECTION"
	CodeParse          = "PARSE"
)

// ValidationError contains details about validation failure.
type ValidationError struct {
	Code    string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Is lets errors.Is(err, ErrInvalidMap) match any ValidationError.
func (e ValidationError) Is(target error) bool {
	return target == ErrInvalidMap
}

// ParseError wraps a decoding failure into an InvalidMap validation error.
func ParseError(err error) error {
	return ValidationError{Code: CodeParse, Message: err.Error()}
}
