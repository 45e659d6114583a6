package engine

import "errors"

var (
	ErrOutOfRange    = errors.New("coordinate out of range")
	ErrOccupiedCell  = errors.New("cell is occupied")
	ErrInvalidDepth  = errors.New("invalid search depth")
	ErrInvalidColor  = errors.New("invalid stone color")
	ErrInvalidBoard  = errors.New("invalid board geometry")
	ErrNoMoves       = errors.New("no candidate moves")
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrGameOver      = errors.New("game is over")
)
