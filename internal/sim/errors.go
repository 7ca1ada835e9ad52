package sim

import "errors"

// Failure conditions returned by City operations. A failed operation never
// mutates the city; callers match with errors.Is.
var (
	ErrOutOfBounds       = errors.New("coordinate out of bounds")
	ErrTileOccupied      = errors.New("tile occupied")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrPlacementLocked   = errors.New("placement locked")
	ErrNoBuildingPresent = errors.New("no building present")
	ErrInvalidType       = errors.New("invalid building type")
	ErrUnknownPrompt     = errors.New("unknown prompt")
	ErrPromptClosed      = errors.New("prompt already resolved")
)

// Code returns a short stable name for the sentinel wrapped by err, "ok" for
// nil and "internal" for anything else
func Code(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrOutOfBounds):
		return "out_of_bounds"
	case errors.Is(err, ErrTileOccupied):
		return "tile_occupied"
	case errors.Is(err, ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, ErrPlacementLocked):
		return "placement_locked"
	case errors.Is(err, ErrNoBuildingPresent):
		return "no_building"
	case errors.Is(err, ErrInvalidType):
		return "invalid_type"
	case errors.Is(err, ErrUnknownPrompt):
		return "unknown_prompt"
	case errors.Is(err, ErrPromptClosed):
		return "prompt_closed"
	default:
		return "internal"
	}
}
