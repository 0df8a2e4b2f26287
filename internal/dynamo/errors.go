package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrInvalidState indicates a state value that is NaN or Inf.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrParameterBounds indicates a parameter value is outside valid range.
	ErrParameterBounds = errors.New("dynamo: parameter out of valid bounds")

	// ErrUnknownParam indicates a parameter name the simulation does not expose.
	ErrUnknownParam = errors.New("dynamo: unknown parameter")

	// ErrUnknownGame indicates a game name with no registered simulation.
	ErrUnknownGame = errors.New("dynamo: unknown game")
)

// ParamError wraps a rejected parameter change.
type ParamError struct {
	Name     string
	Value    float64
	Min, Max float64
	Wrapped  error
}

func (e *ParamError) Error() string {
	if errors.Is(e.Wrapped, ErrParameterBounds) {
		return fmt.Sprintf("%s=%g outside [%g, %g]: %v", e.Name, e.Value, e.Min, e.Max, e.Wrapped)
	}
	return fmt.Sprintf("%s: %v", e.Name, e.Wrapped)
}

func (e *ParamError) Unwrap() error {
	return e.Wrapped
}

// SimulationError wraps an error with frame context.
type SimulationError struct {
	Game    string
	Frame   uint64
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("%s frame %d: %v", e.Game, e.Frame, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
