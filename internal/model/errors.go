package model

import "errors"

var (
	// ErrInfeasibleInput is returned when an instance contains a rectangle
	// that cannot fit into an empty box in any orientation.
	ErrInfeasibleInput = errors.New("infeasible input")

	// ErrInvariantViolation marks internal bookkeeping inconsistencies such as
	// a missing box or a rectangle that is not where it claims to be.
	ErrInvariantViolation = errors.New("invariant violation")

	// ErrInfeasibleMove is returned by moves whose target cannot be realized.
	// It is recoverable and means "no move".
	ErrInfeasibleMove = errors.New("infeasible move")

	// ErrIncompatiblePlacement is returned when a neighborhood cannot reuse the
	// placement state left behind by the initial construction.
	ErrIncompatiblePlacement = errors.New("incompatible placement")

	// ErrInvalidOption is returned for unknown policy kinds or bad settings.
	ErrInvalidOption = errors.New("invalid option")
)
