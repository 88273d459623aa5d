package plan

import "errors"

// Sentinel errors. Callers match them with errors.Is; producers wrap them with
// fmt.Errorf("%w: ...") to add the offending field or item.
var (
	// ErrInvalidConfiguration is returned when generation counts are inconsistent,
	// e.g. input_items + output_items exceeds items.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrMalformedInstance is returned when an instance file is missing required
	// fields or carries values of the wrong type.
	ErrMalformedInstance = errors.New("malformed instance")

	// ErrNoFeasibleInput marks a must-produce item for which no earlier-positioned
	// input existed during coverage. Generation does not fail on it.
	ErrNoFeasibleInput = errors.New("no feasible input")

	// ErrCycleDetected is returned by TopologicalOrder when the item graph has a cycle.
	ErrCycleDetected = errors.New("item graph contains a cycle")
)
