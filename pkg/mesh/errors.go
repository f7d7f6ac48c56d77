package mesh

import (
	"errors"
	"fmt"
)

// Sentinel errors, matched with errors.Is.
var (
	ErrContentIntegrity = errors.New("content integrity violation")
	ErrAllocation       = errors.New("mesh allocation failed")
)

// ContentIntegrityError reports corrupt source data: an element outside
// its vertex range or a malformed count. Loading cannot continue past it.
type ContentIntegrityError struct {
	Triangle    int   // offending triangle, -1 for count errors
	Index       int32 // offending element value
	FirstVertex int
	NumVertices int
	Reason      string
}

func (e *ContentIntegrityError) Error() string {
	switch {
	case e.Triangle < 0:
		return fmt.Sprintf("%v: %s", ErrContentIntegrity, e.Reason)
	case e.Reason != "":
		return fmt.Sprintf("%v: triangle %d: %s (%d)", ErrContentIntegrity, e.Triangle, e.Reason, e.Index)
	}
	return fmt.Sprintf("%v: triangle %d references vertex %d outside [%d, %d)",
		ErrContentIntegrity, e.Triangle, e.Index, e.FirstVertex, e.FirstVertex+e.NumVertices)
}

func (e *ContentIntegrityError) Unwrap() error { return ErrContentIntegrity }

// AllocationError reports an impossible Allocate request.
type AllocationError struct {
	Reason string
}

func (e *AllocationError) Error() string {
	return fmt.Sprintf("%v: %s", ErrAllocation, e.Reason)
}

func (e *AllocationError) Unwrap() error { return ErrAllocation }
