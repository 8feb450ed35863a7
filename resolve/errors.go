package resolve

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for matching with errors.Is. Every resolution error is
// terminal: the pass produces no partial output.
var (
	// ErrDanglingReference is wrapped by DanglingReferenceError.
	ErrDanglingReference = errors.New("resolve: dangling reference")

	// ErrCyclicReference is wrapped by CyclicReferenceError.
	ErrCyclicReference = errors.New("resolve: cyclic reference")

	// ErrDepthExceeded is wrapped by DepthExceededError.
	ErrDepthExceeded = errors.New("resolve: depth limit exceeded")

	// ErrSuperseded reports that a newer resolution pass was started while
	// this one was running. The stale pass is abandoned.
	ErrSuperseded = errors.New("resolve: pass superseded")
)

// DanglingReferenceError reports an instance whose target structure does
// not exist in the library.
type DanglingReferenceError struct {
	// From is the structure containing the broken instance.
	From string
	// Target is the missing structure name.
	Target string
}

func (e *DanglingReferenceError) Error() string {
	return fmt.Sprintf("resolve: structure %q references undefined structure %q", e.From, e.Target)
}

func (e *DanglingReferenceError) Is(target error) bool { return target == ErrDanglingReference }

// CyclicReferenceError reports an instantiation cycle. Cycle holds the
// structure names along the cycle, starting and ending with the repeated
// name.
type CyclicReferenceError struct {
	Cycle []string
}

func (e *CyclicReferenceError) Error() string {
	return fmt.Sprintf("resolve: reference cycle %s", strings.Join(e.Cycle, " -> "))
}

func (e *CyclicReferenceError) Is(target error) bool { return target == ErrCyclicReference }

// DepthExceededError reports that instantiation nesting went past the
// configured limit.
type DepthExceededError struct {
	// Structure is the structure whose expansion crossed the limit.
	Structure string
	Limit     int
}

func (e *DepthExceededError) Error() string {
	return fmt.Sprintf("resolve: structure %q exceeds depth limit %d", e.Structure, e.Limit)
}

func (e *DepthExceededError) Is(target error) bool { return target == ErrDepthExceeded }
