package template

import (
	"fmt"
	"strings"
)

// UnresolvedError is raised when a placeholder names a variable no layer
// defines (and it is not a generator call). Resolution never silently emits
// the literal ${name} text.
type UnresolvedError struct {
	Placeholder string
	Path        string
	Reason      string
}

func (e *UnresolvedError) Error() string {
	msg := "unresolved placeholder " + e.Placeholder
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Path != "" {
		msg += " (at " + e.Path + ")"
	}
	return msg
}

// CyclicError is raised when a variable appears twice in the active
// resolution chain, or when the chain exceeds MaxDepth.
type CyclicError struct {
	Chain []string
}

func (e *CyclicError) Error() string {
	if len(e.Chain) > MaxDepth {
		return fmt.Sprintf("variable resolution exceeded depth %d: %s", MaxDepth, strings.Join(e.Chain, " -> "))
	}
	return "cyclic variable reference: " + strings.Join(e.Chain, " -> ")
}
