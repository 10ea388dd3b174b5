package wellness

import (
	"fmt"
	"strings"
)

// IncompleteInputError reports questionnaire items that have no answer.
type IncompleteInputError struct {
	Missing []string
}

func (e *IncompleteInputError) Error() string {
	return "missing answers: " + strings.Join(e.Missing, ", ")
}

// OutOfDomainError reports an answer or score outside its declared domain.
type OutOfDomainError struct {
	Field string
	Value int
	Min   int
	Max   int
	// Reason is set when the value itself is not usable (unknown key, unparsable input).
	Reason string
}

func (e *OutOfDomainError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("%s: value %d outside [%d, %d]", e.Field, e.Value, e.Min, e.Max)
}

// UnknownTagError is returned by Lookup when no table entry exists for a tag.
// Select recovers from it with the fallback solution.
type UnknownTagError struct {
	Kind TagKind
	Tag  string
}

func (e *UnknownTagError) Error() string {
	return fmt.Sprintf("unknown %s tag %q", e.Kind, e.Tag)
}
