package engine

import (
	"errors"
	"fmt"

	"github.com/mlange-42/ark/ecs"
)

// ErrContractViolation marks a broken invariant between systems, such as a
// query expected to match exactly one entity matching several. It is never
// retried: the tick that hits it aborts.
var ErrContractViolation = errors.New("contract violation")

// Violation builds an error wrapping ErrContractViolation.
func Violation(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrContractViolation}, args...)...)
}

// Single returns the only entity matched by filter. Zero or several matches
// violate the caller's contract; what names the entity in the error.
func Single(filter *ecs.Filter0, what string) (ecs.Entity, error) {
	var found ecs.Entity
	count := 0
	query := filter.Query()
	for query.Next() {
		if count == 0 {
			found = query.Entity()
		}
		count++
	}
	if count != 1 {
		return ecs.Entity{}, Violation("expected exactly one %s, found %d", what, count)
	}
	return found, nil
}

// AtMostOne returns the entity matched by filter, if any. More than one match
// violates the caller's contract.
func AtMostOne(filter *ecs.Filter0, what string) (ecs.Entity, bool, error) {
	var found ecs.Entity
	count := 0
	query := filter.Query()
	for query.Next() {
		if count == 0 {
			found = query.Entity()
		}
		count++
	}
	switch count {
	case 0:
		return ecs.Entity{}, false, nil
	case 1:
		return found, true, nil
	default:
		return ecs.Entity{}, false, Violation("expected at most one %s, found %d", what, count)
	}
}
