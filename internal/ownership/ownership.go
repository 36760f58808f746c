// Package ownership decides whether a principal may mutate a resource.
//
// The decision runs after the resource lookup: a missing resource is always
// reported as not found, a resource owned by someone else as forbidden.
package ownership

import (
	"context"
	"errors"

	"github.com/jobboard/apiserver/internal/apperr"
	"github.com/jobboard/apiserver/internal/auth"
	"github.com/jobboard/apiserver/internal/metrics"
	"github.com/jobboard/apiserver/internal/store"
)

// Owned is implemented by records that have exactly one owning user.
type Owned interface {
	OwnerID() int
}

type Decision int

const (
	DecisionNotFound Decision = iota
	DecisionForbidden
	DecisionAllowed
)

func (d Decision) String() string {
	switch d {
	case DecisionNotFound:
		return "not_found"
	case DecisionForbidden:
		return "forbidden"
	case DecisionAllowed:
		return "allowed"
	default:
		return "unknown"
	}
}

// Decide compares internal ids only.
func Decide(found bool, ownerID, principalID int) Decision {
	if !found {
		return DecisionNotFound
	}
	if principalID < 1 || ownerID != principalID {
		return DecisionForbidden
	}
	return DecisionAllowed
}

// Authorize loads the resource and returns it only when principal owns it.
// load must return store.ErrNotFound for a missing record. resource names
// the kind of record in error messages and metrics.
func Authorize[T Owned](ctx context.Context, resource string, load func(context.Context, int) (T, error), id int, principal auth.Principal) (T, error) {
	var zero T

	record, err := load(ctx, id)
	found := true
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return zero, err
		}
		found = false
	}

	var ownerID int
	if found {
		ownerID = record.OwnerID()
	}

	switch Decide(found, ownerID, principal.ID) {
	case DecisionNotFound:
		return zero, apperr.NotFound(resource + " not found")
	case DecisionForbidden:
		metrics.OwnershipDenials.WithLabelValues(resource).Inc()
		return zero, apperr.Forbidden("you do not own this " + resource)
	default:
		return record, nil
	}
}

// IsOwner reports whether principal owns record. Anonymous principals own
// nothing.
func IsOwner(record Owned, principal auth.Principal, authenticated bool) bool {
	if !authenticated {
		return false
	}
	return Decide(true, record.OwnerID(), principal.ID) == DecisionAllowed
}
