package authz

import (
	"context"
	"errors"
)

var ErrCapabilityDenied = errors.New("Actor lacks the required capability")

// Action names a verb on a resource kind.
type Action string

const (
	ActionView        Action = "view"
	ActionCreate      Action = "create"
	ActionUpdate      Action = "update"
	ActionDelete      Action = "delete"
	ActionApprove     Action = "approve"
	ActionRunRollover Action = "run_rollover"
)

// Resource names a kind of thing capabilities are granted on.
type Resource string

const (
	ResourceLeaveType    Resource = "leave_type"
	ResourceLeaveBalance Resource = "leave_balance"
	ResourceLeaveRequest Resource = "leave_request"
	ResourceHoliday      Resource = "holiday"
)

// Checker answers capability questions. It deliberately replaces
// string-assembled permission names with an explicit (actor, action,
// resource) lookup backed by a small capabilities table.
type Checker interface {
	Can(ctx context.Context, actorID string, action Action, resource Resource) (bool, error)
}

// CapabilityRepository - interface for the capabilities table.
type CapabilityRepository interface {
	HasCapability(ctx context.Context, actorID string, action Action, resource Resource) (bool, error)
}

type checker struct {
	repo CapabilityRepository
}

func NewChecker(repo CapabilityRepository) Checker {
	return &checker{repo: repo}
}

func (c *checker) Can(ctx context.Context, actorID string, action Action, resource Resource) (bool, error) {
	if actorID == "" {
		return false, nil
	}
	return c.repo.HasCapability(ctx, actorID, action, resource)
}
