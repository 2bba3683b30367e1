package policy

import "context"

// Actions checked against a resource.
const (
	ActionList   = "list"
	ActionCreate = "create"
	ActionView   = "view"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// Ownable is an interface for resources that have an owner.
// Implement this on your models to enable ownership-based authorization.
type Ownable interface {
	GetUserID() uint
}

// OwnershipPolicy checks if the user owns the resource.
// Works with any model that implements the Ownable interface.
type OwnershipPolicy struct{}

// NewOwnershipPolicy creates a new ownership policy.
func NewOwnershipPolicy() *OwnershipPolicy {
	return &OwnershipPolicy{}
}

// Can checks if the user owns the resource.
// For list/create actions (resource is nil) any authenticated user is
// allowed, since the query itself is scoped to the user.
func (p *OwnershipPolicy) Can(_ context.Context, userID uint, _ string, resource any) bool {
	if userID == 0 {
		return false
	}
	if resource == nil {
		return true
	}

	// Resources without an owner are denied by default
	ownable, ok := resource.(Ownable)
	if !ok {
		return false
	}
	return ownable.GetUserID() == userID
}
