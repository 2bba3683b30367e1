package policy_test

import (
	"context"
	"testing"

	"github.com/diewo77/prevengo/internal/models"
	"github.com/diewo77/prevengo/internal/policy"
)

// mockNonOwnable is a test resource that does NOT implement Ownable.
type mockNonOwnable struct {
	ID uint
}

func TestOwnershipPolicy_NilResource(t *testing.T) {
	p := policy.NewOwnershipPolicy()
	ctx := context.Background()

	if !p.Can(ctx, 1, policy.ActionList, nil) {
		t.Error("Expected Can to return true for nil resource")
	}
	if !p.Can(ctx, 1, policy.ActionCreate, nil) {
		t.Error("Expected Can to return true for nil resource on create")
	}
	if p.Can(ctx, 0, policy.ActionList, nil) {
		t.Error("Expected anonymous user to be denied")
	}
}

func TestOwnershipPolicy_OwnerCanAccess(t *testing.T) {
	p := policy.NewOwnershipPolicy()
	ctx := context.Background()
	quote := &models.Quote{UserID: 42}

	for _, action := range []string{policy.ActionView, policy.ActionUpdate, policy.ActionDelete} {
		if !p.Can(ctx, 42, action, quote) {
			t.Errorf("Expected owner to have %s access", action)
		}
		if p.Can(ctx, 99, action, quote) {
			t.Errorf("Expected non-owner to be denied %s", action)
		}
	}
}

func TestOwnershipPolicy_CompanyProfile(t *testing.T) {
	p := policy.NewOwnershipPolicy()
	if !p.Can(context.Background(), 7, policy.ActionUpdate, &models.CompanyProfile{UserID: 7}) {
		t.Error("Expected owner to update own profile")
	}
}

func TestOwnershipPolicy_NonOwnableResource(t *testing.T) {
	p := policy.NewOwnershipPolicy()
	if p.Can(context.Background(), 1, policy.ActionView, &mockNonOwnable{ID: 1}) {
		t.Error("Expected non-Ownable resource to be denied")
	}
}
