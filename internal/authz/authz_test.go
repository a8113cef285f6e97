package authz_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shiftforge/roster/internal/auth"
	"github.com/shiftforge/roster/internal/authz"
)

func TestCanAccessOrg(t *testing.T) {
	claims := &auth.Claims{OrgID: "org-1"}
	assert.True(t, authz.CanAccessOrg(claims, "org-1"))
	assert.False(t, authz.CanAccessOrg(claims, "org-2"))
	assert.False(t, authz.CanAccessOrg(nil, "org-1"))
}

func TestRequire(t *testing.T) {
	scheduler := &auth.Claims{OrgID: "org-1", Role: auth.RoleScheduler}

	assert.NoError(t, authz.Require(scheduler, "org-1", auth.RoleViewer))
	assert.NoError(t, authz.Require(scheduler, "org-1", auth.RoleScheduler))

	err := authz.Require(scheduler, "org-1", auth.RoleAdmin)
	assert.ErrorIs(t, err, authz.ErrForbidden)

	err = authz.Require(scheduler, "org-2", auth.RoleViewer)
	assert.ErrorIs(t, err, authz.ErrForbidden)
}
