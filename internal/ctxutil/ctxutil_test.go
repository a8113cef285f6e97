package ctxutil_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shiftforge/roster/internal/auth"
	"github.com/shiftforge/roster/internal/ctxutil"
)

func TestWithClaimsRoundTrip(t *testing.T) {
	claims := &auth.Claims{CallerID: "scheduler-1", OrgID: "org-1", Role: auth.RoleScheduler}
	ctx := ctxutil.WithClaims(context.Background(), claims)

	assert.Equal(t, claims, ctxutil.ClaimsFromContext(ctx))
	assert.Equal(t, "org-1", ctxutil.OrgIDFromContext(ctx))
}

func TestFromContextEmpty(t *testing.T) {
	assert.Nil(t, ctxutil.ClaimsFromContext(context.Background()))
	assert.Equal(t, "", ctxutil.OrgIDFromContext(context.Background()))
}
