// Package authz enforces who may act on an organization's scheduling data:
// a caller's token scopes them to one org, and their role orders what they
// may do within it. There is no cross-tenant tag or grant system here — the
// decision-audit domain this authorization layer was built for needed
// per-agent visibility grants because individual decisions could be shared
// selectively; a roster has no equivalent concept, so org membership plus
// role is the entire access model.
package authz

import (
	"fmt"

	"github.com/shiftforge/roster/internal/auth"
)

// ErrForbidden is returned when a caller's org or role doesn't permit an
// operation. Handlers translate it into an HTTP 403.
var ErrForbidden = fmt.Errorf("authz: forbidden")

// CanAccessOrg reports whether claims may act on resources belonging to
// orgID: the caller's token must be scoped to that org.
func CanAccessOrg(claims *auth.Claims, orgID string) bool {
	if claims == nil {
		return false
	}
	return claims.OrgID == orgID
}

// Require checks both org-scoping and a minimum role, returning ErrForbidden
// if either fails. This is the single gate handlers call before mutating or
// reading an org's data.
func Require(claims *auth.Claims, orgID string, min auth.Role) error {
	if !CanAccessOrg(claims, orgID) {
		return fmt.Errorf("%w: caller is not scoped to org %q", ErrForbidden, orgID)
	}
	if !auth.AtLeast(claims.Role, min) {
		return fmt.Errorf("%w: role %q does not meet minimum %q", ErrForbidden, claims.Role, min)
	}
	return nil
}
