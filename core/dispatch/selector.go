package dispatch

// RoleSalesManager is the caller role granted the batch dispatch policy.
const RoleSalesManager = "SALES_MANAGER"

// Selector maps a caller role to a dispatch strategy. The mapping is pure and
// case-sensitive: the configured manager role gets batch dispatch, every other
// role (including an empty one) gets single dispatch.
type Selector struct {
	managerRole string
	batch       Strategy
	single      Strategy
}

// NewSelector builds a Selector. An empty managerRole defaults to
// RoleSalesManager.
func NewSelector(managerRole string, batch, single Strategy) Selector {
	if managerRole == "" {
		managerRole = RoleSalesManager
	}
	return Selector{managerRole: managerRole, batch: batch, single: single}
}

// Select resolves the strategy for a caller role.
func (s Selector) Select(callerRole string) Strategy {
	if callerRole == s.managerRole {
		return s.batch
	}
	return s.single
}

// IsPrivileged reports whether the role resolves to the batch policy. The
// privileged receive path may skip the capacity check (see receiving.Gate).
func (s Selector) IsPrivileged(callerRole string) bool {
	return callerRole == s.managerRole
}
