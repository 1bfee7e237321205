package approval

import (
	"fmt"

	"github.com/Shekhar17ACS/IETE/app/models"
)

// RoleChainFromBottom returns role IDs ordered from the bottom of the
// hierarchy to the top. Each input role's parent links are walked upward
// through the arena, recording every visited role exactly once; results
// are concatenated in input order. Orphan roles (no parent, no children)
// appear as standalone entries.
//
// A walk that re-enters a role it already passed through is a corrupt
// parent chain and returns an error. A walk that reaches a role recorded
// by an earlier walk stops there: that role's ancestors are already in
// the chain.
func RoleChainFromBottom(roles []*models.Role, arena map[string]*models.Role) ([]string, error) {
	visited := make(map[string]bool)
	var chain []string

	for _, start := range roles {
		role := start
		path := make(map[string]bool)
		for role != nil {
			if path[role.ID] {
				return nil, fmt.Errorf("role hierarchy cycle detected at role %q", role.ID)
			}
			if visited[role.ID] {
				break
			}
			path[role.ID] = true
			visited[role.ID] = true
			chain = append(chain, role.ID)
			if role.ParentID == nil {
				break
			}
			role = arena[*role.ParentID]
		}
	}

	return chain, nil
}

// RoleArena indexes roles by ID for parent-link resolution.
func RoleArena(roles []*models.Role) map[string]*models.Role {
	arena := make(map[string]*models.Role, len(roles))
	for _, r := range roles {
		arena[r.ID] = r
	}
	return arena
}
