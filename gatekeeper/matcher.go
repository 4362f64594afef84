package gatekeeper

import "strings"

// Wildcard is the super-admin permission: on its own it grants every
// resource path unconditionally.
const Wildcard = "*"

// Matches checks if a resource path matches a permission pattern.
//
// Supported patterns:
//   - Exact match: "/v1/customers" matches only "/v1/customers"
//   - Wildcard suffix: "/v1/customers/*" matches "/v1/customers/123" and
//     "/v1/customers/123/trunks", but not "/v1/customers" itself and not
//     "/v1/customersX" — the base path must be followed by a "/"
//   - Global wildcard: "*" matches everything
//
// A "*" in any other position is not a wildcard; such a pattern only ever
// matches literally. Richer glob forms like "/v1/*/users" are unsupported.
func Matches(pattern, resourcePath string) bool {
	if pattern == Wildcard {
		return true
	}

	if pattern == resourcePath {
		return true
	}

	if base, found := strings.CutSuffix(pattern, "/*"); found {
		return strings.HasPrefix(resourcePath, base+"/")
	}

	return false
}

// IsSuperAdmin checks if a permission set contains the global wildcard.
func IsSuperAdmin(permissions []string) bool {
	for _, perm := range permissions {
		if perm == Wildcard {
			return true
		}
	}
	return false
}

// HasPermission evaluates a resource path against a permission snapshot.
// It is pure and safe for any number of concurrent callers; a revoked
// permission takes effect on the next call, not retroactively.
func HasPermission(permissions []string, superAdmin bool, resourcePath string) bool {
	if superAdmin {
		return true
	}
	for _, perm := range permissions {
		if Matches(perm, resourcePath) {
			return true
		}
	}
	return false
}
