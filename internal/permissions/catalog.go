// Package permissions defines the closed catalog of resource.action
// permission strings and the static role templates that grant them.
package permissions

import (
	"fmt"
	"sort"
	"strings"
)

// Permission is a resource.action string, e.g. "patients.create". Only
// strings present in the catalog are valid.
type Permission string

// catalog is the single source of truth for all permissions in the system.
var catalog = map[string][]string{
	// Clinical operations
	"patients":      {"view", "create", "edit", "delete"},
	"treatments":    {"view", "create", "edit", "delete", "mark_paid"},
	"prescriptions": {"view", "create", "edit", "delete", "print"},
	"quotes":        {"view", "create", "edit", "delete", "send"},

	// Catalog management
	"services": {"view", "create", "edit", "delete", "set_prices"},
	"supplies": {"view", "create", "edit", "delete", "manage_stock"},

	// Financial
	"expenses":          {"view", "create", "edit", "delete"},
	"fixed_costs":       {"view", "create", "edit", "delete"},
	"assets":            {"view", "create", "edit", "delete"},
	"financial_reports": {"view", "export"},
	"break_even":        {"view"},

	// Marketing
	"campaigns": {"view", "create", "edit", "delete"},
	"leads":     {"view", "create", "edit", "delete"},

	// Inbox
	"inbox": {"view", "assign", "reply", "close", "transfer"},

	// Configuration
	"settings": {"view", "edit"},

	// Team management
	"team": {"view", "invite", "edit_roles", "remove"},

	// AI assistant
	"assistant": {"use_entry_mode", "use_query_mode", "execute_actions"},

	// Data management
	"export_import": {"export", "import"},
}

// Parse splits a permission into resource and action, validating the
// resource against the catalog. The action is not checked here; use Valid
// for a full check.
func Parse(p Permission) (resource, action string, err error) {
	resource, action, ok := strings.Cut(string(p), ".")
	if !ok || resource == "" || action == "" {
		return "", "", fmt.Errorf("malformed permission %q", p)
	}
	if _, known := catalog[resource]; !known {
		return "", "", fmt.Errorf("unknown permission resource %q", resource)
	}
	return resource, action, nil
}

// Valid reports whether p is present in the catalog.
func Valid(p Permission) bool {
	resource, action, err := Parse(p)
	if err != nil {
		return false
	}
	for _, a := range catalog[resource] {
		if a == action {
			return true
		}
	}
	return false
}

// ForResource returns all permissions of a resource, or nil for an unknown one.
func ForResource(resource string) []Permission {
	actions, ok := catalog[resource]
	if !ok {
		return nil
	}
	perms := make([]Permission, 0, len(actions))
	for _, a := range actions {
		perms = append(perms, Permission(resource+"."+a))
	}
	return perms
}

// All returns every permission in the catalog, sorted for stable output.
func All() []Permission {
	var perms []Permission
	for resource := range catalog {
		perms = append(perms, ForResource(resource)...)
	}
	sort.Slice(perms, func(i, j int) bool { return perms[i] < perms[j] })
	return perms
}
