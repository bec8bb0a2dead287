package permissions

// Workspace-level roles.
const (
	WorkspaceOwner      = "owner"
	WorkspaceSuperAdmin = "super_admin"
	WorkspaceAdmin      = "admin"
	WorkspaceEditor     = "editor"
	WorkspaceViewer     = "viewer"
)

// Clinic-level roles.
const (
	ClinicAdmin        = "admin"
	ClinicDoctor       = "doctor"
	ClinicAssistant    = "assistant"
	ClinicReceptionist = "receptionist"
	ClinicViewer       = "viewer"
)

// Map holds a set of granted/denied permissions. A missing key means the
// permission is not granted.
type Map map[Permission]bool

// grant builds a Map granting every listed permission.
func grant(perms ...Permission) Map {
	m := make(Map, len(perms))
	for _, p := range perms {
		m[p] = true
	}
	return m
}

// grantResources grants every action of each listed resource.
func grantResources(resources ...string) Map {
	m := Map{}
	for _, r := range resources {
		for _, p := range ForResource(r) {
			m[p] = true
		}
	}
	return m
}

// merge overlays later maps onto earlier ones. Explicit false wins over true,
// matching custom-permission override semantics.
func merge(maps ...Map) Map {
	out := Map{}
	for _, m := range maps {
		for p, v := range m {
			out[p] = v
		}
	}
	return out
}

// viewOnly grants the view action of each listed resource.
func viewOnly(resources ...string) Map {
	m := Map{}
	for _, r := range resources {
		m[Permission(r+".view")] = true
	}
	return m
}

// WorkspaceRolePermissions returns the template for a workspace role.
// Owner and super_admin are handled by RoleHasPermission directly: they are
// granted everything without consulting a template.
func WorkspaceRolePermissions(role string) Map {
	switch role {
	case WorkspaceOwner, WorkspaceSuperAdmin:
		return Map{}

	case WorkspaceAdmin:
		// Runs clinic operations but has no financial visibility and
		// cannot set prices or manage roles.
		return merge(
			grantResources("patients", "treatments", "prescriptions", "quotes", "supplies", "campaigns", "settings"),
			grant("services.view", "services.create", "services.edit", "services.delete"),
			grant("team.view", "team.invite"),
			grant("assistant.use_entry_mode"),
			grant("export_import.export"),
			grant("inbox.view", "inbox.assign", "inbox.reply", "inbox.close"),
			grant("leads.view", "leads.create", "leads.edit"),
		)

	case WorkspaceEditor:
		return merge(
			grant("patients.view", "patients.create", "patients.edit"),
			grant("treatments.view", "treatments.create", "treatments.edit"),
			grant("prescriptions.view", "prescriptions.create", "prescriptions.edit", "prescriptions.print"),
			grant("quotes.view", "quotes.create"),
			viewOnly("services", "supplies", "campaigns", "leads", "inbox"),
			grant("assistant.use_entry_mode"),
		)

	case WorkspaceViewer:
		return viewOnly("patients", "treatments", "prescriptions", "quotes", "services", "supplies", "campaigns", "leads", "inbox")
	}

	return Map{}
}

// ClinicRolePermissions returns the template for a clinic role.
func ClinicRolePermissions(role string) Map {
	switch role {
	case ClinicAdmin:
		// Full control over this clinic.
		all := Map{}
		for _, p := range All() {
			all[p] = true
		}
		return all

	case ClinicDoctor:
		return merge(
			grantResources("patients", "prescriptions"),
			grant("treatments.view", "treatments.create", "treatments.edit", "treatments.delete"),
			grant("quotes.view", "quotes.create", "quotes.edit"),
			viewOnly("services", "supplies"),
			grant("inbox.view", "inbox.reply"),
			grant("assistant.use_entry_mode", "assistant.use_query_mode"),
		)

	case ClinicAssistant:
		return merge(
			grant("patients.view", "patients.create", "patients.edit"),
			grant("treatments.view", "treatments.create"),
			grant("prescriptions.view"),
			grant("quotes.view"),
			viewOnly("services"),
			grant("supplies.view", "supplies.manage_stock"),
			grant("inbox.view"),
			grant("assistant.use_entry_mode"),
		)

	case ClinicReceptionist:
		return merge(
			grant("patients.view", "patients.create", "patients.edit"),
			grant("treatments.view", "treatments.create", "treatments.mark_paid"),
			grant("prescriptions.view"),
			grant("quotes.view", "quotes.create", "quotes.send"),
			grant("services.view"),
			grant("inbox.view", "inbox.assign", "inbox.reply", "inbox.close"),
			grant("assistant.use_entry_mode"),
		)

	case ClinicViewer:
		return viewOnly("patients", "treatments", "prescriptions", "quotes", "services", "supplies")
	}

	return Map{}
}

// RoleHasPermission resolves whether a role grants a permission, applying
// custom overrides on top of the built-in template. scope is "workspace" or
// "clinic". Owner and super_admin bypass templates entirely.
func RoleHasPermission(scope, role string, perm Permission, overrides Map) bool {
	if scope == "workspace" && (role == WorkspaceOwner || role == WorkspaceSuperAdmin) {
		return true
	}

	var base Map
	if scope == "workspace" {
		base = WorkspaceRolePermissions(role)
	} else {
		base = ClinicRolePermissions(role)
	}

	if overrides != nil {
		if v, ok := overrides[perm]; ok {
			return v
		}
	}
	return base[perm]
}
