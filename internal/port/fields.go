package port

// Role is a stable logical concept (title, deadline, ...) that must be mapped
// to whatever concrete column name the current dataset schema uses.
type Role string

const (
	RoleDate            Role = "date"
	RoleTitle           Role = "title"
	RoleURL             Role = "url"
	RoleCPV             Role = "cpv"
	RoleDept            Role = "dept"
	RoleBuyer           Role = "buyer"
	RoleDescription     Role = "description"
	RoleRef             Role = "ref"
	RoleServiceCategory Role = "serviceCategory"
	RoleNature          Role = "nature"
	RoleDeadline        Role = "deadline"
	RoleBuyerAddress    Role = "buyerAddress"
	RoleBudget          Role = "budget"
	RoleProcedure       Role = "procedure"
	RoleMarketType      Role = "marketType"
	RolePlace           Role = "place"
)

// Roles lists every logical role, in a fixed order.
var Roles = []Role{
	RoleDate, RoleTitle, RoleURL, RoleCPV, RoleDept, RoleBuyer,
	RoleDescription, RoleRef, RoleServiceCategory, RoleNature, RoleDeadline,
	RoleBuyerAddress, RoleBudget, RoleProcedure, RoleMarketType, RolePlace,
}

// roleDefaults are the hard-coded column names used when the dataset schema
// offers no matching candidate. Querying a nonexistent column is an accepted
// degradation: the provider treats unknown fields as no-match, not as errors.
var roleDefaults = map[Role]string{
	RoleDate:            "record_timestamp",
	RoleTitle:           "title",
	RoleURL:             "permalink",
	RoleCPV:             "cpv",
	RoleDept:            "departement",
	RoleBuyer:           "acheteur",
	RoleDescription:     "description",
	RoleRef:             "id",
	RoleServiceCategory: "categorie_services",
	RoleNature:          "nature",
	RoleDeadline:        "date_limite_remise_offres",
	RoleBuyerAddress:    "nom_et_adresse_officiels_de_l_organisme_acheteur",
	RoleBudget:          "montant",
	RoleProcedure:       "procedure",
	RoleMarketType:      "type_marche",
	RolePlace:           "lieu_execution",
}

// DefaultFieldName returns the fallback column name for a role.
func DefaultFieldName(role Role) string {
	return roleDefaults[role]
}

// FieldCatalog maps every logical role to the concrete column name resolved
// from the dataset schema. Every role always resolves to some name, so callers
// never branch on "unresolved".
type FieldCatalog map[Role]string

// Field returns the resolved column name for a role, falling back to the
// hard-coded default so the invariant holds even for a zero-value catalog.
func (c FieldCatalog) Field(role Role) string {
	if name, ok := c[role]; ok && name != "" {
		return name
	}
	return roleDefaults[role]
}

// DefaultFieldCatalog returns a catalog made entirely of fallback names.
func DefaultFieldCatalog() FieldCatalog {
	catalog := make(FieldCatalog, len(roleDefaults))
	for role, name := range roleDefaults {
		catalog[role] = name
	}
	return catalog
}
