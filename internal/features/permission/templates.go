package permission

// Named role templates seeded as system roles.
const (
	TemplateAdministrator    = "Administrator"
	TemplateManager          = "Manager"
	TemplateCashier          = "Cashier"
	TemplateInventoryManager = "Inventory Manager"
	TemplateStaffManager     = "Staff Manager"
)

// TemplateNames lists the seedable templates in seeding order.
var TemplateNames = []string{
	TemplateAdministrator,
	TemplateManager,
	TemplateCashier,
	TemplateInventoryManager,
	TemplateStaffManager,
}

// TemplateDescriptions maps template names to the descriptions the
// seeding routine stores on the created roles.
var TemplateDescriptions = map[string]string{
	TemplateAdministrator:    "Full access to every module and feature",
	TemplateManager:          "Store management with limited settings access",
	TemplateCashier:          "Register operation: sales and customer lookup",
	TemplateInventoryManager: "Inventory and supplier management",
	TemplateStaffManager:     "Staff administration and staff reporting",
}

// IsTemplate reports whether name is one of the named templates.
func IsTemplate(name string) bool {
	for _, t := range TemplateNames {
		if t == name {
			return true
		}
	}
	return false
}

// Template builds the named preset by mutating a default object. An
// unrecognized name returns the untouched all-none default; callers that
// need a hard failure should check IsTemplate first.
func Template(name string) Set {
	set := Default()

	switch name {
	case TemplateAdministrator:
		// Total access: every flag true, every access-level key all.
		for module, ms := range schema {
			for _, k := range ms.access {
				set[module][k] = AccessAll
			}
			for _, k := range ms.flags {
				set[module][k] = true
			}
		}

	case TemplateManager:
		setAccess(set, "sales", AccessAll, AccessAll, AccessAll, AccessDepartment)
		set["sales"]["processRefunds"] = true
		set["sales"]["voidTransactions"] = true
		set["sales"]["applyDiscounts"] = true
		set["sales"]["processPayments"] = true

		setAccess(set, "inventory", AccessAll, AccessAll, AccessAll, AccessDepartment)
		set["inventory"]["adjustStock"] = true
		set["inventory"]["transferStock"] = true

		setAccess(set, "staff", AccessAll, AccessDepartment, AccessDepartment, AccessNone)
		set["staff"]["manageSchedules"] = true

		set["reports"]["view"] = AccessAll
		set["reports"]["salesReports"] = AccessAll
		set["reports"]["inventoryReports"] = AccessAll
		set["reports"]["staffReports"] = AccessDepartment
		set["reports"]["financialReports"] = AccessDepartment

		setAccess(set, "financial", AccessAll, AccessDepartment, AccessDepartment, AccessNone)
		set["financial"]["viewProfitMargins"] = true

		setAccess(set, "customers", AccessAll, AccessAll, AccessAll, AccessDepartment)
		set["customers"]["manageLoyalty"] = true

		setAccess(set, "suppliers", AccessAll, AccessDepartment, AccessDepartment, AccessNone)
		set["suppliers"]["managePurchaseOrders"] = true

		// Settings stay read-only for managers; mutation keys remain none.
		set["settings"]["view"] = AccessAll

	case TemplateCashier:
		setAccess(set, "sales", AccessAll, AccessAll, AccessSelf, AccessNone)
		set["sales"]["applyDiscounts"] = true
		set["sales"]["processPayments"] = true
		// Refunds and voids need a manager.

		set["inventory"]["view"] = AccessAll

		set["customers"]["view"] = AccessAll
		set["customers"]["create"] = AccessSelf

	case TemplateInventoryManager:
		setAccess(set, "inventory", AccessAll, AccessAll, AccessAll, AccessAll)
		set["inventory"]["adjustStock"] = true
		set["inventory"]["transferStock"] = true

		setAccess(set, "suppliers", AccessAll, AccessAll, AccessAll, AccessAll)
		set["suppliers"]["managePurchaseOrders"] = true

		set["reports"]["view"] = AccessSelf
		set["reports"]["inventoryReports"] = AccessAll

	case TemplateStaffManager:
		setAccess(set, "staff", AccessAll, AccessAll, AccessAll, AccessAll)
		set["staff"]["manageRoles"] = true
		set["staff"]["manageSchedules"] = true

		set["reports"]["view"] = AccessSelf
		set["reports"]["staffReports"] = AccessAll
	}

	return set
}

func setAccess(set Set, module string, view, create, edit, del AccessLevel) {
	set[module]["view"] = view
	set[module]["create"] = create
	set[module]["edit"] = edit
	set[module]["delete"] = del
}
