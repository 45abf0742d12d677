package domain

import (
	"encoding/json"
	"fmt"
)

// Role is a closed enumeration of operator roles. Using a dedicated type with
// an exhaustive capability matrix below removes the string-typo failure mode
// of comparing raw role strings at call sites.
type Role int

const (
	RoleCashier Role = iota
	RoleAdmin
)

func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleCashier:
		return "cashier"
	default:
		return "unknown"
	}
}

// ParseRole converts a wire-level role string into a Role.
func ParseRole(s string) (Role, error) {
	switch s {
	case "admin":
		return RoleAdmin, nil
	case "cashier":
		return RoleCashier, nil
	default:
		return 0, fmt.Errorf("unknown role %q", s)
	}
}

func (r Role) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

func (r *Role) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseRole(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Capability is a named permission gating a protected operation.
type Capability int

const (
	CapSell Capability = iota
	CapHoldSales
	CapViewInvoices
	CapVoidInvoice
	CapManageProducts
	CapManageUsers
	CapResetInvoiceCounter
)

func (c Capability) String() string {
	switch c {
	case CapSell:
		return "sell"
	case CapHoldSales:
		return "hold_sales"
	case CapViewInvoices:
		return "view_invoices"
	case CapVoidInvoice:
		return "void_invoice"
	case CapManageProducts:
		return "manage_products"
	case CapManageUsers:
		return "manage_users"
	case CapResetInvoiceCounter:
		return "reset_invoice_counter"
	default:
		return "unknown"
	}
}

// Requirement declares who may exercise a capability. It is a closed variant:
// any authenticated role, admin only, or an exact role (admin always included,
// as admin is a superset of every role).
type Requirement struct {
	kind reqKind
	role Role
}

type reqKind int

const (
	reqAnyAuthenticated reqKind = iota
	reqAdminOnly
	reqExactRole
)

func AnyAuthenticated() Requirement   { return Requirement{kind: reqAnyAuthenticated} }
func AdminOnly() Requirement          { return Requirement{kind: reqAdminOnly} }
func ExactRole(role Role) Requirement { return Requirement{kind: reqExactRole, role: role} }

// Allows reports whether a role satisfies a requirement. It is a pure function
// of its inputs; anonymous sessions never reach this point because they carry
// no role at all.
func (req Requirement) Allows(role Role) bool {
	if role == RoleAdmin {
		return true
	}
	switch req.kind {
	case reqAnyAuthenticated:
		return true
	case reqAdminOnly:
		return false
	case reqExactRole:
		return role == req.role
	default:
		return false
	}
}

// capabilityMatrix is the single source of truth for capability gating.
var capabilityMatrix = map[Capability]Requirement{
	CapSell:                AnyAuthenticated(),
	CapHoldSales:           AnyAuthenticated(),
	CapViewInvoices:        AnyAuthenticated(),
	CapVoidInvoice:         AdminOnly(),
	CapManageProducts:      AdminOnly(),
	CapManageUsers:         AdminOnly(),
	CapResetInvoiceCounter: AdminOnly(),
}

// RequirementFor looks up the declared requirement for a capability. Unknown
// capabilities deny everyone.
func RequirementFor(c Capability) (Requirement, bool) {
	req, ok := capabilityMatrix[c]
	return req, ok
}

// RoleAllows reports whether a role may exercise a capability.
func RoleAllows(role Role, c Capability) bool {
	req, ok := capabilityMatrix[c]
	if !ok {
		return false
	}
	return req.Allows(role)
}
