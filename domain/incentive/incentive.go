// Package incentive holds the fixed vocabulary of the club incentive workflow:
// incentive codes, the officer and district roles, and the column labels derived from them.
package incentive

import "strings"

// Type is an incentive code from the submission form
type Type string

const (
	// ClubGrowth rewards membership growth; officer contact is the VP Membership
	ClubGrowth Type = "CGD"
	// ProgramQuality rewards education quality; officer contact is the VP Education
	ProgramQuality Type = "PQD"
)

// ParseType normalises a raw cell value into a Type. Codes are matched case-insensitively
// ("cgd" is ClubGrowth); unknown codes are kept as-is, upper-cased.
func ParseType(raw string) Type {
	return Type(strings.ToUpper(strings.TrimSpace(raw)))
}

// Known reports whether t is one of the recognised codes
func (t Type) Known() bool {
	return t == ClubGrowth || t == ProgramQuality
}

// Role is a person or mailbox that receives email about an incentive
type Role string

const (
	VPMembership       Role = "VP-Membership"
	VPEducation        Role = "VP-Education"
	Treasurer          Role = "Treasurer"
	President          Role = "President"
	DivisionDirector   Role = "Division Director"
	AreaDirector       Role = "Area Director"
	FinanceDirector    Role = "Finance Director"
	IncentivesDirector Role = "Incentives Director"
	IncentivesMailbox  Role = "Incentives Mailbox"
)

// Column is the enriched-table column holding this role's email address
func (r Role) Column() string {
	return string(r) + " Email"
}

// OfficerRoles returns the club officer roles emailed for an incentive type,
// in column order. Unknown types have no officer roles.
func OfficerRoles(t Type) []Role {
	switch t {
	case ClubGrowth:
		return []Role{VPMembership, Treasurer, President}
	case ProgramQuality:
		return []Role{VPEducation, Treasurer, President}
	default:
		return nil
	}
}

// DistrictRoles are present on every enriched row regardless of incentive type
var DistrictRoles = []Role{
	DivisionDirector,
	AreaDirector,
	FinanceDirector,
	IncentivesDirector,
	IncentivesMailbox,
}

// CommonOfficerRoles are the officer roles shared by every known incentive type
var CommonOfficerRoles = []Role{Treasurer, President}

// Submission and enriched-table column labels
const (
	ColumnClubNames     = "Club Names"
	ColumnIncentiveType = "Incentive Type"
	ColumnAwardName     = "Award Name"
	ColumnAwardDate     = "Award Date"
	ColumnClaimStatus   = "Claimed Status"
	ColumnCertificate   = "Certificate"
	ColumnFinalSheet    = "Final Certificates"
)

// RoleColumns maps roles to their column labels, preserving order
func RoleColumns(roles []Role) []string {
	cols := make([]string, len(roles))
	for i, r := range roles {
		cols[i] = r.Column()
	}
	return cols
}
