package enrichment

import (
	"club-incentives/domain/incentive"
	"club-incentives/domain/sheet"
)

// ComposeHeaders derives the enriched column schema for an incentive type:
// the base headers, the claim status column, the officer email columns for the
// type (none for an unknown type) and the five district email columns.
// The base slice is never modified.
func ComposeHeaders(base []string, t incentive.Type) []string {
	headers := make([]string, 0, len(base)+1+3+len(incentive.DistrictRoles))
	headers = append(headers, base...)
	headers = append(headers, incentive.ColumnClaimStatus)
	headers = append(headers, incentive.RoleColumns(incentive.OfficerRoles(t))...)
	headers = append(headers, incentive.RoleColumns(incentive.DistrictRoles)...)
	return headers
}

// WithCertificateColumn returns headers with the certificate column appended if absent
func WithCertificateColumn(headers []string) []string {
	if sheet.IndexOf(headers, incentive.ColumnCertificate) != -1 {
		return headers
	}
	out := make([]string, len(headers), len(headers)+1)
	copy(out, headers)
	return append(out, incentive.ColumnCertificate)
}
