package enrichment

import (
	"club-incentives/domain/incentive"
	"club-incentives/domain/sheet"
)

// ClaimStatus tracks whether a club has claimed its incentive
type ClaimStatus string

const (
	Unclaimed ClaimStatus = "Unclaimed"
	Claimed   ClaimStatus = "Claimed"
)

// Row is one club's enriched record derived from a submission
type Row struct {
	// SheetRow is the 1-based row number in the submission spreadsheet (row 1 holds headers)
	SheetRow      int
	ClubName      string
	IncentiveType incentive.Type
	RoleEmails    map[incentive.Role]string
	ClaimStatus   ClaimStatus
	// Certificate is the public link to the rendered certificate, empty until rendered
	Certificate string

	headers []string
	values  []any
}

// Value returns the value for a column and whether the row has that column
func (r *Row) Value(column string) (any, bool) {
	switch column {
	case incentive.ColumnClaimStatus:
		return string(r.ClaimStatus), true
	case incentive.ColumnCertificate:
		if r.Certificate != "" {
			return r.Certificate, true
		}
	}
	for role, email := range r.RoleEmails {
		if role.Column() == column {
			return email, true
		}
	}
	if i := sheet.IndexOf(r.headers, column); i != -1 {
		return sheet.CellAt(r.values, i), true
	}
	if column == incentive.ColumnCertificate {
		return "", true
	}
	return nil, false
}

// Text returns the column value rendered as text, empty if absent
func (r *Row) Text(column string) string {
	v, _ := r.Value(column)
	return sheet.Text(v)
}

// Values materialises the row in the column order of headers
func (r *Row) Values(headers []string) []any {
	out := make([]any, len(headers))
	for i, h := range headers {
		v, ok := r.Value(h)
		if !ok {
			continue
		}
		out[i] = v
	}
	return out
}

// SetDistrictLeaders records district-role addresses on the row
func (r *Row) SetDistrictLeaders(emails map[incentive.Role]string) {
	for _, role := range incentive.DistrictRoles {
		r.RoleEmails[role] = emails[role]
	}
}

// OfficerEmails returns the officer-role addresses for this row's incentive type, in column order
func (r *Row) OfficerEmails() []string {
	roles := incentive.OfficerRoles(r.IncentiveType)
	out := make([]string, len(roles))
	for i, role := range roles {
		out[i] = r.RoleEmails[role]
	}
	return out
}

// RowsFromTable rebuilds enriched rows from a previously written submission spreadsheet
func RowsFromTable(t *sheet.Table) []*Row {
	clubCol := t.Column(incentive.ColumnClubNames)
	typeCol := t.Column(incentive.ColumnIncentiveType)
	claimCol := t.Column(incentive.ColumnClaimStatus)
	certCol := t.Column(incentive.ColumnCertificate)

	rows := make([]*Row, 0, len(t.Rows))
	for i, values := range t.Rows {
		row := &Row{
			SheetRow:      i + 2,
			ClubName:      sheet.Text(sheet.CellAt(values, clubCol)),
			IncentiveType: incentive.ParseType(sheet.Text(sheet.CellAt(values, typeCol))),
			RoleEmails:    make(map[incentive.Role]string),
			ClaimStatus:   ClaimStatus(sheet.Text(sheet.CellAt(values, claimCol))),
			Certificate:   sheet.Text(sheet.CellAt(values, certCol)),
			headers:       t.Headers,
			values:        values,
		}
		for _, role := range append(incentive.OfficerRoles(row.IncentiveType), incentive.DistrictRoles...) {
			if col := t.Column(role.Column()); col != -1 {
				row.RoleEmails[role] = sheet.Text(sheet.CellAt(values, col))
			}
		}
		rows = append(rows, row)
	}
	return rows
}
