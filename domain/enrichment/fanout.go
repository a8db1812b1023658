package enrichment

import (
	"club-incentives/domain/incentive"
	"club-incentives/domain/submission"
)

// OfficerLookup resolves club officer addresses, one per officer role of the
// incentive type in column order, using "" for a role with no match
type OfficerLookup interface {
	ResolveOfficerEmails(clubName string, t incentive.Type) []string
}

// FanOut expands a submission into one enriched row per club name, preserving order
// and duplicates. District roles are present with empty addresses until
// SetDistrictLeaders is called.
func FanOut(rec *submission.Record, lookup OfficerLookup) []*Row {
	officerRoles := incentive.OfficerRoles(rec.IncentiveType)

	rows := make([]*Row, 0, len(rec.ClubNames))
	for i, club := range rec.ClubNames {
		values := make([]any, len(rec.Values))
		copy(values, rec.Values)
		values[rec.ClubColumn()] = club

		emails := make(map[incentive.Role]string, len(officerRoles)+len(incentive.DistrictRoles))
		resolved := lookup.ResolveOfficerEmails(club, rec.IncentiveType)
		for j, role := range officerRoles {
			if j < len(resolved) {
				emails[role] = resolved[j]
			} else {
				emails[role] = ""
			}
		}
		for _, role := range incentive.DistrictRoles {
			emails[role] = ""
		}

		rows = append(rows, &Row{
			SheetRow:      i + 2,
			ClubName:      club,
			IncentiveType: rec.IncentiveType,
			RoleEmails:    emails,
			ClaimStatus:   Unclaimed,
			headers:       rec.Headers,
			values:        values,
		})
	}
	return rows
}
