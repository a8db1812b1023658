package reference

import (
	"fmt"
	"strings"

	"club-incentives/domain/incentive"
)

// officeLabels maps officer roles to the Office values used in the officer table
var officeLabels = map[incentive.Role]string{
	incentive.VPMembership: "Club VP Membership",
	incentive.VPEducation:  "Club VP Education",
	incentive.Treasurer:    "Club Treasurer",
	incentive.President:    "Club President",
}

// OfficeLabel returns the officer-table Office value for a role
func OfficeLabel(r incentive.Role) string {
	return officeLabels[r]
}

// RequiredOffices returns the officer roles to resolve for an incentive type.
// Unknown types yield an empty list.
func RequiredOffices(t incentive.Type) []incentive.Role {
	return incentive.OfficerRoles(t)
}

// Policy holds the role addresses that are configured rather than looked up
type Policy struct {
	// DirectorEmails maps an incentive type to the Incentives Director's address
	DirectorEmails map[incentive.Type]string
	// SharedMailbox is the team mailbox copied on every notification
	SharedMailbox string
}

// Placement is a club's division and area
type Placement struct {
	Division string
	Area     string
}

// DistrictLeaders holds the district-role addresses for one club
type DistrictLeaders struct {
	DivisionDirector   string
	AreaDirector       string
	FinanceDirector    string
	IncentivesDirector string
	SharedMailbox      string
}

// Emails returns the addresses keyed by role
func (d DistrictLeaders) Emails() map[incentive.Role]string {
	return map[incentive.Role]string{
		incentive.DivisionDirector:   d.DivisionDirector,
		incentive.AreaDirector:       d.AreaDirector,
		incentive.FinanceDirector:    d.FinanceDirector,
		incentive.IncentivesDirector: d.IncentivesDirector,
		incentive.IncentivesMailbox:  d.SharedMailbox,
	}
}

// Directory answers email lookups against the officer and district leader tables.
// It never mutates the records it was built from; a missed lookup yields "".
type Directory struct {
	officers []OfficerRecord
	leaders  []LeaderRecord
	policy   Policy
}

// NewDirectory creates a directory over snapshots of the reference tables
func NewDirectory(officers []OfficerRecord, leaders []LeaderRecord, policy Policy) *Directory {
	return &Directory{
		officers: officers,
		leaders:  leaders,
		policy:   policy,
	}
}

// ResolveOfficerEmails returns one address per required office of the incentive type,
// in RequiredOffices order. The first matching officer row wins.
func (d *Directory) ResolveOfficerEmails(clubName string, t incentive.Type) []string {
	clubName = strings.TrimSpace(clubName)
	roles := RequiredOffices(t)
	emails := make([]string, len(roles))
	for i, role := range roles {
		emails[i] = d.officerEmail(clubName, OfficeLabel(role))
	}
	return emails
}

func (d *Directory) officerEmail(clubName, office string) string {
	for _, o := range d.officers {
		if o.ClubName == clubName && o.Office == office {
			return o.Email
		}
	}
	return ""
}

// ResolveClubDivisionArea returns the placement from the first officer row for the club
func (d *Directory) ResolveClubDivisionArea(clubName string) Placement {
	clubName = strings.TrimSpace(clubName)
	for _, o := range d.officers {
		if o.ClubName == clubName {
			return Placement{Division: o.Division, Area: o.Area}
		}
	}
	return Placement{}
}

// ResolveDistrictLeaders returns the district-role addresses for a placement.
// Keys are compared exactly, so a blank placement matches leader rows with blank keys.
func (d *Directory) ResolveDistrictLeaders(division, area string, t incentive.Type) DistrictLeaders {
	division = strings.TrimSpace(division)
	area = strings.TrimSpace(area)

	var out DistrictLeaders
	out.DivisionDirector = d.leaderEmail(func(l LeaderRecord) bool {
		return l.Role == MarkerDivisionDirector && l.Area == "" && l.Division == division
	})
	out.AreaDirector = d.leaderEmail(func(l LeaderRecord) bool {
		return l.Role == MarkerAreaDirector && l.Division == division && l.Area == area
	})
	out.FinanceDirector = d.leaderEmail(func(l LeaderRecord) bool {
		return l.Role == MarkerFinanceDirector
	})
	out.IncentivesDirector = d.policy.DirectorEmails[t]
	out.SharedMailbox = d.policy.SharedMailbox
	return out
}

func (d *Directory) leaderEmail(match func(LeaderRecord) bool) string {
	for _, l := range d.leaders {
		if match(l) {
			return l.Email
		}
	}
	return ""
}

// DuplicateKeys describes reference rows that share a lookup key with an earlier row.
// Lookups still use the first occurrence; these are data-quality warnings.
func (d *Directory) DuplicateKeys() []string {
	var warnings []string

	seenOfficer := make(map[[2]string]int)
	for i, o := range d.officers {
		key := [2]string{o.ClubName, o.Office}
		if first, ok := seenOfficer[key]; ok {
			warnings = append(warnings, fmt.Sprintf("officer table: %q / %q on data rows %d and %d", o.ClubName, o.Office, first+1, i+1))
			continue
		}
		seenOfficer[key] = i
	}

	seenLeader := make(map[[3]string]int)
	for i, l := range d.leaders {
		key := [3]string{l.Role, l.Division, l.Area}
		if l.Role == MarkerFinanceDirector {
			key = [3]string{l.Role}
		}
		if first, ok := seenLeader[key]; ok {
			warnings = append(warnings, fmt.Sprintf("district leader table: %q division %q area %q on data rows %d and %d", l.Role, l.Division, l.Area, first+1, i+1))
			continue
		}
		seenLeader[key] = i
	}

	return warnings
}
